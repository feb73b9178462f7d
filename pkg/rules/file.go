package rules

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Section names accepted in a rules file.
const (
	sectionStopWords  = "stop_words"
	sectionAdjectives = "unnecessary_adjectives"
	sectionSynonyms   = "synonyms"
	sectionRedundant  = "redundant_phrases"
	sectionNumbers    = "number_words"
	sectionLevels     = "levels"
)

// LoadFile reads a YAML rules file and applies it on top of base.
// A nil base means the compiled-in defaults.
func LoadFile(path string, base *Tables) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	t, err := Parse(data, base)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a YAML rules document. Every section is optional and replaces
// the matching table of base wholesale. Mapping sections keep document order.
//
//	stop_words: [the, a, an]
//	synonyms:
//	  utilize: use
//	  in order to: to
//	levels:
//	  1: minimal
func Parse(data []byte, base *Tables) (*Tables, error) {
	if base == nil {
		base = Default()
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}

	opts := []Option{
		WithStopWords(base.stopWords.Words()...),
		WithUnnecessaryAdjectives(base.adjectives.Words()...),
		WithSynonyms(base.synonyms.Pairs()...),
		WithRedundantPhrases(base.redundant.Pairs()...),
		WithNumberWords(base.numbers.Pairs()...),
		WithLevels(base.levels),
	}

	// Empty document
	if root.Kind == 0 || len(root.Content) == 0 {
		return New(opts...)
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of rule sections", doc.Line)
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]

		switch key.Value {
		case sectionStopWords, sectionAdjectives:
			var words []string
			if err := value.Decode(&words); err != nil {
				return nil, fmt.Errorf("%s: %w", key.Value, err)
			}
			if key.Value == sectionStopWords {
				opts = append(opts, WithStopWords(words...))
			} else {
				opts = append(opts, WithUnnecessaryAdjectives(words...))
			}

		case sectionSynonyms, sectionRedundant, sectionNumbers:
			pairs, err := decodePairs(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key.Value, err)
			}
			switch key.Value {
			case sectionSynonyms:
				opts = append(opts, WithSynonyms(pairs...))
			case sectionRedundant:
				opts = append(opts, WithRedundantPhrases(pairs...))
			default:
				opts = append(opts, WithNumberWords(pairs...))
			}

		case sectionLevels:
			levels, err := decodeLevels(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key.Value, err)
			}
			opts = append(opts, WithLevels(levels))

		default:
			return nil, fmt.Errorf("line %d: unknown section %q", key.Line, key.Value)
		}
	}

	return New(opts...)
}

// decodePairs walks a mapping node so that entry order survives decoding.
// Repeated keys collapse through NewMapping.
func decodePairs(n *yaml.Node) ([]Pair, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	pairs := make([]Pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: keys and values must be plain strings", k.Line)
		}
		pairs = append(pairs, Pair{From: k.Value, To: v.Value})
	}
	return pairs, nil
}

func decodeLevels(n *yaml.Node) (map[int]string, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	levels := make(map[int]string, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		level, err := strconv.Atoi(k.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: level %q is not an integer", k.Line, k.Value)
		}
		levels[level] = v.Value
	}
	return levels, nil
}

// Marshal encodes t as a rules document that Parse reads back unchanged.
// Mapping sections are written in table order.
func Marshal(t *Tables) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}

	add := func(name string, value *yaml.Node) {
		doc.Content = append(doc.Content, scalar(name), value)
	}
	add(sectionStopWords, sequence(t.stopWords.Words()))
	add(sectionAdjectives, sequence(t.adjectives.Words()))
	add(sectionSynonyms, mapping(t.synonyms.Pairs()))
	add(sectionRedundant, mapping(t.redundant.Pairs()))
	add(sectionNumbers, mapping(t.numbers.Pairs()))

	levels := make([]Pair, 0, len(t.levelOrder))
	for _, l := range t.levelOrder {
		levels = append(levels, Pair{From: strconv.Itoa(l), To: t.levels[l]})
	}
	add(sectionLevels, mapping(levels))

	return yaml.Marshal(doc)
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func sequence(words []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, w := range words {
		n.Content = append(n.Content, scalar(w))
	}
	return n
}

func mapping(pairs []Pair) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range pairs {
		n.Content = append(n.Content, scalar(p.From), scalar(p.To))
	}
	return n
}
