package simplify

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Siddhant-K-code/simplify/pkg/rules"
)

// StageName identifies one transformation of the pipeline.
type StageName string

const (
	// StageStopWords drops stop-word tokens.
	StageStopWords StageName = "stop_words"
	// StageSynonyms replaces tokens with their single-word synonym.
	StageSynonyms StageName = "synonyms"
	// StageAdjectives drops unnecessary adjective tokens.
	StageAdjectives StageName = "adjectives"
	// StagePhrases substitutes synonym phrases over the joined sentence.
	StagePhrases StageName = "phrases"
	// StagePassive rewrites "is/are (being) done by" constructions.
	StagePassive StageName = "passive_voice"
	// StageRedundant collapses redundant phrases.
	StageRedundant StageName = "redundant_phrases"
	// StageAuxiliaries removes auxiliary verbs and relative pronouns.
	StageAuxiliaries StageName = "auxiliaries"
	// StageSplit breaks long sentences on commas and semicolons.
	StageSplit StageName = "split"
	// StageNumbers converts number words to digits.
	StageNumbers StageName = "numbers"
)

func (n StageName) onTokens() bool {
	return n == StageStopWords || n == StageSynonyms
}

// SplitThreshold is the word count above which a sentence is split.
const SplitThreshold = 20

var (
	singularPassive = wholeWords(`is (being )?(done|used|shown|demonstrated) by`)
	pluralPassive   = wholeWords(`are (being )?(done|used|shown|demonstrated) by`)

	auxiliaryVerbs   = wholeWords(`is|are|am|was|were`)
	possessiveVerbs  = wholeWords(`has|have|had`)
	relativePronouns = wholeWords(`that|which|who`)

	clauseSeparator = regexp.MustCompile(`[,;]`)
)

// replacement is a compiled whole-word substitution.
type replacement struct {
	pattern wordMatcher
	with    string
}

func compileReplacements(pairs []rules.Pair) []replacement {
	out := make([]replacement, len(pairs))
	for i, p := range pairs {
		out[i] = replacement{pattern: wholeWord(p.From), with: p.To}
	}
	return out
}

func applyReplacements(text string, reps []replacement) string {
	for _, r := range reps {
		text = r.pattern.replaceAll(text, r.with)
	}
	return text
}

// state carries the sentence through the stages. text starts as the raw
// sentence. Token stages work on tokens, which replace text only when a
// level-2 stage joins them; at level 1 they are discarded.
type state struct {
	tokens []string
	text   string
	joined bool
}

func (s *state) join() {
	s.text = strings.Join(s.tokens, " ")
	s.joined = true
}

func (s *state) filter(drop func(string) bool) {
	kept := make([]string, 0, len(s.tokens))
	for _, tok := range s.tokens {
		if !drop(tok) {
			kept = append(kept, tok)
		}
	}
	s.tokens = kept
}

// stage is one gated step of the pipeline.
type stage struct {
	name StageName
	gate func(level int) bool
	run  func(*state)
}

func atLeast(min int) func(int) bool {
	return func(level int) bool { return level >= min }
}

func exactly(want int) func(int) bool {
	return func(level int) bool { return level == want }
}

func always(int) bool { return true }

// buildStages assembles the fixed stage order. The synonym table drives both
// the token pass and the phrase pass, so a replaced token can match again.
func (s *Simplifier) buildStages() []stage {
	synonyms := compileReplacements(s.rules.Synonyms())
	redundant := compileReplacements(s.rules.RedundantPhrases())

	return []stage{
		{StageStopWords, atLeast(rules.LevelMinimal), func(st *state) {
			st.filter(s.rules.IsStopWord)
		}},
		{StageSynonyms, atLeast(rules.LevelMinimal), func(st *state) {
			for i, tok := range st.tokens {
				if to, ok := s.rules.Synonym(tok); ok {
					st.tokens[i] = to
				}
			}
		}},
		{StageAdjectives, atLeast(rules.LevelModerate), func(st *state) {
			st.filter(s.rules.IsUnnecessaryAdjective)
			st.join()
		}},
		{StagePhrases, atLeast(rules.LevelModerate), func(st *state) {
			st.text = applyReplacements(st.text, synonyms)
		}},
		{StagePassive, atLeast(rules.LevelAggressive), func(st *state) {
			text := singularPassive.replaceAll(st.text, "does")
			st.text = pluralPassive.replaceAll(text, "do")
		}},
		{StageRedundant, atLeast(rules.LevelAggressive), func(st *state) {
			st.text = applyReplacements(st.text, redundant)
		}},
		{StageAuxiliaries, exactly(rules.LevelMaximum), func(st *state) {
			text := auxiliaryVerbs.replaceAll(st.text, "")
			text = possessiveVerbs.replaceAll(text, "")
			text = relativePronouns.replaceAll(text, "")
			st.text = strings.TrimSpace(text)
		}},
		{StageSplit, always, func(st *state) {
			st.text = SplitLongSentence(st.text)
		}},
		{StageNumbers, always, func(st *state) {
			st.text = applyReplacements(st.text, s.numbers)
		}},
	}
}

// Step records what one stage did during Explain. Token stages report the
// token stream they left behind, which only reaches the output once the
// adjectives stage joins it.
type Step struct {
	Stage   StageName `json:"stage"`
	Applied bool      `json:"applied"`
	Output  string    `json:"output"`
}

// Trace is the stage-by-stage account of one simplification.
type Trace struct {
	Input  string `json:"input"`
	Level  int    `json:"level"`
	Steps  []Step `json:"steps"`
	Output string `json:"output"`
}

// run executes the pipeline at level. When trace is non-nil every stage
// appends a Step to it.
func (s *Simplifier) run(sentence string, level int, trace *Trace) string {
	st := &state{tokens: Tokenize(sentence), text: sentence}

	for _, stg := range s.stages {
		applied := stg.gate(level)
		if applied {
			stg.run(st)
		}
		if trace != nil {
			out := st.text
			if stg.name.onTokens() && !st.joined {
				out = strings.Join(st.tokens, " ")
			}
			trace.Steps = append(trace.Steps, Step{Stage: stg.name, Applied: applied, Output: out})
		}
	}

	return strings.TrimSpace(st.text)
}

// SplitLongSentence splits sentences longer than SplitThreshold words on
// commas and semicolons. Each non-empty part is trimmed and capitalized and
// the parts are joined with ". ". Shorter sentences, and sentences that do not
// yield at least two parts, are returned unchanged.
func SplitLongSentence(sentence string) string {
	if len(strings.Fields(sentence)) <= SplitThreshold {
		return sentence
	}

	var parts []string
	for _, part := range clauseSeparator.Split(sentence, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, capitalize(part))
		}
	}
	if len(parts) < 2 {
		return sentence
	}
	return strings.Join(parts, ". ")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
