package simplify

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siddhant-K-code/simplify/pkg/rules"
)

func newSimplifier(t *testing.T, opts ...Option) *Simplifier {
	t.Helper()
	s, err := New(nil, opts...)
	require.NoError(t, err)
	return s
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"The cat, is on the MAT!", []string{"the", "cat", "is", "on", "the", "mat"}},
		{"snake_case and v2", []string{"snake_case", "and", "v2"}},
		{"Café déjà-vu", []string{"café", "déjà", "vu"}},
		{"", []string{}},
		{"?!... ,;", []string{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Tokenize(tt.input), "Tokenize(%q)", tt.input)
	}
}

func TestSimplify_ByLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		level int
		want  string
	}{
		{"tokens discarded at level 1", "the cat is on the mat", 1, "the cat is on the mat"},
		{"punctuation kept at level 1", "The cat, is on the mat", 1, "The cat, is on the mat"},
		{"stop words", "the cat is on the mat", 2, "cat mat"},
		{"token synonyms", "We utilize the tools", 2, "we use tools"},
		{"synonyms not applied at level 1", "We utilize the tools", 1, "We utilize the tools"},
		{"adjectives kept at level 1", "very tired cat", 1, "very tired cat"},
		{"adjectives dropped", "very tired cat", 2, "tired cat"},
		{"numbers at level 1", "I have one hundred dogs", 1, "I have 1 100 dogs"},
		{"synonym applied twice", "We accomplish not", 2, "we don't"},
		{"phrase inside non-ASCII word", "Zoëutilize things", 2, "zoëutilize things"},
		{"removal inside non-ASCII word", "Añowas gone", 4, "añowas gone"},
		{"plural passive", "Reports are used by managers", 3, "reports do managers"},
		{"passive untouched at level 2", "Reports are used by managers", 2, "reports are used by managers"},
		{"redundant phrases", "The end result was an unexpected surprise", 3, "result was surprise"},
		{"auxiliaries removed", "The end result was an unexpected surprise", 4, "result  surprise"},
		{"pronouns removed", "The plan that we have is ready", 4, "plan  we  ready"},
		{"empty", "", 4, ""},
		{"punctuation only", "...!?", 2, ""},
		{"punctuation only at level 1", "...!?", 1, "...!?"},
	}

	s := newSimplifier(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SimplifyAt(tt.input, tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSimplify_SingularPassive(t *testing.T) {
	tables, err := rules.New(rules.WithStopWords("the"))
	require.NoError(t, err)

	s, err := New(tables, WithLevel(3))
	require.NoError(t, err)

	assert.Equal(t, "report does team", s.Simplify("The report is being used by the team"))
	assert.Equal(t, "work does us", s.Simplify("Work is done by us"))
}

func TestSimplify_Deterministic(t *testing.T) {
	s := newSimplifier(t, WithLevel(4))
	input := "In order to optimize the end result, we will utilize twenty very fast machines which are shown by the vendor"

	first := s.Simplify(input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Simplify(input))
	}
}

func TestSetLevel(t *testing.T) {
	s := newSimplifier(t)
	assert.Equal(t, 1, s.Level())

	require.NoError(t, s.SetLevel(2))
	assert.Equal(t, 2, s.Level())
	assert.Equal(t, "tired cat", s.Simplify("very tired cat"))

	for _, bad := range []int{0, 5, -1, 100} {
		err := s.SetLevel(bad)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidLevel))

		var levelErr *InvalidLevelError
		require.True(t, errors.As(err, &levelErr))
		assert.Equal(t, bad, levelErr.Level)
		assert.Contains(t, err.Error(), "choose between 1 and 4")
	}

	// failed calls leave the level alone
	assert.Equal(t, 2, s.Level())
}

func TestSetLevel_MessageFollowsTable(t *testing.T) {
	tables, err := rules.New(rules.WithLevels(map[int]string{2: "b", 3: "c", 4: "d", 5: "e"}))
	require.NoError(t, err)

	s, err := New(tables)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Level())

	err = s.SetLevel(1)
	require.Error(t, err)
	assert.Equal(t, "invalid level 1: choose between 2 and 5", err.Error())
	assert.NoError(t, s.SetLevel(5))
}

func TestNew_InvalidInitialLevel(t *testing.T) {
	_, err := New(nil, WithLevel(9))
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestSimplifyAt_InvalidLevel(t *testing.T) {
	s := newSimplifier(t)
	_, err := s.SimplifyAt("anything", 7)
	assert.ErrorIs(t, err, ErrInvalidLevel)

	_, err = s.BatchAt([]string{"a"}, 0)
	assert.ErrorIs(t, err, ErrInvalidLevel)

	_, err = s.Explain("a", 0)
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestBatch(t *testing.T) {
	s := newSimplifier(t, WithLevel(2))
	input := []string{"very tired cat", "the cat is on the mat", "", "We accomplish not"}

	got := s.Batch(input)
	assert.Equal(t, []string{"tired cat", "cat mat", "", "we don't"}, got)
	assert.Equal(t, 2, s.Level())

	assert.Empty(t, s.Batch(nil))

	atFour, err := s.BatchAt(input, 4)
	require.NoError(t, err)
	assert.Len(t, atFour, len(input))
	assert.Equal(t, 2, s.Level())
}

func TestSplitLongSentence(t *testing.T) {
	twelve := func(w string) string { return strings.TrimSpace(strings.Repeat(w+" ", 12)) }

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "short sentence with comma",
			input: "one, two; three",
			want:  "one, two; three",
		},
		{
			name:  "long sentence without separators",
			input: strings.TrimSpace(strings.Repeat("word ", 25)),
			want:  strings.TrimSpace(strings.Repeat("word ", 25)),
		},
		{
			name:  "long sentence split",
			input: twelve("alpha") + ", " + twelve("beta") + "; " + twelve("gamma"),
			want:  "A" + twelve("alpha")[1:] + ". B" + twelve("beta")[1:] + ". G" + twelve("gamma")[1:],
		},
		{
			name:  "trailing separator yields one part",
			input: twelve("alpha") + " " + twelve("beta") + ",",
			want:  twelve("alpha") + " " + twelve("beta") + ",",
		},
		{
			name:  "empty parts dropped",
			input: twelve("alpha") + ",, ;" + twelve("beta"),
			want:  "A" + twelve("alpha")[1:] + ". B" + twelve("beta")[1:],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLongSentence(tt.input))
		})
	}
}

func TestSimplify_SplitsLongSentence(t *testing.T) {
	input := "The quick brown fox jumps over the lazy dog near the river bank, " +
		"while the old farmer watches from his porch; twenty birds sing loudly in the trees"
	want := "The quick brown fox jumps over the lazy dog near the river bank. " +
		"While the old farmer watches from his porch. 20 birds sing loudly in the trees"

	s := newSimplifier(t)
	assert.Equal(t, want, s.Simplify(input))

	got, err := s.SimplifyAt(input, 1)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	batch, err := s.BatchAt([]string{input}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{want}, batch)

	trace, err := s.Explain(input, 1)
	require.NoError(t, err)
	for _, step := range trace.Steps {
		if step.Stage == StageSplit {
			assert.True(t, step.Applied)
			assert.Contains(t, step.Output, "bank. While")
		}
	}
}

func TestWholeWord(t *testing.T) {
	tests := []struct {
		phrase string
		text   string
		with   string
		want   string
	}{
		{"one", "one one", "1", "1 1"},
		{"one", "señone añtwo", "1", "señone añtwo"},
		{"one", "someone, one.", "1", "someone, 1."},
		{"utilize", "zoëutilize", "use", "zoëutilize"},
		{"utilize", "utilize_it", "use", "utilize_it"},
		{"utilize", "re-UTILIZE.", "use", "re-use."},
		{"café", "un CAFÉ noir", "tea", "un tea noir"},
		{"do not", "Do not go", "don't", "don't go"},
		{"a a", "ba a a", "x", "ba x"},
		{"approximately", "approximately $5", "approx. $1", "approx. $1 $5"},
	}

	for _, tt := range tests {
		got := wholeWord(tt.phrase).replaceAll(tt.text, tt.with)
		assert.Equal(t, tt.want, got, "replace %q in %q", tt.phrase, tt.text)
	}
}

func TestConvertNumbers(t *testing.T) {
	s := newSimplifier(t)

	assert.Equal(t, "I have 1 100 dogs", s.ConvertNumbers("I have one hundred dogs"))
	assert.Equal(t, "17 cats and 7 dogs", s.ConvertNumbers("Seventeen cats and SEVEN dogs"))
	assert.Equal(t, "someone has tenure", s.ConvertNumbers("someone has tenure"))
	assert.Equal(t, "señone añtwo", s.ConvertNumbers("señone añtwo"))
	assert.Equal(t, "1 1 2", s.ConvertNumbers("one one two"))

	converted := s.ConvertNumbers("twenty thousand leagues")
	assert.Equal(t, "20 1000 leagues", converted)
	assert.Equal(t, converted, s.ConvertNumbers(converted))
}

func TestExplain(t *testing.T) {
	s := newSimplifier(t)

	trace, err := s.Explain("very tired cat", 2)
	require.NoError(t, err)

	assert.Equal(t, "tired cat", trace.Output)
	require.Len(t, trace.Steps, 9)

	byStage := map[StageName]Step{}
	for _, step := range trace.Steps {
		byStage[step.Stage] = step
	}
	assert.Equal(t, "very tired cat", byStage[StageSynonyms].Output)
	assert.Equal(t, "tired cat", byStage[StageAdjectives].Output)
	assert.True(t, byStage[StagePhrases].Applied)
	assert.False(t, byStage[StagePassive].Applied)
	assert.False(t, byStage[StageAuxiliaries].Applied)
	assert.True(t, byStage[StageNumbers].Applied)
}

func TestExplain_LevelGatesAreCumulative(t *testing.T) {
	s := newSimplifier(t)

	applied := func(level int) map[StageName]bool {
		trace, err := s.Explain("sample", level)
		require.NoError(t, err)
		out := map[StageName]bool{}
		for _, step := range trace.Steps {
			out[step.Stage] = step.Applied
		}
		return out
	}

	levelOne := applied(1)
	for _, level := range []int{2, 3, 4} {
		higher := applied(level)
		for stage, ran := range levelOne {
			if ran {
				assert.True(t, higher[stage], "stage %s should run at level %d", stage, level)
			}
		}
	}
	assert.False(t, applied(3)[StageAuxiliaries])
	assert.True(t, applied(4)[StageAuxiliaries])
}

func TestSimplify_Logging(t *testing.T) {
	var buf bytes.Buffer
	s := newSimplifier(t, WithLogger(zerolog.New(&buf)))

	s.Simplify("very tired cat")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"info"`)
	assert.Contains(t, lines[0], "original sentence")
	assert.Contains(t, lines[0], "very tired cat")
	assert.Contains(t, lines[1], "simplified sentence")
	assert.Contains(t, lines[1], `"label":"minimal"`)
}

func TestSimplifier_ConcurrentUse(t *testing.T) {
	s := newSimplifier(t)
	want, err := s.SimplifyAt("very tired cat", 2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = s.SetLevel(i%4 + 1)
		}(i)
		go func() {
			defer wg.Done()
			got, err := s.SimplifyAt("very tired cat", 2)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
			_ = s.Simplify("the cat is on the mat")
		}()
	}
	wg.Wait()
}

func TestMeasure(t *testing.T) {
	stats := Measure("the cat is on the mat", "cat mat")
	assert.Equal(t, 6, stats.InputWords)
	assert.Equal(t, 2, stats.OutputWords)
	assert.Greater(t, stats.ReductionPercent, 0.0)

	var total Stats
	total.Add(stats)
	total.Add(Measure("", ""))
	assert.Equal(t, stats, total)

	assert.Equal(t, Stats{}, Measure("", ""))
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"test", 1},
		{"hello world", 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateTokens(tt.input), "EstimateTokens(%q)", tt.input)
	}
}
