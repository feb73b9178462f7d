package batch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siddhant-K-code/simplify/pkg/simplify"
)

var corpus = []string{
	"The cat is on the mat",
	"We utilize the tools in order to accomplish the task",
	"The end result was an unexpected surprise",
	"Reports are used by managers",
	"",
	"I have one hundred very old dogs",
	"The plan that we have is ready",
}

func newSimplifier(t *testing.T) *simplify.Simplifier {
	t.Helper()
	s, err := simplify.New(nil)
	require.NoError(t, err)
	return s
}

func TestRun_MatchesSequential(t *testing.T) {
	s := newSimplifier(t)

	var input []string
	for i := 0; i < 20; i++ {
		input = append(input, corpus...)
	}

	for _, level := range []int{1, 2, 3, 4} {
		want, err := s.BatchAt(input, level)
		require.NoError(t, err)

		r := New(s, Config{Workers: 8, ChannelBuffer: 4})
		got, stats, err := r.Run(context.Background(), input, level, nil)
		require.NoError(t, err)

		assert.Equal(t, want, got, "level %d", level)
		assert.Equal(t, len(input), stats.Processed)
		assert.Equal(t, len(input), stats.Total)
	}
}

func TestRun_Empty(t *testing.T) {
	r := New(newSimplifier(t), Config{Workers: 2})

	got, stats, err := r.Run(context.Background(), nil, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, stats.Processed)
}

func TestRun_InvalidLevel(t *testing.T) {
	r := New(newSimplifier(t), Config{Workers: 2})

	_, _, err := r.Run(context.Background(), corpus, 9, nil)
	require.Error(t, err)
	assert.True(t, IsInvalidLevel(err))
}

func TestRun_Progress(t *testing.T) {
	r := New(newSimplifier(t), Config{Workers: 3})

	var calls int
	var last Stats
	_, stats, err := r.Run(context.Background(), corpus, 2, func(s Stats) {
		calls++
		last = s
	})
	require.NoError(t, err)

	assert.Equal(t, len(corpus), calls)
	assert.Equal(t, len(corpus), last.Processed)
	assert.Greater(t, stats.Reduction.InputWords, stats.Reduction.OutputWords)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(newSimplifier(t), Config{Workers: 2})
	input := make([]string, 500)
	for i := range input {
		input[i] = corpus[i%len(corpus)]
	}

	_, _, err := r.Run(ctx, input, 1, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

type failingSimplifier struct {
	calls atomic.Int64
}

func (f *failingSimplifier) SimplifyAt(sentence string, level int) (string, error) {
	if f.calls.Add(1) == 3 {
		return "", errors.New("boom")
	}
	return sentence, nil
}

func TestProcess_FirstErrorWins(t *testing.T) {
	r := New(&failingSimplifier{}, Config{Workers: 1})

	_, _, err := r.Process(context.Background(), []Record{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"}}, 1, nil, nil)
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())
}

func TestProcess_ResultCallbackCarriesIDs(t *testing.T) {
	r := New(newSimplifier(t), Config{Workers: 4})

	records := []Record{
		{ID: "a", Text: "the cat is on the mat"},
		{ID: "b", Text: "very tired cat"},
	}

	seen := map[string]string{}
	results, _, err := r.Process(context.Background(), records, 2, func(res Result) {
		seen[res.ID] = res.Output
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"a": "cat mat", "b": "tired cat"}, seen)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, 1, results[1].Index)
}

func TestNew_Defaults(t *testing.T) {
	r := New(newSimplifier(t), Config{})
	assert.Equal(t, DefaultConfig().Workers, r.Workers())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatLines, f)

	f, err = ParseFormat("jsonl")
	require.NoError(t, err)
	assert.Equal(t, FormatJSONL, f)

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestReadRecords_Lines(t *testing.T) {
	records, skipped, err := ReadRecords(strings.NewReader("first line\n\nthird line\n"), FormatLines)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, []Record{{Text: "first line"}, {Text: ""}, {Text: "third line"}}, records)
}

func TestReadRecords_JSONL(t *testing.T) {
	input := `{"id":"1","text":"the cat is on the mat"}

not json
{"text":"very tired cat"}
`
	records, skipped, err := ReadRecords(strings.NewReader(input), FormatJSONL)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, []Record{{ID: "1", Text: "the cat is on the mat"}, {Text: "very tired cat"}}, records)
}

func TestWriteResults(t *testing.T) {
	results := []Result{
		{Index: 0, ID: "1", Input: "the cat is on the mat", Output: "cat mat"},
		{Index: 1, Input: "", Output: ""},
	}

	var lines bytes.Buffer
	require.NoError(t, WriteResults(&lines, FormatLines, results))
	assert.Equal(t, "cat mat\n\n", lines.String())

	var jsonl bytes.Buffer
	require.NoError(t, WriteResults(&jsonl, FormatJSONL, results))
	assert.Equal(t,
		`{"id":"1","text":"the cat is on the mat","simplified":"cat mat"}`+"\n"+`{"text":"","simplified":""}`+"\n",
		jsonl.String())
}

func TestStats_Throughput(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Stats{Processed: 50, StartTime: start, EndTime: start.Add(2 * time.Second)}

	assert.Equal(t, 2*time.Second, s.Duration())
	assert.Equal(t, 25.0, s.SentencesPerSecond())

	s.EndTime = start
	assert.Zero(t, s.SentencesPerSecond())
}
