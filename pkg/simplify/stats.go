package simplify

import "strings"

// Stats describes how much a simplification shortened its input.
type Stats struct {
	// InputWords is the whitespace-separated word count before simplification.
	InputWords int `json:"input_words"`

	// OutputWords is the word count after simplification.
	OutputWords int `json:"output_words"`

	// InputTokens is the estimated LLM token count before simplification.
	InputTokens int `json:"input_tokens"`

	// OutputTokens is the estimated LLM token count after simplification.
	OutputTokens int `json:"output_tokens"`

	// ReductionPercent is the percentage of estimated tokens removed.
	ReductionPercent float64 `json:"reduction_percent"`
}

// Measure compares input and output sentences.
func Measure(input, output string) Stats {
	stats := Stats{
		InputWords:   len(strings.Fields(input)),
		OutputWords:  len(strings.Fields(output)),
		InputTokens:  EstimateTokens(input),
		OutputTokens: EstimateTokens(output),
	}
	if stats.InputTokens > 0 {
		stats.ReductionPercent = float64(stats.InputTokens-stats.OutputTokens) / float64(stats.InputTokens) * 100
	}
	return stats
}

// Add accumulates other into s and recomputes the reduction.
func (s *Stats) Add(other Stats) {
	s.InputWords += other.InputWords
	s.OutputWords += other.OutputWords
	s.InputTokens += other.InputTokens
	s.OutputTokens += other.OutputTokens
	if s.InputTokens > 0 {
		s.ReductionPercent = float64(s.InputTokens-s.OutputTokens) / float64(s.InputTokens) * 100
	}
}

// EstimateTokens provides a rough token count (avg 4 chars per token).
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}
