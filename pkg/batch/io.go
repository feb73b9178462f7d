package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Format selects the batch file encoding.
type Format string

const (
	// FormatLines is one sentence per line. Empty lines are sentences too,
	// so output lines stay aligned with input lines.
	FormatLines Format = "lines"

	// FormatJSONL is one {"id": ..., "text": ...} object per line.
	FormatJSONL Format = "jsonl"
)

// ParseFormat validates a format name. Empty selects FormatLines.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatLines, "":
		return FormatLines, nil
	case FormatJSONL:
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unsupported batch format %q (supported: lines, jsonl)", name)
	}
}

// ReadFile reads records from path.
func ReadFile(path string, format Format) ([]Record, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ReadRecords(f, format)
}

// ReadRecords parses r. It returns the records and the number of malformed
// JSONL lines that were skipped.
func ReadRecords(r io.Reader, format Format) ([]Record, int, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var (
		records []Record
		skipped int
	)
	for scanner.Scan() {
		line := scanner.Bytes()

		if format != FormatJSONL {
			records = append(records, Record{Text: string(line)})
			continue
		}

		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("failed to read input: %w", err)
	}
	return records, skipped, nil
}

// jsonResult is the JSONL output shape.
type jsonResult struct {
	ID         string `json:"id,omitempty"`
	Text       string `json:"text"`
	Simplified string `json:"simplified"`
}

// WriteResults writes results to w in the given format.
func WriteResults(w io.Writer, format Format, results []Result) error {
	bw := bufio.NewWriter(w)

	if format == FormatJSONL {
		enc := json.NewEncoder(bw)
		for _, res := range results {
			if err := enc.Encode(jsonResult{ID: res.ID, Text: res.Input, Simplified: res.Output}); err != nil {
				return fmt.Errorf("failed to encode result %d: %w", res.Index, err)
			}
		}
	} else {
		for _, res := range results {
			if _, err := fmt.Fprintln(bw, res.Output); err != nil {
				return fmt.Errorf("failed to write result %d: %w", res.Index, err)
			}
		}
	}

	return bw.Flush()
}
