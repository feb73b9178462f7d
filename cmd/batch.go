package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Siddhant-K-code/simplify/pkg/batch"
	"github.com/Siddhant-K-code/simplify/pkg/cache"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Simplify a file of sentences in parallel",
	Long: `Reads sentences from a file (or stdin), simplifies them with a worker
pool and writes the results in input order.

Formats:
  lines  one sentence per line; output has one line per input line
  jsonl  {"id": "...", "text": "..."} per line; output adds "simplified"

Example:
  simplify batch --input sentences.txt --output simple.txt --level 2
  simplify batch -i docs.jsonl -f jsonl --workers 8 --level 3
  cat sentences.txt | simplify batch --level 4 > out.txt`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("input", "i", "", "input file (default: stdin)")
	batchCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	batchCmd.Flags().StringP("format", "f", "", "file format: lines or jsonl (default from config)")
	batchCmd.Flags().IntP("level", "l", 0, "compression level (default from config)")
	batchCmd.Flags().IntP("workers", "w", 0, "number of parallel workers (default from config)")
	batchCmd.Flags().Bool("no-progress", false, "disable the progress bar")
}

func runBatch(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	formatName, _ := cmd.Flags().GetString("format")
	level, _ := cmd.Flags().GetInt("level")
	workers, _ := cmd.Flags().GetInt("workers")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	cfg, s, logger, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	if formatName == "" {
		formatName = cfg.Batch.Format
	}
	format, err := batch.ParseFormat(formatName)
	if err != nil {
		return err
	}
	if level == 0 {
		level = s.Level()
	}
	if workers <= 0 {
		workers = cfg.Batch.Workers
	}

	// Handle interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var records []batch.Record
	var skipped int
	if inputPath != "" {
		records, skipped, err = batch.ReadFile(inputPath, format)
	} else {
		records, skipped, err = batch.ReadRecords(cmd.InOrStdin(), format)
	}
	if err != nil {
		return err
	}
	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Msg("skipped malformed input lines")
	}
	if len(records) == 0 {
		return fmt.Errorf("no sentences to process")
	}

	var worker batch.Simplifier = s
	if cfg.Cache.Enabled {
		c := cache.NewMemoryCache(cacheConfig(cfg))
		defer c.Close()
		worker = cache.NewMemo(s, c)
	}
	runner := batch.New(worker, batch.Config{Workers: workers})

	var progress batch.ProgressCallback
	var bar *progressbar.ProgressBar
	if !noProgress {
		bar = progressbar.NewOptions(
			len(records),
			progressbar.OptionSetDescription(fmt.Sprintf("Simplifying (level %d)", level)),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("sentences"),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true),
		)
		progress = func(st batch.Stats) {
			_ = bar.Set(st.Processed)
		}
	}

	results, stats, err := runner.Process(ctx, records, level, nil, progress)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	var out io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := batch.WriteResults(out, format, results); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Processed %d sentences in %v (%.0f/s) with %d workers\n",
		stats.Processed, stats.Duration().Round(time.Millisecond), stats.SentencesPerSecond(), runner.Workers())
	fmt.Fprintf(os.Stderr, "Words: %d -> %d, est. tokens: %d -> %d (%.1f%% reduction)\n",
		stats.Reduction.InputWords, stats.Reduction.OutputWords,
		stats.Reduction.InputTokens, stats.Reduction.OutputTokens, stats.Reduction.ReductionPercent)

	return nil
}
