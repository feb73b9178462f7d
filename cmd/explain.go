package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Siddhant-K-code/simplify/pkg/simplify"
)

var explainCmd = &cobra.Command{
	Use:   "explain [sentence]",
	Short: "Show each pipeline stage for one sentence",
	Long: `Runs one sentence through the pipeline and prints the text after every
stage, marking stages the level skipped.

Example:
  simplify explain --level 3 "The report was written by the team"
  simplify explain --json "It is very important to note this"`,
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)

	explainCmd.Flags().IntP("level", "l", 0, "compression level (default from config)")
	explainCmd.Flags().Bool("json", false, "output the trace as JSON")
}

func runExplain(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetInt("level")
	asJSON, _ := cmd.Flags().GetBool("json")

	_, s, _, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	sentence, err := readSentence(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if level == 0 {
		level = s.Level()
	}

	trace, err := s.Explain(sentence, level)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(trace)
	}
	return printTrace(cmd.OutOrStdout(), trace)
}

func printTrace(w io.Writer, trace *simplify.Trace) error {
	fmt.Fprintf(w, "Input:  %s\n", trace.Input)
	fmt.Fprintf(w, "Level:  %d\n\n", trace.Level)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, step := range trace.Steps {
		if !step.Applied {
			fmt.Fprintf(tw, "  %s\t(skipped)\n", step.Stage)
			continue
		}
		fmt.Fprintf(tw, "  %s\t%s\n", step.Stage, step.Output)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nOutput: %s\n", trace.Output)
	return nil
}
