package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Siddhant-K-code/simplify/pkg/rules"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the configured compression levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, s, _, closer, err := setup()
		if err != nil {
			return err
		}
		defer closer.Close()

		printLevelTable(cmd.OutOrStdout(), s.Rules(), s.Level())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(levelsCmd)
}

func printLevelTable(w io.Writer, t *rules.Tables, active int) {
	for _, l := range t.Levels() {
		marker := " "
		if l == active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %d  %s\n", marker, l, t.Label(l))
	}
}
