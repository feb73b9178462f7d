package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Siddhant-K-code/simplify/pkg/config"
	"github.com/Siddhant-K-code/simplify/pkg/rules"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Simplify configuration",
	Long:  `Commands for creating and validating simplify.yaml configuration files.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a simplify.yaml template",
	Long: `Creates a simplify.yaml configuration file with all available options
and their default values.

Example:
  simplify config init
  simplify config init --output /etc/simplify/simplify.yaml`,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a simplify.yaml configuration file",
	Long: `Reads and validates a configuration file, reporting any errors.

Example:
  simplify config validate
  simplify config validate simplify.yaml
  simplify config validate --config /etc/simplify/simplify.yaml`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configRulesCmd)

	configInitCmd.Flags().StringP("output", "o", "simplify.yaml", "output file path")
	configInitCmd.Flags().Bool("stdout", false, "print to stdout instead of file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	toStdout, _ := cmd.Flags().GetBool("stdout")
	output, _ := cmd.Flags().GetString("output")

	template := config.GenerateTemplate()

	if toStdout {
		fmt.Print(template)
		return nil
	}

	// Check if file already exists
	if _, err := os.Stat(output); err == nil {
		return fmt.Errorf("file %s already exists (use --stdout to print to stdout)", output)
	}

	if err := os.WriteFile(output, []byte(template), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Created %s\n", output)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	var cfgPath string

	if len(args) > 0 {
		cfgPath = args[0]
	} else if cfgFile != "" {
		cfgPath = cfgFile
	} else {
		// Search default locations
		candidates := []string{
			"simplify.yaml",
			".simplify.yaml",
		}
		home, err := os.UserHomeDir()
		if err == nil {
			candidates = append(candidates,
				home+"/.simplify.yaml",
				home+"/simplify.yaml",
			)
		}

		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				cfgPath = c
				break
			}
		}

		if cfgPath == "" {
			return fmt.Errorf("no config file found (try: simplify config validate <file>)")
		}
	}

	cfg, err := config.LoadFromFile(cfgPath)
	if err != nil {
		return fmt.Errorf("validation failed for %s:\n%w", cfgPath, err)
	}

	fmt.Fprintf(os.Stderr, "Config file %s is valid\n", cfgPath)
	fmt.Fprintf(os.Stderr, "  simplifier.level: %d\n", cfg.Simplifier.Level)
	if cfg.Simplifier.RulesFile != "" {
		fmt.Fprintf(os.Stderr, "  simplifier.rules_file: %s\n", cfg.Simplifier.RulesFile)
	}
	fmt.Fprintf(os.Stderr, "  batch.workers: %d\n", cfg.Batch.Workers)
	fmt.Fprintf(os.Stderr, "  cache.enabled: %v\n", cfg.Cache.Enabled)
	return nil
}

var configRulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the active rule tables as YAML",
	Long: `Prints the rule tables (built-in, or with --rules applied) in the format
accepted by simplifier.rules_file. Use it as a starting point for a custom
rules file.

Example:
  simplify config rules > rules.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, s, _, closer, err := setup()
		if err != nil {
			return err
		}
		defer closer.Close()

		data, err := rules.Marshal(s.Rules())
		if err != nil {
			return fmt.Errorf("failed to encode rules: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}
