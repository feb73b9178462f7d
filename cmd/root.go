package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Siddhant-K-code/simplify/pkg/cache"
	"github.com/Siddhant-K-code/simplify/pkg/config"
	"github.com/Siddhant-K-code/simplify/pkg/logging"
	"github.com/Siddhant-K-code/simplify/pkg/rules"
	"github.com/Siddhant-K-code/simplify/pkg/simplify"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "simplify",
	Short: "Simplify - deterministic sentence compression with tunable levels",
	Long: `Simplify rewrites sentences into shorter, lexically simpler forms using
table-driven rules. No models, no network calls: the output is a pure
function of the sentence, the compression level and the rule tables.

Levels:
  1 minimal     number words to digits, sentences over 20 words split
  2 moderate    + stop words and unnecessary adjectives dropped, synonym
                  substitution for words and phrases
  3 aggressive  + passive-to-active rewrite, redundant phrases collapsed
  4 maximum     + is/are/am/was/were, has/have/had and that/which/who removed

Environment Variables:
  SIMPLIFY_SIMPLIFIER_LEVEL   Default compression level
  SIMPLIFY_AUTH_API_KEYS      Comma-separated API keys for 'simplify api'
  SIMPLIFY_LOGGING_LEVEL      Log level (debug, info, warn, error)`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.simplify.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().String("rules", "", "YAML file overriding the built-in rule tables")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("simplifier.rules_file", rootCmd.PersistentFlags().Lookup("rules"))
}

// initConfig reads in .env, the config file and ENV variables if set.
func initConfig() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".simplify")
	}

	viper.SetEnvPrefix("SIMPLIFY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so register the ones
	// commonly set from the environment.
	for _, key := range []string{"simplifier.level", "auth.api_keys", "logging.level", "logging.format", "logging.output"} {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// loadConfig returns the merged configuration (defaults, file, env, flags).
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// newLogger builds the logger described by cfg. --verbose lowers the
// threshold to info so the per-sentence events become visible.
func newLogger(cfg *config.Config) (zerolog.Logger, io.Closer, error) {
	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return logger, nil, err
	}
	if viper.GetBool("verbose") && logger.GetLevel() > zerolog.InfoLevel {
		logger = logger.Level(zerolog.InfoLevel)
	}
	return logger, closer, nil
}

// newSimplifier builds a Simplifier from cfg, loading the rule override
// file when one is configured.
func newSimplifier(cfg *config.Config, logger zerolog.Logger) (*simplify.Simplifier, error) {
	tables := rules.Default()
	if cfg.Simplifier.RulesFile != "" {
		loaded, err := rules.LoadFile(cfg.Simplifier.RulesFile, tables)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		tables = loaded
	}

	s, err := simplify.New(tables,
		simplify.WithLogger(logger),
		simplify.WithLevel(cfg.Simplifier.Level),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create simplifier: %w", err)
	}
	return s, nil
}

// setup loads config and builds the logger and simplifier shared by most
// commands. Callers must close the returned closer.
func setup() (*config.Config, *simplify.Simplifier, zerolog.Logger, io.Closer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, zerolog.Nop(), nil, err
	}

	logger, closer, err := newLogger(cfg)
	if err != nil {
		return nil, nil, zerolog.Nop(), nil, err
	}

	s, err := newSimplifier(cfg, logger)
	if err != nil {
		_ = closer.Close()
		return nil, nil, zerolog.Nop(), nil, err
	}
	return cfg, s, logger, closer, nil
}

// readSentence returns args joined, or one line from in when args is empty.
func readSentence(args []string, in io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// cacheConfig maps the cache section onto the in-memory cache settings.
func cacheConfig(cfg *config.Config) cache.Config {
	c := cache.DefaultConfig()
	c.MaxSize = int64(cfg.Cache.MaxSize)
	c.DefaultTTL = cfg.Cache.TTL
	return c
}
