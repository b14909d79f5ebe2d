package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/video-stream/subreflow/internal/config"
	"github.com/video-stream/subreflow/internal/logging"
)

var version = "dev"

// globalOptions are shared by every subcommand.
type globalOptions struct {
	configPath string
	envFile    string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	topts := &translateOptions{}

	cmd := &cobra.Command{
		Use:   "subreflow [file.srt]",
		Short: "Translate subtitles sentence by sentence and reflow the timeline",
		Long: `subreflow joins caption fragments into whole sentences, translates each
sentence once and lays the translation back onto the original timeline,
wrapped to a fixed line width.

Running it with a file is the same as "subreflow translate <file>";
-w translates the argument as a single word or phrase instead.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			if topts.word {
				return runWord(cmd, g, topts, args)
			}
			if len(args) != 1 {
				return errors.New("expected exactly one subtitle file")
			}
			return runTranslate(cmd, g, topts, args[0])
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "YAML config file")
	pf.StringVarP(&g.envFile, "env-file", "e", "", "env file to load before reading config (default .env if present)")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")

	addTranslateFlags(cmd, topts)
	cmd.Flags().BoolVarP(&topts.word, "word", "w", false, "translate the arguments as a word or phrase")

	cmd.AddCommand(newTranslateCmd(g), newWordCmd(g), newServeCmd(g))
	return cmd
}

// loadEnv reads the env file. A missing default .env is not an error.
func loadEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// setup loads env, config and the logger in that order.
func setup(g *globalOptions) (*config.Config, *zap.Logger, error) {
	if err := loadEnv(g.envFile); err != nil {
		return nil, nil, err
	}
	path := g.configPath
	if path == "" {
		path = os.Getenv("SUBREFLOW_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
