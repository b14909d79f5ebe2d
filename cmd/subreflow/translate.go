package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/video-stream/subreflow/internal/config"
	"github.com/video-stream/subreflow/internal/db"
	"github.com/video-stream/subreflow/internal/job"
	"github.com/video-stream/subreflow/internal/storage"
	"github.com/video-stream/subreflow/internal/subtitle/translate"
)

type translateOptions struct {
	engine       string
	from         string
	to           string
	preset       string
	prompt       string
	width        int
	keepLeftover bool
	concurrency  int
	skipBadTimes bool
	output       string
	noCache      bool
	quiet        bool
	word         bool
}

func addTranslateFlags(cmd *cobra.Command, o *translateOptions) {
	f := cmd.Flags()
	f.StringVar(&o.engine, "engine", "", "translation engine: "+strings.Join(translate.EngineNames, ", "))
	f.StringVar(&o.from, "from", "", "source language (default from config, en)")
	f.StringVar(&o.to, "to", "", "target language (default from config, zh)")
	f.StringVar(&o.preset, "preset", "", "LLM prompt preset: anime, movie, documentary, custom")
	f.StringVar(&o.prompt, "prompt", "", "extra instructions for the custom preset")
	f.IntVar(&o.width, "width", 0, "maximum characters per display line (default 18)")
	f.BoolVar(&o.keepLeftover, "keep-leftover", false, "fold wrapped lines that do not fit a cue into the first cue instead of dropping them")
	f.IntVar(&o.concurrency, "concurrency", 0, "parallel translation requests (default 1)")
	f.BoolVar(&o.skipBadTimes, "skip-malformed", false, "skip timelines that are not HH:MM:SS,mmm instead of failing")
	f.StringVarP(&o.output, "output", "o", "", "output file (default <input>-<lang>.srt)")
	f.BoolVar(&o.noCache, "no-cache", false, "do not use the translation cache")
	f.BoolVarP(&o.quiet, "quiet", "q", false, "no progress output")
}

func (o *translateOptions) params() job.ReflowParams {
	return job.ReflowParams{
		Engine:       o.engine,
		SourceLang:   o.from,
		TargetLang:   o.to,
		Preset:       o.preset,
		CustomPrompt: o.prompt,
		MaxLineWidth: o.width,
		KeepLeftover: o.keepLeftover,
	}
}

// apply copies flags that live on the config rather than on the job params.
func (o *translateOptions) apply(cfg *config.Config) error {
	if o.concurrency < 0 {
		return fmt.Errorf("--concurrency must be >= 1")
	}
	if o.concurrency > 0 {
		cfg.Reflow.Concurrency = o.concurrency
	}
	if o.width < 0 {
		return fmt.Errorf("--width must be >= 1")
	}
	if o.skipBadTimes {
		cfg.Reflow.SkipMalformedTimelines = true
	}
	if o.noCache {
		cfg.Reflow.Cache = false
	}
	return nil
}

func newTranslateCmd(g *globalOptions) *cobra.Command {
	o := &translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate <file>",
		Short: "Translate and reflow one subtitle file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, g, o, args[0])
		},
	}
	addTranslateFlags(cmd, o)
	return cmd
}

// newService opens the cache database when caching is on. The returned
// closer is never nil.
func newService(cfg *config.Config, logger *zap.Logger) (*translate.Service, func(), error) {
	if !cfg.Reflow.Cache {
		return translate.NewService(cfg, nil, nil, logger), func() {}, nil
	}
	if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
		logger.Warn("translation cache disabled", zap.Error(err))
		return translate.NewService(cfg, nil, nil, logger), func() {}, nil
	}
	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		logger.Warn("translation cache disabled", zap.String("db", cfg.DBPath), zap.Error(err))
		return translate.NewService(cfg, nil, nil, logger), func() {}, nil
	}
	return translate.NewService(cfg, database.GetSetting, database, logger), func() { database.Close() }, nil
}

func runTranslate(cmd *cobra.Command, g *globalOptions, o *translateOptions, input string) error {
	cfg, logger, err := setup(g)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if err := o.apply(cfg); err != nil {
		return err
	}

	svc, closeDB, err := newService(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	params := svc.Resolve(o.params())
	output := o.output
	if output == "" {
		output = storage.OutputPath(input, params.TargetLang)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errOut := cmd.ErrOrStderr()
	var progress func(done, total int)
	if !o.quiet {
		progress = func(done, total int) {
			fmt.Fprintf(errOut, "\rtranslating: %6.2f%% (%d/%d)", float64(done)*100/float64(total), done, total)
		}
	}

	res, err := svc.TranslateFile(ctx, input, output, params, progress)
	if progress != nil {
		fmt.Fprintln(errOut)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d sentences, %d cues\n", output, res.Blocks, res.Cues)
	if res.Dropped > 0 {
		fmt.Fprintf(errOut, "warning: %d sentences had no timeline and were dropped\n", res.Dropped)
	}
	if res.SkippedTimelines > 0 {
		fmt.Fprintf(errOut, "warning: %d malformed timelines skipped\n", res.SkippedTimelines)
	}
	return nil
}
