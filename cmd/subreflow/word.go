package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newWordCmd(g *globalOptions) *cobra.Command {
	o := &translateOptions{}
	cmd := &cobra.Command{
		Use:   "word <text>...",
		Short: "Translate a word or phrase",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWord(cmd, g, o, args)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.engine, "engine", "", "translation engine")
	f.StringVar(&o.from, "from", "", "source language")
	f.StringVar(&o.to, "to", "", "target language")
	return cmd
}

func runWord(cmd *cobra.Command, g *globalOptions, o *translateOptions, args []string) error {
	cfg, logger, err := setup(g)
	if err != nil {
		return err
	}
	defer logger.Sync()
	cfg.Reflow.Cache = false

	svc, closeDB, err := newService(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	out, err := svc.TranslateText(context.Background(), strings.Join(args, " "), o.params())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
