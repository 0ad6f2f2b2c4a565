package main

import (
	"fmt"
	"io"

	"github.com/ChamsBouzaiene/reviewer/internal/config"
	"github.com/ChamsBouzaiene/reviewer/internal/engine"
	"github.com/ChamsBouzaiene/reviewer/internal/reviewer"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (a *app) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.v)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		return config.Config{}, err
	}
	log.Debug().Str("config", a.v.ConfigFileUsed()).Msg("loaded configuration")
	return cfg, nil
}

func (a *app) runReview(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	// The credential is checked before anything talks to the gateway.
	if err := cfg.Validate(); err != nil {
		return err
	}

	llm, err := a.newLLM(cfg)
	if err != nil {
		return err
	}

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	ctx := cmd.Context()
	r, err := reviewer.New(ctx, dir, llm, cfg, reviewer.WithLogger(log.Logger))
	if err != nil {
		return err
	}

	log.Info().
		Str("directory", r.Dir()).
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Bool("dry_run", cfg.DryRun).
		Msg("reviewing project")

	outcome, _ := r.Review(ctx)
	a.code = report(cmd.OutOrStdout(), cmd.ErrOrStderr(), outcome)
	return nil
}

// report prints the outcome for a person and returns the exit code.
func report(stdout, stderr io.Writer, o engine.Outcome) int {
	switch o.Kind {
	case engine.OutcomeSummary:
		fmt.Fprintln(stdout, "\nCODE REVIEW SUMMARY")
		fmt.Fprintln(stdout)
		if o.Summary == "" {
			fmt.Fprintln(stderr, "note: the model finished without a summary")
		} else {
			fmt.Fprintln(stdout, o.Summary)
		}
	case engine.OutcomeBudgetExhausted:
		fmt.Fprintf(stderr, "review incomplete: %s\n", o.Reason)
	default:
		fmt.Fprintf(stderr, "review failed: %s\n", o.Reason)
	}
	return exitCode(o.Kind)
}

func exitCode(kind engine.OutcomeKind) int {
	switch kind {
	case engine.OutcomeSummary:
		return exitSummary
	case engine.OutcomeBudgetExhausted:
		return exitBudgetExhausted
	default:
		return exitFailure
	}
}
