package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/screener/internal/batch"
	"github.com/JaimeStill/screener/internal/compare"
	"github.com/JaimeStill/screener/internal/config"
	"github.com/JaimeStill/screener/internal/documents"
	"github.com/JaimeStill/screener/internal/export"
	"github.com/JaimeStill/screener/internal/infrastructure"
	"github.com/JaimeStill/screener/internal/status"
	"github.com/JaimeStill/screener/pkg/lifecycle"
)

type runFlags struct {
	input     string
	output    string
	rows      string
	batchSize int
	workers   int
	runID     string
	resume    bool
	followUp  bool
	status    bool
}

func newRunCmd(configPath *string) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Screen a document set",
		Long: `Screen every document in --input with both configured classifiers.

Progress is checkpointed after each batch under --run-id. Interrupting the
run (Ctrl-C) lets in-flight batches finish and keeps the checkpoint; run
again with --resume and the same --run-id to continue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg, &f)

			if f.runID == "" {
				if f.resume {
					return errors.New("--resume requires --run-id")
				}
				f.runID = uuid.NewString()
			}

			return runScreening(cmd, cfg, &f)
		},
	}

	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Documents file (JSON array or JSON Lines)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Report output path")
	cmd.Flags().StringVar(&f.rows, "rows", "", "Optional CSV path for per-document rows")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "Documents per checkpointed batch")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Concurrent workers")
	cmd.Flags().StringVar(&f.runID, "run-id", "", "Run identifier (default: new UUID)")
	cmd.Flags().BoolVar(&f.resume, "resume", false, "Require an existing checkpoint for --run-id")
	cmd.Flags().BoolVar(&f.followUp, "follow-up", true, "Re-ask classifiers about unresolved criteria")
	cmd.Flags().BoolVar(&f.status, "status", false, "Serve live progress over HTTP")
	cmd.MarkFlagRequired("input")

	return cmd
}

// applyRunFlags overrides config values with flags the user set explicitly.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, f *runFlags) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Run.Output = f.output
	}
	if flags.Changed("rows") {
		cfg.Run.Rows = f.rows
	}
	if flags.Changed("batch-size") {
		cfg.Run.BatchSize = f.batchSize
	}
	if flags.Changed("workers") {
		cfg.Run.Workers = f.workers
	}
	if flags.Changed("follow-up") {
		v := f.followUp
		cfg.Run.FollowUp = &v
	}
	if flags.Changed("status") {
		cfg.Status.Enabled = f.status
	}
}

func runScreening(cmd *cobra.Command, cfg *config.Config, f *runFlags) error {
	docs, err := documents.Load(f.input)
	if err != nil {
		return err
	}

	lc := lifecycle.New(cmd.Context())
	infra, err := infrastructure.New(lc, cfg)
	if err != nil {
		return err
	}
	logger := infra.Logger

	screening, err := infrastructure.NewScreening(cfg, nil, logger)
	if err != nil {
		return err
	}

	if err := infra.Start(); err != nil {
		return err
	}

	orch := batch.New(infra.Checkpoints, screening.Factory(lc.Context()), logger)

	if cfg.Status.Enabled {
		status.New(&cfg.Status, f.runID, orch, lc, logger).Start(lc)
	}

	if err := lc.WaitForStartup(); err != nil {
		lc.Shutdown(cfg.ShutdownTimeoutDuration())
		return err
	}

	stop := lc.NotifyOnSignal()
	defer stop()

	logger.Info(
		"screener starting",
		"version", cfg.Version,
		"env", cfg.Env(),
		"run_id", f.runID,
		"documents", len(docs),
		"classifiers", screening.ClassifierNames(),
		"dictionary", screening.Matcher.Version(),
	)

	start := time.Now()
	results, runErr := orch.Run(lc.RunContext(), docs, batch.Options{
		BatchSize:         cfg.Run.BatchSize,
		Workers:           cfg.Run.Workers,
		RunID:             f.runID,
		RequireCheckpoint: f.resume,
		OnProgress: func(s batch.Stats) {
			logger.Info(
				"progress",
				"completed", s.Completed,
				"total", s.Total,
				"percent", fmt.Sprintf("%.1f", s.Percent),
				"disagreements", s.Disagreements,
				"errors", s.Errors,
			)
		},
	})
	elapsed := time.Since(start)

	if results != nil {
		if err := writeOutputs(cmd, cfg, f.runID, screening, orch.Progress(), results, elapsed, logger); err != nil {
			logger.Error("export failed", "error", err)
			runErr = errors.Join(runErr, err)
		}
	}

	if err := lc.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		logger.Error("shutdown incomplete", "error", err)
	}

	if errors.Is(runErr, batch.ErrInterrupted) {
		logger.Warn("run interrupted; checkpoint kept", "run_id", f.runID, "resume", "--resume --run-id "+f.runID)
	}
	return runErr
}

func writeOutputs(
	cmd *cobra.Command,
	cfg *config.Config,
	runID string,
	screening *infrastructure.Screening,
	stats batch.Stats,
	results []compare.DualResult,
	elapsed time.Duration,
	logger *slog.Logger,
) error {
	report := &export.Report{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Metadata: export.Metadata{
			Workers:           cfg.Run.Workers,
			BatchSize:         cfg.Run.BatchSize,
			Classifiers:       screening.ClassifierNames(),
			DictionaryVersion: screening.Matcher.Version(),
			FollowUp:          screening.FollowUp,
			Elapsed:           elapsed,
			Throughput:        export.Throughput(len(results), elapsed),
		},
		Stats:   stats,
		Results: results,
	}

	if err := export.WriteFile(cfg.Run.Output, report); err != nil {
		return err
	}
	logger.Info("report written", "path", cfg.Run.Output)

	if cfg.Run.Rows != "" {
		if err := export.WriteCSVFile(cfg.Run.Rows, export.Rows(results)); err != nil {
			return err
		}
	}

	return export.WriteSummary(cmd.OutOrStdout(), stats)
}
