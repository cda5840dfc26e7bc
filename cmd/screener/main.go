// Command screener screens documents against inclusion criteria with two
// independent classifiers and reports where they disagree.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/screener/internal/batch"
)

// exitInterrupted is returned when a run stops on a signal with its
// checkpoint kept for resumption.
const exitInterrupted = 130

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "screener",
		Short: "Dual-classifier document screening",
		Long: `Screen documents against eligibility criteria with two independent
classifiers, apply deterministic decision rules, and flag disagreements
for human review. Runs are checkpointed per batch and can be resumed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./config.toml if present)")

	root.AddCommand(newRunCmd(&configPath))
	root.AddCommand(newMigrateCmd(&configPath))
	root.AddCommand(newStatsCmd())

	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, batch.ErrInterrupted) {
			os.Exit(exitInterrupted)
		}
		os.Exit(1)
	}
}
