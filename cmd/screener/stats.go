package main

import (
	"github.com/spf13/cobra"

	"github.com/JaimeStill/screener/internal/export"
)

func newStatsCmd() *cobra.Command {
	var input, rows string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Recompute statistics from an exported report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := export.ReadFile(input)
			if err != nil {
				return err
			}

			if rows != "" {
				if err := export.WriteCSVFile(rows, export.Rows(report.Results)); err != nil {
					return err
				}
			}

			return export.WriteSummary(cmd.OutOrStdout(), export.Restat(report))
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Report written by screener run")
	cmd.Flags().StringVar(&rows, "rows", "", "Optional CSV path for per-document rows")
	cmd.MarkFlagRequired("input")

	return cmd
}
