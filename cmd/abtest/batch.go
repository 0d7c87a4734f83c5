package main

import (
	"abtestapp/internal/report"

	"github.com/spf13/cobra"
)

func newBatchCmd(c *cli) *cobra.Command {
	var confidence string

	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Evaluate every experiment listed in a CSV or XLSX file",
		Long: `Evaluate one experiment per row of a CSV or XLSX file.

The header row must name control_visitors, control_conversions,
treatment_visitors and treatment_conversions. Optional columns are name and
confidence_level; rows without a level use --confidence.

Example: abtest batch experiments.xlsx --confidence 95`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := c.confidence(confidence)
			if err != nil {
				return err
			}

			experiments, err := c.deps.ExperimentSource(args[0], level).ReadExperiments()
			if err != nil {
				return err
			}

			batch, err := c.deps.Evaluation.EvaluateBatch(cmd.Context(), experiments)
			if err != nil {
				return err
			}
			return report.NewConsole(cmd.OutOrStdout()).PrintBatch(batch)
		},
	}

	cmd.Flags().StringVar(&confidence, "confidence", "", "Confidence level for rows without one (default from config)")

	return cmd
}
