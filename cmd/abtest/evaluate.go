package main

import (
	"encoding/json"

	"abtestapp/domain/abtest"
	"abtestapp/internal/errors"
	"abtestapp/internal/report"

	"github.com/spf13/cobra"
)

func newEvaluateCmd(c *cli) *cobra.Command {
	var in abtest.Input
	var confidence string
	var detail, asJSON bool

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run one hypothesis test from flag values",
		Long: `Run one hypothesis test and print the verdict.

Example: abtest evaluate --control-visitors 1000 --control-conversions 100 \
  --treatment-visitors 1000 --treatment-conversions 150 --confidence 95 --detail`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := c.confidence(confidence)
			if err != nil {
				return err
			}
			in.Confidence = level

			ev, err := c.deps.Evaluation.Evaluate(cmd.Context(), in)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(ev); err != nil {
					return errors.Wrap(err, "failed to encode evaluation")
				}
				return nil
			}
			return report.NewConsole(cmd.OutOrStdout()).PrintResult(ev, detail)
		},
	}

	cmd.Flags().IntVar(&in.ControlVisitors, "control-visitors", 0, "Visitors in the control group")
	cmd.Flags().IntVar(&in.ControlConversions, "control-conversions", 0, "Conversions in the control group")
	cmd.Flags().IntVar(&in.TreatmentVisitors, "treatment-visitors", 0, "Visitors in the experiment group")
	cmd.Flags().IntVar(&in.TreatmentConversions, "treatment-conversions", 0, "Conversions in the experiment group")
	cmd.Flags().StringVar(&confidence, "confidence", "", "Confidence level: 90, 95 or 99 (default from config)")
	cmd.Flags().BoolVar(&detail, "detail", false, "Print rates, z-score and critical value")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the evaluation as JSON")

	for _, name := range []string{"control-visitors", "control-conversions", "treatment-visitors", "treatment-conversions"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
