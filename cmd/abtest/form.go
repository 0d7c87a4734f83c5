package main

import (
	stderrors "errors"
	"strconv"
	"strings"

	"abtestapp/domain/abtest"
	"abtestapp/internal/errors"
	"abtestapp/internal/report"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// formState holds the raw field values between runs of the form
type formState struct {
	controlVisitors      string
	controlConversions   string
	treatmentVisitors    string
	treatmentConversions string
	confidence           abtest.ConfidenceLevel
}

func newFormState(level abtest.ConfidenceLevel) *formState {
	return &formState{
		controlVisitors:      "1",
		controlConversions:   "0",
		treatmentVisitors:    "1",
		treatmentConversions: "0",
		confidence:           level,
	}
}

func (s *formState) input() (abtest.Input, error) {
	in := abtest.Input{Confidence: s.confidence}
	fields := []struct {
		label string
		raw   string
		dst   *int
	}{
		{"Control Group Visitors", s.controlVisitors, &in.ControlVisitors},
		{"Control Group Conversions", s.controlConversions, &in.ControlConversions},
		{"Treatment Group Visitors", s.treatmentVisitors, &in.TreatmentVisitors},
		{"Treatment Group Conversions", s.treatmentConversions, &in.TreatmentConversions},
	}

	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f.raw))
		if err != nil {
			return abtest.Input{}, errors.InvalidInput(f.label + " must be a whole number")
		}
		*f.dst = n
	}
	return in, nil
}

// wholeNumber validates a form field holding an integer of at least min
func wholeNumber(min int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return errors.ValidationError("enter a whole number")
		}
		if n < min {
			return errors.Newf(errors.CodeValidationError, "must be at least %d", min)
		}
		return nil
	}
}

func confidenceOptions() []huh.Option[abtest.ConfidenceLevel] {
	levels := abtest.ConfidenceLevels()
	options := make([]huh.Option[abtest.ConfidenceLevel], 0, len(levels))
	for _, level := range levels {
		options = append(options, huh.NewOption(level.String(), level))
	}
	return options
}

func (s *formState) form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Control Group Visitors").
				Value(&s.controlVisitors).
				Validate(wholeNumber(1)),
			huh.NewInput().
				Title("Control Group Conversions").
				Value(&s.controlConversions).
				Validate(wholeNumber(0)),
			huh.NewInput().
				Title("Treatment Group Visitors").
				Value(&s.treatmentVisitors).
				Validate(wholeNumber(1)),
			huh.NewInput().
				Title("Treatment Group Conversions").
				Value(&s.treatmentConversions).
				Validate(wholeNumber(0)),
			huh.NewSelect[abtest.ConfidenceLevel]().
				Title("Confidence Level").
				Options(confidenceOptions()...).
				Value(&s.confidence),
		).Title("Input Parameters"),
	)
}

func newFormCmd(c *cli) *cobra.Command {
	var detail, accessible bool

	cmd := &cobra.Command{
		Use:   "form",
		Short: "Enter group counts in an interactive terminal form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			console := report.NewConsole(cmd.OutOrStdout())
			state := newFormState(c.cfg.Evaluation.DefaultConfidence)

			for {
				err := state.form().
					WithAccessible(accessible).
					RunWithContext(cmd.Context())
				if stderrors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				if err != nil {
					return err
				}

				in, err := state.input()
				if err != nil {
					return err
				}
				ev, err := c.deps.Evaluation.Evaluate(cmd.Context(), in)
				if err != nil {
					console.PrintError(err)
				} else if err := console.PrintResult(ev, detail); err != nil {
					return err
				}

				again := false
				err = huh.NewForm(huh.NewGroup(
					huh.NewConfirm().
						Title("Run another test?").
						Value(&again),
				)).WithAccessible(accessible).RunWithContext(cmd.Context())
				if err != nil && !stderrors.Is(err, huh.ErrUserAborted) {
					return err
				}
				if !again {
					return nil
				}
			}
		},
	}

	cmd.Flags().BoolVar(&detail, "detail", true, "Print rates, z-score and critical value")
	cmd.Flags().BoolVar(&accessible, "accessible", false, "Use plain line prompts instead of the full-screen form")

	return cmd
}
