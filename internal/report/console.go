package report

import (
	"fmt"
	"io"
	"sort"

	"abtestapp/domain/abtest"
	"abtestapp/internal/errors"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
)

var (
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#2C4A54")
)

// Console prints evaluations for terminal users. Styles are bound to the
// writer, so output to files or buffers carries no escape codes.
type Console struct {
	out   io.Writer
	title lipgloss.Style
	muted lipgloss.Style
	err   lipgloss.Style
	box   lipgloss.Style
	tones map[abtest.Verdict]lipgloss.Style
}

// NewConsole creates a console printer for w
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		out:   w,
		title: r.NewStyle().Bold(true),
		muted: r.NewStyle().Foreground(colorMuted),
		err:   r.NewStyle().Foreground(colorError).Bold(true),
		box:   r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorError).Padding(0, 1),
		tones: map[abtest.Verdict]lipgloss.Style{
			abtest.VerdictTreatmentBetter: r.NewStyle().Foreground(colorSuccess).Bold(true),
			abtest.VerdictControlBetter:   r.NewStyle().Foreground(colorWarning).Bold(true),
			abtest.VerdictIndeterminate:   r.NewStyle().Bold(true),
		},
	}
}

// PrintResult prints the verdict line and, with detail, the computation trail
func (c *Console) PrintResult(ev *abtest.Evaluation, detail bool) error {
	res := ev.Result
	fmt.Fprintf(c.out, "%s %s\n", c.title.Render("AB Test Result:"), c.tones[res.Verdict].Render(string(res.Verdict)))

	if res.Degenerate {
		fmt.Fprintln(c.out, c.muted.Render("Neither group has any variation in outcome; the difference cannot be tested."))
	}
	if !detail {
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Statistic", "Control", "Treatment")
	rows := [][]string{
		{"Visitors", fmt.Sprintf("%d", ev.Input.ControlVisitors), fmt.Sprintf("%d", ev.Input.TreatmentVisitors)},
		{"Conversions", fmt.Sprintf("%d", ev.Input.ControlConversions), fmt.Sprintf("%d", ev.Input.TreatmentConversions)},
		{"Conversion rate", percent(res.ControlRate), percent(res.TreatmentRate)},
		{"Relative lift", "", percent(res.RelativeLift)},
		{"Pooled rate", percent(res.PooledRate), ""},
		{"Pooled std error", fmt.Sprintf("%.5f", res.PooledStdError), ""},
		{"z-score", fmt.Sprintf("%.4f", res.ZScore), ""},
		{"Critical value (" + res.Confidence.String() + ")", fmt.Sprintf("±%.4f", res.CriticalValue), ""},
		{"p-value (two-sided)", fmt.Sprintf("%.5f", res.PValue), ""},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return errors.Wrap(err, "failed to build result table")
		}
	}
	if err := table.Render(); err != nil {
		return errors.Wrap(err, "failed to render result table")
	}
	fmt.Fprintln(c.out, c.muted.Render("Evaluation "+ev.ID))
	return nil
}

// PrintBatch prints one row per experiment followed by the batch summary
func (c *Console) PrintBatch(report *abtest.BatchReport) error {
	table := tablewriter.NewWriter(c.out)
	table.Header("Row", "Experiment", "Control", "Treatment", "Lift", "z", "Level", "Verdict")

	for _, o := range report.Outcomes {
		exp := o.Experiment
		row := []string{fmt.Sprintf("%d", exp.Row), exp.Name}
		if o.Err != nil {
			row = append(row, "", "", "", "", fmt.Sprintf("%d", int(exp.Input.Confidence)), "error: "+errors.Message(o.Err))
		} else {
			res := o.Evaluation.Result
			row = append(row,
				percent(res.ControlRate),
				percent(res.TreatmentRate),
				percent(res.RelativeLift),
				fmt.Sprintf("%.3f", res.ZScore),
				res.Confidence.String(),
				string(res.Verdict),
			)
		}
		if err := table.Append(row); err != nil {
			return errors.Wrap(err, "failed to build batch table")
		}
	}
	if err := table.Render(); err != nil {
		return errors.Wrap(err, "failed to render batch table")
	}

	s := report.Summary
	fmt.Fprintf(c.out, "\n%s %d experiments, %d failed, %d degenerate\n", c.title.Render("Summary:"), s.Total, s.Failed, s.Degenerate)

	verdicts := make([]string, 0, len(s.Verdicts))
	for v := range s.Verdicts {
		verdicts = append(verdicts, string(v))
	}
	sort.Strings(verdicts)
	for _, v := range verdicts {
		fmt.Fprintf(c.out, "  %-28s %d\n", v, s.Verdicts[abtest.Verdict(v)])
	}
	fmt.Fprintf(c.out, "  z-score mean %.3f, median %.3f\n", s.MeanZScore, s.MedianZScore)
	fmt.Fprintf(c.out, "  relative lift mean %s, median %s\n", percent(s.MeanLift), percent(s.MedianLift))
	fmt.Fprintln(c.out, c.muted.Render("Each row is an independent test; no multiple-comparison correction is applied."))
	return nil
}

// PrintError prints a user-facing error box
func (c *Console) PrintError(err error) {
	msg := errors.Message(err)
	if code := errors.GetCode(err); code != "UNKNOWN" {
		msg = fmt.Sprintf("%s\n%s", msg, c.muted.Render(code))
	}
	fmt.Fprintln(c.out, c.box.Render(c.err.Render("Error")+"\n"+msg))
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}
