package abtest

import (
	"strconv"
	"strings"

	"abtestapp/internal/errors"

	"gonum.org/v1/gonum/stat/distuv"
)

// ConfidenceLevel is the two-sided confidence level of the test, in percent
type ConfidenceLevel int

const (
	Confidence90 ConfidenceLevel = 90
	Confidence95 ConfidenceLevel = 95
	Confidence99 ConfidenceLevel = 99
)

// quantiles maps each supported level to the standard-normal probability
// whose quantile is the two-sided critical value.
var quantiles = map[ConfidenceLevel]float64{
	Confidence90: 0.95,
	Confidence95: 0.975,
	Confidence99: 0.995,
}

// criticalValues is filled once from the gonum quantile function.
var criticalValues = func() map[ConfidenceLevel]float64 {
	m := make(map[ConfidenceLevel]float64, len(quantiles))
	for level, p := range quantiles {
		m[level] = distuv.UnitNormal.Quantile(p)
	}
	return m
}()

// ConfidenceLevels lists the supported levels in ascending order
func ConfidenceLevels() []ConfidenceLevel {
	return []ConfidenceLevel{Confidence90, Confidence95, Confidence99}
}

// ParseConfidenceValue reads a level written as "95", "95%" or " 99 ".
// Only the syntax is checked; unsupported levels are returned as they are
// so the evaluator can reject them.
func ParseConfidenceValue(s string) (ConfidenceLevel, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, errors.Newf(errors.CodeInvalidConfidenceLevel, "invalid confidence level %q: choose from 90, 95, or 99", s)
	}
	return ConfidenceLevel(n), nil
}

// Valid reports whether the level is one of 90, 95 or 99
func (c ConfidenceLevel) Valid() bool {
	_, ok := quantiles[c]
	return ok
}

// Quantile returns the normal probability used for the critical value
func (c ConfidenceLevel) Quantile() (float64, error) {
	p, ok := quantiles[c]
	if !ok {
		return 0, errors.InvalidConfidenceLevel(int(c))
	}
	return p, nil
}

// CriticalValue returns Φ⁻¹ of the level's quantile (1.645, 1.960, 2.576)
func (c ConfidenceLevel) CriticalValue() (float64, error) {
	z, ok := criticalValues[c]
	if !ok {
		return 0, errors.InvalidConfidenceLevel(int(c))
	}
	return z, nil
}

func (c ConfidenceLevel) String() string {
	return strconv.Itoa(int(c)) + "%"
}

// Verdict is the directional outcome of a test
type Verdict string

const (
	VerdictTreatmentBetter Verdict = "Experiment Group is Better"
	VerdictControlBetter   Verdict = "Control Group is Better"
	VerdictIndeterminate   Verdict = "Indeterminate"
)

// Decisive reports whether the verdict favours one of the groups
func (v Verdict) Decisive() bool {
	return v == VerdictTreatmentBetter || v == VerdictControlBetter
}

func (v Verdict) String() string {
	return string(v)
}

// Input holds the raw counts of an A/B experiment
type Input struct {
	ControlVisitors      int             `json:"control_visitors" yaml:"control_visitors"`
	ControlConversions   int             `json:"control_conversions" yaml:"control_conversions"`
	TreatmentVisitors    int             `json:"treatment_visitors" yaml:"treatment_visitors"`
	TreatmentConversions int             `json:"treatment_conversions" yaml:"treatment_conversions"`
	Confidence           ConfidenceLevel `json:"confidence_level" yaml:"confidence_level"`
}

// Validate checks the preconditions of Evaluate. The confidence level is
// checked first so an unsupported level is reported whatever the counts are.
func (in Input) Validate() error {
	if !in.Confidence.Valid() {
		return errors.InvalidConfidenceLevel(int(in.Confidence))
	}
	if in.ControlVisitors <= 0 {
		return errors.DegenerateInput("control group visitors must be greater than zero")
	}
	if in.TreatmentVisitors <= 0 {
		return errors.DegenerateInput("treatment group visitors must be greater than zero")
	}
	if in.ControlConversions < 0 || in.TreatmentConversions < 0 {
		return errors.InvalidInput("conversions cannot be negative")
	}
	if in.ControlConversions > in.ControlVisitors {
		return errors.Newf(errors.CodeInvalidInput, "control group conversions (%d) exceed visitors (%d)", in.ControlConversions, in.ControlVisitors)
	}
	if in.TreatmentConversions > in.TreatmentVisitors {
		return errors.Newf(errors.CodeInvalidInput, "treatment group conversions (%d) exceed visitors (%d)", in.TreatmentConversions, in.TreatmentVisitors)
	}
	return nil
}

// Result is the verdict plus every intermediate value of the computation
type Result struct {
	Verdict        Verdict         `json:"verdict"`
	Confidence     ConfidenceLevel `json:"confidence_level"`
	ControlRate    float64         `json:"control_rate"`
	TreatmentRate  float64         `json:"treatment_rate"`
	PooledRate     float64         `json:"pooled_rate"`
	PooledStdError float64         `json:"pooled_std_error"`
	ZScore         float64         `json:"z_score"`
	CriticalValue  float64         `json:"critical_value"`
	PValue         float64         `json:"p_value"`
	RelativeLift   float64         `json:"relative_lift"`
	// Degenerate is set when the pooled standard error is zero and the
	// z-score was taken as 0.
	Degenerate bool `json:"degenerate"`
}
