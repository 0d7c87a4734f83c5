// Package abtest implements the two-proportion z-test used to compare the
// conversion rates of a control and a treatment group.
package abtest

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Evaluate runs a two-sided two-proportion z-test on the input.
//
// When both groups convert at 0% or both at 100% the pooled standard error
// is zero; the z-score is then taken as 0 and the verdict is Indeterminate.
func Evaluate(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	criticalValue, err := in.Confidence.CriticalValue()
	if err != nil {
		return Result{}, err
	}

	cv := float64(in.ControlVisitors)
	cc := float64(in.ControlConversions)
	tv := float64(in.TreatmentVisitors)
	tc := float64(in.TreatmentConversions)

	controlRate := cc / cv
	treatmentRate := tc / tv
	pooledRate := (cc + tc) / (cv + tv)
	pooledStdError := math.Sqrt(pooledRate * (1 - pooledRate) * (1/cv + 1/tv))

	res := Result{
		Confidence:     in.Confidence,
		ControlRate:    controlRate,
		TreatmentRate:  treatmentRate,
		PooledRate:     pooledRate,
		PooledStdError: pooledStdError,
		CriticalValue:  criticalValue,
		PValue:         1,
	}
	if controlRate != 0 {
		res.RelativeLift = (treatmentRate - controlRate) / controlRate
	}

	if pooledStdError == 0 {
		res.Degenerate = true
		res.Verdict = VerdictIndeterminate
		return res, nil
	}

	z := (treatmentRate - controlRate) / pooledStdError
	res.ZScore = z
	res.PValue = 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))
	res.Verdict = decide(z, criticalValue)

	return res, nil
}

// decide applies the two-sided decision rule
func decide(z, criticalValue float64) Verdict {
	switch {
	case z > criticalValue:
		return VerdictTreatmentBetter
	case z < -criticalValue:
		return VerdictControlBetter
	default:
		return VerdictIndeterminate
	}
}
