package abtest

import (
	"testing"

	"abtestapp/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_KnownScenarios(t *testing.T) {
	tests := []struct {
		name        string
		in          Input
		wantVerdict Verdict
		wantZ       float64
	}{
		{
			name:        "treatment clearly better",
			in:          Input{ControlVisitors: 1000, ControlConversions: 100, TreatmentVisitors: 1000, TreatmentConversions: 150, Confidence: Confidence95},
			wantVerdict: VerdictTreatmentBetter,
			wantZ:       3.3806,
		},
		{
			name:        "small lift is indeterminate",
			in:          Input{ControlVisitors: 1000, ControlConversions: 100, TreatmentVisitors: 1000, TreatmentConversions: 105, Confidence: Confidence95},
			wantVerdict: VerdictIndeterminate,
			wantZ:       0.3686,
		},
		{
			name:        "control clearly better",
			in:          Input{ControlVisitors: 1000, ControlConversions: 150, TreatmentVisitors: 1000, TreatmentConversions: 100, Confidence: Confidence95},
			wantVerdict: VerdictControlBetter,
			wantZ:       -3.3806,
		},
		{
			name:        "unequal group sizes at 90",
			in:          Input{ControlVisitors: 5000, ControlConversions: 400, TreatmentVisitors: 2500, TreatmentConversions: 230, Confidence: Confidence90},
			wantVerdict: VerdictTreatmentBetter,
			wantZ:       1.7661,
		},
		{
			name:        "unequal group sizes at 95",
			in:          Input{ControlVisitors: 5000, ControlConversions: 400, TreatmentVisitors: 2500, TreatmentConversions: 230, Confidence: Confidence95},
			wantVerdict: VerdictIndeterminate,
			wantZ:       1.7661,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Evaluate(tt.in)
			require.NoError(t, err)

			assert.Equal(t, tt.wantVerdict, res.Verdict)
			assert.InDelta(t, tt.wantZ, res.ZScore, 1e-3)
			assert.False(t, res.Degenerate)
		})
	}
}

func TestEvaluate_ComputationTrail(t *testing.T) {
	res, err := Evaluate(Input{
		ControlVisitors:      1000,
		ControlConversions:   100,
		TreatmentVisitors:    1000,
		TreatmentConversions: 150,
		Confidence:           Confidence95,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.10, res.ControlRate)
	assert.Equal(t, 0.15, res.TreatmentRate)
	assert.Equal(t, 0.125, res.PooledRate)
	assert.InDelta(t, 0.014790, res.PooledStdError, 1e-6)
	assert.InDelta(t, 1.959964, res.CriticalValue, 1e-6)
	assert.InDelta(t, 0.5, res.RelativeLift, 1e-12)
	assert.Less(t, res.PValue, 0.001)
	assert.Equal(t, Confidence95, res.Confidence)
}

func TestEvaluate_DegenerateInputs(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"no conversions anywhere", Input{ControlVisitors: 500, TreatmentVisitors: 500, Confidence: Confidence95}},
		{"everyone converted", Input{ControlVisitors: 40, ControlConversions: 40, TreatmentVisitors: 70, TreatmentConversions: 70, Confidence: Confidence99}},
		{"single visitor each", Input{ControlVisitors: 1, TreatmentVisitors: 1, Confidence: Confidence90}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Evaluate(tt.in)
			require.NoError(t, err)

			assert.True(t, res.Degenerate)
			assert.Equal(t, VerdictIndeterminate, res.Verdict)
			assert.Equal(t, 0.0, res.ZScore)
			assert.Equal(t, 0.0, res.PooledStdError)
			assert.Equal(t, 1.0, res.PValue)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		in       Input
		wantCode string
	}{
		{"confidence 80", Input{ControlVisitors: 1000, ControlConversions: 100, TreatmentVisitors: 1000, TreatmentConversions: 150, Confidence: 80}, errors.CodeInvalidConfidenceLevel},
		{"confidence zero", Input{ControlVisitors: 10, TreatmentVisitors: 10}, errors.CodeInvalidConfidenceLevel},
		{"bad level wins over bad counts", Input{ControlVisitors: 0, ControlConversions: -4, Confidence: 97}, errors.CodeInvalidConfidenceLevel},
		{"zero control visitors", Input{TreatmentVisitors: 10, Confidence: Confidence95}, errors.CodeDegenerateInput},
		{"zero treatment visitors", Input{ControlVisitors: 10, Confidence: Confidence95}, errors.CodeDegenerateInput},
		{"negative visitors", Input{ControlVisitors: -5, TreatmentVisitors: 10, Confidence: Confidence95}, errors.CodeDegenerateInput},
		{"negative conversions", Input{ControlVisitors: 10, ControlConversions: -1, TreatmentVisitors: 10, Confidence: Confidence95}, errors.CodeInvalidInput},
		{"control conversions exceed visitors", Input{ControlVisitors: 10, ControlConversions: 11, TreatmentVisitors: 10, Confidence: Confidence95}, errors.CodeInvalidInput},
		{"treatment conversions exceed visitors", Input{ControlVisitors: 10, TreatmentVisitors: 10, TreatmentConversions: 12, Confidence: Confidence95}, errors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Evaluate(tt.in)
			require.Error(t, err)

			assert.Equal(t, tt.wantCode, errors.GetCode(err))
			assert.Equal(t, Result{}, res)
		})
	}
}

func TestConfidenceLevel_CriticalValues(t *testing.T) {
	tests := []struct {
		level ConfidenceLevel
		p     float64
		z     float64
	}{
		{Confidence90, 0.95, 1.6449},
		{Confidence95, 0.975, 1.9600},
		{Confidence99, 0.995, 2.5758},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			p, err := tt.level.Quantile()
			require.NoError(t, err)
			assert.Equal(t, tt.p, p)

			z, err := tt.level.CriticalValue()
			require.NoError(t, err)
			assert.InDelta(t, tt.z, z, 1e-4)
		})
	}

	_, err := ConfidenceLevel(80).CriticalValue()
	assert.True(t, errors.IsCode(err, errors.CodeInvalidConfidenceLevel))
}

func TestParseConfidenceValue(t *testing.T) {
	tests := []struct {
		in        string
		want      ConfidenceLevel
		wantValid bool
		wantErr   bool
	}{
		{"90", Confidence90, true, false},
		{"95%", Confidence95, true, false},
		{" 99 ", Confidence99, true, false},
		{"99 %", Confidence99, true, false},
		{"80", ConfidenceLevel(80), false, false},
		{"ninety", 0, false, true},
		{"", 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseConfidenceValue(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.CodeInvalidConfidenceLevel, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantValid, got.Valid())
		})
	}
}

func TestVerdict_Decisive(t *testing.T) {
	assert.True(t, VerdictTreatmentBetter.Decisive())
	assert.True(t, VerdictControlBetter.Decisive())
	assert.False(t, VerdictIndeterminate.Decisive())
}
