package ports

import (
	"context"

	"abtestapp/domain/abtest"
)

// EvaluationPort runs hypothesis tests for the input shells
type EvaluationPort interface {
	Evaluate(ctx context.Context, in abtest.Input) (*abtest.Evaluation, error)
	EvaluateBatch(ctx context.Context, experiments []abtest.Experiment) (*abtest.BatchReport, error)
}
