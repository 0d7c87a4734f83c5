package abtest

import "time"

// Evaluation is one evaluator call as recorded by the service layer
type Evaluation struct {
	ID          string    `json:"id"`
	Input       Input     `json:"input"`
	Result      Result    `json:"result"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Experiment is a named input, one row of a batch file
type Experiment struct {
	Name  string `json:"name"`
	Row   int    `json:"row"`
	Input Input  `json:"input"`
}

// BatchOutcome pairs an experiment with its evaluation or its error
type BatchOutcome struct {
	Experiment Experiment
	Evaluation *Evaluation
	Err        error
}

// BatchSummary aggregates the successful rows of a batch.
// Rows are independent tests; no multiple-comparison correction is applied.
type BatchSummary struct {
	Total        int
	Failed       int
	Degenerate   int
	Verdicts     map[Verdict]int
	MeanZScore   float64
	MedianZScore float64
	MeanLift     float64
	MedianLift   float64
}

// BatchReport is the result of evaluating a batch of experiments
type BatchReport struct {
	Outcomes []BatchOutcome
	Summary  BatchSummary
}
