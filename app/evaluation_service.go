package app

import (
	"context"
	"sync"
	"time"

	"abtestapp/domain/abtest"
	"abtestapp/internal/errors"
	"abtestapp/internal/logging"
	"abtestapp/internal/metrics"
	"abtestapp/ports"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

var _ ports.EvaluationPort = (*EvaluationService)(nil)

// EvaluationService runs hypothesis tests and records their outcome in
// logs and metrics. It holds no per-evaluation state.
type EvaluationService struct {
	metrics *metrics.Metrics
	logger  zerolog.Logger
	workers int64
	now     func() time.Time
}

// NewEvaluationService creates an evaluation service; workers bounds batch concurrency
func NewEvaluationService(m *metrics.Metrics, workers int) *EvaluationService {
	if workers < 1 {
		workers = 1
	}
	return &EvaluationService{
		metrics: m,
		logger:  logging.Component("evaluation_service"),
		workers: int64(workers),
		now:     time.Now,
	}
}

// Evaluate runs a single test. Evaluator errors are returned unchanged.
func (s *EvaluationService) Evaluate(ctx context.Context, in abtest.Input) (*abtest.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "evaluation cancelled")
	}

	start := time.Now()
	res, err := abtest.Evaluate(in)
	s.metrics.EvaluationDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		code := errors.GetCode(err)
		s.metrics.ErrorsTotal.WithLabelValues(code).Inc()
		s.logger.Warn().
			Str("code", code).
			Int("control_visitors", in.ControlVisitors).
			Int("treatment_visitors", in.TreatmentVisitors).
			Int("confidence", int(in.Confidence)).
			Err(err).
			Msg("evaluation rejected")
		return nil, err
	}

	ev := &abtest.Evaluation{
		ID:          uuid.NewString(),
		Input:       in,
		Result:      res,
		EvaluatedAt: s.now(),
	}

	s.metrics.EvaluationsTotal.WithLabelValues(string(res.Verdict), res.Confidence.String()).Inc()
	if res.Degenerate {
		s.metrics.DegenerateTotal.Inc()
	}

	s.logger.Info().
		Str("evaluation_id", ev.ID).
		Str("verdict", string(res.Verdict)).
		Float64("z_score", res.ZScore).
		Float64("critical_value", res.CriticalValue).
		Bool("degenerate", res.Degenerate).
		Msg("evaluation completed")

	return ev, nil
}

// EvaluateBatch evaluates independent experiments concurrently. Row errors
// are kept in the outcomes; only cancellation aborts the batch.
func (s *EvaluationService) EvaluateBatch(ctx context.Context, experiments []abtest.Experiment) (*abtest.BatchReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "batch evaluation cancelled")
	}

	outcomes := make([]abtest.BatchOutcome, len(experiments))
	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup

	for i, exp := range experiments {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, errors.Wrap(err, "batch evaluation cancelled")
		}
		wg.Add(1)
		go func(i int, exp abtest.Experiment) {
			defer wg.Done()
			defer sem.Release(1)

			ev, err := s.Evaluate(ctx, exp.Input)
			outcomes[i] = abtest.BatchOutcome{Experiment: exp, Evaluation: ev, Err: err}
		}(i, exp)
	}
	wg.Wait()

	report := &abtest.BatchReport{
		Outcomes: outcomes,
		Summary:  summarize(outcomes),
	}
	s.metrics.BatchRowsTotal.WithLabelValues("ok").Add(float64(report.Summary.Total - report.Summary.Failed))
	s.metrics.BatchRowsTotal.WithLabelValues("error").Add(float64(report.Summary.Failed))

	s.logger.Info().
		Int("rows", report.Summary.Total).
		Int("failed", report.Summary.Failed).
		Msg("batch evaluation completed")

	return report, nil
}

func summarize(outcomes []abtest.BatchOutcome) abtest.BatchSummary {
	summary := abtest.BatchSummary{
		Total:    len(outcomes),
		Verdicts: make(map[abtest.Verdict]int),
	}

	var zScores, lifts []float64
	for _, o := range outcomes {
		if o.Err != nil {
			summary.Failed++
			continue
		}
		res := o.Evaluation.Result
		summary.Verdicts[res.Verdict]++
		if res.Degenerate {
			summary.Degenerate++
			continue
		}
		zScores = append(zScores, res.ZScore)
		if res.ControlRate > 0 {
			lifts = append(lifts, res.RelativeLift)
		}
	}

	if len(zScores) > 0 {
		summary.MeanZScore, _ = stats.Mean(zScores)
		summary.MedianZScore, _ = stats.Median(zScores)
	}
	if len(lifts) > 0 {
		summary.MeanLift, _ = stats.Mean(lifts)
		summary.MedianLift, _ = stats.Median(lifts)
	}

	return summary
}
