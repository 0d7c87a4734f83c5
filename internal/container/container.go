package container

import (
	"abtestapp/adapters/excel"
	"abtestapp/app"
	"abtestapp/domain/abtest"
	"abtestapp/internal/config"
	"abtestapp/internal/errors"
	"abtestapp/internal/logging"
	"abtestapp/internal/metrics"
	"abtestapp/ports"
	"abtestapp/ui"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config

	// Observability
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Services
	Evaluation *app.EvaluationService

	logger zerolog.Logger
}

// New creates a new dependency injection container. Logging must already
// be set up, since components capture the global logger when created.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("config cannot be nil")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	c := &Container{
		Config:     cfg,
		Registry:   reg,
		Metrics:    m,
		Evaluation: app.NewEvaluationService(m, cfg.Batch.Workers),
		logger:     logging.Component("container"),
	}

	c.logger.Debug().
		Int("batch_workers", cfg.Batch.Workers).
		Str("default_confidence", cfg.Evaluation.DefaultConfidence.String()).
		Msg("container initialized")

	return c, nil
}

// ExperimentSource opens a CSV or XLSX experiment file. Rows without a
// confidence level use level, or the configured default when level is zero.
func (c *Container) ExperimentSource(path string, level abtest.ConfidenceLevel) ports.ExperimentSourcePort {
	if level == 0 {
		level = c.Config.Evaluation.DefaultConfidence
	}
	return excel.NewDataReader(path, level)
}

// WebServer builds the web shell on top of the evaluation service
func (c *Container) WebServer() (*ui.Server, error) {
	return ui.NewServer(ui.Config{
		GinMode:           c.Config.Server.GinMode,
		DefaultConfidence: c.Config.Evaluation.DefaultConfidence,
	}, c.Evaluation, c.Registry)
}
