package ports

import "abtestapp/domain/abtest"

// ExperimentSourcePort provides read-only access to batches of experiments,
// e.g. from CSV or Excel files
type ExperimentSourcePort interface {
	ReadExperiments() ([]abtest.Experiment, error)
}
