package testkit

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"abtestapp/domain/abtest"
	"abtestapp/internal/errors"

	"github.com/xuri/excelize/v2"
)

// ExperimentGeneratorConfig configures the synthetic experiment generator
type ExperimentGeneratorConfig struct {
	Experiments int                    `json:"experiments"`
	MinVisitors int                    `json:"min_visitors"`
	MaxVisitors int                    `json:"max_visitors"`
	BaseRate    float64                `json:"base_rate"` // control conversion probability
	MaxLift     float64                `json:"max_lift"`  // treatment rate varies by up to ±MaxLift relative to BaseRate
	Confidence  abtest.ConfidenceLevel `json:"confidence"`
	Seed        int64                  `json:"seed"`
}

// DefaultExperimentConfig returns sensible defaults for experiment generation
func DefaultExperimentConfig() ExperimentGeneratorConfig {
	return ExperimentGeneratorConfig{
		Experiments: 50,
		MinVisitors: 200,
		MaxVisitors: 5000,
		BaseRate:    0.1,
		MaxLift:     0.5,
		Confidence:  abtest.Confidence95,
		Seed:        42,
	}
}

// ExperimentGenerator simulates A/B experiments visitor by visitor
type ExperimentGenerator struct {
	config ExperimentGeneratorConfig
	rng    *rand.Rand
}

// NewExperimentGenerator creates a generator; equal seeds give equal experiments
func NewExperimentGenerator(config ExperimentGeneratorConfig) *ExperimentGenerator {
	if config.MinVisitors < 1 {
		config.MinVisitors = 1
	}
	if config.MaxVisitors < config.MinVisitors {
		config.MaxVisitors = config.MinVisitors
	}
	return &ExperimentGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns the configured number of experiments with 1-based file
// row numbers as if read below a header row
func (g *ExperimentGenerator) Generate() []abtest.Experiment {
	experiments := make([]abtest.Experiment, 0, g.config.Experiments)
	for i := 0; i < g.config.Experiments; i++ {
		treatmentRate := g.config.BaseRate * (1 + g.config.MaxLift*(2*g.rng.Float64()-1))
		controlVisitors := g.visitors()
		treatmentVisitors := g.visitors()

		experiments = append(experiments, abtest.Experiment{
			Name: fmt.Sprintf("exp-%03d", i+1),
			Row:  i + 2,
			Input: abtest.Input{
				ControlVisitors:      controlVisitors,
				ControlConversions:   g.conversions(controlVisitors, g.config.BaseRate),
				TreatmentVisitors:    treatmentVisitors,
				TreatmentConversions: g.conversions(treatmentVisitors, treatmentRate),
				Confidence:           g.config.Confidence,
			},
		})
	}
	return experiments
}

func (g *ExperimentGenerator) visitors() int {
	return g.config.MinVisitors + g.rng.Intn(g.config.MaxVisitors-g.config.MinVisitors+1)
}

func (g *ExperimentGenerator) conversions(visitors int, rate float64) int {
	n := 0
	for i := 0; i < visitors; i++ {
		if g.rng.Float64() < rate {
			n++
		}
	}
	return n
}

var fileHeader = []string{
	"name",
	"control_visitors",
	"control_conversions",
	"treatment_visitors",
	"treatment_conversions",
	"confidence_level",
}

func fileRow(exp abtest.Experiment) []string {
	return []string{
		exp.Name,
		strconv.Itoa(exp.Input.ControlVisitors),
		strconv.Itoa(exp.Input.ControlConversions),
		strconv.Itoa(exp.Input.TreatmentVisitors),
		strconv.Itoa(exp.Input.TreatmentConversions),
		strconv.Itoa(int(exp.Input.Confidence)),
	}
}

// WriteCSV writes experiments in the batch file layout
func WriteCSV(path string, experiments []abtest.Experiment) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create CSV file")
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(fileHeader); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}
	for _, exp := range experiments {
		if err := w.Write(fileRow(exp)); err != nil {
			return errors.Wrapf(err, "failed to write experiment %s", exp.Name)
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "failed to flush CSV file")
}

// WriteXLSX writes experiments to the first sheet of a new workbook
func WriteXLSX(path string, experiments []abtest.Experiment) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &fileHeader); err != nil {
		return errors.Wrap(err, "failed to write sheet header")
	}
	for i, exp := range experiments {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "failed to address sheet row")
		}
		row := fileRow(exp)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "failed to write experiment %s", exp.Name)
		}
	}
	return errors.Wrap(f.SaveAs(path), "failed to save workbook")
}
