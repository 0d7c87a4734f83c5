package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"abtestapp/domain/abtest"
	"abtestapp/internal/errors"
	"abtestapp/internal/logging"
	"abtestapp/ports"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Column names recognised in the header row. Matching ignores case and
// treats spaces and dashes as underscores.
const (
	ColumnName                 = "name"
	ColumnControlVisitors      = "control_visitors"
	ColumnControlConversions   = "control_conversions"
	ColumnTreatmentVisitors    = "treatment_visitors"
	ColumnTreatmentConversions = "treatment_conversions"
	ColumnConfidenceLevel      = "confidence_level"
)

var requiredColumns = []string{
	ColumnControlVisitors,
	ColumnControlConversions,
	ColumnTreatmentVisitors,
	ColumnTreatmentConversions,
}

var _ ports.ExperimentSourcePort = (*DataReader)(nil)

// DataReader reads experiments from Excel or CSV files
type DataReader struct {
	filePath          string
	fileType          string // "xlsx" or "csv"
	defaultConfidence abtest.ConfidenceLevel
	logger            zerolog.Logger
}

// NewDataReader creates a reader for path; rows without a confidence_level
// cell use defaultConfidence.
func NewDataReader(filePath string, defaultConfidence abtest.ConfidenceLevel) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{
		filePath:          filePath,
		fileType:          fileType,
		defaultConfidence: defaultConfidence,
		logger:            logging.Component("data_reader"),
	}
}

// ReadExperiments reads every data row of the file as an experiment
func (r *DataReader) ReadExperiments() ([]abtest.Experiment, error) {
	r.logger.Debug().Str("file", r.filePath).Str("type", r.fileType).Msg("reading experiments")

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.InvalidInput(fmt.Sprintf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath))
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s file must have a header row and at least one data row", strings.ToUpper(r.fileType)))
	}

	return r.processRows(rows)
}

// readExcelRows reads the first sheet of the workbook
func (r *DataReader) readExcelRows() ([][]string, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput("Excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %q", sheets[0])
	}
	r.logger.Debug().
		Str("sheet", sheets[0]).
		Int("rows", len(rows)).
		Dur("elapsed", time.Since(start)).
		Msg("sheet read")

	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to read CSV file")
	}
	return rows, nil
}

// processRows maps the header row to columns and parses each data row.
// Blank rows are skipped; row numbers are 1-based file rows.
func (r *DataReader) processRows(rows [][]string) ([]abtest.Experiment, error) {
	index := make(map[string]int)
	for i, header := range rows[0] {
		index[normalizeHeader(header)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("missing required column %q", col))
		}
	}

	experiments := make([]abtest.Experiment, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		rowNum := i + 1

		exp, err := r.parseRow(row, index, rowNum)
		if err != nil {
			return nil, err
		}
		experiments = append(experiments, exp)
	}

	r.logger.Debug().Int("experiments", len(experiments)).Msg("rows processed")
	return experiments, nil
}

func (r *DataReader) parseRow(row []string, index map[string]int, rowNum int) (abtest.Experiment, error) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	counts := make(map[string]int, len(requiredColumns))
	for _, col := range requiredColumns {
		n, err := parseCount(cell(col))
		if err != nil {
			return abtest.Experiment{}, errors.InvalidInput(fmt.Sprintf("row %d: column %s: %v", rowNum, col, err))
		}
		counts[col] = n
	}

	confidence := r.defaultConfidence
	if raw := cell(ColumnConfidenceLevel); raw != "" {
		level, err := abtest.ParseConfidenceValue(raw)
		if err != nil {
			return abtest.Experiment{}, errors.Wrapf(err, "row %d", rowNum)
		}
		// Unsupported levels are left for the evaluator to reject per row.
		confidence = level
	}

	name := cell(ColumnName)
	if name == "" {
		name = fmt.Sprintf("row %d", rowNum)
	}

	return abtest.Experiment{
		Name: name,
		Row:  rowNum,
		Input: abtest.Input{
			ControlVisitors:      counts[ColumnControlVisitors],
			ControlConversions:   counts[ColumnControlConversions],
			TreatmentVisitors:    counts[ColumnTreatmentVisitors],
			TreatmentConversions: counts[ColumnTreatmentConversions],
			Confidence:           confidence,
		},
	}, nil
}

// parseCount accepts integers, including spreadsheet renderings like "1,000" or "1000.0"
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty cell")
	}
	s = strings.ReplaceAll(s, ",", "")
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	return h
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
