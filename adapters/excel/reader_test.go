package excel

import (
	"os"
	"path/filepath"
	"testing"

	"abtestapp/domain/abtest"
	"abtestapp/internal/errors"
	"abtestapp/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadExperiments_CSV(t *testing.T) {
	path := writeFile(t, "experiments.csv", `Name,Control Visitors,Control Conversions,Treatment Visitors,Treatment Conversions,Confidence Level
checkout button,1000,100,1000,150,95
hero copy,"1,000",100,1000,105,
,2000,200,2000,180,99%
,,,,,
pricing page,500,50,500,60,80
`)

	reader := NewDataReader(path, abtest.Confidence90)
	experiments, err := reader.ReadExperiments()
	require.NoError(t, err)
	require.Len(t, experiments, 4)

	assert.Equal(t, abtest.Experiment{
		Name: "checkout button",
		Row:  2,
		Input: abtest.Input{
			ControlVisitors:      1000,
			ControlConversions:   100,
			TreatmentVisitors:    1000,
			TreatmentConversions: 150,
			Confidence:           abtest.Confidence95,
		},
	}, experiments[0])

	assert.Equal(t, 1000, experiments[1].Input.ControlVisitors)
	assert.Equal(t, abtest.Confidence90, experiments[1].Input.Confidence, "blank level uses the default")

	assert.Equal(t, "row 4", experiments[2].Name)
	assert.Equal(t, abtest.Confidence99, experiments[2].Input.Confidence)

	assert.Equal(t, 6, experiments[3].Row, "blank rows are skipped but row numbers follow the file")
	assert.Equal(t, abtest.ConfidenceLevel(80), experiments[3].Input.Confidence, "unsupported levels are passed through")
}

func TestReadExperiments_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiments.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"control_visitors", "control_conversions", "treatment_visitors", "treatment_conversions"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{1000, 100, 1000, 150}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{400, 0, 400, 0}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	experiments, err := NewDataReader(path, abtest.Confidence95).ReadExperiments()
	require.NoError(t, err)
	require.Len(t, experiments, 2)

	assert.Equal(t, "row 2", experiments[0].Name)
	assert.Equal(t, 150, experiments[0].Input.TreatmentConversions)
	assert.Equal(t, abtest.Confidence95, experiments[0].Input.Confidence)
	assert.Equal(t, 400, experiments[1].Input.ControlVisitors)
}

func TestReadExperiments_GeneratedFiles(t *testing.T) {
	config := testkit.DefaultExperimentConfig()
	config.Experiments = 25
	config.Confidence = abtest.Confidence99
	want := testkit.NewExperimentGenerator(config).Generate()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "generated.csv")
	xlsxPath := filepath.Join(dir, "generated.xlsx")
	require.NoError(t, testkit.WriteCSV(csvPath, want))
	require.NoError(t, testkit.WriteXLSX(xlsxPath, want))

	for _, path := range []string{csvPath, xlsxPath} {
		got, err := NewDataReader(path, abtest.Confidence90).ReadExperiments()
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
}

func TestReadExperiments_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode string
	}{
		{"header only", "control_visitors,control_conversions,treatment_visitors,treatment_conversions\n", errors.CodeInvalidInput},
		{"missing column", "control_visitors,control_conversions,treatment_visitors\n10,1,10\n", errors.CodeInvalidInput},
		{"not a number", "control_visitors,control_conversions,treatment_visitors,treatment_conversions\n10,one,10,2\n", errors.CodeInvalidInput},
		{"fractional count", "control_visitors,control_conversions,treatment_visitors,treatment_conversions\n10,1.5,10,2\n", errors.CodeInvalidInput},
		{"empty count", "control_visitors,control_conversions,treatment_visitors,treatment_conversions\n10,,10,2\n", errors.CodeInvalidInput},
		{"garbage level", "control_visitors,control_conversions,treatment_visitors,treatment_conversions,confidence_level\n10,1,10,2,high\n", errors.CodeInvalidConfidenceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "batch.csv", tt.content)

			_, err := NewDataReader(path, abtest.Confidence95).ReadExperiments()
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
		})
	}
}

func TestReadExperiments_GarbageLevelNamesRow(t *testing.T) {
	path := writeFile(t, "batch.csv", "control_visitors,control_conversions,treatment_visitors,treatment_conversions,confidence_level\n10,1,10,2,95\n10,1,10,2,high\n")

	_, err := NewDataReader(path, abtest.Confidence95).ReadExperiments()
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfidenceLevel, errors.GetCode(err))
	assert.Equal(t, `row 3: invalid confidence level "high": choose from 90, 95, or 99`, errors.Message(err))
}

func TestReadExperiments_MalformedCSVKeepsReason(t *testing.T) {
	path := writeFile(t, "batch.csv", "control_visitors,control_conversions,treatment_visitors,treatment_conversions\n10,\"1,10,2\n")

	_, err := NewDataReader(path, abtest.Confidence95).ReadExperiments()
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	msg := errors.Message(err)
	assert.Contains(t, msg, "failed to read CSV file: ")
	assert.Greater(t, len(msg), len("failed to read CSV file: "))
}

func TestReadExperiments_MissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.csv"), abtest.Confidence95).ReadExperiments()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CSV file not found")
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{"1,234", 1234, false},
		{"1000.0", 1000, false},
		{"-3", -3, false},
		{"2.5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
