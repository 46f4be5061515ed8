package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbatdev/gcp-billing-report-go/internal/domain/entity"
)

func exportReport() entity.Report {
	return entity.Report{
		GeneratedAt: time.Date(2025, 8, 25, 9, 0, 0, 0, time.UTC),
		Dimensions:  []string{"project_id", "service_name"},
		CurrentWindow: entity.TimeWindow{
			Start: time.Date(2025, 8, 24, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC),
		},
		PriorWindow: entity.TimeWindow{
			Start: time.Date(2025, 8, 23, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		Currency:     "USD",
		CurrentTotal: decimal.NewFromInt(180),
		PriorTotal:   decimal.NewFromInt(50),
		TotalDelta:   decimal.NewFromInt(130),
		TotalPercent: entity.PercentChangeOf(decimal.NewFromInt(130), decimal.NewFromInt(50)),
		Rows: []entity.ReportRow{
			{
				Rank:          1,
				Group:         "prod-api / Compute Engine",
				Dimensions:    []string{"prod-api", "Compute Engine"},
				CurrentCost:   decimal.NewFromInt(100),
				PriorCost:     decimal.Zero,
				Delta:         decimal.NewFromInt(100),
				PercentChange: entity.PercentChangeNew(),
				Status:        entity.StatusWarning,
				TopItems: []entity.CostItem{
					{Name: "N1 Standard Instance Core", Cost: decimal.NewFromInt(80)},
					{Name: "Network Egress", Cost: decimal.NewFromInt(20)},
				},
			},
			{
				Rank:          2,
				Group:         "staging / Cloud Storage",
				Dimensions:    []string{"staging", "Cloud Storage"},
				CurrentCost:   decimal.NewFromInt(80),
				PriorCost:     decimal.NewFromInt(50),
				Delta:         decimal.NewFromInt(30),
				PercentChange: entity.PercentChangeOf(decimal.NewFromInt(30), decimal.NewFromInt(50)),
				Status:        entity.StatusNominal,
			},
		},
		TotalGroups:   3,
		OmittedGroups: 1,
		RowsRead:      12,
		SkippedRows:   2,
	}
}

func TestExportToCSV(t *testing.T) {
	dir := t.TempDir()
	repo := NewExportRepository()

	path, err := repo.ExportToCSV(exportReport(), "billing", dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, ".csv", filepath.Ext(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "billing_"))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4, "header, two rows, total")

	assert.Equal(t, []string{
		"Rank", "project_id", "service_name",
		"Prior Cost (2025-08-23)", "Current Cost (2025-08-24)",
		"Delta", "Change", "Status", "Top Services",
	}, records[0])

	assert.Equal(t, []string{
		"1", "prod-api", "Compute Engine", "0", "100", "100", "new", "WARNING",
		"N1 Standard Instance Core: 80\nNetwork Egress: 20",
	}, records[1])

	assert.Equal(t, []string{
		"2", "staging", "Cloud Storage", "50", "80", "30", "+60.00%", "NOMINAL", "",
	}, records[2])

	// The total row pads the dimension columns so the grid stays aligned.
	assert.Equal(t, []string{
		"", "TOTAL", "", "50", "180", "130", "+260.00%", "", "",
	}, records[3])
}

func TestExportToJSON(t *testing.T) {
	dir := t.TempDir()
	repo := NewExportRepository()

	report := exportReport()
	report.Projection = &entity.CostProjection{
		MonthToDate:   decimal.NewFromInt(310),
		DailyRunRate:  decimal.NewFromInt(180),
		DaysRemaining: 6,
		Projected:     decimal.NewFromInt(1390),
	}

	path, err := repo.ExportToJSON(report, "billing", dir)
	require.NoError(t, err)
	assert.Equal(t, ".json", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "USD", decoded["currency"])
	assert.Equal(t, "180", decoded["current_total"], "decimals export as strings")
	assert.Equal(t, float64(260), decoded["total_percent_change"], "finite percentages export as numbers")
	assert.Equal(t, float64(3), decoded["total_groups"])
	assert.Equal(t, float64(1), decoded["omitted_groups"])
	assert.Equal(t, float64(2), decoded["skipped_rows"])

	rows, ok := decoded["rows"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 2)

	first, ok := rows[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "prod-api / Compute Engine", first["group"])
	assert.Equal(t, "new", first["percent_change"], "unbounded growth exports as the string sentinel")
	assert.Equal(t, "WARNING", first["status"])

	projection, ok := decoded["projection"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1390", projection["projected"])
	assert.Equal(t, float64(6), projection["days_remaining"])
}

func TestExportToPDF(t *testing.T) {
	dir := t.TempDir()
	repo := NewExportRepository()

	report := exportReport()
	report.Projection = &entity.CostProjection{
		MonthToDate:   decimal.NewFromInt(310),
		DailyRunRate:  decimal.NewFromInt(180),
		DaysRemaining: 6,
		Projected:     decimal.NewFromInt(1390),
	}

	path, err := repo.ExportToPDF(report, "billing", dir)
	require.NoError(t, err)
	assert.Equal(t, ".pdf", filepath.Ext(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestGenerateFilename(t *testing.T) {
	t.Run("creates missing directories", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "reports", "monthly")

		path, err := generateFilename("billing", dir, "csv")
		require.NoError(t, err)

		assert.DirExists(t, dir)
		assert.Equal(t, dir, filepath.Dir(path))
		base := filepath.Base(path)
		assert.True(t, strings.HasPrefix(base, "billing_"))
		assert.True(t, strings.HasSuffix(base, ".csv"))
	})

	t.Run("empty directory falls back to working directory", func(t *testing.T) {
		path, err := generateFilename("billing", "", "json")
		require.NoError(t, err)

		cwd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, cwd, filepath.Dir(path))
	})
}

func TestPaddedValues(t *testing.T) {
	tests := map[string]struct {
		values []string
		width  int
		want   []string
	}{
		"exact":    {values: []string{"a", "b"}, width: 2, want: []string{"a", "b"}},
		"short":    {values: []string{"TOTAL"}, width: 3, want: []string{"TOTAL", "", ""}},
		"overlong": {values: []string{"a", "b", "c"}, width: 2, want: []string{"a", "b"}},
		"empty":    {values: nil, width: 2, want: []string{"", ""}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, paddedValues(tt.values, tt.width))
		})
	}
}

func TestCleanRichTags(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"plain":     {in: "Compute Engine: 80", want: "Compute Engine: 80"},
		"color tag": {in: "[red]100[/red]", want: "100"},
		"hex tag":   {in: "[#ff0000]100[/#ff0000]", want: "100"},
		"ansi":      {in: "\x1b[31m100\x1b[0m", want: "100"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanRichTags(tt.in))
		})
	}
}
