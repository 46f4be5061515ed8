package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gbatdev/gcp-billing-report-go/internal/domain/entity"
	"github.com/gbatdev/gcp-billing-report-go/internal/domain/repository"
	"github.com/jung-kurt/gofpdf"
)

// ExportRepositoryImpl implements the ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository creates a new ExportRepository implementation.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

// ExportToCSV writes the itemized rows plus a trailing TOTAL row. Every
// dimension gets its own column so the file pivots cleanly in a
// spreadsheet.
func (r *ExportRepositoryImpl) ExportToCSV(report entity.Report, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"Rank"}
	headers = append(headers, report.Dimensions...)
	headers = append(headers,
		fmt.Sprintf("Prior Cost (%s)", report.PriorWindow.Label()),
		fmt.Sprintf("Current Cost (%s)", report.CurrentWindow.Label()),
		"Delta",
		"Change",
		"Status",
		"Top Services",
	)
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, row := range report.Rows {
		var topServices []string
		for _, item := range row.TopItems {
			topServices = append(topServices, fmt.Sprintf("%s: %s", item.Name, item.Cost.String()))
		}

		record := []string{fmt.Sprintf("%d", row.Rank)}
		record = append(record, paddedValues(row.Dimensions, len(report.Dimensions))...)
		record = append(record,
			row.PriorCost.String(),
			row.CurrentCost.String(),
			row.Delta.String(),
			row.PercentChange.String(),
			row.Status,
			cleanRichTags(strings.Join(topServices, "\n")),
		)
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	total := []string{""}
	total = append(total, paddedValues([]string{"TOTAL"}, len(report.Dimensions))...)
	total = append(total,
		report.PriorTotal.String(),
		report.CurrentTotal.String(),
		report.TotalDelta.String(),
		report.TotalPercent.String(),
		"",
		"",
	)
	if err := writer.Write(total); err != nil {
		return "", fmt.Errorf("error writing CSV total row: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportToJSON writes the full report, including the counters the CSV
// flattens away.
func (r *ExportRepositoryImpl) ExportToJSON(report entity.Report, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportToPDF writes a one-page summary: totals up top, the itemized
// movers below, projection and data quality notes at the bottom.
func (r *ExportRepositoryImpl) ExportToPDF(report entity.Report, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawSection := func(title string, content string) {
		content = cleanRichTags(content)
		if strings.TrimSpace(content) == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  GCP Billing Report"), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Grouped by: %s", strings.Join(report.Dimensions, ", "))), "", 1, "L", true, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
	pdf.Cell(0, 8, "Cost Summary")
	pdf.Ln(7)
	pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
	pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
	pdf.Ln(4)

	costTableWidth := 95.0
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(costTableWidth, 7, tr("Prior Window"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(costTableWidth, 7, tr("Current Window"), "B", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(costTableWidth, 5, tr(report.PriorWindow.Label()), "", 0, "L", false, 0, "")
	pdf.CellFormat(costTableWidth, 5, tr(report.CurrentWindow.Label()), "", 1, "L", false, 0, "")
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(costTableWidth, 12, tr(money(report.PriorTotal.String(), report.Currency)), "", 0, "L", false, 0, "")

	changeText := fmt.Sprintf("  (%s)", report.TotalPercent.String())
	originalR, originalG, originalB := pdf.GetTextColor()
	switch {
	case report.TotalPercent.IsNew() || report.TotalDelta.IsPositive():
		pdf.SetTextColor(192, 0, 0)
	case report.TotalDelta.IsNegative():
		pdf.SetTextColor(0, 128, 0)
	}

	valueStr := money(report.CurrentTotal.String(), report.Currency)
	pdf.Cell(pdf.GetStringWidth(valueStr), 12, tr(valueStr))

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(costTableWidth-pdf.GetStringWidth(valueStr), 12, tr(changeText), "", 1, "L", false, 0, "")
	pdf.SetTextColor(originalR, originalG, originalB)
	pdf.Ln(10)

	var movers strings.Builder
	for _, row := range report.Rows {
		movers.WriteString(fmt.Sprintf("%d. %s [%s]\n", row.Rank, row.Group, row.Status))
		movers.WriteString(fmt.Sprintf("    %s -> %s (%s)\n",
			money(row.PriorCost.String(), report.Currency),
			money(row.CurrentCost.String(), report.Currency),
			row.PercentChange.String()))
		for _, item := range row.TopItems {
			movers.WriteString(fmt.Sprintf("      - %s: %s\n", item.Name, money(item.Cost.String(), report.Currency)))
		}
	}
	if len(report.Rows) == 0 {
		movers.WriteString("No cost movement above the reporting threshold.\n")
	}
	if report.OmittedGroups > 0 {
		movers.WriteString(fmt.Sprintf("\n(+%d groups below the movement threshold)\n", report.OmittedGroups))
	}
	drawSection("Biggest Movers", movers.String())

	if report.Projection != nil {
		projection := fmt.Sprintf(
			"Month to date: %s\nDaily run rate: %s\nDays remaining: %d\nProjected month end: %s",
			money(report.Projection.MonthToDate.String(), report.Currency),
			money(report.Projection.DailyRunRate.String(), report.Currency),
			report.Projection.DaysRemaining,
			money(report.Projection.Projected.String(), report.Currency),
		)
		drawSection("Month-End Projection", projection)
	}

	if report.SkippedRows > 0 {
		drawSection("Data Quality", fmt.Sprintf("%d of %d rows were malformed and skipped.", report.SkippedRows, report.RowsRead))
	}

	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	footerText := fmt.Sprintf("Generated by GCP Billing Report (Go) | %s", time.Now().Format("2006-01-02"))
	pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 10, tr("Page 1"), "", 0, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Helpers ---

// generateFilename builds a timestamped file name and makes sure the
// output directory exists.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// paddedValues fits a value tuple to width columns so a short tuple can
// never shift the CSV grid.
func paddedValues(values []string, width int) []string {
	out := make([]string, width)
	for i := 0; i < width && i < len(values); i++ {
		out[i] = values[i]
	}
	return out
}

func money(amount, currency string) string {
	if currency == "" {
		return amount
	}
	return amount + " " + currency
}

// Regexes stripping pterm rich tags and ANSI color sequences that may
// survive in strings headed for files.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags removes pterm formatting tags and ANSI sequences.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}
