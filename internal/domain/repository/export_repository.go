package repository

import (
	"github.com/gbatdev/gcp-billing-report-go/internal/domain/entity"
)

// ExportRepository writes a report to local files. Each method returns the
// absolute path of the file it produced.
type ExportRepository interface {
	ExportToCSV(report entity.Report, filename string, outputDir string) (string, error)
	ExportToJSON(report entity.Report, filename string, outputDir string) (string, error)
	ExportToPDF(report entity.Report, filename string, outputDir string) (string, error)
}
