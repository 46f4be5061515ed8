package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gbatdev/gcp-billing-report-go/internal/domain/entity"
)

// RunStats carries the input accounting surfaced on every report.
type RunStats struct {
	RowsRead    int
	SkippedRows int
}

// Add folds another pass's counters into the stats.
func (s RunStats) Add(other RunStats) RunStats {
	return RunStats{
		RowsRead:    s.RowsRead + other.RowsRead,
		SkippedRows: s.SkippedRows + other.SkippedRows,
	}
}

// Formatter turns a comparison into the delivery-independent report.
type Formatter struct {
	topN      int
	minDelta  decimal.Decimal
	precision int32
}

// NewFormatter creates a formatter keeping at most topN rows, dropping
// rows whose absolute delta stays under minDelta, and rounding every
// monetary amount to precision decimal places.
func NewFormatter(topN int, minDelta decimal.Decimal, precision int32) *Formatter {
	return &Formatter{topN: topN, minDelta: minDelta, precision: precision}
}

// Format itemizes the biggest movers and totals everything. Rows reach the
// itemized list when their absolute delta clears the threshold, with "new"
// groups always qualifying; the list is capped at topN. Totals cover every
// group either window saw, including the omitted ones, so the report's
// bottom line never depends on presentation settings.
func (f *Formatter) Format(cmp entity.CostComparison, stats RunStats, projection *entity.CostProjection) entity.Report {
	report := entity.Report{
		GeneratedAt:   time.Now().UTC(),
		CurrentWindow: cmp.CurrentWindow,
		PriorWindow:   cmp.PriorWindow,
		Currency:      cmp.Currency,
		CurrentTotal:  f.round(cmp.CurrentTotal),
		PriorTotal:    f.round(cmp.PriorTotal),
		TotalDelta:    f.round(cmp.CurrentTotal.Sub(cmp.PriorTotal)),
		TotalGroups:   len(cmp.Rows),
		RowsRead:      stats.RowsRead,
		SkippedRows:   stats.SkippedRows,
	}

	if cmp.PriorTotal.IsZero() {
		if !cmp.CurrentTotal.IsZero() {
			report.TotalPercent = entity.PercentChangeNew()
		}
	} else {
		report.TotalPercent = entity.PercentChangeOf(cmp.CurrentTotal.Sub(cmp.PriorTotal), cmp.PriorTotal)
	}

	for _, row := range cmp.Rows {
		if len(report.Rows) >= f.topN {
			break
		}
		if !f.qualifies(row) {
			continue
		}
		report.Rows = append(report.Rows, entity.ReportRow{
			Rank:          len(report.Rows) + 1,
			Group:         row.Key.String(),
			Dimensions:    row.Dimensions,
			CurrentCost:   f.round(row.CurrentCost),
			PriorCost:     f.round(row.PriorCost),
			Delta:         f.round(row.Delta),
			PercentChange: row.PercentChange,
			Status:        row.Status,
			TopItems:      f.roundItems(row.TopItems),
		})
	}
	report.OmittedGroups = report.TotalGroups - len(report.Rows)
	report.Projection = f.roundProjection(projection)
	return report
}

// qualifies applies the movement threshold. Groups new in the current
// window bypass it: appearing at all is the signal.
func (f *Formatter) qualifies(row entity.ComparisonRow) bool {
	if row.PercentChange.IsNew() {
		return true
	}
	return row.Delta.Abs().GreaterThanOrEqual(f.minDelta)
}

func (f *Formatter) round(d decimal.Decimal) decimal.Decimal {
	return d.Round(f.precision)
}

func (f *Formatter) roundItems(items []entity.CostItem) []entity.CostItem {
	if len(items) == 0 {
		return nil
	}
	rounded := make([]entity.CostItem, len(items))
	for i, item := range items {
		rounded[i] = entity.CostItem{Name: item.Name, Cost: f.round(item.Cost)}
	}
	return rounded
}

func (f *Formatter) roundProjection(p *entity.CostProjection) *entity.CostProjection {
	if p == nil {
		return nil
	}
	return &entity.CostProjection{
		MonthToDate:   f.round(p.MonthToDate),
		DailyRunRate:  f.round(p.DailyRunRate),
		DaysRemaining: p.DaysRemaining,
		Projected:     f.round(p.Projected),
	}
}
