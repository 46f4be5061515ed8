package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportRow is one itemized group in the final report, rounded for
// presentation.
type ReportRow struct {
	Rank          int             `json:"rank"`
	Group         string          `json:"group"`
	Dimensions    []string        `json:"dimensions"`
	CurrentCost   decimal.Decimal `json:"current_cost"`
	PriorCost     decimal.Decimal `json:"prior_cost"`
	Delta         decimal.Decimal `json:"delta"`
	PercentChange PercentChange   `json:"percent_change"`
	Status        string          `json:"status"`
	TopItems      []CostItem      `json:"top_items,omitempty"`
}

// CostProjection is the linear month-end estimate: month-to-date spend
// plus the current daily run rate applied to each remaining day.
type CostProjection struct {
	MonthToDate   decimal.Decimal `json:"month_to_date"`
	DailyRunRate  decimal.Decimal `json:"daily_run_rate"`
	DaysRemaining int             `json:"days_remaining"`
	Projected     decimal.Decimal `json:"projected"`
}

// Report is the delivery-independent summary handed to the console,
// notifier and export adapters. All numbers are final; adapters render,
// they never re-derive.
type Report struct {
	GeneratedAt   time.Time       `json:"generated_at"`
	Dimensions    []string        `json:"dimensions"`
	CurrentWindow TimeWindow      `json:"current_window"`
	PriorWindow   TimeWindow      `json:"prior_window"`
	Currency      string          `json:"currency,omitempty"`
	CurrentTotal  decimal.Decimal `json:"current_total"`
	PriorTotal    decimal.Decimal `json:"prior_total"`
	TotalDelta    decimal.Decimal `json:"total_delta"`
	TotalPercent  PercentChange   `json:"total_percent_change"`
	Rows          []ReportRow     `json:"rows"`
	TotalGroups   int             `json:"total_groups"`
	OmittedGroups int             `json:"omitted_groups"`
	RowsRead      int             `json:"rows_read"`
	SkippedRows   int             `json:"skipped_rows"`
	Projection    *CostProjection `json:"projection,omitempty"`
}

// HasWarnings reports whether any itemized row carries warning status.
func (r Report) HasWarnings() bool {
	for _, row := range r.Rows {
		if row.Status == StatusWarning {
			return true
		}
	}
	return false
}
