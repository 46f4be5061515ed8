package usecase

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gbatdev/gcp-billing-report-go/internal/domain/entity"
	"github.com/gbatdev/gcp-billing-report-go/internal/shared/types"
)

// RunConfig is the validated, immutable configuration one reporting run
// executes with. Built by ResolveRunConfig before any row is touched, so a
// bad setting can never waste a warehouse query.
type RunConfig struct {
	Table      entity.BillingTable
	Dimensions entity.DimensionSet
	// Drilldown is the dimension set for the per-service breakdown
	// attached to warning rows. Empty when service_name is already a
	// primary dimension.
	Drilldown entity.DimensionSet

	CurrentWindow entity.TimeWindow
	PriorWindow   entity.TimeWindow

	TopN        int
	MinDelta    decimal.Decimal
	Precision   int32
	Policy      entity.StatusPolicy
	TopServices int

	Projection    bool
	MonthWindow   entity.TimeWindow
	DaysRemaining int

	Channel    string
	ReportName string
	ReportType []string
	Dir        string
}

const dateLayout = "2006-01-02"

// Defaults applied when neither flags, file nor environment say otherwise.
const (
	defaultTopN        = 10
	defaultPrecision   = 2
	defaultTopServices = 5
)

// ResolveRunConfig validates the merged configuration and fills defaults.
// Without explicit bounds the current window is the last complete UTC day
// and the prior window the day before; --days n widens both to n-day spans
// back to back.
func ResolveRunConfig(cfg *types.Config, now time.Time) (RunConfig, error) {
	run := RunConfig{}

	if cfg.BillingProject == "" && cfg.BillingDataset == "" && cfg.BillingTable == "" {
		return run, types.ErrNoBillingTable
	}
	if cfg.BillingProject == "" {
		return run, &types.ConfigurationError{Option: "billing_project", Reason: "is required"}
	}
	if cfg.BillingDataset == "" {
		return run, &types.ConfigurationError{Option: "billing_dataset", Reason: "is required"}
	}
	if cfg.BillingTable == "" {
		return run, &types.ConfigurationError{Option: "billing_table", Reason: "is required"}
	}
	run.Table = entity.BillingTable{
		ProjectID: cfg.BillingProject,
		Dataset:   cfg.BillingDataset,
		Table:     cfg.BillingTable,
	}

	names := cfg.Dimensions
	if len(names) == 0 {
		names = []string{string(entity.DimensionProject)}
	}
	dims, err := entity.ParseDimensions(names)
	if err != nil {
		return run, &types.ConfigurationError{Option: "dimensions", Reason: err.Error()}
	}
	run.Dimensions = dims
	if !dims.Contains(entity.DimensionService) {
		run.Drilldown = dims.Append(entity.DimensionService)
	}

	current, prior, err := resolveWindows(cfg, now)
	if err != nil {
		return run, err
	}
	run.CurrentWindow = current
	run.PriorWindow = prior

	run.TopN = cfg.TopN
	switch {
	case run.TopN == 0:
		run.TopN = defaultTopN
	case run.TopN < 0:
		return run, &types.ConfigurationError{Option: "top_n", Reason: "must be positive"}
	}

	run.MinDelta, err = decimalOption("min_delta", cfg.MinDelta, decimal.Zero)
	if err != nil {
		return run, err
	}
	if run.MinDelta.IsNegative() {
		return run, &types.ConfigurationError{Option: "min_delta", Reason: "must not be negative"}
	}

	precision := defaultPrecision
	if cfg.Precision != nil {
		precision = *cfg.Precision
	}
	if precision < 0 {
		return run, &types.ConfigurationError{Option: "precision", Reason: "must not be negative"}
	}
	run.Precision = int32(precision)

	multiplier, err := decimalOption("warning_multiplier", cfg.WarningMultiplier, decimal.NewFromInt(2))
	if err != nil {
		return run, err
	}
	if !multiplier.IsPositive() {
		return run, &types.ConfigurationError{Option: "warning_multiplier", Reason: "must be positive"}
	}
	floor, err := decimalOption("minimum_warn_cost", cfg.MinimumWarnCost, decimal.NewFromInt(10))
	if err != nil {
		return run, err
	}
	if floor.IsNegative() {
		return run, &types.ConfigurationError{Option: "minimum_warn_cost", Reason: "must not be negative"}
	}
	run.Policy = entity.StatusPolicy{WarningMultiplier: multiplier, MinimumCost: floor}

	run.TopServices = cfg.TopServices
	switch {
	case run.TopServices == 0:
		run.TopServices = defaultTopServices
	case run.TopServices < 0:
		return run, &types.ConfigurationError{Option: "top_services", Reason: "must be positive"}
	}

	if cfg.Projection != nil && *cfg.Projection {
		run.Projection = true
		run.MonthWindow = entity.MonthToDate(now.UTC())
		run.DaysRemaining = entity.DaysRemainingInMonth(now.UTC())
	}

	run.Channel = cfg.SlackChannel
	run.ReportName = cfg.ReportName
	run.Dir = cfg.Dir
	for _, reportType := range cfg.ReportType {
		switch reportType {
		case "csv", "json", "pdf":
			run.ReportType = append(run.ReportType, reportType)
		default:
			return run, &types.ConfigurationError{Option: "report_type", Reason: fmt.Sprintf("unknown type %q (valid: csv, json, pdf)", reportType)}
		}
	}

	return run, nil
}

// resolveWindows picks the comparison windows. Explicit current bounds
// take precedence; the prior window defaults to the span of equal length
// immediately before the current one.
func resolveWindows(cfg *types.Config, now time.Time) (entity.TimeWindow, entity.TimeWindow, error) {
	var current, prior entity.TimeWindow

	explicit := cfg.CurrentStart != "" || cfg.CurrentEnd != "" || cfg.PriorStart != "" || cfg.PriorEnd != ""
	if !explicit {
		days := cfg.Days
		if days < 0 {
			return current, prior, &types.ConfigurationError{Option: "days", Reason: "must be positive"}
		}
		if days == 0 {
			days = 1
		}
		current = entity.LastNDays(now.UTC(), days)
		return current, current.Previous(), nil
	}

	if cfg.Days != 0 {
		return current, prior, &types.ConfigurationError{Option: "days", Reason: "cannot be combined with explicit window bounds"}
	}

	current, err := parseWindow("current", cfg.CurrentStart, cfg.CurrentEnd)
	if err != nil {
		return current, prior, err
	}
	if cfg.PriorStart == "" && cfg.PriorEnd == "" {
		return current, current.Previous(), nil
	}
	prior, err = parseWindow("prior", cfg.PriorStart, cfg.PriorEnd)
	if err != nil {
		return current, prior, err
	}
	return current, prior, nil
}

// parseWindow reads a start/end date pair. The end date is exclusive, so
// start 2025-01-01 end 2025-01-08 covers exactly seven days.
func parseWindow(name, startStr, endStr string) (entity.TimeWindow, error) {
	var window entity.TimeWindow
	if startStr == "" || endStr == "" {
		return window, &types.ConfigurationError{Option: name + "_start/" + name + "_end", Reason: "both bounds are required"}
	}
	start, err := time.ParseInLocation(dateLayout, startStr, time.UTC)
	if err != nil {
		return window, &types.ConfigurationError{Option: name + "_start", Reason: fmt.Sprintf("%q is not a date (want YYYY-MM-DD)", startStr)}
	}
	end, err := time.ParseInLocation(dateLayout, endStr, time.UTC)
	if err != nil {
		return window, &types.ConfigurationError{Option: name + "_end", Reason: fmt.Sprintf("%q is not a date (want YYYY-MM-DD)", endStr)}
	}
	window = entity.TimeWindow{Start: start, End: end}
	if err := window.Validate(); err != nil {
		return window, &types.ConfigurationError{Option: name + "_window", Reason: err.Error()}
	}
	return window, nil
}

func decimalOption(option, value string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &types.ConfigurationError{Option: option, Reason: fmt.Sprintf("%q is not a number", value)}
	}
	return d, nil
}
