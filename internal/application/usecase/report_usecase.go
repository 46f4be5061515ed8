package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gbatdev/gcp-billing-report-go/internal/domain/entity"
	"github.com/gbatdev/gcp-billing-report-go/internal/domain/repository"
	"github.com/gbatdev/gcp-billing-report-go/internal/shared/types"
)

// ReportUseCase drives one read-only reporting pass: fetch both windows,
// aggregate, compare, format, then display, export and notify. A failed
// run produces no report at all.
type ReportUseCase struct {
	billingRepo  repository.BillingRepository
	notifierRepo repository.NotifierRepository
	exportRepo   repository.ExportRepository
	console      types.ConsoleInterface
	logger       *logrus.Entry
	normalizer   *Normalizer
}

// NewReportUseCase creates a new report use case.
func NewReportUseCase(
	billingRepo repository.BillingRepository,
	notifierRepo repository.NotifierRepository,
	exportRepo repository.ExportRepository,
	console types.ConsoleInterface,
	logger *logrus.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		billingRepo:  billingRepo,
		notifierRepo: notifierRepo,
		exportRepo:   exportRepo,
		console:      console,
		logger:       logger.WithField("component", "report"),
		normalizer:   NewNormalizer(),
	}
}

// windowResult is one window's aggregation outcome.
type windowResult struct {
	table entity.CostTable
	drill entity.CostTable
	stats RunStats
}

// RunReport executes one full reporting pass with cfg.
func (uc *ReportUseCase) RunReport(ctx context.Context, cfg RunConfig) error {
	logger := uc.logger.WithFields(logrus.Fields{
		"table":   cfg.Table.String(),
		"current": cfg.CurrentWindow.Label(),
		"prior":   cfg.PriorWindow.Label(),
	})
	logger.Info("starting billing report run")

	status := uc.console.Status("Querying billing export...")

	var current, prior, monthly windowResult

	// Both windows are independent queries, so they run concurrently.
	// The month-to-date pass joins them when a projection was requested.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := uc.aggregateWindow(gctx, cfg.Table, cfg.CurrentWindow, cfg.Dimensions, cfg.Drilldown)
		if err != nil {
			return fmt.Errorf("current window: %w", err)
		}
		current = res
		return nil
	})
	g.Go(func() error {
		res, err := uc.aggregateWindow(gctx, cfg.Table, cfg.PriorWindow, cfg.Dimensions, entity.DimensionSet{})
		if err != nil {
			return fmt.Errorf("prior window: %w", err)
		}
		prior = res
		return nil
	})
	if cfg.Projection {
		g.Go(func() error {
			res, err := uc.aggregateWindow(gctx, cfg.Table, cfg.MonthWindow, entity.DimensionSet{}, entity.DimensionSet{})
			if err != nil {
				return fmt.Errorf("month to date: %w", err)
			}
			monthly = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		status.Stop()
		logger.WithError(err).Error("billing report run failed")
		return err
	}

	status.Update("Comparing windows...")

	comparator := NewComparator(cfg.Dimensions, cfg.Policy)
	cmp, err := comparator.CompareTables(current.table, prior.table)
	if err != nil {
		status.Stop()
		logger.WithError(err).Error("billing report run failed")
		return err
	}
	cmp.CurrentWindow = cfg.CurrentWindow
	cmp.PriorWindow = cfg.PriorWindow

	uc.attachTopItems(&cmp, current.drill, cfg.TopServices)

	var projection *entity.CostProjection
	if cfg.Projection {
		if monthly.table.Currency != "" && cmp.Currency != "" && monthly.table.Currency != cmp.Currency {
			status.Stop()
			err := &types.CurrencyMismatchError{Want: cmp.Currency, Got: monthly.table.Currency}
			logger.WithError(err).Error("billing report run failed")
			return err
		}
		// The month window overlaps the current one, so its counters stay
		// out of the report tally.
		if monthly.stats.SkippedRows > 0 {
			logger.WithFields(logrus.Fields{
				"rows":    monthly.stats.RowsRead,
				"skipped": monthly.stats.SkippedRows,
			}).Info("malformed rows skipped in month-to-date pass")
		}
		projection = buildProjection(monthly.table.Total(), cmp.CurrentTotal, cfg.CurrentWindow.Days(), cfg.DaysRemaining)
	}

	formatter := NewFormatter(cfg.TopN, cfg.MinDelta, cfg.Precision)
	report := formatter.Format(cmp, current.stats.Add(prior.stats), projection)
	report.Dimensions = cfg.Dimensions.Names()

	status.Stop()

	uc.displayReport(report)
	uc.exportReport(report, cfg)

	if cfg.Channel != "" {
		sendStatus := uc.console.Status("Delivering report to Slack...")
		err := uc.notifierRepo.SendReport(ctx, cfg.Channel, report)
		sendStatus.Stop()
		if err != nil {
			uc.console.LogError("Failed to deliver report to %s: %s", cfg.Channel, err)
			return err
		}
		uc.console.LogSuccess("Report delivered to %s", cfg.Channel)
	}

	logger.WithFields(logrus.Fields{
		"groups":  report.TotalGroups,
		"rows":    report.RowsRead,
		"skipped": report.SkippedRows,
	}).Info("billing report run complete")
	return nil
}

// aggregateWindow streams one window's rows through normalization into
// aggregation. Malformed rows are counted and skipped; currency conflicts
// and stream failures abort the pass.
func (uc *ReportUseCase) aggregateWindow(
	ctx context.Context,
	table entity.BillingTable,
	window entity.TimeWindow,
	dims entity.DimensionSet,
	drillDims entity.DimensionSet,
) (windowResult, error) {
	it, err := uc.billingRepo.FetchUsage(ctx, table, window)
	if err != nil {
		return windowResult{}, err
	}

	agg := NewAggregator(dims)
	var drill *Aggregator
	if drillDims.Len() > 0 {
		drill = NewAggregator(drillDims)
	}

	var stats RunStats
	logger := uc.logger.WithField("window", window.Label())
	for it.Next() {
		stats.RowsRead++
		item, err := uc.normalizer.Normalize(it.Row())
		if err != nil {
			if types.IsMalformedRecord(err) {
				stats.SkippedRows++
				logger.WithError(err).Debug("skipping malformed row")
				continue
			}
			return windowResult{}, err
		}
		if err := agg.Add(item); err != nil {
			return windowResult{}, err
		}
		if drill != nil {
			if err := drill.Add(item); err != nil {
				return windowResult{}, err
			}
		}
	}
	if err := it.Err(); err != nil {
		return windowResult{}, err
	}

	logger.WithFields(logrus.Fields{
		"rows":    stats.RowsRead,
		"skipped": stats.SkippedRows,
		"groups":  agg.Table().Len(),
	}).Debug("window aggregated")

	result := windowResult{table: agg.Table(), stats: stats}
	if drill != nil {
		result.drill = drill.Table()
	}
	return result, nil
}

// attachTopItems fills each warning row with the services contributing
// most to its current cost, taken from the drill-down aggregation.
func (uc *ReportUseCase) attachTopItems(cmp *entity.CostComparison, drill entity.CostTable, topServices int) {
	if drill.Len() == 0 || topServices <= 0 {
		return
	}
	for i := range cmp.Rows {
		row := &cmp.Rows[i]
		if row.Status != entity.StatusWarning {
			continue
		}
		row.TopItems = topItemsFor(drill, row.Key, topServices)
	}
}

// topItemsFor selects the drill-down buckets under one primary group and
// keeps the costliest n. Drill keys are the primary key with the service
// value appended.
func topItemsFor(drill entity.CostTable, key entity.GroupKey, n int) []entity.CostItem {
	var items []entity.CostItem
	for drillKey, bucket := range drill.Buckets {
		values := drillKey.Values()
		if len(values) < 2 {
			continue
		}
		if entity.NewGroupKey(values[:len(values)-1]) != key {
			continue
		}
		items = append(items, entity.CostItem{Name: values[len(values)-1], Cost: bucket.TotalCost})
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Cost.Equal(items[j].Cost) {
			return items[i].Cost.GreaterThan(items[j].Cost)
		}
		return items[i].Name < items[j].Name
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}

// buildProjection estimates month-end spend from the landed month-to-date
// total plus the current window's daily run rate for each remaining day.
func buildProjection(monthToDate, currentTotal decimal.Decimal, windowDays, daysRemaining int) *entity.CostProjection {
	rate := currentTotal.Div(decimal.NewFromInt(int64(windowDays)))
	return &entity.CostProjection{
		MonthToDate:   monthToDate,
		DailyRunRate:  rate,
		DaysRemaining: daysRemaining,
		Projected:     monthToDate.Add(rate.Mul(decimal.NewFromInt(int64(daysRemaining)))),
	}
}

// displayReport renders the comparison table, totals and delta bars.
func (uc *ReportUseCase) displayReport(report entity.Report) {
	table := uc.console.CreateTable()
	table.AddColumn("#")
	table.AddColumn(strings.Join(report.Dimensions, " / "))
	table.AddColumn(fmt.Sprintf("Prior Cost\n(%s)", report.PriorWindow.Label()))
	table.AddColumn(fmt.Sprintf("Current Cost\n(%s)", report.CurrentWindow.Label()))
	table.AddColumn("Delta")
	table.AddColumn("Change")
	table.AddColumn("Status")

	for _, row := range report.Rows {
		group := row.Group
		if len(row.TopItems) > 0 {
			lines := []string{group}
			for _, item := range row.TopItems {
				lines = append(lines, pterm.FgGray.Sprintf("  %s: %s", item.Name, formatMoney(item.Cost, report.Currency)))
			}
			group = strings.Join(lines, "\n")
		}
		table.AddRow(
			fmt.Sprintf("%d", row.Rank),
			group,
			formatMoney(row.PriorCost, report.Currency),
			pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(formatMoney(row.CurrentCost, report.Currency)),
			formatDelta(row.Delta, report.Currency),
			formatPercent(row.PercentChange, row.Delta),
			formatStatus(row.Status),
		)
	}

	uc.console.Print(table.Render())
	fmt.Println()

	uc.console.Printf("Total: %s -> %s (%s, %s)\n",
		formatMoney(report.PriorTotal, report.Currency),
		pterm.NewStyle(pterm.Bold).Sprint(formatMoney(report.CurrentTotal, report.Currency)),
		formatDelta(report.TotalDelta, report.Currency),
		formatPercent(report.TotalPercent, report.TotalDelta),
	)
	if report.OmittedGroups > 0 {
		uc.console.LogInfo("%d of %d groups shown; %d below the movement threshold",
			len(report.Rows), report.TotalGroups, report.OmittedGroups)
	}
	if report.Projection != nil {
		uc.console.Printf("Projected month-end cost: %s (%s to date + %d days at %s/day)\n",
			pterm.NewStyle(pterm.Bold).Sprint(formatMoney(report.Projection.Projected, report.Currency)),
			formatMoney(report.Projection.MonthToDate, report.Currency),
			report.Projection.DaysRemaining,
			formatMoney(report.Projection.DailyRunRate, report.Currency),
		)
	}
	if report.SkippedRows > 0 {
		uc.console.LogWarning("%d of %d rows were malformed and skipped", report.SkippedRows, report.RowsRead)
	}

	if len(report.Rows) > 0 {
		bars := make([]types.DeltaBar, 0, len(report.Rows))
		for _, row := range report.Rows {
			current, _ := row.CurrentCost.Float64()
			delta, _ := row.Delta.Float64()
			bars = append(bars, types.DeltaBar{
				Label:   row.Group,
				Current: current,
				Delta:   delta,
				Percent: row.PercentChange.String(),
			})
		}
		uc.console.DisplayDeltaBars(bars)
	}
}

// exportReport writes the report in every requested format.
func (uc *ReportUseCase) exportReport(report entity.Report, cfg RunConfig) {
	if cfg.ReportName == "" || len(cfg.ReportType) == 0 {
		return
	}
	for _, reportType := range cfg.ReportType {
		switch reportType {
		case "csv":
			csvPath, err := uc.exportRepo.ExportToCSV(report, cfg.ReportName, cfg.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to CSV: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to CSV: %s", csvPath)
			}
		case "json":
			jsonPath, err := uc.exportRepo.ExportToJSON(report, cfg.ReportName, cfg.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to JSON: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to JSON: %s", jsonPath)
			}
		case "pdf":
			pdfPath, err := uc.exportRepo.ExportToPDF(report, cfg.ReportName, cfg.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to PDF: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to PDF: %s", pdfPath)
			}
		}
	}
}

func formatMoney(d decimal.Decimal, currency string) string {
	if currency == "" {
		return d.String()
	}
	return d.String() + " " + currency
}

func formatDelta(d decimal.Decimal, currency string) string {
	text := formatMoney(d, currency)
	switch {
	case d.IsPositive():
		return pterm.FgRed.Sprint("+" + text)
	case d.IsNegative():
		return pterm.FgGreen.Sprint(text)
	default:
		return text
	}
}

func formatPercent(p entity.PercentChange, delta decimal.Decimal) string {
	switch {
	case p.IsNew():
		return pterm.FgRed.Sprint("new")
	case delta.IsPositive():
		return pterm.FgRed.Sprintf("⬆ %s", p.String())
	case delta.IsNegative():
		return pterm.FgGreen.Sprintf("⬇ %s", p.String())
	default:
		return pterm.FgYellow.Sprintf("➡ %s", p.String())
	}
}

func formatStatus(status string) string {
	if status == entity.StatusWarning {
		return pterm.NewStyle(pterm.FgYellow, pterm.Bold).Sprint(status)
	}
	return pterm.FgGreen.Sprint(status)
}
