package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbatdev/gcp-billing-report-go/internal/domain/entity"
	"github.com/gbatdev/gcp-billing-report-go/internal/shared/types"
)

func baseConfig() *types.Config {
	return &types.Config{
		BillingProject: "billing-admin",
		BillingDataset: "billing_export",
		BillingTable:   "gcp_billing_export_v1",
	}
}

func resolveAt() time.Time {
	return time.Date(2025, 8, 25, 9, 30, 0, 0, time.UTC)
}

func TestResolveRunConfigDefaults(t *testing.T) {
	run, err := ResolveRunConfig(baseConfig(), resolveAt())
	require.NoError(t, err)

	assert.Equal(t, "billing-admin.billing_export.gcp_billing_export_v1", run.Table.String())
	assert.Equal(t, []string{"project_id"}, run.Dimensions.Names())
	assert.Equal(t, []string{"project_id", "service_name"}, run.Drilldown.Names())

	// Yesterday against the day before.
	assert.Equal(t, "2025-08-24", run.CurrentWindow.Label())
	assert.Equal(t, "2025-08-23", run.PriorWindow.Label())

	assert.Equal(t, 10, run.TopN)
	assert.True(t, run.MinDelta.IsZero())
	assert.Equal(t, int32(2), run.Precision)
	assert.Equal(t, "2", run.Policy.WarningMultiplier.String())
	assert.Equal(t, "10", run.Policy.MinimumCost.String())
	assert.Equal(t, 5, run.TopServices)
	assert.False(t, run.Projection)
	assert.Empty(t, run.Channel)
}

func TestResolveRunConfigBillingTable(t *testing.T) {
	t.Run("nothing configured", func(t *testing.T) {
		_, err := ResolveRunConfig(&types.Config{}, resolveAt())
		require.ErrorIs(t, err, types.ErrNoBillingTable)
	})

	t.Run("partial coordinates name the missing option", func(t *testing.T) {
		cfg := baseConfig()
		cfg.BillingDataset = ""

		_, err := ResolveRunConfig(cfg, resolveAt())
		require.Error(t, err)
		assert.True(t, types.IsConfigurationError(err))
		assert.Contains(t, err.Error(), "billing_dataset")
	})
}

func TestResolveRunConfigDimensions(t *testing.T) {
	t.Run("service dimension drops the drill-down", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Dimensions = []string{"project_id", "service_name"}

		run, err := ResolveRunConfig(cfg, resolveAt())
		require.NoError(t, err)
		assert.Equal(t, 0, run.Drilldown.Len(), "grouping already itemizes services")
	})

	t.Run("label dimensions keep it", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Dimensions = []string{"label:team"}

		run, err := ResolveRunConfig(cfg, resolveAt())
		require.NoError(t, err)
		assert.Equal(t, []string{"label:team", "service_name"}, run.Drilldown.Names())
	})

	t.Run("unknown dimension is rejected", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Dimensions = []string{"region"}

		_, err := ResolveRunConfig(cfg, resolveAt())
		require.Error(t, err)
		assert.True(t, types.IsConfigurationError(err))
	})
}

func TestResolveRunConfigWindows(t *testing.T) {
	t.Run("days widens both windows", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Days = 7

		run, err := ResolveRunConfig(cfg, resolveAt())
		require.NoError(t, err)
		assert.Equal(t, "2025-08-18 to 2025-08-24", run.CurrentWindow.Label())
		assert.Equal(t, "2025-08-11 to 2025-08-17", run.PriorWindow.Label())
	})

	t.Run("explicit bounds with derived prior window", func(t *testing.T) {
		cfg := baseConfig()
		cfg.CurrentStart = "2025-08-01"
		cfg.CurrentEnd = "2025-08-15"

		run, err := ResolveRunConfig(cfg, resolveAt())
		require.NoError(t, err)
		assert.Equal(t, 14, run.CurrentWindow.Days())
		assert.Equal(t, 14, run.PriorWindow.Days())
		assert.Equal(t, run.CurrentWindow.Start, run.PriorWindow.End)
	})

	t.Run("all four bounds", func(t *testing.T) {
		cfg := baseConfig()
		cfg.CurrentStart = "2025-08-01"
		cfg.CurrentEnd = "2025-08-15"
		cfg.PriorStart = "2025-07-01"
		cfg.PriorEnd = "2025-07-15"

		run, err := ResolveRunConfig(cfg, resolveAt())
		require.NoError(t, err)
		assert.Equal(t, "2025-07-01 to 2025-07-14", run.PriorWindow.Label())
	})

	t.Run("days conflicts with explicit bounds", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Days = 7
		cfg.CurrentStart = "2025-08-01"
		cfg.CurrentEnd = "2025-08-15"

		_, err := ResolveRunConfig(cfg, resolveAt())
		require.Error(t, err)
		assert.True(t, types.IsConfigurationError(err))
	})

	t.Run("a lone bound is rejected", func(t *testing.T) {
		cfg := baseConfig()
		cfg.CurrentStart = "2025-08-01"

		_, err := ResolveRunConfig(cfg, resolveAt())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "both bounds are required")
	})

	t.Run("inverted window is rejected", func(t *testing.T) {
		cfg := baseConfig()
		cfg.CurrentStart = "2025-08-15"
		cfg.CurrentEnd = "2025-08-01"

		_, err := ResolveRunConfig(cfg, resolveAt())
		require.Error(t, err)
		assert.True(t, types.IsConfigurationError(err))
	})

	t.Run("malformed date is rejected", func(t *testing.T) {
		cfg := baseConfig()
		cfg.CurrentStart = "08/01/2025"
		cfg.CurrentEnd = "2025-08-15"

		_, err := ResolveRunConfig(cfg, resolveAt())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a date")
	})
}

func TestResolveRunConfigTuning(t *testing.T) {
	t.Run("explicit values survive", func(t *testing.T) {
		precision := 0
		cfg := baseConfig()
		cfg.TopN = 3
		cfg.MinDelta = "5.50"
		cfg.Precision = &precision
		cfg.WarningMultiplier = "1.5"
		cfg.MinimumWarnCost = "100"
		cfg.TopServices = 2

		run, err := ResolveRunConfig(cfg, resolveAt())
		require.NoError(t, err)
		assert.Equal(t, 3, run.TopN)
		assert.Equal(t, "5.5", run.MinDelta.String())
		assert.Equal(t, int32(0), run.Precision)
		assert.Equal(t, "1.5", run.Policy.WarningMultiplier.String())
		assert.Equal(t, "100", run.Policy.MinimumCost.String())
		assert.Equal(t, 2, run.TopServices)
	})

	invalid := map[string]func(*types.Config){
		"negative top_n":          func(c *types.Config) { c.TopN = -1 },
		"negative min_delta":      func(c *types.Config) { c.MinDelta = "-1" },
		"non-numeric min_delta":   func(c *types.Config) { c.MinDelta = "lots" },
		"negative precision":      func(c *types.Config) { p := -1; c.Precision = &p },
		"zero multiplier":         func(c *types.Config) { c.WarningMultiplier = "0" },
		"negative warn floor":     func(c *types.Config) { c.MinimumWarnCost = "-10" },
		"negative top_services":   func(c *types.Config) { c.TopServices = -1 },
		"negative days":           func(c *types.Config) { c.Days = -3 },
		"unsupported report type": func(c *types.Config) { c.ReportType = []string{"xlsx"} },
	}

	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			cfg := baseConfig()
			mutate(cfg)

			_, err := ResolveRunConfig(cfg, resolveAt())
			require.Error(t, err)
			assert.True(t, types.IsConfigurationError(err), "want a configuration error, got %v", err)
		})
	}
}

func TestResolveRunConfigProjection(t *testing.T) {
	projection := true
	cfg := baseConfig()
	cfg.Projection = &projection

	run, err := ResolveRunConfig(cfg, resolveAt())
	require.NoError(t, err)

	require.True(t, run.Projection)
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), run.MonthWindow.Start)
	assert.Equal(t, time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC), run.MonthWindow.End)
	assert.Equal(t, 6, run.DaysRemaining)
}

func TestResolveRunConfigDelivery(t *testing.T) {
	cfg := baseConfig()
	cfg.SlackChannel = "#costs"
	cfg.ReportName = "daily"
	cfg.ReportType = []string{"csv", "pdf"}
	cfg.Dir = "/tmp/reports"

	run, err := ResolveRunConfig(cfg, resolveAt())
	require.NoError(t, err)
	assert.Equal(t, "#costs", run.Channel)
	assert.Equal(t, "daily", run.ReportName)
	assert.Equal(t, []string{"csv", "pdf"}, run.ReportType)
	assert.Equal(t, "/tmp/reports", run.Dir)
}

func TestDimensionSetDrilldownMatchesPrimaryPrefix(t *testing.T) {
	// The drill-down key is the primary key with the service appended, so
	// stripping the last value recovers the parent group.
	dims := mustDims(t, "project_id")
	drill := dims.Append(entity.DimensionService)

	li := item("prod-api", "Compute Engine", "1")
	primary := dims.KeyFor(li)
	sub := drill.KeyFor(li)

	values := sub.Values()
	require.Len(t, values, 2)
	assert.Equal(t, primary, entity.NewGroupKey(values[:1]))
	assert.Equal(t, "Compute Engine", values[1])
}
