package usecase

import (
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbatdev/gcp-billing-report-go/internal/domain/entity"
	"github.com/gbatdev/gcp-billing-report-go/internal/shared/types"
)

func validRow() entity.RawRow {
	return entity.RawRow{
		"project_id":      "prod-api",
		"service_name":    "Compute Engine",
		"sku_description": "N1 Predefined Instance Core",
		"usage_start":     time.Date(2025, 8, 24, 10, 0, 0, 0, time.UTC),
		"usage_end":       time.Date(2025, 8, 24, 11, 0, 0, 0, time.UTC),
		"cost":            1.25,
		"currency":        "USD",
		"labels": []any{
			map[string]any{"key": "team", "value": "payments"},
			map[string]any{"key": "env", "value": "prod"},
		},
	}
}

func TestNormalizeValidRow(t *testing.T) {
	n := NewNormalizer()

	item, err := n.Normalize(validRow())
	require.NoError(t, err)

	assert.Equal(t, "prod-api", item.ProjectID)
	assert.Equal(t, "Compute Engine", item.ServiceName)
	assert.Equal(t, "N1 Predefined Instance Core", item.SKUDescription)
	assert.Equal(t, "USD", item.Currency)
	assert.True(t, item.Cost.Equal(decimal.NewFromFloat(1.25)), "got %s", item.Cost)
	assert.Equal(t, map[string]string{"team": "payments", "env": "prod"}, item.Labels)
	assert.Equal(t, "payments", item.Label("team"))
	assert.Equal(t, "", item.Label("missing"))
}

func TestNormalizeCostTypes(t *testing.T) {
	tests := map[string]struct {
		cost      any
		expect    string
		expectErr bool
	}{
		"float64":          {cost: 1.25, expect: "1.25"},
		"float32":          {cost: float32(0.5), expect: "0.5"},
		"int":              {cost: 3, expect: "3"},
		"int64":            {cost: int64(-2), expect: "-2"},
		"decimal":          {cost: decimal.RequireFromString("0.000001"), expect: "0.000001"},
		"numeric string":   {cost: " 12.50 ", expect: "12.5"},
		"big rational":     {cost: big.NewRat(1, 8), expect: "0.125"},
		"garbage string":   {cost: "twelve", expectErr: true},
		"unsupported type": {cost: []byte("1.0"), expectErr: true},
		"nil":              {cost: nil, expectErr: true},
	}

	n := NewNormalizer()
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			row := validRow()
			row["cost"] = test.cost

			item, err := n.Normalize(row)
			if test.expectErr {
				require.Error(t, err)
				assert.True(t, types.IsMalformedRecord(err), "want a malformed record error, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expect, item.Cost.String())
		})
	}
}

func TestNormalizeMissingRequiredFields(t *testing.T) {
	required := []string{"project_id", "service_name", "cost", "usage_start", "usage_end"}

	n := NewNormalizer()
	for _, field := range required {
		t.Run(field, func(t *testing.T) {
			row := validRow()
			delete(row, field)

			_, err := n.Normalize(row)
			require.Error(t, err)
			assert.True(t, types.IsMalformedRecord(err), "want a malformed record error, got %v", err)
		})
	}
}

func TestNormalizeOptionalFields(t *testing.T) {
	n := NewNormalizer()

	row := validRow()
	delete(row, "sku_description")
	delete(row, "currency")
	delete(row, "labels")

	item, err := n.Normalize(row)
	require.NoError(t, err)
	assert.Empty(t, item.SKUDescription)
	assert.Empty(t, item.Currency)
	assert.Nil(t, item.Labels)
}

func TestNormalizeTimestamps(t *testing.T) {
	n := NewNormalizer()

	t.Run("RFC3339 strings parse", func(t *testing.T) {
		row := validRow()
		row["usage_start"] = "2025-08-24T10:00:00Z"
		row["usage_end"] = "2025-08-24T11:00:00Z"

		item, err := n.Normalize(row)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 8, 24, 10, 0, 0, 0, time.UTC), item.UsageStart)
	})

	t.Run("non-timestamp value is malformed", func(t *testing.T) {
		row := validRow()
		row["usage_start"] = 1724493600

		_, err := n.Normalize(row)
		require.Error(t, err)
		assert.True(t, types.IsMalformedRecord(err))
	})

	t.Run("usage interval running backwards is malformed", func(t *testing.T) {
		row := validRow()
		row["usage_start"] = time.Date(2025, 8, 24, 12, 0, 0, 0, time.UTC)

		_, err := n.Normalize(row)
		require.Error(t, err)
		assert.True(t, types.IsMalformedRecord(err))
	})
}

func TestNormalizeLabelShapes(t *testing.T) {
	tests := map[string]struct {
		labels any
		expect map[string]string
	}{
		"repeated key value structs": {
			labels: []any{map[string]any{"key": "team", "value": "payments"}},
			expect: map[string]string{"team": "payments"},
		},
		"string map": {
			labels: map[string]string{"team": "payments"},
			expect: map[string]string{"team": "payments"},
		},
		"dynamic map": {
			labels: map[string]any{"team": "payments", "count": 3},
			expect: map[string]string{"team": "payments"},
		},
		"empty list": {
			labels: []any{},
			expect: nil,
		},
		"pair without key is skipped": {
			labels: []any{map[string]any{"value": "orphan"}},
			expect: nil,
		},
	}

	n := NewNormalizer()
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			row := validRow()
			row["labels"] = test.labels

			item, err := n.Normalize(row)
			require.NoError(t, err)
			assert.Equal(t, test.expect, item.Labels)
		})
	}
}
