package bigquery

import (
	"fmt"
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbatdev/gcp-billing-report-go/internal/domain/entity"
)

func TestRawValueScalars(t *testing.T) {
	ts := time.Date(2025, 8, 24, 12, 0, 0, 0, time.UTC)
	rat := big.NewRat(1, 8)

	tests := map[string]struct {
		value bigquery.Value
		want  any
	}{
		"string":  {value: "prod-api", want: "prod-api"},
		"float":   {value: 12.5, want: 12.5},
		"int":     {value: int64(3), want: int64(3)},
		"bool":    {value: true, want: true},
		"time":    {value: ts, want: ts},
		"numeric": {value: rat, want: rat},
		"nil":     {value: nil, want: nil},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, rawValue(tt.value))
		})
	}
}

func TestRawValueRepeatedRecords(t *testing.T) {
	// The labels column arrives as a repeated record of key/value pairs.
	labels := []bigquery.Value{
		map[string]bigquery.Value{"key": "team", "value": "platform"},
		map[string]bigquery.Value{"key": "env", "value": "prod"},
	}

	got := rawValue(labels)
	list, ok := got.([]any)
	require.True(t, ok, "expected []any, got %T", got)
	require.Len(t, list, 2)

	first, ok := list[0].(map[string]any)
	require.True(t, ok, "expected map[string]any, got %T", list[0])
	assert.Equal(t, "team", first["key"])
	assert.Equal(t, "platform", first["value"])

	second, ok := list[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "env", second["key"])
	assert.Equal(t, "prod", second["value"])
}

func TestRawValueNestedContainers(t *testing.T) {
	nested := map[string]bigquery.Value{
		"id": "prod-api",
		"tags": []bigquery.Value{
			[]bigquery.Value{"a", "b"},
		},
	}

	got, ok := rawValue(nested).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "prod-api", got["id"])

	tags, ok := got["tags"].([]any)
	require.True(t, ok)
	require.Len(t, tags, 1)
	assert.Equal(t, []any{"a", "b"}, tags[0])
}

func TestUsageQueryShape(t *testing.T) {
	table := entity.BillingTable{ProjectID: "billing-admin", Dataset: "billing_export", Table: "gcp_billing_export_v1"}
	query := fmt.Sprintf(usageQuery, fmt.Sprintf("`%s.%s.%s`", table.ProjectID, table.Dataset, table.Table))

	assert.Contains(t, query, "FROM `billing-admin.billing_export.gcp_billing_export_v1`")
	assert.Contains(t, query, "usage_start_time >= @window_start")
	assert.Contains(t, query, "usage_start_time < @window_end")
	for _, column := range []string{"project_id", "service_name", "sku_description", "usage_start", "usage_end", "cost", "currency", "labels"} {
		assert.Contains(t, query, column)
	}
}
