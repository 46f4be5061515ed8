package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRow is one warehouse row as returned by the billing export query,
// keyed by column name. Values carry whatever dynamic types the warehouse
// client produced; the normalizer turns them into a LineItem.
type RawRow map[string]any

// Column names produced by the billing export query.
const (
	ColumnProjectID      = "project_id"
	ColumnServiceName    = "service_name"
	ColumnSKUDescription = "sku_description"
	ColumnUsageStart     = "usage_start"
	ColumnUsageEnd       = "usage_end"
	ColumnCost           = "cost"
	ColumnCurrency       = "currency"
	ColumnLabels         = "labels"
)

// LineItem is one billed usage record: a cost incurred by a resource over
// a usage interval.
type LineItem struct {
	ProjectID      string            `json:"project_id"`
	ServiceName    string            `json:"service_name"`
	SKUDescription string            `json:"sku_description,omitempty"`
	UsageStart     time.Time         `json:"usage_start"`
	UsageEnd       time.Time         `json:"usage_end"`
	Cost           decimal.Decimal   `json:"cost"`
	Currency       string            `json:"currency,omitempty"`
	Labels         map[string]string `json:"labels,omitempty"`
}

// Label returns the value for key, or "" when the item carries no such label.
func (li LineItem) Label(key string) string {
	if li.Labels == nil {
		return ""
	}
	return li.Labels[key]
}

// BillingTable identifies the warehouse table holding the billing export.
type BillingTable struct {
	ProjectID string
	Dataset   string
	Table     string
}

// String returns the fully qualified table name.
func (t BillingTable) String() string {
	return t.ProjectID + "." + t.Dataset + "." + t.Table
}
