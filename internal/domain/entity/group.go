package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Dimension is a line item field costs can be grouped by.
type Dimension string

// Built-in grouping dimensions. Resource labels are addressed as
// "label:<key>", e.g. "label:team".
const (
	DimensionProject Dimension = "project_id"
	DimensionService Dimension = "service_name"
	DimensionSKU     Dimension = "sku_description"

	labelDimensionPrefix = "label:"
)

// LabelKey returns the label key for a label dimension, or "" for the
// built-in dimensions.
func (d Dimension) LabelKey() string {
	if strings.HasPrefix(string(d), labelDimensionPrefix) {
		return strings.TrimPrefix(string(d), labelDimensionPrefix)
	}
	return ""
}

// valueFrom extracts this dimension's value from a line item. Missing or
// empty values map to "", never to omission, so every item lands in
// exactly one group.
func (d Dimension) valueFrom(item LineItem) string {
	switch d {
	case DimensionProject:
		return item.ProjectID
	case DimensionService:
		return item.ServiceName
	case DimensionSKU:
		return item.SKUDescription
	default:
		return item.Label(d.LabelKey())
	}
}

// DimensionSet is an ordered list of grouping dimensions.
type DimensionSet struct {
	dims []Dimension
}

// ParseDimensions validates grouping field names before any row is
// processed. Unknown names are rejected outright rather than silently
// producing empty groups.
func ParseDimensions(names []string) (DimensionSet, error) {
	dims := make([]Dimension, 0, len(names))
	for _, name := range names {
		d := Dimension(strings.TrimSpace(name))
		switch {
		case d == DimensionProject, d == DimensionService, d == DimensionSKU:
		case strings.HasPrefix(string(d), labelDimensionPrefix) && d.LabelKey() != "":
		default:
			return DimensionSet{}, fmt.Errorf("unknown dimension %q (valid: project_id, service_name, sku_description, label:<key>)", name)
		}
		dims = append(dims, d)
	}
	return DimensionSet{dims: dims}, nil
}

// Append returns a copy of the set with extra dimensions added, skipping
// any it already contains.
func (s DimensionSet) Append(extra ...Dimension) DimensionSet {
	dims := make([]Dimension, len(s.dims), len(s.dims)+len(extra))
	copy(dims, s.dims)
	for _, d := range extra {
		if !s.Contains(d) {
			dims = append(dims, d)
		}
	}
	return DimensionSet{dims: dims}
}

// Contains reports whether d is part of the set.
func (s DimensionSet) Contains(d Dimension) bool {
	for _, have := range s.dims {
		if have == d {
			return true
		}
	}
	return false
}

// Names returns the dimension names in order.
func (s DimensionSet) Names() []string {
	names := make([]string, len(s.dims))
	for i, d := range s.dims {
		names[i] = string(d)
	}
	return names
}

// Len returns the number of dimensions in the set.
func (s DimensionSet) Len() int {
	return len(s.dims)
}

// KeyFor derives the group key for a line item. The mapping is total:
// every item maps to exactly one key regardless of missing fields.
func (s DimensionSet) KeyFor(item LineItem) GroupKey {
	values := make([]string, len(s.dims))
	for i, d := range s.dims {
		values[i] = d.valueFrom(item)
	}
	return NewGroupKey(values)
}

// groupKeySeparator joins dimension values unambiguously; billing export
// values never contain the ASCII unit separator.
const groupKeySeparator = "\x1f"

// GroupKey is the ordered tuple of dimension values identifying one
// aggregation group, joined so it can serve as a map key. Comparing keys
// as strings matches element-wise tuple comparison.
type GroupKey string

// NewGroupKey builds a key from an ordered value tuple.
func NewGroupKey(values []string) GroupKey {
	return GroupKey(strings.Join(values, groupKeySeparator))
}

// Values recovers the dimension value tuple.
func (k GroupKey) Values() []string {
	return strings.Split(string(k), groupKeySeparator)
}

// String renders the key for display, values joined by " / ".
func (k GroupKey) String() string {
	return strings.Join(k.Values(), " / ")
}

// CostBucket accumulates the cost of one group during an aggregation pass.
type CostBucket struct {
	Key       GroupKey        `json:"key"`
	TotalCost decimal.Decimal `json:"total_cost"`
	ItemCount int             `json:"item_count"`
}

// CostTable is the outcome of one aggregation pass: one bucket per group
// and the single currency every summed item carried. It is a snapshot and
// is not mutated after the pass completes.
type CostTable struct {
	Buckets  map[GroupKey]*CostBucket
	Currency string
}

// Bucket returns the bucket for key, or nil when the group never appeared.
func (t CostTable) Bucket(key GroupKey) *CostBucket {
	return t.Buckets[key]
}

// Len returns the number of distinct groups.
func (t CostTable) Len() int {
	return len(t.Buckets)
}

// Total sums every bucket. Cost is additive, so regrouping never changes
// this value.
func (t CostTable) Total() decimal.Decimal {
	total := decimal.Zero
	for _, b := range t.Buckets {
		total = total.Add(b.TotalCost)
	}
	return total
}
