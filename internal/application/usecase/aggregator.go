package usecase

import (
	"github.com/gbatdev/gcp-billing-report-go/internal/domain/entity"
	"github.com/gbatdev/gcp-billing-report-go/internal/shared/types"
)

// Aggregator folds line items into per-group cost buckets in a single
// streaming pass: one map lookup per item, memory proportional to the
// number of distinct groups rather than the number of rows.
type Aggregator struct {
	dims     entity.DimensionSet
	buckets  map[entity.GroupKey]*entity.CostBucket
	currency string
}

// NewAggregator creates an aggregator grouping by dims. Dims must come
// from entity.ParseDimensions; an empty set folds everything into one
// bucket, which is how window totals are computed.
func NewAggregator(dims entity.DimensionSet) *Aggregator {
	return &Aggregator{
		dims:    dims,
		buckets: make(map[entity.GroupKey]*entity.CostBucket),
	}
}

// Add folds one item into its group bucket. The first item carrying a
// currency pins the run currency; any different currency afterwards is a
// fatal *types.CurrencyMismatchError.
func (a *Aggregator) Add(item entity.LineItem) error {
	if item.Currency != "" {
		if a.currency == "" {
			a.currency = item.Currency
		} else if item.Currency != a.currency {
			return &types.CurrencyMismatchError{Want: a.currency, Got: item.Currency}
		}
	}

	key := a.dims.KeyFor(item)
	bucket, ok := a.buckets[key]
	if !ok {
		bucket = &entity.CostBucket{Key: key}
		a.buckets[key] = bucket
	}
	bucket.TotalCost = bucket.TotalCost.Add(item.Cost)
	bucket.ItemCount++
	return nil
}

// Table returns the aggregation outcome.
func (a *Aggregator) Table() entity.CostTable {
	return entity.CostTable{Buckets: a.buckets, Currency: a.currency}
}

// Aggregate runs a full pass over an already materialized item slice.
func Aggregate(items []entity.LineItem, dims entity.DimensionSet) (entity.CostTable, error) {
	agg := NewAggregator(dims)
	for _, item := range items {
		if err := agg.Add(item); err != nil {
			return entity.CostTable{}, err
		}
	}
	return agg.Table(), nil
}
