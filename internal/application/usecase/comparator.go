package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/gbatdev/gcp-billing-report-go/internal/domain/entity"
	"github.com/gbatdev/gcp-billing-report-go/internal/shared/types"
)

// Comparator relates the aggregations of two windows group by group.
type Comparator struct {
	dims   entity.DimensionSet
	policy entity.StatusPolicy
}

// NewComparator creates a comparator for dims using policy to classify
// each group's movement.
func NewComparator(dims entity.DimensionSet, policy entity.StatusPolicy) *Comparator {
	return &Comparator{dims: dims, policy: policy}
}

// Compare aggregates both item sets independently and relates the results.
func (c *Comparator) Compare(current, prior []entity.LineItem) (entity.CostComparison, error) {
	currentTable, err := Aggregate(current, c.dims)
	if err != nil {
		return entity.CostComparison{}, err
	}
	priorTable, err := Aggregate(prior, c.dims)
	if err != nil {
		return entity.CostComparison{}, err
	}
	return c.CompareTables(currentTable, priorTable)
}

// CompareTables produces one row per group whose cost moved between the
// windows. A group missing from a window counts as zero there; a group
// costing the same in both windows (delta zero) carries no signal and is
// dropped, though its cost still counts toward the window totals. Rows
// come out ordered by descending absolute delta, ties by descending
// current cost, then by key.
func (c *Comparator) CompareTables(current, prior entity.CostTable) (entity.CostComparison, error) {
	currency := current.Currency
	switch {
	case currency == "":
		currency = prior.Currency
	case prior.Currency != "" && prior.Currency != currency:
		return entity.CostComparison{}, &types.CurrencyMismatchError{Want: currency, Got: prior.Currency}
	}

	keys := make(map[entity.GroupKey]struct{}, len(current.Buckets)+len(prior.Buckets))
	for k := range current.Buckets {
		keys[k] = struct{}{}
	}
	for k := range prior.Buckets {
		keys[k] = struct{}{}
	}

	rows := make([]entity.ComparisonRow, 0, len(keys))
	for key := range keys {
		var currentCost, priorCost decimal.Decimal
		if b := current.Buckets[key]; b != nil {
			currentCost = b.TotalCost
		}
		if b := prior.Buckets[key]; b != nil {
			priorCost = b.TotalCost
		}
		delta := currentCost.Sub(priorCost)
		if delta.IsZero() {
			continue
		}

		var pct entity.PercentChange
		if priorCost.IsZero() {
			pct = entity.PercentChangeNew()
		} else {
			pct = entity.PercentChangeOf(delta, priorCost)
		}

		rows = append(rows, entity.ComparisonRow{
			Key:           key,
			Dimensions:    key.Values(),
			CurrentCost:   currentCost,
			PriorCost:     priorCost,
			Delta:         delta,
			PercentChange: pct,
			Status:        c.policy.Classify(currentCost, priorCost),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		di, dj := rows[i].Delta.Abs(), rows[j].Delta.Abs()
		if !di.Equal(dj) {
			return di.GreaterThan(dj)
		}
		if !rows[i].CurrentCost.Equal(rows[j].CurrentCost) {
			return rows[i].CurrentCost.GreaterThan(rows[j].CurrentCost)
		}
		return rows[i].Key < rows[j].Key
	})

	return entity.CostComparison{
		Currency:     currency,
		CurrentTotal: current.Total(),
		PriorTotal:   prior.Total(),
		Rows:         rows,
	}, nil
}
