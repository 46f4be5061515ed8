package entity

import "github.com/shopspring/decimal"

// Statuses assigned to each compared group.
const (
	StatusWarning = "WARNING"
	StatusNominal = "NOMINAL"
)

// StatusPolicy decides when a group's movement warrants attention. A group
// warns when its current cost reaches WarningMultiplier times its prior
// cost and also clears the MinimumCost floor, so noise from tiny amounts
// never pages anyone.
type StatusPolicy struct {
	WarningMultiplier decimal.Decimal
	MinimumCost       decimal.Decimal
}

// DefaultStatusPolicy warns on a doubling above a 10-unit floor.
func DefaultStatusPolicy() StatusPolicy {
	return StatusPolicy{
		WarningMultiplier: decimal.NewFromInt(2),
		MinimumCost:       decimal.NewFromInt(10),
	}
}

// Classify returns the status for a current/prior cost pair. Groups with
// no prior cost warn as soon as they clear the floor.
func (p StatusPolicy) Classify(current, prior decimal.Decimal) string {
	if current.IsZero() {
		return StatusNominal
	}
	limit := prior.Mul(p.WarningMultiplier)
	if current.GreaterThanOrEqual(limit) && current.GreaterThanOrEqual(p.MinimumCost) {
		return StatusWarning
	}
	return StatusNominal
}

// PercentChange is delta relative to prior cost. A group with no prior
// cost has unbounded growth, represented by a distinguished "new" value
// instead of a number.
type PercentChange struct {
	value decimal.Decimal
	isNew bool
}

// PercentChangeNew returns the sentinel for groups absent from the prior
// window.
func PercentChangeNew() PercentChange {
	return PercentChange{isNew: true}
}

// PercentChangeOf computes 100 * delta / prior. Prior must be non-zero;
// zero-prior groups take PercentChangeNew instead.
func PercentChangeOf(delta, prior decimal.Decimal) PercentChange {
	return PercentChange{value: delta.Div(prior).Mul(decimal.NewFromInt(100))}
}

// IsNew reports whether the change is the unbounded-growth value.
func (p PercentChange) IsNew() bool {
	return p.isNew
}

// Value returns the finite percentage, zero for the "new" value.
func (p PercentChange) Value() decimal.Decimal {
	return p.value
}

// String renders "+25.00%", "-100.00%" or "new".
func (p PercentChange) String() string {
	if p.isNew {
		return "new"
	}
	s := p.value.StringFixed(2)
	if p.value.IsPositive() {
		s = "+" + s
	}
	return s + "%"
}

// MarshalJSON emits the finite percentage as a number and the sentinel as
// the string "new".
func (p PercentChange) MarshalJSON() ([]byte, error) {
	if p.isNew {
		return []byte(`"new"`), nil
	}
	return []byte(p.value.String()), nil
}

// CostItem names one contributor inside a group, used for the service
// drill-down attached to warning rows.
type CostItem struct {
	Name string          `json:"name"`
	Cost decimal.Decimal `json:"cost"`
}

// ComparisonRow is one group's current-versus-prior result. A group absent
// from a window counts as zero in that window.
type ComparisonRow struct {
	Key           GroupKey        `json:"-"`
	Dimensions    []string        `json:"dimensions"`
	CurrentCost   decimal.Decimal `json:"current_cost"`
	PriorCost     decimal.Decimal `json:"prior_cost"`
	Delta         decimal.Decimal `json:"delta"`
	PercentChange PercentChange   `json:"percent_change"`
	Status        string          `json:"status"`
	TopItems      []CostItem      `json:"top_items,omitempty"`
}

// CostComparison relates two aggregated windows. Rows cover every group
// either window saw, ordered by descending absolute delta with ties broken
// by descending current cost, then by group key.
type CostComparison struct {
	CurrentWindow TimeWindow      `json:"current_window"`
	PriorWindow   TimeWindow      `json:"prior_window"`
	Currency      string          `json:"currency"`
	CurrentTotal  decimal.Decimal `json:"current_total"`
	PriorTotal    decimal.Decimal `json:"prior_total"`
	Rows          []ComparisonRow `json:"rows"`
}
