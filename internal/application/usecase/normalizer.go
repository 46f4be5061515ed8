package usecase

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gbatdev/gcp-billing-report-go/internal/domain/entity"
	"github.com/gbatdev/gcp-billing-report-go/internal/shared/types"
)

// Normalizer maps raw warehouse rows into validated line items. The
// warehouse client hands back dynamic values, so every coercion happens
// here and everything downstream works on one closed shape.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize builds a LineItem from one raw row. It returns a
// *types.MalformedRecordError when a required field is absent or unusable;
// callers count and skip such rows instead of aborting.
func (n *Normalizer) Normalize(row entity.RawRow) (entity.LineItem, error) {
	var item entity.LineItem

	projectID, err := stringField(row, entity.ColumnProjectID, true)
	if err != nil {
		return item, err
	}
	serviceName, err := stringField(row, entity.ColumnServiceName, true)
	if err != nil {
		return item, err
	}
	sku, err := stringField(row, entity.ColumnSKUDescription, false)
	if err != nil {
		return item, err
	}
	currency, err := stringField(row, entity.ColumnCurrency, false)
	if err != nil {
		return item, err
	}

	cost, err := costField(row)
	if err != nil {
		return item, err
	}

	usageStart, err := timeField(row, entity.ColumnUsageStart)
	if err != nil {
		return item, err
	}
	usageEnd, err := timeField(row, entity.ColumnUsageEnd)
	if err != nil {
		return item, err
	}
	if usageStart.After(usageEnd) {
		return item, &types.MalformedRecordError{Field: entity.ColumnUsageStart, Reason: "is after usage_end"}
	}

	return entity.LineItem{
		ProjectID:      projectID,
		ServiceName:    serviceName,
		SKUDescription: sku,
		UsageStart:     usageStart,
		UsageEnd:       usageEnd,
		Cost:           cost,
		Currency:       currency,
		Labels:         labelsField(row),
	}, nil
}

func stringField(row entity.RawRow, name string, required bool) (string, error) {
	v, ok := row[name]
	if !ok || v == nil {
		if required {
			return "", &types.MalformedRecordError{Field: name, Reason: "is missing"}
		}
		return "", nil
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		if required {
			return "", &types.MalformedRecordError{Field: name, Reason: fmt.Sprintf("has unsupported type %T", v)}
		}
		return fmt.Sprint(v), nil
	}
}

func costField(row entity.RawRow) (decimal.Decimal, error) {
	v, ok := row[entity.ColumnCost]
	if !ok || v == nil {
		return decimal.Zero, &types.MalformedRecordError{Field: entity.ColumnCost, Reason: "is missing"}
	}
	switch c := v.(type) {
	case decimal.Decimal:
		return c, nil
	case float64:
		return decimal.NewFromFloat(c), nil
	case float32:
		return decimal.NewFromFloat32(c), nil
	case int:
		return decimal.NewFromInt(int64(c)), nil
	case int64:
		return decimal.NewFromInt(c), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(c))
		if err != nil {
			return decimal.Zero, &types.MalformedRecordError{Field: entity.ColumnCost, Reason: fmt.Sprintf("%q is not numeric", c)}
		}
		return d, nil
	case *big.Rat:
		// NUMERIC columns arrive as rationals; billing amounts never
		// exceed nine fractional digits.
		d, err := decimal.NewFromString(c.FloatString(9))
		if err != nil {
			return decimal.Zero, &types.MalformedRecordError{Field: entity.ColumnCost, Reason: "is an unreadable numeric"}
		}
		return d, nil
	default:
		return decimal.Zero, &types.MalformedRecordError{Field: entity.ColumnCost, Reason: fmt.Sprintf("has non-numeric type %T", v)}
	}
}

func timeField(row entity.RawRow, name string) (time.Time, error) {
	v, ok := row[name]
	if !ok || v == nil {
		return time.Time{}, &types.MalformedRecordError{Field: name, Reason: "is missing"}
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, &types.MalformedRecordError{Field: name, Reason: fmt.Sprintf("%q is not a timestamp", t)}
		}
		return parsed, nil
	default:
		return time.Time{}, &types.MalformedRecordError{Field: name, Reason: fmt.Sprintf("has non-timestamp type %T", v)}
	}
}

// labelsField flattens resource labels. The export stores them as a
// repeated key/value struct; maps are accepted too so other sources can
// feed the engine.
func labelsField(row entity.RawRow) map[string]string {
	v, ok := row[entity.ColumnLabels]
	if !ok || v == nil {
		return nil
	}
	labels := map[string]string{}
	switch lv := v.(type) {
	case map[string]string:
		for k, val := range lv {
			labels[k] = val
		}
	case map[string]any:
		for k, val := range lv {
			if s, ok := val.(string); ok {
				labels[k] = s
			}
		}
	case []any:
		for _, elem := range lv {
			pair, ok := elem.(map[string]any)
			if !ok {
				continue
			}
			key, _ := pair["key"].(string)
			value, _ := pair["value"].(string)
			if key != "" {
				labels[key] = value
			}
		}
	}
	if len(labels) == 0 {
		return nil
	}
	return labels
}
