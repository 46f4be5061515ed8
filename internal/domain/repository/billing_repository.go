package repository

import (
	"context"

	"github.com/gbatdev/gcp-billing-report-go/internal/domain/entity"
)

// RowIterator streams raw billing rows without requiring the result set to
// fit in memory. It follows the database/sql scanning shape:
//
//	for it.Next() {
//	    row := it.Row()
//	    ...
//	}
//	if err := it.Err(); err != nil {
//	    ...
//	}
type RowIterator interface {
	// Next advances to the next row. It returns false when the stream is
	// exhausted or failed; Err distinguishes the two.
	Next() bool

	// Row returns the row Next advanced to. Only valid after Next
	// returned true.
	Row() entity.RawRow

	// Err returns the first error hit while streaming, nil on clean
	// exhaustion.
	Err() error
}

// BillingRepository is the warehouse query port. Implementations own the
// query text, connections and credentials; the engine only consumes rows.
type BillingRepository interface {
	// FetchUsage streams the line items of one time window. Failures to
	// reach the warehouse surface either here or through the iterator's
	// Err, never as partial results.
	FetchUsage(ctx context.Context, table entity.BillingTable, window entity.TimeWindow) (RowIterator, error)
}
