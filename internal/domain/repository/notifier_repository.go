package repository

import (
	"context"

	"github.com/gbatdev/gcp-billing-report-go/internal/domain/entity"
)

// NotifierRepository delivers a finished report to a messaging channel.
// Delivery failure is returned to the caller, not retried.
type NotifierRepository interface {
	SendReport(ctx context.Context, channel string, report entity.Report) error
}
