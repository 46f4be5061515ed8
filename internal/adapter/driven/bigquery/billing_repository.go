package bigquery

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/bigquery"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"

	"github.com/gbatdev/gcp-billing-report-go/internal/domain/entity"
	"github.com/gbatdev/gcp-billing-report-go/internal/domain/repository"
)

// usageQuery pulls one window of line items from the standard billing
// export schema. Labels keep their repeated key/value shape; the engine
// flattens them.
const usageQuery = `
SELECT
  project.id AS project_id,
  service.description AS service_name,
  sku.description AS sku_description,
  usage_start_time AS usage_start,
  usage_end_time AS usage_end,
  cost,
  currency,
  labels
FROM %s
WHERE usage_start_time >= @window_start
  AND usage_start_time < @window_end`

// BillingRepositoryImpl implements the BillingRepository port on top of
// the BigQuery billing export, with one cached client per project.
type BillingRepositoryImpl struct {
	clientCache map[string]*bigquery.Client
	cacheMutex  sync.Mutex
	logger      *logrus.Entry
}

// NewBillingRepository creates a new BigQuery-backed billing repository.
// Credentials come from the usual application default chain.
func NewBillingRepository(logger *logrus.Logger) repository.BillingRepository {
	return &BillingRepositoryImpl{
		clientCache: make(map[string]*bigquery.Client),
		logger:      logger.WithField("component", "bigquery"),
	}
}

// getClient returns a cached client for the project, creating it on first
// use.
func (r *BillingRepositoryImpl) getClient(ctx context.Context, projectID string) (*bigquery.Client, error) {
	r.cacheMutex.Lock()
	defer r.cacheMutex.Unlock()

	if client, ok := r.clientCache[projectID]; ok {
		return client, nil
	}

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client for project %s: %w", projectID, err)
	}

	r.clientCache[projectID] = client
	return client, nil
}

// FetchUsage runs the usage query for one window and hands back a
// streaming iterator over its rows.
func (r *BillingRepositoryImpl) FetchUsage(ctx context.Context, table entity.BillingTable, window entity.TimeWindow) (repository.RowIterator, error) {
	client, err := r.getClient(ctx, table.ProjectID)
	if err != nil {
		return nil, err
	}

	query := client.Query(fmt.Sprintf(usageQuery, fmt.Sprintf("`%s.%s.%s`", table.ProjectID, table.Dataset, table.Table)))
	query.Parameters = []bigquery.QueryParameter{
		{Name: "window_start", Value: window.Start},
		{Name: "window_end", Value: window.End},
	}

	r.logger.WithFields(logrus.Fields{
		"table":  table.String(),
		"window": window.Label(),
	}).Debug("running billing export query")

	it, err := query.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("billing export query on %s failed: %w", table.String(), err)
	}
	return &rowIterator{it: it}, nil
}

// rowIterator adapts the BigQuery result iterator to the RowIterator port.
type rowIterator struct {
	it  *bigquery.RowIterator
	row entity.RawRow
	err error
}

func (r *rowIterator) Next() bool {
	var values map[string]bigquery.Value
	err := r.it.Next(&values)
	if err == iterator.Done {
		return false
	}
	if err != nil {
		r.err = err
		return false
	}

	row := make(entity.RawRow, len(values))
	for name, value := range values {
		row[name] = rawValue(value)
	}
	r.row = row
	return true
}

func (r *rowIterator) Row() entity.RawRow {
	return r.row
}

func (r *rowIterator) Err() error {
	return r.err
}

// rawValue rebuilds nested BigQuery values with plain Go containers so the
// engine never depends on client-specific types.
func rawValue(v bigquery.Value) any {
	switch tv := v.(type) {
	case []bigquery.Value:
		out := make([]any, len(tv))
		for i, elem := range tv {
			out[i] = rawValue(elem)
		}
		return out
	case map[string]bigquery.Value:
		out := make(map[string]any, len(tv))
		for k, elem := range tv {
			out[k] = rawValue(elem)
		}
		return out
	default:
		return v
	}
}
