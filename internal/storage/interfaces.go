package storage

import (
	"context"

	"retail-inventory-lab/internal/domain"
)

// InventoryStore provides access to retail_inventory storage.
type InventoryStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if record_id exists.
	Insert(ctx context.Context, r *domain.InventoryRecord) error

	// InsertBulk adds multiple records atomically. Fails entire batch on
	// any duplicate.
	InsertBulk(ctx context.Context, records []*domain.InventoryRecord) error

	// GetByID retrieves a record by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, recordID string) (*domain.InventoryRecord, error)

	// GetAll retrieves every record, ordered by (date, store_id, product_id).
	GetAll(ctx context.Context) ([]*domain.InventoryRecord, error)

	// GetAnalyzable retrieves records satisfying the ingest invariant
	// (inventory_level > 0 AND price > 0), ordered like GetAll. Only these
	// rows enter the analysis pipeline.
	GetAnalyzable(ctx context.Context) ([]*domain.InventoryRecord, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int, error)
}

// MetricSnapshotStore provides access to metric_snapshots storage: the
// flattened derived metrics persisted per analysis run.
type MetricSnapshotStore interface {
	// InsertBulk adds multiple snapshots. Fails entire batch on duplicate
	// (run_id, record_id).
	InsertBulk(ctx context.Context, snapshots []*domain.MetricSnapshot) error

	// GetByRunID retrieves all snapshots for a run, ordered by record_id ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.MetricSnapshot, error)
}
