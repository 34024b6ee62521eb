package clickhouse

import (
	"context"
	"fmt"
	"time"

	"retail-inventory-lab/internal/domain"
	"retail-inventory-lab/internal/storage"
)

// MetricSnapshotStore implements storage.MetricSnapshotStore using ClickHouse.
type MetricSnapshotStore struct {
	conn *Conn
}

// NewMetricSnapshotStore creates a new MetricSnapshotStore.
func NewMetricSnapshotStore(conn *Conn) *MetricSnapshotStore {
	return &MetricSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MetricSnapshotStore = (*MetricSnapshotStore)(nil)

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate
// (run_id, record_id). MergeTree does not enforce uniqueness, so the
// store checks explicitly before inserting.
func (s *MetricSnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.MetricSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		runID    string
		recordID string
	}
	seen := make(map[key]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.RunID == "" || snap.RecordID == "" {
			return storage.ErrInvalidInput
		}
		k := key{snap.RunID, snap.RecordID}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, snap := range snapshots {
		exists, err := s.exists(ctx, snap.RunID, snap.RecordID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO metric_snapshots (
			run_id, record_id, computed_at,
			gross_revenue, net_revenue, overstock_units,
			turnover_ratio, profit_margin, inventory_days,
			profit_per_unit, efficiency, stock_class,
			slow_moving, overstocked, dead_stock
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(
			snap.RunID, snap.RecordID, snap.ComputedAt,
			snap.GrossRevenue, snap.NetRevenue, snap.OverstockUnits,
			snap.TurnoverRatio, snap.ProfitMargin, snap.InventoryDays,
			snap.ProfitPerUnit, snap.Efficiency, snap.StockClass,
			boolToUint8(snap.SlowMoving), boolToUint8(snap.Overstocked), boolToUint8(snap.DeadStock),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves all snapshots for a run, ordered by record_id ASC.
func (s *MetricSnapshotStore) GetByRunID(ctx context.Context, runID string) ([]*domain.MetricSnapshot, error) {
	query := `
		SELECT
			run_id, record_id, computed_at,
			gross_revenue, net_revenue, overstock_units,
			turnover_ratio, profit_margin, inventory_days,
			profit_per_unit, efficiency, stock_class,
			slow_moving, overstocked, dead_stock
		FROM metric_snapshots
		WHERE run_id = ?
		ORDER BY record_id ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run id: %w", err)
	}
	defer rows.Close()

	return scanMetricSnapshots(rows)
}

// exists checks if a snapshot with the given key exists.
func (s *MetricSnapshotStore) exists(ctx context.Context, runID, recordID string) (bool, error) {
	query := `
		SELECT count(*) FROM metric_snapshots
		WHERE run_id = ? AND record_id = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, runID, recordID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanMetricSnapshots scans multiple rows into a slice.
func scanMetricSnapshots(rows chRows) ([]*domain.MetricSnapshot, error) {
	var snapshots []*domain.MetricSnapshot

	for rows.Next() {
		var snap domain.MetricSnapshot
		var computedAt time.Time
		var slowMoving, overstocked, deadStock uint8

		err := rows.Scan(
			&snap.RunID, &snap.RecordID, &computedAt,
			&snap.GrossRevenue, &snap.NetRevenue, &snap.OverstockUnits,
			&snap.TurnoverRatio, &snap.ProfitMargin, &snap.InventoryDays,
			&snap.ProfitPerUnit, &snap.Efficiency, &snap.StockClass,
			&slowMoving, &overstocked, &deadStock,
		)
		if err != nil {
			return nil, fmt.Errorf("scan metric snapshot row: %w", err)
		}

		snap.ComputedAt = computedAt
		snap.SlowMoving = slowMoving != 0
		snap.Overstocked = overstocked != 0
		snap.DeadStock = deadStock != 0

		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metric snapshot rows: %w", err)
	}

	return snapshots, nil
}
