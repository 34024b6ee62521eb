package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"retail-inventory-lab/internal/domain"
	"retail-inventory-lab/internal/storage"
)

// InventoryStore implements storage.InventoryStore using PostgreSQL.
type InventoryStore struct {
	pool *Pool
}

// NewInventoryStore creates a new InventoryStore.
func NewInventoryStore(pool *Pool) *InventoryStore {
	return &InventoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.InventoryStore = (*InventoryStore)(nil)

const inventoryColumns = `
	record_id, date, store_id, product_id, category, region, seasonality,
	inventory_level, units_sold, units_ordered, price, discount,
	demand_forecast, competitor_pricing, weather_condition, holiday_promotion
`

const insertInventoryQuery = `
	INSERT INTO retail_inventory (
		record_id, date, store_id, product_id, category, region, seasonality,
		inventory_level, units_sold, units_ordered, price, discount,
		demand_forecast, competitor_pricing, weather_condition, holiday_promotion
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8, $9, $10, $11, $12,
		$13, $14, $15, $16
	)
`

// Insert adds a new record. Returns ErrDuplicateKey if record_id exists.
func (s *InventoryStore) Insert(ctx context.Context, r *domain.InventoryRecord) error {
	if r == nil || r.RecordID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertInventoryQuery,
		r.RecordID, r.Date, r.StoreID, r.ProductID, r.Category, r.Region, r.Seasonality,
		r.InventoryLevel, r.UnitsSold, r.UnitsOrdered, r.Price, r.Discount,
		r.DemandForecast, r.CompetitorPricing, r.WeatherCondition, r.HolidayPromotion,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert inventory record: %w", err)
	}
	return nil
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *InventoryStore) InsertBulk(ctx context.Context, records []*domain.InventoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		if r == nil || r.RecordID == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, insertInventoryQuery,
			r.RecordID, r.Date, r.StoreID, r.ProductID, r.Category, r.Region, r.Seasonality,
			r.InventoryLevel, r.UnitsSold, r.UnitsOrdered, r.Price, r.Discount,
			r.DemandForecast, r.CompetitorPricing, r.WeatherCondition, r.HolidayPromotion,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert inventory record in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves a record by its ID. Returns ErrNotFound if not exists.
func (s *InventoryStore) GetByID(ctx context.Context, recordID string) (*domain.InventoryRecord, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM retail_inventory
		WHERE record_id = $1
	`

	row := s.pool.QueryRow(ctx, query, recordID)
	r, err := scanInventoryRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get inventory record by id: %w", err)
	}
	return r, nil
}

// GetAll retrieves every record, ordered by (date, store_id, product_id).
func (s *InventoryStore) GetAll(ctx context.Context) ([]*domain.InventoryRecord, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM retail_inventory
		ORDER BY date ASC, store_id ASC, product_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all inventory records: %w", err)
	}
	defer rows.Close()

	return scanInventoryRecords(rows)
}

// GetAnalyzable retrieves records satisfying the ingest invariant
// (inventory_level > 0 AND price > 0), ordered like GetAll.
func (s *InventoryStore) GetAnalyzable(ctx context.Context) ([]*domain.InventoryRecord, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM retail_inventory
		WHERE inventory_level > 0 AND price > 0
		ORDER BY date ASC, store_id ASC, product_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get analyzable inventory records: %w", err)
	}
	defer rows.Close()

	return scanInventoryRecords(rows)
}

// Count returns the total number of stored records.
func (s *InventoryStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM retail_inventory`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count inventory records: %w", err)
	}
	return count, nil
}

// scanInventoryRecord scans a single row into an InventoryRecord.
func scanInventoryRecord(row pgx.Row) (*domain.InventoryRecord, error) {
	var r domain.InventoryRecord

	err := row.Scan(
		&r.RecordID, &r.Date, &r.StoreID, &r.ProductID, &r.Category, &r.Region, &r.Seasonality,
		&r.InventoryLevel, &r.UnitsSold, &r.UnitsOrdered, &r.Price, &r.Discount,
		&r.DemandForecast, &r.CompetitorPricing, &r.WeatherCondition, &r.HolidayPromotion,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// scanInventoryRecords scans multiple rows into a slice of InventoryRecord.
func scanInventoryRecords(rows pgx.Rows) ([]*domain.InventoryRecord, error) {
	var records []*domain.InventoryRecord

	for rows.Next() {
		var r domain.InventoryRecord

		err := rows.Scan(
			&r.RecordID, &r.Date, &r.StoreID, &r.ProductID, &r.Category, &r.Region, &r.Seasonality,
			&r.InventoryLevel, &r.UnitsSold, &r.UnitsOrdered, &r.Price, &r.Discount,
			&r.DemandForecast, &r.CompetitorPricing, &r.WeatherCondition, &r.HolidayPromotion,
		)
		if err != nil {
			return nil, fmt.Errorf("scan inventory record row: %w", err)
		}

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory record rows: %w", err)
	}

	return records, nil
}
