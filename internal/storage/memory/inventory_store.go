package memory

import (
	"context"
	"sort"
	"sync"

	"retail-inventory-lab/internal/domain"
	"retail-inventory-lab/internal/storage"
)

// InventoryStore is an in-memory implementation of storage.InventoryStore.
type InventoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.InventoryRecord // keyed by record_id
}

// NewInventoryStore creates a new in-memory inventory store.
func NewInventoryStore() *InventoryStore {
	return &InventoryStore{
		data: make(map[string]*domain.InventoryRecord),
	}
}

// Insert adds a new record. Returns ErrDuplicateKey if record_id exists.
func (s *InventoryStore) Insert(_ context.Context, r *domain.InventoryRecord) error {
	if r == nil || r.RecordID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RecordID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *r
	s.data[r.RecordID] = &copy
	return nil
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *InventoryStore) InsertBulk(_ context.Context, records []*domain.InventoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(records))

	// First pass: check for duplicates (existing + intra-batch)
	for _, r := range records {
		if r == nil || r.RecordID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[r.RecordID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[r.RecordID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[r.RecordID] = struct{}{}
	}

	// Second pass: insert all
	for _, r := range records {
		copy := *r
		s.data[r.RecordID] = &copy
	}

	return nil
}

// GetByID retrieves a record by its ID. Returns ErrNotFound if not exists.
func (s *InventoryStore) GetByID(_ context.Context, recordID string) (*domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[recordID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *r
	return &copy, nil
}

// GetAll retrieves every record, ordered by (date, store_id, product_id).
func (s *InventoryStore) GetAll(_ context.Context) ([]*domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.InventoryRecord, 0, len(s.data))
	for _, r := range s.data {
		copy := *r
		result = append(result, &copy)
	}

	sortRecords(result)
	return result, nil
}

// GetAnalyzable retrieves records satisfying the ingest invariant.
func (s *InventoryStore) GetAnalyzable(_ context.Context) ([]*domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.InventoryRecord
	for _, r := range s.data {
		if !r.Analyzable() {
			continue
		}
		copy := *r
		result = append(result, &copy)
	}

	sortRecords(result)
	return result, nil
}

// Count returns the total number of stored records.
func (s *InventoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}

func sortRecords(records []*domain.InventoryRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		if records[i].StoreID != records[j].StoreID {
			return records[i].StoreID < records[j].StoreID
		}
		return records[i].ProductID < records[j].ProductID
	})
}

var _ storage.InventoryStore = (*InventoryStore)(nil)
