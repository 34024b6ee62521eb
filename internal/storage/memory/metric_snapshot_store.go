package memory

import (
	"context"
	"sort"
	"sync"

	"retail-inventory-lab/internal/domain"
	"retail-inventory-lab/internal/storage"
)

// MetricSnapshotStore is an in-memory implementation of storage.MetricSnapshotStore.
type MetricSnapshotStore struct {
	mu   sync.RWMutex
	data map[snapshotKey]*domain.MetricSnapshot
}

type snapshotKey struct {
	runID    string
	recordID string
}

// NewMetricSnapshotStore creates a new in-memory metric snapshot store.
func NewMetricSnapshotStore() *MetricSnapshotStore {
	return &MetricSnapshotStore{
		data: make(map[snapshotKey]*domain.MetricSnapshot),
	}
}

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate (run_id, record_id).
func (s *MetricSnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.MetricSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[snapshotKey]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.RunID == "" || snap.RecordID == "" {
			return storage.ErrInvalidInput
		}
		k := snapshotKey{snap.RunID, snap.RecordID}
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	for _, snap := range snapshots {
		copy := *snap
		s.data[snapshotKey{snap.RunID, snap.RecordID}] = &copy
	}

	return nil
}

// GetByRunID retrieves all snapshots for a run, ordered by record_id ASC.
func (s *MetricSnapshotStore) GetByRunID(_ context.Context, runID string) ([]*domain.MetricSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MetricSnapshot
	for k, snap := range s.data {
		if k.runID == runID {
			copy := *snap
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].RecordID < result[j].RecordID
	})

	return result, nil
}

var _ storage.MetricSnapshotStore = (*MetricSnapshotStore)(nil)
