package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"retail-inventory-lab/internal/domain"
	"retail-inventory-lab/internal/storage"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestInventoryStore_InsertAndGet(t *testing.T) {
	store := NewInventoryStore()
	ctx := context.Background()

	rec := &domain.InventoryRecord{
		RecordID:       "rec1",
		Date:           day(1),
		StoreID:        "S001",
		ProductID:      "P0001",
		Category:       "Groceries",
		Region:         "North",
		InventoryLevel: 120,
		UnitsSold:      30,
		Price:          9.99,
	}

	err := store.Insert(ctx, rec)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "rec1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if got.InventoryLevel != 120 {
		t.Errorf("InventoryLevel mismatch: got %d, want %d", got.InventoryLevel, 120)
	}
}

func TestInventoryStore_DuplicateKey(t *testing.T) {
	store := NewInventoryStore()
	ctx := context.Background()

	rec := &domain.InventoryRecord{
		RecordID:  "rec1",
		Date:      day(1),
		StoreID:   "S001",
		ProductID: "P0001",
	}

	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, rec)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestInventoryStore_NotFound(t *testing.T) {
	store := NewInventoryStore()
	ctx := context.Background()

	_, err := store.GetByID(ctx, "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestInventoryStore_InsertBulkPartialDuplicate(t *testing.T) {
	store := NewInventoryStore()
	ctx := context.Background()

	// Insert first
	first := &domain.InventoryRecord{RecordID: "r1", Date: day(1), StoreID: "S001", ProductID: "P0001"}
	if err := store.Insert(ctx, first); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	// Bulk with duplicate
	records := []*domain.InventoryRecord{
		{RecordID: "r2", Date: day(1), StoreID: "S001", ProductID: "P0002"},
		{RecordID: "r1", Date: day(1), StoreID: "S001", ProductID: "P0001"}, // duplicate
	}

	err := store.InsertBulk(ctx, records)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Verify all-or-nothing
	n, _ := store.Count(ctx)
	if n != 1 {
		t.Errorf("Expected 1 record (no partial insert), got %d", n)
	}
}

func TestInventoryStore_GetAllOrdering(t *testing.T) {
	store := NewInventoryStore()
	ctx := context.Background()

	records := []*domain.InventoryRecord{
		{RecordID: "r3", Date: day(2), StoreID: "S001", ProductID: "P0001"},
		{RecordID: "r1", Date: day(1), StoreID: "S002", ProductID: "P0001"},
		{RecordID: "r2", Date: day(1), StoreID: "S001", ProductID: "P0005"},
	}

	if err := store.InsertBulk(ctx, records); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}

	want := []string{"r2", "r1", "r3"}
	for i, id := range want {
		if all[i].RecordID != id {
			t.Errorf("Position %d: got %s, want %s", i, all[i].RecordID, id)
		}
	}
}

func TestInventoryStore_GetAnalyzableFiltersInvalidRows(t *testing.T) {
	store := NewInventoryStore()
	ctx := context.Background()

	records := []*domain.InventoryRecord{
		{RecordID: "ok", Date: day(1), StoreID: "S001", ProductID: "P0001", InventoryLevel: 10, Price: 5},
		{RecordID: "zero_inv", Date: day(1), StoreID: "S001", ProductID: "P0002", InventoryLevel: 0, Price: 5},
		{RecordID: "zero_price", Date: day(1), StoreID: "S001", ProductID: "P0003", InventoryLevel: 10, Price: 0},
	}

	if err := store.InsertBulk(ctx, records); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	analyzable, err := store.GetAnalyzable(ctx)
	if err != nil {
		t.Fatalf("GetAnalyzable failed: %v", err)
	}

	if len(analyzable) != 1 {
		t.Fatalf("Expected 1 analyzable record, got %d", len(analyzable))
	}
	if analyzable[0].RecordID != "ok" {
		t.Errorf("Expected record 'ok', got %s", analyzable[0].RecordID)
	}

	// Count still sees everything.
	n, _ := store.Count(ctx)
	if n != 3 {
		t.Errorf("Expected Count 3, got %d", n)
	}
}

func TestInventoryStore_CopySemantics(t *testing.T) {
	store := NewInventoryStore()
	ctx := context.Background()

	rec := &domain.InventoryRecord{RecordID: "r1", Date: day(1), StoreID: "S001", ProductID: "P0001", InventoryLevel: 50}
	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Mutating the caller's copy must not affect stored state.
	rec.InventoryLevel = 999

	got, _ := store.GetByID(ctx, "r1")
	if got.InventoryLevel != 50 {
		t.Errorf("Store leaked caller mutation: got %d, want 50", got.InventoryLevel)
	}

	// Mutating a read result must not affect stored state either.
	got.InventoryLevel = 777
	again, _ := store.GetByID(ctx, "r1")
	if again.InventoryLevel != 50 {
		t.Errorf("Store leaked read mutation: got %d, want 50", again.InventoryLevel)
	}
}

func TestInventoryStore_InvalidInput(t *testing.T) {
	store := NewInventoryStore()
	ctx := context.Background()

	err := store.Insert(ctx, nil)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}

	err = store.Insert(ctx, &domain.InventoryRecord{RecordID: ""})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty ID, got %v", err)
	}
}
