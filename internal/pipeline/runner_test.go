package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"retail-inventory-lab/internal/domain"
	"retail-inventory-lab/internal/storage/memory"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func fixedClock() func() time.Time {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func setupRunner(t *testing.T) (*Runner, *memory.MetricSnapshotStore, string) {
	t.Helper()

	inv := memory.NewInventoryStore()
	if err := LoadFixtures(context.Background(), inv); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	snaps := memory.NewMetricSnapshotStore()
	dir := t.TempDir()
	runner := NewRunner(inv, snaps, dir).WithClock(fixedClock()).WithLogger(quietLogger())
	return runner, snaps, dir
}

func TestRunner_Run(t *testing.T) {
	runner, snaps, dir := setupRunner(t)

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.RunID != "run_20240601_120000" {
		t.Errorf("run id: %q", result.RunID)
	}
	if result.TotalRecords != 15 {
		t.Errorf("total records: %d", result.TotalRecords)
	}
	// Two fixture rows fail the analyzability invariant.
	if result.AnalyzedRecords != 13 {
		t.Errorf("analyzed records: %d", result.AnalyzedRecords)
	}
	if result.SnapshotsStored != 13 {
		t.Errorf("snapshots stored: %d", result.SnapshotsStored)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}

	stored, err := snaps.GetByRunID(context.Background(), result.RunID)
	if err != nil {
		t.Fatalf("get snapshots: %v", err)
	}
	if len(stored) != 13 {
		t.Errorf("persisted snapshots: %d", len(stored))
	}
	for _, snap := range stored {
		if !snap.ComputedAt.Equal(fixedClock()()) {
			t.Errorf("computed at: %v", snap.ComputedAt)
		}
	}

	for _, name := range []string{
		ReportFileName,
		"strategic_recommendations_20240601_120000.txt",
		CategoryPerformanceFileName,
		RegionalPerformanceFileName,
		SeasonalPerformanceFileName,
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
	if len(result.FilesWritten) != 5 {
		t.Errorf("files written: %v", result.FilesWritten)
	}
}

func TestRunner_ReportContent(t *testing.T) {
	runner, _, dir := setupRunner(t)

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	md, err := os.ReadFile(filepath.Join(dir, ReportFileName))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	for _, want := range []string{
		"# Retail Inventory Analysis",
		"Run: run_20240601_120000",
		"## Key Correlations",
		"## Executive Summary",
	} {
		if !strings.Contains(string(md), want) {
			t.Errorf("report missing %q", want)
		}
	}

	if result.Report.DeadStockCount == 0 {
		t.Error("fixtures should produce dead stock")
	}
	if result.Report.SlowMovingCount == 0 {
		t.Error("fixtures should produce slow movers")
	}
}

func TestRunner_SnapshotSegmentFlags(t *testing.T) {
	runner, snaps, _ := setupRunner(t)

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	stored, err := snaps.GetByRunID(context.Background(), result.RunID)
	if err != nil {
		t.Fatalf("get snapshots: %v", err)
	}

	var deadStock int
	for _, snap := range stored {
		if snap.DeadStock {
			deadStock++
			// Dead stock implies the slow-moving predicate here: very
			// high days on hand with near-zero turnover.
			if !snap.SlowMoving {
				t.Errorf("dead stock without slow moving: %+v", snap)
			}
		}
		if snap.StockClass == "" {
			t.Errorf("missing stock class: %+v", snap)
		}
	}
	if deadStock != result.Report.DeadStockCount {
		t.Errorf("dead stock flags %d vs report count %d", deadStock, result.Report.DeadStockCount)
	}
}

func TestRunner_WithRunID(t *testing.T) {
	runner, snaps, _ := setupRunner(t)

	result, err := runner.WithRunID("run-custom").Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.RunID != "run-custom" {
		t.Errorf("run id: %q", result.RunID)
	}
	stored, err := snaps.GetByRunID(context.Background(), "run-custom")
	if err != nil || len(stored) == 0 {
		t.Errorf("snapshots under custom run id: %d, %v", len(stored), err)
	}
}

func TestRunner_EmptyStore(t *testing.T) {
	inv := memory.NewInventoryStore()
	runner := NewRunner(inv, memory.NewMetricSnapshotStore(), t.TempDir()).
		WithClock(fixedClock()).WithLogger(quietLogger())

	if _, err := runner.Run(context.Background()); err == nil {
		t.Fatal("expected error for empty store")
	}
}

// failingSnapshotStore rejects every insert.
type failingSnapshotStore struct{}

func (failingSnapshotStore) InsertBulk(context.Context, []*domain.MetricSnapshot) error {
	return errors.New("clickhouse down")
}

func (failingSnapshotStore) GetByRunID(context.Context, string) ([]*domain.MetricSnapshot, error) {
	return nil, nil
}

func TestRunner_SnapshotFailureIsIsolated(t *testing.T) {
	inv := memory.NewInventoryStore()
	if err := LoadFixtures(context.Background(), inv); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	dir := t.TempDir()
	runner := NewRunner(inv, failingSnapshotStore{}, dir).
		WithClock(fixedClock()).WithLogger(quietLogger())

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run should survive snapshot failure: %v", err)
	}

	if result.SnapshotsStored != 0 {
		t.Errorf("snapshots stored: %d", result.SnapshotsStored)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "persist snapshots") {
		t.Errorf("errors: %v", result.Errors)
	}
	// The report still goes out and carries the failure.
	if _, err := os.Stat(filepath.Join(dir, ReportFileName)); err != nil {
		t.Errorf("report not written: %v", err)
	}
	if len(result.Report.Errors) == 0 {
		t.Error("report should record the snapshot failure")
	}
}

func TestRunner_NilSnapshotStoreSkipsPersistence(t *testing.T) {
	inv := memory.NewInventoryStore()
	if err := LoadFixtures(context.Background(), inv); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	runner := NewRunner(inv, nil, t.TempDir()).
		WithClock(fixedClock()).WithLogger(quietLogger())

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.SnapshotsStored != 0 || len(result.Errors) != 0 {
		t.Errorf("unexpected persistence: %+v", result)
	}
}

func TestFixtureRecords_IDsAreDeterministic(t *testing.T) {
	a, b := FixtureRecords(), FixtureRecords()
	if len(a) != 15 {
		t.Fatalf("fixture count: %d", len(a))
	}

	seen := make(map[string]bool, len(a))
	for i := range a {
		if a[i].RecordID != b[i].RecordID {
			t.Errorf("record id not deterministic at %d", i)
		}
		if seen[a[i].RecordID] {
			t.Errorf("duplicate record id at %d", i)
		}
		seen[a[i].RecordID] = true
	}
}
