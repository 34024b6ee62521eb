package analytics

import (
	"errors"
	"math/rand"
	"testing"

	"retail-inventory-lab/internal/domain"
)

func TestClassifyStock_BinBoundaries(t *testing.T) {
	// Bins are (lo, hi]: a value exactly on an edge falls in the lower bin.
	cases := []struct {
		days float64
		want domain.StockClass
	}{
		{0, domain.StockFastMoving}, // cannot occur under the ingest invariant
		{1, domain.StockFastMoving},
		{15, domain.StockFastMoving},
		{15.0001, domain.StockNormal},
		{30, domain.StockNormal},
		{30.0001, domain.StockSlowMoving},
		{60, domain.StockSlowMoving},
		{60.0001, domain.StockDeadStock},
		{6000, domain.StockDeadStock},
	}
	for _, tc := range cases {
		if got := ClassifyStock(tc.days); got != tc.want {
			t.Errorf("ClassifyStock(%f) = %q, want %q", tc.days, got, tc.want)
		}
	}
}

func TestSegmentRows_EmptyInput(t *testing.T) {
	// Empty-table quantiles must propagate, never produce empty segments.
	if _, err := SegmentRows(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestSegmentRows_MultiSegmentMembership(t *testing.T) {
	// A row with inv=20, sold=0: inventory_days = 6000 and turnover = 0, so
	// it is Dead Stock (units_sold <= 1) AND Slow-Moving (days > 45,
	// turnover < 0.3) at the same time.
	records := []*domain.InventoryRecord{
		record(20, 0, 10, 0),
		record(100, 90, 10, 0), // healthy row to give the quantiles spread
		record(100, 80, 10, 0),
	}
	seg, err := SegmentRows(ComputeMetrics(records))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seg.DeadStock) != 1 {
		t.Fatalf("expected 1 dead-stock row, got %d", len(seg.DeadStock))
	}
	if len(seg.SlowMoving) != 1 {
		t.Fatalf("expected 1 slow-moving row, got %d", len(seg.SlowMoving))
	}
	if seg.DeadStock[0] != seg.SlowMoving[0] {
		t.Error("expected the same row to be a member of both segments")
	}

	got := seg.Segments(seg.DeadStock[0])
	want := map[domain.Segment]bool{domain.SegmentSlowMoving: true, domain.SegmentDeadStock: true}
	for _, s := range got {
		if !want[s] {
			t.Errorf("unexpected segment %q", s)
		}
		delete(want, s)
	}
	for s := range want {
		t.Errorf("missing expected segment %q", s)
	}
}

func TestSegmentRows_OverstockedUsesQuantiles(t *testing.T) {
	// Ten rows with increasing overstock and decreasing efficiency. The
	// Overstocked segment needs overstock above P80 and efficiency below
	// P30, which only the worst tail satisfies.
	var records []*domain.InventoryRecord
	for i := 0; i < 10; i++ {
		// overstock grows with i, sales (and therefore efficiency) shrink
		records = append(records, record(100+i*100, 100-i*10, 10, 0))
	}
	rows := ComputeMetrics(records)

	seg, err := SegmentRows(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seg.Overstocked) == 0 {
		t.Fatal("expected a non-empty overstocked segment")
	}
	for _, row := range seg.Overstocked {
		if row.OverstockUnits <= seg.Thresholds.OverstockP80 {
			t.Errorf("overstocked row has overstock %f <= threshold %f",
				row.OverstockUnits, seg.Thresholds.OverstockP80)
		}
		if row.Efficiency >= seg.Thresholds.EfficiencyP30 {
			t.Errorf("overstocked row has efficiency %f >= threshold %f",
				row.Efficiency, seg.Thresholds.EfficiencyP30)
		}
	}
}

func TestSegmentRows_OrderInvariance(t *testing.T) {
	// Quantile-based membership depends only on the multiset of values,
	// never on row order.
	var records []*domain.InventoryRecord
	for i := 0; i < 25; i++ {
		records = append(records, record(50+i*37, (i*13)%60, 5+float64(i), float64((i*7)%50)))
	}
	rows := ComputeMetrics(records)

	base, err := SegmentRows(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shuffled := make([]*domain.MetricRow, len(rows))
	copy(shuffled, rows)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	reordered, err := SegmentRows(shuffled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if base.Thresholds != reordered.Thresholds {
		t.Errorf("thresholds changed with row order: %+v vs %+v",
			base.Thresholds, reordered.Thresholds)
	}
	if len(base.Overstocked) != len(reordered.Overstocked) {
		t.Errorf("overstocked membership changed with row order: %d vs %d",
			len(base.Overstocked), len(reordered.Overstocked))
	}
	if len(base.SlowMoving) != len(reordered.SlowMoving) {
		t.Errorf("slow-moving membership changed with row order: %d vs %d",
			len(base.SlowMoving), len(reordered.SlowMoving))
	}
}
