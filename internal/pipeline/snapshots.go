package pipeline

import (
	"time"

	"retail-inventory-lab/internal/analytics"
	"retail-inventory-lab/internal/domain"
)

// BuildSnapshots flattens a derived table into persistable snapshots
// stamped with the run. Segment flags come from the run's own thresholds,
// so a record's flags can differ between runs as the table changes.
func BuildSnapshots(res *analytics.Result, runID string, computedAt time.Time) []*domain.MetricSnapshot {
	snapshots := make([]*domain.MetricSnapshot, 0, len(res.Rows))
	for _, row := range res.Rows {
		snap := &domain.MetricSnapshot{
			RunID:      runID,
			RecordID:   row.Record.RecordID,
			ComputedAt: computedAt,

			GrossRevenue:   row.GrossRevenue,
			NetRevenue:     row.NetRevenue,
			OverstockUnits: row.OverstockUnits,
			TurnoverRatio:  row.TurnoverRatio,
			ProfitMargin:   row.ProfitMargin,
			InventoryDays:  row.InventoryDays,
			ProfitPerUnit:  row.ProfitPerUnit,
			Efficiency:     row.Efficiency,
			StockClass:     string(row.StockClass),
		}
		if res.Segments != nil {
			snap.SlowMoving = analytics.IsSlowMoving(row)
			snap.Overstocked = analytics.IsOverstocked(row, res.Segments.Thresholds)
			snap.DeadStock = analytics.IsDeadStock(row)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots
}
