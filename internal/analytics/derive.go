// Package analytics implements the metric-derivation and segmentation
// pipeline: per-row derived business metrics, fixed and quantile-based
// segment classification, grouped aggregation, and correlation tests.
// Every function is a pure transform over immutable table snapshots.
package analytics

import "retail-inventory-lab/internal/domain"

// daysPerPeriod converts a turnover fraction into days-on-hand assuming
// monthly observations.
const daysPerPeriod = 30.0

// soldGuard is added to units_sold denominators so that rows with zero
// sales yield a very large but finite days-on-hand instead of dividing by
// zero.
const soldGuard = 0.1

// ComputeMetrics derives all per-row metrics for a table of records.
// Callers must supply rows satisfying the ingest invariant
// (inventory_level > 0, price > 0); rows violating it are rejected
// upstream, not here. The input is never mutated.
func ComputeMetrics(records []*domain.InventoryRecord) []*domain.MetricRow {
	rows := make([]*domain.MetricRow, len(records))
	for i, rec := range records {
		rows[i] = deriveRow(rec)
	}
	return rows
}

// deriveRow computes the nine derived fields for one record.
func deriveRow(rec *domain.InventoryRecord) *domain.MetricRow {
	sold := float64(rec.UnitsSold)
	inventory := float64(rec.InventoryLevel)

	gross := sold * rec.Price
	net := gross * (1 - rec.Discount/100)

	turnover := 0.0
	if rec.InventoryLevel > 0 {
		turnover = sold / inventory
	}

	// net/gross simplifies to (1 - discount/100); kept as the ratio so the
	// stored value stays consistent with the revenue columns.
	margin := 0.0
	if rec.UnitsSold > 0 {
		margin = net / gross
	}

	days := inventory / (sold + soldGuard) * daysPerPeriod

	row := &domain.MetricRow{
		Record:         rec,
		GrossRevenue:   gross,
		NetRevenue:     net,
		OverstockUnits: inventory - sold,
		TurnoverRatio:  turnover,
		ProfitMargin:   margin,
		InventoryDays:  days,
		ProfitPerUnit:  net / (sold + soldGuard),
		Efficiency:     turnover * margin * 100,
	}
	row.StockClass = ClassifyStock(days)
	return row
}
