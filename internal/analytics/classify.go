package analytics

import "retail-inventory-lab/internal/domain"

// Stock class bin edges over inventory_days. Bins are left-open and
// right-closed, (lo, hi], matching pandas cut with right=True: a value of
// exactly 15 is Fast Moving, exactly 30 is Normal, exactly 60 is Slow
// Moving. The ingest invariant guarantees inventory_days > 0; zero is
// mapped to Fast Moving defensively.
const (
	fastMovingMaxDays = 15.0
	normalMaxDays     = 30.0
	slowMovingMaxDays = 60.0
)

// Fixed segment cutoffs from the problem-area definitions.
const (
	slowMovingMinDays     = 45.0
	slowMovingMaxTurnover = 0.3
	deadStockMinDays      = 90.0
	deadStockMaxUnitsSold = 1
)

// Quantile levels for the Overstocked segment thresholds.
const (
	overstockQuantile  = 0.80
	efficiencyQuantile = 0.30
)

// ClassifyStock assigns the stock class for a days-on-hand value.
func ClassifyStock(inventoryDays float64) domain.StockClass {
	switch {
	case inventoryDays <= fastMovingMaxDays:
		return domain.StockFastMoving
	case inventoryDays <= normalMaxDays:
		return domain.StockNormal
	case inventoryDays <= slowMovingMaxDays:
		return domain.StockSlowMoving
	default:
		return domain.StockDeadStock
	}
}

// SegmentThresholds holds the quantile-based cutoffs computed from the
// current table. They depend only on the multiset of values, not row order.
type SegmentThresholds struct {
	OverstockP80  float64 // 80th percentile of overstock_units
	EfficiencyP30 float64 // 30th percentile of efficiency_score
}

// Segmentation is the result of classifying a derived table into the three
// named problem segments. Membership is not exclusive: a row can appear in
// several segments at once.
type Segmentation struct {
	Thresholds SegmentThresholds

	SlowMoving  []*domain.MetricRow
	Overstocked []*domain.MetricRow
	DeadStock   []*domain.MetricRow
}

// Segments returns the set of segments a single row belongs to under the
// given thresholds.
func (s *Segmentation) Segments(row *domain.MetricRow) []domain.Segment {
	var out []domain.Segment
	if IsSlowMoving(row) {
		out = append(out, domain.SegmentSlowMoving)
	}
	if IsOverstocked(row, s.Thresholds) {
		out = append(out, domain.SegmentOverstocked)
	}
	if IsDeadStock(row) {
		out = append(out, domain.SegmentDeadStock)
	}
	return out
}

// IsSlowMoving reports high days-on-hand combined with low turnover.
func IsSlowMoving(row *domain.MetricRow) bool {
	return row.InventoryDays > slowMovingMinDays && row.TurnoverRatio < slowMovingMaxTurnover
}

// IsOverstocked reports overstock above the table's 80th percentile with
// efficiency below its 30th percentile.
func IsOverstocked(row *domain.MetricRow, th SegmentThresholds) bool {
	return row.OverstockUnits > th.OverstockP80 && row.Efficiency < th.EfficiencyP30
}

// IsDeadStock reports very high days-on-hand with near-zero sales.
func IsDeadStock(row *domain.MetricRow) bool {
	return row.InventoryDays > deadStockMinDays && row.Record.UnitsSold <= deadStockMaxUnitsSold
}

// ComputeThresholds computes the quantile cutoffs for the Overstocked
// segment from the full table. Returns ErrEmptyInput on an empty table;
// downstream reports assume populated thresholds, so the error must be
// propagated, not swallowed.
func ComputeThresholds(rows []*domain.MetricRow) (SegmentThresholds, error) {
	if len(rows) == 0 {
		return SegmentThresholds{}, ErrEmptyInput
	}

	overstock := make([]float64, len(rows))
	efficiency := make([]float64, len(rows))
	for i, row := range rows {
		overstock[i] = row.OverstockUnits
		efficiency[i] = row.Efficiency
	}

	p80, err := Percentile(overstock, overstockQuantile)
	if err != nil {
		return SegmentThresholds{}, err
	}
	p30, err := Percentile(efficiency, efficiencyQuantile)
	if err != nil {
		return SegmentThresholds{}, err
	}

	return SegmentThresholds{OverstockP80: p80, EfficiencyP30: p30}, nil
}

// SegmentRows evaluates the three segment predicates over the full table.
// Rows keep their input order within each segment.
func SegmentRows(rows []*domain.MetricRow) (*Segmentation, error) {
	th, err := ComputeThresholds(rows)
	if err != nil {
		return nil, err
	}

	seg := &Segmentation{Thresholds: th}
	for _, row := range rows {
		if IsSlowMoving(row) {
			seg.SlowMoving = append(seg.SlowMoving, row)
		}
		if IsOverstocked(row, th) {
			seg.Overstocked = append(seg.Overstocked, row)
		}
		if IsDeadStock(row) {
			seg.DeadStock = append(seg.DeadStock, row)
		}
	}
	return seg, nil
}
