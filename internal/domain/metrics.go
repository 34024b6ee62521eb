package domain

import "time"

// StockClass buckets a row by its days-on-hand.
type StockClass string

// Stock classes assigned by inventory_days bins (0,15], (15,30], (30,60], (60,inf).
const (
	StockFastMoving StockClass = "Fast Moving"
	StockNormal     StockClass = "Normal"
	StockSlowMoving StockClass = "Slow Moving"
	StockDeadStock  StockClass = "Dead Stock"
)

// MetricRow is an InventoryRecord together with its derived business
// metrics. Derived values are recomputed fresh on every analysis run and
// never stored back onto the raw record.
type MetricRow struct {
	Record *InventoryRecord

	GrossRevenue   float64 // units_sold * price
	NetRevenue     float64 // gross_revenue * (1 - discount/100)
	OverstockUnits float64 // inventory_level - units_sold, may be negative
	TurnoverRatio  float64 // units_sold / inventory_level, 0 when inventory_level == 0
	ProfitMargin   float64 // net/gross as a fraction in [0,1], 0 when units_sold == 0
	InventoryDays  float64 // inventory_level / (units_sold + 0.1) * 30
	ProfitPerUnit  float64 // net_revenue / (units_sold + 0.1)
	Efficiency     float64 // turnover_ratio * profit_margin * 100

	StockClass StockClass
}

// Segment is a named problem-inventory segment. A row may belong to more
// than one segment at the same time.
type Segment string

const (
	SegmentSlowMoving  Segment = "SLOW_MOVING"
	SegmentOverstocked Segment = "OVERSTOCKED"
	SegmentDeadStock   Segment = "DEAD_STOCK"
)

// MetricSnapshot is the flattened, persistable form of a MetricRow,
// stamped with the analysis run that produced it.
type MetricSnapshot struct {
	RunID      string
	RecordID   string
	ComputedAt time.Time

	GrossRevenue   float64
	NetRevenue     float64
	OverstockUnits float64
	TurnoverRatio  float64
	ProfitMargin   float64
	InventoryDays  float64
	ProfitPerUnit  float64
	Efficiency     float64
	StockClass     string

	SlowMoving  bool
	Overstocked bool
	DeadStock   bool
}
