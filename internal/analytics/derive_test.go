package analytics

import (
	"math"
	"testing"

	"retail-inventory-lab/internal/domain"
)

func record(inv, sold int, price, discount float64) *domain.InventoryRecord {
	return &domain.InventoryRecord{
		StoreID:        "S001",
		ProductID:      "P0001",
		Category:       "Groceries",
		Region:         "North",
		Seasonality:    "Winter",
		InventoryLevel: inv,
		UnitsSold:      sold,
		Price:          price,
		Discount:       discount,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeMetrics_EndToEnd(t *testing.T) {
	rows := ComputeMetrics([]*domain.InventoryRecord{record(100, 10, 50, 0)})
	row := rows[0]

	if !almostEqual(row.GrossRevenue, 500) {
		t.Errorf("expected gross_revenue 500, got %f", row.GrossRevenue)
	}
	if !almostEqual(row.NetRevenue, 500) {
		t.Errorf("expected net_revenue 500, got %f", row.NetRevenue)
	}
	if !almostEqual(row.TurnoverRatio, 0.1) {
		t.Errorf("expected turnover_ratio 0.1, got %f", row.TurnoverRatio)
	}
	if !almostEqual(row.ProfitMargin, 1.0) {
		t.Errorf("expected profit_margin 1.0, got %f", row.ProfitMargin)
	}
	// inventory_days = 100 / 10.1 * 30 ≈ 297.03
	if math.Abs(row.InventoryDays-297.0297029702970) > 1e-6 {
		t.Errorf("expected inventory_days ~297.03, got %f", row.InventoryDays)
	}
	if row.StockClass != domain.StockDeadStock {
		t.Errorf("expected Dead Stock class, got %q", row.StockClass)
	}
}

func TestComputeMetrics_ZeroSalesGuards(t *testing.T) {
	rows := ComputeMetrics([]*domain.InventoryRecord{record(20, 0, 10, 0)})
	row := rows[0]

	if row.TurnoverRatio != 0 {
		t.Errorf("expected turnover_ratio 0 for zero sales, got %f", row.TurnoverRatio)
	}
	// units_sold == 0 guard, not the 1-discount/100 simplification
	if row.ProfitMargin != 0 {
		t.Errorf("expected profit_margin 0 for zero sales, got %f", row.ProfitMargin)
	}
	// inventory_days = 20 / 0.1 * 30 = 6000: finite stand-in for "no sales"
	if !almostEqual(row.InventoryDays, 6000) {
		t.Errorf("expected inventory_days 6000, got %f", row.InventoryDays)
	}
	if row.StockClass != domain.StockDeadStock {
		t.Errorf("expected Dead Stock class, got %q", row.StockClass)
	}
}

func TestComputeMetrics_TurnoverRange(t *testing.T) {
	// sold <= inventory keeps turnover in [0, 1]
	within := ComputeMetrics([]*domain.InventoryRecord{record(50, 50, 10, 0)})[0]
	if within.TurnoverRatio < 0 || within.TurnoverRatio > 1 {
		t.Errorf("expected turnover in [0,1], got %f", within.TurnoverRatio)
	}

	// sold > inventory is not clamped
	over := ComputeMetrics([]*domain.InventoryRecord{record(40, 60, 10, 0)})[0]
	if !almostEqual(over.TurnoverRatio, 1.5) {
		t.Errorf("expected unclamped turnover 1.5, got %f", over.TurnoverRatio)
	}
	if over.OverstockUnits >= 0 {
		t.Errorf("expected negative overstock (undersupply), got %f", over.OverstockUnits)
	}
}

func TestComputeMetrics_MarginDependsOnlyOnDiscount(t *testing.T) {
	// profit_margin = 1 - discount/100 for any positive sales volume,
	// independent of price and units_sold magnitude.
	for _, rec := range []*domain.InventoryRecord{
		record(100, 1, 5, 25),
		record(100, 500, 5, 25),
		record(100, 500, 9999, 25),
	} {
		row := ComputeMetrics([]*domain.InventoryRecord{rec})[0]
		if !almostEqual(row.ProfitMargin, 0.75) {
			t.Errorf("inv=%d sold=%d price=%f: expected margin 0.75, got %f",
				rec.InventoryLevel, rec.UnitsSold, rec.Price, row.ProfitMargin)
		}
	}
}

func TestComputeMetrics_InventoryDaysMonotonicity(t *testing.T) {
	// For fixed inventory, days-on-hand strictly decreases as sales grow.
	prev := math.Inf(1)
	for sold := 0; sold <= 200; sold += 10 {
		row := ComputeMetrics([]*domain.InventoryRecord{record(100, sold, 10, 0)})[0]
		if row.InventoryDays >= prev {
			t.Fatalf("inventory_days not strictly decreasing at units_sold=%d: %f >= %f",
				sold, row.InventoryDays, prev)
		}
		prev = row.InventoryDays
	}
}

func TestComputeMetrics_ProfitPerUnit(t *testing.T) {
	row := ComputeMetrics([]*domain.InventoryRecord{record(100, 10, 50, 20)})[0]

	// net = 500 * 0.8 = 400; per unit = 400 / 10.1
	if !almostEqual(row.ProfitPerUnit, 400/10.1) {
		t.Errorf("expected profit_per_unit %f, got %f", 400/10.1, row.ProfitPerUnit)
	}
	// efficiency = 0.1 * 0.8 * 100 = 8
	if !almostEqual(row.Efficiency, 8) {
		t.Errorf("expected efficiency 8, got %f", row.Efficiency)
	}
}

func TestComputeMetrics_InputNotMutated(t *testing.T) {
	rec := record(100, 10, 50, 0)
	before := *rec
	ComputeMetrics([]*domain.InventoryRecord{rec})
	if *rec != before {
		t.Error("expected derivation to leave the raw record untouched")
	}
}
