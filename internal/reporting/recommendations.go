package reporting

import (
	"fmt"

	"retail-inventory-lab/internal/analytics"
	"retail-inventory-lab/internal/domain"
)

// Rule multipliers for the category advice, relative to the table-wide
// averages.
const (
	highInventoryFactor = 1.2
	lowTurnoverFactor   = 0.8
	goodInventoryFactor = 0.9
	goodTurnoverFactor  = 1.1

	// Category overstock totals above this row-level quantile trigger an
	// overstock alert.
	overstockAlertQuantile = 0.70

	// Share of overstock value treated as recoverable in the executive
	// summary.
	optimizablePortion = 0.30
)

// buildCategoryAdvice evaluates the advice rules for every category row of
// the category performance table.
func buildCategoryAdvice(
	table *analytics.GroupedTable,
	perf PerformanceSummary,
	overstockP70 float64,
) []CategoryAdvice {
	if table == nil {
		return nil
	}

	advice := make([]CategoryAdvice, 0, len(table.Rows))
	for i := range table.Rows {
		row := &table.Rows[i]

		days, _ := table.Cell(row, analytics.ColAvgInventoryDays)
		turnover, _ := table.Cell(row, analytics.ColAvgTurnover)
		overstock, _ := table.Cell(row, analytics.ColTotalOverstock)

		a := CategoryAdvice{
			Category:       row.KeyString(),
			InventoryDays:  days,
			TurnoverRatio:  turnover,
			OverstockUnits: overstock.Value,
		}

		if days.Defined && perf.AvgInventoryDays.Defined {
			a.HighInventoryRisk = days.Value > perf.AvgInventoryDays.Value*highInventoryFactor
		}
		if turnover.Defined && perf.AvgTurnover.Defined {
			a.LowTurnover = turnover.Value < perf.AvgTurnover.Value*lowTurnoverFactor
		}
		a.OverstockAlert = overstock.Defined && overstock.Value > overstockP70
		if days.Defined && turnover.Defined &&
			perf.AvgInventoryDays.Defined && perf.AvgTurnover.Defined {
			a.Excellent = days.Value < perf.AvgInventoryDays.Value*goodInventoryFactor &&
				turnover.Value > perf.AvgTurnover.Value*goodTurnoverFactor
		}

		advice = append(advice, a)
	}
	return advice
}

// keyRecommendations flattens the triggered rules into the numbered summary
// list, in category order.
func keyRecommendations(advice []CategoryAdvice) []string {
	var recs []string
	for _, a := range advice {
		if a.HighInventoryRisk {
			recs = append(recs, fmt.Sprintf("%s: Reduce inventory levels - currently %.1f days",
				a.Category, a.InventoryDays.Value))
		}
		if a.LowTurnover {
			recs = append(recs, fmt.Sprintf("%s: Improve turnover ratio - currently %.3f",
				a.Category, a.TurnoverRatio.Value))
		}
		if a.OverstockAlert {
			recs = append(recs, fmt.Sprintf("%s: Address overstock of %.0f units",
				a.Category, a.OverstockUnits))
		}
	}
	return recs
}

// keyCorrelationPairs are the named matrix entries surfaced in the report.
var keyCorrelationPairs = []struct {
	label string
	x, y  string
}{
	{"Inventory Days vs Profit Margin", "inventory_days", "profit_margin"},
	{"Inventory Days vs Net Revenue", "inventory_days", "net_revenue"},
	{"Turnover Ratio vs Profit Margin", "turnover_ratio", "profit_margin"},
	{"Inventory Level vs Efficiency Score", "inventory_level", "efficiency_score"},
	{"Discount vs Profit Margin", "discount", "profit_margin"},
	{"Demand Forecast vs Units Sold", "demand_forecast", "units_sold"},
}

// keyCorrelations extracts the named findings from the matrix with their
// strength labels. A nil matrix yields no findings.
func keyCorrelations(matrix *domain.CorrelationMatrix) []domain.KeyCorrelation {
	if matrix == nil {
		return nil
	}

	var out []domain.KeyCorrelation
	for _, pair := range keyCorrelationPairs {
		coeff, ok := matrix.At(pair.x, pair.y)
		if !ok {
			continue
		}
		out = append(out, domain.KeyCorrelation{
			Label:       pair.label,
			Coefficient: coeff,
			Strength:    analytics.StrengthLabel(coeff),
		})
	}
	return out
}
