package reporting

import (
	"math"
	"sort"
	"time"

	"retail-inventory-lab/internal/analytics"
	"retail-inventory-lab/internal/domain"
)

// Quantile levels for the efficiency distribution in the executive summary.
const (
	highEfficiencyQuantile = 0.80
	lowEfficiencyQuantile  = 0.20
)

// Generator builds reports from analysis results.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate assembles the full report from one analysis pass. totalRecords is
// the storage row count including rows that failed the ingest invariant.
func (g *Generator) Generate(res *analytics.Result, runID string, totalRecords int) *Report {
	r := &Report{
		GeneratedAt:     g.now(),
		RunID:           runID,
		TotalRecords:    totalRecords,
		AnalyzedRecords: len(res.Rows),

		SlowMovingByCategory: res.SlowMovingByCategory,
		OverstockedByRegion:  res.OverstockedByRegion,
		SeasonalByCategory:   res.SeasonalByCategory,
		WeatherImpact:        res.WeatherImpact,
		CategoryPerformance:  res.CategoryPerformance,
		RegionalPerformance:  res.RegionalPerformance,
		SeasonalEfficiency:   res.SeasonalEfficiency,
		BestRegion:           res.BestRegion,
		WorstRegion:          res.WorstRegion,
		BestSeason:           res.BestSeason,
		WorstSeason:          res.WorstSeason,

		KeyCorrelations: keyCorrelations(res.Matrix),
		Tests:           res.Tests,
		SkippedTests:    res.SkippedTests,

		Errors: res.Errors,
	}

	if res.Segments != nil {
		r.SlowMovingCount = len(res.Segments.SlowMoving)
		r.OverstockedCount = len(res.Segments.Overstocked)
		r.DeadStockCount = len(res.Segments.DeadStock)
	}

	r.Performance = performanceSummary(res.Rows)
	r.Executive = executiveSummary(res.Rows, res.CategoryPerformance, r.Performance)

	overstockP70 := rowOverstockQuantile(res.Rows, overstockAlertQuantile)
	r.CategoryAdvice = buildCategoryAdvice(res.CategoryPerformance, r.Performance, overstockP70)
	r.Recommendations = keyRecommendations(r.CategoryAdvice)

	return r
}

// performanceSummary computes the table-wide averages. An empty table
// leaves the cells undefined.
func performanceSummary(rows []*domain.MetricRow) PerformanceSummary {
	days := make([]float64, len(rows))
	turnover := make([]float64, len(rows))
	margin := make([]float64, len(rows))
	for i, row := range rows {
		days[i] = row.InventoryDays
		turnover[i] = row.TurnoverRatio
		margin[i] = row.ProfitMargin
	}

	return PerformanceSummary{
		AvgInventoryDays: meanCell(days),
		AvgTurnover:      meanCell(turnover),
		AvgProfitMargin:  meanCell(margin),
	}
}

// executiveSummary computes the headline numbers.
func executiveSummary(rows []*domain.MetricRow, categories *analytics.GroupedTable, perf PerformanceSummary) ExecutiveSummary {
	exec := ExecutiveSummary{AvgProfitMargin: perf.AvgProfitMargin}

	for _, row := range rows {
		exec.TotalNetRevenue += row.NetRevenue
		exec.TotalUnitsSold += row.Record.UnitsSold
		exec.OverstockValue += row.OverstockUnits * row.Record.Price
	}

	exec.TopCategories = topCategories(categories, 3)

	if len(rows) > 0 {
		efficiency := make([]float64, len(rows))
		for i, row := range rows {
			efficiency[i] = row.Efficiency
		}
		if p80, err := analytics.Percentile(efficiency, highEfficiencyQuantile); err == nil {
			for _, v := range efficiency {
				if v > p80 {
					exec.HighEfficiencyCount++
				}
			}
		}
		if p20, err := analytics.Percentile(efficiency, lowEfficiencyQuantile); err == nil {
			for _, v := range efficiency {
				if v < p20 {
					exec.LowEfficiencyCount++
				}
			}
		}
		exec.HighEfficiencyPct = float64(exec.HighEfficiencyCount) / float64(len(rows)) * 100
		exec.LowEfficiencyPct = float64(exec.LowEfficiencyCount) / float64(len(rows)) * 100
	}

	exec.PotentialSavings = exec.OverstockValue * optimizablePortion
	if exec.TotalNetRevenue != 0 {
		exec.ROIPct = exec.PotentialSavings / exec.TotalNetRevenue * 100
	}

	return exec
}

// topCategories ranks categories by total net revenue, descending, keeping
// the first n.
func topCategories(table *analytics.GroupedTable, n int) []CategoryRevenue {
	if table == nil {
		return nil
	}

	var ranked []CategoryRevenue
	for i := range table.Rows {
		row := &table.Rows[i]
		revenue, ok := table.Cell(row, analytics.ColTotalRevenue)
		if !ok || !revenue.Defined {
			continue
		}
		ranked = append(ranked, CategoryRevenue{Category: row.KeyString(), Revenue: revenue.Value})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue > ranked[j].Revenue
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// rowOverstockQuantile computes the row-level overstock quantile used by
// the overstock alert rule. Returns +Inf on an empty table so the alert
// never fires.
func rowOverstockQuantile(rows []*domain.MetricRow, q float64) float64 {
	if len(rows) == 0 {
		return math.Inf(1)
	}
	values := make([]float64, len(rows))
	for i, row := range rows {
		values[i] = row.OverstockUnits
	}
	p, err := analytics.Percentile(values, q)
	if err != nil {
		return math.Inf(1)
	}
	return p
}

func meanCell(values []float64) analytics.Cell {
	m, err := analytics.Mean(values)
	if err != nil {
		return analytics.Cell{}
	}
	return analytics.Cell{Value: m, Defined: true}
}
