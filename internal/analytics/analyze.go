package analytics

import (
	"fmt"

	"retail-inventory-lab/internal/domain"
)

// Column names shared between the aggregation step and the report layer.
const (
	ColCount            = "Count"
	ColAvgInventoryDays = "Avg_Inventory_Days"
	ColAvgTurnover      = "Avg_Turnover"
	ColAvgMargin        = "Avg_Margin"
	ColAvgEfficiency    = "Avg_Efficiency"
	ColAvgUnitsSold     = "Avg_Units_Sold"
	ColTotalRevenue     = "Total_Revenue"
	ColLostRevenue      = "Lost_Revenue"
	ColTotalOverstock   = "Total_Overstock"
	ColUnitsSold        = "Units_Sold"
)

// Result is the full output of one analysis pass: the derived table, the
// segment classification, the named summary tables, extremum selections and
// the correlation results. It is the input boundary of the report layer.
type Result struct {
	Rows     []*domain.MetricRow
	Segments *Segmentation

	// Problem-area summaries.
	SlowMovingByCategory *GroupedTable // Count desc
	OverstockedByRegion  *GroupedTable // Total_Overstock desc

	// Seasonal / weather / performance summaries.
	SeasonalByCategory  *GroupedTable // keyed (seasonality, category)
	WeatherImpact       *GroupedTable // Avg_Turnover desc
	CategoryPerformance *GroupedTable
	RegionalPerformance *GroupedTable
	SeasonalEfficiency  *GroupedTable // Avg_Efficiency desc

	// Extremum selections by efficiency score.
	BestRegion  *GroupRow
	WorstRegion *GroupRow
	BestSeason  *GroupRow
	WorstSeason *GroupRow

	// Correlation outputs.
	Matrix       *domain.CorrelationMatrix
	Tests        []*domain.CorrelationTest
	SkippedTests []string

	// Step errors. Independent analysis steps do not cascade-fail each
	// other; a failed step leaves its section nil and records why.
	Errors []string
}

// Analyze runs the complete pipeline over a table of analyzable records:
// derive, classify, aggregate, correlate. Each step after derivation is
// isolated, so a failure in one analysis leaves the others intact.
func Analyze(records []*domain.InventoryRecord) *Result {
	res := &Result{Rows: ComputeMetrics(records)}

	if segments, err := SegmentRows(res.Rows); err != nil {
		res.fail("segmentation", err)
	} else {
		res.Segments = segments
		res.aggregateProblemAreas()
	}

	res.aggregateSummaries()
	res.correlate()
	return res
}

func (r *Result) fail(step string, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", step, err))
}

// aggregateProblemAreas summarizes the slow-moving and overstocked
// segments. Empty segments are legitimate and simply leave nil tables.
func (r *Result) aggregateProblemAreas() {
	byCategory := func(row *domain.MetricRow) string { return row.Record.Category }
	byRegion := func(row *domain.MetricRow) string { return row.Record.Region }

	if len(r.Segments.SlowMoving) > 0 {
		table, err := GroupBy(r.Segments.SlowMoving, []string{"category"}, []KeyFunc{byCategory}, []ColumnSpec{
			{Name: ColCount, Op: ReduceCount},
			{Name: ColAvgInventoryDays, Value: inventoryDays, Op: ReduceMean},
			{Name: ColTotalRevenue, Value: netRevenue, Op: ReduceSum},
			{Name: ColTotalOverstock, Value: overstockUnits, Op: ReduceSum},
		})
		if err != nil {
			r.fail("slow-moving by category", err)
		} else if table, err = table.SortBy(ColCount, true); err != nil {
			r.fail("slow-moving by category", err)
		} else {
			r.SlowMovingByCategory = table
		}
	}

	if len(r.Segments.Overstocked) > 0 {
		table, err := GroupBy(r.Segments.Overstocked, []string{"region"}, []KeyFunc{byRegion}, []ColumnSpec{
			{Name: ColCount, Op: ReduceCount},
			{Name: ColTotalOverstock, Value: overstockUnits, Op: ReduceSum},
			{Name: ColLostRevenue, Value: netRevenue, Op: ReduceSum},
			{Name: ColAvgEfficiency, Value: efficiency, Op: ReduceMean},
		})
		if err != nil {
			r.fail("overstocked by region", err)
		} else if table, err = table.SortBy(ColTotalOverstock, true); err != nil {
			r.fail("overstocked by region", err)
		} else {
			r.OverstockedByRegion = table
		}
	}
}

// aggregateSummaries builds the seasonal, weather, category and regional
// summary tables plus the efficiency extremum selections.
func (r *Result) aggregateSummaries() {
	byCategory := func(row *domain.MetricRow) string { return row.Record.Category }
	byRegion := func(row *domain.MetricRow) string { return row.Record.Region }
	bySeason := func(row *domain.MetricRow) string { return row.Record.Seasonality }
	byWeather := func(row *domain.MetricRow) string { return row.Record.WeatherCondition }

	seasonal, err := GroupBy(r.Rows, []string{"seasonality", "category"}, []KeyFunc{bySeason, byCategory}, []ColumnSpec{
		{Name: ColAvgInventoryDays, Value: inventoryDays, Op: ReduceMean},
		{Name: ColAvgTurnover, Value: turnoverRatio, Op: ReduceMean},
		{Name: ColAvgMargin, Value: profitMargin, Op: ReduceMean},
		{Name: ColTotalRevenue, Value: netRevenue, Op: ReduceSum},
		{Name: ColUnitsSold, Value: unitsSold, Op: ReduceSum},
		{Name: ColTotalOverstock, Value: overstockUnits, Op: ReduceSum},
	})
	if err != nil {
		r.fail("seasonal analysis", err)
	} else {
		r.SeasonalByCategory = seasonal.SortKeys()
	}

	weather, err := GroupBy(r.Rows, []string{"weather_condition"}, []KeyFunc{byWeather}, []ColumnSpec{
		{Name: ColAvgTurnover, Value: turnoverRatio, Op: ReduceMean},
		{Name: ColAvgUnitsSold, Value: unitsSold, Op: ReduceMean},
		{Name: ColAvgInventoryDays, Value: inventoryDays, Op: ReduceMean},
	})
	if err != nil {
		r.fail("weather impact", err)
	} else if weather, err = weather.SortBy(ColAvgTurnover, true); err != nil {
		r.fail("weather impact", err)
	} else {
		r.WeatherImpact = weather
	}

	category, err := GroupBy(r.Rows, []string{"category"}, []KeyFunc{byCategory}, []ColumnSpec{
		{Name: ColAvgInventoryDays, Value: inventoryDays, Op: ReduceMean},
		{Name: ColAvgTurnover, Value: turnoverRatio, Op: ReduceMean},
		{Name: ColAvgMargin, Value: profitMargin, Op: ReduceMean},
		{Name: ColTotalRevenue, Value: netRevenue, Op: ReduceSum},
		{Name: ColTotalOverstock, Value: overstockUnits, Op: ReduceSum},
	})
	if err != nil {
		r.fail("category performance", err)
	} else {
		r.CategoryPerformance = category.SortKeys()
	}

	regional, err := GroupBy(r.Rows, []string{"region"}, []KeyFunc{byRegion}, []ColumnSpec{
		{Name: ColAvgInventoryDays, Value: inventoryDays, Op: ReduceMean},
		{Name: ColAvgTurnover, Value: turnoverRatio, Op: ReduceMean},
		{Name: ColTotalRevenue, Value: netRevenue, Op: ReduceSum},
		{Name: ColAvgEfficiency, Value: efficiency, Op: ReduceMean},
	})
	if err != nil {
		r.fail("regional performance", err)
	} else {
		r.RegionalPerformance = regional.SortKeys()
		if best, worst, err := r.RegionalPerformance.Extremes(ColAvgEfficiency); err != nil {
			r.fail("regional extremes", err)
		} else {
			r.BestRegion, r.WorstRegion = best, worst
		}
	}

	seasonEff, err := GroupBy(r.Rows, []string{"seasonality"}, []KeyFunc{bySeason}, []ColumnSpec{
		{Name: ColAvgEfficiency, Value: efficiency, Op: ReduceMean},
	})
	if err != nil {
		r.fail("seasonal efficiency", err)
	} else {
		sorted := seasonEff.SortKeys()
		if best, worst, err := sorted.Extremes(ColAvgEfficiency); err != nil {
			r.fail("seasonal extremes", err)
		} else {
			r.BestSeason, r.WorstSeason = best, worst
		}
		if ranked, err := sorted.SortBy(ColAvgEfficiency, true); err != nil {
			r.fail("seasonal efficiency", err)
		} else {
			r.SeasonalEfficiency = ranked
		}
	}
}

// correlate builds the matrix and the standard significance tests.
func (r *Result) correlate() {
	matrix, err := CorrelationMatrix(r.Rows)
	if err != nil {
		r.fail("correlation matrix", err)
		return
	}
	r.Matrix = matrix

	tests, skipped, err := RunSignificanceTests(r.Rows)
	if err != nil {
		r.fail("significance tests", err)
		return
	}
	r.Tests = tests
	r.SkippedTests = skipped
}

// Row accessors shared by the aggregation specs.
func inventoryDays(r *domain.MetricRow) float64  { return r.InventoryDays }
func turnoverRatio(r *domain.MetricRow) float64  { return r.TurnoverRatio }
func profitMargin(r *domain.MetricRow) float64   { return r.ProfitMargin }
func netRevenue(r *domain.MetricRow) float64     { return r.NetRevenue }
func overstockUnits(r *domain.MetricRow) float64 { return r.OverstockUnits }
func efficiency(r *domain.MetricRow) float64     { return r.Efficiency }
func unitsSold(r *domain.MetricRow) float64      { return float64(r.Record.UnitsSold) }
