package reporting

import (
	"time"

	"retail-inventory-lab/internal/analytics"
	"retail-inventory-lab/internal/domain"
)

// Report is the passive output of one analysis run. Rendering is done by
// RenderText / RenderMarkdown / RenderTableCSV; the struct itself carries
// no formatting.
type Report struct {
	// Metadata
	GeneratedAt     time.Time
	RunID           string
	TotalRecords    int // rows in storage
	AnalyzedRecords int // rows passing the ingest invariant

	// Overall performance metrics.
	Performance PerformanceSummary

	// Problem inventory. Counts cover the whole table; the summary tables
	// are nil when the corresponding segment is empty.
	SlowMovingCount      int
	OverstockedCount     int
	DeadStockCount       int
	SlowMovingByCategory *analytics.GroupedTable // Count desc
	OverstockedByRegion  *analytics.GroupedTable // Total_Overstock desc

	// Seasonal and weather summaries.
	SeasonalByCategory *analytics.GroupedTable // keyed (seasonality, category)
	WeatherImpact      *analytics.GroupedTable // Avg_Turnover desc

	// Performance summaries and extremum selections.
	CategoryPerformance *analytics.GroupedTable
	RegionalPerformance *analytics.GroupedTable
	SeasonalEfficiency  *analytics.GroupedTable // Avg_Efficiency desc
	BestRegion          *analytics.GroupRow
	WorstRegion         *analytics.GroupRow
	BestSeason          *analytics.GroupRow
	WorstSeason         *analytics.GroupRow

	// Correlation findings.
	KeyCorrelations []domain.KeyCorrelation
	Tests           []*domain.CorrelationTest
	SkippedTests    []string

	// Strategic advice.
	CategoryAdvice  []CategoryAdvice
	Recommendations []string // flat numbered summary

	// Executive summary.
	Executive ExecutiveSummary

	// Analysis step errors carried through from the pipeline.
	Errors []string
}

// PerformanceSummary holds the table-wide metric averages. Cells are
// undefined when the table was empty.
type PerformanceSummary struct {
	AvgInventoryDays analytics.Cell
	AvgTurnover      analytics.Cell
	AvgProfitMargin  analytics.Cell
}

// CategoryAdvice is the per-category rule evaluation against the
// table-wide averages.
type CategoryAdvice struct {
	Category string

	// Rule inputs, for display.
	InventoryDays  analytics.Cell
	TurnoverRatio  analytics.Cell
	OverstockUnits float64

	HighInventoryRisk bool // days > 1.2x table average
	LowTurnover       bool // turnover < 0.8x table average
	OverstockAlert    bool // category total above the row-level 70th percentile
	Excellent         bool // days < 0.9x average and turnover > 1.1x average
}

// CategoryRevenue is one entry in the top-categories ranking.
type CategoryRevenue struct {
	Category string
	Revenue  float64
}

// ExecutiveSummary carries the headline business numbers.
type ExecutiveSummary struct {
	TotalNetRevenue float64
	TotalUnitsSold  int
	AvgProfitMargin analytics.Cell
	OverstockValue  float64 // sum of overstock_units * price per row

	TopCategories []CategoryRevenue // top 3 by net revenue

	HighEfficiencyCount int // efficiency above its 80th percentile
	LowEfficiencyCount  int // efficiency below its 20th percentile
	HighEfficiencyPct   float64
	LowEfficiencyPct    float64

	// 30% of overstock value is treated as recoverable.
	PotentialSavings float64
	ROIPct           float64 // savings relative to net revenue
}
