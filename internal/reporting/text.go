package reporting

import (
	"fmt"
	"strings"
	"time"

	"retail-inventory-lab/internal/analytics"
)

// strategicPriorities is the fixed action plan appended to every
// recommendations file.
var strategicPriorities = []string{
	"1. IMMEDIATE ACTIONS (0-30 days):",
	"   - Clear dead stock through aggressive discounting",
	"   - Redistribute overstock to high-demand locations",
	"   - Implement daily inventory monitoring",
	"",
	"2. SHORT-TERM IMPROVEMENTS (1-3 months):",
	"   - Optimize reorder points based on turnover analysis",
	"   - Enhance demand forecasting accuracy",
	"   - Implement category-specific inventory strategies",
	"",
	"3. LONG-TERM OPTIMIZATION (3-12 months):",
	"   - Develop predictive analytics for seasonal patterns",
	"   - Implement automated inventory management system",
	"   - Create regional inventory sharing network",
	"",
	"4. INNOVATION OPPORTUNITIES:",
	"   - Test dynamic pricing based on inventory levels",
	"   - Explore drop-shipping for slow-moving categories",
	"   - Implement AI-driven demand forecasting",
}

// RecommendationsFileName builds the timestamped file name for the
// strategic recommendations text output.
func RecommendationsFileName(t time.Time) string {
	return fmt.Sprintf("strategic_recommendations_%s.txt", t.Format("20060102_150405"))
}

// RenderRecommendations renders the strategic recommendations text file.
func RenderRecommendations(r *Report) string {
	var sb strings.Builder

	rule80 := strings.Repeat("=", 80)
	rule60 := strings.Repeat("=", 60)
	rule40 := strings.Repeat("-", 40)

	sb.WriteString("RETAIL INVENTORY STRATEGIC RECOMMENDATIONS\n")
	sb.WriteString(rule80 + "\n\n")
	sb.WriteString(fmt.Sprintf("Generated on: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05")))

	sb.WriteString("CURRENT PERFORMANCE METRICS:\n")
	sb.WriteString(fmt.Sprintf("Average Inventory Days: %s days\n", formatCell(r.Performance.AvgInventoryDays, "%.1f")))
	sb.WriteString(fmt.Sprintf("Average Turnover Ratio: %s\n", formatCell(r.Performance.AvgTurnover, "%.3f")))
	sb.WriteString(fmt.Sprintf("Average Profit Margin: %s\n\n", formatPercentCell(r.Performance.AvgProfitMargin)))

	sb.WriteString("CATEGORY-SPECIFIC STRATEGIC RECOMMENDATIONS\n")
	sb.WriteString(rule60 + "\n\n")

	for _, a := range r.CategoryAdvice {
		sb.WriteString(strings.ToUpper(a.Category) + " CATEGORY:\n")
		sb.WriteString(rule40 + "\n")

		if a.HighInventoryRisk {
			sb.WriteString(fmt.Sprintf("HIGH INVENTORY RISK: %s days (vs avg %s)\n",
				formatCell(a.InventoryDays, "%.1f"), formatCell(r.Performance.AvgInventoryDays, "%.1f")))
			sb.WriteString("   - Implement just-in-time ordering\n")
			sb.WriteString("   - Review supplier lead times\n")
			sb.WriteString("   - Consider promotional campaigns\n")
		}
		if a.LowTurnover {
			sb.WriteString(fmt.Sprintf("LOW TURNOVER: %s (vs avg %s)\n",
				formatCell(a.TurnoverRatio, "%.3f"), formatCell(r.Performance.AvgTurnover, "%.3f")))
			sb.WriteString("   - Optimize product mix\n")
			sb.WriteString("   - Enhance marketing efforts\n")
			sb.WriteString("   - Review pricing strategy\n")
		}
		if a.OverstockAlert {
			sb.WriteString(fmt.Sprintf("OVERSTOCK ALERT: %.0f excess units\n", a.OverstockUnits))
			sb.WriteString("   - Implement clearance sales\n")
			sb.WriteString("   - Redistribute to high-demand stores\n")
			sb.WriteString("   - Adjust future procurement\n")
		}
		if a.Excellent {
			sb.WriteString("EXCELLENT PERFORMANCE\n")
			sb.WriteString("   - Maintain current strategy\n")
			sb.WriteString("   - Consider expanding product line\n")
			sb.WriteString("   - Use as benchmark for other categories\n")
		}

		sb.WriteString("\n")
	}

	sb.WriteString("REGIONAL OPTIMIZATION STRATEGIES\n")
	sb.WriteString(rule60 + "\n\n")

	if r.BestRegion != nil && r.RegionalPerformance != nil {
		sb.WriteString(fmt.Sprintf("BEST PERFORMING REGION: %s\n", r.BestRegion.KeyString()))
		if cell, ok := r.RegionalPerformance.Cell(r.BestRegion, analytics.ColAvgEfficiency); ok {
			sb.WriteString(fmt.Sprintf("   Efficiency Score: %s\n", formatCell(cell, "%.2f")))
		}
		sb.WriteString("   - Share best practices with other regions\n")
		sb.WriteString("   - Consider expanding successful product lines\n\n")
	}
	if r.WorstRegion != nil && r.RegionalPerformance != nil {
		sb.WriteString(fmt.Sprintf("UNDERPERFORMING REGION: %s\n", r.WorstRegion.KeyString()))
		if cell, ok := r.RegionalPerformance.Cell(r.WorstRegion, analytics.ColAvgEfficiency); ok {
			sb.WriteString(fmt.Sprintf("   Efficiency Score: %s\n", formatCell(cell, "%.2f")))
		}
		sb.WriteString("   - Implement targeted improvement plan\n")
		sb.WriteString("   - Review local market conditions\n")
		sb.WriteString("   - Consider staff training programs\n\n")
	}

	sb.WriteString("SEASONAL STRATEGY RECOMMENDATIONS\n")
	sb.WriteString(rule60 + "\n\n")

	if r.SeasonalEfficiency != nil {
		sb.WriteString("SEASONAL EFFICIENCY RANKING:\n")
		for i := range r.SeasonalEfficiency.Rows {
			row := &r.SeasonalEfficiency.Rows[i]
			if cell, ok := r.SeasonalEfficiency.Cell(row, analytics.ColAvgEfficiency); ok {
				sb.WriteString(fmt.Sprintf("   %s: %s\n", row.KeyString(), formatCell(cell, "%.2f")))
			}
		}
		sb.WriteString("\n")
	}
	if r.BestSeason != nil {
		sb.WriteString(fmt.Sprintf("PEAK SEASON (%s):\n", r.BestSeason.KeyString()))
		sb.WriteString("   - Increase inventory 2-3 weeks before peak\n")
		sb.WriteString("   - Prepare promotional campaigns\n")
		sb.WriteString("   - Ensure adequate staffing\n\n")
	}
	if r.WorstSeason != nil {
		sb.WriteString(fmt.Sprintf("LOW SEASON (%s):\n", r.WorstSeason.KeyString()))
		sb.WriteString("   - Reduce inventory levels\n")
		sb.WriteString("   - Focus on clearance of slow-moving items\n")
		sb.WriteString("   - Plan maintenance and training activities\n\n")
	}

	sb.WriteString("TOP STRATEGIC PRIORITIES\n")
	sb.WriteString(rule60 + "\n\n")
	for _, priority := range strategicPriorities {
		sb.WriteString(priority + "\n")
	}

	sb.WriteString("\nKEY RECOMMENDATIONS SUMMARY:\n")
	for i, rec := range r.Recommendations {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, rec))
	}

	return sb.String()
}

// RenderText renders the console report: a condensed version of the
// markdown output without the table framing.
func RenderText(r *Report) string {
	var sb strings.Builder

	rule := strings.Repeat("=", 60)

	sb.WriteString(rule + "\n")
	sb.WriteString("RETAIL INVENTORY ANALYSIS\n")
	sb.WriteString(rule + "\n")
	sb.WriteString(fmt.Sprintf("Run %s at %s\n", r.RunID, r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Records: %d total, %d analyzed\n\n", r.TotalRecords, r.AnalyzedRecords))

	sb.WriteString("PROBLEM INVENTORY SUMMARY:\n")
	sb.WriteString(fmt.Sprintf("Slow-Moving Items: %d products\n", r.SlowMovingCount))
	sb.WriteString(fmt.Sprintf("Overstocked Items: %d products\n", r.OverstockedCount))
	sb.WriteString(fmt.Sprintf("Dead Stock Items: %d products\n\n", r.DeadStockCount))

	if len(r.KeyCorrelations) > 0 {
		sb.WriteString("KEY CORRELATION FINDINGS:\n")
		for _, kc := range r.KeyCorrelations {
			sb.WriteString(fmt.Sprintf("%-36s: %6.3f (%s)\n", kc.Label, kc.Coefficient, kc.Strength))
		}
		sb.WriteString("\n")
	}

	if len(r.Tests) > 0 {
		sb.WriteString("STATISTICAL SIGNIFICANCE TESTS:\n")
		for _, test := range r.Tests {
			result := "Not Significant"
			if test.Significant {
				result = "Significant"
			}
			sb.WriteString(fmt.Sprintf("%s vs %s:\n", test.X, test.Y))
			sb.WriteString(fmt.Sprintf("  Correlation: %.3f, p-value: %.4f (%s)\n",
				test.Coefficient, test.PValue, result))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("KEY BUSINESS METRICS:\n")
	sb.WriteString(fmt.Sprintf("  Total Net Revenue: $%.2f\n", r.Executive.TotalNetRevenue))
	sb.WriteString(fmt.Sprintf("  Total Units Sold: %d\n", r.Executive.TotalUnitsSold))
	sb.WriteString(fmt.Sprintf("  Average Profit Margin: %s\n", formatPercentCell(r.Executive.AvgProfitMargin)))
	sb.WriteString(fmt.Sprintf("  Overstock Value: $%.2f\n", r.Executive.OverstockValue))
	sb.WriteString(fmt.Sprintf("  Estimated Savings: $%.2f (ROI %.1f%%)\n",
		r.Executive.PotentialSavings, r.Executive.ROIPct))

	if len(r.Errors) > 0 {
		sb.WriteString("\nANALYSIS ERRORS:\n")
		for _, e := range r.Errors {
			sb.WriteString("  " + e + "\n")
		}
	}

	return sb.String()
}
