package reporting

import (
	"fmt"
	"strings"
	"time"

	"retail-inventory-lab/internal/analytics"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Retail Inventory Analysis\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s | Records: %d total, %d analyzed\n\n",
		r.RunID, r.TotalRecords, r.AnalyzedRecords))

	// Performance
	sb.WriteString("## Current Performance\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Average Inventory Days | %s |\n", formatCell(r.Performance.AvgInventoryDays, "%.1f")))
	sb.WriteString(fmt.Sprintf("| Average Turnover Ratio | %s |\n", formatCell(r.Performance.AvgTurnover, "%.3f")))
	sb.WriteString(fmt.Sprintf("| Average Profit Margin | %s |\n", formatPercentCell(r.Performance.AvgProfitMargin)))
	sb.WriteString("\n")

	// Problem inventory
	sb.WriteString("## Problem Inventory\n\n")
	sb.WriteString(fmt.Sprintf("Slow-Moving: %d | Overstocked: %d | Dead Stock: %d\n\n",
		r.SlowMovingCount, r.OverstockedCount, r.DeadStockCount))

	writeTableSection(&sb, "### Slow-Moving Items by Category", r.SlowMovingByCategory)
	writeTableSection(&sb, "### Overstocked Items by Region", r.OverstockedByRegion)

	// Seasonal / weather
	writeTableSection(&sb, "## Seasonal Performance by Category", r.SeasonalByCategory)
	writeTableSection(&sb, "## Weather Impact on Turnover", r.WeatherImpact)

	// Performance summaries
	writeTableSection(&sb, "## Category Performance", r.CategoryPerformance)
	writeTableSection(&sb, "## Regional Performance", r.RegionalPerformance)

	if r.BestRegion != nil && r.WorstRegion != nil {
		sb.WriteString(fmt.Sprintf("Best region: **%s** | Worst region: **%s**\n\n",
			r.BestRegion.KeyString(), r.WorstRegion.KeyString()))
	}

	writeTableSection(&sb, "## Seasonal Efficiency Ranking", r.SeasonalEfficiency)

	// Correlations
	sb.WriteString("## Key Correlations\n\n")
	if len(r.KeyCorrelations) > 0 {
		sb.WriteString("| Relationship | Coefficient | Strength |\n")
		sb.WriteString("|--------------|-------------|----------|\n")
		for _, kc := range r.KeyCorrelations {
			sb.WriteString(fmt.Sprintf("| %s | %.3f | %s |\n", kc.Label, kc.Coefficient, kc.Strength))
		}
	} else {
		sb.WriteString("No correlation data available.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Significance Tests\n\n")
	if len(r.Tests) > 0 {
		sb.WriteString("| Pair | Correlation | p-value | n | Result |\n")
		sb.WriteString("|------|-------------|---------|---|--------|\n")
		for _, test := range r.Tests {
			result := "Not Significant"
			if test.Significant {
				result = "Significant"
			}
			sb.WriteString(fmt.Sprintf("| %s vs %s | %.3f | %.4f | %d | %s |\n",
				test.X, test.Y, test.Coefficient, test.PValue, test.SampleSize, result))
		}
	} else {
		sb.WriteString("No significance tests performed.\n")
	}
	for _, skipped := range r.SkippedTests {
		sb.WriteString(fmt.Sprintf("- Skipped: %s\n", skipped))
	}
	sb.WriteString("\n")

	// Recommendations
	sb.WriteString("## Key Recommendations\n\n")
	if len(r.Recommendations) > 0 {
		for i, rec := range r.Recommendations {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, rec))
		}
	} else {
		sb.WriteString("No recommendations triggered.\n")
	}
	sb.WriteString("\n")

	// Executive summary
	sb.WriteString("## Executive Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Net Revenue | $%.2f |\n", r.Executive.TotalNetRevenue))
	sb.WriteString(fmt.Sprintf("| Total Units Sold | %d |\n", r.Executive.TotalUnitsSold))
	sb.WriteString(fmt.Sprintf("| Average Profit Margin | %s |\n", formatPercentCell(r.Executive.AvgProfitMargin)))
	sb.WriteString(fmt.Sprintf("| Overstock Value | $%.2f |\n", r.Executive.OverstockValue))
	sb.WriteString(fmt.Sprintf("| Estimated Savings | $%.2f |\n", r.Executive.PotentialSavings))
	sb.WriteString(fmt.Sprintf("| Optimization ROI | %.1f%% |\n", r.Executive.ROIPct))
	sb.WriteString("\n")

	if len(r.Executive.TopCategories) > 0 {
		sb.WriteString("Top categories by revenue:\n\n")
		for i, tc := range r.Executive.TopCategories {
			sb.WriteString(fmt.Sprintf("%d. %s: $%.2f\n", i+1, tc.Category, tc.Revenue))
		}
		sb.WriteString("\n")
	}

	// Errors
	if len(r.Errors) > 0 {
		sb.WriteString("## Analysis Errors\n\n")
		for _, e := range r.Errors {
			sb.WriteString(fmt.Sprintf("- %s\n", e))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// writeTableSection renders one grouped table under a heading. Nil tables
// render a placeholder line so the section order stays stable.
func writeTableSection(sb *strings.Builder, heading string, t *analytics.GroupedTable) {
	sb.WriteString(heading + "\n\n")
	if t == nil || len(t.Rows) == 0 {
		sb.WriteString("No data available.\n\n")
		return
	}

	header := append(append([]string{}, t.KeyNames...), t.ColumnNames...)
	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat("---|", len(header)) + "\n")

	for i := range t.Rows {
		row := &t.Rows[i]
		fields := append([]string{}, row.Key...)
		for _, cell := range row.Cells {
			fields = append(fields, formatCell(cell, "%.2f"))
		}
		sb.WriteString("| " + strings.Join(fields, " | ") + " |\n")
	}
	sb.WriteString("\n")
}

// formatCell renders a reduced value, showing N/A for undefined cells
// (means over zero usable samples).
func formatCell(c analytics.Cell, format string) string {
	if !c.Defined {
		return "N/A"
	}
	return fmt.Sprintf(format, c.Value)
}

// formatPercentCell renders a fraction cell as a percentage.
func formatPercentCell(c analytics.Cell) string {
	if !c.Defined {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", c.Value*100)
}
