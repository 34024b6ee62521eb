// Package ingest parses retail inventory CSV extracts into domain records.
//
// The parser is tolerant by design: real-world extracts arrive with
// inconsistent header casing, mixed date layouts, and blank numeric
// cells. Malformed rows are skipped with a warning instead of failing
// the whole load.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"retail-inventory-lab/internal/domain"
	"retail-inventory-lab/internal/idhash"
)

// ParseWarning represents a non-fatal issue encountered during CSV parsing.
type ParseWarning struct {
	Row     int
	Message string
}

// ParseResult contains the parsed records alongside any warnings.
type ParseResult struct {
	Records  []*domain.InventoryRecord
	Warnings []ParseWarning
}

// Column names after header normalization.
const (
	colDate              = "date"
	colStoreID           = "store_id"
	colProductID         = "product_id"
	colCategory          = "category"
	colRegion            = "region"
	colInventoryLevel    = "inventory_level"
	colUnitsSold         = "units_sold"
	colUnitsOrdered      = "units_ordered"
	colPrice             = "price"
	colDiscount          = "discount"
	colDemandForecast    = "demand_forecast"
	colCompetitorPricing = "competitor_pricing"
	colWeatherCondition  = "weather_condition"
	colSeasonality       = "seasonality"
	colHolidayPromotion  = "holiday_promotion"
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	time.RFC3339,
}

// Parse reads a retail inventory CSV and returns domain records plus
// per-row warnings. Rows missing any of date, store_id or product_id are
// skipped; blank numeric cells default to zero.
func Parse(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	// Handle ragged rows ourselves instead of failing the file.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: no header row found")
		}
		return nil, fmt.Errorf("read header row: %w", err)
	}

	for i, h := range headers {
		headers[i] = normalizeHeader(h)
	}
	headerCount := len(headers)

	var result ParseResult
	rowNum := 1 // 1-indexed, header is row 1

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++

		if err != nil {
			result.Warnings = append(result.Warnings, ParseWarning{
				Row:     rowNum,
				Message: fmt.Sprintf("parse error: %v", err),
			})
			continue
		}

		if len(row) != headerCount {
			if len(row) < headerCount {
				result.Warnings = append(result.Warnings, ParseWarning{
					Row:     rowNum,
					Message: fmt.Sprintf("row has %d columns, expected %d; padding with empty values", len(row), headerCount),
				})
				padded := make([]string, headerCount)
				copy(padded, row)
				row = padded
			} else {
				result.Warnings = append(result.Warnings, ParseWarning{
					Row:     rowNum,
					Message: fmt.Sprintf("row has %d columns, expected %d; truncating extra columns", len(row), headerCount),
				})
				row = row[:headerCount]
			}
		}

		cells := make(map[string]string, headerCount)
		for i, h := range headers {
			cells[h] = strings.TrimSpace(row[i])
		}

		rec, warns := buildRecord(rowNum, cells)
		result.Warnings = append(result.Warnings, warns...)
		if rec != nil {
			result.Records = append(result.Records, rec)
		}
	}

	if len(result.Records) == 0 {
		return nil, fmt.Errorf("file contains no usable data rows")
	}

	return &result, nil
}

// buildRecord converts one row's cells into an InventoryRecord. Returns nil
// when the row lacks the natural key.
func buildRecord(rowNum int, cells map[string]string) (*domain.InventoryRecord, []ParseWarning) {
	var warns []ParseWarning
	warn := func(format string, args ...interface{}) {
		warns = append(warns, ParseWarning{Row: rowNum, Message: fmt.Sprintf(format, args...)})
	}

	storeID := cells[colStoreID]
	productID := cells[colProductID]
	if storeID == "" || productID == "" {
		warn("missing store_id or product_id; skipping row")
		return nil, warns
	}

	date, err := parseDate(cells[colDate])
	if err != nil {
		warn("bad date %q: %v; skipping row", cells[colDate], err)
		return nil, warns
	}

	parseInt := func(col string) int {
		v := cells[col]
		if v == "" {
			return 0
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			// Some extracts render integer columns as floats.
			f, ferr := strconv.ParseFloat(v, 64)
			if ferr != nil {
				warn("bad integer in %s: %q, using 0", col, v)
				return 0
			}
			return int(f)
		}
		return n
	}

	parseFloat := func(col string) float64 {
		v := cells[col]
		if v == "" {
			return 0
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			warn("bad number in %s: %q, using 0", col, v)
			return 0
		}
		return f
	}

	rec := &domain.InventoryRecord{
		RecordID:          idhash.ComputeRecordID(storeID, productID, date),
		Date:              date,
		StoreID:           storeID,
		ProductID:         productID,
		Category:          cells[colCategory],
		Region:            cells[colRegion],
		Seasonality:       cells[colSeasonality],
		InventoryLevel:    parseInt(colInventoryLevel),
		UnitsSold:         parseInt(colUnitsSold),
		UnitsOrdered:      parseInt(colUnitsOrdered),
		Price:             parseFloat(colPrice),
		Discount:          parseFloat(colDiscount),
		DemandForecast:    parseFloat(colDemandForecast),
		CompetitorPricing: parseFloat(colCompetitorPricing),
		WeatherCondition:  cells[colWeatherCondition],
		HolidayPromotion:  parseBool(cells[colHolidayPromotion]),
	}

	return rec, warns
}

// normalizeHeader lowercases a header and replaces spaces with underscores,
// so "Inventory Level" and "inventory_level" resolve to the same column.
func normalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	h = strings.TrimPrefix(h, "\uFEFF") // BOM on the first header
	h = strings.ToLower(h)
	return strings.ReplaceAll(h, " ", "_")
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date layout")
}

// parseBool accepts the spellings seen in extracts: 1/0, true/false, yes/no.
func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
