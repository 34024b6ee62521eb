package domain

import "time"

// InventoryRecord is one store/product/date observation from the retail
// inventory extract. Corresponds to the retail_inventory table.
type InventoryRecord struct {
	RecordID string // deterministic hash of (store_id, product_id, date)

	Date        time.Time
	StoreID     string
	ProductID   string
	Category    string
	Region      string
	Seasonality string

	InventoryLevel int     // on-hand units, >= 0
	UnitsSold      int     // units sold in the period, >= 0
	UnitsOrdered   int     // replenishment orders placed
	Price          float64 // unit price, > 0 for analyzable rows
	Discount       float64 // percent, 0-100

	DemandForecast    float64
	CompetitorPricing float64
	WeatherCondition  string
	HolidayPromotion  bool
}

// Analyzable reports whether the record satisfies the ingest invariant
// required by the metric formulas: positive inventory and positive price.
func (r *InventoryRecord) Analyzable() bool {
	return r.InventoryLevel > 0 && r.Price > 0
}
