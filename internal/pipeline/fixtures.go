package pipeline

import (
	"context"
	"time"

	"retail-inventory-lab/internal/domain"
	"retail-inventory-lab/internal/idhash"
	"retail-inventory-lab/internal/storage"
)

// LoadFixtures populates the inventory store with a small demonstration
// dataset: healthy movers, slow movers, overstock and dead stock spread
// over four categories, four regions and all seasons. Two rows violate
// the analyzability invariant on purpose so the total and analyzed
// counts differ in demo output.
func LoadFixtures(ctx context.Context, store storage.InventoryStore) error {
	return store.InsertBulk(ctx, FixtureRecords())
}

// FixtureRecords returns the demonstration dataset.
func FixtureRecords() []*domain.InventoryRecord {
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	records := []*domain.InventoryRecord{
		// Fast movers
		{
			Date: base, StoreID: "S001", ProductID: "P0001",
			Category: "Groceries", Region: "North", Seasonality: "Winter",
			InventoryLevel: 120, UnitsSold: 95, UnitsOrdered: 100,
			Price: 12.50, Discount: 0, DemandForecast: 98,
			CompetitorPricing: 12.10, WeatherCondition: "Snowy", HolidayPromotion: true,
		},
		{
			Date: base, StoreID: "S002", ProductID: "P0001",
			Category: "Groceries", Region: "East", Seasonality: "Winter",
			InventoryLevel: 90, UnitsSold: 70, UnitsOrdered: 80,
			Price: 12.50, Discount: 5, DemandForecast: 72,
			CompetitorPricing: 12.40, WeatherCondition: "Cloudy", HolidayPromotion: false,
		},
		{
			Date: base.AddDate(0, 0, 1), StoreID: "S001", ProductID: "P0002",
			Category: "Clothing", Region: "North", Seasonality: "Winter",
			InventoryLevel: 60, UnitsSold: 40, UnitsOrdered: 50,
			Price: 35.00, Discount: 10, DemandForecast: 45,
			CompetitorPricing: 33.00, WeatherCondition: "Snowy", HolidayPromotion: true,
		},

		// Normal movers
		{
			Date: base.AddDate(0, 2, 0), StoreID: "S003", ProductID: "P0003",
			Category: "Electronics", Region: "South", Seasonality: "Spring",
			InventoryLevel: 150, UnitsSold: 55, UnitsOrdered: 40,
			Price: 199.99, Discount: 0, DemandForecast: 60,
			CompetitorPricing: 205.00, WeatherCondition: "Sunny", HolidayPromotion: false,
		},
		{
			Date: base.AddDate(0, 2, 0), StoreID: "S004", ProductID: "P0004",
			Category: "Furniture", Region: "West", Seasonality: "Spring",
			InventoryLevel: 40, UnitsSold: 14, UnitsOrdered: 10,
			Price: 450.00, Discount: 15, DemandForecast: 12,
			CompetitorPricing: 430.00, WeatherCondition: "Rainy", HolidayPromotion: false,
		},
		{
			Date: base.AddDate(0, 5, 0), StoreID: "S002", ProductID: "P0005",
			Category: "Groceries", Region: "East", Seasonality: "Summer",
			InventoryLevel: 200, UnitsSold: 110, UnitsOrdered: 120,
			Price: 4.99, Discount: 0, DemandForecast: 115,
			CompetitorPricing: 5.10, WeatherCondition: "Sunny", HolidayPromotion: false,
		},

		// Slow movers: long days on hand, weak turnover
		{
			Date: base.AddDate(0, 5, 0), StoreID: "S003", ProductID: "P0006",
			Category: "Electronics", Region: "South", Seasonality: "Summer",
			InventoryLevel: 300, UnitsSold: 25, UnitsOrdered: 0,
			Price: 89.99, Discount: 20, DemandForecast: 30,
			CompetitorPricing: 79.99, WeatherCondition: "Sunny", HolidayPromotion: true,
		},
		{
			Date: base.AddDate(0, 8, 0), StoreID: "S004", ProductID: "P0007",
			Category: "Furniture", Region: "West", Seasonality: "Autumn",
			InventoryLevel: 80, UnitsSold: 9, UnitsOrdered: 0,
			Price: 320.00, Discount: 25, DemandForecast: 8,
			CompetitorPricing: 299.00, WeatherCondition: "Rainy", HolidayPromotion: false,
		},
		{
			Date: base.AddDate(0, 8, 0), StoreID: "S001", ProductID: "P0008",
			Category: "Clothing", Region: "North", Seasonality: "Autumn",
			InventoryLevel: 140, UnitsSold: 18, UnitsOrdered: 10,
			Price: 55.00, Discount: 30, DemandForecast: 20,
			CompetitorPricing: 49.00, WeatherCondition: "Cloudy", HolidayPromotion: true,
		},

		// Overstock: inventory far beyond sales
		{
			Date: base.AddDate(0, 5, 2), StoreID: "S005", ProductID: "P0009",
			Category: "Electronics", Region: "South", Seasonality: "Summer",
			InventoryLevel: 500, UnitsSold: 35, UnitsOrdered: 0,
			Price: 149.99, Discount: 10, DemandForecast: 40,
			CompetitorPricing: 139.99, WeatherCondition: "Sunny", HolidayPromotion: false,
		},
		{
			Date: base.AddDate(0, 8, 2), StoreID: "S005", ProductID: "P0010",
			Category: "Furniture", Region: "West", Seasonality: "Autumn",
			InventoryLevel: 260, UnitsSold: 12, UnitsOrdered: 0,
			Price: 210.00, Discount: 20, DemandForecast: 15,
			CompetitorPricing: 199.00, WeatherCondition: "Cloudy", HolidayPromotion: false,
		},

		// Dead stock: near-zero sales
		{
			Date: base.AddDate(0, 8, 3), StoreID: "S003", ProductID: "P0011",
			Category: "Electronics", Region: "South", Seasonality: "Autumn",
			InventoryLevel: 75, UnitsSold: 1, UnitsOrdered: 0,
			Price: 499.00, Discount: 40, DemandForecast: 2,
			CompetitorPricing: 450.00, WeatherCondition: "Rainy", HolidayPromotion: false,
		},
		{
			Date: base.AddDate(0, 11, 0), StoreID: "S004", ProductID: "P0012",
			Category: "Clothing", Region: "West", Seasonality: "Winter",
			InventoryLevel: 50, UnitsSold: 0, UnitsOrdered: 0,
			Price: 75.00, Discount: 50, DemandForecast: 1,
			CompetitorPricing: 65.00, WeatherCondition: "Snowy", HolidayPromotion: true,
		},

		// Not analyzable: zero inventory and zero price rows
		{
			Date: base.AddDate(0, 11, 1), StoreID: "S002", ProductID: "P0013",
			Category: "Groceries", Region: "East", Seasonality: "Winter",
			InventoryLevel: 0, UnitsSold: 0, UnitsOrdered: 60,
			Price: 3.49, Discount: 0, DemandForecast: 50,
			CompetitorPricing: 3.60, WeatherCondition: "Snowy", HolidayPromotion: false,
		},
		{
			Date: base.AddDate(0, 11, 1), StoreID: "S005", ProductID: "P0014",
			Category: "Clothing", Region: "South", Seasonality: "Winter",
			InventoryLevel: 30, UnitsSold: 5, UnitsOrdered: 0,
			Price: 0, Discount: 0, DemandForecast: 6,
			CompetitorPricing: 25.00, WeatherCondition: "Cloudy", HolidayPromotion: false,
		},
	}

	for _, r := range records {
		r.RecordID = idhash.ComputeRecordID(r.StoreID, r.ProductID, r.Date)
	}
	return records
}
