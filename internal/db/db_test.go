package db

import (
	"database/sql"
	"testing"
	"time"

	"github.com/Amongalen/albion-profit-calculator/internal/catalog"
	"github.com/Amongalen/albion-profit-calculator/internal/engine"
	"github.com/Amongalen/albion-profit-calculator/internal/market"

	_ "modernc.org/sqlite"
)

// openTestDB opens an in-memory SQLite DB and runs migrations (for testing only).
func openTestDB(t *testing.T) *DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func TestDB_PricesRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	records := map[string]market.RawItemPrices{
		"T4_PLANKS": {
			{SellPriceMin: 110, AvgPrice24h: 100, ItemsSold: 42},
			{AvgPrice24h: 95, ItemsSold: 7},
		},
	}
	if err := d.SavePrices(records); err != nil {
		t.Fatalf("SavePrices: %v", err)
	}

	loaded, err := d.LoadPrices([]string{"T4_PLANKS", "T4_WOOD"})
	if err != nil {
		t.Fatalf("LoadPrices: %v", err)
	}
	record, ok := loaded["T4_PLANKS"]
	if !ok {
		t.Fatal("T4_PLANKS missing after round trip")
	}
	if record[0].SellPriceMin != 110 || record[0].AvgPrice24h != 100 || record[0].ItemsSold != 42 {
		t.Errorf("city 0 record = %+v", record[0])
	}
	if record[1].AvgPrice24h != 95 {
		t.Errorf("city 1 record = %+v", record[1])
	}
	if _, ok := loaded["T4_WOOD"]; ok {
		t.Error("never-stored item came back")
	}
}

func TestDB_SavePricesOverwrites(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	first := map[string]market.RawItemPrices{"T4_ORE": {{SellPriceMin: 50}}}
	second := map[string]market.RawItemPrices{"T4_ORE": {{SellPriceMin: 60}}}
	if err := d.SavePrices(first); err != nil {
		t.Fatal(err)
	}
	if err := d.SavePrices(second); err != nil {
		t.Fatal(err)
	}

	loaded, err := d.LoadPrices([]string{"T4_ORE"})
	if err != nil {
		t.Fatal(err)
	}
	if got := loaded["T4_ORE"][0].SellPriceMin; got != 60 {
		t.Errorf("SellPriceMin = %v, want 60 (latest)", got)
	}
}

func sampleBatch(key string, productID string) engine.Batch {
	return engine.Batch{
		Key:       key,
		UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Reports: []engine.ProfitReport{{
			ProductID:             productID,
			ProductName:           "Product",
			ProductTier:           "T4",
			ProductSubcategory:    "planks",
			ProductQuantity:       1,
			RecipeKind:            catalog.Crafting,
			ProductionCity:        "Lymhurst",
			DestinationCity:       "Caerleon",
			FinalProductPrice:     1000,
			IngredientsTotalCost:  219.4,
			ProfitWithoutJournals: 780.6,
			ProfitWithJournals:    1030.6,
			ProfitPercentage:      469.74,
			Ingredients: []engine.IngredientDetail{{
				ItemID:                 "T4_WOOD",
				ItemName:               "Wood",
				Quantity:               2,
				SourceCity:             "Fort Sterling",
				LocalPrice:             100,
				TotalCost:              200,
				TotalCostWithTransport: 210,
				TotalCostWithReturns:   177.87,
			}},
		}},
	}
}

func TestDB_BatchRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if err := d.SaveBatch(sampleBatch("CRAFTING_TRAVEL_NO_FOCUS", "T4_PLANKS")); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	batches, err := d.LoadBatches()
	if err != nil {
		t.Fatalf("LoadBatches: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	batch := batches[0]
	if batch.Key != "CRAFTING_TRAVEL_NO_FOCUS" {
		t.Errorf("key = %q", batch.Key)
	}
	if !batch.UpdatedAt.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("updated at = %v", batch.UpdatedAt)
	}
	if len(batch.Reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(batch.Reports))
	}
	report := batch.Reports[0]
	if report.ProductID != "T4_PLANKS" || report.RecipeKind != catalog.Crafting {
		t.Errorf("report = %+v", report)
	}
	if report.ProfitPercentage != 469.74 {
		t.Errorf("ProfitPercentage = %v", report.ProfitPercentage)
	}
	if len(report.Ingredients) != 1 || report.Ingredients[0].ItemID != "T4_WOOD" {
		t.Fatalf("ingredients = %+v", report.Ingredients)
	}
	if report.Ingredients[0].TotalCostWithReturns != 177.87 {
		t.Errorf("ingredient cost = %v", report.Ingredients[0].TotalCostWithReturns)
	}
}

func TestDB_SaveBatchReplacesPrevious(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if err := d.SaveBatch(sampleBatch("TRANSPORT_TRAVEL_NO_FOCUS", "T4_OLD")); err != nil {
		t.Fatal(err)
	}
	if err := d.SaveBatch(sampleBatch("TRANSPORT_TRAVEL_NO_FOCUS", "T4_NEW")); err != nil {
		t.Fatal(err)
	}

	batches, err := d.LoadBatches()
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) != 1 || len(batches[0].Reports) != 1 {
		t.Fatalf("batches = %+v", batches)
	}
	if got := batches[0].Reports[0].ProductID; got != "T4_NEW" {
		t.Errorf("ProductID = %q, want T4_NEW (old batch must be gone)", got)
	}

	var orphans int
	if err := d.sql.QueryRow(`SELECT COUNT(*) FROM ingredient_details`).Scan(&orphans); err != nil {
		t.Fatal(err)
	}
	if orphans != 1 {
		t.Errorf("%d ingredient rows, want 1 (no orphans)", orphans)
	}
}
