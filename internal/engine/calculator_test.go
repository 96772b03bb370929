package engine

import (
	"context"
	"testing"

	"github.com/Amongalen/albion-profit-calculator/internal/catalog"
	"github.com/Amongalen/albion-profit-calculator/internal/config"
	"github.com/Amongalen/albion-profit-calculator/internal/market"
)

// fakeSource serves fixed raw records: a flat 24h average per item in
// every city, which the estimator passes through unchanged.
type fakeSource struct {
	avgByItem map[string]float64
	calls     int
}

func (s *fakeSource) Records(ctx context.Context, itemIDs []string) (map[string]market.RawItemPrices, error) {
	s.calls++
	records := make(map[string]market.RawItemPrices)
	for _, id := range itemIDs {
		avg, ok := s.avgByItem[id]
		if !ok {
			continue
		}
		var record market.RawItemPrices
		for city := range record {
			record[city] = market.CityRecord{AvgPrice24h: avg, ItemsSold: 10}
		}
		records[id] = record
	}
	return records, nil
}

// fakeStore is an in-memory ReportStore.
type fakeStore struct {
	batches map[string]Batch
}

func (s *fakeStore) SaveBatch(batch Batch) error {
	if s.batches == nil {
		s.batches = make(map[string]Batch)
	}
	s.batches[batch.Key] = batch
	return nil
}

func (s *fakeStore) LoadBatches() ([]Batch, error) {
	out := make([]Batch, 0, len(s.batches))
	for _, batch := range s.batches {
		out = append(out, batch)
	}
	return out, nil
}

func calculatorData() *catalog.Data {
	d := &catalog.Data{
		Items: map[string]*catalog.Item{
			"T4_X":       {ID: "T4_X", Name: "Hauled Good"},
			"T4_PRODUCT": {ID: "T4_PRODUCT", Name: "Product", Subcategory: "planks", CraftingFame: 25},
			"T4_ING":     {ID: "T4_ING", Name: "Ingredient"},
			"T4_X@1":     {ID: "T4_X@1", Name: "Enchanted Good", BaseItemID: "T4_X"},
			"T4_RUNE":    {ID: "T4_RUNE", Name: "Rune"},
		},
		Journals:        map[string]*catalog.Journal{},
		CraftingBonuses: map[string]map[string]float64{},
		CraftingRecipes: []catalog.Recipe{{
			ResultItemID:   "T4_PRODUCT",
			Kind:           catalog.Crafting,
			ResultQuantity: 1,
			Ingredients:    []catalog.Ingredient{{ItemID: "T4_ING", Quantity: 2, MaxReturnAmount: 2}},
		}},
		UpgradeRecipes: []catalog.Recipe{{
			ResultItemID:   "T4_X@1",
			Kind:           catalog.Upgrade,
			ResultQuantity: 1,
			Ingredients: []catalog.Ingredient{
				{ItemID: "T4_RUNE", Quantity: 96, MaxReturnAmount: 96},
				{ItemID: "T4_X", Quantity: 1, MaxReturnAmount: 0},
			},
		}},
		TransportRecipes: []catalog.Recipe{{
			ResultItemID:   "T4_X",
			Kind:           catalog.Transport,
			ResultQuantity: 1,
			Ingredients:    []catalog.Ingredient{{ItemID: "T4_X", Quantity: 1, MaxReturnAmount: 0}},
		}},
	}
	return d
}

func calculatorSource() *fakeSource {
	return &fakeSource{avgByItem: map[string]float64{
		"T4_X":       100,
		"T4_X@1":     500,
		"T4_PRODUCT": 1000,
		"T4_ING":     100,
		"T4_RUNE":    2,
	}}
}

// Every published key: transport under two policies, upgrade under all
// four (PER_CITY expands to six), crafting under all four with and
// without focus.
const wantKeyCount = 2 + (3 + 6) + 2*(3+6)

func TestRefresh_PublishesAllGroups(t *testing.T) {
	c := New(calculatorData(), calculatorSource(), nil, config.Default())
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	c.mu.RLock()
	got := len(c.batches)
	c.mu.RUnlock()
	if got != wantKeyCount {
		t.Errorf("published %d keys, want %d", got, wantKeyCount)
	}

	reports, at, ok := c.Reports(catalog.Crafting, PolicyNoTravel, 0, false, "")
	if !ok {
		t.Fatal("crafting/no-travel batch missing")
	}
	if at.IsZero() {
		t.Error("zero publish time")
	}
	if len(reports) != 1 || reports[0].ProductID != "T4_PRODUCT" {
		t.Fatalf("reports = %+v", reports)
	}
}

func TestReports_PerCityAndCategoryFilter(t *testing.T) {
	c := New(calculatorData(), calculatorSource(), nil, config.Default())
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	for city := 0; city < 6; city++ {
		if _, _, ok := c.Reports(catalog.Crafting, PolicyPerCity, city, true, ""); !ok {
			t.Errorf("per-city batch missing for city %d", city)
		}
	}

	matched, _, ok := c.Reports(catalog.Crafting, PolicyNoTravel, 0, false, "planks")
	if !ok || len(matched) != 1 {
		t.Fatalf("category filter dropped the matching report: %v", matched)
	}
	none, _, ok := c.Reports(catalog.Crafting, PolicyNoTravel, 0, false, "leather")
	if !ok || len(none) != 0 {
		t.Errorf("category filter kept a non-matching report: %v", none)
	}
}

func TestReports_UnknownKeyBeforeRefresh(t *testing.T) {
	c := New(calculatorData(), calculatorSource(), nil, config.Default())
	if _, _, ok := c.Reports(catalog.Crafting, PolicyTravel, 0, false, ""); ok {
		t.Error("reports available before any refresh")
	}
}

func TestRefresh_PersistsAndRestores(t *testing.T) {
	store := &fakeStore{}
	c := New(calculatorData(), calculatorSource(), store, config.Default())
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(store.batches) != wantKeyCount {
		t.Fatalf("store has %d batches, want %d", len(store.batches), wantKeyCount)
	}

	// A fresh calculator on the same store serves the old results
	// before its first refresh.
	restored := New(calculatorData(), calculatorSource(), store, config.Default())
	reports, _, ok := restored.Reports(catalog.Transport, PolicyTravel, 0, false, "")
	if !ok {
		t.Fatal("restored calculator has no transport batch")
	}
	if len(reports) != 1 || reports[0].ProductID != "T4_X" {
		t.Errorf("restored reports = %+v", reports)
	}
}

func TestCalculationKeys(t *testing.T) {
	if got := calculationKey(catalog.Crafting, PolicyTravel, true); got != "CRAFTING_TRAVEL_WITH_FOCUS" {
		t.Errorf("key = %q", got)
	}
	if got := calculationKey(catalog.Upgrade, PolicyNoRisk, false); got != "UPGRADE_NO_RISK_NO_FOCUS" {
		t.Errorf("key = %q", got)
	}
	base := calculationKey(catalog.Crafting, PolicyPerCity, false)
	if got := perCityKey(base, 0); got != "CRAFTING_PER_CITY_NO_FOCUS_FORT_STERLING" {
		t.Errorf("per-city key = %q", got)
	}
}
