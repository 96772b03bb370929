// Package market fetches raw per-city price observations from the
// albion-online-data project and turns them into one estimated price per
// item per city. Fetching is chunked, rate limited and cached; estimation
// is a pure function of the raw records.
package market

import (
	"github.com/Amongalen/albion-profit-calculator/internal/cities"
	"github.com/Amongalen/albion-profit-calculator/internal/nanmath"
)

// CityRecord is one city's raw market observation for an item.
// A zero-valued record means the feed had no activity for that city.
type CityRecord struct {
	SellPriceMin float64 `json:"sell_price_min"`
	AvgPrice24h  float64 `json:"avg_price_24h"`
	ItemsSold    float64 `json:"items_sold"`
}

// Empty reports whether the record carries no market signal at all.
func (r CityRecord) Empty() bool {
	return r.SellPriceMin == 0 && r.AvgPrice24h == 0 && r.ItemsSold == 0
}

// RawItemPrices holds one item's raw records for all six cities,
// indexed by city index.
type RawItemPrices [cities.Count]CityRecord

// PriceVector is one estimated price per city for a single item.
// Entries with no reliable estimate are missing (NaN).
type PriceVector [cities.Count]float64

// MissingVector returns a PriceVector with every entry missing.
func MissingVector() PriceVector {
	var v PriceVector
	for i := range v {
		v[i] = nanmath.Missing()
	}
	return v
}

// Mean returns the missing-aware mean of the vector's entries.
func (v PriceVector) Mean() float64 {
	return nanmath.Mean(v[:])
}

// AllMissing reports whether no city has an estimate.
func (v PriceVector) AllMissing() bool {
	return nanmath.AllMissing(v[:])
}
