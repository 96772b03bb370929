package engine

import (
	"github.com/Amongalen/albion-profit-calculator/internal/catalog"
	"github.com/Amongalen/albion-profit-calculator/internal/cities"
	"github.com/Amongalen/albion-profit-calculator/internal/config"
	"github.com/Amongalen/albion-profit-calculator/internal/nanmath"
)

// ReturnRates computes the per-city resource-return discount for a
// crafted item's subcategory.
type ReturnRates struct {
	data       *catalog.Data
	baseBonus  float64
	focusBonus float64
}

// NewReturnRates binds the catalog's city bonus table to the configured
// base and focus bonuses.
func NewReturnRates(data *catalog.Data, cfg *config.Config) *ReturnRates {
	return &ReturnRates{
		data:       data,
		baseBonus:  cfg.BaseCraftingBonus,
		focusBonus: cfg.FocusBonus,
	}
}

// Rate returns the fraction of ingredients returned when crafting the
// given subcategory in the given city. The bonus stack feeds a
// diminishing-returns curve rather than applying linearly.
func (r *ReturnRates) Rate(cityName, subcategory string, useFocus bool) float64 {
	bonus := r.baseBonus + r.data.CraftingBonus(cityName, subcategory)
	if useFocus {
		bonus += r.focusBonus
	}
	return nanmath.Round(1-1/(1+bonus), 3)
}

// ConsumedFractions returns, per city, the fraction of ingredient cost
// actually spent after returns (1 - rate) when crafting itemID there.
func (r *ReturnRates) ConsumedFractions(itemID string, useFocus bool) [cities.Count]float64 {
	subcategory := r.data.ItemSubcategory(itemID)
	var v [cities.Count]float64
	for city := range v {
		v[city] = 1 - r.Rate(cities.Name(city), subcategory, useFocus)
	}
	return v
}
