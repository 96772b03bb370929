package catalog

// clusterCities maps game cluster ids to city display names.
var clusterCities = map[string]string{
	"0000": "Thetford",
	"1000": "Lymhurst",
	"2000": "Bridgewatch",
	"3004": "Martlock",
	"4000": "Fort Sterling",
	"3003": "Caerleon",
}

// Crafting bonuses are keyed by the refined category even when the raw
// form is being refined, so raw-resource subcategories get remapped
// before any lookup.
var refinedSubcategory = map[string]string{
	"ore":   "metalbar",
	"wood":  "planks",
	"hide":  "leather",
	"fiber": "cloth",
	"rock":  "stoneblock",
}

// RefinedSubcategory maps a raw-resource subcategory to its refined
// equivalent; other subcategories pass through unchanged.
func RefinedSubcategory(name string) string {
	if refined, ok := refinedSubcategory[name]; ok {
		return refined
	}
	return name
}

// buildCraftingBonuses extracts the per-city crafting bonus table:
// city name -> item subcategory -> bonus fraction. Locations that are
// not royal cities (islands, hideouts) are dropped.
func buildCraftingBonuses(locations []rawCraftingLocation) map[string]map[string]float64 {
	bonuses := make(map[string]map[string]float64)
	for _, loc := range locations {
		city, ok := clusterCities[loc.ClusterID]
		if !ok {
			continue
		}
		byCategory := make(map[string]float64, len(loc.CraftingModifier))
		for _, mod := range loc.CraftingModifier {
			if mod.Name == "" {
				continue
			}
			byCategory[RefinedSubcategory(mod.Name)] = float64(mod.Value)
		}
		bonuses[city] = byCategory
	}
	return bonuses
}

// CraftingBonus returns the city's bonus for a subcategory, zero when the
// city has none recorded.
func (d *Data) CraftingBonus(cityName, subcategory string) float64 {
	return d.CraftingBonuses[cityName][RefinedSubcategory(subcategory)]
}

// CraftableSubcategories lists every subcategory with a recorded bonus in
// at least one city.
func (d *Data) CraftableSubcategories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, byCategory := range d.CraftingBonuses {
		for subcategory := range byCategory {
			if !seen[subcategory] {
				seen[subcategory] = true
				out = append(out, subcategory)
			}
		}
	}
	return out
}
