package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// enchantmentMarker separates the base item id from the enchantment level.
const enchantmentMarker = "@"

// Shop categories that never yield tradeable production goods.
// Subcategories in allowedSubcategories survive even inside these.
var excludedCategories = map[string]bool{
	"cosmetics": true,
	"token":     true,
	"trophies":  true,
	"farmables": true,
}

// Journals live under an excluded category but are needed for the
// journal profit stream, so they are explicitly allowed through.
var allowedSubcategories = map[string]bool{
	"journal": true,
}

// Subcategories dropped unconditionally.
var excludedSubcategories = map[string]bool{
	"unique":               true,
	"vanity":               true,
	"decoration_furniture": true,
	"repairkit":            true,
	"banner":               true,
	"flag":                 true,
}

func itemExcluded(raw rawItem) bool {
	if excludedSubcategories[raw.ShopSubcategory] {
		return true
	}
	if excludedCategories[raw.ShopCategory] && !allowedSubcategories[raw.ShopSubcategory] {
		return true
	}
	// Unique furniture rewards are not sold on the market even though
	// their subcategory looks ordinary.
	if raw.ShopCategory == "furniture" && strings.Contains(raw.UniqueName, "UNIQUE") {
		return true
	}
	return false
}

// buildItems turns raw catalog records into the Item/Recipe graph.
// Malformed records are skipped; names and crafting fame come from the
// side tables and default to the id / zero when absent.
func buildItems(raws []rawItem, names map[string]string, fame map[string]float64) (map[string]*Item, int) {
	items := make(map[string]*Item)
	skipped := 0
	for _, raw := range raws {
		if raw.UniqueName == "" {
			skipped++
			continue
		}
		if itemExcluded(raw) {
			skipped++
			continue
		}
		base := &Item{
			ID:           raw.UniqueName,
			Name:         itemName(raw.UniqueName, names),
			Category:     raw.ShopCategory,
			Subcategory:  raw.ShopSubcategory,
			Tier:         TierOf(raw.UniqueName),
			CraftingFame: fame[raw.UniqueName],
		}
		for _, req := range raw.CraftingRequirements {
			if recipe, ok := buildCraftingRecipe(base.ID, req); ok {
				base.Recipes = append(base.Recipes, recipe)
			}
		}
		items[base.ID] = base

		if raw.Enchantments == nil {
			continue
		}
		for _, ench := range raw.Enchantments.Enchantment {
			variant, ok := buildEnchantedVariant(base, ench, names, fame)
			if !ok {
				skipped++
				continue
			}
			items[variant.ID] = variant
		}
	}

	// Every concrete item can at least be hauled as-is.
	for _, item := range items {
		item.Recipes = append(item.Recipes, transportRecipe(item.ID))
	}
	return items, skipped
}

// buildEnchantedVariant clones the base item's data for one enchantment
// level, substituting the level-specific requirement blocks.
func buildEnchantedVariant(base *Item, ench rawEnchantment, names map[string]string, fame map[string]float64) (*Item, bool) {
	level := int(ench.EnchantmentLevel)
	if level <= 0 {
		return nil, false
	}
	id := EnchantedID(base.ID, level)
	variant := &Item{
		ID:           id,
		Name:         itemName(id, names),
		Category:     base.Category,
		Subcategory:  base.Subcategory,
		Tier:         base.Tier,
		BaseItemID:   base.ID,
		CraftingFame: fame[id],
	}
	for _, req := range ench.CraftingRequirements {
		if recipe, ok := buildCraftingRecipe(id, req); ok {
			variant.Recipes = append(variant.Recipes, recipe)
		}
	}
	if ench.UpgradeRequirements != nil {
		if recipe, ok := buildUpgradeRecipe(base.ID, level, *ench.UpgradeRequirements); ok {
			variant.Recipes = append(variant.Recipes, recipe)
		}
	}
	return variant, true
}

func buildCraftingRecipe(resultID string, req rawCraftingRequirements) (Recipe, bool) {
	if len(req.CraftResource) == 0 {
		return Recipe{}, false
	}
	quantity := int(req.AmountCrafted)
	if quantity < 1 {
		quantity = 1
	}
	recipe := Recipe{
		ResultItemID:   resultID,
		Kind:           Crafting,
		ResultQuantity: quantity,
		SilverCost:     float64(req.Silver),
	}
	for _, res := range req.CraftResource {
		ing, ok := buildIngredient(res)
		if !ok {
			return Recipe{}, false
		}
		recipe.Ingredients = append(recipe.Ingredients, ing)
	}
	return recipe, true
}

// buildUpgradeRecipe models enchanting an item up one level. Beyond the
// declared upgrade resources it always consumes one unit of the
// pre-upgrade form, which is never eligible for resource returns.
func buildUpgradeRecipe(baseID string, level int, req rawUpgradeRequirements) (Recipe, bool) {
	if len(req.UpgradeResource) == 0 {
		return Recipe{}, false
	}
	recipe := Recipe{
		ResultItemID:   EnchantedID(baseID, level),
		Kind:           Upgrade,
		ResultQuantity: 1,
	}
	for _, res := range req.UpgradeResource {
		ing, ok := buildIngredient(res)
		if !ok {
			return Recipe{}, false
		}
		recipe.Ingredients = append(recipe.Ingredients, ing)
	}
	recipe.Ingredients = append(recipe.Ingredients, Ingredient{
		ItemID:          PreUpgradeID(baseID, level),
		Quantity:        1,
		MaxReturnAmount: 0,
	})
	return recipe, true
}

func buildIngredient(res rawCraftResource) (Ingredient, bool) {
	if res.UniqueName == "" || res.Count <= 0 {
		return Ingredient{}, false
	}
	// An absent @maxreturnamount means returns apply normally; an
	// explicit 0 marks the ingredient as non-returnable.
	maxReturn := int(res.Count)
	if res.MaxReturnAmount != nil {
		maxReturn = int(*res.MaxReturnAmount)
	}
	return Ingredient{
		ItemID:          res.UniqueName,
		Quantity:        int(res.Count),
		MaxReturnAmount: maxReturn,
	}, true
}

func transportRecipe(itemID string) Recipe {
	return Recipe{
		ResultItemID:   itemID,
		Kind:           Transport,
		ResultQuantity: 1,
		Ingredients: []Ingredient{
			{ItemID: itemID, Quantity: 1, MaxReturnAmount: 0},
		},
	}
}

func itemName(id string, names map[string]string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}

// EnchantedID derives the id of an enchanted variant.
func EnchantedID(baseID string, level int) string {
	return fmt.Sprintf("%s%s%d", baseID, enchantmentMarker, level)
}

// PreUpgradeID returns the id of the form an upgrade to the given level
// consumes: the previous enchantment level, or the plain base for level 1.
func PreUpgradeID(baseID string, level int) string {
	if level <= 1 {
		return baseID
	}
	return EnchantedID(baseID, level-1)
}

// StripEnchantment removes the enchantment suffix from an item id.
func StripEnchantment(id string) string {
	if i := strings.Index(id, enchantmentMarker); i >= 0 {
		return id[:i]
	}
	return id
}

// TierOf derives the tier from the id prefix ("T4_PLANKS" -> "T4").
func TierOf(id string) string {
	if len(id) >= 2 && id[0] == 'T' {
		if _, err := strconv.Atoi(id[1:2]); err == nil {
			return id[:2]
		}
	}
	return ""
}
