// Package catalog loads the static game data and builds the immutable
// Item/Recipe graph every calculation reads from.
//
// Inputs are the converted game-data dumps in the data directory:
//
//	items.json             item, recipe, enchantment and journal records
//	craftingmodifiers.json per-city crafting bonus table
//	item_names.json        optional id -> display name table
//	crafting_fame.json     optional id -> crafting fame table
//	shop_categories.json   optional category id -> display name table
//
// Only items.json is mandatory; everything else degrades gracefully.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Amongalen/albion-profit-calculator/internal/logger"
)

// Data is the read-only catalog shared by all downstream calculations.
type Data struct {
	Items            map[string]*Item
	Journals         map[string]*Journal // item id -> journal it fills
	CraftingBonuses  map[string]map[string]float64
	CategoryNames    map[string]string
	CraftingRecipes  []Recipe
	UpgradeRecipes   []Recipe
	TransportRecipes []Recipe
}

// Load reads and builds the catalog from dataDir.
// Individual malformed records are skipped; an unreadable items.json is
// the only fatal condition.
func Load(dataDir string) (*Data, error) {
	var itemsFile rawItemsFile
	if err := readJSON(filepath.Join(dataDir, "items.json"), &itemsFile); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	names := readOptionalStringMap(filepath.Join(dataDir, "item_names.json"))
	fame := readOptionalFloatMap(filepath.Join(dataDir, "crafting_fame.json"))
	categories := readOptionalStringMap(filepath.Join(dataDir, "shop_categories.json"))

	var modifiersFile rawModifiersFile
	if err := readJSON(filepath.Join(dataDir, "craftingmodifiers.json"), &modifiersFile); err != nil {
		logger.Warn("Catalog", fmt.Sprintf("No crafting modifiers: %v", err))
	}

	raws := collectRawItems(itemsFile)
	items, skipped := buildItems(raws, names, fame)

	d := &Data{
		Items:           items,
		Journals:        buildJournals(itemsFile.Items.JournalItem),
		CraftingBonuses: buildCraftingBonuses(modifiersFile.CraftingModifiers.CraftingLocation),
		CategoryNames:   categories,
	}
	d.groupRecipes()

	logger.Section("Catalog")
	logger.Stats("Items", len(d.Items))
	logger.Stats("Skipped", skipped)
	logger.Stats("Crafting", len(d.CraftingRecipes))
	logger.Stats("Upgrade", len(d.UpgradeRecipes))
	logger.Stats("Transport", len(d.TransportRecipes))
	logger.Stats("Journals", len(d.Journals))
	return d, nil
}

func collectRawItems(f rawItemsFile) []rawItem {
	var raws []rawItem
	raws = append(raws, f.Items.SimpleItem...)
	raws = append(raws, f.Items.ConsumableItem...)
	raws = append(raws, f.Items.EquipmentItem...)
	raws = append(raws, f.Items.Weapon...)
	raws = append(raws, f.Items.Mount...)
	raws = append(raws, f.Items.FurnitureItem...)
	return raws
}

func (d *Data) groupRecipes() {
	for _, item := range d.Items {
		for _, recipe := range item.Recipes {
			switch recipe.Kind {
			case Crafting:
				d.CraftingRecipes = append(d.CraftingRecipes, recipe)
			case Upgrade:
				d.UpgradeRecipes = append(d.UpgradeRecipes, recipe)
			case Transport:
				d.TransportRecipes = append(d.TransportRecipes, recipe)
			}
		}
	}
	sortRecipes(d.CraftingRecipes)
	sortRecipes(d.UpgradeRecipes)
	sortRecipes(d.TransportRecipes)
}

// sortRecipes gives every pass a stable iteration order; map iteration
// would otherwise make batch output order depend on the run.
func sortRecipes(recipes []Recipe) {
	sort.Slice(recipes, func(i, j int) bool {
		return recipes[i].ResultItemID < recipes[j].ResultItemID
	})
}

// RecipesOfKind returns the prebuilt recipe list for a kind.
func (d *Data) RecipesOfKind(kind RecipeKind) []Recipe {
	switch kind {
	case Crafting:
		return d.CraftingRecipes
	case Upgrade:
		return d.UpgradeRecipes
	case Transport:
		return d.TransportRecipes
	}
	return nil
}

// PriceItemIDs returns every item id whose market price the calculator
// needs: all catalog items plus the full-journal variants.
func (d *Data) PriceItemIDs() []string {
	seen := make(map[string]bool, len(d.Items))
	ids := make([]string, 0, len(d.Items))
	for id := range d.Items {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, journal := range d.Journals {
		id := journal.ItemID + "_FULL"
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ItemName returns the display name, falling back to the id.
func (d *Data) ItemName(id string) string {
	if item, ok := d.Items[id]; ok {
		return item.Name
	}
	return id
}

// ItemSubcategory returns the item's subcategory, empty when unknown.
func (d *Data) ItemSubcategory(id string) string {
	if item, ok := d.Items[id]; ok {
		return item.Subcategory
	}
	return ""
}

// ItemCategory returns the item's category, empty when unknown.
func (d *Data) ItemCategory(id string) string {
	if item, ok := d.Items[id]; ok {
		return item.Category
	}
	return ""
}

// ItemCraftingFame returns the fame earned per craft of the item.
func (d *Data) ItemCraftingFame(id string) float64 {
	if item, ok := d.Items[id]; ok {
		return item.CraftingFame
	}
	return 0
}

// CategoryName returns the display name for a category id, empty when
// no localization is loaded for it.
func (d *Data) CategoryName(categoryID string) string {
	return d.CategoryNames[categoryID]
}

func readJSON(path string, v interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func readOptionalStringMap(path string) map[string]string {
	m := make(map[string]string)
	if err := readJSON(path, &m); err != nil {
		logger.Warn("Catalog", fmt.Sprintf("Optional file %s not loaded", filepath.Base(path)))
	}
	return m
}

func readOptionalFloatMap(path string) map[string]float64 {
	m := make(map[string]float64)
	if err := readJSON(path, &m); err != nil {
		logger.Warn("Catalog", fmt.Sprintf("Optional file %s not loaded", filepath.Base(path)))
	}
	return m
}
