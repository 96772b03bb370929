package catalog

// RecipeKind distinguishes how a recipe produces its result.
type RecipeKind string

const (
	// Crafting combines ingredients into a new item and earns crafting fame.
	Crafting RecipeKind = "CRAFTING"
	// Upgrade raises an item's enchantment level by consuming the
	// pre-upgrade form plus upgrade resources.
	Upgrade RecipeKind = "UPGRADE"
	// Transport is the synthesized relocation recipe: one unit in, one
	// unit of the same item out. Every item has exactly one.
	Transport RecipeKind = "TRANSPORT"
)

// Ingredient is one input of a recipe.
// MaxReturnAmount is the maximum number of units the resource-return
// mechanic may refund; 0 means returns never apply to this ingredient
// (silver placeholders, upgrade bases, artifacts).
type Ingredient struct {
	ItemID          string `json:"item_id"`
	Quantity        int    `json:"quantity"`
	MaxReturnAmount int    `json:"max_return_amount"`
}

// Recipe is an immutable production rule built once at catalog load.
type Recipe struct {
	ResultItemID   string       `json:"result_item_id"`
	Kind           RecipeKind   `json:"kind"`
	ResultQuantity int          `json:"result_quantity"`
	SilverCost     float64      `json:"silver_cost"`
	Ingredients    []Ingredient `json:"ingredients"`
}

// Item is one craftable/upgradable/transportable good.
// Enchanted variants are separate Items whose BaseItemID points back at
// the unenchanted base.
type Item struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Subcategory  string   `json:"subcategory"`
	Tier         string   `json:"tier"`
	BaseItemID   string   `json:"base_item_id,omitempty"`
	CraftingFame float64  `json:"crafting_fame"`
	Recipes      []Recipe `json:"recipes"`
}

// Journal is a faction journal that fills with crafting fame and is sold
// once full. Keyed in Data.Journals by each item id that counts toward it.
type Journal struct {
	ItemID       string  `json:"item_id"`
	CraftingType string  `json:"crafting_type"`
	MaxFame      float64 `json:"max_fame"`
	Cost         float64 `json:"cost"` // empty-journal silver cost
}
