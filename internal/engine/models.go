package engine

import (
	"time"

	"github.com/Amongalen/albion-profit-calculator/internal/catalog"
)

// IngredientDetail explains where one ingredient of the winning plan is
// bought and what it ends up costing.
type IngredientDetail struct {
	ItemID                 string  `json:"item_id"`
	ItemName               string  `json:"item_name"`
	Quantity               int     `json:"quantity"`
	SourceCity             string  `json:"source_city"`
	LocalPrice             float64 `json:"local_price"`
	TotalCost              float64 `json:"total_cost"`
	TotalCostWithTransport float64 `json:"total_cost_with_transport"`
	TotalCostWithReturns   float64 `json:"total_cost_with_returns"`
}

// ProfitReport is the ranked output record for one recipe under one
// transport policy and focus setting.
type ProfitReport struct {
	ProductID          string             `json:"product_id"`
	ProductName        string             `json:"product_name"`
	ProductTier        string             `json:"product_tier"`
	ProductSubcategory string             `json:"product_subcategory"`
	SubcategoryName    string             `json:"subcategory_name"`
	ProductQuantity    int                `json:"product_quantity"`
	RecipeKind         catalog.RecipeKind `json:"recipe_kind"`

	ProductionCity    string  `json:"production_city"`
	DestinationCity   string  `json:"destination_city"`
	FinalProductPrice float64 `json:"final_product_price"`

	IngredientsTotalCost  float64 `json:"ingredients_total_cost"`
	ProfitWithoutJournals float64 `json:"profit_without_journals"`
	ProfitPerJournal      float64 `json:"profit_per_journal"`
	JournalsFilled        float64 `json:"journals_filled"`
	ProfitWithJournals    float64 `json:"profit_with_journals"`
	ProfitPercentage      float64 `json:"profit_percentage"`

	Ingredients []IngredientDetail `json:"ingredients"`
}

// Batch is one published, sorted report list for a calculation key.
type Batch struct {
	Key       string         `json:"key"`
	UpdatedAt time.Time      `json:"updated_at"`
	Reports   []ProfitReport `json:"reports"`
}
