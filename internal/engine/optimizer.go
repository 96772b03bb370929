package engine

import (
	"github.com/Amongalen/albion-profit-calculator/internal/catalog"
	"github.com/Amongalen/albion-profit-calculator/internal/cities"
	"github.com/Amongalen/albion-profit-calculator/internal/nanmath"
)

// calculation bundles the read-only inputs of one optimization pass.
// All fields are shared across goroutines without locking; nothing here
// is mutated while a pass runs.
type calculation struct {
	data    *catalog.Data
	prices  *Snapshot
	returns *ReturnRates
}

// bestDeal is the cheapest sourcing of one ingredient for one
// production city.
type bestDeal struct {
	cost   float64
	source int
}

// reportFor runs the full optimization for one recipe under one
// transport matrix. The second return is false when the recipe is
// infeasible under this policy: some ingredient is unobtainable
// everywhere, or no (destination, production) pair has a finite profit.
func (c calculation) reportFor(recipe catalog.Recipe, m Matrix, useFocus bool) (ProfitReport, bool) {
	costs, ok := c.ingredientCostMatrices(recipe, m, useFocus)
	if !ok {
		return ProfitReport{}, false
	}

	// Cheapest source per ingredient for each candidate production
	// city. A city where some ingredient has no finite route stays
	// missing in the totals and drops out of the profit matrix.
	deals := make([][]bestDeal, cities.Count)
	var totals [cities.Count]float64
	for prod := 0; prod < cities.Count; prod++ {
		deals[prod] = make([]bestDeal, len(costs))
		total := 0.0
		for i := range costs {
			cost, source := nanmath.Min(costs[i][prod][:])
			deals[prod][i] = bestDeal{cost: cost, source: source}
			total += cost
		}
		totals[prod] = total
	}

	resultPrices := c.prices.Vector(recipe.ResultItemID)
	quantity := float64(recipe.ResultQuantity)

	// profit[destination][production]: revenue of hauling the product
	// from the production city to the destination, minus the
	// production city's total ingredient cost. First finite maximum in
	// scan order wins; ties are not contractual.
	maxProfit := nanmath.Missing()
	destCity, prodCity := -1, -1
	for dest := 0; dest < cities.Count; dest++ {
		for prod := 0; prod < cities.Count; prod++ {
			profit := resultPrices[dest]*quantity/m[prod][dest] - totals[prod]
			if nanmath.IsMissing(profit) {
				continue
			}
			if destCity < 0 || profit > maxProfit {
				maxProfit = profit
				destCity, prodCity = dest, prod
			}
		}
	}
	if destCity < 0 {
		return ProfitReport{}, false
	}

	journal := c.journalProfitFor(recipe)
	finalProfit := maxProfit + journal.total

	details := make([]IngredientDetail, 0, len(recipe.Ingredients))
	totalCost := 0.0
	for i, ingredient := range recipe.Ingredients {
		deal := deals[prodCity][i]
		localPrice := c.prices.Vector(ingredient.ItemID)[deal.source]
		cost := float64(ingredient.Quantity) * localPrice
		details = append(details, IngredientDetail{
			ItemID:                 ingredient.ItemID,
			ItemName:               c.data.ItemName(ingredient.ItemID),
			Quantity:               ingredient.Quantity,
			SourceCity:             cities.Name(deal.source),
			LocalPrice:             nanmath.Round(localPrice, 2),
			TotalCost:              nanmath.Round(cost, 2),
			TotalCostWithTransport: nanmath.Round(cost*m[deal.source][prodCity], 2),
			TotalCostWithReturns:   nanmath.Round(deal.cost, 2),
		})
		totalCost += deal.cost
	}

	subcategory := c.data.ItemSubcategory(recipe.ResultItemID)
	return ProfitReport{
		ProductID:          recipe.ResultItemID,
		ProductName:        c.data.ItemName(recipe.ResultItemID),
		ProductTier:        catalog.TierOf(recipe.ResultItemID),
		ProductSubcategory: subcategory,
		SubcategoryName:    c.data.CategoryName(subcategory),
		ProductQuantity:    recipe.ResultQuantity,
		RecipeKind:         recipe.Kind,

		ProductionCity:    cities.Name(prodCity),
		DestinationCity:   cities.Name(destCity),
		FinalProductPrice: nanmath.Round(resultPrices[destCity], 2),

		IngredientsTotalCost:  nanmath.Round(totalCost, 2),
		ProfitWithoutJournals: nanmath.Round(maxProfit, 2),
		ProfitPerJournal:      nanmath.Round(journal.perJournal, 2),
		JournalsFilled:        nanmath.Round(journal.filled, 2),
		ProfitWithJournals:    nanmath.Round(finalProfit, 2),
		ProfitPercentage:      nanmath.Round(finalProfit/totalCost*100, 2),

		Ingredients: details,
	}, true
}

// ingredientCostMatrices builds, per ingredient, the 6x6 matrix of
// buying it in any source city for any production city: local price x
// quantity x transport multiplier, discounted by the production city's
// return rate for returnable crafting ingredients. Returns false when
// any ingredient has no finite entry at all, which makes the whole
// recipe infeasible under this matrix.
func (c calculation) ingredientCostMatrices(recipe catalog.Recipe, m Matrix, useFocus bool) ([]Matrix, bool) {
	consumed := c.returns.ConsumedFractions(recipe.ResultItemID, useFocus)
	costs := make([]Matrix, len(recipe.Ingredients))
	for i, ingredient := range recipe.Ingredients {
		prices := c.prices.Vector(ingredient.ItemID)
		discount := recipe.Kind == catalog.Crafting && ingredient.MaxReturnAmount != 0
		feasible := false
		for prod := 0; prod < cities.Count; prod++ {
			for src := 0; src < cities.Count; src++ {
				cost := prices[src] * float64(ingredient.Quantity) * m[prod][src]
				if discount {
					cost *= consumed[prod]
				}
				costs[i][prod][src] = cost
				if !nanmath.IsMissing(cost) {
					feasible = true
				}
			}
		}
		if !feasible {
			return nil, false
		}
	}
	return costs, true
}
