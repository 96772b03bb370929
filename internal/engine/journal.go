package engine

import (
	"github.com/Amongalen/albion-profit-calculator/internal/catalog"
	"github.com/Amongalen/albion-profit-calculator/internal/nanmath"
)

// journalProfit is the secondary income from filling faction journals
// with the crafting fame a recipe yields.
type journalProfit struct {
	total      float64
	perJournal float64
	filled     float64
}

// fullJournalSuffix marks the filled variant of a journal item on the
// market.
const fullJournalSuffix = "_FULL"

// journalProfitFor values the fame of one craft. Only crafting earns
// fame; a missing full-journal price or a free empty journal zeroes the
// adjustment instead of poisoning an otherwise valid profit.
func (c calculation) journalProfitFor(recipe catalog.Recipe) journalProfit {
	if recipe.Kind != catalog.Crafting {
		return journalProfit{}
	}
	journal := c.data.JournalForItem(recipe.ResultItemID)
	if journal == nil {
		return journalProfit{}
	}
	fullPrice := c.prices.Vector(journal.ItemID + fullJournalSuffix).Mean()
	if nanmath.IsMissing(fullPrice) || journal.Cost == 0 {
		return journalProfit{}
	}
	perJournal := fullPrice - journal.Cost
	filled := c.data.ItemCraftingFame(recipe.ResultItemID) / journal.MaxFame
	return journalProfit{
		total:      perJournal * filled,
		perJournal: perJournal,
		filled:     filled,
	}
}
