package catalog

import "strings"

// Crafting professions whose journals fill from crafting fame. Gathering
// and fishing journals exist in the same data block but fill differently.
var craftingJournalTypes = map[string]bool{
	"WARRIOR":   true,
	"HUNTER":    true,
	"MAGE":      true,
	"TOOLMAKER": true,
}

// buildJournals indexes crafting journals by every item id that counts
// toward filling them. Journal ids look like "T4_JOURNAL_WARRIOR".
func buildJournals(raws []rawJournalItem) map[string]*Journal {
	byItem := make(map[string]*Journal)
	for _, raw := range raws {
		craftingType := journalCraftingType(raw.UniqueName)
		if !craftingJournalTypes[craftingType] {
			continue
		}
		if raw.MaxFame <= 0 {
			continue
		}
		journal := &Journal{
			ItemID:       raw.UniqueName,
			CraftingType: craftingType,
			MaxFame:      float64(raw.MaxFame),
			Cost:         float64(raw.CraftingRequirements.Silver),
		}
		for _, valid := range raw.FameFillingMissions.CraftItemFame.ValidItem {
			if valid.ID != "" {
				byItem[valid.ID] = journal
			}
		}
	}
	return byItem
}

func journalCraftingType(journalID string) string {
	parts := strings.Split(journalID, "_")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

// JournalForItem returns the journal the given item's crafting fame fills,
// or nil. Enchanted variants fill the same journal as their base form.
func (d *Data) JournalForItem(itemID string) *Journal {
	return d.Journals[StripEnchantment(itemID)]
}
