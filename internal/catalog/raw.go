package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The game data dump is XML converted to JSON: attributes carry an "@"
// prefix, numbers arrive as strings, and any repeated element may appear
// as either a single object or an array. The helpers below absorb that.

// list unmarshals a JSON value that may be either T or []T.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, (*[]T)(l))
	}
	var single T
	if err := json.Unmarshal(b, &single); err != nil {
		return err
	}
	*l = []T{single}
	return nil
}

// flexInt unmarshals "3", 3 or 3.0 into an int.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexInt(int(fl))
	return nil
}

// flexFloat unmarshals "3.5" or 3.5 into a float64.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(fl)
	return nil
}

type rawCraftResource struct {
	UniqueName      string   `json:"@uniquename"`
	Count           flexInt  `json:"@count"`
	MaxReturnAmount *flexInt `json:"@maxreturnamount"`
}

type rawCraftingRequirements struct {
	Silver        flexFloat              `json:"@silver"`
	AmountCrafted flexInt                `json:"@amountcrafted"`
	CraftResource list[rawCraftResource] `json:"craftresource"`
}

type rawUpgradeRequirements struct {
	UpgradeResource list[rawCraftResource] `json:"upgraderesource"`
}

type rawEnchantment struct {
	EnchantmentLevel     flexInt                       `json:"@enchantmentlevel"`
	CraftingRequirements list[rawCraftingRequirements] `json:"craftingrequirements"`
	UpgradeRequirements  *rawUpgradeRequirements       `json:"upgraderequirements"`
}

type rawItem struct {
	UniqueName           string                        `json:"@uniquename"`
	ShopCategory         string                        `json:"@shopcategory"`
	ShopSubcategory      string                        `json:"@shopsubcategory1"`
	CraftingRequirements list[rawCraftingRequirements] `json:"craftingrequirements"`
	Enchantments         *struct {
		Enchantment list[rawEnchantment] `json:"enchantment"`
	} `json:"enchantments"`
}

type rawJournalItem struct {
	UniqueName           string `json:"@uniquename"`
	MaxFame              flexInt `json:"@maxfame"`
	CraftingRequirements struct {
		Silver flexFloat `json:"@silver"`
	} `json:"craftingrequirements"`
	FameFillingMissions struct {
		CraftItemFame struct {
			ValidItem list[struct {
				ID string `json:"@id"`
			}] `json:"validitem"`
		} `json:"craftitemfame"`
	} `json:"famefillingmissions"`
}

type rawItemsFile struct {
	Items struct {
		SimpleItem     list[rawItem]        `json:"simpleitem"`
		ConsumableItem list[rawItem]        `json:"consumableitem"`
		EquipmentItem  list[rawItem]        `json:"equipmentitem"`
		Weapon         list[rawItem]        `json:"weapon"`
		Mount          list[rawItem]        `json:"mount"`
		FurnitureItem  list[rawItem]        `json:"furnitureitem"`
		JournalItem    list[rawJournalItem] `json:"journalitem"`
	} `json:"items"`
}

type rawCraftingModifier struct {
	Name  string    `json:"@name"`
	Value flexFloat `json:"@value"`
}

type rawCraftingLocation struct {
	ClusterID        string                    `json:"@clusterid"`
	CraftingModifier list[rawCraftingModifier] `json:"craftingmodifier"`
}

type rawModifiersFile struct {
	CraftingModifiers struct {
		CraftingLocation list[rawCraftingLocation] `json:"craftinglocation"`
	} `json:"craftingmodifiers"`
}
