package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/Amongalen/albion-profit-calculator/internal/cities"
	"github.com/Amongalen/albion-profit-calculator/internal/market"
)

// SavePrices upserts the raw records of one fetched chunk. Empty city
// records are stored too; "the feed said nothing" is itself a result
// worth keeping over an error row.
func (d *DB) SavePrices(records map[string]market.RawItemPrices) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := d.sql.Begin()
	if err != nil {
		return fmt.Errorf("save prices: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO price_snapshots
		(item_id, city, sell_price_min, avg_price_24h, items_sold, updated_at)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("save prices: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for itemID, record := range records {
		for city, cityRecord := range record {
			if _, err := stmt.Exec(itemID, city,
				cityRecord.SellPriceMin, cityRecord.AvgPrice24h, cityRecord.ItemsSold, now); err != nil {
				tx.Rollback()
				return fmt.Errorf("save prices: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save prices: %w", err)
	}
	return nil
}

// LoadPrices returns the stored records for the given items. Items never
// stored are simply absent from the result.
func (d *DB) LoadPrices(itemIDs []string) (map[string]market.RawItemPrices, error) {
	if len(itemIDs) == 0 {
		return map[string]market.RawItemPrices{}, nil
	}
	placeholders := strings.Repeat("?,", len(itemIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(itemIDs))
	for i, id := range itemIDs {
		args[i] = id
	}

	rows, err := d.sql.Query(`
		SELECT item_id, city, sell_price_min, avg_price_24h, items_sold
		FROM price_snapshots WHERE item_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	defer rows.Close()

	records := make(map[string]market.RawItemPrices)
	for rows.Next() {
		var itemID string
		var city int
		var cityRecord market.CityRecord
		if err := rows.Scan(&itemID, &city,
			&cityRecord.SellPriceMin, &cityRecord.AvgPrice24h, &cityRecord.ItemsSold); err != nil {
			return nil, fmt.Errorf("load prices: %w", err)
		}
		if city < 0 || city >= cities.Count {
			continue
		}
		record := records[itemID]
		record[city] = cityRecord
		records[itemID] = record
	}
	return records, rows.Err()
}
