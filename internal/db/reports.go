package db

import (
	"fmt"
	"time"

	"github.com/Amongalen/albion-profit-calculator/internal/catalog"
	"github.com/Amongalen/albion-profit-calculator/internal/engine"
)

// SaveBatch replaces the stored reports for one calculation key with a
// freshly published batch.
func (d *DB) SaveBatch(batch engine.Batch) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return fmt.Errorf("save batch %s: %w", batch.Key, err)
	}

	// Drop the previous batch for this key before inserting the new one.
	if _, err := tx.Exec(`DELETE FROM ingredient_details WHERE report_id IN
			(SELECT id FROM profit_reports WHERE batch_key = ?)`, batch.Key); err != nil {
		tx.Rollback()
		return fmt.Errorf("save batch %s: %w", batch.Key, err)
	}
	if _, err := tx.Exec(`DELETE FROM profit_reports WHERE batch_key = ?`, batch.Key); err != nil {
		tx.Rollback()
		return fmt.Errorf("save batch %s: %w", batch.Key, err)
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO report_batches (key, updated_at) VALUES (?, ?)`,
		batch.Key, batch.UpdatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		tx.Rollback()
		return fmt.Errorf("save batch %s: %w", batch.Key, err)
	}

	reportStmt, err := tx.Prepare(`INSERT INTO profit_reports (
		batch_key, position, product_id, product_name, product_tier,
		product_subcategory, subcategory_name, product_quantity, recipe_kind,
		production_city, destination_city, final_product_price,
		ingredients_total_cost, profit_without_journals, profit_per_journal,
		journals_filled, profit_with_journals, profit_percentage
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("save batch %s: %w", batch.Key, err)
	}
	defer reportStmt.Close()

	detailStmt, err := tx.Prepare(`INSERT INTO ingredient_details (
		report_id, item_id, item_name, quantity, source_city,
		local_price, total_cost, total_cost_with_transport, total_cost_with_returns
	) VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("save batch %s: %w", batch.Key, err)
	}
	defer detailStmt.Close()

	for position, report := range batch.Reports {
		res, err := reportStmt.Exec(
			batch.Key, position, report.ProductID, report.ProductName, report.ProductTier,
			report.ProductSubcategory, report.SubcategoryName, report.ProductQuantity, string(report.RecipeKind),
			report.ProductionCity, report.DestinationCity, report.FinalProductPrice,
			report.IngredientsTotalCost, report.ProfitWithoutJournals, report.ProfitPerJournal,
			report.JournalsFilled, report.ProfitWithJournals, report.ProfitPercentage,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("save batch %s: %w", batch.Key, err)
		}
		reportID, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("save batch %s: %w", batch.Key, err)
		}
		for _, detail := range report.Ingredients {
			if _, err := detailStmt.Exec(
				reportID, detail.ItemID, detail.ItemName, detail.Quantity, detail.SourceCity,
				detail.LocalPrice, detail.TotalCost, detail.TotalCostWithTransport, detail.TotalCostWithReturns,
			); err != nil {
				tx.Rollback()
				return fmt.Errorf("save batch %s: %w", batch.Key, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save batch %s: %w", batch.Key, err)
	}
	return nil
}

// LoadBatches returns every stored batch with its reports in publish
// order, for serving results across a restart.
func (d *DB) LoadBatches() ([]engine.Batch, error) {
	rows, err := d.sql.Query(`SELECT key, updated_at FROM report_batches`)
	if err != nil {
		return nil, fmt.Errorf("load batches: %w", err)
	}
	defer rows.Close()

	var batches []engine.Batch
	for rows.Next() {
		var batch engine.Batch
		var updatedAt string
		if err := rows.Scan(&batch.Key, &updatedAt); err != nil {
			return nil, fmt.Errorf("load batches: %w", err)
		}
		batch.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load batches: %w", err)
	}

	for i := range batches {
		reports, err := d.loadReports(batches[i].Key)
		if err != nil {
			return nil, err
		}
		batches[i].Reports = reports
	}
	return batches, nil
}

func (d *DB) loadReports(batchKey string) ([]engine.ProfitReport, error) {
	rows, err := d.sql.Query(`
		SELECT id, product_id, product_name, product_tier,
			product_subcategory, subcategory_name, product_quantity, recipe_kind,
			production_city, destination_city, final_product_price,
			ingredients_total_cost, profit_without_journals, profit_per_journal,
			journals_filled, profit_with_journals, profit_percentage
		FROM profit_reports WHERE batch_key = ? ORDER BY position`, batchKey)
	if err != nil {
		return nil, fmt.Errorf("load reports %s: %w", batchKey, err)
	}
	defer rows.Close()

	var reports []engine.ProfitReport
	var ids []int64
	for rows.Next() {
		var report engine.ProfitReport
		var id int64
		var kind string
		if err := rows.Scan(&id, &report.ProductID, &report.ProductName, &report.ProductTier,
			&report.ProductSubcategory, &report.SubcategoryName, &report.ProductQuantity, &kind,
			&report.ProductionCity, &report.DestinationCity, &report.FinalProductPrice,
			&report.IngredientsTotalCost, &report.ProfitWithoutJournals, &report.ProfitPerJournal,
			&report.JournalsFilled, &report.ProfitWithJournals, &report.ProfitPercentage); err != nil {
			return nil, fmt.Errorf("load reports %s: %w", batchKey, err)
		}
		report.RecipeKind = catalog.RecipeKind(kind)
		reports = append(reports, report)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load reports %s: %w", batchKey, err)
	}

	for i, id := range ids {
		details, err := d.loadIngredients(id)
		if err != nil {
			return nil, err
		}
		reports[i].Ingredients = details
	}
	return reports, nil
}

func (d *DB) loadIngredients(reportID int64) ([]engine.IngredientDetail, error) {
	rows, err := d.sql.Query(`
		SELECT item_id, item_name, quantity, source_city,
			local_price, total_cost, total_cost_with_transport, total_cost_with_returns
		FROM ingredient_details WHERE report_id = ? ORDER BY id`, reportID)
	if err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}
	defer rows.Close()

	var details []engine.IngredientDetail
	for rows.Next() {
		var detail engine.IngredientDetail
		if err := rows.Scan(&detail.ItemID, &detail.ItemName, &detail.Quantity, &detail.SourceCity,
			&detail.LocalPrice, &detail.TotalCost, &detail.TotalCostWithTransport, &detail.TotalCostWithReturns); err != nil {
			return nil, fmt.Errorf("load ingredients: %w", err)
		}
		details = append(details, detail)
	}
	return details, rows.Err()
}
