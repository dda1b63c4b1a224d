package database

import (
	"database/sql"
	"fmt"
	"time"

	"retaildash/aggregation"
	"retaildash/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// RunMeta describes where a run's data came from.
type RunMeta struct {
	Seed   uint64
	Source string
}

// Run is a row of the runs table.
type Run struct {
	RunID     string `db:"run_id" json:"runId"`
	CreatedAt string `db:"created_at" json:"createdAt"`
	AsOf      string `db:"as_of" json:"asOf"`
	Seed      int64  `db:"seed" json:"seed"`
	Source    string `db:"source" json:"source"`
}

// SaveRun stores the dataset and the report's history rows under a new
// run ID in a single transaction.
func (s *Store) SaveRun(ds model.Dataset, report *aggregation.Report, meta RunMeta) (string, error) {
	runID := uuid.NewString()
	asOf := report.Options.AsOf.Format(model.DateLayout)
	start := time.Now()

	tx, err := s.db.Beginx()
	if err != nil {
		return "", fmt.Errorf("failed to begin run transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs (run_id, created_at, as_of, seed, source) VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), asOf, int64(meta.Seed), meta.Source); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	steps := []struct {
		name string
		fn   func(*sqlx.Tx, string) error
	}{
		{"gym_locations", func(tx *sqlx.Tx, id string) error { return insertGymsInTx(tx, id, ds.Gyms) }},
		{"vendors", func(tx *sqlx.Tx, id string) error { return insertVendorsInTx(tx, id, ds.Vendors) }},
		{"product_catalog", func(tx *sqlx.Tx, id string) error { return insertProductsInTx(tx, id, ds.Products) }},
		{"sales_data", func(tx *sqlx.Tx, id string) error { return insertSalesInTx(tx, id, ds.Sales) }},
		{"inventory_data", func(tx *sqlx.Tx, id string) error { return insertInventoryInTx(tx, id, ds.Inventory) }},
		{"purchase_orders", func(tx *sqlx.Tx, id string) error { return insertPurchaseOrdersInTx(tx, id, ds.PurchaseOrders) }},
		{"history", func(tx *sqlx.Tx, id string) error { return insertHistoryInTx(tx, id, asOf, report) }},
	}
	for _, step := range steps {
		if err := step.fn(tx, runID); err != nil {
			return "", fmt.Errorf("failed to store %s: %w", step.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	zap.L().Info("run stored",
		zap.String("run_id", runID),
		zap.Int("sales", len(ds.Sales)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return runID, nil
}

func insertGymsInTx(tx *sqlx.Tx, runID string, gyms []model.GymLocation) error {
	stmt, err := tx.Prepare(`INSERT INTO gym_locations (run_id, gym_id, gym_name, city, state, region, size, is_open) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare gym insert: %w", err)
	}
	defer stmt.Close()
	for _, g := range gyms {
		if _, err := stmt.Exec(runID, g.GymID, g.Name, g.City, g.State, g.Region, g.Size, g.Open); err != nil {
			return fmt.Errorf("failed to insert gym %s: %w", g.GymID, err)
		}
	}
	return nil
}

func insertVendorsInTx(tx *sqlx.Tx, runID string, vendors []model.Vendor) error {
	stmt, err := tx.Prepare(`INSERT INTO vendors (run_id, vendor_id, vendor_name, lead_time_days, min_order, reliability) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare vendor insert: %w", err)
	}
	defer stmt.Close()
	for _, v := range vendors {
		if _, err := stmt.Exec(runID, v.VendorID, v.Name, v.LeadTimeDays, v.MinOrder, v.Reliability); err != nil {
			return fmt.Errorf("failed to insert vendor %s: %w", v.VendorID, err)
		}
	}
	return nil
}

func insertProductsInTx(tx *sqlx.Tx, runID string, products []model.Product) error {
	stmt, err := tx.Prepare(`
		INSERT INTO product_catalog (run_id, sku, product_name, category, subcategory, vendor_id, unit_cost, unit_price, size_run)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare product insert: %w", err)
	}
	defer stmt.Close()
	for _, p := range products {
		if _, err := stmt.Exec(runID, p.SKU, p.Name, p.Category, p.Subcategory, p.VendorID,
			p.UnitCost.String(), p.UnitPrice.String(), p.SizeRun); err != nil {
			return fmt.Errorf("failed to insert product %s: %w", p.SKU, err)
		}
	}
	return nil
}

func insertSalesInTx(tx *sqlx.Tx, runID string, sales []model.Sale) error {
	stmt, err := tx.Prepare(`
		INSERT INTO sales_data (run_id, row_no, transaction_id, sku, gym_id, sale_date, quantity, unit_price, unit_cost, discount_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare sale insert: %w", err)
	}
	defer stmt.Close()
	for i, sl := range sales {
		if _, err := stmt.Exec(runID, i, sl.TransactionID, sl.SKU, sl.GymID, sl.Date.Format(model.DateLayout),
			sl.Quantity, sl.UnitPrice.String(), sl.UnitCost.String(), sl.DiscountPct); err != nil {
			return fmt.Errorf("failed to insert sale %s: %w", sl.TransactionID, err)
		}
	}
	return nil
}

func insertInventoryInTx(tx *sqlx.Tx, runID string, inventory []model.InventorySnapshot) error {
	stmt, err := tx.Prepare(`
		INSERT INTO inventory_data (run_id, sku, gym_id, as_of, on_hand, par_level, last_receipt_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare inventory insert: %w", err)
	}
	defer stmt.Close()
	for _, inv := range inventory {
		if _, err := stmt.Exec(runID, inv.SKU, inv.GymID, inv.AsOf.Format(model.DateLayout),
			inv.OnHand, inv.ParLevel, nullDate(inv.LastReceiptDate)); err != nil {
			return fmt.Errorf("failed to insert snapshot %s@%s: %w", inv.SKU, inv.GymID, err)
		}
	}
	return nil
}

func insertPurchaseOrdersInTx(tx *sqlx.Tx, runID string, orders []model.PurchaseOrder) error {
	header, err := tx.Prepare(`
		INSERT INTO purchase_orders (run_id, row_no, po_id, vendor_id, order_date, expected_delivery, actual_delivery, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare purchase order insert: %w", err)
	}
	defer header.Close()
	line, err := tx.Prepare(`INSERT INTO po_lines (run_id, po_id, line_no, sku, quantity, unit_cost) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare po line insert: %w", err)
	}
	defer line.Close()

	for i, po := range orders {
		if _, err := header.Exec(runID, i, po.POID, po.VendorID, po.OrderDate.Format(model.DateLayout),
			po.ExpectedDelivery.Format(model.DateLayout), nullDate(po.ActualDelivery), string(po.Status)); err != nil {
			return fmt.Errorf("failed to insert purchase order %s: %w", po.POID, err)
		}
		for n, l := range po.Lines {
			if _, err := line.Exec(runID, po.POID, n, l.SKU, l.Quantity, l.UnitCost.String()); err != nil {
				return fmt.Errorf("failed to insert line %d of %s: %w", n, po.POID, err)
			}
		}
	}
	return nil
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(model.DateLayout), Valid: true}
}
