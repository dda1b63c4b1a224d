package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"retaildash/model"

	"github.com/shopspring/decimal"
)

// ErrRunNotFound is returned for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

type saleRow struct {
	TransactionID string          `db:"transaction_id"`
	SKU           string          `db:"sku"`
	GymID         string          `db:"gym_id"`
	Date          string          `db:"sale_date"`
	Quantity      int             `db:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price"`
	UnitCost      decimal.Decimal `db:"unit_cost"`
	DiscountPct   int             `db:"discount_pct"`
}

type snapshotRow struct {
	SKU             string         `db:"sku"`
	GymID           string         `db:"gym_id"`
	AsOf            string         `db:"as_of"`
	OnHand          int            `db:"on_hand"`
	ParLevel        int            `db:"par_level"`
	LastReceiptDate sql.NullString `db:"last_receipt_date"`
}

type orderRow struct {
	POID             string         `db:"po_id"`
	VendorID         string         `db:"vendor_id"`
	OrderDate        string         `db:"order_date"`
	ExpectedDelivery string         `db:"expected_delivery"`
	ActualDelivery   sql.NullString `db:"actual_delivery"`
	Status           string         `db:"status"`
}

// LoadDataset reads a stored run's raw tables back into a Dataset, in the
// order they were saved.
func (s *Store) LoadDataset(runID string) (model.Dataset, error) {
	var ds model.Dataset
	var n int
	if err := s.db.Get(&n, `SELECT COUNT(*) FROM runs WHERE run_id = ?`, runID); err != nil {
		return ds, fmt.Errorf("failed to look up run %s: %w", runID, err)
	}
	if n == 0 {
		return ds, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	if err := s.db.Select(&ds.Gyms, `
		SELECT gym_id, gym_name, city, state, region, size, is_open
		FROM gym_locations WHERE run_id = ? ORDER BY rowid`, runID); err != nil {
		return ds, fmt.Errorf("failed to load gyms: %w", err)
	}
	if err := s.db.Select(&ds.Vendors, `
		SELECT vendor_id, vendor_name, lead_time_days, min_order, reliability
		FROM vendors WHERE run_id = ? ORDER BY rowid`, runID); err != nil {
		return ds, fmt.Errorf("failed to load vendors: %w", err)
	}
	if err := s.db.Select(&ds.Products, `
		SELECT sku, product_name, category, subcategory, vendor_id, unit_cost, unit_price, size_run
		FROM product_catalog WHERE run_id = ? ORDER BY rowid`, runID); err != nil {
		return ds, fmt.Errorf("failed to load products: %w", err)
	}

	var sales []saleRow
	if err := s.db.Select(&sales, `
		SELECT transaction_id, sku, gym_id, sale_date, quantity, unit_price, unit_cost, discount_pct
		FROM sales_data WHERE run_id = ? ORDER BY row_no`, runID); err != nil {
		return ds, fmt.Errorf("failed to load sales: %w", err)
	}
	for _, r := range sales {
		d, err := model.ParseDate(r.Date)
		if err != nil {
			return ds, fmt.Errorf("sale %s: %w", r.TransactionID, err)
		}
		ds.Sales = append(ds.Sales, model.Sale{
			TransactionID: r.TransactionID,
			SKU:           r.SKU,
			GymID:         r.GymID,
			Date:          d,
			Quantity:      r.Quantity,
			UnitPrice:     r.UnitPrice,
			UnitCost:      r.UnitCost,
			DiscountPct:   r.DiscountPct,
		})
	}

	var snaps []snapshotRow
	if err := s.db.Select(&snaps, `
		SELECT sku, gym_id, as_of, on_hand, par_level, last_receipt_date
		FROM inventory_data WHERE run_id = ? ORDER BY rowid`, runID); err != nil {
		return ds, fmt.Errorf("failed to load inventory: %w", err)
	}
	for _, r := range snaps {
		asOf, err := model.ParseDate(r.AsOf)
		if err != nil {
			return ds, fmt.Errorf("snapshot %s@%s: %w", r.SKU, r.GymID, err)
		}
		received, err := parseNullDate(r.LastReceiptDate)
		if err != nil {
			return ds, fmt.Errorf("snapshot %s@%s: %w", r.SKU, r.GymID, err)
		}
		ds.Inventory = append(ds.Inventory, model.InventorySnapshot{
			SKU:             r.SKU,
			GymID:           r.GymID,
			OnHand:          r.OnHand,
			AsOf:            asOf,
			ParLevel:        r.ParLevel,
			LastReceiptDate: received,
		})
	}

	orders, err := s.loadOrders(runID)
	if err != nil {
		return ds, err
	}
	ds.PurchaseOrders = orders
	return ds, nil
}

func (s *Store) loadOrders(runID string) ([]model.PurchaseOrder, error) {
	var rows []orderRow
	if err := s.db.Select(&rows, `
		SELECT po_id, vendor_id, order_date, expected_delivery, actual_delivery, status
		FROM purchase_orders WHERE run_id = ? ORDER BY row_no`, runID); err != nil {
		return nil, fmt.Errorf("failed to load purchase orders: %w", err)
	}
	var lines []model.POLine
	if err := s.db.Select(&lines, `
		SELECT po_id, sku, quantity, unit_cost
		FROM po_lines WHERE run_id = ? ORDER BY po_id, line_no`, runID); err != nil {
		return nil, fmt.Errorf("failed to load po lines: %w", err)
	}
	linesByPO := make(map[string][]model.POLine)
	for _, l := range lines {
		linesByPO[l.POID] = append(linesByPO[l.POID], l)
	}

	var out []model.PurchaseOrder
	for _, r := range rows {
		po := model.PurchaseOrder{POID: r.POID, VendorID: r.VendorID, Status: model.POStatus(r.Status), Lines: linesByPO[r.POID]}
		var err error
		if po.OrderDate, err = model.ParseDate(r.OrderDate); err != nil {
			return nil, fmt.Errorf("purchase order %s: %w", r.POID, err)
		}
		if po.ExpectedDelivery, err = model.ParseDate(r.ExpectedDelivery); err != nil {
			return nil, fmt.Errorf("purchase order %s: %w", r.POID, err)
		}
		if po.ActualDelivery, err = parseNullDate(r.ActualDelivery); err != nil {
			return nil, fmt.Errorf("purchase order %s: %w", r.POID, err)
		}
		out = append(out, po)
	}
	return out, nil
}

func parseNullDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := model.ParseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
