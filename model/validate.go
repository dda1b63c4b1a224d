package model

import (
	"errors"
	"fmt"
)

// ErrSchemaViolation marks a row that breaks a table invariant.
var ErrSchemaViolation = errors.New("schema violation")

// SchemaError describes the offending row.
type SchemaError struct {
	Table  string
	Row    int
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s row %d: %s: %s", e.Table, e.Row, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrSchemaViolation }

func violation(table string, row int, field, format string, args ...interface{}) error {
	return &SchemaError{Table: table, Row: row, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ValidateSchema checks the per-row invariants of every table: non-negative
// quantities and money, delivery dates not before order dates, unique keys
// and at most one snapshot per SKU, gym and as-of date. It returns the first
// violation found.
func ValidateSchema(ds Dataset) error {
	seen := make(map[string]bool)
	for i, g := range ds.Gyms {
		if g.GymID == "" {
			return violation("gym_locations", i, "gym_id", "empty")
		}
		if seen[g.GymID] {
			return violation("gym_locations", i, "gym_id", "duplicate %q", g.GymID)
		}
		seen[g.GymID] = true
	}

	seen = make(map[string]bool)
	for i, v := range ds.Vendors {
		if v.VendorID == "" {
			return violation("vendors", i, "vendor_id", "empty")
		}
		if seen[v.VendorID] {
			return violation("vendors", i, "vendor_id", "duplicate %q", v.VendorID)
		}
		if v.LeadTimeDays < 0 {
			return violation("vendors", i, "lead_time_days", "negative (%d)", v.LeadTimeDays)
		}
		seen[v.VendorID] = true
	}

	seen = make(map[string]bool)
	for i, p := range ds.Products {
		if p.SKU == "" {
			return violation("product_catalog", i, "sku", "empty")
		}
		if seen[p.SKU] {
			return violation("product_catalog", i, "sku", "duplicate %q", p.SKU)
		}
		if p.UnitCost.IsNegative() {
			return violation("product_catalog", i, "unit_cost", "negative (%s)", p.UnitCost)
		}
		if p.UnitPrice.IsNegative() {
			return violation("product_catalog", i, "unit_price", "negative (%s)", p.UnitPrice)
		}
		seen[p.SKU] = true
	}

	seen = make(map[string]bool)
	for i, s := range ds.Sales {
		if s.TransactionID != "" {
			if seen[s.TransactionID] {
				return violation("sales_data", i, "transaction_id", "duplicate %q", s.TransactionID)
			}
			seen[s.TransactionID] = true
		}
		if s.Quantity < 0 {
			return violation("sales_data", i, "quantity", "negative (%d)", s.Quantity)
		}
		if s.UnitPrice.IsNegative() {
			return violation("sales_data", i, "unit_price", "negative (%s)", s.UnitPrice)
		}
		if s.UnitCost.IsNegative() {
			return violation("sales_data", i, "unit_cost", "negative (%s)", s.UnitCost)
		}
		if s.DiscountPct < 0 || s.DiscountPct > 100 {
			return violation("sales_data", i, "discount_pct", "out of range (%d)", s.DiscountPct)
		}
	}

	seen = make(map[string]bool)
	for i, inv := range ds.Inventory {
		key := inv.SKU + "|" + inv.GymID + "|" + inv.AsOf.Format(DateLayout)
		if seen[key] {
			return violation("inventory_data", i, "sku,gym_id,as_of", "duplicate snapshot %s", key)
		}
		seen[key] = true
		if inv.OnHand < 0 {
			return violation("inventory_data", i, "on_hand", "negative (%d)", inv.OnHand)
		}
		if inv.ParLevel < 0 {
			return violation("inventory_data", i, "par_level", "negative (%d)", inv.ParLevel)
		}
		if inv.LastReceiptDate != nil && inv.LastReceiptDate.After(inv.AsOf) {
			return violation("inventory_data", i, "last_receipt_date", "after as_of")
		}
	}

	seen = make(map[string]bool)
	for i, po := range ds.PurchaseOrders {
		if seen[po.POID] {
			return violation("purchase_orders", i, "po_id", "duplicate %q", po.POID)
		}
		seen[po.POID] = true
		if !po.Status.Valid() {
			return violation("purchase_orders", i, "status", "unknown status %q", po.Status)
		}
		if po.ExpectedDelivery.Before(po.OrderDate) {
			return violation("purchase_orders", i, "expected_delivery", "before order_date")
		}
		if po.ActualDelivery != nil && po.ActualDelivery.Before(po.OrderDate) {
			return violation("purchase_orders", i, "actual_delivery", "before order_date")
		}
		if po.Status == POStatusReceived && po.ActualDelivery == nil {
			return violation("purchase_orders", i, "actual_delivery", "missing on received order")
		}
		if po.Status != POStatusReceived && po.ActualDelivery != nil {
			return violation("purchase_orders", i, "status", "%q order has an actual delivery date", po.Status)
		}
		for _, l := range po.Lines {
			if l.Quantity < 0 {
				return violation("po_lines", i, "quantity", "negative (%d) on %s", l.Quantity, l.SKU)
			}
			if l.UnitCost.IsNegative() {
				return violation("po_lines", i, "unit_cost", "negative (%s) on %s", l.UnitCost, l.SKU)
			}
		}
	}
	return nil
}
