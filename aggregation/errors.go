package aggregation

import (
	"errors"
	"fmt"

	"retaildash/model"
)

// ErrMissingReference marks a row whose foreign key is absent from its
// dimension table.
var ErrMissingReference = errors.New("missing reference")

// MissingReferenceError names the offending row and the dangling key.
type MissingReferenceError struct {
	Table string
	Row   int
	Field string
	Key   string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("%s row %d: %s %q not found", e.Table, e.Row, e.Field, e.Key)
}

func (e *MissingReferenceError) Unwrap() error { return ErrMissingReference }

// CheckReferences verifies every SKU, gym and vendor a row points at
// exists. The first dangling key is returned.
func CheckReferences(ds model.Dataset) error {
	gyms := make(map[string]bool, len(ds.Gyms))
	for _, g := range ds.Gyms {
		gyms[g.GymID] = true
	}
	vendors := make(map[string]bool, len(ds.Vendors))
	for _, v := range ds.Vendors {
		vendors[v.VendorID] = true
	}
	skus := make(map[string]bool, len(ds.Products))
	for i, p := range ds.Products {
		if !vendors[p.VendorID] {
			return &MissingReferenceError{Table: "product_catalog", Row: i, Field: "vendor_id", Key: p.VendorID}
		}
		skus[p.SKU] = true
	}

	for i, s := range ds.Sales {
		if !skus[s.SKU] {
			return &MissingReferenceError{Table: "sales_data", Row: i, Field: "sku", Key: s.SKU}
		}
		if !gyms[s.GymID] {
			return &MissingReferenceError{Table: "sales_data", Row: i, Field: "gym_id", Key: s.GymID}
		}
	}
	for i, inv := range ds.Inventory {
		if !skus[inv.SKU] {
			return &MissingReferenceError{Table: "inventory_data", Row: i, Field: "sku", Key: inv.SKU}
		}
		if !gyms[inv.GymID] {
			return &MissingReferenceError{Table: "inventory_data", Row: i, Field: "gym_id", Key: inv.GymID}
		}
	}
	for i, po := range ds.PurchaseOrders {
		if !vendors[po.VendorID] {
			return &MissingReferenceError{Table: "purchase_orders", Row: i, Field: "vendor_id", Key: po.VendorID}
		}
		for _, l := range po.Lines {
			if !skus[l.SKU] {
				return &MissingReferenceError{Table: "po_lines", Row: i, Field: "sku", Key: l.SKU}
			}
		}
	}
	return nil
}
