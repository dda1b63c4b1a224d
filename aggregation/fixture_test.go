package aggregation_test

import (
	"time"

	"retaildash/model"

	"github.com/shopspring/decimal"
)

var asOf = model.MustDate("2026-01-31")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func datePtr(s string) *time.Time {
	t := model.MustDate(s)
	return &t
}

// baseDataset is one vendor, one region with two gyms and two SKUs. G2 has
// no inventory rows.
func baseDataset() model.Dataset {
	return model.Dataset{
		Gyms: []model.GymLocation{
			{GymID: "G1", Name: "Gym One", Region: "West", Size: "Large", Open: true},
			{GymID: "G2", Name: "Gym Two", Region: "East", Size: "Medium", Open: true},
		},
		Vendors: []model.Vendor{
			{VendorID: "V1", Name: "Vendor One", LeadTimeDays: 14},
			{VendorID: "V2", Name: "Vendor Two", LeadTimeDays: 7},
		},
		Products: []model.Product{
			{SKU: "A", Name: "Alpha", Category: "Chalk", Subcategory: "Loose", VendorID: "V1", UnitCost: dec("5"), UnitPrice: dec("10")},
			{SKU: "B", Name: "Bravo", Category: "Climbing Shoes", Subcategory: "Beginner", VendorID: "V1", UnitCost: dec("90"), UnitPrice: dec("100")},
		},
	}
}

func sale(id, sku, gym, date string, q int, price, cost string) model.Sale {
	return model.Sale{
		TransactionID: id,
		SKU:           sku,
		GymID:         gym,
		Date:          model.MustDate(date),
		Quantity:      q,
		UnitPrice:     dec(price),
		UnitCost:      dec(cost),
	}
}

func snapshot(sku, gym string, onHand int) model.InventorySnapshot {
	return model.InventorySnapshot{SKU: sku, GymID: gym, OnHand: onHand, AsOf: asOf, ParLevel: 10}
}
