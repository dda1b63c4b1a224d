package aggregation

import (
	"database/sql"

	"retaildash/model"
)

// SupplyPositions computes weeks of supply, the overstock flag and the
// stock status for every SKU-location's latest snapshot.
//
// Velocity is the trailing average weekly units. A pair with no stock has
// zero weeks of supply. A pair with stock and no trailing sales is Infinite
// and overstocked; its WeeksOfSupply is the sentinel.
func SupplyPositions(ds model.Dataset, opts Options) []model.SupplyPosition {
	opts = opts.withDefaults(ds)
	return supplyPositions(newIndex(ds, opts))
}

func supplyPositions(idx *index) []model.SupplyPosition {
	out := make([]model.SupplyPosition, 0, len(idx.snapshots))
	for _, inv := range idx.snapshots {
		k := pairKey{inv.SKU, inv.GymID}
		p := idx.products[inv.SKU]
		pos := model.SupplyPosition{
			SKU:            inv.SKU,
			ProductName:    p.Name,
			Category:       p.Category,
			VendorID:       p.VendorID,
			GymID:          inv.GymID,
			Region:         idx.gyms[inv.GymID].Region,
			OnHand:         inv.OnHand,
			TrailingUnits:  idx.trailing[k],
			AvgWeeklySales: idx.velocity(k),
			ValueAtCost:    p.UnitCost.Mul(qty(inv.OnHand)),
			ValueAtRetail:  p.UnitPrice.Mul(qty(inv.OnHand)),
		}
		pos.WeeksOfSupply, pos.Infinite = WeeksOfSupply(inv.OnHand, pos.AvgWeeklySales)
		pos.Overstock = pos.Infinite || (pos.WeeksOfSupply.Valid && pos.WeeksOfSupply.Float64 > idx.opts.OverstockWeeks)
		pos.Status = stockStatus(pos, idx.opts)
		out = append(out, pos)
	}
	return out
}

// WeeksOfSupply divides on-hand by weekly velocity. It reports infinite
// (with an invalid value) instead of dividing by zero velocity.
func WeeksOfSupply(onHand int, weeklyVelocity float64) (wos sql.NullFloat64, infinite bool) {
	if onHand <= 0 {
		return valid(0), false
	}
	if weeklyVelocity <= 0 {
		return na, true
	}
	return valid(float64(onHand) / weeklyVelocity), false
}

func stockStatus(pos model.SupplyPosition, opts Options) model.StockStatus {
	switch {
	case pos.OnHand <= 0:
		return model.StatusOutOfStock
	case pos.Overstock:
		return model.StatusOverstock
	case pos.WeeksOfSupply.Float64 < opts.CriticalWeeks:
		return model.StatusCriticalLow
	case pos.WeeksOfSupply.Float64 < opts.LowWeeks:
		return model.StatusLow
	}
	return model.StatusInStock
}
