package aggregation

import (
	"retaildash/model"
)

// KPIs computes the headline numbers of the executive dashboard.
func KPIs(ds model.Dataset, opts Options) model.KPIs {
	opts = opts.withDefaults(ds)
	idx := newIndex(ds, opts)
	return kpis(idx, margin(idx), supplyPositions(idx), salesByCategory(idx), salesByGym(idx))
}

func kpis(idx *index, m MarginSummary, positions []model.SupplyPosition, byCategory, byGym []model.SalesRow) model.KPIs {
	k := model.KPIs{
		TotalRevenue:   m.Total.Revenue,
		TotalCOGS:      m.Total.Cost,
		GrossMargin:    m.Total.Margin,
		GrossMarginPct: m.Total.MarginPct,
		UnitsSold:      m.Total.Units,
		Pairs:          len(positions),
		OnTimeRate:     overallOnTime(idx),
		POCount:        len(idx.ds.PurchaseOrders),
	}

	var inStock int
	for _, pos := range positions {
		k.InventoryAtCost = k.InventoryAtCost.Add(pos.ValueAtCost)
		k.InventoryAtRetail = k.InventoryAtRetail.Add(pos.ValueAtRetail)
		if pos.OnHand > 0 {
			inStock++
		} else {
			k.OutOfStockPairs++
		}
		if pos.Overstock {
			k.OverstockPairs++
			k.OverstockValue = k.OverstockValue.Add(pos.ValueAtCost)
		}
	}
	k.InStockRate = percent(float64(inStock), float64(len(positions)))

	for _, po := range idx.ds.PurchaseOrders {
		k.POSpend = k.POSpend.Add(po.TotalCost())
	}
	if len(byCategory) > 0 && byCategory[0].Revenue.IsPositive() {
		k.TopCategory = byCategory[0].Key
		k.TopCategoryRevenue = byCategory[0].Revenue
	}
	n := min(idx.opts.TopN, len(byGym))
	k.TopGyms = append([]model.SalesRow(nil), byGym[:n]...)
	return k
}
