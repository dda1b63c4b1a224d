package aggregation

import (
	"fmt"
	"sort"

	"retaildash/model"

	"github.com/shopspring/decimal"
)

// AgedInventory is stock bucketed by days since it last moved, plus the
// overstock and slow-mover breakdowns used to pick markdown candidates.
type AgedInventory struct {
	Bands               []model.AgingBand
	TotalPairs          int
	TotalUnits          int
	TotalValue          decimal.Decimal
	OverstockByCategory []model.ValueRow
	SlowMoversByVendor  []model.ValueRow
}

// AgeInventory buckets every latest snapshot by days since the pair's last
// sale, falling back to its last receipt. A pair with neither lands in the
// oldest band. Band totals always equal the inventory totals.
func AgeInventory(ds model.Dataset, opts Options) AgedInventory {
	opts = opts.withDefaults(ds)
	idx := newIndex(ds, opts)
	return agedInventory(idx, supplyPositions(idx))
}

func agedInventory(idx *index, positions []model.SupplyPosition) AgedInventory {
	aged := AgedInventory{Bands: agingBands(idx.opts.AgingBands)}

	for _, inv := range idx.snapshots {
		age, known := idx.age(inv)
		b := &aged.Bands[len(aged.Bands)-1]
		if known {
			b = &aged.Bands[bandFor(aged.Bands, age)]
		}
		value := idx.products[inv.SKU].UnitCost.Mul(qty(inv.OnHand))
		b.Pairs++
		b.Units += inv.OnHand
		b.Value = b.Value.Add(value)
		aged.TotalPairs++
		aged.TotalUnits += inv.OnHand
		aged.TotalValue = aged.TotalValue.Add(value)
	}

	overstock := make(map[string]*model.ValueRow)
	slow := make(map[string]*model.ValueRow)
	for _, pos := range positions {
		if !pos.Overstock {
			continue
		}
		addValue(overstock, pos.Category, pos.Category, pos)
		addValue(slow, pos.VendorID, idx.vendors[pos.VendorID].Name, pos)
	}
	aged.OverstockByCategory = sortedValues(overstock)
	aged.SlowMoversByVendor = sortedValues(slow)
	return aged
}

// age returns the days since the pair last sold or was received.
func (idx *index) age(inv model.InventorySnapshot) (int, bool) {
	if last, ok := idx.lastSale[pairKey{inv.SKU, inv.GymID}]; ok {
		return model.DaysBetween(last, idx.opts.AsOf), true
	}
	if inv.LastReceiptDate != nil && !inv.LastReceiptDate.After(idx.opts.AsOf) {
		return model.DaysBetween(*inv.LastReceiptDate, idx.opts.AsOf), true
	}
	return 0, false
}

// agingBands builds bands from ascending upper bounds: 0–30, 31–60, 61–90,
// 90+ for {30, 60, 90}.
func agingBands(bounds []int) []model.AgingBand {
	bands := make([]model.AgingBand, 0, len(bounds)+1)
	lo := 0
	for _, hi := range bounds {
		bands = append(bands, model.AgingBand{Label: fmt.Sprintf("%d-%d days", lo, hi), MinDays: lo, MaxDays: hi})
		lo = hi + 1
	}
	last := 0
	if len(bounds) > 0 {
		last = bounds[len(bounds)-1]
	}
	return append(bands, model.AgingBand{Label: fmt.Sprintf("%d+ days", last), MinDays: lo, MaxDays: -1})
}

func bandFor(bands []model.AgingBand, age int) int {
	for i, b := range bands {
		if b.MaxDays >= 0 && age <= b.MaxDays {
			return i
		}
	}
	return len(bands) - 1
}

func addValue(m map[string]*model.ValueRow, key, name string, pos model.SupplyPosition) {
	r, ok := m[key]
	if !ok {
		r = &model.ValueRow{Key: key, Name: name}
		m[key] = r
	}
	r.Pairs++
	r.Units += pos.OnHand
	r.Value = r.Value.Add(pos.ValueAtCost)
}

// sortedValues orders by value descending, ties by key.
func sortedValues(m map[string]*model.ValueRow) []model.ValueRow {
	out := make([]model.ValueRow, 0, len(m))
	for _, r := range m {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		return revenueFirst(out[i].Value, out[j].Value, out[i].Key, out[j].Key)
	})
	return out
}
