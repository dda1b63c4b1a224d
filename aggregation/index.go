package aggregation

import (
	"sort"
	"time"

	"retaildash/model"
)

type pairKey struct {
	sku string
	gym string
}

// index holds the lookups shared by the metric groups. It is built once
// per Compute and never modified afterwards.
type index struct {
	ds   model.Dataset
	opts Options

	gyms     map[string]model.GymLocation
	products map[string]model.Product
	vendors  map[string]model.Vendor

	// snapshots is the latest snapshot per SKU-gym on or before AsOf,
	// ordered by gym then SKU.
	snapshots []model.InventorySnapshot

	windowStart time.Time
	trailing    map[pairKey]int
	lastSale    map[pairKey]time.Time
}

func newIndex(ds model.Dataset, opts Options) *index {
	idx := &index{
		ds:       ds,
		opts:     opts,
		gyms:     make(map[string]model.GymLocation, len(ds.Gyms)),
		products: make(map[string]model.Product, len(ds.Products)),
		vendors:  make(map[string]model.Vendor, len(ds.Vendors)),
		trailing: make(map[pairKey]int),
		lastSale: make(map[pairKey]time.Time),
	}
	for _, g := range ds.Gyms {
		idx.gyms[g.GymID] = g
	}
	for _, p := range ds.Products {
		idx.products[p.SKU] = p
	}
	for _, v := range ds.Vendors {
		idx.vendors[v.VendorID] = v
	}

	latest := make(map[pairKey]model.InventorySnapshot)
	for _, inv := range ds.Inventory {
		if inv.AsOf.After(opts.AsOf) {
			continue
		}
		k := pairKey{inv.SKU, inv.GymID}
		if cur, ok := latest[k]; !ok || inv.AsOf.After(cur.AsOf) {
			latest[k] = inv
		}
	}
	idx.snapshots = make([]model.InventorySnapshot, 0, len(latest))
	for _, inv := range latest {
		idx.snapshots = append(idx.snapshots, inv)
	}
	sort.Slice(idx.snapshots, func(i, j int) bool {
		a, b := idx.snapshots[i], idx.snapshots[j]
		if a.GymID != b.GymID {
			return a.GymID < b.GymID
		}
		return a.SKU < b.SKU
	})

	idx.windowStart = opts.AsOf.AddDate(0, 0, -7*opts.TrailingWeeks)
	for _, s := range ds.Sales {
		d := model.Day(s.Date)
		if d.After(opts.AsOf) {
			continue
		}
		k := pairKey{s.SKU, s.GymID}
		if d.After(idx.windowStart) {
			idx.trailing[k] += s.Quantity
		}
		if s.Quantity > 0 && d.After(idx.lastSale[k]) {
			idx.lastSale[k] = d
		}
	}
	return idx
}

// velocity is the average weekly units sold for the pair over the
// trailing window.
func (idx *index) velocity(k pairKey) float64 {
	return float64(idx.trailing[k]) / float64(idx.opts.TrailingWeeks)
}

// categories returns the distinct catalog categories in name order.
func (idx *index) categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range idx.ds.Products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out
}

// regions returns the distinct gym regions in name order.
func (idx *index) regions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range idx.ds.Gyms {
		if !seen[g.Region] {
			seen[g.Region] = true
			out = append(out, g.Region)
		}
	}
	sort.Strings(out)
	return out
}
