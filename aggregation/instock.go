package aggregation

import (
	"sort"

	"retaildash/model"
)

// InStockByGym returns one row per catalog gym. The rate is the share of
// the gym's SKU-location pairs with stock on hand; a gym with no snapshot
// rows gets the sentinel.
func InStockByGym(ds model.Dataset, opts Options) []model.GymInStock {
	opts = opts.withDefaults(ds)
	return inStockByGym(newIndex(ds, opts), nil)
}

// inStockByGym counts the latest snapshots. keep, when set, restricts the
// pairs by SKU.
func inStockByGym(idx *index, keep func(sku string) bool) []model.GymInStock {
	rows := make(map[string]*model.GymInStock, len(idx.ds.Gyms))
	out := make([]model.GymInStock, 0, len(idx.ds.Gyms))
	for _, g := range idx.ds.Gyms {
		out = append(out, model.GymInStock{GymID: g.GymID, GymName: g.Name, Region: g.Region})
	}
	for i := range out {
		rows[out[i].GymID] = &out[i]
	}

	for _, inv := range idx.snapshots {
		if keep != nil && !keep(inv.SKU) {
			continue
		}
		r, ok := rows[inv.GymID]
		if !ok {
			continue
		}
		r.Pairs++
		if inv.OnHand > 0 {
			r.InStockPairs++
		}
	}
	for i := range out {
		out[i].Rate = percent(float64(out[i].InStockPairs), float64(out[i].Pairs))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := compareNull(out[i].Rate, out[j].Rate); c != 0 {
			return c < 0
		}
		return out[i].GymID < out[j].GymID
	})
	return out
}
