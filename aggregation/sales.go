package aggregation

import (
	"sort"
	"time"

	"retaildash/model"
)

// SalesByCategory returns revenue and volume for every catalog category.
func SalesByCategory(ds model.Dataset, opts Options) []model.SalesRow {
	opts = opts.withDefaults(ds)
	return salesByCategory(newIndex(ds, opts))
}

// SalesByRegion returns revenue, volume and average unit sale value for
// every gym region.
func SalesByRegion(ds model.Dataset, opts Options) []model.SalesRow {
	opts = opts.withDefaults(ds)
	return salesByRegion(newIndex(ds, opts))
}

func salesByCategory(idx *index) []model.SalesRow {
	return salesBy(idx, idx.categories(), func(s model.Sale) string {
		return idx.products[s.SKU].Category
	}, nil)
}

func salesByRegion(idx *index) []model.SalesRow {
	return salesBy(idx, idx.regions(), func(s model.Sale) string {
		return idx.gyms[s.GymID].Region
	}, nil)
}

func salesByGym(idx *index) []model.SalesRow {
	keys := make([]string, 0, len(idx.ds.Gyms))
	names := make(map[string]string, len(idx.ds.Gyms))
	for _, g := range idx.ds.Gyms {
		keys = append(keys, g.GymID)
		names[g.GymID] = g.Name
	}
	rows := salesBy(idx, keys, func(s model.Sale) string { return s.GymID }, nil)
	for i := range rows {
		rows[i].Name = names[rows[i].Key]
	}
	return rows
}

// salesBy groups sales by keyOf. Every key in keys gets a row even with no
// sales. filter, when set, drops sales before grouping.
func salesBy(idx *index, keys []string, keyOf func(model.Sale) string, filter func(model.Sale) bool) []model.SalesRow {
	rows := make(map[string]*model.SalesRow, len(keys))
	for _, k := range keys {
		rows[k] = &model.SalesRow{Key: k, Name: k}
	}
	for _, s := range idx.ds.Sales {
		if filter != nil && !filter(s) {
			continue
		}
		k := keyOf(s)
		r, ok := rows[k]
		if !ok {
			r = &model.SalesRow{Key: k, Name: k}
			rows[k] = r
		}
		r.Revenue = r.Revenue.Add(s.Revenue())
		r.Units += s.Quantity
		r.Lines++
	}

	out := make([]model.SalesRow, 0, len(rows))
	for _, r := range rows {
		if r.Units > 0 {
			r.AvgUnitPrice = valid(r.Revenue.Div(qty(r.Units)).InexactFloat64())
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		return revenueFirst(out[i].Revenue, out[j].Revenue, out[i].Key, out[j].Key)
	})
	return out
}

// MonthlyTrend groups sales by calendar month, ignoring the year. All twelve
// months are returned in order.
func MonthlyTrend(ds model.Dataset, opts Options) []model.MonthlyRow {
	opts = opts.withDefaults(ds)
	return monthlyTrend(newIndex(ds, opts), nil)
}

func monthlyTrend(idx *index, filter func(model.Sale) bool) []model.MonthlyRow {
	out := make([]model.MonthlyRow, 12)
	for m := range out {
		out[m] = model.MonthlyRow{Month: m + 1, Label: time.Month(m + 1).String()[:3]}
	}
	for _, s := range idx.ds.Sales {
		if filter != nil && !filter(s) {
			continue
		}
		r := &out[s.Date.Month()-1]
		r.Revenue = r.Revenue.Add(s.Revenue())
		r.Margin = r.Margin.Add(s.Margin())
		r.Units += s.Quantity
	}
	return out
}

// MonthlyCategoryUnits returns units sold per calendar month and category,
// ordered by month then category.
func MonthlyCategoryUnits(ds model.Dataset, opts Options) []model.MonthlyCategoryUnits {
	opts = opts.withDefaults(ds)
	return monthlyCategoryUnits(newIndex(ds, opts))
}

func monthlyCategoryUnits(idx *index) []model.MonthlyCategoryUnits {
	cats := idx.categories()
	pos := make(map[string]int, len(cats))
	for i, c := range cats {
		pos[c] = i
	}
	out := make([]model.MonthlyCategoryUnits, 0, 12*len(cats))
	for m := 1; m <= 12; m++ {
		for _, c := range cats {
			out = append(out, model.MonthlyCategoryUnits{Month: m, Category: c})
		}
	}
	for _, s := range idx.ds.Sales {
		c := idx.products[s.SKU].Category
		out[(int(s.Date.Month())-1)*len(cats)+pos[c]].Units += s.Quantity
	}
	return out
}

// Sellers ranks every catalog product by revenue.
type Sellers struct {
	Top    []model.ProductRank
	Bottom []model.ProductRank
}

// TopBottomSellers returns the TopN best and worst products by revenue.
// Ties always break by SKU ascending, so the ranking is reproducible.
// Products without sales rank with zero revenue.
func TopBottomSellers(ds model.Dataset, opts Options) Sellers {
	opts = opts.withDefaults(ds)
	return topBottomSellers(newIndex(ds, opts))
}

func topBottomSellers(idx *index) Sellers {
	bySKU := make(map[string]*model.ProductRank, len(idx.ds.Products))
	all := make([]*model.ProductRank, 0, len(idx.ds.Products))
	for _, p := range idx.ds.Products {
		r := &model.ProductRank{SKU: p.SKU, Name: p.Name, Category: p.Category, VendorID: p.VendorID}
		bySKU[p.SKU] = r
		all = append(all, r)
	}
	for _, s := range idx.ds.Sales {
		r, ok := bySKU[s.SKU]
		if !ok {
			continue
		}
		r.Revenue = r.Revenue.Add(s.Revenue())
		r.Units += s.Quantity
	}

	n := min(idx.opts.TopN, len(all))
	sort.SliceStable(all, func(i, j int) bool {
		return revenueFirst(all[i].Revenue, all[j].Revenue, all[i].SKU, all[j].SKU)
	})
	top := make([]model.ProductRank, n)
	for i := 0; i < n; i++ {
		top[i] = *all[i]
		top[i].Rank = i + 1
	}

	sort.SliceStable(all, func(i, j int) bool {
		if c := all[i].Revenue.Cmp(all[j].Revenue); c != 0 {
			return c < 0
		}
		return all[i].SKU < all[j].SKU
	})
	bottom := make([]model.ProductRank, n)
	for i := 0; i < n; i++ {
		bottom[i] = *all[i]
		bottom[i].Rank = i + 1
	}
	return Sellers{Top: top, Bottom: bottom}
}
