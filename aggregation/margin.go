package aggregation

import (
	"sort"

	"retaildash/model"

	"github.com/shopspring/decimal"
)

// MarginSummary is gross margin by category, by vendor and in total.
type MarginSummary struct {
	ByCategory []model.MarginRow
	ByVendor   []model.MarginRow
	Total      model.MarginRow
}

// Margin sums revenue, cost and margin dollars per category and vendor.
// Percentages are Σmargin / Σrevenue, never a mean of row percentages.
// Every catalog category and vendor gets a row.
func Margin(ds model.Dataset, opts Options) MarginSummary {
	opts = opts.withDefaults(ds)
	return margin(newIndex(ds, opts))
}

func margin(idx *index) MarginSummary {
	byCat := make(map[string]*model.MarginRow)
	for _, c := range idx.categories() {
		byCat[c] = &model.MarginRow{Key: c, Name: c}
	}
	byVendor := make(map[string]*model.MarginRow)
	for _, v := range idx.ds.Vendors {
		byVendor[v.VendorID] = &model.MarginRow{Key: v.VendorID, Name: v.Name}
	}
	total := &model.MarginRow{Key: "TOTAL", Name: "Total"}

	for _, s := range idx.ds.Sales {
		p := idx.products[s.SKU]
		for _, r := range []*model.MarginRow{byCat[p.Category], byVendor[p.VendorID], total} {
			if r != nil {
				addSale(r, s)
			}
		}
	}

	sum := MarginSummary{
		ByCategory: finishMargins(byCat),
		ByVendor:   finishMargins(byVendor),
		Total:      *total,
	}
	sum.Total.MarginPct = decimalPercent(sum.Total.Margin, sum.Total.Revenue)
	return sum
}

func addSale(r *model.MarginRow, s model.Sale) {
	r.Units += s.Quantity
	r.Revenue = r.Revenue.Add(s.Revenue())
	r.Cost = r.Cost.Add(s.Cost())
	r.Margin = r.Margin.Add(s.Margin())
}

// finishMargins sets percentages and orders rows by revenue descending,
// ties by key.
func finishMargins(m map[string]*model.MarginRow) []model.MarginRow {
	out := make([]model.MarginRow, 0, len(m))
	for _, r := range m {
		r.MarginPct = decimalPercent(r.Margin, r.Revenue)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		return revenueFirst(out[i].Revenue, out[j].Revenue, out[i].Key, out[j].Key)
	})
	return out
}

// revenueFirst orders by revenue descending then key ascending.
func revenueFirst(ra, rb decimal.Decimal, ka, kb string) bool {
	if c := ra.Cmp(rb); c != 0 {
		return c > 0
	}
	return ka < kb
}
