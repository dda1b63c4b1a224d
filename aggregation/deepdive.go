package aggregation

import (
	"sort"

	"retaildash/model"
)

// CategoryDeepDive narrows revenue and in-stock views to one category.
func CategoryDeepDive(ds model.Dataset, opts Options) model.CategoryDeepDive {
	opts = opts.withDefaults(ds)
	return categoryDeepDive(newIndex(ds, opts))
}

func categoryDeepDive(idx *index) model.CategoryDeepDive {
	cat := idx.opts.DeepDiveCategory
	inCat := func(sku string) bool { return idx.products[sku].Category == cat }
	saleInCat := func(s model.Sale) bool { return inCat(s.SKU) }

	var skus, subs []string
	names := make(map[string]string)
	seenSub := make(map[string]bool)
	for _, p := range idx.ds.Products {
		if p.Category != cat {
			continue
		}
		skus = append(skus, p.SKU)
		names[p.SKU] = p.Name
		if !seenSub[p.Subcategory] {
			seenSub[p.Subcategory] = true
			subs = append(subs, p.Subcategory)
		}
	}
	sort.Strings(subs)

	dd := model.CategoryDeepDive{Category: cat}
	dd.ProductRevenue = salesBy(idx, skus, func(s model.Sale) string { return s.SKU }, saleInCat)
	dd.SubcategoryRevenue = salesBy(idx, subs, func(s model.Sale) string {
		return idx.products[s.SKU].Subcategory
	}, saleInCat)
	dd.InStockByGym = inStockByGym(idx, inCat)
	dd.MonthlyRevenue = monthlyTrend(idx, saleInCat)
	for i := range dd.ProductRevenue {
		dd.ProductRevenue[i].Name = names[dd.ProductRevenue[i].Key]
	}
	return dd
}
