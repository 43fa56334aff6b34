// README: Catalog browsing helpers (category/brand filters, brand list, category counts).
package fleet

import "sort"

// Filter keeps vehicles matching any of the given categories and any of the given brands.
// An empty selection on one dimension does not restrict that dimension.
func Filter(vehicles []Vehicle, cats []Category, brands []string) []Vehicle {
	catSet := make(map[Category]struct{}, len(cats))
	for _, c := range cats {
		catSet[c] = struct{}{}
	}
	brandSet := make(map[string]struct{}, len(brands))
	for _, b := range brands {
		brandSet[b] = struct{}{}
	}

	out := make([]Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if len(catSet) > 0 {
			if _, ok := catSet[v.Category]; !ok {
				continue
			}
		}
		if len(brandSet) > 0 {
			if _, ok := brandSet[v.Brand]; !ok {
				continue
			}
		}
		out = append(out, v)
	}
	return out
}

// Brands returns the distinct brands of vehicles, sorted.
func Brands(vehicles []Vehicle) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, v := range vehicles {
		if _, ok := seen[v.Brand]; ok {
			continue
		}
		seen[v.Brand] = struct{}{}
		out = append(out, v.Brand)
	}
	sort.Strings(out)
	return out
}

func CountByCategory(vehicles []Vehicle, c Category) int {
	n := 0
	for _, v := range vehicles {
		if v.Category == c {
			n++
		}
	}
	return n
}
