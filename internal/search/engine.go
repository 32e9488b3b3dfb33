// Package search evaluates a validated filter set against a listings
// collection: conjunctive field matching, sorting, and fixed-size
// pagination.
//
// Providers that hold their collection in memory delegate here so every
// provider exposes identical matching and ordering semantics.
package search

import (
	"sort"
	"strings"

	"github.com/hearthlabs/hearth/internal/schema"
)

// Run filters, sorts, and paginates listings. The input order is the
// provider's relevance order and is preserved for relevance/unset sort.
// A page past the end yields an empty item list with the correct total.
func Run(listings []schema.Listing, f schema.FilterSet) schema.ResultPage {
	matched := make([]schema.Listing, 0, len(listings))
	for _, l := range listings {
		if Matches(l, f) {
			matched = append(matched, l)
		}
	}

	sortListings(matched, f.SortBy)

	page := f.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * schema.PageSize
	end := start + schema.PageSize
	items := []schema.Listing{}
	if start < len(matched) {
		if end > len(matched) {
			end = len(matched)
		}
		items = matched[start:end]
	}

	return schema.ResultPage{
		Items:    items,
		Total:    len(matched),
		Page:     page,
		PageSize: schema.PageSize,
	}
}

// Matches reports whether a listing satisfies every present filter field.
// Absent fields match everything.
func Matches(l schema.Listing, f schema.FilterSet) bool {
	return matchesLocation(l, f) &&
		f.Price.Contains(l.Price) &&
		f.Beds.Contains(l.Beds) &&
		matchesBaths(l, f.Baths) &&
		matchesPropertyType(l, f.PropertyTypes) &&
		matchesDaysOnMarket(l, f.DaysOnMarket) &&
		matchesKeywords(l, f.Keywords)
}

// normalize lowercases and strips everything but letters and digits, so
// "San Diego, CA" and "sandiego ca" compare equal as substrings.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func matchesLocation(l schema.Listing, f schema.FilterSet) bool {
	city, state := f.LocationParts()
	if city == "" && state == "" {
		return true
	}

	hay := normalize(l.Address + " " + l.City + " " + l.State + " " + l.Zip)
	if !strings.Contains(hay, normalize(city)) {
		return false
	}
	if state != "" && !strings.Contains(hay, normalize(state)) {
		return false
	}
	return true
}

// matchesBaths treats a missing bath count as 0 rather than excluding the
// listing, so "1+ baths" still filters it out while no constraint keeps it.
func matchesBaths(l schema.Listing, r *schema.Range) bool {
	return r.Contains(l.Baths)
}

func matchesPropertyType(l schema.Listing, types []schema.PropertyType) bool {
	if len(types) == 0 {
		return true
	}
	for _, pt := range types {
		if l.PropertyType == pt {
			return true
		}
	}
	return false
}

func matchesDaysOnMarket(l schema.Listing, maxDays int) bool {
	if maxDays <= 0 {
		return true
	}
	return l.DaysOnMarket <= maxDays
}

// matchesKeywords requires every keyword to appear somewhere in the
// listing's address, excerpt, or tags. Best-effort substring match.
func matchesKeywords(l schema.Listing, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	hay := strings.ToLower(strings.Join(append([]string{
		l.Address, l.City, l.State, l.Zip, l.Excerpt,
	}, l.Tags...), " "))

	for _, kw := range keywords {
		if !strings.Contains(hay, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}

// sortListings orders in place. Stable sorts keep the provider's relevance
// order among ties; relevance itself leaves the input untouched.
func sortListings(items []schema.Listing, order schema.SortOrder) {
	switch order {
	case schema.SortPriceAsc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price < items[j].Price })
	case schema.SortPriceDesc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price > items[j].Price })
	case schema.SortDOMDesc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].DaysOnMarket > items[j].DaysOnMarket })
	}
}
