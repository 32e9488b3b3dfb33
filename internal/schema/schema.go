// Package schema defines the canonical filter, listing, and result shapes
// shared across the interpretation pipeline.
//
// A FilterSet is the structured form of a conversational home-search request.
// Absent fields mean "unconstrained": a nil range places no bound, an empty
// location matches nothing downstream only because the pipeline refuses to
// search without one.
package schema

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// PropertyType is the closed enumeration of listing categories.
type PropertyType string

const (
	SingleFamily PropertyType = "single_family"
	Condo        PropertyType = "condo"
	Townhome     PropertyType = "townhome"
	MultiFamily  PropertyType = "multi_family"
	Land         PropertyType = "land"
)

// PropertyTypes lists every valid property type, in canonical order.
var PropertyTypes = []PropertyType{SingleFamily, Condo, Townhome, MultiFamily, Land}

// ValidPropertyType reports whether pt is a member of the enumeration.
func ValidPropertyType(pt PropertyType) bool {
	return slices.Contains(PropertyTypes, pt)
}

// SortOrder selects result ordering.
type SortOrder string

const (
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortDOMDesc   SortOrder = "dom_desc"
	SortRelevance SortOrder = "relevance"
)

// Range is a numeric constraint with optional inclusive bounds.
// A Range is never constructed with both bounds nil; an unconstrained
// dimension is a nil *Range, not an empty one.
type Range struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// Empty reports whether the range has no bounds at all.
func (r *Range) Empty() bool {
	return r == nil || (r.Min == nil && r.Max == nil)
}

// Clone returns a deep copy, or nil for a nil range.
func (r *Range) Clone() *Range {
	if r == nil {
		return nil
	}
	out := &Range{}
	if r.Min != nil {
		v := *r.Min
		out.Min = &v
	}
	if r.Max != nil {
		v := *r.Max
		out.Max = &v
	}
	return out
}

// Contains reports whether n satisfies the range, using -inf/+inf
// for absent bounds.
func (r *Range) Contains(n int) bool {
	if r == nil {
		return true
	}
	if r.Min != nil && n < *r.Min {
		return false
	}
	if r.Max != nil && n > *r.Max {
		return false
	}
	return true
}

// Int returns a pointer to n, for building ranges inline.
func Int(n int) *int { return &n }

// FilterSet is the canonical structured query derived from conversation.
// The zero value is an empty filter set (matches everything, but carries
// no location).
type FilterSet struct {
	Location      string         `json:"location,omitempty"`
	Price         *Range         `json:"price,omitempty"`
	Beds          *Range         `json:"beds,omitempty"`
	Baths         *Range         `json:"baths,omitempty"`
	PropertyTypes []PropertyType `json:"propertyTypes,omitempty"`
	DaysOnMarket  int            `json:"daysOnMarket,omitempty"`
	Keywords      []string       `json:"keywords,omitempty"`
	SortBy        SortOrder      `json:"sortBy,omitempty"`
	Page          int            `json:"page,omitempty"`
}

// Empty reports whether no filter field carries a value. A set page counts:
// a "page 2" turn is a real update and must survive the merge guard.
func (f FilterSet) Empty() bool {
	return f.Location == "" &&
		f.Price.Empty() &&
		f.Beds.Empty() &&
		f.Baths.Empty() &&
		len(f.PropertyTypes) == 0 &&
		f.DaysOnMarket == 0 &&
		len(f.Keywords) == 0 &&
		f.SortBy == "" &&
		f.Page == 0
}

// Clone returns a deep copy of the filter set.
func (f FilterSet) Clone() FilterSet {
	out := f
	out.Price = f.Price.Clone()
	out.Beds = f.Beds.Clone()
	out.Baths = f.Baths.Clone()
	out.PropertyTypes = slices.Clone(f.PropertyTypes)
	out.Keywords = slices.Clone(f.Keywords)
	return out
}

// LocationParts splits a "City, ST" location into its city and state
// tokens. A location without a comma is all city.
func (f FilterSet) LocationParts() (city, state string) {
	loc := strings.TrimSpace(f.Location)
	if loc == "" {
		return "", ""
	}
	if i := strings.LastIndex(loc, ","); i >= 0 {
		return strings.TrimSpace(loc[:i]), strings.TrimSpace(loc[i+1:])
	}
	return loc, ""
}

// Listing is a normalized real-estate record. Listings are produced by a
// provider and read-only to the rest of the pipeline.
type Listing struct {
	ID           string       `json:"id"`
	Address      string       `json:"address"`
	City         string       `json:"city"`
	State        string       `json:"state"`
	Zip          string       `json:"zip"`
	Price        int          `json:"price"`
	Beds         int          `json:"beds"`
	Baths        int          `json:"baths,omitempty"` // 0 = not reported
	Sqft         int          `json:"sqft,omitempty"`
	LotSize      int          `json:"lotSize,omitempty"`
	YearBuilt    int          `json:"yearBuilt,omitempty"`
	PropertyType PropertyType `json:"propertyType"`
	DaysOnMarket int          `json:"daysOnMarket,omitempty"`
	Status       string       `json:"status,omitempty"`
	Photos       []string     `json:"photos"`
	HeroPhoto    string       `json:"heroPhoto"`
	ListingURL   string       `json:"listingUrl"`
	Tags         []string     `json:"tags,omitempty"`
	Excerpt      string       `json:"excerpt,omitempty"`
}

// ResultPage is one page of search results. Produced fresh per search
// call, never cached.
type ResultPage struct {
	Items    []Listing `json:"items"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

// PageSize is the fixed result page size.
const PageSize = 10

// EmptyPage returns a well-formed page with no results.
func EmptyPage() ResultPage {
	return ResultPage{Items: []Listing{}, Total: 0, Page: 1, PageSize: PageSize}
}

// Refinement is a suggested follow-up rendered as a clickable chip. The
// Message is synthetic user input: it is fed back through the parser
// exactly as if the user had typed it, so chips need no code path of
// their own.
type Refinement struct {
	Label   string `json:"label"`
	Message string `json:"message"`
}

// normalizePropertyTypes drops unknown values and duplicates while
// keeping first-seen order. Returns nil when nothing survives.
func normalizePropertyTypes(in []PropertyType) []PropertyType {
	if len(in) == 0 {
		return nil
	}
	seen := map[PropertyType]bool{}
	var out []PropertyType
	for _, pt := range in {
		if !ValidPropertyType(pt) || seen[pt] {
			continue
		}
		seen[pt] = true
		out = append(out, pt)
	}
	return out
}

// String renders a compact human-readable form, used in debug logs.
func (f FilterSet) String() string {
	parts := map[string]string{}
	if f.Location != "" {
		parts["location"] = f.Location
	}
	if !f.Price.Empty() {
		parts["price"] = f.Price.debug()
	}
	if !f.Beds.Empty() {
		parts["beds"] = f.Beds.debug()
	}
	if !f.Baths.Empty() {
		parts["baths"] = f.Baths.debug()
	}
	if len(f.PropertyTypes) > 0 {
		strs := make([]string, len(f.PropertyTypes))
		for i, pt := range f.PropertyTypes {
			strs[i] = string(pt)
		}
		parts["types"] = strings.Join(strs, ",")
	}
	if f.DaysOnMarket > 0 {
		parts["dom"] = fmt.Sprintf("%d", f.DaysOnMarket)
	}
	if len(f.Keywords) > 0 {
		parts["keywords"] = strings.Join(f.Keywords, ",")
	}
	if f.SortBy != "" {
		parts["sort"] = string(f.SortBy)
	}
	if f.Page > 1 {
		parts["page"] = fmt.Sprintf("%d", f.Page)
	}
	if len(parts) == 0 {
		return "{}"
	}
	keys := slices.Sorted(maps.Keys(parts))
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%s", k, parts[k])
	}
	b.WriteByte('}')
	return b.String()
}

func (r *Range) debug() string {
	switch {
	case r == nil:
		return ""
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("%d-%d", *r.Min, *r.Max)
	case r.Min != nil:
		return fmt.Sprintf("%d+", *r.Min)
	case r.Max != nil:
		return fmt.Sprintf("<=%d", *r.Max)
	default:
		return "?"
	}
}
