// Package extract implements deterministic rule-based extraction of search
// filters from a natural-language message.
//
// It is intentionally simple: a fixed city alias table, a handful of
// bed/bath/price patterns, and a small keyword vocabulary. It exists so the
// pipeline always has a zero-cost parser, and it is the fallback target for
// every remote-model parser.
package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hearthlabs/hearth/internal/schema"
)

// KnownCities are the canonical locations the alias table resolves to.
// Surfaced in clarifying questions so users know what the extractor
// understands.
var KnownCities = []string{
	"Denver, CO",
	"San Diego, CA",
	"Austin, TX",
	"Portland, OR",
}

type cityAlias struct {
	pattern *regexp.Regexp
	value   string
}

// City-name mentions plus the ZIP prefixes present in the seed dataset.
// First match wins; no match means the field stays absent. The extractor
// never guesses a location.
var cityAliases = []cityAlias{
	{regexp.MustCompile(`(?i)\bdenver\b`), "Denver, CO"},
	{regexp.MustCompile(`(?i)\bsan\s*diego\b`), "San Diego, CA"},
	{regexp.MustCompile(`(?i)\baustin\b`), "Austin, TX"},
	{regexp.MustCompile(`(?i)\bportland\b`), "Portland, OR"},
	{regexp.MustCompile(`\b8020[3-9]\b`), "Denver, CO"},
	{regexp.MustCompile(`\b921(?:09|17)\b`), "San Diego, CA"},
	{regexp.MustCompile(`\b787(?:05|23|35)\b`), "Austin, TX"},
	{regexp.MustCompile(`\b972(?:01|11|14)\b`), "Portland, OR"},
}

type typeAlias struct {
	pattern *regexp.Regexp
	value   schema.PropertyType
}

var typeAliases = []typeAlias{
	{regexp.MustCompile(`(?i)\bsingle[-\s]?family|\bhouse\b`), schema.SingleFamily},
	{regexp.MustCompile(`(?i)\bcondos?\b`), schema.Condo},
	{regexp.MustCompile(`(?i)\btown\s*(?:home|house)`), schema.Townhome},
	{regexp.MustCompile(`(?i)\bmulti[-\s]?family\b`), schema.MultiFamily},
	{regexp.MustCompile(`(?i)\bland\b`), schema.Land},
}

var (
	bedsRe      = regexp.MustCompile(`(?i)\b(\d+)\s*[-\s]?(?:beds?|bedrooms?)\b`)
	bedsShortRe = regexp.MustCompile(`(?i)\b(\d+)\s*[-\s]?(?:br|bd)\b`)
	bathsRe     = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:baths?|ba)\b`)

	priceUnderRe   = regexp.MustCompile(`(?i)\b(?:under|below|max(?:imum)?)\s*\$?\s*([\d,.]+)\s*([km])?\b`)
	priceOverRe    = regexp.MustCompile(`(?i)\b(?:over|above|min(?:imum)?)\s*\$?\s*([\d,.]+)\s*([km])?\b`)
	priceBetweenRe = regexp.MustCompile(`(?i)\bbetween\s*\$?\s*([\d,.]+)\s*([km])?\s*(?:and|to|-)\s*\$?\s*([\d,.]+)\s*([km])?\b`)
	priceLoneRe    = regexp.MustCompile(`(?i)\$?\s*([\d,.]+)\s*([km])\b`)

	domWeekRe = regexp.MustCompile(`(?i)\b(?:this|past|last)\s*(?:week|7\s*days)\b`)
	domDaysRe = regexp.MustCompile(`(?i)\b(?:last|past)\s*(\d{1,3})\s*days?\b`)
	domNewRe  = regexp.MustCompile(`(?i)\bnew\b`)

	sortLowRe    = regexp.MustCompile(`(?i)\blow(?:est)?\s*price\b`)
	sortHighRe   = regexp.MustCompile(`(?i)\bhigh(?:est)?\s*price\b`)
	sortRecentRe = regexp.MustCompile(`(?i)\bnewest\b|\brecent\b`)

	pageRe = regexp.MustCompile(`(?i)\bpage\s*(\d+)\b`)
)

type keywordProbe struct {
	pattern *regexp.Regexp
	value   string
}

var keywordProbes = []keywordProbe{
	{regexp.MustCompile(`(?i)\bgarage\b`), "garage"},
	{regexp.MustCompile(`(?i)\byard|garden\b`), "yard"},
	{regexp.MustCompile(`(?i)\bbeach\b`), "beach"},
	{regexp.MustCompile(`(?i)\bdowntown\b`), "downtown"},
	{regexp.MustCompile(`(?i)\bmodern\b`), "modern"},
}

// Extract parses a message into a partial filter set. It is a pure
// function of the text; conversation context is handled one layer up by
// the session merge. Sub-extractors are independent, and any range that
// would come back with no bounds is dropped before returning.
func Extract(message string) schema.FilterSet {
	text := strings.TrimSpace(message)

	f := schema.FilterSet{
		Location:      Location(text),
		Price:         Price(text),
		Beds:          Beds(text),
		Baths:         Baths(text),
		PropertyTypes: PropertyTypesIn(text),
		DaysOnMarket:  DaysOnMarket(text),
		Keywords:      Keywords(text),
		SortBy:        Sort(text),
		Page:          Page(text),
	}

	if f.Price.Empty() {
		f.Price = nil
	}
	if f.Beds.Empty() {
		f.Beds = nil
	}
	if f.Baths.Empty() {
		f.Baths = nil
	}
	return f
}

// Location resolves the first matching city alias, or "" when nothing
// matches.
func Location(text string) string {
	for _, a := range cityAliases {
		if a.pattern.MatchString(text) {
			return a.value
		}
	}
	return ""
}

// Beds extracts a minimum bedroom count from phrases like "3 bed",
// "3-bedroom", or "3br".
func Beds(text string) *schema.Range {
	for _, re := range []*regexp.Regexp{bedsRe, bedsShortRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return &schema.Range{Min: schema.Int(n)}
			}
		}
	}
	return nil
}

// Baths extracts a minimum bathroom count; fractional counts are floored
// ("2.5 baths" constrains to 2+).
func Baths(text string) *schema.Range {
	if m := bathsRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			n := int(math.Floor(v))
			return &schema.Range{Min: schema.Int(n)}
		}
	}
	return nil
}

// Price extracts a price constraint. Rules apply in strict precedence:
// under/below/max, then over/above/min, then "between X and Y", then a
// lone money-like token, which is read as a ceiling. Only the first
// matching rule applies.
//
// Unsuffixed numbers are literal dollars: "under 700" means $700, not
// $700,000. Only the k/m suffixes scale. Surprising, but documented
// behavior; do not "fix" without changing the refinement vocabulary to
// match.
func Price(text string) *schema.Range {
	if m := priceUnderRe.FindStringSubmatch(text); m != nil {
		if max := money(m[1], m[2]); max != 0 {
			return &schema.Range{Max: schema.Int(max)}
		}
	}
	if m := priceOverRe.FindStringSubmatch(text); m != nil {
		if min := money(m[1], m[2]); min != 0 {
			return &schema.Range{Min: schema.Int(min)}
		}
	}
	if m := priceBetweenRe.FindStringSubmatch(text); m != nil {
		min := money(m[1], m[2])
		max := money(m[3], m[4])
		if min != 0 || max != 0 {
			r := &schema.Range{}
			if min != 0 {
				r.Min = schema.Int(min)
			}
			if max != 0 {
				r.Max = schema.Int(max)
			}
			return r
		}
	}
	if m := priceLoneRe.FindStringSubmatch(text); m != nil {
		if max := money(m[1], m[2]); max != 0 {
			return &schema.Range{Max: schema.Int(max)}
		}
	}
	return nil
}

// money normalizes a money-like token: commas stripped, "k" multiplies by
// 1e3, "m" by 1e6. Returns 0 when the token does not parse.
func money(numStr, suffix string) int {
	raw, err := strconv.ParseFloat(strings.ReplaceAll(numStr, ",", ""), 64)
	if err != nil {
		return 0
	}
	switch strings.ToLower(suffix) {
	case "k":
		raw *= 1_000
	case "m":
		raw *= 1_000_000
	}
	return int(math.Round(raw))
}

// PropertyTypesIn accumulates every matching property-type alias. Matches
// are independent: "condos or townhomes" yields both.
func PropertyTypesIn(text string) []schema.PropertyType {
	var found []schema.PropertyType
	seen := map[schema.PropertyType]bool{}
	for _, a := range typeAliases {
		if a.pattern.MatchString(text) && !seen[a.value] {
			seen[a.value] = true
			found = append(found, a.value)
		}
	}
	return found
}

// DaysOnMarket extracts a freshness bound. Priority order: week phrases,
// then "last/past N days", then a bare "new" (which reads as one week).
func DaysOnMarket(text string) int {
	if domWeekRe.MatchString(text) {
		return 7
	}
	if m := domDaysRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	if domNewRe.MatchString(text) {
		return 7
	}
	return 0
}

// Keywords probes a fixed vocabulary. Presence-only: position and
// repetition are ignored.
func Keywords(text string) []string {
	var kws []string
	for _, p := range keywordProbes {
		if p.pattern.MatchString(text) {
			kws = append(kws, p.value)
		}
	}
	return kws
}

// Sort maps explicit ordering phrases to a sort order; anything else is
// left unset and defaults to relevance downstream.
func Sort(text string) schema.SortOrder {
	switch {
	case sortLowRe.MatchString(text):
		return schema.SortPriceAsc
	case sortHighRe.MatchString(text):
		return schema.SortPriceDesc
	case sortRecentRe.MatchString(text):
		return schema.SortDOMDesc
	}
	return ""
}

// Page extracts a literal "page N", defaulting to 1.
func Page(text string) int {
	if m := pageRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	return 1
}
