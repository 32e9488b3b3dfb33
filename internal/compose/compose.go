// Package compose renders filter sets into user-facing text: result
// summaries, refinement chips, and clarifying questions. The parser
// plugins delegate here so every parser speaks with one voice.
package compose

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hearthlabs/hearth/internal/schema"
)

// MaxRefinements caps the chips offered per turn.
const MaxRefinements = 5

// MaxQuestions caps the clarifying questions offered per turn.
const MaxQuestions = 3

// MissingLocationSummary is shown when no search can run yet.
const MissingLocationSummary = `I need a location to search. Please specify a city and state (e.g., "Denver, CO").`

var typeLabels = map[schema.PropertyType]string{
	schema.SingleFamily: "single-family homes",
	schema.Condo:        "condos",
	schema.Townhome:     "townhomes",
	schema.MultiFamily:  "multi-family properties",
	schema.Land:         "land",
}

// Summarize describes a result set in one line, restating the active
// facets in a fixed order so consecutive turns read consistently.
func Summarize(f schema.FilterSet, total int) string {
	facets := describeFacets(f)
	criteria := "your criteria"
	if len(facets) > 0 {
		criteria = strings.Join(facets, " • ")
	}
	shown := total
	if shown > schema.PageSize {
		shown = schema.PageSize
	}
	return fmt.Sprintf("Showing %d of %d results for %s.", shown, total, criteria)
}

func describeFacets(f schema.FilterSet) []string {
	var facets []string
	if f.Location != "" {
		facets = append(facets, f.Location)
	}
	if f.Price != nil {
		if f.Price.Max != nil {
			facets = append(facets, "≤ "+dollars(*f.Price.Max))
		}
		if f.Price.Min != nil {
			facets = append(facets, "≥ "+dollars(*f.Price.Min))
		}
	}
	if f.Beds != nil && f.Beds.Min != nil {
		facets = append(facets, fmt.Sprintf("%d+ beds", *f.Beds.Min))
	}
	if f.Baths != nil && f.Baths.Min != nil {
		facets = append(facets, fmt.Sprintf("%d+ baths", *f.Baths.Min))
	}
	if len(f.PropertyTypes) > 0 {
		labels := make([]string, len(f.PropertyTypes))
		for i, pt := range f.PropertyTypes {
			labels[i] = typeLabel(pt)
		}
		facets = append(facets, strings.Join(labels, ", "))
	}
	if f.DaysOnMarket > 0 {
		facets = append(facets, fmt.Sprintf("≤ %d days", f.DaysOnMarket))
	}
	return facets
}

func typeLabel(pt schema.PropertyType) string {
	if label, ok := typeLabels[pt]; ok {
		return label
	}
	return string(pt)
}

// dollars renders an amount with comma grouping: $650,000.
func dollars(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

// Refinement suggestions follow the current filters: each chip is a
// label the UI renders plus the message the client sends back through
// the pipeline as the next turn.
func Refinements(f schema.FilterSet) []schema.Refinement {
	var chips []schema.Refinement

	if f.Price != nil && f.Price.Max != nil {
		chips = append(chips, schema.Refinement{
			Label:   "+ $50k budget",
			Message: "increase budget by 50k",
		})
	} else {
		chips = append(chips, schema.Refinement{
			Label:   "Cap budget at $700k",
			Message: "max 700k",
		})
	}

	if f.Beds != nil && f.Beds.Min != nil {
		chips = append(chips, schema.Refinement{
			Label:   "+1 bed",
			Message: "add 1 bedroom",
		})
	} else {
		chips = append(chips, schema.Refinement{
			Label:   "At least 3 beds",
			Message: "at least 3 bedrooms",
		})
	}

	chips = append(chips,
		schema.Refinement{Label: "Only condos", Message: "only show condos"},
		schema.Refinement{Label: "Only single-family", Message: "only show single family houses"},
	)

	if f.DaysOnMarket == 0 || f.DaysOnMarket > 7 {
		chips = append(chips, schema.Refinement{
			Label:   "New this week",
			Message: "show homes from this week only",
		})
	}

	if len(chips) > MaxRefinements {
		chips = chips[:MaxRefinements]
	}
	return chips
}

// MissingLocationQuestions asks for the one fact search cannot proceed
// without, naming the cities the demo inventory covers.
func MissingLocationQuestions(knownCities []string) []string {
	return []string{
		"Which city are you interested in? For example: " + strings.Join(knownCities, ", "),
	}
}
