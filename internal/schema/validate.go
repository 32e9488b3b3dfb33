package schema

import (
	"fmt"
	"strings"
)

// Issue is a single validation problem, addressed by a dotted field path.
type Issue struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ValidationError reports a structurally invalid filter set. It carries
// the full issue list so transports can surface field-level detail.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, iss := range e.Issues {
		parts[i] = iss.Path + ": " + iss.Reason
	}
	return "invalid filters: " + strings.Join(parts, "; ")
}

// Validate checks a raw filter set and returns its canonical form.
//
// Documented coercions are applied silently: unknown property types are
// dropped, duplicates removed, sortBy falls back to relevance when
// absent or unrecognized, and a missing page becomes 1. Everything else
// that is malformed (negative bounds, a range with no bounds, a negative
// page) is a rejection, not a repair.
func Validate(raw FilterSet) (FilterSet, error) {
	out := raw.Clone()
	var issues []Issue

	checkRange := func(path string, r *Range) {
		if r == nil {
			return
		}
		if r.Min == nil && r.Max == nil {
			issues = append(issues, Issue{path, "at least one of min or max is required"})
			return
		}
		if r.Min != nil && *r.Min < 0 {
			issues = append(issues, Issue{path + ".min", "must be a non-negative integer"})
		}
		if r.Max != nil && *r.Max < 0 {
			issues = append(issues, Issue{path + ".max", "must be a non-negative integer"})
		}
	}
	checkRange("price", out.Price)
	checkRange("beds", out.Beds)
	checkRange("baths", out.Baths)

	if out.DaysOnMarket < 0 {
		issues = append(issues, Issue{"daysOnMarket", "must be a positive integer"})
	}

	if out.Page < 0 {
		issues = append(issues, Issue{"page", fmt.Sprintf("must be >= 1, got %d", out.Page)})
	} else if out.Page == 0 {
		out.Page = 1
	}

	out.PropertyTypes = normalizePropertyTypes(out.PropertyTypes)

	switch out.SortBy {
	case SortPriceAsc, SortPriceDesc, SortDOMDesc, SortRelevance:
	default:
		out.SortBy = SortRelevance
	}

	if len(issues) > 0 {
		return FilterSet{}, &ValidationError{Issues: issues}
	}
	return out, nil
}
