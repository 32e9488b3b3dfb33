package compose

import (
	"strings"
	"testing"

	"github.com/hearthlabs/hearth/internal/schema"
)

func TestSummarizeFullFilterSet(t *testing.T) {
	f := schema.FilterSet{
		Location:      "Denver, CO",
		Price:         &schema.Range{Max: schema.Int(650000)},
		Beds:          &schema.Range{Min: schema.Int(3)},
		PropertyTypes: []schema.PropertyType{schema.SingleFamily},
	}

	got := Summarize(f, 1)
	want := "Showing 1 of 1 results for Denver, CO • ≤ $650,000 • 3+ beds • single-family homes."
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestSummarizeCapsShownAtPageSize(t *testing.T) {
	got := Summarize(schema.FilterSet{Location: "Denver, CO"}, 42)
	want := "Showing 10 of 42 results for Denver, CO."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSummarizeEmptyFilters(t *testing.T) {
	got := Summarize(schema.FilterSet{}, 0)
	want := "Showing 0 of 0 results for your criteria."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSummarizeFacetOrder(t *testing.T) {
	f := schema.FilterSet{
		Location:     "Austin, TX",
		Price:        &schema.Range{Min: schema.Int(400000), Max: schema.Int(800000)},
		Baths:        &schema.Range{Min: schema.Int(2)},
		DaysOnMarket: 7,
	}
	got := Summarize(f, 3)
	want := "Showing 3 of 3 results for Austin, TX • ≤ $800,000 • ≥ $400,000 • 2+ baths • ≤ 7 days."
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestRefinementsWithMaxBudgetAndBeds(t *testing.T) {
	f := schema.FilterSet{
		Price: &schema.Range{Max: schema.Int(650000)},
		Beds:  &schema.Range{Min: schema.Int(3)},
	}
	chips := Refinements(f)
	if len(chips) > MaxRefinements {
		t.Fatalf("too many chips: %d", len(chips))
	}
	labels := make([]string, len(chips))
	for i, c := range chips {
		labels[i] = c.Label
	}
	want := []string{"+ $50k budget", "+1 bed", "Only condos", "Only single-family", "New this week"}
	if strings.Join(labels, "|") != strings.Join(want, "|") {
		t.Errorf("got %v, want %v", labels, want)
	}
}

func TestRefinementsWithoutBudgetOrBeds(t *testing.T) {
	chips := Refinements(schema.FilterSet{})
	labels := make([]string, len(chips))
	for i, c := range chips {
		labels[i] = c.Label
	}
	want := []string{"Cap budget at $700k", "At least 3 beds", "Only condos", "Only single-family", "New this week"}
	if strings.Join(labels, "|") != strings.Join(want, "|") {
		t.Errorf("got %v, want %v", labels, want)
	}
}

func TestRefinementsFreshnessSuppressedWhenRecent(t *testing.T) {
	chips := Refinements(schema.FilterSet{DaysOnMarket: 7})
	for _, c := range chips {
		if c.Label == "New this week" {
			t.Error("freshness chip offered while already filtering to a week")
		}
	}
	chips = Refinements(schema.FilterSet{DaysOnMarket: 30})
	found := false
	for _, c := range chips {
		if c.Label == "New this week" {
			found = true
		}
	}
	if !found {
		t.Error("freshness chip missing for 30-day filter")
	}
}

func TestRefinementMessagesAreParseable(t *testing.T) {
	// Every chip message must survive a round trip through the rule
	// extractor as the next turn's raw text; at minimum none of them
	// may be empty or label-only.
	for _, f := range []schema.FilterSet{{}, {Price: &schema.Range{Max: schema.Int(700000)}, Beds: &schema.Range{Min: schema.Int(2)}}} {
		for _, c := range Refinements(f) {
			if c.Message == "" || c.Label == "" {
				t.Errorf("incomplete chip: %+v", c)
			}
		}
	}
}

func TestMissingLocationQuestions(t *testing.T) {
	qs := MissingLocationQuestions([]string{"Denver, CO", "Austin, TX"})
	if len(qs) != 1 {
		t.Fatalf("got %d questions, want 1", len(qs))
	}
	want := "Which city are you interested in? For example: Denver, CO, Austin, TX"
	if qs[0] != want {
		t.Errorf("got %q, want %q", qs[0], want)
	}
}
