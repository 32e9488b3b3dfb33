package extract

import (
	"reflect"
	"testing"

	"github.com/hearthlabs/hearth/internal/schema"
)

func TestExtractScenarios(t *testing.T) {
	tests := []struct {
		name string
		text string
		want schema.FilterSet
	}{
		{
			name: "three bed homes in denver under 650k",
			text: "3-bed homes in Denver under 650k",
			want: schema.FilterSet{
				Location: "Denver, CO",
				Beds:     &schema.Range{Min: schema.Int(3)},
				Price:    &schema.Range{Max: schema.Int(650000)},
				Page:     1,
			},
		},
		{
			name: "condos in san diego new this week under 900k",
			text: "condos in San Diego new this week under 900k",
			want: schema.FilterSet{
				Location:      "San Diego, CA",
				PropertyTypes: []schema.PropertyType{schema.Condo},
				DaysOnMarket:  7,
				Price:         &schema.Range{Max: schema.Int(900000)},
				Page:          1,
			},
		},
		{
			name: "no filters at all",
			text: "hello there",
			want: schema.FilterSet{Page: 1},
		},
		{
			name: "zip code resolves city",
			text: "anything in 80205",
			want: schema.FilterSet{Location: "Denver, CO", Page: 1},
		},
		{
			name: "page number",
			text: "show me page 3",
			want: schema.FilterSet{Page: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q)\n got %s\nwant %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestBedsSynonyms(t *testing.T) {
	for _, text := range []string{"3 bed", "3 beds", "3 bedroom", "3 bedrooms", "3br", "3 br", "3bd", "3-bedroom"} {
		got := Beds(text)
		if got == nil || got.Min == nil || *got.Min != 3 {
			t.Errorf("Beds(%q) = %v, want {min:3}", text, got)
		}
	}
	if Beds("bedrooms galore") != nil {
		t.Error("Beds without a count should be nil")
	}
}

func TestBathsFloorsFractional(t *testing.T) {
	got := Baths("2.5 baths")
	if got == nil || got.Min == nil || *got.Min != 2 {
		t.Errorf("Baths(2.5 baths) = %v, want {min:2}", got)
	}
}

func TestPricePrecedence(t *testing.T) {
	tests := []struct {
		name string
		text string
		min  int // 0 = absent
		max  int // 0 = absent
	}{
		{"under", "under 650k", 0, 650000},
		{"below", "below $700,000", 0, 700000},
		{"max", "max 800k", 0, 800000},
		{"maximum", "maximum 1.2m", 0, 1200000},
		{"over", "over 500k", 500000, 0},
		{"min", "min 400k", 400000, 0},
		{"between", "between 500k and 800k", 500000, 800000},
		{"between dash", "between 500k - 800k", 500000, 800000},
		{"lone money token", "900k budget", 0, 900000},
		{"under wins over lone", "under 650k or maybe 900k", 0, 650000},
		{"bare number is literal dollars", "under 700", 0, 700},
		{"no price", "three bedrooms downtown", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Price(tt.text)
			if tt.min == 0 && tt.max == 0 {
				if got != nil {
					t.Fatalf("Price(%q) = %v, want nil", tt.text, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Price(%q) = nil", tt.text)
			}
			if tt.min != 0 && (got.Min == nil || *got.Min != tt.min) {
				t.Errorf("Price(%q).Min = %v, want %d", tt.text, got.Min, tt.min)
			}
			if tt.min == 0 && got.Min != nil {
				t.Errorf("Price(%q).Min = %d, want absent", tt.text, *got.Min)
			}
			if tt.max != 0 && (got.Max == nil || *got.Max != tt.max) {
				t.Errorf("Price(%q).Max = %v, want %d", tt.text, got.Max, tt.max)
			}
			if tt.max == 0 && got.Max != nil {
				t.Errorf("Price(%q).Max = %d, want absent", tt.text, *got.Max)
			}
		})
	}
}

func TestPropertyTypesAccumulate(t *testing.T) {
	got := PropertyTypesIn("condos or townhomes near the beach")
	want := []schema.PropertyType{schema.Condo, schema.Townhome}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// "house" and "single-family" both map to single_family, once.
	got = PropertyTypesIn("a single-family house")
	want = []schema.PropertyType{schema.SingleFamily}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDaysOnMarketPriority(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"new this week", 7},
		{"past week", 7},
		{"last 7 days", 7},
		{"past 14 days", 14},
		{"last 30 days", 30},
		{"anything new", 7},
		{"old inventory welcome", 0},
	}
	for _, tt := range tests {
		if got := DaysOnMarket(tt.text); got != tt.want {
			t.Errorf("DaysOnMarket(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestKeywords(t *testing.T) {
	got := Keywords("modern home with a garage near downtown")
	want := []string{"garage", "downtown", "modern"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if Keywords("nothing relevant") != nil {
		t.Error("expected nil keywords")
	}
}

func TestSortPhrases(t *testing.T) {
	tests := []struct {
		text string
		want schema.SortOrder
	}{
		{"lowest price first", schema.SortPriceAsc},
		{"low price", schema.SortPriceAsc},
		{"highest price", schema.SortPriceDesc},
		{"newest listings", schema.SortDOMDesc},
		{"recent homes", schema.SortDOMDesc},
		{"whatever order", ""},
	}
	for _, tt := range tests {
		if got := Sort(tt.text); got != tt.want {
			t.Errorf("Sort(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestNoEmptyRangeShells(t *testing.T) {
	f := Extract("just looking around town")
	if f.Price != nil || f.Beds != nil || f.Baths != nil {
		t.Errorf("empty range shells escaped: %s", f)
	}
}
