package listings

import (
	"context"
	"fmt"

	"github.com/hearthlabs/hearth/internal/schema"
	"github.com/hearthlabs/hearth/internal/search"
)

// StaticProvider serves a fixed seed inventory from memory. It is the
// default provider and the one the demo data ships with.
type StaticProvider struct {
	listings []schema.Listing
}

// NewStaticProvider returns a provider over the built-in seed set.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{listings: SeedListings()}
}

// NewStaticProviderWith returns a provider over the given listings.
func NewStaticProviderWith(listings []schema.Listing) *StaticProvider {
	return &StaticProvider{listings: listings}
}

func (p *StaticProvider) Name() string { return "static" }

// Search filters, sorts, and paginates the in-memory set.
func (p *StaticProvider) Search(_ context.Context, f schema.FilterSet) (schema.ResultPage, error) {
	return search.Run(p.listings, f), nil
}

// All returns a copy of the full inventory, in seed order.
func (p *StaticProvider) All() []schema.Listing {
	out := make([]schema.Listing, len(p.listings))
	copy(out, p.listings)
	return out
}

func photos(seed string) []string {
	return []string{fmt.Sprintf("https://picsum.photos/seed/%s/800/600", seed)}
}

func zillowURL(city, state string) string {
	return fmt.Sprintf("https://www.zillow.com/homes/%s,-%s_rb/", city, state)
}

// SeedListings returns the built-in demo inventory: twelve listings
// across Denver, San Diego, Austin, and Portland.
func SeedListings() []schema.Listing {
	return []schema.Listing{
		{
			ID: "den-1001", Address: "123 Cherry St", City: "Denver", State: "CO", Zip: "80203",
			Price: 625000, Beds: 3, Baths: 2, Sqft: 1750, LotSize: 4000, YearBuilt: 1995,
			PropertyType: schema.SingleFamily, DaysOnMarket: 5, Status: "active",
			Photos: photos("den1001"), HeroPhoto: photos("den1001")[0],
			ListingURL: zillowURL("Denver", "CO"), Tags: []string{"New"},
			Excerpt: "Charming single-family home near Cheesman Park with a fenced yard.",
		},
		{
			ID: "den-1002", Address: "45 Elm Ave", City: "Denver", State: "CO", Zip: "80210",
			Price: 540000, Beds: 2, Baths: 2, Sqft: 1320, LotSize: 2500, YearBuilt: 2008,
			PropertyType: schema.Townhome, DaysOnMarket: 14, Status: "active",
			Photos: photos("den1002"), HeroPhoto: photos("den1002")[0],
			ListingURL: zillowURL("Denver", "CO"), Tags: []string{"Price drop"},
			Excerpt: "Modern townhome with attached garage in Platt Park.",
		},
		{
			ID: "den-1003", Address: "890 Lincoln St #504", City: "Denver", State: "CO", Zip: "80203",
			Price: 395000, Beds: 1, Baths: 1, Sqft: 850, YearBuilt: 2012,
			PropertyType: schema.Condo, DaysOnMarket: 3, Status: "active",
			Photos: photos("den1003"), HeroPhoto: photos("den1003")[0],
			ListingURL: zillowURL("Denver", "CO"), Tags: []string{"New"},
			Excerpt: "Downtown condo with mountain views and gym access.",
		},
		{
			ID: "sd-2001", Address: "1020 Ocean Blvd", City: "San Diego", State: "CA", Zip: "92109",
			Price: 875000, Beds: 3, Baths: 2, Sqft: 1420, LotSize: 3000, YearBuilt: 1987,
			PropertyType: schema.SingleFamily, DaysOnMarket: 10, Status: "active",
			Photos: photos("sd2001"), HeroPhoto: photos("sd2001")[0],
			ListingURL: zillowURL("San-Diego", "CA"), Tags: []string{"Near beach"},
			Excerpt: "Beach-adjacent home with updated kitchen and backyard.",
		},
		{
			ID: "sd-2002", Address: "220 Mission Blvd #B", City: "San Diego", State: "CA", Zip: "92109",
			Price: 699000, Beds: 2, Baths: 2, Sqft: 1100, YearBuilt: 2005,
			PropertyType: schema.Condo, DaysOnMarket: 2, Status: "active",
			Photos: photos("sd2002"), HeroPhoto: photos("sd2002")[0],
			ListingURL: zillowURL("San-Diego", "CA"), Tags: []string{"New"},
			Excerpt: "Condo with balcony and garage parking near Mission Beach.",
		},
		{
			ID: "sd-2003", Address: "4555 Bayview Ct", City: "San Diego", State: "CA", Zip: "92117",
			Price: 915000, Beds: 3, Baths: 2, Sqft: 1600, LotSize: 5000, YearBuilt: 1972,
			PropertyType: schema.SingleFamily, DaysOnMarket: 20, Status: "active",
			Photos: photos("sd2003"), HeroPhoto: photos("sd2003")[0],
			ListingURL: zillowURL("San-Diego", "CA"), Tags: []string{"Open house"},
			Excerpt: "Clairemont home with large yard and updated baths.",
		},
		{
			ID: "aus-3001", Address: "7801 Barton Skyway", City: "Austin", State: "TX", Zip: "78735",
			Price: 575000, Beds: 3, Baths: 2, Sqft: 1680, LotSize: 7200, YearBuilt: 1998,
			PropertyType: schema.SingleFamily, DaysOnMarket: 4, Status: "active",
			Photos: photos("aus3001"), HeroPhoto: photos("aus3001")[0],
			ListingURL: zillowURL("Austin", "TX"), Tags: []string{"New"},
			Excerpt: "Starter home with shaded backyard and updated HVAC.",
		},
		{
			ID: "aus-3002", Address: "2500 Guadalupe St #120", City: "Austin", State: "TX", Zip: "78705",
			Price: 420000, Beds: 2, Baths: 2, Sqft: 980, YearBuilt: 2010,
			PropertyType: schema.Condo, DaysOnMarket: 9, Status: "active",
			Photos: photos("aus3002"), HeroPhoto: photos("aus3002")[0],
			ListingURL: zillowURL("Austin", "TX"), Tags: []string{"Campus area"},
			Excerpt: "UT-adjacent condo with garage and community pool.",
		},
		{
			ID: "aus-3003", Address: "1007 E 51st St", City: "Austin", State: "TX", Zip: "78723",
			Price: 760000, Beds: 4, Baths: 3, Sqft: 2100, LotSize: 6000, YearBuilt: 2016,
			PropertyType: schema.Townhome, DaysOnMarket: 16, Status: "active",
			Photos: photos("aus3003"), HeroPhoto: photos("aus3003")[0],
			ListingURL: zillowURL("Austin", "TX"), Tags: []string{"Price drop"},
			Excerpt: "Spacious townhome with 2-car garage and modern finishes.",
		},
		{
			ID: "pdx-4001", Address: "500 NE Alberta St", City: "Portland", State: "OR", Zip: "97211",
			Price: 485000, Beds: 2, Baths: 1, Sqft: 1050, LotSize: 3500, YearBuilt: 1948,
			PropertyType: schema.SingleFamily, DaysOnMarket: 7, Status: "active",
			Photos: photos("pdx4001"), HeroPhoto: photos("pdx4001")[0],
			ListingURL: zillowURL("Portland", "OR"), Tags: []string{"New"},
			Excerpt: "Bungalow with updated kitchen and garden beds.",
		},
		{
			ID: "pdx-4002", Address: "2200 SW 10th Ave #702", City: "Portland", State: "OR", Zip: "97201",
			Price: 365000, Beds: 1, Baths: 1, Sqft: 780, YearBuilt: 2007,
			PropertyType: schema.Condo, DaysOnMarket: 11, Status: "active",
			Photos: photos("pdx4002"), HeroPhoto: photos("pdx4002")[0],
			ListingURL: zillowURL("Portland", "OR"),
			Excerpt:    "Light-filled condo near PSU with city views.",
		},
		{
			ID: "pdx-4003", Address: "801 SE 34th Ave", City: "Portland", State: "OR", Zip: "97214",
			Price: 715000, Beds: 3, Baths: 2, Sqft: 1650, LotSize: 4500, YearBuilt: 1925,
			PropertyType: schema.SingleFamily, DaysOnMarket: 22, Status: "active",
			Photos: photos("pdx4003"), HeroPhoto: photos("pdx4003")[0],
			ListingURL: zillowURL("Portland", "OR"), Tags: []string{"Open house"},
			Excerpt: "Classic craftsman with porch and updated bath.",
		},
	}
}
