// Package marketplace merges the seed catalog with owned property records and
// resolves claims of catalog listings.
package marketplace

import (
	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/shopspring/decimal"
)

// Catalog is an immutable set of seed listings. It is created once and shared
// read-only by every session.
type Catalog struct {
	listings []property.Listing
}

// NewCatalog copies listings into a new catalog
func NewCatalog(listings []property.Listing) *Catalog {
	c := &Catalog{listings: make([]property.Listing, len(listings))}
	for i := range listings {
		c.listings[i] = listings[i].Clone()
	}
	return c
}

// Listings returns a copy of the catalog entries
func (c *Catalog) Listings() []property.Listing {
	out := make([]property.Listing, len(c.listings))
	for i := range c.listings {
		out[i] = c.listings[i].Clone()
	}
	return out
}

// Find returns the listing with id
func (c *Catalog) Find(id string) (property.Listing, bool) {
	for i := range c.listings {
		if c.listings[i].ID == id {
			return c.listings[i].Clone(), true
		}
	}
	return property.Listing{}, false
}

// Len returns the number of listings
func (c *Catalog) Len() int {
	return len(c.listings)
}

// DefaultCatalog returns the featured properties shown to every hotelier
func DefaultCatalog() *Catalog {
	return NewCatalog(seedListings())
}

func seedListings() []property.Listing {
	return []property.Listing{
		{
			ID: "1", Name: "The Atlantis Palm", Location: "Dubai, UAE",
			PricePerNight: decimal.NewFromInt(1200), StarRating: 5, EngagementScore: 94,
			PrimaryImage: "https://images.unsplash.com/photo-1566073771259-6a8506099945?auto=format&fit=crop&q=80&w=800",
			Description:  "The Atlantis Palm is a majestic 5-star resort located on the iconic Palm Jumeirah in Dubai. It features breathtaking views, world-class dining, and the famous Aquaventure Waterpark.",
			Amenities:    []string{"Water Park", "Beach", "Spa", "Private Pools", "Fine Dining"},
		},
		{
			ID: "2", Name: "Burj Al Arab", Location: "Dubai, UAE",
			PricePerNight: decimal.NewFromInt(2500), StarRating: 5, EngagementScore: 98,
			PrimaryImage: "https://images.unsplash.com/photo-1582719478250-c89cae4dc85b?auto=format&fit=crop&q=80&w=800",
			Description:  "An architectural masterpiece and a global icon of Arabian luxury, the Burj Al Arab stands on its own artificial island, offering unparalleled 7-star service and opulence.",
			Amenities:    []string{"Personal Butler", "Helipad", "Underwater Restaurant", "Full Service Spa"},
		},
		{
			ID: "3", Name: "Marriott Marquis", Location: "Doha, Qatar",
			PricePerNight: decimal.NewFromInt(800), StarRating: 4, EngagementScore: 82,
			PrimaryImage: "https://images.unsplash.com/photo-1542314831-068cd1dbfeeb?auto=format&fit=crop&q=80&w=800",
			Description:  "Located in the heart of West Bay, the Marriott Marquis City Center Doha Hotel offers modern luxury with stunning skyline views and award-winning dining options.",
			Amenities:    []string{"City View", "Outdoor Pool", "Executive Lounge", "Business Center"},
		},
		{
			ID: "4", Name: "Emirates Palace", Location: "Abu Dhabi, UAE",
			PricePerNight: decimal.NewFromInt(1800), StarRating: 5, EngagementScore: 89,
			PrimaryImage: "https://images.unsplash.com/photo-1520250497591-112f2f40a3f4?auto=format&fit=crop&q=80&w=800",
			Description:  "A landmark of luxury in the capital of the UAE, Emirates Palace Mandarin Oriental is a palace-style hotel offering regal hospitality and 1.3km of private beach.",
			Amenities:    []string{"Gold Spa", "Private Beach", "Luxury Suites", "Marinas"},
		},
		{
			ID: "5", Name: "Rosewood Jaddaf", Location: "Dubai, UAE",
			PricePerNight: decimal.NewFromInt(650), StarRating: 4, EngagementScore: 76,
			PrimaryImage: "https://images.unsplash.com/photo-1571896349842-33c89424de2d?auto=format&fit=crop&q=80&w=800",
			Description:  "Rosewood Jaddaf offers a sophisticated urban retreat with impeccable service, contemporary design, and panoramic views of Dubai Creek.",
			Amenities:    []string{"Rooftop Pool", "Artisan Dining", "Boutique Experience", "Creek Views"},
		},
		{
			ID: "6", Name: "W Muscat", Location: "Muscat, Oman",
			PricePerNight: decimal.NewFromInt(950), StarRating: 5, EngagementScore: 81,
			PrimaryImage: "https://images.unsplash.com/photo-1564501049412-61c2a3083791?auto=format&fit=crop&q=80&w=800",
			Description:  "Stepping into W Muscat is like stepping into a bold new world of design and energy. Located on the beachfront, it brings an edgy twist to Omani hospitality.",
			Amenities:    []string{"WET Deck", "Beach Access", "Mixology", "Designer Rooms"},
		},
	}
}
