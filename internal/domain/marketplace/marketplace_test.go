package marketplace

import (
	"strings"
	"testing"
	"time"

	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.UnixMilli(1767225600000)

func atlantisSeed() []property.Listing {
	return []property.Listing{
		{ID: "1", Name: "Atlantis", Location: "Dubai, UAE", PricePerNight: decimal.NewFromInt(1200), StarRating: 5, EngagementScore: 94},
		{ID: "2", Name: "Burj Al Arab", Location: "Dubai, UAE", PricePerNight: decimal.NewFromInt(2500), StarRating: 5, EngagementScore: 98},
	}
}

func TestEngagementScore(t *testing.T) {
	assert.Equal(t, 45+len("Burj Al Arab"), EngagementScore("Burj Al Arab"))
	assert.Equal(t, EngagementScore("Same"), EngagementScore("Same"))
	assert.Equal(t, 45, EngagementScore(strings.Repeat("x", 50)))
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	require.Equal(t, 6, c.Len())

	l, ok := c.Find("3")
	require.True(t, ok)
	assert.Equal(t, "Marriott Marquis", l.Name)
	assert.True(t, l.PricePerNight.Equal(decimal.NewFromInt(800)))

	t.Run("returned listings are copies", func(t *testing.T) {
		listings := c.Listings()
		listings[0].Name = "Mutated"
		listings[0].Amenities[0] = "Mutated"
		fresh, _ := c.Find("1")
		assert.Equal(t, "The Atlantis Palm", fresh.Name)
		assert.Equal(t, "Water Park", fresh.Amenities[0])
	})

	_, ok = c.Find("99")
	assert.False(t, ok)
}

func TestListingFromRecord(t *testing.T) {
	t.Run("uses first room and first photo", func(t *testing.T) {
		rec := property.NewDraftRecord(now)
		rec.Name = "Desert Rose"
		rec.Address = "Al Ain"
		rec.StarRating = 4
		rec.Rooms = []property.RoomUnit{{ID: "a", BasePrice: decimal.NewFromInt(300)}, {ID: "b", BasePrice: decimal.NewFromInt(900)}}
		rec.Photos = []string{"p1", "p2"}

		l := ListingFromRecord(rec)
		assert.Equal(t, rec.ID, l.ID)
		assert.Equal(t, "Al Ain", l.Location)
		assert.True(t, l.PricePerNight.Equal(decimal.NewFromInt(300)))
		assert.Equal(t, "p1", l.PrimaryImage)
		assert.Equal(t, []string{"p1", "p2"}, l.Gallery)
		assert.Equal(t, EngagementScore("Desert Rose"), l.EngagementScore)
	})

	t.Run("empty record falls back to zero values", func(t *testing.T) {
		l := ListingFromRecord(property.NewDraftRecord(now))
		assert.True(t, l.PricePerNight.IsZero())
		assert.Empty(t, l.PrimaryImage)
	})
}

func TestDeriveMarketplace(t *testing.T) {
	seed := atlantisSeed()

	t.Run("no owned records returns the seed", func(t *testing.T) {
		out := DeriveMarketplace(seed, nil)
		require.Len(t, out, 2)
		assert.Equal(t, "1", out[0].ID)
	})

	t.Run("owned first and dedup by case-insensitive name", func(t *testing.T) {
		owned := property.NewDraftRecord(now)
		owned.Name = "ATLANTIS"
		out := DeriveMarketplace(seed, []*property.Record{owned})

		require.Len(t, out, 2)
		assert.Equal(t, owned.ID, out[0].ID)
		assert.Equal(t, "2", out[1].ID)
	})

	t.Run("never returns duplicate names", func(t *testing.T) {
		a := property.NewDraftRecord(now)
		a.Name = "Burj Al Arab"
		b := property.NewDraftRecord(now.Add(time.Millisecond))
		b.Name = "burj al arab"
		out := DeriveMarketplace(seed, []*property.Record{a, b})

		seen := map[string]bool{}
		for _, l := range out {
			key := strings.ToLower(l.Name)
			assert.False(t, seen[key], "duplicate %q", l.Name)
			seen[key] = true
		}
		assert.Len(t, out, 2)
	})
}

func TestResolveClaim(t *testing.T) {
	seed := atlantisSeed()

	t.Run("claims a seed listing", func(t *testing.T) {
		res := ResolveClaim("1", seed, nil, now)
		require.NotNil(t, res.Record)
		assert.Equal(t, ResolvedClaimed, res.Resolution)
		require.Len(t, res.Portfolio, 1)

		rec := res.Record
		require.Len(t, rec.Rooms, 1)
		assert.True(t, rec.Rooms[0].BasePrice.Equal(decimal.NewFromInt(1200)))
		assert.True(t, rec.IsBasicInfoComplete)
		assert.False(t, rec.IsFinalStepsComplete)
	})

	t.Run("is idempotent", func(t *testing.T) {
		first := ResolveClaim("1", seed, nil, now)
		second := ResolveClaim("1", seed, first.Portfolio, now.Add(time.Second))

		assert.Equal(t, first.RecordID, second.RecordID)
		assert.Equal(t, ResolvedExisting, second.Resolution)
		assert.Len(t, second.Portfolio, 1)
	})

	t.Run("matches an owned record by name", func(t *testing.T) {
		owned := property.NewDraftRecord(now)
		owned.Name = "atlantis"
		res := ResolveClaim("1", seed, []*property.Record{owned}, now)
		assert.Equal(t, owned.ID, res.RecordID)
		assert.Len(t, res.Portfolio, 1)
	})

	t.Run("matches an owned record by id", func(t *testing.T) {
		owned := property.NewDraftRecord(now)
		res := ResolveClaim(owned.ID, seed, []*property.Record{owned}, now)
		assert.Same(t, owned, res.Record)
		assert.Equal(t, ResolvedExisting, res.Resolution)
	})

	t.Run("unknown id passes through", func(t *testing.T) {
		owned := []*property.Record{property.NewDraftRecord(now)}
		res := ResolveClaim("hotel-unknown", seed, owned, now)
		assert.Nil(t, res.Record)
		assert.Equal(t, "hotel-unknown", res.RecordID)
		assert.Equal(t, ResolvedPassthrough, res.Resolution)
		assert.Len(t, res.Portfolio, 1)
	})

	t.Run("does not modify the input slice", func(t *testing.T) {
		owned := make([]*property.Record, 0, 4)
		res := ResolveClaim("2", seed, owned, now)
		assert.Len(t, owned, 0)
		assert.Len(t, res.Portfolio, 1)
	})
}

func TestSearchSortStats(t *testing.T) {
	listings := DefaultCatalog().Listings()

	t.Run("search by name or location", func(t *testing.T) {
		assert.Len(t, Search(listings, "dubai"), 3)
		assert.Len(t, Search(listings, "MUSCAT"), 1)
		assert.Len(t, Search(listings, "  "), 6)
		assert.Empty(t, Search(listings, "paris"))
	})

	t.Run("sort options", func(t *testing.T) {
		assert.Equal(t, "Burj Al Arab", Sort(listings, SortVisitsDesc)[0].Name)
		assert.Equal(t, "Rosewood Jaddaf", Sort(listings, SortVisitsAsc)[0].Name)
		assert.Equal(t, "Burj Al Arab", Sort(listings, SortPriceDesc)[0].Name)
		assert.Equal(t, "Rosewood Jaddaf", Sort(listings, SortPriceAsc)[0].Name)

		byName := Sort(listings, SortNameAsc)
		assert.Equal(t, "Burj Al Arab", byName[0].Name)
		assert.Equal(t, "W Muscat", byName[len(byName)-1].Name)

		assert.Equal(t, "The Atlantis Palm", listings[0].Name, "input is not reordered")
	})

	t.Run("parse sort option", func(t *testing.T) {
		assert.Equal(t, SortPriceAsc, ParseSortOption("price-asc"))
		assert.Equal(t, SortVisitsDesc, ParseSortOption("bogus"))
		assert.Equal(t, SortVisitsDesc, ParseSortOption(""))
	})

	t.Run("stats", func(t *testing.T) {
		s := ComputeStats(listings)
		// (94+98+82+89+76+81)/6 = 86.67
		assert.Equal(t, 87, s.AvgEngagement)
		assert.True(t, s.TotalValue.Equal(decimal.NewFromInt(7900)))
		assert.Equal(t, 98, s.SyncHealth)

		empty := ComputeStats(nil)
		assert.Equal(t, 0, empty.SyncHealth)
		assert.True(t, empty.TotalValue.IsZero())
	})
}
