package marketplace

import (
	"time"
	"unicode/utf8"

	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/shopspring/decimal"
)

// EngagementScore is a display-only ranking value derived from the name alone
func EngagementScore(name string) int {
	return 45 + utf8.RuneCountInString(name)%50
}

// ListingFromRecord projects an owned record into its marketplace listing
func ListingFromRecord(rec *property.Record) property.Listing {
	price := decimal.Zero
	if room, ok := rec.FirstRoom(); ok {
		price = room.BasePrice
	}
	photos := make([]string, len(rec.Photos))
	copy(photos, rec.Photos)
	amenities := make([]string, len(rec.Amenities))
	copy(amenities, rec.Amenities)

	return property.Listing{
		ID:              rec.ID,
		Name:            rec.Name,
		Location:        rec.Address,
		PricePerNight:   price,
		StarRating:      rec.StarRating,
		EngagementScore: EngagementScore(rec.Name),
		PrimaryImage:    rec.PrimaryPhoto(),
		Gallery:         photos,
		Description:     rec.Description,
		Amenities:       amenities,
	}
}

// DeriveMarketplace merges owned records with the seed catalog. Owned listings
// come first; seed entries whose name matches an owned record are dropped. The
// result is computed fresh on every call and holds no state of its own.
func DeriveMarketplace(seed []property.Listing, owned []*property.Record) []property.Listing {
	out := make([]property.Listing, 0, len(owned)+len(seed))
	for _, rec := range owned {
		if hasName(out, rec.Name) {
			continue
		}
		out = append(out, ListingFromRecord(rec))
	}
	for _, l := range seed {
		if hasName(out, l.Name) {
			continue
		}
		out = append(out, l.Clone())
	}
	return out
}

func hasName(listings []property.Listing, name string) bool {
	for i := range listings {
		if property.SameProperty(listings[i].Name, name) {
			return true
		}
	}
	return false
}

// Resolution tells how a claim was resolved
type Resolution string

const (
	// ResolvedExisting means an owned record already matched by id or name
	ResolvedExisting Resolution = "existing"
	// ResolvedClaimed means a seed listing was converted into a new record
	ResolvedClaimed Resolution = "claimed"
	// ResolvedPassthrough means the id matched nothing and is treated as a raw record id
	ResolvedPassthrough Resolution = "passthrough"
)

// ClaimResult is the outcome of ResolveClaim
type ClaimResult struct {
	// Record is nil for a passthrough
	Record     *property.Record
	RecordID   string
	Portfolio  []*property.Record
	Resolution Resolution
}

// ResolveClaim finds or creates the owned record for id. A record matching id,
// or matching the name of the seed listing id refers to, is returned unchanged.
// Otherwise a seed listing is converted and appended. Anything else passes id
// through untouched. The input slice is never modified.
func ResolveClaim(id string, seed []property.Listing, owned []*property.Record, now time.Time) ClaimResult {
	listing, isSeed := findListing(seed, id)

	for _, rec := range owned {
		if rec.ID == id || (isSeed && property.SameProperty(rec.Name, listing.Name)) {
			return ClaimResult{Record: rec, RecordID: rec.ID, Portfolio: owned, Resolution: ResolvedExisting}
		}
	}

	if isSeed {
		rec := property.ClaimRecord(listing, now)
		portfolio := make([]*property.Record, 0, len(owned)+1)
		portfolio = append(portfolio, owned...)
		portfolio = append(portfolio, rec)
		return ClaimResult{Record: rec, RecordID: rec.ID, Portfolio: portfolio, Resolution: ResolvedClaimed}
	}

	return ClaimResult{RecordID: id, Portfolio: owned, Resolution: ResolvedPassthrough}
}

// FindOwnedByName returns the owned record that is the same property as name
func FindOwnedByName(owned []*property.Record, name string) (*property.Record, bool) {
	for _, rec := range owned {
		if property.SameProperty(rec.Name, name) {
			return rec, true
		}
	}
	return nil, false
}

func findListing(seed []property.Listing, id string) (property.Listing, bool) {
	for i := range seed {
		if seed[i].ID == id {
			return seed[i], true
		}
	}
	return property.Listing{}, false
}
