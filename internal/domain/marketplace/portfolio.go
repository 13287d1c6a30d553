package marketplace

import (
	"math"
	"sort"
	"strings"

	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOption orders the portfolio view
type SortOption string

const (
	SortVisitsDesc SortOption = "visits-desc"
	SortVisitsAsc  SortOption = "visits-asc"
	SortPriceDesc  SortOption = "price-desc"
	SortPriceAsc   SortOption = "price-asc"
	SortNameAsc    SortOption = "name-asc"
)

// DefaultSort is applied when no option is given
const DefaultSort = SortVisitsDesc

// ParseSortOption maps raw input to an option, falling back to DefaultSort
func ParseSortOption(raw string) SortOption {
	switch o := SortOption(raw); o {
	case SortVisitsDesc, SortVisitsAsc, SortPriceDesc, SortPriceAsc, SortNameAsc:
		return o
	}
	return DefaultSort
}

// PlatformSyncHealth is the simulated channel sync health for a non-empty portfolio
const PlatformSyncHealth = 98

// Stats summarises a portfolio
type Stats struct {
	AvgEngagement int             `json:"avgEngagement"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	SyncHealth    int             `json:"syncHealth"`
}

// Search keeps listings whose name or location contains term, ignoring case
func Search(listings []property.Listing, term string) []property.Listing {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]property.Listing, 0, len(listings))
	for _, l := range listings {
		if term == "" ||
			strings.Contains(strings.ToLower(l.Name), term) ||
			strings.Contains(strings.ToLower(l.Location), term) {
			out = append(out, l)
		}
	}
	return out
}

// Sort returns a sorted copy of listings. Ties keep their input order.
func Sort(listings []property.Listing, option SortOption) []property.Listing {
	out := make([]property.Listing, len(listings))
	copy(out, listings)

	var less func(a, b property.Listing) bool
	switch option {
	case SortVisitsAsc:
		less = func(a, b property.Listing) bool { return a.EngagementScore < b.EngagementScore }
	case SortPriceDesc:
		less = func(a, b property.Listing) bool { return a.PricePerNight.GreaterThan(b.PricePerNight) }
	case SortPriceAsc:
		less = func(a, b property.Listing) bool { return a.PricePerNight.LessThan(b.PricePerNight) }
	case SortNameAsc:
		col := collate.New(language.English)
		less = func(a, b property.Listing) bool { return col.CompareString(a.Name, b.Name) < 0 }
	default:
		less = func(a, b property.Listing) bool { return a.EngagementScore > b.EngagementScore }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// ComputeStats derives the portfolio summary bar figures
func ComputeStats(listings []property.Listing) Stats {
	if len(listings) == 0 {
		return Stats{TotalValue: decimal.Zero}
	}
	total := decimal.Zero
	engagement := 0
	for _, l := range listings {
		total = total.Add(l.PricePerNight)
		engagement += l.EngagementScore
	}
	return Stats{
		AvgEngagement: int(math.Round(float64(engagement) / float64(len(listings)))),
		TotalValue:    total,
		SyncHealth:    PlatformSyncHealth,
	}
}
