package property

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCountry is assumed for records the owner has not located yet
const DefaultCountry = "United Arab Emirates"

// Listing is the display view of a property in catalog and marketplace contexts
type Listing struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Location        string          `json:"location"`
	PricePerNight   decimal.Decimal `json:"price"`
	StarRating      int             `json:"rating"`
	EngagementScore int             `json:"engagement"`
	PrimaryImage    string          `json:"image"`
	Gallery         []string        `json:"images,omitempty"`
	Description     string          `json:"description,omitempty"`
	Amenities       []string        `json:"amenities,omitempty"`
}

// SameProperty is the identity rule between catalog listings and owned records
func SameProperty(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Clone returns a deep copy
func (l Listing) Clone() Listing {
	c := l
	if l.Gallery != nil {
		c.Gallery = cloneStrings(l.Gallery)
	}
	if l.Amenities != nil {
		c.Amenities = cloneStrings(l.Amenities)
	}
	return c
}

// ClaimRecord converts a catalog listing into an owned record. The first three
// phases are considered done; the legal and financial step is left open.
func ClaimRecord(l Listing, now time.Time) *Record {
	city, _, _ := strings.Cut(l.Location, ",")

	photos := make([]string, 0, 1+len(l.Gallery))
	photos = append(photos, l.PrimaryImage)
	photos = append(photos, l.Gallery...)

	return &Record{
		ID:                 fmt.Sprintf("prop-%s-%d", l.ID, now.UnixMilli()),
		Name:               l.Name,
		Address:            l.Location,
		Country:            DefaultCountry,
		City:               strings.TrimSpace(city),
		Category:           CategoryBoutique,
		StarRating:         l.StarRating,
		Description:        l.Description,
		Amenities:          cloneStrings(l.Amenities),
		BreakfastAvailable: No,
		Parking:            ParkingNone,
		Languages:          []string{"English"},
		CheckInFrom:        "14:00",
		CheckInTo:          "23:00",
		CheckOutFrom:       "06:00",
		CheckOutTo:         "11:00",
		AllowChildren:      true,
		AllowPets:          PetsNo,
		Rooms: []RoomUnit{{
			ID:                "r1",
			Name:              "Standard Room",
			Type:              "Double",
			Quantity:          10,
			BasePrice:         l.PricePerNight,
			Guests:            2,
			Beds:              BedConfig{Double: 1},
			Size:              30,
			SizeUnit:          SizeUnitSqm,
			IsBathroomPrivate: true,
			BathroomAmenities: []string{},
			GeneralAmenities:  []string{},
			OutdoorAmenities:  []string{},
			FoodAmenities:     []string{},
			CommissionRate:    DefaultCommissionRate,
			Plans:             RatePlans{Standard: true},
		}},
		Photos:              photos,
		IsBasicInfoComplete: true,
		IsRoomsComplete:     true,
		IsPhotosComplete:    true,
	}
}
