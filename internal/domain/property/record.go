// Package property holds the hotelier-owned property record, its room units and
// the marketplace listing shape they are displayed through.
package property

import (
	"fmt"
	"time"

	"github.com/britrip/hotelier/internal/domain/shared"
)

// AggregateTypePropertyRecord is the aggregate type name used in events
const AggregateTypePropertyRecord = "PropertyRecord"

// Category classifies a property
type Category string

const (
	CategoryLuxury    Category = "Luxury"
	CategoryBoutique  Category = "Boutique"
	CategoryBudget    Category = "Budget"
	CategoryResort    Category = "Resort"
	CategoryApartment Category = "Apartment"
)

// IsValid reports whether c is one of the known categories
func (c Category) IsValid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// YesNo is a two-valued answer as shown on the form
type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

// ParkingMode describes on-site parking
type ParkingMode string

const (
	ParkingNone ParkingMode = "No"
	ParkingFree ParkingMode = "Yes, Free"
	ParkingPaid ParkingMode = "Yes, Paid"
)

// PetsPolicy describes whether pets are accepted
type PetsPolicy string

const (
	PetsYes         PetsPolicy = "Yes"
	PetsNo          PetsPolicy = "No"
	PetsUponRequest PetsPolicy = "Upon Request"
)

// Record is the authoritative hotelier-owned property entity.
//
// The four completion flags are set by phase transitions only. They are never
// recomputed from content, so a flag may be stale relative to the fields.
type Record struct {
	ID string `json:"id"`

	Name            string   `json:"name"`
	Address         string   `json:"address"`
	ApartmentNumber string   `json:"apartmentNumber,omitempty"`
	Country         string   `json:"country"`
	City            string   `json:"city"`
	PostalCode      string   `json:"postalCode"`
	Category        Category `json:"category"`
	StarRating      int      `json:"starRating"`
	IsPartOfChain   bool     `json:"isPartOfChain"`

	Description        string      `json:"description"`
	Amenities          []string    `json:"amenities"`
	BreakfastAvailable YesNo       `json:"breakfastAvailable"`
	Parking            ParkingMode `json:"parking"`
	Languages          []string    `json:"languages"`

	CheckInFrom   string     `json:"checkInFrom"`
	CheckInTo     string     `json:"checkInTo"`
	CheckOutFrom  string     `json:"checkOutFrom"`
	CheckOutTo    string     `json:"checkOutTo"`
	AllowChildren bool       `json:"allowChildren"`
	AllowPets     PetsPolicy `json:"allowPets"`

	Rooms  []RoomUnit `json:"rooms"`
	Photos []string   `json:"photos"`

	IsBasicInfoComplete  bool `json:"isBasicInfoComplete"`
	IsRoomsComplete      bool `json:"isRoomsComplete"`
	IsPhotosComplete     bool `json:"isPhotosComplete"`
	IsFinalStepsComplete bool `json:"isFinalStepsComplete"`
}

// AllPhasesComplete reports whether every onboarding phase has been marked done
func (r *Record) AllPhasesComplete() bool {
	return r.IsBasicInfoComplete && r.IsRoomsComplete && r.IsPhotosComplete && r.IsFinalStepsComplete
}

// FirstRoom returns the first room, and false when there are none
func (r *Record) FirstRoom() (RoomUnit, bool) {
	if len(r.Rooms) == 0 {
		return RoomUnit{}, false
	}
	return r.Rooms[0], true
}

// PrimaryPhoto returns the first photo or an empty reference
func (r *Record) PrimaryPhoto() string {
	if len(r.Photos) == 0 {
		return ""
	}
	return r.Photos[0]
}

// RoomIndex returns the position of the room with id, or -1
func (r *Record) RoomIndex(id string) int {
	for i := range r.Rooms {
		if r.Rooms[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so drafts never alias committed state
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Amenities = cloneStrings(r.Amenities)
	c.Languages = cloneStrings(r.Languages)
	c.Photos = cloneStrings(r.Photos)
	c.Rooms = make([]RoomUnit, len(r.Rooms))
	for i := range r.Rooms {
		c.Rooms[i] = r.Rooms[i].Clone()
	}
	return &c
}

// NewDraftRecord returns the blank record a brand-new registration starts from
func NewDraftRecord(now time.Time) *Record {
	return &Record{
		ID:                 fmt.Sprintf("hotel-%d", now.UnixMilli()),
		Country:            DefaultCountry,
		Category:           CategoryBoutique,
		Amenities:          []string{},
		BreakfastAvailable: No,
		Parking:            ParkingNone,
		Languages:          []string{"English"},
		CheckInFrom:        "14:00",
		CheckInTo:          "23:00",
		CheckOutFrom:       "06:00",
		CheckOutTo:         "11:00",
		AllowChildren:      true,
		AllowPets:          PetsNo,
		Rooms:              []RoomUnit{},
		Photos:             []string{},
	}
}

// Validate checks the enumerated fields and every room. It is not a completion
// gate; the wizard steps advance without it and only commits run it.
func (r *Record) Validate() error {
	if r.ID == "" {
		return shared.NewDomainError("INVALID_RECORD", "record id is required")
	}
	if r.Category != "" && !r.Category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "unknown category: "+string(r.Category))
	}
	if r.StarRating < 0 || r.StarRating > 5 {
		return shared.NewDomainError("INVALID_STAR_RATING", "star rating must be between 0 and 5")
	}
	for _, room := range r.Rooms {
		if err := room.Validate(); err != nil {
			return err
		}
	}
	return nil
}
