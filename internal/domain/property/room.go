package property

import (
	"strconv"
	"time"

	"github.com/britrip/hotelier/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SizeUnit is the unit a room's floor area is expressed in
type SizeUnit string

const (
	SizeUnitSqm  SizeUnit = "sqm"
	SizeUnitSqft SizeUnit = "sqft"
)

// IsValid reports whether u is a known unit
func (u SizeUnit) IsValid() bool {
	return u == SizeUnitSqm || u == SizeUnitSqft
}

// DefaultCommissionRate is the platform commission applied to new rooms
var DefaultCommissionRate = decimal.NewFromFloat(0.15)

// BedConfig counts the beds of each kind in a room
type BedConfig struct {
	Single    int `json:"single"`
	Double    int `json:"double"`
	King      int `json:"king"`
	SuperKing int `json:"superKing"`
}

// Validate rejects negative bed counts
func (b BedConfig) Validate() error {
	if b.Single < 0 || b.Double < 0 || b.King < 0 || b.SuperKing < 0 {
		return shared.NewDomainError("INVALID_ROOM", "bed counts cannot be negative")
	}
	return nil
}

// RatePlans toggles the three rate plans a room can be sold under
type RatePlans struct {
	Standard      bool `json:"standard"`
	NonRefundable bool `json:"nonRefundable"`
	Weekly        bool `json:"weekly"`
}

// RoomUnit is one room type configuration of a property record.
// Its ID is unique within the parent record only.
type RoomUnit struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	Quantity          int       `json:"quantity"`
	Beds              BedConfig `json:"beds"`
	Guests            int       `json:"guests"`
	Size              int       `json:"size"`
	SizeUnit          SizeUnit  `json:"sizeUnit"`
	IsSmokingAllowed  bool      `json:"isSmokingAllowed"`
	IsBathroomPrivate bool      `json:"isBathroomPrivate"`

	BathroomAmenities []string `json:"bathroomAmenities"`
	GeneralAmenities  []string `json:"generalAmenities"`
	OutdoorAmenities  []string `json:"outdoorAmenities"`
	FoodAmenities     []string `json:"foodAmenities"`

	Name           string          `json:"name"`
	BasePrice      decimal.Decimal `json:"basePrice"`
	CommissionRate decimal.Decimal `json:"commissionRate"`
	Plans          RatePlans       `json:"plans"`
}

// Validate checks the counts, unit and price of the room. An empty unit is
// accepted; it renders as the default.
func (r RoomUnit) Validate() error {
	if r.Quantity < 0 || r.Guests < 0 || r.Size < 0 {
		return shared.NewDomainError("INVALID_ROOM", "room quantity, guests and size cannot be negative")
	}
	if err := r.Beds.Validate(); err != nil {
		return err
	}
	if r.SizeUnit != "" && !r.SizeUnit.IsValid() {
		return shared.NewDomainError("INVALID_ROOM", "unknown size unit: "+string(r.SizeUnit))
	}
	if r.BasePrice.IsNegative() {
		return shared.NewDomainError("INVALID_ROOM", "room base price cannot be negative")
	}
	return nil
}

// OwnerEarnings is the nightly amount left to the owner after commission:
// basePrice * (1 - commissionRate), rounded to cents.
func (r RoomUnit) OwnerEarnings() decimal.Decimal {
	return r.BasePrice.Mul(decimal.NewFromInt(1).Sub(r.CommissionRate)).Round(2)
}

// Clone returns a deep copy of the room
func (r RoomUnit) Clone() RoomUnit {
	c := r
	c.BathroomAmenities = cloneStrings(r.BathroomAmenities)
	c.GeneralAmenities = cloneStrings(r.GeneralAmenities)
	c.OutdoorAmenities = cloneStrings(r.OutdoorAmenities)
	c.FoodAmenities = cloneStrings(r.FoodAmenities)
	return c
}

// DefaultRoomTemplate is the draft a new room starts from
func DefaultRoomTemplate() RoomUnit {
	return RoomUnit{
		Type:              "Double Room",
		Quantity:          1,
		Beds:              BedConfig{Double: 1},
		Guests:            2,
		Size:              25,
		SizeUnit:          SizeUnitSqm,
		IsBathroomPrivate: true,
		BathroomAmenities: []string{},
		GeneralAmenities:  []string{},
		OutdoorAmenities:  []string{},
		FoodAmenities:     []string{"Tea/Coffee Maker"},
		Name:              "Double Room with Private Bathroom",
		BasePrice:         decimal.NewFromInt(400),
		CommissionRate:    DefaultCommissionRate,
		Plans:             RatePlans{Standard: true, NonRefundable: true, Weekly: true},
	}
}

// NextRoomID derives a room id from now that does not collide with any id in rooms
func NextRoomID(rooms []RoomUnit, now time.Time) string {
	taken := make(map[string]struct{}, len(rooms))
	for _, r := range rooms {
		taken[r.ID] = struct{}{}
	}
	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if _, ok := taken[id]; !ok {
			return id
		}
		ms++
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
