package dto

import (
	"fmt"
	"time"

	consoleapp "github.com/britrip/hotelier/internal/application/console"
	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/domain/shared"
)

// SessionResponse is returned when a console session is opened
type SessionResponse struct {
	Token     string           `json:"token"`
	TokenType string           `json:"token_type"`
	ExpiresAt time.Time        `json:"expires_at"`
	Session   *consoleapp.View `json:"session"`
}

// AuthSubmitRequest carries the sign-in credentials
type AuthSubmitRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

// OTPRequest fills the one-time code: either one digit at index, or the whole code
type OTPRequest struct {
	Index *int   `json:"index" binding:"omitempty,min=0,max=5"`
	Digit string `json:"digit" binding:"omitempty,len=1,numeric"`
	Code  string `json:"code" binding:"omitempty,len=6,numeric"`
}

// Position returns the digit index, or -1 when a whole code was sent
func (r *OTPRequest) Position() (int, string, error) {
	if r.Code != "" {
		return -1, r.Code, nil
	}
	if r.Index == nil {
		return 0, "", shared.WrapDomainError(shared.ErrInvalidInput.Code, "either code or index is required", nil)
	}
	return *r.Index, r.Digit, nil
}

// AuthModeRequest switches between login and signup
type AuthModeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=login signup"`
}

// WizardStartRequest opens the wizard on a blank draft or on the managed record
type WizardStartRequest struct {
	Edit bool `json:"edit"`
}

// PhaseRequest selects a wizard phase
type PhaseRequest struct {
	Phase string `json:"phase" binding:"required,oneof=DASHBOARD FLOW_BASIC FLOW_ROOMS FLOW_PHOTOS FLOW_FINAL"`
}

// PhotoRequest carries a photo as a data URI
type PhotoRequest struct {
	DataURI string `json:"data_uri" binding:"required,startswith=data:"`
}

// MessageRequest is a question for the assistant
type MessageRequest struct {
	Text string `json:"text" binding:"required,max=4000"`
}

// PortfolioQuery filters and orders the portfolio view
type PortfolioQuery struct {
	Search string `form:"search" binding:"omitempty,max=100"`
	Sort   string `form:"sort" binding:"omitempty,oneof=visits-desc visits-asc price-desc price-asc name-asc"`
}

// DraftPatch edits record fields. Absent fields are left alone.
type DraftPatch struct {
	Name            *string `json:"name" binding:"omitempty,max=120"`
	Address         *string `json:"address" binding:"omitempty,max=200"`
	ApartmentNumber *string `json:"apartmentNumber" binding:"omitempty,max=20"`
	Country         *string `json:"country" binding:"omitempty,max=80"`
	City            *string `json:"city" binding:"omitempty,max=80"`
	PostalCode      *string `json:"postalCode" binding:"omitempty,max=20"`
	Category        *string `json:"category" binding:"omitempty,oneof=Luxury Boutique Budget Resort Apartment"`
	StarRating      *int    `json:"starRating" binding:"omitempty,min=0,max=5"`
	IsPartOfChain   *bool   `json:"isPartOfChain"`

	Description        *string  `json:"description" binding:"omitempty,max=4000"`
	Amenities          []string `json:"amenities" binding:"omitempty,dive,max=60"`
	ToggleAmenities    []string `json:"toggleAmenities" binding:"omitempty,dive,max=60"`
	BreakfastAvailable *string  `json:"breakfastAvailable" binding:"omitempty,oneof=Yes No"`
	Parking            *string  `json:"parking"`
	Languages          []string `json:"languages" binding:"omitempty,dive,oneof=English Russian Arabic Hindi French German Spanish Chinese"`

	CheckInFrom   *string `json:"checkInFrom" binding:"omitempty,clock"`
	CheckInTo     *string `json:"checkInTo" binding:"omitempty,clock"`
	CheckOutFrom  *string `json:"checkOutFrom" binding:"omitempty,clock"`
	CheckOutTo    *string `json:"checkOutTo" binding:"omitempty,clock"`
	AllowChildren *bool   `json:"allowChildren"`
	AllowPets     *string `json:"allowPets"`
}

// Validate checks the fields whose values cannot be expressed as binding tags
func (p *DraftPatch) Validate() error {
	if p.Parking != nil {
		switch property.ParkingMode(*p.Parking) {
		case property.ParkingNone, property.ParkingFree, property.ParkingPaid:
		default:
			return shared.WrapDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("unknown parking option %q", *p.Parking), nil)
		}
	}
	if p.AllowPets != nil {
		switch property.PetsPolicy(*p.AllowPets) {
		case property.PetsYes, property.PetsNo, property.PetsUponRequest:
		default:
			return shared.WrapDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("unknown pets policy %q", *p.AllowPets), nil)
		}
	}
	return nil
}

// Apply writes the present fields into r
func (p *DraftPatch) Apply(r *property.Record) {
	setString(&r.Name, p.Name)
	setString(&r.Address, p.Address)
	setString(&r.ApartmentNumber, p.ApartmentNumber)
	setString(&r.Country, p.Country)
	setString(&r.City, p.City)
	setString(&r.PostalCode, p.PostalCode)
	if p.Category != nil {
		r.Category = property.Category(*p.Category)
	}
	if p.StarRating != nil {
		r.StarRating = *p.StarRating
	}
	if p.IsPartOfChain != nil {
		r.IsPartOfChain = *p.IsPartOfChain
	}

	setString(&r.Description, p.Description)
	if p.Amenities != nil {
		r.Amenities = append([]string{}, p.Amenities...)
	}
	for _, tag := range p.ToggleAmenities {
		r.Amenities = property.Toggle(r.Amenities, tag)
	}
	if p.BreakfastAvailable != nil {
		r.BreakfastAvailable = property.YesNo(*p.BreakfastAvailable)
	}
	if p.Parking != nil {
		r.Parking = property.ParkingMode(*p.Parking)
	}
	if p.Languages != nil {
		r.Languages = append([]string{}, p.Languages...)
	}

	setString(&r.CheckInFrom, p.CheckInFrom)
	setString(&r.CheckInTo, p.CheckInTo)
	setString(&r.CheckOutFrom, p.CheckOutFrom)
	setString(&r.CheckOutTo, p.CheckOutTo)
	if p.AllowChildren != nil {
		r.AllowChildren = *p.AllowChildren
	}
	if p.AllowPets != nil {
		r.AllowPets = property.PetsPolicy(*p.AllowPets)
	}
}

// RoomPatch edits a room. Numeric fields arrive as raw form text and are
// coerced; unparseable input keeps the previous value.
type RoomPatch struct {
	Type              *string             `json:"type" binding:"omitempty,max=60"`
	Quantity          *string             `json:"quantity" binding:"omitempty,max=6"`
	Beds              *property.BedConfig `json:"beds"`
	Guests            *string             `json:"guests" binding:"omitempty,max=4"`
	Size              *string             `json:"size" binding:"omitempty,max=6"`
	SizeUnit          *string             `json:"sizeUnit" binding:"omitempty,oneof=sqm sqft"`
	IsSmokingAllowed  *bool               `json:"isSmokingAllowed"`
	IsBathroomPrivate *bool               `json:"isBathroomPrivate"`

	BathroomAmenities []string `json:"bathroomAmenities" binding:"omitempty,dive,max=60"`
	GeneralAmenities  []string `json:"generalAmenities" binding:"omitempty,dive,max=60"`
	OutdoorAmenities  []string `json:"outdoorAmenities" binding:"omitempty,dive,max=60"`
	FoodAmenities     []string `json:"foodAmenities" binding:"omitempty,dive,max=60"`

	Name           *string             `json:"name" binding:"omitempty,roomname"`
	BasePrice      *string             `json:"basePrice" binding:"omitempty,max=16"`
	CommissionRate *string             `json:"commissionRate" binding:"omitempty,max=8"`
	Plans          *property.RatePlans `json:"plans"`
}

// Validate rejects negative bed counts
func (p *RoomPatch) Validate() error {
	if p.Beds == nil {
		return nil
	}
	if err := p.Beds.Validate(); err != nil {
		return shared.WrapDomainError(shared.ErrInvalidInput.Code, "bed counts cannot be negative", err)
	}
	return nil
}

// Apply writes the present fields into r
func (p *RoomPatch) Apply(r *property.RoomUnit) {
	setString(&r.Type, p.Type)
	if p.Quantity != nil {
		r.Quantity = property.ParseCount(*p.Quantity, r.Quantity)
	}
	if p.Beds != nil {
		r.Beds = *p.Beds
	}
	if p.Guests != nil {
		r.Guests = property.ParseCount(*p.Guests, r.Guests)
	}
	if p.Size != nil {
		r.Size = property.ParseCount(*p.Size, r.Size)
	}
	if p.SizeUnit != nil {
		r.SizeUnit = property.SizeUnit(*p.SizeUnit)
	}
	if p.IsSmokingAllowed != nil {
		r.IsSmokingAllowed = *p.IsSmokingAllowed
	}
	if p.IsBathroomPrivate != nil {
		r.IsBathroomPrivate = *p.IsBathroomPrivate
	}
	setStrings(&r.BathroomAmenities, p.BathroomAmenities)
	setStrings(&r.GeneralAmenities, p.GeneralAmenities)
	setStrings(&r.OutdoorAmenities, p.OutdoorAmenities)
	setStrings(&r.FoodAmenities, p.FoodAmenities)
	setString(&r.Name, p.Name)
	if p.BasePrice != nil {
		r.BasePrice = property.ParseAmount(*p.BasePrice, r.BasePrice)
	}
	if p.CommissionRate != nil {
		r.CommissionRate = property.ParseRate(*p.CommissionRate, r.CommissionRate)
	}
	if p.Plans != nil {
		r.Plans = *p.Plans
	}
}

// RoomEdit patches one room of a section draft by id
type RoomEdit struct {
	ID string `json:"id" binding:"required"`
	RoomPatch
}

// SectionDraftPatch edits the draft of the section being managed
type SectionDraftPatch struct {
	DraftPatch
	Rooms  []RoomEdit `json:"rooms" binding:"omitempty,dive"`
	Photos []string   `json:"photos" binding:"omitempty,dive,required"`
}

// Apply writes the present fields into r. Room edits naming an unknown id are skipped.
func (p *SectionDraftPatch) Apply(r *property.Record) {
	p.DraftPatch.Apply(r)
	for i := range p.Rooms {
		if idx := r.RoomIndex(p.Rooms[i].ID); idx >= 0 {
			p.Rooms[i].RoomPatch.Apply(&r.Rooms[idx])
		}
	}
	if p.Photos != nil {
		r.Photos = append([]string{}, p.Photos...)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setStrings(dst *[]string, src []string) {
	if src != nil {
		*dst = append([]string{}, src...)
	}
}
