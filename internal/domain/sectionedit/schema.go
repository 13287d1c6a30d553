// Package sectionedit implements per-section editing of a committed property
// record with a local draft and explicit commit or discard.
package sectionedit

import (
	"github.com/britrip/hotelier/internal/domain/property"
)

// SectionID names a logical section of a property record
type SectionID string

const (
	SectionIdentity  SectionID = "identity"
	SectionAmenities SectionID = "amenities"
	SectionRooms     SectionID = "rooms"
	SectionPhotos    SectionID = "photos"
	SectionPolicies  SectionID = "policies"
)

// Section declares which record fields a section owns. Apply copies exactly
// those fields from src into dst.
type Section struct {
	ID     SectionID `json:"id"`
	Title  string    `json:"title"`
	Fields []string  `json:"fields"`

	Apply func(dst, src *property.Record) `json:"-"`
}

// Schema is an ordered set of sections
type Schema struct {
	sections []Section
}

// NewSchema builds a schema from sections
func NewSchema(sections ...Section) Schema {
	return Schema{sections: sections}
}

// Lookup returns the section with id
func (s Schema) Lookup(id SectionID) (Section, bool) {
	for _, sec := range s.sections {
		if sec.ID == id {
			return sec, true
		}
	}
	return Section{}, false
}

// Sections returns the sections in display order
func (s Schema) Sections() []Section {
	out := make([]Section, len(s.sections))
	copy(out, s.sections)
	return out
}

// PropertySchema is the management screen layout for a property record
func PropertySchema() Schema {
	return NewSchema(
		Section{
			ID:     SectionIdentity,
			Title:  "Identity & Location",
			Fields: []string{"name", "category", "starRating", "address", "apartmentNumber", "country", "city", "postalCode", "isPartOfChain"},
			Apply: func(dst, src *property.Record) {
				dst.Name = src.Name
				dst.Category = src.Category
				dst.StarRating = src.StarRating
				dst.Address = src.Address
				dst.ApartmentNumber = src.ApartmentNumber
				dst.Country = src.Country
				dst.City = src.City
				dst.PostalCode = src.PostalCode
				dst.IsPartOfChain = src.IsPartOfChain
			},
		},
		Section{
			ID:     SectionAmenities,
			Title:  "Service Profile",
			Fields: []string{"amenities", "description", "breakfastAvailable", "parking", "languages"},
			Apply: func(dst, src *property.Record) {
				dst.Amenities = append([]string{}, src.Amenities...)
				dst.Description = src.Description
				dst.BreakfastAvailable = src.BreakfastAvailable
				dst.Parking = src.Parking
				dst.Languages = append([]string{}, src.Languages...)
			},
		},
		Section{
			ID:     SectionRooms,
			Title:  "Room Inventory",
			Fields: []string{"rooms"},
			Apply: func(dst, src *property.Record) {
				rooms := make([]property.RoomUnit, len(src.Rooms))
				for i := range src.Rooms {
					rooms[i] = src.Rooms[i].Clone()
				}
				dst.Rooms = rooms
			},
		},
		Section{
			ID:     SectionPhotos,
			Title:  "Visual Assets",
			Fields: []string{"photos"},
			Apply: func(dst, src *property.Record) {
				dst.Photos = append([]string{}, src.Photos...)
			},
		},
		Section{
			ID:     SectionPolicies,
			Title:  "House Rules",
			Fields: []string{"checkInFrom", "checkInTo", "checkOutFrom", "checkOutTo", "allowChildren", "allowPets"},
			Apply: func(dst, src *property.Record) {
				dst.CheckInFrom = src.CheckInFrom
				dst.CheckInTo = src.CheckInTo
				dst.CheckOutFrom = src.CheckOutFrom
				dst.CheckOutTo = src.CheckOutTo
				dst.AllowChildren = src.AllowChildren
				dst.AllowPets = src.AllowPets
			},
		},
	)
}
