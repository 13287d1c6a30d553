package property

// Categories lists the selectable property categories in display order
var Categories = []Category{
	CategoryLuxury,
	CategoryBoutique,
	CategoryBudget,
	CategoryResort,
	CategoryApartment,
}

// PropertyAmenities are the facility tags offered during onboarding
var PropertyAmenities = []string{
	"Restaurant", "Room Service", "Bar", "24-Hour Front Desk", "Sauna",
	"Fitness Center", "Garden", "Terrace", "Non-smoking Rooms", "Airport Shuttle",
	"Family Rooms", "Spa & Wellness Center", "Hot Tub/Jacuzzi", "Free Wi-Fi",
	"Air Conditioning", "Water Park", "Electric Vehicle Charging Station", "Swimming Pool", "Beach",
}

// Languages spoken by staff
var Languages = []string{"English", "Russian", "Arabic", "Hindi", "French", "German", "Spanish", "Chinese"}

// BathroomAmenities are the bathroom toiletries and fittings a room can list
var BathroomAmenities = []string{
	"Toilet Paper", "Shower", "Toilet", "Hairdryer", "Bathtub",
	"Free Toiletries", "Bidet", "Slippers", "Bathrobe", "Spa Tub",
}

// RoomGeneralAmenities are in-room amenities
var RoomGeneralAmenities = []string{
	"Clothes Rack", "Flat-screen TV", "Air Conditioning", "Linens", "Desk",
	"Wake-up Service", "Towels", "Wardrobe", "Heating", "Fan", "Safe",
	"Towels/Linens (extra fee)", "Entire Unit on Ground Floor",
}

// RoomNames is the controlled vocabulary for a room's display name
var RoomNames = []string{
	"Double Room with Private Bathroom",
	"Twin Room with Shared Bathroom",
	"Suite with City View",
	"Deluxe King Room",
	"Standard Single Room",
	"Family Suite",
}

// Contains reports whether vocab holds v
func Contains(vocab []string, v string) bool {
	for _, s := range vocab {
		if s == v {
			return true
		}
	}
	return false
}

// Toggle adds tag to tags if absent, removes it otherwise
func Toggle(tags []string, tag string) []string {
	out := make([]string, 0, len(tags)+1)
	found := false
	for _, t := range tags {
		if t == tag {
			found = true
			continue
		}
		out = append(out, t)
	}
	if !found {
		out = append(out, tag)
	}
	return out
}
