// Package wizard drives the multi-phase onboarding flow that produces or edits a
// property record.
package wizard

// Phase is a top-level onboarding stage
type Phase string

const (
	PhaseDashboard Phase = "DASHBOARD"
	PhaseBasicInfo Phase = "FLOW_BASIC"
	PhaseRooms     Phase = "FLOW_ROOMS"
	PhasePhotos    Phase = "FLOW_PHOTOS"
	PhaseFinal     Phase = "FLOW_FINAL"
)

// IsValid reports whether p is a known phase
func (p Phase) IsValid() bool {
	switch p {
	case PhaseDashboard, PhaseBasicInfo, PhaseRooms, PhasePhotos, PhaseFinal:
		return true
	}
	return false
}

// BasicSubStep is a step of the basic information sub-flow
type BasicSubStep string

const (
	BasicLocation  BasicSubStep = "LOCATION"
	BasicIdentity  BasicSubStep = "IDENTITY"
	BasicAmenities BasicSubStep = "AMENITIES"
	BasicServices  BasicSubStep = "SERVICES"
	BasicLanguages BasicSubStep = "LANGUAGES"
	BasicRules     BasicSubStep = "RULES"
)

// RoomSubStep is a step of the single-room sub-flow. RoomList is the overview
// the flow returns to after each committed room.
type RoomSubStep string

const (
	RoomList      RoomSubStep = "ROOM_LIST"
	RoomDetails   RoomSubStep = "DETAILS"
	RoomBathroom  RoomSubStep = "BATHROOM"
	RoomAmenities RoomSubStep = "AMENITIES"
	RoomName      RoomSubStep = "NAME"
	RoomPricing   RoomSubStep = "PRICING"
	RoomPlans     RoomSubStep = "PLANS"
)

// FinalSubStep is a step of the legal and financial sub-flow.
// Only Payments and ImportantInfo are part of the active sequence.
type FinalSubStep string

const (
	FinalPayments      FinalSubStep = "PAYMENTS"
	FinalCreditCards   FinalSubStep = "CREDIT_CARDS"
	FinalInvoices      FinalSubStep = "INVOICES"
	FinalLicense       FinalSubStep = "LICENSE"
	FinalImportantInfo FinalSubStep = "IMPORTANT_INFO"
)

var (
	basicSequence = []BasicSubStep{BasicLocation, BasicIdentity, BasicAmenities, BasicServices, BasicLanguages, BasicRules}
	roomSequence  = []RoomSubStep{RoomDetails, RoomBathroom, RoomAmenities, RoomName, RoomPricing, RoomPlans}
	finalSequence = []FinalSubStep{FinalPayments, FinalImportantInfo}
)

// next returns the step after cur in seq, and false when cur is the last step
func next[S comparable](seq []S, cur S) (S, bool) {
	for i, s := range seq {
		if s == cur && i < len(seq)-1 {
			return seq[i+1], true
		}
	}
	var zero S
	return zero, false
}
