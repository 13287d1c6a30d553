// Package navigation is the top-level console state machine. It owns the
// session portfolio and decides which screen, wizard or section editor is active.
package navigation

// Screen is a full-page view of the console
type Screen string

const (
	ScreenLanding       Screen = "LANDING"
	ScreenNetwork       Screen = "NETWORK"
	ScreenAuth          Screen = "AUTH"
	ScreenHome          Screen = "HOME"
	ScreenListingDetail Screen = "HOTEL_DETAILS"
	ScreenPortfolio     Screen = "MY_PROPERTIES"
	ScreenManageRecord  Screen = "MANAGE_PROPERTY"
	ScreenAnalytics     Screen = "ANALYTICS"
	ScreenRegistration  Screen = "REGISTRATION"
)

// IsTopLevel reports whether s can be reached from the navigation bar without
// any selected listing or active record
func (s Screen) IsTopLevel() bool {
	switch s {
	case ScreenLanding, ScreenNetwork, ScreenHome, ScreenPortfolio, ScreenRegistration:
		return true
	}
	return false
}

// Status qualifies the result of a transition
type Status string

const (
	StatusOK             Status = "OK"
	StatusRecordNotFound Status = "RECORD_NOT_FOUND"
	StatusNotOwned       Status = "NOT_OWNED"
	StatusIgnored        Status = "IGNORED"
)

// Outcome describes what a transition did
type Outcome struct {
	Screen   Screen `json:"screen"`
	Status   Status `json:"status"`
	RecordID string `json:"recordId,omitempty"`
	// Claimed is set when the transition converted a catalog listing
	Claimed bool `json:"claimed,omitempty"`
	// Created is set when a wizard save inserted a new record
	Created bool `json:"created,omitempty"`
}

// OK reports whether the transition took effect
func (o Outcome) OK() bool {
	return o.Status == StatusOK
}
