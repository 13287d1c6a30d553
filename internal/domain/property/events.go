package property

import "github.com/britrip/hotelier/internal/domain/shared"

// Event type constants
const (
	EventTypePropertyClaimed  = "PropertyClaimed"
	EventTypePropertySaved    = "PropertySaved"
	EventTypePropertyUpdated  = "PropertyUpdated"
	EventTypePortfolioCleared = "PortfolioCleared"
)

// PropertyClaimedEvent is raised when a catalog listing is converted into an owned record
type PropertyClaimedEvent struct {
	shared.BaseDomainEvent
	ListingID string `json:"listing_id"`
	Name      string `json:"name"`
}

// NewPropertyClaimedEvent creates a new PropertyClaimedEvent
func NewPropertyClaimedEvent(sessionID string, rec *Record, listingID string) *PropertyClaimedEvent {
	return &PropertyClaimedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyClaimed, AggregateTypePropertyRecord, rec.ID, sessionID),
		ListingID:       listingID,
		Name:            rec.Name,
	}
}

// PropertySavedEvent is raised when a finished wizard draft is upserted into the portfolio
type PropertySavedEvent struct {
	shared.BaseDomainEvent
	Name    string `json:"name"`
	Created bool   `json:"created"`
	Rooms   int    `json:"rooms"`
}

// NewPropertySavedEvent creates a new PropertySavedEvent
func NewPropertySavedEvent(sessionID string, rec *Record, created bool) *PropertySavedEvent {
	return &PropertySavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertySaved, AggregateTypePropertyRecord, rec.ID, sessionID),
		Name:            rec.Name,
		Created:         created,
		Rooms:           len(rec.Rooms),
	}
}

// PropertyUpdatedEvent is raised when a management section is committed
type PropertyUpdatedEvent struct {
	shared.BaseDomainEvent
	Section string `json:"section"`
}

// NewPropertyUpdatedEvent creates a new PropertyUpdatedEvent
func NewPropertyUpdatedEvent(sessionID, recordID, section string) *PropertyUpdatedEvent {
	return &PropertyUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyUpdated, AggregateTypePropertyRecord, recordID, sessionID),
		Section:         section,
	}
}

// PortfolioClearedEvent is raised on logout when the session portfolio is dropped
type PortfolioClearedEvent struct {
	shared.BaseDomainEvent
	Records int `json:"records"`
}

// NewPortfolioClearedEvent creates a new PortfolioClearedEvent
func NewPortfolioClearedEvent(sessionID string, records int) *PortfolioClearedEvent {
	return &PortfolioClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePortfolioCleared, "Portfolio", sessionID, sessionID),
		Records:         records,
	}
}
