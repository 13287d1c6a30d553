package event

import (
	"context"

	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/domain/shared"
	"go.uber.org/zap"
)

// LogHandler writes a structured line for every portfolio event
type LogHandler struct {
	logger *zap.Logger
}

// NewLogHandler creates a LogHandler
func NewLogHandler(logger *zap.Logger) *LogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogHandler{logger: logger}
}

// EventTypes implements shared.EventHandler
func (h *LogHandler) EventTypes() []string {
	return []string{
		property.EventTypePropertyClaimed,
		property.EventTypePropertySaved,
		property.EventTypePropertyUpdated,
		property.EventTypePortfolioCleared,
	}
}

// Handle implements shared.EventHandler
func (h *LogHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", ev.EventType()),
		zap.String("session_id", ev.SessionID()),
		zap.String("record_id", ev.AggregateID()),
	}
	switch e := ev.(type) {
	case *property.PropertyClaimedEvent:
		fields = append(fields, zap.String("listing_id", e.ListingID), zap.String("name", e.Name))
	case *property.PropertySavedEvent:
		fields = append(fields, zap.Bool("created", e.Created), zap.Int("rooms", e.Rooms))
	case *property.PropertyUpdatedEvent:
		fields = append(fields, zap.String("section", e.Section))
	case *property.PortfolioClearedEvent:
		fields = append(fields, zap.Int("records", e.Records))
	}
	h.logger.Info("portfolio event", fields...)
	return nil
}

var _ shared.EventHandler = (*LogHandler)(nil)
