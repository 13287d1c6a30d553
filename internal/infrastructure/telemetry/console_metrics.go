package telemetry

import (
	"context"
	"errors"

	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter is nil")

// ConsoleMetrics counts console activity. It subscribes to property events
// and is also called directly for outcomes that raise no event.
type ConsoleMetrics struct {
	claims             metric.Int64Counter
	saves              metric.Int64Counter
	sectionUpdates     metric.Int64Counter
	portfoliosCleared  metric.Int64Counter
	assistantFallbacks metric.Int64Counter
	reportsExported    metric.Int64Counter
}

// NewConsoleMetrics registers the console counters on meter
func NewConsoleMetrics(meter metric.Meter) (*ConsoleMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &ConsoleMetrics{}
	counters := []struct {
		dst        *metric.Int64Counter
		name, desc string
	}{
		{&m.claims, "hotelier_property_claimed_total", "Catalog listings converted into owned records"},
		{&m.saves, "hotelier_property_saved_total", "Registration wizard saves"},
		{&m.sectionUpdates, "hotelier_section_saved_total", "Management section commits"},
		{&m.portfoliosCleared, "hotelier_portfolio_cleared_total", "Portfolios dropped at logout"},
		{&m.assistantFallbacks, "hotelier_assistant_fallback_total", "Assistant or enhancement replies replaced by a fallback"},
		{&m.reportsExported, "hotelier_report_exported_total", "Analytics reports exported as PDF"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit("{events}"))
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}
	return m, nil
}

// EventTypes implements shared.EventHandler
func (m *ConsoleMetrics) EventTypes() []string {
	return []string{
		property.EventTypePropertyClaimed,
		property.EventTypePropertySaved,
		property.EventTypePropertyUpdated,
		property.EventTypePortfolioCleared,
	}
}

// Handle implements shared.EventHandler
func (m *ConsoleMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *property.PropertyClaimedEvent:
		m.claims.Add(ctx, 1)
	case *property.PropertySavedEvent:
		m.saves.Add(ctx, 1, metric.WithAttributes(attribute.Bool("created", e.Created)))
	case *property.PropertyUpdatedEvent:
		m.sectionUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("section", e.Section)))
	case *property.PortfolioClearedEvent:
		m.portfoliosCleared.Add(ctx, 1)
	}
	return nil
}

// AssistantFallback counts a canned reply; kind is "reply" or "enhance"
func (m *ConsoleMetrics) AssistantFallback(ctx context.Context, kind string) {
	m.assistantFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// ReportExported counts a rendered analytics PDF
func (m *ConsoleMetrics) ReportExported(ctx context.Context) {
	m.reportsExported.Add(ctx, 1)
}
