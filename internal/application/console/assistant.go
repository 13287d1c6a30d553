package console

import (
	"context"
	"io"

	"github.com/britrip/hotelier/internal/domain/analytics"
	"github.com/britrip/hotelier/internal/domain/assistant"
	"github.com/britrip/hotelier/internal/domain/shared"
	"github.com/britrip/hotelier/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SendMessage asks the assistant about the current screen and active record.
// The reply is produced outside the session lock so the console stays usable
// while it is pending. Blank text returns a nil message.
func (s *Service) SendMessage(ctx context.Context, sessionID, text string) (*assistant.Message, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "console", "assistant_send", telemetry.SpanAttrSessionID, sessionID)
	defer span.End()

	var reply *assistant.Message
	err := s.guarded(ctx, sessionID, OpAssistantSend, func() error {
		var (
			chat *assistant.Conversation
			view assistant.Context
		)
		err := s.withSession(sessionID, func(sess *session) error {
			chat = sess.chat
			view.Screen = string(sess.nav.Screen())
			if rec, ok := sess.nav.ActiveRecord(); ok {
				view.Record = rec
			}
			return nil
		})
		if err != nil {
			return err
		}
		telemetry.SetAttributes(span, telemetry.SpanAttrScreen, view.Screen)

		reply, err = chat.Send(ctx, text, view)
		if err != nil {
			return err
		}
		if reply != nil && reply.Fallback {
			s.fallback(ctx, "reply")
			s.logger.Warn("assistant reply fell back", zap.String("session_id", sessionID))
		}
		return nil
	})
	telemetry.RecordError(span, err)
	return reply, err
}

// Messages returns the assistant transcript
func (s *Service) Messages(ctx context.Context, sessionID string) ([]assistant.Message, error) {
	var chat *assistant.Conversation
	err := s.withSession(sessionID, func(sess *session) error {
		chat = sess.chat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chat.Messages(), nil
}

// Analytics returns the memoized dashboard of an owned record
func (s *Service) Analytics(ctx context.Context, sessionID, recordID string) (*analytics.Report, error) {
	var report *analytics.Report
	err := s.withSession(sessionID, func(sess *session) error {
		rec, ok := sess.nav.Record(recordID)
		if !ok {
			return shared.WrapDomainError(shared.ErrNotFound.Code, "record is not in the portfolio", nil)
		}
		report = sess.reports.Get(rec)
		return nil
	})
	return report, err
}

// ExportReport renders the analytics dashboard of an owned record as a PDF into w
func (s *Service) ExportReport(ctx context.Context, sessionID, recordID string, w io.Writer) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "console", "report_export",
		telemetry.SpanAttrSessionID, sessionID, telemetry.SpanAttrRecordID, recordID)
	defer span.End()

	if s.exporter == nil {
		return shared.WrapDomainError(shared.ErrInvalidState.Code, "report export is not configured", nil)
	}
	err := s.guarded(ctx, sessionID, OpReportExport, func() error {
		report, err := s.Analytics(ctx, sessionID, recordID)
		if err != nil {
			return err
		}
		if err := s.exporter.Export(ctx, report, w); err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.ReportExported(ctx)
		}
		return nil
	})
	telemetry.RecordError(span, err)
	return err
}
