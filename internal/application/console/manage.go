package console

import (
	"context"

	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/domain/sectionedit"
	"github.com/britrip/hotelier/internal/domain/shared"
	"github.com/britrip/hotelier/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var errNoEditor = shared.WrapDomainError(shared.ErrInvalidState.Code, "no record is open for management", nil)

func (s *Service) withEditor(sessionID string, fn func(sess *session, e *sectionedit.Editor) error) (*View, error) {
	var v *View
	err := s.withSession(sessionID, func(sess *session) error {
		e := sess.nav.Editor()
		if e == nil {
			return errNoEditor
		}
		if err := fn(sess, e); err != nil {
			return err
		}
		v = sess.view()
		return nil
	})
	return v, err
}

// BeginSectionEdit puts one section of the managed record in edit mode
func (s *Service) BeginSectionEdit(ctx context.Context, sessionID string, section sectionedit.SectionID) (*View, error) {
	return s.withEditor(sessionID, func(_ *session, e *sectionedit.Editor) error {
		return e.BeginEdit(section)
	})
}

// UpdateSectionDraft applies edits to the open section draft
func (s *Service) UpdateSectionDraft(ctx context.Context, sessionID string, mutate func(r *property.Record)) (*View, error) {
	return s.withEditor(sessionID, func(_ *session, e *sectionedit.Editor) error {
		return e.UpdateDraft(mutate)
	})
}

// AppendSectionRoom adds a room to the rooms draft, from the default template when room is nil
func (s *Service) AppendSectionRoom(ctx context.Context, sessionID string, room *property.RoomUnit) (*View, error) {
	return s.withEditor(sessionID, func(_ *session, e *sectionedit.Editor) error {
		return e.AppendRoom(room, s.clock)
	})
}

// RemoveSectionRoom removes a room from the rooms draft
func (s *Service) RemoveSectionRoom(ctx context.Context, sessionID, roomID string) (*View, error) {
	return s.withEditor(sessionID, func(_ *session, e *sectionedit.Editor) error {
		return e.RemoveRoom(roomID)
	})
}

// SaveSection commits the open section into the managed record
func (s *Service) SaveSection(ctx context.Context, sessionID string) (*View, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "console", "save_section", telemetry.SpanAttrSessionID, sessionID)
	defer span.End()

	v, err := s.withEditor(sessionID, func(sess *session, e *sectionedit.Editor) error {
		section := e.Editing()
		rec, err := e.Save()
		if err != nil {
			return err
		}
		telemetry.SetAttributes(span, telemetry.SpanAttrRecordID, rec.ID, telemetry.SpanAttrSection, string(section))
		sess.reports.Forget(rec.ID)
		s.persist(ctx, sess)
		s.publish(ctx, property.NewPropertyUpdatedEvent(sess.id, rec.ID, string(section)))
		s.logger.Info("section saved",
			zap.String("session_id", sess.id),
			zap.String("record_id", rec.ID),
			zap.String("section", string(section)))
		return nil
	})
	telemetry.RecordError(span, err)
	return v, err
}

// CancelSection discards the open section draft
func (s *Service) CancelSection(ctx context.Context, sessionID string) (*View, error) {
	return s.withEditor(sessionID, func(_ *session, e *sectionedit.Editor) error {
		e.Cancel()
		return nil
	})
}
