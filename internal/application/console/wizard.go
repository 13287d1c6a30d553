package console

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/britrip/hotelier/internal/domain/assistant"
	"github.com/britrip/hotelier/internal/domain/navigation"
	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/domain/shared"
	"github.com/britrip/hotelier/internal/domain/wizard"
	"github.com/britrip/hotelier/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errNoWizard = shared.WrapDomainError(shared.ErrInvalidState.Code, "no registration in progress", nil)

// StartWizard opens the registration wizard, on a blank draft or on a copy of
// the record under management
func (s *Service) StartWizard(ctx context.Context, sessionID string, editActive bool) (*View, error) {
	var v *View
	err := s.withSession(sessionID, func(sess *session) error {
		if editActive {
			v = sess.withOutcome(sess.nav.StartEdit())
			return nil
		}
		out, err := sess.nav.Navigate(navigation.ScreenRegistration)
		if err != nil {
			return err
		}
		v = sess.withOutcome(out)
		return nil
	})
	return v, err
}

// withWizard runs fn on the open wizard and returns the resulting view
func (s *Service) withWizard(sessionID string, fn func(w *wizard.Wizard) error) (*View, error) {
	var v *View
	err := s.withSession(sessionID, func(sess *session) error {
		w := sess.nav.Wizard()
		if w == nil {
			return errNoWizard
		}
		if err := fn(w); err != nil {
			return err
		}
		v = sess.view()
		return nil
	})
	return v, err
}

// EnterPhase switches the wizard phase; the dashboard phase leaves the current
// phase without completing it
func (s *Service) EnterPhase(ctx context.Context, sessionID string, phase wizard.Phase) (*View, error) {
	return s.withWizard(sessionID, func(w *wizard.Wizard) error {
		if phase == wizard.PhaseDashboard {
			return w.ReturnToDashboard()
		}
		return w.EnterPhase(phase)
	})
}

// AdvanceBasicInfo moves the basic information sub-flow forward
func (s *Service) AdvanceBasicInfo(ctx context.Context, sessionID string) (*View, error) {
	return s.withWizard(sessionID, func(w *wizard.Wizard) error {
		_, err := w.AdvanceBasicInfo()
		return err
	})
}

// StartNewRoom begins a room from the default template
func (s *Service) StartNewRoom(ctx context.Context, sessionID string) (*View, error) {
	return s.withWizard(sessionID, func(w *wizard.Wizard) error {
		return w.StartNewRoom()
	})
}

// StartEditRoom loads room index into the room editor
func (s *Service) StartEditRoom(ctx context.Context, sessionID string, index int) (*View, error) {
	return s.withWizard(sessionID, func(w *wizard.Wizard) error {
		return w.StartEditRoom(index)
	})
}

// DeleteRoom removes room index from the draft
func (s *Service) DeleteRoom(ctx context.Context, sessionID string, index int) (*View, error) {
	return s.withWizard(sessionID, func(w *wizard.Wizard) error {
		return w.DeleteRoom(index)
	})
}

// AdvanceRoom moves the room sub-flow forward, committing the room at its end
func (s *Service) AdvanceRoom(ctx context.Context, sessionID string) (*View, error) {
	return s.withWizard(sessionID, func(w *wizard.Wizard) error {
		_, err := w.AdvanceRoom()
		return err
	})
}

// AdvanceFinal moves the final steps sub-flow forward
func (s *Service) AdvanceFinal(ctx context.Context, sessionID string) (*View, error) {
	return s.withWizard(sessionID, func(w *wizard.Wizard) error {
		_, err := w.AdvanceFinal()
		return err
	})
}

// UpdateDraft applies field edits to the wizard draft
func (s *Service) UpdateDraft(ctx context.Context, sessionID string, mutate func(r *property.Record)) (*View, error) {
	return s.withWizard(sessionID, func(w *wizard.Wizard) error {
		return w.UpdateDraft(mutate)
	})
}

// UpdateDraftRoom applies field edits to the room being edited
func (s *Service) UpdateDraftRoom(ctx context.Context, sessionID string, mutate func(r *property.RoomUnit)) (*View, error) {
	return s.withWizard(sessionID, func(w *wizard.Wizard) error {
		return w.UpdateDraftRoom(mutate)
	})
}

// RemovePhoto drops photo index from the draft
func (s *Service) RemovePhoto(ctx context.Context, sessionID string, index int) (*View, error) {
	return s.withWizard(sessionID, func(w *wizard.Wizard) error {
		return w.RemovePhoto(index)
	})
}

// IngestPhoto stores an uploaded photo and appends its reference to the draft.
// The upload runs outside the session lock; a wizard closed meanwhile drops it.
// Uploads of different files run side by side and land in completion order;
// only a resend of the same bytes is refused while the first is in flight.
func (s *Service) IngestPhoto(ctx context.Context, sessionID string, asset Asset) (*View, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "console", "photo_ingest", telemetry.SpanAttrSessionID, sessionID)
	defer span.End()

	if len(asset.Data) == 0 {
		return nil, shared.WrapDomainError(shared.ErrInvalidInput.Code, "photo is empty", nil)
	}
	if int64(len(asset.Data)) > s.maxPhotoBytes {
		return nil, shared.NewDomainError("PHOTO_TOO_LARGE",
			fmt.Sprintf("photo exceeds %d bytes", s.maxPhotoBytes))
	}
	if s.assets == nil {
		return nil, shared.WrapDomainError(shared.ErrInvalidState.Code, "photo storage is not configured", nil)
	}

	var v *View
	err := s.guarded(ctx, sessionID, photoIngestOp(asset.Data), func() error {
		var (
			w       *wizard.Wizard
			draftID string
		)
		err := s.withSession(sessionID, func(sess *session) error {
			if w = sess.nav.Wizard(); w == nil {
				return errNoWizard
			}
			draftID = w.Draft().ID
			return nil
		})
		if err != nil {
			return err
		}

		key := fmt.Sprintf("%s/%s/%s", sessionID, draftID, uuid.NewString())
		ref, err := s.assets.Store(ctx, key, asset)
		if err != nil {
			return shared.WrapDomainError("PHOTO_REJECTED", "photo could not be stored", err)
		}

		v, err = s.withWizard(sessionID, func(cur *wizard.Wizard) error {
			if cur != w {
				return errNoWizard
			}
			return cur.AddPhoto(ref)
		})
		return err
	})
	telemetry.RecordError(span, err)
	return v, err
}

// photoIngestOp scopes the in-flight key to one upload
func photoIngestOp(data []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return fmt.Sprintf("%s:%x", OpPhotoIngest, h.Sum64())
}

// EnhanceDescription rewrites the draft description with the text service.
// A failed enhancement writes the fallback text in place, as the console shows it.
func (s *Service) EnhanceDescription(ctx context.Context, sessionID string) (*View, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "console", "enhance", telemetry.SpanAttrSessionID, sessionID)
	defer span.End()

	var v *View
	err := s.guarded(ctx, sessionID, OpEnhance, func() error {
		var (
			w     *wizard.Wizard
			draft *property.Record
		)
		err := s.withSession(sessionID, func(sess *session) error {
			if w = sess.nav.Wizard(); w == nil {
				return errNoWizard
			}
			draft = w.Draft()
			return nil
		})
		if err != nil {
			return err
		}

		text, ok := assistant.Enhance(ctx, s.enhancer, draft)
		if !ok {
			s.fallback(ctx, "enhance")
			s.logger.Warn("description enhancement fell back", zap.String("session_id", sessionID))
		}

		v, err = s.withWizard(sessionID, func(cur *wizard.Wizard) error {
			if cur != w {
				return errNoWizard
			}
			return cur.UpdateDraft(func(r *property.Record) { r.Description = text })
		})
		return err
	})
	telemetry.RecordError(span, err)
	return v, err
}

// FinishWizard saves the completed draft into the portfolio and opens it for management
func (s *Service) FinishWizard(ctx context.Context, sessionID string) (*View, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "console", "finish_wizard", telemetry.SpanAttrSessionID, sessionID)
	defer span.End()

	var v *View
	err := s.withSession(sessionID, func(sess *session) error {
		out, err := sess.nav.FinishWizard()
		if err != nil {
			return err
		}
		rec, ok := sess.nav.Record(out.RecordID)
		if !ok {
			return shared.ErrNotFound
		}
		sess.reports.Forget(rec.ID)
		s.persist(ctx, sess)
		s.publish(ctx, property.NewPropertySavedEvent(sess.id, rec, out.Created))
		s.logger.Info("property saved",
			zap.String("session_id", sess.id),
			zap.String("record_id", rec.ID),
			zap.Bool("created", out.Created))
		v = sess.withOutcome(out)
		return nil
	})
	telemetry.RecordError(span, err)
	return v, err
}

// CancelWizard leaves registration without saving
func (s *Service) CancelWizard(ctx context.Context, sessionID string) (*View, error) {
	var v *View
	err := s.withSession(sessionID, func(sess *session) error {
		v = sess.withOutcome(sess.nav.CancelRegistration())
		return nil
	})
	return v, err
}
