package console

import (
	"context"

	"github.com/britrip/hotelier/internal/domain/assistant"
	"github.com/britrip/hotelier/internal/domain/authflow"
	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SubmitCredentials starts the sign-in. The one-time code screen opens after
// the send delay.
func (s *Service) SubmitCredentials(ctx context.Context, sessionID, email, password string) (*View, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "console", "auth_submit", telemetry.SpanAttrSessionID, sessionID)
	defer span.End()

	var v *View
	err := s.guarded(ctx, sessionID, OpAuthSubmit, func() error {
		return s.withSession(sessionID, func(sess *session) error {
			if err := sess.auth.Submit(email, password); err != nil {
				return err
			}
			v = sess.view()
			return nil
		})
	})
	telemetry.RecordError(span, err)
	return v, err
}

// EnterCode fills the one-time code, either one digit at index or the whole
// code when index is negative. A complete code starts verification; the
// session signs in once the flow reaches its end.
func (s *Service) EnterCode(ctx context.Context, sessionID string, index int, value string) (*View, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "console", "otp_verify", telemetry.SpanAttrSessionID, sessionID)
	defer span.End()

	var v *View
	err := s.guarded(ctx, sessionID, OpOTPVerify, func() error {
		return s.withSession(sessionID, func(sess *session) error {
			var err error
			if index < 0 {
				err = sess.auth.EnterCode(value)
			} else {
				_, err = sess.auth.EnterDigit(index, value)
			}
			if err != nil {
				return err
			}
			v = sess.view()
			return nil
		})
	})
	telemetry.RecordError(span, err)
	return v, err
}

// SetAuthMode toggles between login and signup on the credentials form
func (s *Service) SetAuthMode(ctx context.Context, sessionID string, mode authflow.Mode) (*View, error) {
	var v *View
	err := s.withSession(sessionID, func(sess *session) error {
		if err := sess.auth.SetMode(mode); err != nil {
			return err
		}
		v = sess.view()
		return nil
	})
	return v, err
}

// CancelAuth abandons the sign-in and returns to the landing screen. Pending
// sign-in timers are discarded.
func (s *Service) CancelAuth(ctx context.Context, sessionID string) (*View, error) {
	var v *View
	err := s.withSession(sessionID, func(sess *session) error {
		sess.auth.Reset()
		v = sess.withOutcome(sess.nav.CancelAuth())
		return nil
	})
	return v, err
}

// Logout signs out and drops everything the session held, including the
// persisted portfolio snapshot
func (s *Service) Logout(ctx context.Context, sessionID string) (*View, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "console", "logout", telemetry.SpanAttrSessionID, sessionID)
	defer span.End()

	var v *View
	err := s.withSession(sessionID, func(sess *session) error {
		out, cleared := sess.nav.Logout()
		sess.auth.Reset()
		sess.reports.Reset()
		sess.chat = assistant.NewConversation(s.completer, s.clock)

		s.dropSnapshot(ctx, sess.id)
		s.publish(ctx, property.NewPortfolioClearedEvent(sess.id, cleared))
		s.logger.Info("hotelier signed out", zap.String("session_id", sess.id), zap.Int("records_cleared", cleared))
		v = sess.withOutcome(out)
		return nil
	})
	return v, err
}

// Authenticated reports whether the session has completed sign-in
func (s *Service) Authenticated(ctx context.Context, sessionID string) (bool, error) {
	var ok bool
	err := s.withSession(sessionID, func(sess *session) error {
		ok = sess.nav.IsAuthenticated()
		return nil
	})
	return ok, err
}
