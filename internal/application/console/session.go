package console

import (
	"context"
	"sync"
	"time"

	"github.com/britrip/hotelier/internal/domain/analytics"
	"github.com/britrip/hotelier/internal/domain/assistant"
	"github.com/britrip/hotelier/internal/domain/authflow"
	"github.com/britrip/hotelier/internal/domain/navigation"
	"github.com/britrip/hotelier/internal/domain/sectionedit"
	"github.com/britrip/hotelier/internal/domain/wizard"
)

// session is the state of one console. Fields below mu are guarded by it; the
// conversation and the memo synchronize themselves once obtained.
type session struct {
	id string

	mu       sync.Mutex
	nav      *navigation.Controller
	auth     *authflow.Flow
	chat     *assistant.Conversation
	reports  *analytics.Memo
	closed   bool
	lastSeen time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// View is a snapshot of a session returned by every console operation
type View struct {
	SessionID  string              `json:"sessionId"`
	Outcome    *navigation.Outcome `json:"outcome,omitempty"`
	Navigation navigation.State    `json:"navigation"`
	Wizard     *wizard.State       `json:"wizard,omitempty"`
	Editor     *sectionedit.State  `json:"editor,omitempty"`
	Auth       authflow.State      `json:"auth"`
	Analytics  *analytics.Report   `json:"analytics,omitempty"`
	// ListingOwned tells the detail screen whether to offer Manage or Claim
	ListingOwned     bool `json:"listingOwned"`
	AssistantSending bool `json:"assistantSending"`
}

// view builds the snapshot. Must be called with s.mu held.
func (s *session) view() *View {
	v := &View{
		SessionID:        s.id,
		Navigation:       s.nav.State(),
		Auth:             s.auth.State(),
		ListingOwned:     s.nav.IsListingOwned(),
		AssistantSending: s.chat.Sending(),
	}
	if w := s.nav.Wizard(); w != nil {
		st := w.State()
		v.Wizard = &st
	}
	if e := s.nav.Editor(); e != nil {
		st := e.State()
		v.Editor = &st
	}
	if s.nav.Screen() == navigation.ScreenAnalytics {
		if rec, ok := s.nav.ActiveRecord(); ok {
			v.Analytics = s.reports.Get(rec)
		}
	}
	return v
}

func (s *session) withOutcome(out navigation.Outcome) *View {
	v := s.view()
	v.Outcome = &out
	return v
}

// close tears the session down. Must be called with s.mu held.
func (s *session) close() {
	if s.closed {
		return
	}
	s.closed = true
	s.auth.Close()
	s.cancel()
}
