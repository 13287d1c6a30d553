// Package authflow simulates the hotelier sign-in: credentials, then a six digit
// one-time code, then a short success screen before the console opens.
package authflow

import (
	"context"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/britrip/hotelier/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Stage of the sign-in flow
type Stage string

const (
	StageForm    Stage = "FORM"
	StageOTP     Stage = "OTP"
	StageSuccess Stage = "SUCCESS"
)

// Mode toggles between signing in and creating an account
type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

// CodeLength is the number of digits of the one-time code
const CodeLength = 6

// Timings are the simulated network delays
type Timings struct {
	SendCode time.Duration
	Verify   time.Duration
	Redirect time.Duration
}

// DefaultTimings mirrors the delays of the hosted console
func DefaultTimings() Timings {
	return Timings{
		SendCode: 1200 * time.Millisecond,
		Verify:   1000 * time.Millisecond,
		Redirect: 2500 * time.Millisecond,
	}
}

// State is a snapshot of the flow
type State struct {
	Stage   Stage    `json:"stage"`
	Mode    Mode     `json:"mode"`
	Email   string   `json:"email,omitempty"`
	Code    []string `json:"code"`
	Loading bool     `json:"loading"`
}

// Flow is the sign-in state machine. Delays run on timers owned by the flow;
// closing the flow discards every pending timer so none of them fires later.
type Flow struct {
	mu        sync.Mutex
	stage     Stage
	mode      Mode
	email     string
	secret    []byte
	code      [CodeLength]string
	loading   bool
	timings   Timings
	hashCost  int
	onSuccess func()

	ctx    context.Context
	cancel context.CancelFunc
	timers []*time.Timer
}

// Option configures a Flow
type Option func(*Flow)

// WithHashCost sets the bcrypt cost used for the pending credential
func WithHashCost(cost int) Option {
	return func(f *Flow) {
		f.hashCost = cost
	}
}

// New creates a flow bound to ctx. onSuccess runs once the success screen has
// been shown for the redirect delay.
func New(ctx context.Context, timings Timings, onSuccess func(), opts ...Option) *Flow {
	fctx, cancel := context.WithCancel(ctx)
	f := &Flow{
		stage:     StageForm,
		mode:      ModeLogin,
		timings:   timings,
		hashCost:  bcrypt.DefaultCost,
		onSuccess: onSuccess,
		ctx:       fctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns a snapshot of the flow
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		Stage:   f.stage,
		Mode:    f.mode,
		Email:   f.email,
		Code:    append([]string(nil), f.code[:]...),
		Loading: f.loading,
	}
}

// SetMode switches between login and signup on the form
func (f *Flow) SetMode(mode Mode) error {
	if mode != ModeLogin && mode != ModeSignup {
		return shared.NewDomainError("INVALID_AUTH_MODE", "mode must be login or signup")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stage != StageForm {
		return shared.WrapDomainError(shared.ErrInvalidState.Code, "mode can only change on the form", nil)
	}
	f.mode = mode
	return nil
}

// Submit sends the credentials and moves to the code stage after the send delay.
// A second submit while the first is pending is rejected.
func (f *Flow) Submit(email, password string) error {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return shared.WrapDomainError(shared.ErrInvalidInput.Code, "a valid email address is required", err)
	}
	if password == "" {
		return shared.WrapDomainError(shared.ErrInvalidInput.Code, "password is required", nil)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkOpen(); err != nil {
		return err
	}
	if f.loading {
		return shared.ErrOperationPending
	}
	if f.stage != StageForm {
		return shared.WrapDomainError(shared.ErrInvalidState.Code, "credentials were already submitted", nil)
	}

	secret, err := bcrypt.GenerateFromPassword([]byte(password), f.hashCost)
	if err != nil {
		return shared.WrapDomainError(shared.ErrInvalidInput.Code, "password cannot be used", err)
	}
	f.email = email
	f.secret = secret
	f.loading = true
	f.schedule(f.timings.SendCode, func() {
		f.loading = false
		f.stage = StageOTP
	})
	return nil
}

// MatchesPassword reports whether password is the one submitted
func (f *Flow) MatchesPassword(password string) bool {
	f.mu.Lock()
	secret := f.secret
	f.mu.Unlock()
	if secret == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(secret, []byte(password)) == nil
}

// EnterDigit writes one position of the code. Non-digit input is ignored with
// an error; an empty value clears the position. Filling the last empty position
// starts verification.
func (f *Flow) EnterDigit(index int, value string) (verifying bool, err error) {
	if index < 0 || index >= CodeLength {
		return false, shared.NewDomainError("INVALID_CODE_POSITION", "code position out of range")
	}
	if len(value) > 1 || (value != "" && (value[0] < '0' || value[0] > '9')) {
		return false, shared.NewDomainError("INVALID_CODE_DIGIT", "code accepts a single digit")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkOpen(); err != nil {
		return false, err
	}
	if f.stage != StageOTP {
		return false, shared.WrapDomainError(shared.ErrInvalidState.Code, "no code has been sent", nil)
	}
	if f.loading {
		return false, shared.ErrOperationPending
	}
	f.code[index] = value
	for _, d := range f.code {
		if d == "" {
			return false, nil
		}
	}
	f.verify()
	return true, nil
}

// EnterCode fills every position at once, as when a code is pasted
func (f *Flow) EnterCode(code string) error {
	if len(code) != CodeLength {
		return shared.NewDomainError("INVALID_CODE_DIGIT", "code must have six digits")
	}
	for i := 0; i < CodeLength; i++ {
		if _, err := f.EnterDigit(i, code[i:i+1]); err != nil {
			return err
		}
	}
	return nil
}

func (f *Flow) verify() {
	f.loading = true
	f.schedule(f.timings.Verify, func() {
		f.loading = false
		f.stage = StageSuccess
		f.schedule(f.timings.Redirect, nil)
	})
}

// Reset returns to an empty form and drops pending timers
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopTimers()
	f.stage = StageForm
	f.email = ""
	f.secret = nil
	f.code = [CodeLength]string{}
	f.loading = false
}

// Close tears the flow down. Pending timers never fire afterwards.
func (f *Flow) Close() {
	f.cancel()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopTimers()
}

func (f *Flow) checkOpen() error {
	if f.ctx.Err() != nil {
		return shared.ErrSessionClosed
	}
	return nil
}

// schedule runs step under the lock after d. A nil step means the flow is done
// and onSuccess is called instead. Must be called with f.mu held.
func (f *Flow) schedule(d time.Duration, step func()) {
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		if f.ctx.Err() != nil {
			return
		}
		f.mu.Lock()
		if f.ctx.Err() != nil || !f.owns(t) {
			f.mu.Unlock()
			return
		}
		f.forget(t)
		if step != nil {
			step()
			f.mu.Unlock()
			return
		}
		f.mu.Unlock()
		if f.onSuccess != nil {
			f.onSuccess()
		}
	})
	f.timers = append(f.timers, t)
}

func (f *Flow) owns(t *time.Timer) bool {
	for _, x := range f.timers {
		if x == t {
			return true
		}
	}
	return false
}

func (f *Flow) forget(t *time.Timer) {
	for i, x := range f.timers {
		if x == t {
			f.timers = append(f.timers[:i], f.timers[i+1:]...)
			return
		}
	}
}

func (f *Flow) stopTimers() {
	for _, t := range f.timers {
		t.Stop()
	}
	f.timers = nil
}
