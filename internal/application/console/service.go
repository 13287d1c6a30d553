// Package console runs hotelier console sessions on top of the domain state
// machines and wires them to persistence, events and external services.
package console

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/britrip/hotelier/internal/domain/analytics"
	"github.com/britrip/hotelier/internal/domain/assistant"
	"github.com/britrip/hotelier/internal/domain/authflow"
	"github.com/britrip/hotelier/internal/domain/marketplace"
	"github.com/britrip/hotelier/internal/domain/navigation"
	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/domain/shared"
	"github.com/britrip/hotelier/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Guarded operation names, used as the suffix of in-flight keys
const (
	OpAuthSubmit    = "auth-submit"
	OpOTPVerify     = "otp-verify"
	OpAssistantSend = "assistant-send"
	OpEnhance       = "enhance"
	OpPhotoIngest   = "photo-ingest"
	OpReportExport  = "report-export"
)

// DefaultMaxPhotoBytes bounds an ingested photo when no limit is configured
const DefaultMaxPhotoBytes = 8 << 20

// ErrSessionNotFound is returned for an unknown or closed session id
var ErrSessionNotFound = shared.WrapDomainError(shared.ErrNotFound.Code, "console session not found", nil)

// Metrics records outcomes that raise no domain event
type Metrics interface {
	AssistantFallback(ctx context.Context, kind string)
	ReportExported(ctx context.Context)
}

// Service owns every live console session
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session

	catalog   *marketplace.Catalog
	store     property.PortfolioStore
	guard     shared.InFlightGuard
	events    shared.EventPublisher
	assets    AssetStore
	exporter  ReportExporter
	completer assistant.TextCompleter
	enhancer  assistant.DescriptionEnhancer
	metrics   Metrics

	timings       authflow.Timings
	authOpts      []authflow.Option
	guardTTL      time.Duration
	maxPhotoBytes int64
	clock         shared.Clock
	baseCtx       context.Context
	logger        *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source
func WithClock(clock shared.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithCatalog replaces the seed catalog
func WithCatalog(c *marketplace.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithPortfolioStore sets where portfolio snapshots are kept
func WithPortfolioStore(store property.PortfolioStore) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithGuard sets the in-flight guard
func WithGuard(guard shared.InFlightGuard, ttl time.Duration) Option {
	return func(s *Service) {
		s.guard = guard
		if ttl > 0 {
			s.guardTTL = ttl
		}
	}
}

// WithEventPublisher sets the domain event publisher
func WithEventPublisher(p shared.EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

// WithAssetStore sets where ingested photos go
func WithAssetStore(a AssetStore, maxBytes int64) Option {
	return func(s *Service) {
		s.assets = a
		if maxBytes > 0 {
			s.maxPhotoBytes = maxBytes
		}
	}
}

// WithReportExporter sets the analytics PDF exporter
func WithReportExporter(e ReportExporter) Option {
	return func(s *Service) {
		s.exporter = e
	}
}

// WithAssistant sets the text services behind the assistant and description enhancement
func WithAssistant(c assistant.TextCompleter, e assistant.DescriptionEnhancer) Option {
	return func(s *Service) {
		s.completer = c
		s.enhancer = e
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAuthTimings sets the simulated sign-in delays
func WithAuthTimings(t authflow.Timings, opts ...authflow.Option) Option {
	return func(s *Service) {
		s.timings = t
		s.authOpts = opts
	}
}

// WithBaseContext sets the parent context of every session
func WithBaseContext(ctx context.Context) Option {
	return func(s *Service) {
		if ctx != nil {
			s.baseCtx = ctx
		}
	}
}

// NewService creates the console service
func NewService(opts ...Option) *Service {
	s := &Service{
		sessions:      make(map[string]*session),
		catalog:       marketplace.DefaultCatalog(),
		timings:       authflow.DefaultTimings(),
		guardTTL:      shared.DefaultGuardConfig().TTL,
		maxPhotoBytes: DefaultMaxPhotoBytes,
		clock:         shared.SystemClock,
		baseCtx:       context.Background(),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession opens a new console on the landing screen
func (s *Service) CreateSession(ctx context.Context) (*View, error) {
	id := uuid.NewString()
	sess := s.newSession(id)

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger.Info("console session created", zap.String("session_id", id))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// Resume rebuilds a session that is no longer live from its portfolio snapshot.
// A session with a saved portfolio resumes signed in.
func (s *Service) Resume(ctx context.Context, id string) (*View, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}
	s.mu.Lock()
	if sess, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return sess.view(), nil
	}
	sess := s.newSession(id)
	s.sessions[id] = sess
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if s.store != nil {
		records, err := s.store.Load(ctx, id)
		if err == nil {
			err = validateSnapshot(records)
		}
		if err != nil {
			s.logger.Warn("portfolio snapshot unavailable", zap.String("session_id", id), zap.Error(err))
		} else if len(records) > 0 {
			sess.nav.Restore(records)
			sess.nav.LoginSucceeded()
			s.logger.Info("console session resumed", zap.String("session_id", id), zap.Int("records", len(records)))
		}
	}
	return sess.view(), nil
}

// validateSnapshot rejects a stored portfolio holding any record a commit would refuse
func validateSnapshot(records []*property.Record) error {
	for _, rec := range records {
		if rec == nil {
			return shared.NewDomainError("INVALID_RECORD", "snapshot holds an empty record")
		}
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("snapshot record %s: %w", rec.ID, err)
		}
	}
	return nil
}

// View returns the current state of a session
func (s *Service) View(ctx context.Context, id string) (*View, error) {
	var v *View
	err := s.withSession(id, func(sess *session) error {
		v = sess.view()
		return nil
	})
	return v, err
}

// CloseSession tears a session down: pending timers are discarded and the
// portfolio snapshot is deleted
func (s *Service) CloseSession(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	sess.close()
	sess.mu.Unlock()

	s.dropSnapshot(ctx, id)
	s.logger.Info("console session closed", zap.String("session_id", id))
	return nil
}

// SessionCount returns the number of live sessions
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ReapIdle closes sessions unused for longer than maxIdle and returns how many
// were closed. Their snapshots are kept so they can be resumed.
func (s *Service) ReapIdle(maxIdle time.Duration) int {
	cutoff := s.clock().Add(-maxIdle)
	var idle []*session

	s.mu.Lock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		if sess.lastSeen.Before(cutoff) {
			idle = append(idle, sess)
			delete(s.sessions, id)
		}
		sess.mu.Unlock()
	}
	s.mu.Unlock()

	for _, sess := range idle {
		sess.mu.Lock()
		sess.close()
		sess.mu.Unlock()
	}
	if len(idle) > 0 {
		s.logger.Info("idle console sessions reaped", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// Shutdown closes every live session without touching snapshots
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.mu.Lock()
		sess.close()
		sess.mu.Unlock()
	}
	return ctx.Err()
}

func (s *Service) newSession(id string) *session {
	ctx, cancel := context.WithCancel(s.baseCtx)
	sess := &session{
		id:       id,
		chat:     assistant.NewConversation(s.completer, s.clock),
		reports:  analytics.NewMemo(),
		lastSeen: s.clock(),
		ctx:      ctx,
		cancel:   cancel,
	}
	log := s.logger.With(zap.String("session_id", id))
	sess.nav = navigation.NewController(s.catalog,
		navigation.WithClock(s.clock),
		navigation.WithScrollHook(func(to navigation.Screen) {
			log.Debug("screen changed", zap.String("screen", string(to)))
		}),
	)
	sess.auth = authflow.New(ctx, s.timings, func() { s.loginSucceeded(sess) }, s.authOpts...)
	return sess
}

// loginSucceeded runs on the auth flow timer once the success screen is done
func (s *Service) loginSucceeded(sess *session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}
	sess.nav.LoginSucceeded()
	s.logger.Info("hotelier signed in", zap.String("session_id", sess.id))
}

func (s *Service) lookup(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// withSession runs fn with the session locked
func (s *Service) withSession(id string, fn func(sess *session) error) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return ErrSessionNotFound
	}
	sess.lastSeen = s.clock()
	return fn(sess)
}

// guarded runs fn while holding the in-flight key of op for the session
func (s *Service) guarded(ctx context.Context, sessionID, op string, fn func() error) error {
	if s.guard == nil {
		return fn()
	}
	key := sessionID + ":" + op
	ok, err := s.guard.Acquire(ctx, key, s.guardTTL)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrOperationPending
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), key); err != nil {
			s.logger.Warn("failed to release in-flight key", zap.String("key", key), zap.Error(err))
		}
	}()
	return fn()
}

// persist stores the portfolio snapshot. Failures are logged; the in-session
// portfolio stays authoritative. Must be called with sess.mu held.
func (s *Service) persist(ctx context.Context, sess *session) {
	if s.store == nil {
		return
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "console", "persist", telemetry.SpanAttrSessionID, sess.id)
	defer span.End()
	if err := s.store.Save(ctx, sess.id, sess.nav.Portfolio()); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("failed to save portfolio snapshot", zap.String("session_id", sess.id), zap.Error(err))
	}
}

func (s *Service) dropSnapshot(ctx context.Context, id string) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete portfolio snapshot", zap.String("session_id", id), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish console events", zap.Error(err))
	}
}

func (s *Service) fallback(ctx context.Context, kind string) {
	if s.metrics != nil {
		s.metrics.AssistantFallback(ctx, kind)
	}
}
