package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/britrip/hotelier/internal/domain/analytics"
	"github.com/britrip/hotelier/internal/domain/assistant"
	"github.com/britrip/hotelier/internal/domain/authflow"
	"github.com/britrip/hotelier/internal/domain/navigation"
	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/domain/sectionedit"
	"github.com/britrip/hotelier/internal/domain/shared"
	"github.com/britrip/hotelier/internal/domain/wizard"
	"github.com/britrip/hotelier/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ============================================================================
// Mocks
// ============================================================================

type MockPortfolioStore struct {
	mock.Mock
}

func (m *MockPortfolioStore) Save(ctx context.Context, sessionID string, records []*property.Record) error {
	args := m.Called(ctx, sessionID, records)
	return args.Error(0)
}

func (m *MockPortfolioStore) Load(ctx context.Context, sessionID string) ([]*property.Record, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*property.Record), args.Error(1)
}

func (m *MockPortfolioStore) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) Store(ctx context.Context, key string, asset Asset) (string, error) {
	args := m.Called(ctx, key, asset)
	return args.String(0), args.Error(1)
}

// gatedAssets holds every Store call until want uploads are in flight together
type gatedAssets struct {
	want    int
	mu      sync.Mutex
	arrived int
	open    chan struct{}
}

func newGatedAssets(want int) *gatedAssets {
	return &gatedAssets{want: want, open: make(chan struct{})}
}

func (g *gatedAssets) Store(ctx context.Context, _ string, asset Asset) (string, error) {
	g.mu.Lock()
	g.arrived++
	if g.arrived == g.want {
		close(g.open)
	}
	g.mu.Unlock()
	select {
	case <-g.open:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(2 * time.Second):
		return "", errors.New("uploads were not in flight together")
	}
	return "ref-" + string(asset.Data), nil
}

type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) Export(ctx context.Context, report *analytics.Report, w io.Writer) error {
	args := m.Called(ctx, report, w)
	if args.Error(0) == nil {
		_, _ = w.Write([]byte("%PDF-1.4"))
	}
	return args.Error(0)
}

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, prompt string, opts assistant.CompletionOptions) (*assistant.Completion, error) {
	args := m.Called(ctx, prompt, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assistant.Completion), args.Error(1)
}

type MockEnhancer struct {
	mock.Mock
}

func (m *MockEnhancer) Enhance(ctx context.Context, rec *property.Record) (string, error) {
	args := m.Called(ctx, rec)
	return args.String(0), args.Error(1)
}

type countingMetrics struct {
	mu        sync.Mutex
	fallbacks map[string]int
	exports   int
}

func (m *countingMetrics) AssistantFallback(_ context.Context, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fallbacks == nil {
		m.fallbacks = map[string]int{}
	}
	m.fallbacks[kind]++
}

func (m *countingMetrics) ReportExported(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exports++
}

// ============================================================================
// Helpers
// ============================================================================

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func testClock() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

func fastAuth() Option {
	return WithAuthTimings(authflow.Timings{
		SendCode: time.Millisecond,
		Verify:   time.Millisecond,
		Redirect: time.Millisecond,
	}, authflow.WithHashCost(bcrypt.MinCost))
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	guard := cache.NewInMemoryGuard()
	t.Cleanup(func() { _ = guard.Close() })
	base := []Option{WithClock(testClock), WithGuard(guard, time.Minute), fastAuth()}
	s := NewService(append(base, opts...)...)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func newSession(t *testing.T, s *Service) string {
	t.Helper()
	v, err := s.CreateSession(context.Background())
	require.NoError(t, err)
	return v.SessionID
}

func completeWizard(t *testing.T, s *Service, id string) {
	t.Helper()
	ctx := context.Background()
	_, err := s.EnterPhase(ctx, id, wizard.PhaseBasicInfo)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		_, err = s.AdvanceBasicInfo(ctx, id)
		require.NoError(t, err)
	}
	_, err = s.EnterPhase(ctx, id, wizard.PhaseRooms)
	require.NoError(t, err)
	_, err = s.StartNewRoom(ctx, id)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		_, err = s.AdvanceRoom(ctx, id)
		require.NoError(t, err)
	}
	_, err = s.EnterPhase(ctx, id, wizard.PhaseFinal)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = s.AdvanceFinal(ctx, id)
		require.NoError(t, err)
	}
}

// ============================================================================
// Tests
// ============================================================================

func TestService_CreateSession(t *testing.T) {
	s := newTestService(t)
	v, err := s.CreateSession(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, v.SessionID)
	assert.Equal(t, navigation.ScreenLanding, v.Navigation.Screen)
	assert.False(t, v.Navigation.IsAuthenticated)
	assert.Equal(t, authflow.StageForm, v.Auth.Stage)
	assert.Equal(t, 1, s.SessionCount())

	_, err = s.View(context.Background(), "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_SignIn(t *testing.T) {
	s := newTestService(t)
	id := newSession(t, s)
	ctx := context.Background()

	v, err := s.Navigate(ctx, id, ActionAuth)
	require.NoError(t, err)
	assert.Equal(t, navigation.ScreenAuth, v.Navigation.Screen)

	_, err = s.SubmitCredentials(ctx, id, "owner@britrip.com", "pw")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		v, _ := s.View(ctx, id)
		return v.Auth.Stage == authflow.StageOTP
	}, time.Second, time.Millisecond)

	_, err = s.EnterCode(ctx, id, -1, "123456")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		ok, _ := s.Authenticated(ctx, id)
		return ok
	}, time.Second, time.Millisecond)

	v, err = s.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, navigation.ScreenHome, v.Navigation.Screen)
}

func TestService_CancelAuthDiscardsPendingSignIn(t *testing.T) {
	s := newTestService(t, WithAuthTimings(authflow.Timings{SendCode: 20 * time.Millisecond}, authflow.WithHashCost(bcrypt.MinCost)))
	id := newSession(t, s)
	ctx := context.Background()

	_, err := s.SubmitCredentials(ctx, id, "owner@britrip.com", "pw")
	require.NoError(t, err)
	v, err := s.CancelAuth(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, navigation.ScreenLanding, v.Navigation.Screen)

	time.Sleep(50 * time.Millisecond)
	v, err = s.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, authflow.StageForm, v.Auth.Stage)
}

func TestService_Navigate(t *testing.T) {
	s := newTestService(t)
	id := newSession(t, s)
	ctx := context.Background()

	tests := []struct {
		action string
		want   navigation.Screen
	}{
		{ActionNetwork, navigation.ScreenNetwork},
		{ActionBack, navigation.ScreenLanding},
		{ActionHome, navigation.ScreenHome},
		{ActionPortfolio, navigation.ScreenPortfolio},
		{ActionLanding, navigation.ScreenLanding},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			v, err := s.Navigate(ctx, id, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Navigation.Screen)
			assert.Equal(t, tt.want, v.Outcome.Screen)
		})
	}

	_, err := s.Navigate(ctx, id, "settings")
	assert.Equal(t, "INVALID_NAVIGATION", shared.CodeOf(err))
}

func TestService_ClaimPersistsAndPublishes(t *testing.T) {
	store := new(MockPortfolioStore)
	store.On("Save", mock.Anything, mock.Anything, mock.MatchedBy(func(recs []*property.Record) bool {
		return len(recs) == 1 && recs[0].Name == "Burj Al Arab"
	})).Return(nil).Once()
	events := &recordingPublisher{}

	s := newTestService(t, WithPortfolioStore(store), WithEventPublisher(events))
	id := newSession(t, s)
	ctx := context.Background()

	v, err := s.Claim(ctx, id, "2")
	require.NoError(t, err)
	require.NotNil(t, v.Outcome)
	assert.True(t, v.Outcome.Claimed)
	assert.Equal(t, navigation.ScreenManageRecord, v.Navigation.Screen)
	require.NotNil(t, v.Editor)
	assert.Equal(t, "Burj Al Arab", v.Editor.Committed.Name)

	// the claimed record is reused
	v, err = s.Claim(ctx, id, "2")
	require.NoError(t, err)
	assert.False(t, v.Outcome.Claimed)

	store.AssertExpectations(t)
	assert.Equal(t, []string{property.EventTypePropertyClaimed}, events.types())
}

func TestService_ClaimUnknownKeepsScreen(t *testing.T) {
	store := new(MockPortfolioStore)
	s := newTestService(t, WithPortfolioStore(store))
	id := newSession(t, s)

	v, err := s.ViewAnalytics(context.Background(), id, "nope")
	require.NoError(t, err)
	assert.Equal(t, navigation.StatusRecordNotFound, v.Outcome.Status)
	assert.Equal(t, navigation.ScreenLanding, v.Navigation.Screen)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_DetailActions(t *testing.T) {
	s := newTestService(t)
	id := newSession(t, s)
	ctx := context.Background()

	_, err := s.ManageFromDetail(ctx, id, "6")
	assert.ErrorIs(t, err, shared.ErrInvalidState, "listing not open")

	v, err := s.ViewListing(ctx, id, "6")
	require.NoError(t, err)
	assert.Equal(t, navigation.ScreenListingDetail, v.Navigation.Screen)
	assert.False(t, v.ListingOwned)

	v, err = s.AnalyticsFromDetail(ctx, id, "6")
	require.NoError(t, err)
	assert.Equal(t, navigation.StatusNotOwned, v.Outcome.Status)
	assert.Equal(t, navigation.ScreenListingDetail, v.Navigation.Screen)

	v, err = s.ManageFromDetail(ctx, id, "6")
	require.NoError(t, err)
	assert.True(t, v.Outcome.Claimed)

	_, err = s.ViewListing(ctx, id, "6")
	require.NoError(t, err)
	v, err = s.AnalyticsFromDetail(ctx, id, "6")
	require.NoError(t, err)
	assert.Equal(t, navigation.ScreenAnalytics, v.Navigation.Screen)
	require.NotNil(t, v.Analytics)
	assert.Equal(t, "W Muscat", v.Analytics.PropertyName)
}

func TestService_Portfolio(t *testing.T) {
	s := newTestService(t)
	id := newSession(t, s)
	ctx := context.Background()

	fresh, err := s.Portfolio(ctx, id, "", "")
	require.NoError(t, err)
	require.Len(t, fresh.Listings, 6)
	assert.Equal(t, 98, fresh.Stats.SyncHealth)
	assert.True(t, fresh.Stats.TotalValue.IsPositive())

	v, err := s.Claim(ctx, id, "1")
	require.NoError(t, err)
	recordID := v.Navigation.ActiveRecordID

	market, err := s.Marketplace(ctx, id)
	require.NoError(t, err)
	require.Len(t, market, 6)
	assert.Equal(t, recordID, market[0].ID)
	assert.Equal(t, "The Atlantis Palm", market[0].Name)

	pv, err := s.Portfolio(ctx, id, "", "name-asc")
	require.NoError(t, err)
	require.Len(t, pv.Listings, 6)
	assert.Equal(t, "Burj Al Arab", pv.Listings[0].Name)
	ids := make([]string, len(pv.Listings))
	for i, l := range pv.Listings {
		ids[i] = l.ID
	}
	assert.Contains(t, ids, recordID)
	assert.NotContains(t, ids, "1")

	pv, err = s.Portfolio(ctx, id, "Burj", "")
	require.NoError(t, err)
	require.Len(t, pv.Listings, 1)
	assert.Equal(t, "2", pv.Listings[0].ID)

	// summary figures ignore the search term
	all, err := s.Portfolio(ctx, id, "", "")
	require.NoError(t, err)
	assert.Equal(t, all.Stats, pv.Stats)

	dubai, err := s.Portfolio(ctx, id, "dubai", "name-asc")
	require.NoError(t, err)
	require.Len(t, dubai.Listings, 3)
	assert.Equal(t, "Burj Al Arab", dubai.Listings[0].Name)

	catalog, err := s.Catalog(ctx, id)
	require.NoError(t, err)
	assert.Len(t, market, len(catalog))
}

func TestService_WizardFinish(t *testing.T) {
	store := new(MockPortfolioStore)
	store.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	events := &recordingPublisher{}
	assets := new(MockAssetStore)
	assets.On("Store", mock.Anything, mock.Anything, mock.Anything).Return("https://cdn.test/p.png", nil).Once()

	s := newTestService(t, WithPortfolioStore(store), WithEventPublisher(events), WithAssetStore(assets, 0))
	id := newSession(t, s)
	ctx := context.Background()

	_, err := s.FinishWizard(ctx, id)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	v, err := s.StartWizard(ctx, id, false)
	require.NoError(t, err)
	require.NotNil(t, v.Wizard)
	assert.Equal(t, wizard.PhaseDashboard, v.Wizard.Phase)

	_, err = s.UpdateDraft(ctx, id, func(r *property.Record) { r.Name = "Desert Rose" })
	require.NoError(t, err)
	completeWizard(t, s, id)

	_, err = s.FinishWizard(ctx, id)
	assert.ErrorIs(t, err, shared.ErrPhaseIncomplete)

	v, err = s.IngestPhoto(ctx, id, Asset{Data: pngBytes, ContentType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.test/p.png"}, v.Wizard.Draft.Photos)

	v, err = s.FinishWizard(ctx, id)
	require.NoError(t, err)
	assert.True(t, v.Outcome.Created)
	assert.Equal(t, navigation.ScreenManageRecord, v.Navigation.Screen)
	assert.Nil(t, v.Wizard)
	require.Len(t, v.Navigation.OwnedRecords, 1)
	assert.Equal(t, "Desert Rose", v.Navigation.OwnedRecords[0].Name)

	assert.Equal(t, []string{property.EventTypePropertySaved}, events.types())
	store.AssertNumberOfCalls(t, "Save", 1)
	assets.AssertExpectations(t)
}

func TestService_IngestPhotoValidation(t *testing.T) {
	assets := new(MockAssetStore)
	s := newTestService(t, WithAssetStore(assets, 4))
	id := newSession(t, s)
	ctx := context.Background()

	_, err := s.IngestPhoto(ctx, id, Asset{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = s.IngestPhoto(ctx, id, Asset{Data: pngBytes})
	assert.Equal(t, "PHOTO_TOO_LARGE", shared.CodeOf(err))

	_, err = s.IngestPhoto(ctx, id, Asset{Data: []byte("abc")})
	assert.ErrorIs(t, err, shared.ErrInvalidState, "no wizard open")
	assets.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything)

	_, err = s.StartWizard(ctx, id, false)
	require.NoError(t, err)
	assets.On("Store", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("not an image")).Once()
	_, err = s.IngestPhoto(ctx, id, Asset{Data: []byte("abc")})
	assert.Equal(t, "PHOTO_REJECTED", shared.CodeOf(err))
}

func TestService_IngestPhotosConcurrently(t *testing.T) {
	const uploads = 3
	assets := newGatedAssets(uploads)
	s := newTestService(t, WithAssetStore(assets, 0))
	id := newSession(t, s)
	ctx := context.Background()
	_, err := s.StartWizard(ctx, id, false)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, uploads)
	for i, name := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			_, errs[i] = s.IngestPhoto(ctx, id, Asset{Data: []byte(name)})
		}(i, name)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	v, err := s.View(ctx, id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ref-a", "ref-b", "ref-c"}, v.Wizard.Draft.Photos)
}

func TestService_IngestSamePhotoTwiceIsGuarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	assets := new(MockAssetStore)
	assets.On("Store", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return("ref", nil).Once()

	s := newTestService(t, WithAssetStore(assets, 0))
	id := newSession(t, s)
	ctx := context.Background()
	_, err := s.StartWizard(ctx, id, false)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.IngestPhoto(ctx, id, Asset{Data: pngBytes})
		done <- err
	}()
	<-started

	_, err = s.IngestPhoto(ctx, id, Asset{Data: pngBytes})
	assert.ErrorIs(t, err, shared.ErrOperationPending)

	close(release)
	require.NoError(t, <-done)
	assets.AssertExpectations(t)
}

func TestService_EnhanceDescription(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		err      error
		want     string
		fallback bool
	}{
		{"enhanced", "A calm oasis.", nil, "A calm oasis.", false},
		{"service error", "", errors.New("offline"), assistant.ErrorEnhanceFallback, true},
		{"empty reply", "", nil, assistant.EmptyEnhanceFallback, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enhancer := new(MockEnhancer)
			enhancer.On("Enhance", mock.Anything, mock.Anything).Return(tt.text, tt.err).Once()
			metrics := &countingMetrics{}
			s := newTestService(t, WithAssistant(nil, enhancer), WithMetrics(metrics))
			id := newSession(t, s)
			ctx := context.Background()

			_, err := s.StartWizard(ctx, id, false)
			require.NoError(t, err)
			v, err := s.EnhanceDescription(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Wizard.Draft.Description)
			if tt.fallback {
				assert.Equal(t, 1, metrics.fallbacks["enhance"])
			}
		})
	}
}

func TestService_EnhanceIsGuarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	enhancer := new(MockEnhancer)
	enhancer.On("Enhance", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return("text", nil).Once()

	s := newTestService(t, WithAssistant(nil, enhancer))
	id := newSession(t, s)
	ctx := context.Background()
	_, err := s.StartWizard(ctx, id, false)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.EnhanceDescription(ctx, id)
		done <- err
	}()
	<-started

	// the session stays usable while the enhancement is pending
	_, err = s.View(ctx, id)
	require.NoError(t, err)
	_, err = s.EnhanceDescription(ctx, id)
	assert.ErrorIs(t, err, shared.ErrOperationPending)

	close(release)
	require.NoError(t, <-done)
}

func TestService_SectionEdit(t *testing.T) {
	store := new(MockPortfolioStore)
	store.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	events := &recordingPublisher{}
	s := newTestService(t, WithPortfolioStore(store), WithEventPublisher(events))
	id := newSession(t, s)
	ctx := context.Background()

	_, err := s.SaveSection(ctx, id)
	assert.ErrorIs(t, err, shared.ErrInvalidState, "nothing under management")

	_, err = s.Claim(ctx, id, "1")
	require.NoError(t, err)

	_, err = s.BeginSectionEdit(ctx, id, sectionedit.SectionIdentity)
	require.NoError(t, err)
	_, err = s.UpdateSectionDraft(ctx, id, func(r *property.Record) {
		r.Name = "Atlantis The Royal"
		r.Description = "leaks"
	})
	require.NoError(t, err)

	v, err := s.SaveSection(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, v.Editor)
	assert.Equal(t, "Atlantis The Royal", v.Editor.Committed.Name)
	assert.NotEqual(t, "leaks", v.Editor.Committed.Description)
	assert.Equal(t, "Atlantis The Royal", v.Navigation.OwnedRecords[0].Name)

	_, err = s.BeginSectionEdit(ctx, id, sectionedit.SectionRooms)
	require.NoError(t, err)
	v, err = s.AppendSectionRoom(ctx, id, nil)
	require.NoError(t, err)
	require.Len(t, v.Editor.Draft.Rooms, 2)
	_, err = s.RemoveSectionRoom(ctx, id, "r1")
	require.NoError(t, err)
	v, err = s.CancelSection(ctx, id)
	require.NoError(t, err)
	assert.Len(t, v.Editor.Committed.Rooms, 1)

	assert.Equal(t, []string{property.EventTypePropertyClaimed, property.EventTypePropertyUpdated}, events.types())
}

func TestService_SendMessage(t *testing.T) {
	completer := new(MockCompleter)
	completer.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
		return bytes.Contains([]byte(p), []byte(`"MANAGE_PROPERTY"`))
	}), assistant.CompletionOptions{GroundingEnabled: true}).
		Return(&assistant.Completion{Text: "Lift weekend ADR."}, nil).Once()
	completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("quota")).Once()
	metrics := &countingMetrics{}

	s := newTestService(t, WithAssistant(completer, nil), WithMetrics(metrics))
	id := newSession(t, s)
	ctx := context.Background()
	_, err := s.Claim(ctx, id, "2")
	require.NoError(t, err)

	reply, err := s.SendMessage(ctx, id, "How is my ADR?")
	require.NoError(t, err)
	assert.Equal(t, "Lift weekend ADR.", reply.Text)

	reply, err = s.SendMessage(ctx, id, "and now?")
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
	assert.Equal(t, 1, metrics.fallbacks["reply"])

	reply, err = s.SendMessage(ctx, id, "  ")
	require.NoError(t, err)
	assert.Nil(t, reply)

	msgs, err := s.Messages(ctx, id)
	require.NoError(t, err)
	assert.Len(t, msgs, 5)
	completer.AssertExpectations(t)
}

func TestService_ExportReport(t *testing.T) {
	exporter := new(MockExporter)
	exporter.On("Export", mock.Anything, mock.MatchedBy(func(r *analytics.Report) bool {
		return r.PropertyName == "Emirates Palace"
	}), mock.Anything).Return(nil).Once()
	metrics := &countingMetrics{}

	s := newTestService(t, WithReportExporter(exporter), WithMetrics(metrics))
	id := newSession(t, s)
	ctx := context.Background()

	var buf bytes.Buffer
	err := s.ExportReport(ctx, id, "unknown", &buf)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	v, err := s.Claim(ctx, id, "4")
	require.NoError(t, err)
	err = s.ExportReport(ctx, id, v.Outcome.RecordID, &buf)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", buf.String())
	assert.Equal(t, 1, metrics.exports)

	first, err := s.Analytics(ctx, id, v.Outcome.RecordID)
	require.NoError(t, err)
	first.WeeklyTrends[0] = -1
	second, err := s.Analytics(ctx, id, v.Outcome.RecordID)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Positive(t, second.WeeklyTrends[0])
	assert.Equal(t, first.TotalViews, second.TotalViews)
}

func TestService_LogoutClearsEverything(t *testing.T) {
	store := new(MockPortfolioStore)
	store.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("Delete", mock.Anything, mock.Anything).Return(nil).Once()
	events := &recordingPublisher{}

	s := newTestService(t, WithPortfolioStore(store), WithEventPublisher(events))
	id := newSession(t, s)
	ctx := context.Background()

	_, err := s.Claim(ctx, id, "1")
	require.NoError(t, err)
	_, err = s.Claim(ctx, id, "2")
	require.NoError(t, err)

	v, err := s.Logout(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, navigation.ScreenLanding, v.Navigation.Screen)
	assert.Empty(t, v.Navigation.OwnedRecords)
	assert.Nil(t, v.Editor)

	msgs, err := s.Messages(ctx, id)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	store.AssertCalled(t, "Delete", mock.Anything, id)
	types := events.types()
	assert.Equal(t, property.EventTypePortfolioCleared, types[len(types)-1])
}

func TestService_ResumeFromSnapshot(t *testing.T) {
	store := new(MockPortfolioStore)
	s := newTestService(t, WithPortfolioStore(store))
	ctx := context.Background()

	_, err := s.Resume(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	const id = "5b0f3c55-8c0b-4a55-9a36-2a4f0f6b8a11"
	rec := &property.Record{ID: "prop-1-1", Name: "The Atlantis Palm"}
	store.On("Load", mock.Anything, id).Return([]*property.Record{rec}, nil).Once()

	v, err := s.Resume(ctx, id)
	require.NoError(t, err)
	assert.True(t, v.Navigation.IsAuthenticated)
	assert.Equal(t, navigation.ScreenHome, v.Navigation.Screen)
	require.Len(t, v.Navigation.OwnedRecords, 1)

	// already live: the store is not consulted again
	_, err = s.Resume(ctx, id)
	require.NoError(t, err)
	store.AssertExpectations(t)

	t.Run("invalid snapshot starts a fresh session", func(t *testing.T) {
		const other = "0d6c2f1e-3f43-4d7b-a8a5-6f7a2d3c9b20"
		bad := &property.Record{ID: "prop-2-1", Name: "Burj Al Arab", Rooms: []property.RoomUnit{{
			Beds: property.BedConfig{King: -1},
		}}}
		store.On("Load", mock.Anything, other).Return([]*property.Record{bad}, nil).Once()

		v, err := s.Resume(ctx, other)
		require.NoError(t, err)
		assert.False(t, v.Navigation.IsAuthenticated)
		assert.Empty(t, v.Navigation.OwnedRecords)
		store.AssertExpectations(t)
	})
}

func TestService_CloseAndReap(t *testing.T) {
	store := new(MockPortfolioStore)
	store.On("Delete", mock.Anything, mock.Anything).Return(nil)

	now := testClock()
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	s := newTestService(t, WithPortfolioStore(store), WithClock(clock))
	ctx := context.Background()

	closing := newSession(t, s)
	idle := newSession(t, s)
	require.NoError(t, s.CloseSession(ctx, closing))
	assert.ErrorIs(t, s.CloseSession(ctx, closing), shared.ErrNotFound)
	store.AssertCalled(t, "Delete", mock.Anything, closing)

	mu.Lock()
	now = now.Add(time.Hour)
	mu.Unlock()
	active := newSession(t, s)

	assert.Equal(t, 1, s.ReapIdle(30*time.Minute))
	_, err := s.View(ctx, idle)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = s.View(ctx, active)
	assert.NoError(t, err)
	store.AssertNotCalled(t, "Delete", mock.Anything, idle)
}
