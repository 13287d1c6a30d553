package navigation

import (
	"fmt"

	"github.com/britrip/hotelier/internal/domain/marketplace"
	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/domain/sectionedit"
	"github.com/britrip/hotelier/internal/domain/shared"
	"github.com/britrip/hotelier/internal/domain/wizard"
)

// ScrollHook is invoked on every screen change that replaces the page
type ScrollHook func(to Screen)

// Controller is the root state machine of one console session.
// It is owned by a single session and is not safe for concurrent use.
type Controller struct {
	screen        Screen
	authenticated bool
	selected      *property.Listing
	owned         []*property.Record
	activeID      string

	wizard *wizard.Wizard
	editor *sectionedit.Editor

	catalog   *marketplace.Catalog
	schema    sectionedit.Schema
	clock     shared.Clock
	onScroll  ScrollHook
	scrollSeq int
}

// Option configures a Controller
type Option func(*Controller)

// WithClock overrides the time source used for generated ids
func WithClock(clock shared.Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithScrollHook registers the scroll-to-top effect
func WithScrollHook(hook ScrollHook) Option {
	return func(c *Controller) {
		c.onScroll = hook
	}
}

// WithSchema overrides the management section schema
func WithSchema(schema sectionedit.Schema) Option {
	return func(c *Controller) {
		c.schema = schema
	}
}

// NewController starts a session on the landing screen with the given read-only catalog
func NewController(catalog *marketplace.Catalog, opts ...Option) *Controller {
	c := &Controller{
		screen:  ScreenLanding,
		owned:   []*property.Record{},
		catalog: catalog,
		schema:  sectionedit.PropertySchema(),
		clock:   shared.SystemClock,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State is a read-only snapshot of the controller
type State struct {
	Screen          Screen             `json:"screen"`
	IsAuthenticated bool               `json:"isAuthenticated"`
	SelectedListing *property.Listing  `json:"selectedListing,omitempty"`
	OwnedRecords    []*property.Record `json:"ownedRecords"`
	ActiveRecordID  string             `json:"activeRecordId,omitempty"`
	ScrollSeq       int                `json:"scrollSeq"`
}

// State returns a snapshot of the controller
func (c *Controller) State() State {
	s := State{
		Screen:          c.screen,
		IsAuthenticated: c.authenticated,
		OwnedRecords:    c.Portfolio(),
		ActiveRecordID:  c.activeID,
		ScrollSeq:       c.scrollSeq,
	}
	if c.selected != nil {
		l := c.selected.Clone()
		s.SelectedListing = &l
	}
	return s
}

// Screen returns the current screen
func (c *Controller) Screen() Screen {
	return c.screen
}

// IsAuthenticated reports the login state
func (c *Controller) IsAuthenticated() bool {
	return c.authenticated
}

// ActiveRecordID returns the id of the record under management, if any
func (c *Controller) ActiveRecordID() string {
	return c.activeID
}

// Portfolio returns copies of the owned records
func (c *Controller) Portfolio() []*property.Record {
	out := make([]*property.Record, len(c.owned))
	for i, r := range c.owned {
		out[i] = r.Clone()
	}
	return out
}

// Marketplace merges the owned records with the catalog
func (c *Controller) Marketplace() []property.Listing {
	return marketplace.DeriveMarketplace(c.catalog.Listings(), c.owned)
}

// Catalog returns the seed listings
func (c *Controller) Catalog() []property.Listing {
	return c.catalog.Listings()
}

// ActiveRecord returns a copy of the record under management
func (c *Controller) ActiveRecord() (*property.Record, bool) {
	rec := c.find(c.activeID)
	if rec == nil {
		return nil, false
	}
	return rec.Clone(), true
}

// Record returns a copy of the owned record with id
func (c *Controller) Record(id string) (*property.Record, bool) {
	rec := c.find(id)
	if rec == nil {
		return nil, false
	}
	return rec.Clone(), true
}

// Wizard returns the registration wizard, or nil outside registration
func (c *Controller) Wizard() *wizard.Wizard {
	return c.wizard
}

// Editor returns the section editor of the managed record, or nil
func (c *Controller) Editor() *sectionedit.Editor {
	return c.editor
}

// Restore loads a previously persisted portfolio without changing the screen
func (c *Controller) Restore(records []*property.Record) {
	c.owned = make([]*property.Record, 0, len(records))
	for _, r := range records {
		c.owned = append(c.owned, r.Clone())
	}
}

// StartAuth opens the sign-in screen
func (c *Controller) StartAuth() Outcome {
	return c.goTo(ScreenAuth)
}

// CancelAuth leaves the sign-in screen
func (c *Controller) CancelAuth() Outcome {
	return c.goTo(ScreenLanding)
}

// LoginSucceeded marks the session signed in and opens the catalog
func (c *Controller) LoginSucceeded() Outcome {
	c.authenticated = true
	return c.goTo(ScreenHome)
}

// Logout signs out and drops the session portfolio
func (c *Controller) Logout() (Outcome, int) {
	cleared := len(c.owned)
	c.authenticated = false
	c.owned = []*property.Record{}
	c.activeID = ""
	c.selected = nil
	c.wizard = nil
	c.editor = nil
	return c.goTo(ScreenLanding), cleared
}

// Navigate switches to a top-level screen. Any in-progress wizard draft is
// dropped; Registration always starts a fresh wizard.
func (c *Controller) Navigate(target Screen) (Outcome, error) {
	if !target.IsTopLevel() {
		return Outcome{}, shared.NewDomainError("INVALID_NAVIGATION", fmt.Sprintf("screen %q cannot be opened directly", target))
	}
	c.wizard = nil
	if target == ScreenRegistration {
		c.wizard = wizard.New(nil, c.clock)
	}
	return c.goTo(target), nil
}

// ViewListing opens the detail screen of a catalog listing
func (c *Controller) ViewListing(listingID string) Outcome {
	l, ok := c.catalog.Find(listingID)
	if !ok {
		return Outcome{Screen: c.screen, Status: StatusRecordNotFound, RecordID: listingID}
	}
	c.selected = &l
	return c.goTo(ScreenListingDetail)
}

// IsListingOwned reports whether the selected listing is already in the portfolio
func (c *Controller) IsListingOwned() bool {
	if c.selected == nil {
		return false
	}
	_, ok := marketplace.FindOwnedByName(c.owned, c.selected.Name)
	return ok
}

// Claim resolves id to an owned record, converting a catalog listing when needed,
// and opens it for management.
func (c *Controller) Claim(id string) Outcome {
	res, ok := c.resolve(id)
	if !ok {
		return res
	}
	c.openEditor()
	out := c.goTo(ScreenManageRecord)
	out.RecordID, out.Claimed = res.RecordID, res.Claimed
	return out
}

// ManageFromDetail opens the selected listing for management, claiming it if needed
func (c *Controller) ManageFromDetail() Outcome {
	if c.selected == nil {
		return Outcome{Screen: c.screen, Status: StatusIgnored}
	}
	if rec, ok := marketplace.FindOwnedByName(c.owned, c.selected.Name); ok {
		return c.Claim(rec.ID)
	}
	return c.Claim(c.selected.ID)
}

// ViewAnalytics resolves or claims id and opens its analytics. A claim made
// here is used immediately.
func (c *Controller) ViewAnalytics(id string) Outcome {
	res, ok := c.resolve(id)
	if !ok {
		return res
	}
	out := c.goTo(ScreenAnalytics)
	out.RecordID, out.Claimed = res.RecordID, res.Claimed
	return out
}

// AnalyticsFromDetail opens analytics for the selected listing only if it is already owned
func (c *Controller) AnalyticsFromDetail() Outcome {
	if c.selected == nil {
		return Outcome{Screen: c.screen, Status: StatusIgnored}
	}
	rec, ok := marketplace.FindOwnedByName(c.owned, c.selected.Name)
	if !ok {
		return Outcome{Screen: c.screen, Status: StatusNotOwned, RecordID: c.selected.ID}
	}
	c.activeID = rec.ID
	out := c.goTo(ScreenAnalytics)
	out.RecordID = rec.ID
	return out
}

// StartEdit loads the active record into a new wizard
func (c *Controller) StartEdit() Outcome {
	rec := c.find(c.activeID)
	if rec == nil {
		return Outcome{Screen: c.screen, Status: StatusRecordNotFound, RecordID: c.activeID}
	}
	c.wizard = wizard.New(rec, c.clock)
	out := c.goTo(ScreenRegistration)
	out.RecordID = rec.ID
	return out
}

// FinishWizard finishes the registration wizard and saves its record
func (c *Controller) FinishWizard() (Outcome, error) {
	if c.wizard == nil {
		return Outcome{}, shared.WrapDomainError(shared.ErrInvalidState.Code, "no registration in progress", nil)
	}
	rec, err := c.wizard.Finish()
	if err != nil {
		return Outcome{}, err
	}
	return c.SaveFromWizard(rec), nil
}

// SaveFromWizard upserts rec by id and opens it for management
func (c *Controller) SaveFromWizard(rec *property.Record) Outcome {
	created := true
	for i, r := range c.owned {
		if r.ID == rec.ID {
			c.owned[i] = rec.Clone()
			created = false
			break
		}
	}
	if created {
		c.owned = append(c.owned, rec.Clone())
	}
	c.wizard = nil
	c.activeID = rec.ID
	c.openEditor()
	out := c.goTo(ScreenManageRecord)
	out.RecordID, out.Created = rec.ID, created
	return out
}

// CancelRegistration leaves the wizard, back to the managed record if there is one
func (c *Controller) CancelRegistration() Outcome {
	c.wizard = nil
	if c.find(c.activeID) != nil {
		c.openEditor()
		return c.goTo(ScreenManageRecord)
	}
	return c.goTo(ScreenPortfolio)
}

// UpdateRecord replaces an owned record by id
func (c *Controller) UpdateRecord(rec *property.Record) error {
	for i, r := range c.owned {
		if r.ID == rec.ID {
			c.owned[i] = rec.Clone()
			if c.editor != nil && c.editor.RecordID() == rec.ID {
				c.editor.Refresh(rec)
			}
			return nil
		}
	}
	return shared.WrapDomainError(shared.ErrNotFound.Code, fmt.Sprintf("record %q is not in the portfolio", rec.ID), nil)
}

// Back follows the back control of the current screen
func (c *Controller) Back() Outcome {
	switch c.screen {
	case ScreenNetwork, ScreenAuth:
		return c.goTo(ScreenLanding)
	case ScreenListingDetail:
		return c.goTo(ScreenHome)
	case ScreenManageRecord:
		c.editor = nil
		return c.goTo(ScreenPortfolio)
	case ScreenAnalytics:
		c.openEditor()
		return c.goTo(ScreenManageRecord)
	case ScreenRegistration:
		return c.CancelRegistration()
	}
	return Outcome{Screen: c.screen, Status: StatusIgnored}
}

type resolved struct {
	RecordID string
	Claimed  bool
}

// resolve runs the claim resolution and makes the result active. It fails with
// a RecordNotFound outcome when id resolves to nothing.
func (c *Controller) resolve(id string) (Outcome, bool) {
	res := marketplace.ResolveClaim(id, c.catalog.Listings(), c.owned, c.clock())
	if res.Record == nil {
		return Outcome{Screen: c.screen, Status: StatusRecordNotFound, RecordID: id}, false
	}
	c.owned = res.Portfolio
	c.activeID = res.RecordID
	return Outcome{
		Status:   StatusOK,
		RecordID: res.RecordID,
		Claimed:  res.Resolution == marketplace.ResolvedClaimed,
	}, true
}

func (c *Controller) openEditor() {
	rec := c.find(c.activeID)
	if rec == nil {
		c.editor = nil
		return
	}
	c.editor = sectionedit.NewEditor(c.schema, rec, c.UpdateRecord)
}

func (c *Controller) find(id string) *property.Record {
	if id == "" {
		return nil
	}
	for _, r := range c.owned {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (c *Controller) goTo(s Screen) Outcome {
	c.screen = s
	c.scrollSeq++
	if c.onScroll != nil {
		c.onScroll(s)
	}
	return Outcome{Screen: s, Status: StatusOK}
}
