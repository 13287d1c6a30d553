package console

import (
	"context"
	"fmt"

	"github.com/britrip/hotelier/internal/domain/marketplace"
	"github.com/britrip/hotelier/internal/domain/navigation"
	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/domain/shared"
	"github.com/britrip/hotelier/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Navigation actions accepted by Navigate
const (
	ActionLanding   = "landing"
	ActionNetwork   = "network"
	ActionAuth      = "auth"
	ActionHome      = "home"
	ActionPortfolio = "portfolio"
	ActionBack      = "back"
)

// PortfolioView is the MyProperties screen: the filtered portfolio and its summary
type PortfolioView struct {
	Listings []property.Listing     `json:"listings"`
	Stats    marketplace.Stats      `json:"stats"`
	Sort     marketplace.SortOption `json:"sort"`
	Search   string                 `json:"search,omitempty"`
}

// Navigate follows a navigation bar or back control
func (s *Service) Navigate(ctx context.Context, sessionID, action string) (*View, error) {
	var v *View
	err := s.withSession(sessionID, func(sess *session) error {
		var out navigation.Outcome
		switch action {
		case ActionBack:
			out = sess.nav.Back()
		case ActionAuth:
			sess.auth.Reset()
			out = sess.nav.StartAuth()
		case ActionLanding, ActionNetwork, ActionHome, ActionPortfolio:
			var err error
			out, err = sess.nav.Navigate(screenOf(action))
			if err != nil {
				return err
			}
		default:
			return shared.NewDomainError("INVALID_NAVIGATION", fmt.Sprintf("unknown navigation action %q", action))
		}
		v = sess.withOutcome(out)
		return nil
	})
	return v, err
}

func screenOf(action string) navigation.Screen {
	switch action {
	case ActionNetwork:
		return navigation.ScreenNetwork
	case ActionHome:
		return navigation.ScreenHome
	case ActionPortfolio:
		return navigation.ScreenPortfolio
	}
	return navigation.ScreenLanding
}

// ViewListing opens the detail screen of a catalog listing
func (s *Service) ViewListing(ctx context.Context, sessionID, listingID string) (*View, error) {
	var v *View
	err := s.withSession(sessionID, func(sess *session) error {
		v = sess.withOutcome(sess.nav.ViewListing(listingID))
		return nil
	})
	return v, err
}

// Claim resolves id against the portfolio and the catalog and opens the record
// for management, converting a catalog listing on first use
func (s *Service) Claim(ctx context.Context, sessionID, id string) (*View, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "console", "claim",
		telemetry.SpanAttrSessionID, sessionID, telemetry.SpanAttrListingID, id)
	defer span.End()

	var v *View
	err := s.withSession(sessionID, func(sess *session) error {
		out := sess.nav.Claim(id)
		s.afterResolve(ctx, sess, out, id)
		telemetry.SetAttributes(span, telemetry.SpanAttrResolution, string(out.Status))
		v = sess.withOutcome(out)
		return nil
	})
	return v, err
}

// ViewAnalytics resolves or claims id and opens its analytics dashboard
func (s *Service) ViewAnalytics(ctx context.Context, sessionID, id string) (*View, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "console", "view_analytics",
		telemetry.SpanAttrSessionID, sessionID, telemetry.SpanAttrRecordID, id)
	defer span.End()

	var v *View
	err := s.withSession(sessionID, func(sess *session) error {
		out := sess.nav.ViewAnalytics(id)
		s.afterResolve(ctx, sess, out, id)
		v = sess.withOutcome(out)
		return nil
	})
	return v, err
}

// ManageFromDetail opens the selected listing for management, claiming it if needed
func (s *Service) ManageFromDetail(ctx context.Context, sessionID, listingID string) (*View, error) {
	var v *View
	err := s.withSession(sessionID, func(sess *session) error {
		if err := checkSelected(sess, listingID); err != nil {
			return err
		}
		out := sess.nav.ManageFromDetail()
		s.afterResolve(ctx, sess, out, listingID)
		v = sess.withOutcome(out)
		return nil
	})
	return v, err
}

// AnalyticsFromDetail opens analytics for the selected listing when it is owned.
// An unowned listing yields a NotOwned outcome and the screen stays.
func (s *Service) AnalyticsFromDetail(ctx context.Context, sessionID, listingID string) (*View, error) {
	var v *View
	err := s.withSession(sessionID, func(sess *session) error {
		if err := checkSelected(sess, listingID); err != nil {
			return err
		}
		v = sess.withOutcome(sess.nav.AnalyticsFromDetail())
		return nil
	})
	return v, err
}

// checkSelected rejects detail actions that name a listing other than the one on screen
func checkSelected(sess *session, listingID string) error {
	if listingID == "" {
		return nil
	}
	st := sess.nav.State()
	if st.SelectedListing == nil || st.SelectedListing.ID != listingID {
		return shared.WrapDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("listing %q is not open", listingID), nil)
	}
	return nil
}

// afterResolve persists and announces a claim made by a transition
func (s *Service) afterResolve(ctx context.Context, sess *session, out navigation.Outcome, listingID string) {
	if !out.OK() || !out.Claimed {
		return
	}
	rec, ok := sess.nav.Record(out.RecordID)
	if !ok {
		return
	}
	s.persist(ctx, sess)
	s.publish(ctx, property.NewPropertyClaimedEvent(sess.id, rec, listingID))
	s.logger.Info("listing claimed",
		zap.String("session_id", sess.id),
		zap.String("listing_id", listingID),
		zap.String("record_id", rec.ID))
}

// Marketplace returns the catalog merged with the session portfolio
func (s *Service) Marketplace(ctx context.Context, sessionID string) ([]property.Listing, error) {
	var out []property.Listing
	err := s.withSession(sessionID, func(sess *session) error {
		out = sess.nav.Marketplace()
		return nil
	})
	return out, err
}

// Catalog returns the seed listings
func (s *Service) Catalog(ctx context.Context, sessionID string) ([]property.Listing, error) {
	var out []property.Listing
	err := s.withSession(sessionID, func(sess *session) error {
		out = sess.nav.Catalog()
		return nil
	})
	return out, err
}

// Portfolio returns the aggregated marketplace, owned records first and unclaimed
// seed listings after them, searched and sorted. Stats cover the whole list.
func (s *Service) Portfolio(ctx context.Context, sessionID, search, sort string) (*PortfolioView, error) {
	var pv *PortfolioView
	err := s.withSession(sessionID, func(sess *session) error {
		all := sess.nav.Marketplace()
		option := marketplace.ParseSortOption(sort)
		pv = &PortfolioView{
			Listings: marketplace.Sort(marketplace.Search(all, search), option),
			Stats:    marketplace.ComputeStats(all),
			Sort:     option,
			Search:   search,
		}
		return nil
	})
	return pv, err
}
