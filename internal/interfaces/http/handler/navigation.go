package handler

import (
	"context"

	consoleapp "github.com/britrip/hotelier/internal/application/console"
	"github.com/britrip/hotelier/internal/interfaces/http/dto"
	"github.com/britrip/hotelier/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// NavigationHandler moves the console between screens and serves the listing views
type NavigationHandler struct {
	BaseHandler
	console *consoleapp.Service
}

// NewNavigationHandler creates a new NavigationHandler
func NewNavigationHandler(console *consoleapp.Service) *NavigationHandler {
	return &NavigationHandler{console: console}
}

type viewFunc func(ctx context.Context, sessionID string) (*consoleapp.View, error)

type idViewFunc func(ctx context.Context, sessionID, id string) (*consoleapp.View, error)

// respond runs a transition and writes the resulting view
func (h *BaseHandler) respond(c *gin.Context, fn viewFunc) {
	view, err := fn(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// respondID runs a transition that takes the :id path parameter
func (h *BaseHandler) respondID(c *gin.Context, fn idViewFunc) {
	id := c.Param("id")
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return fn(ctx, sessionID, id)
	})
}

// Navigate follows a navigation bar action: landing, network, auth, home, portfolio or back
// POST /api/v1/nav/:action
func (h *NavigationHandler) Navigate(c *gin.Context) {
	action := c.Param("action")
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return h.console.Navigate(ctx, sessionID, action)
	})
}

// ViewListing opens a listing's detail screen
// POST /api/v1/listings/:id/view
func (h *NavigationHandler) ViewListing(c *gin.Context) {
	h.respondID(c, h.console.ViewListing)
}

// Claim converts a catalog listing into a portfolio record and opens it
// POST /api/v1/listings/:id/claim
func (h *NavigationHandler) Claim(c *gin.Context) {
	h.respondID(c, h.console.Claim)
}

// ManageFromDetail opens the listing on screen for management
// POST /api/v1/listings/:id/manage-from-detail
func (h *NavigationHandler) ManageFromDetail(c *gin.Context) {
	h.respondID(c, h.console.ManageFromDetail)
}

// AnalyticsFromDetail opens analytics for the listing on screen when it is owned
// POST /api/v1/listings/:id/analytics-from-detail
func (h *NavigationHandler) AnalyticsFromDetail(c *gin.Context) {
	h.respondID(c, h.console.AnalyticsFromDetail)
}

// ManageRecord opens a portfolio record, or claims a catalog id, for management
// POST /api/v1/records/:id/manage
func (h *NavigationHandler) ManageRecord(c *gin.Context) {
	h.respondID(c, h.console.Claim)
}

// RecordAnalytics opens the analytics dashboard of a record
// POST /api/v1/records/:id/analytics
func (h *NavigationHandler) RecordAnalytics(c *gin.Context) {
	h.respondID(c, h.console.ViewAnalytics)
}

// Marketplace lists the catalog merged with the portfolio
// GET /api/v1/marketplace
func (h *NavigationHandler) Marketplace(c *gin.Context) {
	listings, err := h.console.Marketplace(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, listings)
}

// Catalog lists the seed catalog
// GET /api/v1/catalog
func (h *NavigationHandler) Catalog(c *gin.Context) {
	listings, err := h.console.Catalog(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, listings)
}

// Portfolio returns the filtered and ordered portfolio with its summary
// GET /api/v1/portfolio?search=&sort=
func (h *NavigationHandler) Portfolio(c *gin.Context) {
	var q dto.PortfolioQuery
	if !h.BindQuery(c, &q) {
		return
	}
	view, err := h.console.Portfolio(c.Request.Context(), middleware.SessionID(c), q.Search, q.Sort)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}
