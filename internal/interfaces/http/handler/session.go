package handler

import (
	consoleapp "github.com/britrip/hotelier/internal/application/console"
	"github.com/britrip/hotelier/internal/infrastructure/auth"
	"github.com/britrip/hotelier/internal/interfaces/http/dto"
	"github.com/britrip/hotelier/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// SessionHandler opens, shows and closes console sessions
type SessionHandler struct {
	BaseHandler
	console *consoleapp.Service
	tokens  *auth.JWTService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(console *consoleapp.Service, tokens *auth.JWTService) *SessionHandler {
	return &SessionHandler{console: console, tokens: tokens}
}

// Create opens a console on the landing screen and issues its bearer token
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	view, err := h.console.CreateSession(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	token, err := h.tokens.Issue(view.SessionID)
	if err != nil {
		_ = h.console.CloseSession(c.Request.Context(), view.SessionID)
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.SessionResponse{
		Token:     token.Token,
		TokenType: token.TokenType,
		ExpiresAt: token.ExpiresAt,
		Session:   view,
	})
}

// Get returns the session state
// GET /api/v1/session
func (h *SessionHandler) Get(c *gin.Context) {
	view, err := h.console.View(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Delete tears the session down and discards its pending timers
// DELETE /api/v1/session
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.console.CloseSession(c.Request.Context(), middleware.SessionID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
