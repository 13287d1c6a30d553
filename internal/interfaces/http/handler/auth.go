package handler

import (
	"context"

	consoleapp "github.com/britrip/hotelier/internal/application/console"
	"github.com/britrip/hotelier/internal/domain/authflow"
	"github.com/britrip/hotelier/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// AuthHandler drives the simulated sign-in flow of a session
type AuthHandler struct {
	BaseHandler
	console *consoleapp.Service
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(console *consoleapp.Service) *AuthHandler {
	return &AuthHandler{console: console}
}

// Submit sends the credentials; the code screen opens after the send delay
// POST /api/v1/auth/submit
func (h *AuthHandler) Submit(c *gin.Context) {
	var req dto.AuthSubmitRequest
	if !h.BindJSON(c, &req, false) {
		return
	}
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return h.console.SubmitCredentials(ctx, sessionID, req.Email, req.Password)
	})
}

// OTP fills one digit of the code, or the whole code at once
// POST /api/v1/auth/otp
func (h *AuthHandler) OTP(c *gin.Context) {
	var req dto.OTPRequest
	if !h.BindJSON(c, &req, false) {
		return
	}
	index, value, err := req.Position()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return h.console.EnterCode(ctx, sessionID, index, value)
	})
}

// Mode switches the credentials form between login and signup
// POST /api/v1/auth/mode
func (h *AuthHandler) Mode(c *gin.Context) {
	var req dto.AuthModeRequest
	if !h.BindJSON(c, &req, false) {
		return
	}
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return h.console.SetAuthMode(ctx, sessionID, authflow.Mode(req.Mode))
	})
}

// Cancel abandons the sign-in
// POST /api/v1/auth/cancel
func (h *AuthHandler) Cancel(c *gin.Context) {
	h.respond(c, h.console.CancelAuth)
}

// Logout signs out and clears the portfolio
// POST /api/v1/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.respond(c, h.console.Logout)
}
