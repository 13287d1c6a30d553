package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	consoleapp "github.com/britrip/hotelier/internal/application/console"
	"github.com/britrip/hotelier/internal/infrastructure/auth"
	"github.com/britrip/hotelier/internal/infrastructure/logger"
	"github.com/britrip/hotelier/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Session context keys
const (
	SessionIDKey     = "session_id"
	SessionClaimsKey = "session_claims"
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
	// TokenQueryParam carries the token where no header can be set (websocket upgrades)
	TokenQueryParam = "access_token"
)

// SessionResumer makes the session named by a token live again
type SessionResumer interface {
	Resume(ctx context.Context, id string) (*consoleapp.View, error)
}

// SessionAuthConfig configures SessionAuth
type SessionAuthConfig struct {
	JWTService *auth.JWTService
	Sessions   SessionResumer
	// AllowQueryToken accepts the access_token query parameter on websocket upgrades
	AllowQueryToken bool
	Logger          *zap.Logger
}

// SessionAuth validates the bearer token and binds its console session to the request
func SessionAuth(cfg SessionAuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		token, ok := bearerToken(c, cfg.AllowQueryToken)
		if !ok {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		claims, err := cfg.JWTService.Validate(token)
		if err != nil {
			log.Warn("session token rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrCodeTokenExpired, "Session token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid session token")
			return
		}

		if _, err := cfg.Sessions.Resume(c.Request.Context(), claims.SessionID); err != nil {
			log.Warn("session could not be resumed", zap.String("session_id", claims.SessionID), zap.Error(err))
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Unknown console session")
			return
		}

		c.Set(SessionClaimsKey, claims)
		c.Set(SessionIDKey, claims.SessionID)
		c.Request = c.Request.WithContext(logger.WithSessionID(c.Request.Context(), claims.SessionID))
		c.Next()
	}
}

// SessionID returns the session bound by SessionAuth
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

func bearerToken(c *gin.Context, allowQuery bool) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" && allowQuery && isWebsocketUpgrade(c) {
		if t := c.Query(TokenQueryParam); t != "" {
			return t, true
		}
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func isWebsocketUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDKey)))
}
