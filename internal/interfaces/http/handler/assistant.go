package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	consoleapp "github.com/britrip/hotelier/internal/application/console"
	"github.com/britrip/hotelier/internal/domain/shared"
	"github.com/britrip/hotelier/internal/infrastructure/logger"
	"github.com/britrip/hotelier/internal/interfaces/http/dto"
	"github.com/britrip/hotelier/internal/interfaces/http/middleware"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Websocket message types
const (
	WSTypeMessage = "message"
	WSTypePing    = "ping"
	WSTypePong    = "pong"
	WSTypePending = "pending"
	WSTypeReply   = "reply"
	WSTypeError   = "error"
)

// MaxWSMessageBytes bounds one client frame on the assistant channel
const MaxWSMessageBytes = 16 << 10

// WSClientMessage is a frame sent by the browser
type WSClientMessage struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// WSServerMessage is a frame sent to the browser
type WSServerMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// AssistantHandler serves the assistant chat and the analytics exports
type AssistantHandler struct {
	BaseHandler
	console        *consoleapp.Service
	originPatterns []string
}

// NewAssistantHandler creates a new AssistantHandler. originPatterns are the
// hosts allowed to open the websocket from another origin.
func NewAssistantHandler(console *consoleapp.Service, originPatterns []string) *AssistantHandler {
	return &AssistantHandler{console: console, originPatterns: originPatterns}
}

// Send asks the assistant about the current screen
// POST /api/v1/assistant/messages
func (h *AssistantHandler) Send(c *gin.Context) {
	var req dto.MessageRequest
	if !h.BindJSON(c, &req, false) {
		return
	}
	reply, err := h.console.SendMessage(c.Request.Context(), middleware.SessionID(c), req.Text)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reply)
}

// List returns the transcript
// GET /api/v1/assistant/messages
func (h *AssistantHandler) List(c *gin.Context) {
	msgs, err := h.console.Messages(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, msgs)
}

// Analytics returns the dashboard figures of an owned record
// GET /api/v1/records/:id/analytics
func (h *AssistantHandler) Analytics(c *gin.Context) {
	report, err := h.console.Analytics(c.Request.Context(), middleware.SessionID(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Report renders the analytics dashboard of a record as a PDF download
// GET /api/v1/records/:id/analytics/report.pdf
func (h *AssistantHandler) Report(c *gin.Context) {
	id := c.Param("id")
	var buf bytes.Buffer
	if err := h.console.ExportReport(c.Request.Context(), middleware.SessionID(c), id, &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="analytics-%s.pdf"`, safeFilename(id)))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// Stream runs the assistant chat over a websocket. Each "message" frame gets a
// "pending" acknowledgement and then a "reply" or an "error" frame.
// GET /api/v1/assistant/ws
func (h *AssistantHandler) Stream(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	log := logger.FromGin(c)

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		log.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(MaxWSMessageBytes)

	ctx := c.Request.Context()
	for {
		var msg WSClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				log.Debug("assistant channel closed", zap.Int("status", int(status)))
			}
			return
		}

		switch msg.Type {
		case WSTypePing:
			h.send(ctx, conn, WSServerMessage{Type: WSTypePong, RequestID: msg.ID})
		case WSTypeMessage:
			if !h.handleMessage(ctx, conn, sessionID, msg) {
				conn.Close(websocket.StatusPolicyViolation, "session closed")
				return
			}
		default:
			h.sendError(ctx, conn, msg.ID, dto.ErrCodeBadRequest, fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

// handleMessage answers one chat frame and reports whether the channel stays open
func (h *AssistantHandler) handleMessage(ctx context.Context, conn *websocket.Conn, sessionID string, msg WSClientMessage) bool {
	var req dto.MessageRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || strings.TrimSpace(req.Text) == "" {
		h.sendError(ctx, conn, msg.ID, dto.ErrCodeValidation, "text is required")
		return true
	}

	h.send(ctx, conn, WSServerMessage{Type: WSTypePending, RequestID: msg.ID})
	reply, err := h.console.SendMessage(ctx, sessionID, req.Text)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			h.sendError(ctx, conn, msg.ID, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		} else {
			h.sendError(ctx, conn, msg.ID, dto.ErrCodeInternal, "An unexpected error occurred")
		}
		return !errors.Is(err, consoleapp.ErrSessionNotFound)
	}
	h.send(ctx, conn, WSServerMessage{Type: WSTypeReply, RequestID: msg.ID, Data: reply})
	return true
}

func (h *AssistantHandler) send(ctx context.Context, conn *websocket.Conn, msg WSServerMessage) {
	_ = wsjson.Write(ctx, conn, msg)
}

func (h *AssistantHandler) sendError(ctx context.Context, conn *websocket.Conn, requestID, code, message string) {
	h.send(ctx, conn, WSServerMessage{
		Type:      WSTypeError,
		RequestID: requestID,
		Data:      dto.ErrorInfo{Code: code, Message: message},
	})
}

func safeFilename(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
}
