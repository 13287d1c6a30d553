package handler

import (
	"context"

	consoleapp "github.com/britrip/hotelier/internal/application/console"
	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/domain/sectionedit"
	"github.com/britrip/hotelier/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ManageHandler drives the per-section editor of a managed record
type ManageHandler struct {
	BaseHandler
	console *consoleapp.Service
}

// NewManageHandler creates a new ManageHandler
func NewManageHandler(console *consoleapp.Service) *ManageHandler {
	return &ManageHandler{console: console}
}

// EditSection puts one section in edit mode
// POST /api/v1/manage/sections/:section/edit
func (h *ManageHandler) EditSection(c *gin.Context) {
	section := sectionedit.SectionID(c.Param("section"))
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return h.console.BeginSectionEdit(ctx, sessionID, section)
	})
}

// PatchDraft edits the open section draft
// PATCH /api/v1/manage/draft
func (h *ManageHandler) PatchDraft(c *gin.Context) {
	var req dto.SectionDraftPatch
	if !h.BindJSON(c, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return h.console.UpdateSectionDraft(ctx, sessionID, req.Apply)
	})
}

// AddRoom appends a room to the rooms draft. An empty body appends the default template.
// POST /api/v1/manage/rooms
func (h *ManageHandler) AddRoom(c *gin.Context) {
	var req dto.RoomPatch
	if !h.BindJSON(c, &req, true) {
		return
	}
	room := property.DefaultRoomTemplate()
	req.Apply(&room)
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return h.console.AppendSectionRoom(ctx, sessionID, &room)
	})
}

// RemoveRoom removes a room from the rooms draft
// DELETE /api/v1/manage/rooms/:roomId
func (h *ManageHandler) RemoveRoom(c *gin.Context) {
	roomID := c.Param("roomId")
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return h.console.RemoveSectionRoom(ctx, sessionID, roomID)
	})
}

// Save commits the open section
// POST /api/v1/manage/save
func (h *ManageHandler) Save(c *gin.Context) {
	h.respond(c, h.console.SaveSection)
}

// Cancel discards the open section draft
// POST /api/v1/manage/cancel
func (h *ManageHandler) Cancel(c *gin.Context) {
	h.respond(c, h.console.CancelSection)
}
