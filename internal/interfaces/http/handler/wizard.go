package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	consoleapp "github.com/britrip/hotelier/internal/application/console"
	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/domain/wizard"
	"github.com/britrip/hotelier/internal/infrastructure/storage"
	"github.com/britrip/hotelier/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// PhotoFormField is the multipart field of an uploaded photo
const PhotoFormField = "photo"

// WizardHandler drives the registration wizard
type WizardHandler struct {
	BaseHandler
	console *consoleapp.Service
}

// NewWizardHandler creates a new WizardHandler
func NewWizardHandler(console *consoleapp.Service) *WizardHandler {
	return &WizardHandler{console: console}
}

// Start opens the wizard on a blank draft, or on the record under management when edit is set
// POST /api/v1/wizard/start
func (h *WizardHandler) Start(c *gin.Context) {
	var req dto.WizardStartRequest
	if !h.BindJSON(c, &req, true) {
		return
	}
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return h.console.StartWizard(ctx, sessionID, req.Edit)
	})
}

// Phase switches the wizard phase
// POST /api/v1/wizard/phase
func (h *WizardHandler) Phase(c *gin.Context) {
	var req dto.PhaseRequest
	if !h.BindJSON(c, &req, false) {
		return
	}
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return h.console.EnterPhase(ctx, sessionID, wizard.Phase(req.Phase))
	})
}

// NextBasic advances the basic info phase
// POST /api/v1/wizard/basic/next
func (h *WizardHandler) NextBasic(c *gin.Context) {
	h.respond(c, h.console.AdvanceBasicInfo)
}

// NewRoom opens a room draft from the default template
// POST /api/v1/wizard/rooms/new
func (h *WizardHandler) NewRoom(c *gin.Context) {
	h.respond(c, h.console.StartNewRoom)
}

// EditRoom opens a room draft on the room at :index
// POST /api/v1/wizard/rooms/:index/edit
func (h *WizardHandler) EditRoom(c *gin.Context) {
	index, ok := h.intParam(c, "index")
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return h.console.StartEditRoom(ctx, sessionID, index)
	})
}

// DeleteRoom removes the room at :index
// DELETE /api/v1/wizard/rooms/:index
func (h *WizardHandler) DeleteRoom(c *gin.Context) {
	index, ok := h.intParam(c, "index")
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return h.console.DeleteRoom(ctx, sessionID, index)
	})
}

// NextRoom advances the room sub-flow
// POST /api/v1/wizard/rooms/next
func (h *WizardHandler) NextRoom(c *gin.Context) {
	h.respond(c, h.console.AdvanceRoom)
}

// NextFinal advances the final steps phase
// POST /api/v1/wizard/final/next
func (h *WizardHandler) NextFinal(c *gin.Context) {
	h.respond(c, h.console.AdvanceFinal)
}

// PatchDraft edits the record draft
// PATCH /api/v1/wizard/draft
func (h *WizardHandler) PatchDraft(c *gin.Context) {
	var req dto.DraftPatch
	if !h.BindJSON(c, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return h.console.UpdateDraft(ctx, sessionID, req.Apply)
	})
}

// PatchRoom edits the open room draft
// PATCH /api/v1/wizard/room
func (h *WizardHandler) PatchRoom(c *gin.Context) {
	var req dto.RoomPatch
	if !h.BindJSON(c, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return h.console.UpdateDraftRoom(ctx, sessionID, func(r *property.RoomUnit) { req.Apply(r) })
	})
}

// AddPhoto ingests photos sent as multipart files or as a data URI. Every file
// of the photo field is stored on its own; the view reflects all of them.
// POST /api/v1/wizard/photos
func (h *WizardHandler) AddPhoto(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil || len(form.File[PhotoFormField]) == 0 {
			h.BadRequest(c, "Missing "+PhotoFormField+" file")
			return
		}
		h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
			var v *consoleapp.View
			for _, fh := range form.File[PhotoFormField] {
				asset, err := readUpload(fh)
				if err != nil {
					return nil, err
				}
				if v, err = h.console.IngestPhoto(ctx, sessionID, asset); err != nil {
					return nil, err
				}
			}
			return v, nil
		})
		return
	}

	var req dto.PhotoRequest
	if !h.BindJSON(c, &req, false) {
		return
	}
	asset, err := storage.DecodeDataURI(req.DataURI)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid data URI")
		return
	}
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return h.console.IngestPhoto(ctx, sessionID, asset)
	})
}

// RemovePhoto removes the photo at :index
// DELETE /api/v1/wizard/photos/:index
func (h *WizardHandler) RemovePhoto(c *gin.Context) {
	index, ok := h.intParam(c, "index")
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context, sessionID string) (*consoleapp.View, error) {
		return h.console.RemovePhoto(ctx, sessionID, index)
	})
}

// Enhance rewrites the draft description with the assistant
// POST /api/v1/wizard/enhance
func (h *WizardHandler) Enhance(c *gin.Context) {
	h.respond(c, h.console.EnhanceDescription)
}

// Finish saves the completed draft into the portfolio
// POST /api/v1/wizard/finish
func (h *WizardHandler) Finish(c *gin.Context) {
	h.respond(c, h.console.FinishWizard)
}

// Cancel abandons the wizard
// POST /api/v1/wizard/cancel
func (h *WizardHandler) Cancel(c *gin.Context) {
	h.respond(c, h.console.CancelWizard)
}

func readUpload(fh *multipart.FileHeader) (consoleapp.Asset, error) {
	f, err := fh.Open()
	if err != nil {
		return consoleapp.Asset{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return consoleapp.Asset{}, err
	}
	return consoleapp.Asset{
		Data:        data,
		ContentType: fh.Header.Get("Content-Type"),
		Filename:    fh.Filename,
	}, nil
}
