package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/response"
	"github.com/ampvending/amp-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// MachineStore is the machine catalog as seen by the admin API.
type MachineStore interface {
	List(ctx context.Context, query url.Values) ([]model.Machine, filter.Page, error)
	GetByID(ctx context.Context, id string) (*model.Machine, error)
	Create(ctx context.Context, actor service.Actor, req model.CreateMachineRequest) (*model.Machine, error)
	Update(ctx context.Context, actor service.Actor, id string, req model.UpdateMachineRequest) (*model.Machine, error)
	Delete(ctx context.Context, actor service.Actor, id string) error
	ListImages(ctx context.Context, machineID string) ([]model.MachineImage, error)
	AddImage(ctx context.Context, actor service.Actor, machineID string, req model.AddMachineImageRequest) (*model.MachineImage, error)
	DeleteImage(ctx context.Context, actor service.Actor, machineID, imageID string) error
	SetPrimaryImage(ctx context.Context, actor service.Actor, machineID, imageID string) (*model.MachineImage, error)
}

// Uploader stores an uploaded image and returns its public URL.
type Uploader interface {
	SaveUpload(ctx context.Context, actor service.Actor, file multipart.File, header *multipart.FileHeader) (*service.Upload, error)
}

// MachineHandler handles admin machine and machine image management.
type MachineHandler struct {
	machines MachineStore
	media    Uploader
}

// NewMachineHandler creates a new MachineHandler.
func NewMachineHandler(machines MachineStore, media Uploader) *MachineHandler {
	return &MachineHandler{machines: machines, media: media}
}

// ListMachines godoc
// GET /api/v1/admin/machines
// Lists machines with filters: category, is_active, date_from, date_to, search, limit, offset.
func (h *MachineHandler) ListMachines(c *gin.Context) {
	machines, page, err := h.machines.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"machines": machines}, page)
}

// GetMachine godoc
// GET /api/v1/admin/machines/:id
func (h *MachineHandler) GetMachine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := h.machines.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"machine": m})
}

// CreateMachine godoc
// POST /api/v1/admin/machines
func (h *MachineHandler) CreateMachine(c *gin.Context) {
	var req model.CreateMachineRequest
	if !bind(c, &req) {
		return
	}
	m, err := h.machines.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"machine": m})
}

// UpdateMachine godoc
// PATCH /api/v1/admin/machines/:id
// Partial update. {"is_active": false} deactivates the machine.
func (h *MachineHandler) UpdateMachine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateMachineRequest
	if !bind(c, &req) {
		return
	}
	m, err := h.machines.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"machine": m})
}

// DeleteMachine godoc
// DELETE /api/v1/admin/machines/:id
func (h *MachineHandler) DeleteMachine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.machines.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// ─── Images ────────────────────────────────────────────────────────────

// ListImages godoc
// GET /api/v1/admin/machines/:id/images
func (h *MachineHandler) ListImages(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	images, err := h.machines.ListImages(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"images": images})
}

// AddImage godoc
// POST /api/v1/admin/machines/:id/images
// Attaches an image by URL. Multipart requests carrying a "file" part are
// stored first and attached with the resulting URL.
func (h *MachineHandler) AddImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.AddMachineImageRequest
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if !h.uploadImage(c, &req) {
			return
		}
	} else if !bind(c, &req) {
		return
	}

	img, err := h.machines.AddImage(c.Request.Context(), actor(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"image": img})
}

func (h *MachineHandler) uploadImage(c *gin.Context, req *model.AddMachineImageRequest) bool {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return false
	}
	defer file.Close()

	req.AltText = strings.TrimSpace(c.PostForm("alt_text"))
	if len(req.AltText) > 200 {
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation,
			[]response.Detail{{Field: "alt_text", Message: "alt_text must be a maximum of 200 characters in length"}})
		return false
	}
	req.IsPrimary, _ = strconv.ParseBool(c.PostForm("is_primary"))
	if order, err := strconv.Atoi(c.PostForm("display_order")); err == nil && order >= 0 {
		req.DisplayOrder = order
	}

	up, err := h.media.SaveUpload(c.Request.Context(), actor(c), file, header)
	if err != nil {
		fail(c, err)
		return false
	}
	req.URL = up.URL
	return true
}

// DeleteImage godoc
// DELETE /api/v1/admin/machines/:id/images/:image_id
func (h *MachineHandler) DeleteImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(c, "image_id")
	if !ok {
		return
	}
	if err := h.machines.DeleteImage(c.Request.Context(), actor(c), id, imageID); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": imageID})
}

// SetPrimaryImage godoc
// PUT /api/v1/admin/machines/:id/images/:image_id/primary
func (h *MachineHandler) SetPrimaryImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(c, "image_id")
	if !ok {
		return
	}
	img, err := h.machines.SetPrimaryImage(c.Request.Context(), actor(c), id, imageID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"image": img})
}
