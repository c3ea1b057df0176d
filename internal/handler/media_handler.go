package handler

import (
	"net/http"

	"github.com/ampvending/amp-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// MediaHandler handles media upload endpoints.
type MediaHandler struct {
	media Uploader
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(media Uploader) *MediaHandler {
	return &MediaHandler{media: media}
}

// UploadMedia godoc
// POST /api/v1/admin/media/upload
// Uploads an image file and returns its URL.
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	up, err := h.media.SaveUpload(c.Request.Context(), actor(c), file, header)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, up)
}
