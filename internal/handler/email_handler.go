package handler

import (
	"errors"
	"net/http"

	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/response"
	"github.com/ampvending/amp-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// EmailHandler handles admin email sending and the email log.
type EmailHandler struct {
	emailService *service.EmailService
}

// NewEmailHandler creates a new EmailHandler.
func NewEmailHandler(emailService *service.EmailService) *EmailHandler {
	return &EmailHandler{emailService: emailService}
}

// SendEmail godoc
// POST /api/v1/admin/emails/send
// Sends an email. A provider failure answers 502 and is still logged.
func (h *EmailHandler) SendEmail(c *gin.Context) {
	var req model.SendEmailRequest
	if !bind(c, &req) {
		return
	}

	entry, err := h.emailService.Send(c.Request.Context(), actor(c), req)
	if err != nil {
		if errors.Is(err, service.ErrUpstream) {
			_ = c.Error(err)
			response.Fail(c, http.StatusBadGateway, response.ErrEmailFailed)
			return
		}
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"email": entry})
}

// ListEmailLogs godoc
// GET /api/v1/admin/emails/logs
// Lists email logs with filters: status, contact_id, date_from, date_to, search, limit, offset.
func (h *EmailHandler) ListEmailLogs(c *gin.Context) {
	logs, page, err := h.emailService.ListLogs(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"logs": logs}, page)
}
