package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/response"
	"github.com/ampvending/amp-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// LeadStore receives leads from the public forms and serves them to admins.
type LeadStore interface {
	SubmitContact(ctx context.Context, req model.ContactRequest) (*model.Contact, error)
	SubmitCustomRequest(ctx context.Context, req model.CustomRequest) (*model.Contact, error)
	List(ctx context.Context, query url.Values) ([]model.Contact, filter.Page, error)
	GetByID(ctx context.Context, id string) (*model.Contact, error)
	Update(ctx context.Context, actor service.Actor, id string, req model.UpdateContactRequest) (*model.Contact, error)
	Delete(ctx context.Context, actor service.Actor, id string) error
}

// ContactHandler handles the public lead forms and admin lead management.
type ContactHandler struct {
	leads LeadStore
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(leads LeadStore) *ContactHandler {
	return &ContactHandler{leads: leads}
}

// SubmitContact godoc
// POST /api/v1/public/contact
// Stores a contact-form lead. The team notification is best-effort.
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req model.ContactRequest
	if !bind(c, &req) {
		return
	}
	lead, err := h.leads.SubmitContact(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": lead.ID, "status": lead.Status})
}

// SubmitCustomRequest godoc
// POST /api/v1/public/custom-request
func (h *ContactHandler) SubmitCustomRequest(c *gin.Context) {
	var req model.CustomRequest
	if !bind(c, &req) {
		return
	}
	lead, err := h.leads.SubmitCustomRequest(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": lead.ID, "status": lead.Status})
}

// ListContacts godoc
// GET /api/v1/admin/contacts
// Lists leads with filters: status, source, date_from, date_to, search, limit, offset.
func (h *ContactHandler) ListContacts(c *gin.Context) {
	contacts, page, err := h.leads.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"contacts": contacts}, page)
}

// GetContact godoc
// GET /api/v1/admin/contacts/:id
func (h *ContactHandler) GetContact(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lead, err := h.leads.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"contact": lead})
}

// UpdateContact godoc
// PATCH /api/v1/admin/contacts/:id
// Changes the lead status and/or notes.
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateContactRequest
	if !bind(c, &req) {
		return
	}
	lead, err := h.leads.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"contact": lead})
}

// DeleteContact godoc
// DELETE /api/v1/admin/contacts/:id
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.leads.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}
