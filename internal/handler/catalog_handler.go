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

// Catalog is the public, read-only view of machines and products.
type Catalog interface {
	ListMachines(ctx context.Context, query url.Values) ([]model.Machine, filter.Page, service.Source, error)
	GetMachine(ctx context.Context, slug string) (*model.Machine, service.Source, error)
	ListProducts(ctx context.Context, query url.Values) ([]model.Product, filter.Page, service.Source, error)
}

// CatalogHandler serves the public catalog. Responses served from the
// static fallback carry metadata.source = "static".
type CatalogHandler struct {
	catalog Catalog
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListMachines godoc
// GET /api/v1/public/machines
func (h *CatalogHandler) ListMachines(c *gin.Context) {
	machines, page, source, err := h.catalog.ListMachines(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	response.MarkSource(c, string(source))
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"machines": machines}, page)
}

// GetMachine godoc
// GET /api/v1/public/machines/:slug
func (h *CatalogHandler) GetMachine(c *gin.Context) {
	m, source, err := h.catalog.GetMachine(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	response.MarkSource(c, string(source))
	response.Success(c, http.StatusOK, gin.H{"machine": m})
}

// ListProducts godoc
// GET /api/v1/public/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, page, source, err := h.catalog.ListProducts(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	response.MarkSource(c, string(source))
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"products": products}, page)
}
