package handler

import (
	"errors"
	"net/http"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/middleware"
	"github.com/ampvending/amp-backend/internal/response"
	"github.com/ampvending/amp-backend/internal/service"
	"github.com/ampvending/amp-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// fail maps a service error onto the response envelope. Unknown errors are
// attached to the gin context so the request logger reports them.
func fail(c *gin.Context, err error) {
	var (
		filterErr *filter.ValidationError
		fieldsErr *service.FieldsError
	)
	switch {
	case errors.As(err, &filterErr):
		response.FailFilter(c, filterErr)
	case errors.As(err, &fieldsErr):
		details := make([]response.Detail, 0, len(fieldsErr.Fields))
		for _, f := range fieldsErr.Fields {
			details = append(details, response.Detail{Field: f.Field, Message: f.Message})
		}
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation, details)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrConflict):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrSessionExpired):
		response.Fail(c, http.StatusUnauthorized, response.ErrSessionExpired)
	case errors.Is(err, service.ErrUnsupportedFileType):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
	case errors.Is(err, service.ErrUpstream):
		_ = c.Error(err)
		response.Fail(c, http.StatusBadGateway, response.ErrUpstreamFailure)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// bind decodes the JSON body and answers 400 with field details on failure.
func bind(c *gin.Context, dst interface{}) bool {
	if details := validator.Bind(c, dst); details != nil {
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation, details)
		return false
	}
	return true
}

// pathID reads a UUID path parameter. Malformed ids answer 400 INVALID_ID
// before any store is queried.
func pathID(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return "", false
	}
	return id.String(), true
}

// actor identifies the admin behind the request for the audit trail.
func actor(c *gin.Context) service.Actor {
	a := service.Actor{IP: c.ClientIP()}
	if claims := middleware.GetClaims(c); claims != nil {
		a.AdminID = claims.Subject
	}
	return a
}
