package response

import (
	"net/http"
	"time"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeySource marks responses served from a fallback data source.
const ContextKeySource = "response_source"

// Response is the standardized API response envelope.
type Response struct {
	Success    bool         `json:"success"`
	Data       interface{}  `json:"data,omitempty"`
	Error      *ErrorBody   `json:"error,omitempty"`
	Details    []Detail     `json:"details,omitempty"`
	Pagination *filter.Page `json:"pagination,omitempty"`
	Metadata   Metadata     `json:"metadata"`
}

// ErrorBody represents a structured error response.
type ErrorBody struct {
	Code    ErrCode `json:"code"`
	Message string  `json:"message"`
}

// Detail is a field-level validation message.
type Detail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Metadata includes request tracing and timing.
type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source,omitempty"`
}

// ────────────────────────────────────────────────────────────────────────────
// Helper builders
// ────────────────────────────────────────────────────────────────────────────

// Success sends a successful JSON response with the given status code and data.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success:  true,
		Data:     data,
		Metadata: buildMetadata(c),
	})
}

// SuccessWithPagination sends a successful list response with pagination.
func SuccessWithPagination(c *gin.Context, statusCode int, data interface{}, page filter.Page) {
	c.JSON(statusCode, Response{
		Success:    true,
		Data:       data,
		Pagination: &page,
		Metadata:   buildMetadata(c),
	})
}

// Fail sends an error response with an error code and no field-level details.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, Response{
		Error:    &ErrorBody{Code: code, Message: GetMessage(code)},
		Metadata: buildMetadata(c),
	})
}

// FailWithDetails sends an error response with field-level validation details.
func FailWithDetails(c *gin.Context, statusCode int, code ErrCode, details []Detail) {
	c.JSON(statusCode, Response{
		Error:    &ErrorBody{Code: code, Message: GetMessage(code)},
		Details:  details,
		Metadata: buildMetadata(c),
	})
}

// FailFilter reports a rejected list query as a 400 with one detail per field.
func FailFilter(c *gin.Context, err *filter.ValidationError) {
	details := make([]Detail, 0, len(err.Fields))
	for _, f := range err.Fields {
		details = append(details, Detail{Field: f.Field, Message: f.Message})
	}
	FailWithDetails(c, http.StatusBadRequest, ErrInvalidFilter, details)
}

// AbortFail aborts the middleware chain and sends an error response.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, Response{
		Error:    &ErrorBody{Code: code, Message: GetMessage(code)},
		Metadata: buildMetadata(c),
	})
}

// MarkSource records the data source reported in the response metadata.
func MarkSource(c *gin.Context, source string) {
	c.Set(ContextKeySource, source)
}

// ────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ────────────────────────────────────────────────────────────────────────────

func buildMetadata(c *gin.Context) Metadata {
	reqID, _ := c.Get(ContextKeyRequestID)
	id, ok := reqID.(string)
	if !ok || id == "" {
		id = uuid.New().String() // Fallback if middleware not applied
	}
	return Metadata{
		RequestID: id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Source:    c.GetString(ContextKeySource),
	}
}
