package service

import (
	"errors"
	"strings"

	"github.com/ampvending/amp-backend/internal/repository"
)

// Sentinel errors returned by services. Handlers map them to HTTP statuses.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrUpstream           = errors.New("upstream service failed")
)

// FieldIssue is one rejected request field.
type FieldIssue struct {
	Field   string
	Message string
}

// FieldsError reports request fields that passed binding but failed a
// business rule (unknown keys, underivable slugs).
type FieldsError struct {
	Fields []FieldIssue
}

func (e *FieldsError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// translate maps repository sentinels onto service sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrConflict
	default:
		return err
	}
}
