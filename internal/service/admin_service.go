package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/ampvending/amp-backend/internal/auth"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/repository"
)

// MinPasswordLength is the shortest password accepted when provisioning.
const MinPasswordLength = 8

// AdminService provisions back-office accounts. Accounts are created out of
// band by operators, never through the HTTP API.
type AdminService struct {
	adminRepo repository.AdminRepository
	passwords *auth.PasswordVerifier
}

// NewAdminService creates a new AdminService.
func NewAdminService(adminRepo repository.AdminRepository, passwords *auth.PasswordVerifier) *AdminService {
	return &AdminService{adminRepo: adminRepo, passwords: passwords}
}

// ProvisionRequest describes a new admin. An empty password creates an
// OAuth-only account.
type ProvisionRequest struct {
	Name     string
	Email    string
	Role     model.Role
	Password string
}

// Provision validates and creates an active admin.
func (s *AdminService) Provision(ctx context.Context, req ProvisionRequest) (*model.Admin, error) {
	var issues []FieldIssue
	name := strings.TrimSpace(req.Name)
	if name == "" {
		issues = append(issues, FieldIssue{Field: "name", Message: "is required"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		issues = append(issues, FieldIssue{Field: "email", Message: "must be a valid email address"})
	}
	if !req.Role.Valid() {
		issues = append(issues, FieldIssue{Field: "role", Message: "must be super_admin, admin or editor"})
	}
	if req.Password != "" && len(req.Password) < MinPasswordLength {
		issues = append(issues, FieldIssue{Field: "password", Message: fmt.Sprintf("must be at least %d characters", MinPasswordLength)})
	}
	if len(issues) > 0 {
		return nil, &FieldsError{Fields: issues}
	}

	admin := &model.Admin{Email: email, Name: name, Role: req.Role, IsActive: true}
	if req.Password != "" {
		hash, err := s.passwords.Hash(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		admin.PasswordHash = &hash
	}

	if err := s.adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return admin, nil
}
