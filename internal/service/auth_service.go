package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ampvending/amp-backend/internal/auth"
	"github.com/ampvending/amp-backend/internal/config"
	"github.com/ampvending/amp-backend/internal/metrics"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/repository"
	"github.com/rs/zerolog"
)

// AdminStore is the credential store used by the password path.
type AdminStore interface {
	GetByID(ctx context.Context, id string) (*model.Admin, error)
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	RecordLogin(ctx context.Context, id string, avatarURL *string) error
}

// Session is a freshly minted access token and the admin it belongs to.
type Session struct {
	Admin     *model.Admin
	Token     string
	ExpiresAt time.Time
}

// AuthService handles the email/password path and refresh of OAuth sessions.
type AuthService struct {
	admins      AdminStore
	passwords   *auth.PasswordVerifier
	tokens      *auth.TokenIssuer
	passwordTTL time.Duration
	accessTTL   time.Duration
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	cfg *config.Config,
	admins AdminStore,
	passwords *auth.PasswordVerifier,
	tokens *auth.TokenIssuer,
	m *metrics.Metrics,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		admins:      admins,
		passwords:   passwords,
		tokens:      tokens,
		passwordTTL: cfg.PasswordSessionTTL,
		accessTTL:   cfg.OAuthAccessTTL,
		metrics:     m,
		log:         log.With().Str("component", "auth_service").Logger(),
	}
}

// Login verifies an email/password pair. Unknown, inactive, password-less
// and wrong-password attempts all return ErrInvalidCredentials after a
// bcrypt comparison of comparable cost.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.passwords.VerifyMissing(password)
			s.metrics.ObserveLogin("password", metrics.LoginRejected)
			return nil, ErrInvalidCredentials
		}
		s.metrics.ObserveLogin("password", metrics.LoginError)
		return nil, fmt.Errorf("lookup admin: %w", err)
	}

	hash := ""
	if admin.PasswordHash != nil {
		hash = *admin.PasswordHash
	}
	if ok := s.passwords.Verify(hash, password); !ok || !admin.IsActive {
		s.metrics.ObserveLogin("password", metrics.LoginRejected)
		s.log.Info().Str("admin_id", admin.ID).Msg("Rejected password login")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(auth.IdentityOf(admin), auth.TokenKindAccess, s.passwordTTL)
	if err != nil {
		s.metrics.ObserveLogin("password", metrics.LoginError)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if err := s.admins.RecordLogin(ctx, admin.ID, nil); err != nil {
		s.log.Warn().Err(err).Str("admin_id", admin.ID).Msg("Failed to record login")
	}

	s.metrics.ObserveLogin("password", metrics.LoginSuccess)
	return &Session{Admin: admin, Token: token, ExpiresAt: expiresAt}, nil
}

// Refresh exchanges a refresh token for a new access token, provided the
// admin still exists and is active.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.TokenKindRefresh)
	if err != nil {
		return nil, ErrSessionExpired
	}

	admin, err := s.admins.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	if !admin.IsActive {
		return nil, ErrSessionExpired
	}

	token, expiresAt, err := s.tokens.Issue(auth.IdentityOf(admin), auth.TokenKindAccess, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Admin: admin, Token: token, ExpiresAt: expiresAt}, nil
}
