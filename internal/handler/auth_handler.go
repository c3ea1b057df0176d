package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/ampvending/amp-backend/internal/auth"
	"github.com/ampvending/amp-backend/internal/config"
	"github.com/ampvending/amp-backend/internal/middleware"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/oauth"
	"github.com/ampvending/amp-backend/internal/response"
	"github.com/ampvending/amp-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// PasswordAuthenticator is the email/password half of the session authority.
type PasswordAuthenticator interface {
	Login(ctx context.Context, email, password string) (*service.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*service.Session, error)
}

// OAuthFlow is the Google half of the session authority.
type OAuthFlow interface {
	Begin() (*oauth.Start, error)
	Complete(ctx context.Context, cb oauth.Callback) oauth.Outcome
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	passwords    PasswordAuthenticator
	oauth        OAuthFlow
	cookies      sessionCookies
	loginURL     string
	dashboardURL string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(passwords PasswordAuthenticator, flow OAuthFlow, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		passwords:    passwords,
		oauth:        flow,
		cookies:      newSessionCookies(cfg),
		loginURL:     cfg.AdminLoginURL,
		dashboardURL: cfg.AdminDashboardURL,
	}
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password and sets the session cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.AdminLoginRequest
	if !bind(c, &req) {
		return
	}

	sess, err := h.passwords.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	view := model.NewAdminView(sess.Admin)
	h.cookies.setSession(c, view, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusOK, gin.H{
		"admin":      view,
		"expires_at": sess.ExpiresAt,
	})
}

// Logout godoc
// POST /api/v1/auth/logout
// Clears every session cookie. Always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookies.clearSession(c)
	response.Success(c, http.StatusOK, gin.H{})
}

// Verify godoc
// GET /api/v1/auth/verify
// Returns the identity carried by the session token.
func (h *AuthHandler) Verify(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"admin":      claims.Identity().View(),
		"expires_at": claims.ExpiresAt.Time,
	})
}

// Refresh godoc
// POST /api/v1/auth/refresh
// Trades the refresh cookie for a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(auth.CookieRefresh)
	if err != nil || refresh == "" {
		response.Fail(c, http.StatusUnauthorized, response.ErrSessionExpired)
		return
	}

	sess, err := h.passwords.Refresh(c.Request.Context(), refresh)
	if err != nil {
		fail(c, err)
		return
	}

	view := model.NewAdminView(sess.Admin)
	h.cookies.setSession(c, view, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusOK, gin.H{
		"admin":      view,
		"expires_at": sess.ExpiresAt,
	})
}

// GoogleStart godoc
// GET /api/v1/auth/google
// Redirects to Google with fresh state, nonce and PKCE verifier.
func (h *AuthHandler) GoogleStart(c *gin.Context) {
	start, err := h.oauth.Begin()
	if err != nil {
		h.redirectRejected(c, oauth.ReasonInitFailed)
		return
	}

	encoded, err := oauth.EncodeStart(start)
	if err != nil {
		h.redirectRejected(c, oauth.ReasonInitFailed)
		return
	}

	h.cookies.set(c, auth.CookieOAuthState, encoded, time.Now().Add(oauthStateTTL), true)
	c.Redirect(http.StatusFound, start.URL)
}

// GoogleCallback godoc
// GET /api/v1/auth/google/callback
// Completes the OAuth flow. Authorized admins land on the dashboard with
// fresh cookies; every rejection lands on the login page with a reason.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	var expected *oauth.Start
	if raw, err := c.Cookie(auth.CookieOAuthState); err == nil {
		expected, _ = oauth.DecodeStart(raw)
	}
	h.cookies.clear(c, auth.CookieOAuthState)

	outcome := h.oauth.Complete(c.Request.Context(), oauth.Callback{
		Code:     c.Query("code"),
		Error:    c.Query("error"),
		State:    c.Query("state"),
		Expected: expected,
	})
	if !outcome.Authorized() {
		h.redirectRejected(c, outcome.Reason)
		return
	}

	view := model.NewAdminView(outcome.Admin)
	if outcome.Avatar != "" {
		view.AvatarURL = outcome.Avatar
	}
	h.cookies.setSession(c, view, outcome.Access.Value, outcome.Access.ExpiresAt)
	h.cookies.set(c, auth.CookieRefresh, outcome.Refresh.Value, outcome.Refresh.ExpiresAt, true)
	c.Redirect(http.StatusFound, h.dashboardURL)
}

func (h *AuthHandler) redirectRejected(c *gin.Context, reason oauth.Reason) {
	target, err := url.Parse(h.loginURL)
	if err != nil {
		target = &url.URL{Path: "/"}
	}
	q := target.Query()
	q.Set("error", string(reason))
	q.Set("message", reason.Message())
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, target.String())
}
