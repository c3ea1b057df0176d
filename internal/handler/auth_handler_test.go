package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ampvending/amp-backend/internal/auth"
	"github.com/ampvending/amp-backend/internal/config"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/oauth"
	"github.com/ampvending/amp-backend/internal/response"
	"github.com/ampvending/amp-backend/internal/service"
	"github.com/ampvending/amp-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

var testConfig = &config.Config{
	AdminLoginURL:     "https://amp.test/admin/login",
	AdminDashboardURL: "https://amp.test/admin",
	CookieSameSite:    http.SameSiteLaxMode,
	OAuthAccessTTL:    time.Hour,
}

var ops = &model.Admin{ID: "4b0f8a52-8d7e-4a61-9f0e-0d8c1f1b7a10", Email: "ops@ampvending.com", Name: "Ops", Role: model.RoleAdmin, IsActive: true}

type stubPasswords struct {
	session *service.Session
	err     error
	email   string
}

func (s *stubPasswords) Login(_ context.Context, email, _ string) (*service.Session, error) {
	s.email = email
	return s.session, s.err
}

func (s *stubPasswords) Refresh(_ context.Context, _ string) (*service.Session, error) {
	return s.session, s.err
}

type stubFlow struct {
	start    *oauth.Start
	beginErr error
	outcome  oauth.Outcome
	callback oauth.Callback
}

func (s *stubFlow) Begin() (*oauth.Start, error) { return s.start, s.beginErr }

func (s *stubFlow) Complete(_ context.Context, cb oauth.Callback) oauth.Outcome {
	s.callback = cb
	return s.outcome
}

func authRouter(passwords PasswordAuthenticator, flow OAuthFlow) *gin.Engine {
	h := NewAuthHandler(passwords, flow, testConfig)
	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.POST("/refresh", h.Refresh)
	r.GET("/google", h.GoogleStart)
	r.GET("/google/callback", h.GoogleCallback)
	return r
}

func cookiesByName(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, ck := range w.Result().Cookies() {
		out[ck.Name] = ck
	}
	return out
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, w)
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok, "response has no error body: %s", w.Body.String())
	return errBody["code"].(string)
}

func TestLoginSetsSessionCookies(t *testing.T) {
	passwords := &stubPasswords{session: &service.Session{Admin: ops, Token: "signed.jwt.token", ExpiresAt: time.Now().Add(7 * 24 * time.Hour)}}
	r := authRouter(passwords, &stubFlow{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"ops@ampvending.com","password":"correct-horse"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookies := cookiesByName(w)

	access := cookies[auth.CookieAccess]
	require.NotNil(t, access)
	assert.Equal(t, "signed.jwt.token", access.Value)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)

	assert.Greater(t, access.MaxAge, 6*24*3600)

	user := cookies[auth.CookieUser]
	require.NotNil(t, user)
	assert.False(t, user.HttpOnly)
	assert.LessOrEqual(t, user.MaxAge, 3600, "display cookie is capped at the access TTL")
	assert.Greater(t, user.MaxAge, 3500)
	raw, err := url.QueryUnescape(user.Value)
	require.NoError(t, err)
	assert.NotContains(t, raw, "signed.jwt.token")
	var display displayUser
	require.NoError(t, json.Unmarshal([]byte(raw), &display))
	assert.Equal(t, "ops@ampvending.com", display.Email)
	assert.Equal(t, model.RoleAdmin, display.Role)

	assert.NotContains(t, w.Body.String(), "signed.jwt.token")
}

func TestLoginRejected(t *testing.T) {
	r := authRouter(&stubPasswords{err: service.ErrInvalidCredentials}, &stubFlow{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"ops@ampvending.com","password":"wrong-pass"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, string(response.ErrInvalidCredentials), errorCode(t, w))
	assert.Empty(t, w.Result().Cookies())
}

func TestLoginValidation(t *testing.T) {
	passwords := &stubPasswords{}
	r := authRouter(passwords, &stubFlow{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(response.ErrValidation), errorCode(t, w))
	assert.Empty(t, passwords.email, "the store is not consulted for malformed input")
}

func TestLogoutClearsEveryCookie(t *testing.T) {
	r := authRouter(&stubPasswords{}, &stubFlow{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	cookies := cookiesByName(w)
	for _, name := range []string{auth.CookieAccess, auth.CookieRefresh, auth.CookieUser} {
		require.Contains(t, cookies, name)
		assert.Less(t, cookies[name].MaxAge, 0, name)
	}
}

func TestRefreshWithoutCookie(t *testing.T) {
	r := authRouter(&stubPasswords{}, &stubFlow{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/refresh", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, string(response.ErrSessionExpired), errorCode(t, w))
}

func TestGoogleStartStoresState(t *testing.T) {
	start := &oauth.Start{URL: "https://accounts.google.test/auth?state=s1", State: "s1", Nonce: "n1", Verifier: "v1"}
	r := authRouter(&stubPasswords{}, &stubFlow{start: start})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/google", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, start.URL, w.Header().Get("Location"))

	state := cookiesByName(w)[auth.CookieOAuthState]
	require.NotNil(t, state)
	assert.True(t, state.HttpOnly)
	decoded, err := oauth.DecodeStart(state.Value)
	require.NoError(t, err)
	assert.Equal(t, "s1", decoded.State)
	assert.Equal(t, "v1", decoded.Verifier)
}

func TestGoogleStartNotConfigured(t *testing.T) {
	r := authRouter(&stubPasswords{}, &stubFlow{beginErr: oauth.ErrInitFailed})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/google", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/admin/login", loc.Path)
	assert.Equal(t, "oauth_init_failed", loc.Query().Get("error"))
	assert.NotEmpty(t, loc.Query().Get("message"))
}

func stateCookie(t *testing.T) *http.Cookie {
	t.Helper()
	encoded, err := oauth.EncodeStart(&oauth.Start{State: "s1", Nonce: "n1", Verifier: "v1"})
	require.NoError(t, err)
	return &http.Cookie{Name: auth.CookieOAuthState, Value: encoded}
}

func TestGoogleCallbackAuthorized(t *testing.T) {
	flow := &stubFlow{outcome: oauth.Outcome{
		Final:   oauth.StateAuthorized,
		Admin:   ops,
		Avatar:  "https://lh3.googleusercontent.test/a.png",
		Access:  oauth.Token{Value: "access.jwt", ExpiresAt: time.Now().Add(time.Hour)},
		Refresh: oauth.Token{Value: "refresh.jwt", ExpiresAt: time.Now().Add(7 * 24 * time.Hour)},
	}}
	r := authRouter(&stubPasswords{}, flow)

	req := httptest.NewRequest(http.MethodGet, "/google/callback?code=abc&state=s1", nil)
	req.AddCookie(stateCookie(t))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, testConfig.AdminDashboardURL, w.Header().Get("Location"))

	assert.Equal(t, "abc", flow.callback.Code)
	assert.Equal(t, "s1", flow.callback.State)
	require.NotNil(t, flow.callback.Expected)
	assert.Equal(t, "n1", flow.callback.Expected.Nonce)

	cookies := cookiesByName(w)
	assert.Equal(t, "access.jwt", cookies[auth.CookieAccess].Value)
	assert.Equal(t, "refresh.jwt", cookies[auth.CookieRefresh].Value)
	assert.True(t, cookies[auth.CookieRefresh].HttpOnly)
	require.Contains(t, cookies, auth.CookieUser)
	raw, _ := url.QueryUnescape(cookies[auth.CookieUser].Value)
	assert.Contains(t, raw, "googleusercontent")
	assert.Less(t, cookies[auth.CookieOAuthState].MaxAge, 0)
}

func TestGoogleCallbackRejected(t *testing.T) {
	flow := &stubFlow{outcome: oauth.Outcome{Final: oauth.StateRejected, Reason: oauth.ReasonUnauthorized}}
	r := authRouter(&stubPasswords{}, flow)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/google/callback?code=abc&state=s1", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "unauthorized", loc.Query().Get("error"))
	assert.Equal(t, oauth.ReasonUnauthorized.Message(), loc.Query().Get("message"))
	assert.Nil(t, flow.callback.Expected, "no state cookie means nothing to compare against")

	cookies := cookiesByName(w)
	assert.NotContains(t, cookies, auth.CookieAccess)
	assert.NotContains(t, cookies, auth.CookieRefresh)
}
