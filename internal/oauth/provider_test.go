package oauth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientID = "amp-admin-test"

// fakeIssuer is a minimal OIDC issuer: discovery, JWKS and a token endpoint
// that returns an RS256 id_token carrying whatever claims were queued.
type fakeIssuer struct {
	server *httptest.Server
	key    *rsa.PrivateKey

	mu     sync.Mutex
	claims jwt.MapClaims
	form   url.Values
}

func newFakeIssuer(t *testing.T) *fakeIssuer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	f := &fakeIssuer{key: key}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                f.server.URL,
			"authorization_endpoint":                f.server.URL + "/authorize",
			"token_endpoint":                        f.server.URL + "/token",
			"jwks_uri":                              f.server.URL + "/keys",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("GET /keys", func(w http.ResponseWriter, r *http.Request) {
		pub := &f.key.PublicKey
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]any{{
				"kty": "RSA",
				"kid": "test-key",
				"alg": "RS256",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			}},
		})
	})
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.FormValue("code") == "" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		if r.FormValue("code") == "bad-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}

		f.mu.Lock()
		f.form = r.PostForm
		claims := jwt.MapClaims{
			"iss": f.server.URL,
			"aud": testClientID,
			"sub": "google-123",
			"iat": time.Now().Unix(),
			"exp": time.Now().Add(5 * time.Minute).Unix(),
		}
		for k, v := range f.claims {
			claims[k] = v
		}
		f.mu.Unlock()

		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
		tok.Header["kid"] = "test-key"
		signed, err := tok.SignedString(f.key)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "google-access",
			"token_type":   "Bearer",
			"expires_in":   300,
			"id_token":     signed,
		})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeIssuer) queue(claims jwt.MapClaims) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claims = claims
}

func newTestGoogleProvider(t *testing.T, f *fakeIssuer) *GoogleProvider {
	t.Helper()
	p, err := NewGoogleProvider(t.Context(), GoogleConfig{
		IssuerURL:    f.server.URL,
		ClientID:     testClientID,
		ClientSecret: "shh",
		RedirectURL:  "http://localhost:8080/api/v1/auth/google/callback",
	})
	require.NoError(t, err)
	return p
}

func TestGoogleProviderAuthCodeURL(t *testing.T) {
	p := newTestGoogleProvider(t, newFakeIssuer(t))

	raw := p.AuthCodeURL("state-1", "nonce-1", "verifier-1")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "/authorize", u.Path)
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "nonce-1", q.Get("nonce"))
	assert.Equal(t, testClientID, q.Get("client_id"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Contains(t, q.Get("scope"), "email")
}

func TestGoogleProviderExchange(t *testing.T) {
	f := newFakeIssuer(t)
	p := newTestGoogleProvider(t, f)
	f.queue(jwt.MapClaims{
		"nonce":          "nonce-1",
		"email":          "Ops@AMPVending.com",
		"email_verified": true,
		"name":           "Ops",
		"picture":        "https://lh3.example/avatar.png",
	})

	ext, err := p.Exchange(t.Context(), "good-code", "nonce-1", "verifier-1")
	require.NoError(t, err)

	assert.Equal(t, "google-123", ext.Subject)
	assert.Equal(t, "Ops@AMPVending.com", ext.Email)
	assert.True(t, ext.EmailVerified)
	assert.Equal(t, "https://lh3.example/avatar.png", ext.Picture)
	assert.Equal(t, "verifier-1", f.form.Get("code_verifier"))
}

func TestGoogleProviderExchangeRejectsNonceMismatch(t *testing.T) {
	f := newFakeIssuer(t)
	p := newTestGoogleProvider(t, f)
	f.queue(jwt.MapClaims{"nonce": "someone-else", "email": "ops@ampvending.com"})

	_, err := p.Exchange(t.Context(), "good-code", "nonce-1", "verifier-1")
	assert.Error(t, err)
}

func TestGoogleProviderExchangeRejectsBadCode(t *testing.T) {
	p := newTestGoogleProvider(t, newFakeIssuer(t))

	_, err := p.Exchange(t.Context(), "bad-code", "nonce-1", "verifier-1")
	assert.Error(t, err)
}

func TestNewGoogleProviderRequiresCredentials(t *testing.T) {
	_, err := NewGoogleProvider(t.Context(), GoogleConfig{IssuerURL: "http://127.0.0.1:0"})
	assert.Error(t, err)
}
