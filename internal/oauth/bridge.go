package oauth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/ampvending/amp-backend/internal/auth"
	"github.com/ampvending/amp-backend/internal/metrics"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// State is a step of the authorization-code flow.
type State string

const (
	StateInit             State = "init"
	StateCodeReceived     State = "code_received"
	StateTokensExchanged  State = "tokens_exchanged"
	StateIdentityAsserted State = "identity_asserted"
	StateAuthorized       State = "authorized"
	StateRejected         State = "rejected"
)

// Reason is the externally visible rejection code sent back to the login page.
type Reason string

const (
	ReasonOAuthDenied  Reason = "oauth_denied"
	ReasonNoCode       Reason = "no_code"
	ReasonAuthFailed   Reason = "auth_failed"
	ReasonUnauthorized Reason = "unauthorized"
	ReasonInitFailed   Reason = "oauth_init_failed"
)

var reasonMessages = map[Reason]string{
	ReasonOAuthDenied:  "Google sign-in was cancelled or denied.",
	ReasonNoCode:       "Google did not return an authorization code.",
	ReasonAuthFailed:   "Google sign-in failed. Please try again.",
	ReasonUnauthorized: "This Google account is not authorized to access the admin panel.",
	ReasonInitFailed:   "Google sign-in is not available right now.",
}

// Message is the human-readable text for the reason.
func (r Reason) Message() string {
	if m, ok := reasonMessages[r]; ok {
		return m
	}
	return reasonMessages[ReasonAuthFailed]
}

// ErrInitFailed is returned by Begin when the flow cannot be started.
var ErrInitFailed = errors.New("oauth: sign-in flow could not be started")

const entropyBytes = 32

// AdminStore is the credential-store contract the bridge needs.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	RecordLogin(ctx context.Context, id string, avatarURL *string) error
}

// Issuer mints session tokens.
type Issuer interface {
	Issue(id auth.Identity, kind auth.TokenKind, ttl time.Duration) (string, time.Time, error)
}

// Token is a minted session token with its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Outcome is the result of running the callback through the state machine.
// Steps lists every state visited, ending with Final.
type Outcome struct {
	Steps   []State
	Final   State
	Reason  Reason
	Admin   *model.Admin
	Avatar  string
	Access  Token
	Refresh Token
}

// Authorized reports whether the flow ended in StateAuthorized.
func (o *Outcome) Authorized() bool {
	return o.Final == StateAuthorized
}

func (o *Outcome) step(s State) {
	o.Steps = append(o.Steps, s)
	o.Final = s
}

func (o *Outcome) reject(r Reason) {
	o.step(StateRejected)
	o.Reason = r
}

// Start is the material a handler needs to redirect to the provider.
type Start struct {
	URL      string
	State    string
	Nonce    string
	Verifier string
}

// Callback is what the provider sent back plus what was stored at Begin.
type Callback struct {
	Code     string
	Error    string
	State    string
	Expected *Start
}

// Bridge maps identities asserted by the provider onto provisioned admins.
// An asserted identity that is not an active admin never gets a session.
type Bridge struct {
	provider   Provider
	admins     AdminStore
	tokens     Issuer
	accessTTL  time.Duration
	refreshTTL time.Duration
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// NewBridge creates a bridge. A nil provider leaves the bridge disabled.
func NewBridge(provider Provider, admins AdminStore, tokens Issuer, accessTTL, refreshTTL time.Duration, m *metrics.Metrics, log zerolog.Logger) *Bridge {
	return &Bridge{
		provider:   provider,
		admins:     admins,
		tokens:     tokens,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		metrics:    m,
		log:        log.With().Str("component", "oauth_bridge").Logger(),
	}
}

// Enabled reports whether a provider is configured.
func (b *Bridge) Enabled() bool {
	return b != nil && b.provider != nil
}

// Begin creates fresh state, nonce and PKCE verifier and returns the provider URL.
func (b *Bridge) Begin() (*Start, error) {
	if !b.Enabled() {
		b.rejected(ReasonInitFailed, errors.New("provider not configured"))
		return nil, ErrInitFailed
	}
	state, err := randomToken()
	if err != nil {
		b.rejected(ReasonInitFailed, err)
		return nil, ErrInitFailed
	}
	nonce, err := randomToken()
	if err != nil {
		b.rejected(ReasonInitFailed, err)
		return nil, ErrInitFailed
	}
	verifier := oauth2.GenerateVerifier()

	return &Start{
		URL:      b.provider.AuthCodeURL(state, nonce, verifier),
		State:    state,
		Nonce:    nonce,
		Verifier: verifier,
	}, nil
}

// Complete drives Init → CodeReceived → TokensExchanged → IdentityAsserted →
// {Authorized, Rejected}.
func (b *Bridge) Complete(ctx context.Context, cb Callback) Outcome {
	var out Outcome
	out.step(StateInit)

	if !b.Enabled() {
		out.reject(ReasonInitFailed)
		b.rejected(out.Reason, errors.New("provider not configured"))
		return out
	}
	if strings.TrimSpace(cb.Error) != "" {
		out.reject(ReasonOAuthDenied)
		b.rejected(out.Reason, errors.New(cb.Error))
		return out
	}
	code := strings.TrimSpace(cb.Code)
	if code == "" {
		out.reject(ReasonNoCode)
		b.rejected(out.Reason, nil)
		return out
	}
	out.step(StateCodeReceived)

	if cb.Expected == nil || cb.Expected.State == "" ||
		subtle.ConstantTimeCompare([]byte(cb.State), []byte(cb.Expected.State)) != 1 {
		out.reject(ReasonAuthFailed)
		b.rejected(out.Reason, errors.New("state mismatch"))
		return out
	}

	ext, err := b.provider.Exchange(ctx, code, cb.Expected.Nonce, cb.Expected.Verifier)
	if err != nil {
		out.reject(ReasonAuthFailed)
		b.rejected(out.Reason, err)
		return out
	}
	out.step(StateTokensExchanged)

	email := strings.ToLower(strings.TrimSpace(ext.Email))
	if email == "" {
		out.reject(ReasonAuthFailed)
		b.rejected(out.Reason, errors.New("id_token carries no email"))
		return out
	}
	if !ext.EmailVerified {
		out.reject(ReasonUnauthorized)
		b.rejected(out.Reason, errors.New("email not verified by provider"))
		return out
	}

	admin, err := b.admins.GetByEmail(ctx, email)
	out.step(StateIdentityAsserted)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		out.reject(ReasonUnauthorized)
		b.rejected(out.Reason, errors.New("no admin provisioned for email"))
		return out
	case err != nil:
		out.reject(ReasonAuthFailed)
		b.rejected(out.Reason, err)
		return out
	case !admin.IsActive:
		out.reject(ReasonUnauthorized)
		b.rejected(out.Reason, errors.New("admin is inactive"))
		return out
	}

	id := auth.IdentityOf(admin)
	access, accessExp, err := b.tokens.Issue(id, auth.TokenKindAccess, b.accessTTL)
	if err != nil {
		out.reject(ReasonAuthFailed)
		b.rejected(out.Reason, err)
		return out
	}
	refresh, refreshExp, err := b.tokens.Issue(id, auth.TokenKindRefresh, b.refreshTTL)
	if err != nil {
		out.reject(ReasonAuthFailed)
		b.rejected(out.Reason, err)
		return out
	}

	var avatar *string
	if ext.Picture != "" {
		avatar = &ext.Picture
		out.Avatar = ext.Picture
	} else if admin.AvatarURL != nil {
		out.Avatar = *admin.AvatarURL
	}
	if err := b.admins.RecordLogin(ctx, admin.ID, avatar); err != nil {
		b.log.Warn().Err(err).Str("admin_id", admin.ID).Msg("Failed to record oauth login")
	}

	out.Admin = admin
	out.Access = Token{Value: access, ExpiresAt: accessExp}
	out.Refresh = Token{Value: refresh, ExpiresAt: refreshExp}
	out.step(StateAuthorized)

	b.metrics.ObserveLogin("google", metrics.LoginSuccess)
	b.log.Info().Str("admin_id", admin.ID).Msg("Admin signed in with Google")
	return out
}

func (b *Bridge) rejected(reason Reason, err error) {
	b.metrics.ObserveOAuthRejection(string(reason))
	b.metrics.ObserveLogin("google", metrics.LoginRejected)
	ev := b.log.Warn().Str("reason", string(reason))
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("Google sign-in rejected")
}

// EncodeStart serializes the per-flow secrets for the state cookie.
func EncodeStart(s *Start) (string, error) {
	raw, err := json.Marshal(struct {
		State    string `json:"s"`
		Nonce    string `json:"n"`
		Verifier string `json:"v"`
	}{s.State, s.Nonce, s.Verifier})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeStart reverses EncodeStart. An incomplete payload is an error.
func DecodeStart(encoded string) (*Start, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	var p struct {
		State    string `json:"s"`
		Nonce    string `json:"n"`
		Verifier string `json:"v"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	if p.State == "" || p.Nonce == "" || p.Verifier == "" {
		return nil, errors.New("incomplete oauth state")
	}
	return &Start{State: p.State, Nonce: p.Nonce, Verifier: p.Verifier}, nil
}

func randomToken() (string, error) {
	b := make([]byte, entropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
