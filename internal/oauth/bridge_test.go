package oauth

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/ampvending/amp-backend/internal/auth"
	"github.com/ampvending/amp-backend/internal/metrics"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	identity *ExternalIdentity
	err      error

	gotCode, gotNonce, gotVerifier string
}

func (p *stubProvider) AuthCodeURL(state, nonce, verifier string) string {
	return "https://idp.test/authorize?" + url.Values{"state": {state}, "nonce": {nonce}}.Encode()
}

func (p *stubProvider) Exchange(_ context.Context, code, nonce, verifier string) (*ExternalIdentity, error) {
	p.gotCode, p.gotNonce, p.gotVerifier = code, nonce, verifier
	return p.identity, p.err
}

type stubAdmins struct {
	admins   map[string]*model.Admin
	err      error
	logins   []string
	avatars  []*string
	loginErr error
}

func (s *stubAdmins) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	if s.err != nil {
		return nil, s.err
	}
	a, ok := s.admins[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (s *stubAdmins) RecordLogin(_ context.Context, id string, avatar *string) error {
	s.logins = append(s.logins, id)
	s.avatars = append(s.avatars, avatar)
	return s.loginErr
}

func newTestBridge(t *testing.T, p Provider, admins *stubAdmins) (*Bridge, *auth.TokenIssuer) {
	t.Helper()
	issuer, err := auth.NewTokenIssuer("0123456789abcdef0123456789abcdef", "amp-test")
	require.NoError(t, err)
	b := NewBridge(p, admins, issuer, time.Hour, 7*24*time.Hour, metrics.New(), zerolog.Nop())
	return b, issuer
}

func activeAdmin() *model.Admin {
	return &model.Admin{ID: "admin-1", Email: "ops@ampvending.com", Name: "Ops", Role: model.RoleAdmin, IsActive: true}
}

func verified(email string) *ExternalIdentity {
	return &ExternalIdentity{Subject: "g-1", Email: email, EmailVerified: true, Picture: "https://lh3.example/a.png"}
}

func begin(t *testing.T, b *Bridge) *Start {
	t.Helper()
	start, err := b.Begin()
	require.NoError(t, err)
	return start
}

func TestBridgeAuthorizesProvisionedAdmin(t *testing.T) {
	p := &stubProvider{identity: verified("OPS@ampvending.com")}
	admins := &stubAdmins{admins: map[string]*model.Admin{"ops@ampvending.com": activeAdmin()}}
	b, issuer := newTestBridge(t, p, admins)
	start := begin(t, b)

	out := b.Complete(t.Context(), Callback{Code: "abc", State: start.State, Expected: start})

	require.True(t, out.Authorized())
	assert.Equal(t, []State{StateInit, StateCodeReceived, StateTokensExchanged, StateIdentityAsserted, StateAuthorized}, out.Steps)
	assert.Empty(t, out.Reason)
	assert.Equal(t, "abc", p.gotCode)
	assert.Equal(t, start.Nonce, p.gotNonce)
	assert.Equal(t, start.Verifier, p.gotVerifier)

	claims, err := issuer.Verify(out.Access.Value, auth.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	_, err = issuer.Verify(out.Refresh.Value, auth.TokenKindRefresh)
	require.NoError(t, err)
	assert.True(t, out.Refresh.ExpiresAt.After(out.Access.ExpiresAt))

	require.Equal(t, []string{"admin-1"}, admins.logins)
	require.NotNil(t, admins.avatars[0])
	assert.Equal(t, "https://lh3.example/a.png", *admins.avatars[0])
}

func TestBridgeRejections(t *testing.T) {
	inactive := activeAdmin()
	inactive.IsActive = false

	cases := []struct {
		name     string
		provider *stubProvider
		admins   *stubAdmins
		cb       func(s *Start) Callback
		reason   Reason
		steps    int
	}{
		{
			name:     "provider error",
			provider: &stubProvider{},
			admins:   &stubAdmins{},
			cb:       func(s *Start) Callback { return Callback{Error: "access_denied", State: s.State, Expected: s} },
			reason:   ReasonOAuthDenied,
			steps:    2,
		},
		{
			name:     "missing code",
			provider: &stubProvider{},
			admins:   &stubAdmins{},
			cb:       func(s *Start) Callback { return Callback{State: s.State, Expected: s} },
			reason:   ReasonNoCode,
			steps:    2,
		},
		{
			name:     "state mismatch",
			provider: &stubProvider{identity: verified("ops@ampvending.com")},
			admins:   &stubAdmins{admins: map[string]*model.Admin{"ops@ampvending.com": activeAdmin()}},
			cb:       func(s *Start) Callback { return Callback{Code: "abc", State: "forged", Expected: s} },
			reason:   ReasonAuthFailed,
			steps:    3,
		},
		{
			name:     "missing state cookie",
			provider: &stubProvider{identity: verified("ops@ampvending.com")},
			admins:   &stubAdmins{},
			cb:       func(s *Start) Callback { return Callback{Code: "abc", State: s.State} },
			reason:   ReasonAuthFailed,
			steps:    3,
		},
		{
			name:     "exchange failure",
			provider: &stubProvider{err: errors.New("invalid_grant")},
			admins:   &stubAdmins{},
			cb:       func(s *Start) Callback { return Callback{Code: "abc", State: s.State, Expected: s} },
			reason:   ReasonAuthFailed,
			steps:    3,
		},
		{
			name:     "unknown email",
			provider: &stubProvider{identity: verified("stranger@gmail.com")},
			admins:   &stubAdmins{admins: map[string]*model.Admin{"ops@ampvending.com": activeAdmin()}},
			cb:       func(s *Start) Callback { return Callback{Code: "abc", State: s.State, Expected: s} },
			reason:   ReasonUnauthorized,
			steps:    5,
		},
		{
			name:     "inactive admin",
			provider: &stubProvider{identity: verified("ops@ampvending.com")},
			admins:   &stubAdmins{admins: map[string]*model.Admin{"ops@ampvending.com": inactive}},
			cb:       func(s *Start) Callback { return Callback{Code: "abc", State: s.State, Expected: s} },
			reason:   ReasonUnauthorized,
			steps:    5,
		},
		{
			name:     "unverified email",
			provider: &stubProvider{identity: &ExternalIdentity{Email: "ops@ampvending.com"}},
			admins:   &stubAdmins{admins: map[string]*model.Admin{"ops@ampvending.com": activeAdmin()}},
			cb:       func(s *Start) Callback { return Callback{Code: "abc", State: s.State, Expected: s} },
			reason:   ReasonUnauthorized,
			steps:    4,
		},
		{
			name:     "store unavailable",
			provider: &stubProvider{identity: verified("ops@ampvending.com")},
			admins:   &stubAdmins{err: errors.New("connection refused")},
			cb:       func(s *Start) Callback { return Callback{Code: "abc", State: s.State, Expected: s} },
			reason:   ReasonAuthFailed,
			steps:    5,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, _ := newTestBridge(t, tc.provider, tc.admins)
			start := begin(t, b)

			out := b.Complete(t.Context(), tc.cb(start))

			assert.False(t, out.Authorized())
			assert.Equal(t, StateRejected, out.Final)
			assert.Equal(t, tc.reason, out.Reason)
			assert.Len(t, out.Steps, tc.steps)
			assert.Empty(t, out.Access.Value)
			assert.Empty(t, out.Refresh.Value)
			assert.Nil(t, out.Admin)
			assert.Empty(t, tc.admins.logins)
		})
	}
}

func TestBridgeToleratesRecordLoginFailure(t *testing.T) {
	p := &stubProvider{identity: verified("ops@ampvending.com")}
	admins := &stubAdmins{
		admins:   map[string]*model.Admin{"ops@ampvending.com": activeAdmin()},
		loginErr: errors.New("timeout"),
	}
	b, _ := newTestBridge(t, p, admins)
	start := begin(t, b)

	out := b.Complete(t.Context(), Callback{Code: "abc", State: start.State, Expected: start})
	assert.True(t, out.Authorized())
}

func TestBridgeDisabled(t *testing.T) {
	b, _ := newTestBridge(t, nil, &stubAdmins{})
	assert.False(t, b.Enabled())

	_, err := b.Begin()
	assert.ErrorIs(t, err, ErrInitFailed)

	out := b.Complete(t.Context(), Callback{Code: "abc"})
	assert.Equal(t, ReasonInitFailed, out.Reason)
}

func TestBeginProducesFreshSecrets(t *testing.T) {
	b, _ := newTestBridge(t, &stubProvider{}, &stubAdmins{})
	first := begin(t, b)
	second := begin(t, b)

	assert.NotEqual(t, first.State, second.State)
	assert.NotEqual(t, first.Nonce, second.Nonce)
	assert.NotEqual(t, first.Verifier, second.Verifier)
	assert.Contains(t, first.URL, url.QueryEscape(first.State))
}

func TestStartCookieRoundTrip(t *testing.T) {
	start := &Start{State: "s", Nonce: "n", Verifier: "v", URL: "ignored"}
	encoded, err := EncodeStart(start)
	require.NoError(t, err)

	decoded, err := DecodeStart(encoded)
	require.NoError(t, err)
	assert.Equal(t, &Start{State: "s", Nonce: "n", Verifier: "v"}, decoded)

	_, err = DecodeStart("%%%")
	assert.Error(t, err)
	partial, _ := EncodeStart(&Start{State: "s"})
	_, err = DecodeStart(partial)
	assert.Error(t, err)
}

func TestReasonMessages(t *testing.T) {
	for _, r := range []Reason{ReasonOAuthDenied, ReasonNoCode, ReasonAuthFailed, ReasonUnauthorized, ReasonInitFailed} {
		assert.NotEmpty(t, r.Message(), r)
	}
	assert.Equal(t, ReasonAuthFailed.Message(), Reason("bogus").Message())
}
