package service

import (
	"context"
	"testing"
	"time"

	"github.com/ampvending/amp-backend/internal/auth"
	"github.com/ampvending/amp-backend/internal/config"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type authFixture struct {
	svc    *AuthService
	admins *memAdmins
	tokens *auth.TokenIssuer
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	passwords := auth.NewPasswordVerifier(4)
	hash, err := passwords.Hash("correct-horse")
	require.NoError(t, err)

	admins := newMemAdmins(
		&model.Admin{ID: "a1", Email: "ops@ampvending.com", Name: "Ops", Role: model.RoleAdmin, IsActive: true, PasswordHash: &hash},
		&model.Admin{ID: "a2", Email: "gone@ampvending.com", Name: "Gone", Role: model.RoleEditor, IsActive: false, PasswordHash: &hash},
		&model.Admin{ID: "a3", Email: "oauth@ampvending.com", Name: "OAuth", Role: model.RoleEditor, IsActive: true},
	)
	tokens, err := auth.NewTokenIssuer(testSecret, "amp-admin")
	require.NoError(t, err)

	cfg := &config.Config{PasswordSessionTTL: 7 * 24 * time.Hour, OAuthAccessTTL: time.Hour}
	return authFixture{
		svc:    NewAuthService(cfg, admins, passwords, tokens, nil, zerolog.Nop()),
		admins: admins,
		tokens: tokens,
	}
}

func TestLoginIssuesSessionToken(t *testing.T) {
	f := newAuthFixture(t)

	sess, err := f.svc.Login(context.Background(), "  OPS@ampvending.com ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "a1", sess.Admin.ID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), sess.ExpiresAt, time.Minute)

	claims, err := f.tokens.Verify(sess.Token, auth.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, "a1", claims.Subject)
	assert.Equal(t, model.RoleAdmin, claims.Identity().Role)
	assert.Equal(t, []string{"a1"}, f.admins.logins)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)

	cases := []struct {
		name, email, password string
	}{
		{"wrong password", "ops@ampvending.com", "nope-nope"},
		{"unknown email", "nobody@ampvending.com", "correct-horse"},
		{"inactive admin", "gone@ampvending.com", "correct-horse"},
		{"no password set", "oauth@ampvending.com", "correct-horse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sess, err := f.svc.Login(context.Background(), tc.email, tc.password)
			assert.Nil(t, sess)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Equal(t, ErrInvalidCredentials.Error(), err.Error())
		})
	}
	assert.Empty(t, f.admins.logins)
}

func TestLoginStoreFailureIsNotCredentialsError(t *testing.T) {
	f := newAuthFixture(t)
	f.admins.err = errStoreDown

	_, err := f.svc.Login(context.Background(), "ops@ampvending.com", "correct-horse")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginToleratesRecordLoginFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.admins.loginErr = errStoreDown

	sess, err := f.svc.Login(context.Background(), "ops@ampvending.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
}

func TestRefresh(t *testing.T) {
	f := newAuthFixture(t)
	issue := func(id auth.Identity, kind auth.TokenKind) string {
		tok, _, err := f.tokens.Issue(id, kind, time.Hour)
		require.NoError(t, err)
		return tok
	}
	active := auth.IdentityOf(f.admins.byID["a1"])

	t.Run("valid refresh token", func(t *testing.T) {
		sess, err := f.svc.Refresh(context.Background(), issue(active, auth.TokenKindRefresh))
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, time.Minute)
		_, err = f.tokens.Verify(sess.Token, auth.TokenKindAccess)
		assert.NoError(t, err)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := f.svc.Refresh(context.Background(), issue(active, auth.TokenKindAccess))
		assert.ErrorIs(t, err, ErrSessionExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := f.svc.Refresh(context.Background(), "not-a-jwt")
		assert.ErrorIs(t, err, ErrSessionExpired)
	})

	t.Run("deactivated admin", func(t *testing.T) {
		gone := auth.IdentityOf(f.admins.byID["a2"])
		_, err := f.svc.Refresh(context.Background(), issue(gone, auth.TokenKindRefresh))
		assert.ErrorIs(t, err, ErrSessionExpired)
	})

	t.Run("deleted admin", func(t *testing.T) {
		ghost := auth.Identity{ID: "zz", Email: "ghost@ampvending.com", Role: model.RoleAdmin}
		_, err := f.svc.Refresh(context.Background(), issue(ghost, auth.TokenKindRefresh))
		assert.ErrorIs(t, err, ErrSessionExpired)
	})
}
