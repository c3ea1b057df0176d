package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// GoogleIssuer is the discovery URL used when no issuer is configured.
const GoogleIssuer = "https://accounts.google.com"

// ExternalIdentity is what the identity provider asserts about the user.
type ExternalIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// Provider is the identity-provider side of the authorization-code flow.
type Provider interface {
	AuthCodeURL(state, nonce, verifier string) string
	Exchange(ctx context.Context, code, nonce, verifier string) (*ExternalIdentity, error)
}

// GoogleConfig configures a GoogleProvider.
type GoogleConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GoogleProvider talks to Google (or any OIDC issuer) through discovery.
type GoogleProvider struct {
	verifier *gooidc.IDTokenVerifier
	oauth2   oauth2.Config
}

// NewGoogleProvider runs OIDC discovery against the issuer and builds the
// id-token verifier for the configured client.
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig) (*GoogleProvider, error) {
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, errors.New("oauth client credentials are required")
	}
	issuer := cfg.IssuerURL
	if issuer == "" {
		issuer = GoogleIssuer
	}

	discovery, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}

	return &GoogleProvider{
		verifier: discovery.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		oauth2: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     discovery.Endpoint(),
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{gooidc.ScopeOpenID, "email", "profile"},
		},
	}, nil
}

// AuthCodeURL returns the consent-screen URL with state, nonce and PKCE challenge.
func (p *GoogleProvider) AuthCodeURL(state, nonce, verifier string) string {
	return p.oauth2.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
		oauth2.S256ChallengeOption(verifier),
	)
}

// Exchange trades the code for tokens, verifies the id token and its nonce,
// and returns the asserted identity.
func (p *GoogleProvider) Exchange(ctx context.Context, code, nonce, verifier string) (*ExternalIdentity, error) {
	tok, err := p.oauth2.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	rawIDToken, _ := tok.Extra("id_token").(string)
	if strings.TrimSpace(rawIDToken) == "" {
		return nil, errors.New("provider did not return an id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}
	if idToken.Nonce == "" || idToken.Nonce != nonce {
		return nil, errors.New("id_token nonce mismatch")
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode id_token claims: %w", err)
	}

	return &ExternalIdentity{
		Subject:       idToken.Subject,
		Email:         strings.TrimSpace(claims.Email),
		EmailVerified: claims.EmailVerified,
		Name:          strings.TrimSpace(claims.Name),
		Picture:       strings.TrimSpace(claims.Picture),
	}, nil
}
