package auth

// Cookie names shared by the session gate and the auth handlers.
const (
	CookieAccess  = "amp-admin-token"
	CookieRefresh = "amp-admin-refresh"
	// CookieUser is a non-HTTP-only display cookie holding the admin's name, email and role.
	CookieUser = "amp-admin-user"
	// CookieOAuthState holds the state and nonce between /google and its callback.
	CookieOAuthState = "amp-oauth-state"
)
