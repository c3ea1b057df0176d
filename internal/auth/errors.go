package auth

import "errors"

var (
	// ErrUnauthenticated covers missing, malformed, mis-signed and expired tokens alike.
	ErrUnauthenticated = errors.New("auth: unauthenticated")
	// ErrMissingSecret is returned when the issuer is built without a signing secret.
	ErrMissingSecret = errors.New("auth: signing secret is not configured")
)
