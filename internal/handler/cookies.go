package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ampvending/amp-backend/internal/auth"
	"github.com/ampvending/amp-backend/internal/config"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/gin-gonic/gin"
)

// oauthStateTTL bounds the time between /google and its callback.
const oauthStateTTL = 10 * time.Minute

// sessionCookies writes the session cookies with the configured attributes.
type sessionCookies struct {
	secure     bool
	domain     string
	sameSite   http.SameSite
	displayTTL time.Duration
}

func newSessionCookies(cfg *config.Config) sessionCookies {
	return sessionCookies{
		secure:     cfg.CookieSecure,
		domain:     cfg.CookieDomain,
		sameSite:   cfg.CookieSameSite,
		displayTTL: cfg.OAuthAccessTTL,
	}
}

// displayUser is the non-HTTP-only cookie the dashboard reads to render the
// signed-in admin. It never carries a token.
type displayUser struct {
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	Role      model.Role `json:"role"`
}

func (sc sessionCookies) set(c *gin.Context, name, value string, expiresAt time.Time, httpOnly bool) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetSameSite(sc.sameSite)
	c.SetCookie(name, value, maxAge, "/", sc.domain, sc.secure, httpOnly)
}

func (sc sessionCookies) clear(c *gin.Context, name string) {
	c.SetSameSite(sc.sameSite)
	c.SetCookie(name, "", -1, "/", sc.domain, sc.secure, true)
}

// setSession writes the access token and display cookies. The display cookie
// never outlives the access TTL, even when the password token does.
func (sc sessionCookies) setSession(c *gin.Context, view model.AdminView, token string, expiresAt time.Time) {
	sc.set(c, auth.CookieAccess, token, expiresAt, true)

	raw, err := json.Marshal(displayUser{Name: view.Name, Email: view.Email, AvatarURL: view.AvatarURL, Role: view.Role})
	if err != nil {
		return
	}
	displayExpiry := expiresAt
	if sc.displayTTL > 0 {
		if limit := time.Now().Add(sc.displayTTL); limit.Before(displayExpiry) {
			displayExpiry = limit
		}
	}
	sc.set(c, auth.CookieUser, string(raw), displayExpiry, false)
}

func (sc sessionCookies) clearSession(c *gin.Context) {
	sc.clear(c, auth.CookieAccess)
	sc.clear(c, auth.CookieRefresh)
	sc.clear(c, auth.CookieUser)
}
