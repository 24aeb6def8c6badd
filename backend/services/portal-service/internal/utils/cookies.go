// Auth cookie helpers for the login endpoint. The portal never reads these
// cookies back; it only hands the tokens issued by the auth service to the
// browser.

package utils

import (
	"net/http"
	"time"

	"github.com/closeauth/mono-repo/backend/shared/go-middleware"
	"github.com/closeauth/mono-repo/backend/shared/go-utils"
	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// SetAuthCookies writes the access and refresh cookies plus the response
// headers expected on token-bearing responses. Nothing is written if either
// token is empty.
func SetAuthCookies(
	w http.ResponseWriter,
	accessToken, refreshToken string,
	accessTTL, refreshTTL time.Duration,
	refreshPath string,
	sameSiteHighSecurity bool,
) {
	if accessToken == "" || refreshToken == "" {
		return
	}

	accessSameSite, refreshSameSite := sameSitePolicies(sameSiteHighSecurity)
	partitioned := !sameSiteHighSecurity
	utils.Logger.Debugf("[cookies] SetAuthCookies: partitioned=%t, refreshPath=%s", partitioned, refreshPath)

	http.SetCookie(w, authCookie(middleware.AccessTokenCookieName, accessToken, "/", accessTTL, accessSameSite, partitioned))
	http.SetCookie(w, authCookie(middleware.RefreshTokenCookieName, refreshToken, refreshPath, refreshTTL, refreshSameSite, partitioned))

	addSecurityHeaders(w)
}

// ClearAuthCookies expires both cookies.
func ClearAuthCookies(w http.ResponseWriter, refreshPath string, sameSiteHighSecurity bool) {
	accessSameSite, refreshSameSite := sameSitePolicies(sameSiteHighSecurity)
	partitioned := !sameSiteHighSecurity

	access := authCookie(middleware.AccessTokenCookieName, "", "/", 0, accessSameSite, partitioned)
	access.MaxAge = -1
	refresh := authCookie(middleware.RefreshTokenCookieName, "", refreshPath, 0, refreshSameSite, partitioned)
	refresh.MaxAge = -1

	http.SetCookie(w, access)
	http.SetCookie(w, refresh)
	addSecurityHeaders(w)
}

// AccessTokenTTL picks the cookie lifetime for an access token: the explicit
// expiresIn seconds when given, else the token's exp claim, else fallback.
// The token signature is not checked here; the auth service that issued it
// does that.
func AccessTokenTTL(expiresIn int64, accessToken string, now time.Time, fallback time.Duration) time.Duration {
	if expiresIn > 0 {
		return time.Duration(expiresIn) * time.Second
	}
	if accessToken == "" {
		return fallback
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		utils.Logger.WithError(err).Debug("[cookies] access token is not a parseable JWT")
		return fallback
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback
	}
	if ttl := exp.Time.Sub(now); ttl > 0 {
		return ttl
	}
	return fallback
}

func sameSitePolicies(highSecurity bool) (access, refresh http.SameSite) {
	if highSecurity {
		return http.SameSiteLaxMode, http.SameSiteStrictMode
	}
	return http.SameSiteNoneMode, http.SameSiteNoneMode
}

func authCookie(name, value, path string, ttl time.Duration, sameSite http.SameSite, partitioned bool) *http.Cookie {
	c := &http.Cookie{
		Name:        name,
		Value:       value,
		Path:        path,
		MaxAge:      int(ttl.Seconds()),
		SameSite:    sameSite,
		Secure:      true,
		HttpOnly:    true,
		Partitioned: partitioned,
	}
	if ttl > 0 {
		c.Expires = time.Now().Add(ttl).UTC()
	}
	return c
}

func addSecurityHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
	h.Set("Cache-Control", "no-store")
	h.Set("Pragma", "no-cache")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
}
