package auth

import (
	"net/http"
)

// Cookie names used by the admin session.
const (
	AccessTokenCookie  = "adminToken"
	RefreshTokenCookie = "adminRefreshToken"

	// The refresh cookie is scoped to the auth path prefix so it is not sent
	// on unrelated requests.
	refreshCookiePath = "/api/auth"
)

// CookieConfig holds cookie policy derived from the environment. Production
// serves over TLS: Secure + SameSite=Strict. Development uses Lax so the
// local frontend dev server can authenticate.
type CookieConfig struct {
	Production bool
}

func (c CookieConfig) sameSite() http.SameSite {
	if c.Production {
		return http.SameSiteStrictMode
	}
	return http.SameSiteLaxMode
}

// SetAccessTokenCookie places the access token in the site-wide httpOnly cookie.
func SetAccessTokenCookie(w http.ResponseWriter, token string, maxAge int, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   config.Production,
		SameSite: config.sameSite(),
	})
}

// SetRefreshTokenCookie places the refresh token in the path-scoped httpOnly cookie.
func SetRefreshTokenCookie(w http.ResponseWriter, token string, maxAge int, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    token,
		Path:     refreshCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   config.Production,
		SameSite: config.sameSite(),
	})
}

// ClearSessionCookies removes both cookies. Idempotent: clearing cookies that
// were never set is fine.
func ClearSessionCookies(w http.ResponseWriter, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Production,
		SameSite: config.sameSite(),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Production,
		SameSite: config.sameSite(),
	})
}

// GetAccessTokenCookie retrieves the access token from cookies
func GetAccessTokenCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(AccessTokenCookie)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// GetRefreshTokenCookie retrieves the refresh token from cookies
func GetRefreshTokenCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(RefreshTokenCookie)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
