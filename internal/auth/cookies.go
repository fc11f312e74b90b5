package auth

import (
	"net/http"
	"time"
)

const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// SetTokenCookies writes both credentials as HttpOnly cookies.
func SetTokenCookies(w http.ResponseWriter, pair *TokenPair, secure bool) {
	setCookie(w, AccessCookieName, pair.AccessToken, pair.AccessExpiresAt, secure)
	setCookie(w, RefreshCookieName, pair.RefreshToken, pair.RefreshExpiresAt, secure)
}

// ClearTokenCookies expires both credential cookies.
func ClearTokenCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0).UTC(),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
			SameSite: sameSite(secure),
		})
	}
}

func setCookie(w http.ResponseWriter, name, value string, expires time.Time, secure bool) {
	if value == "" {
		return
	}
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite(secure),
	})
}

// SameSite=None is only honoured by browsers on secure cookies.
func sameSite(secure bool) http.SameSite {
	if secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
