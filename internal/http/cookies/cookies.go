// Package cookies выставляет и стирает cookie сессий.
package cookies

import (
	"net/http"
	"time"
)

// Options общие атрибуты cookie сессий.
type Options struct {
	Secure bool
	Domain string
}

// Set выставляет HttpOnly cookie с токеном до момента expiresAt.
func (o Options) Set(w http.ResponseWriter, name, value string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   o.Domain,
		Expires:  expiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear стирает cookie с теми же атрибутами, с которыми она выставлялась.
func (o Options) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   o.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
