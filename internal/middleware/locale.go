package middleware

import (
	"context"
	"net/http"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/utils"
)

type ctxKey int

const localeKey ctxKey = 1

// Locale resolves the response locale from ?lang= or Accept-Language and
// stores it in the request context.
func Locale(supported []string, def string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := utils.DetermineLocale(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), supported, def)
			w.Header().Set("Content-Language", locale)
			ctx := context.WithValue(r.Context(), localeKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LocaleFromContext retrieves the locale stored by Locale, or def.
func LocaleFromContext(ctx context.Context, def string) string {
	if s, ok := ctx.Value(localeKey).(string); ok && s != "" {
		return s
	}
	return def
}
