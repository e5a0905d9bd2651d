package middleware

import (
	"context"
	"net/http"

	"github.com/maber00/pixelabril/internal/lang"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyLanguage ctxKey = "language"
)

// WithLanguage stores the language the response is rendered in.
func WithLanguage(ctx context.Context, l lang.Language) context.Context {
	return context.WithValue(ctx, ctxKeyLanguage, l)
}

// LanguageFromContext returns the request language, or the site default.
func LanguageFromContext(ctx context.Context) lang.Language {
	if l, ok := ctx.Value(ctxKeyLanguage).(lang.Language); ok && l.Valid() {
		return l
	}
	return lang.Default
}

// Lang returns the language of r.
func Lang(r *http.Request) lang.Language {
	return LanguageFromContext(r.Context())
}
