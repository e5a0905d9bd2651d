package middleware

import (
	"context"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/maber00/pixelabril/internal/detect"
	"github.com/maber00/pixelabril/internal/lang"
	"github.com/maber00/pixelabril/internal/observability"
	"github.com/maber00/pixelabril/internal/preference"
)

// Language headers stamped on every page response.
const (
	HeaderRedirectCount    = "X-Redirect-Count"
	HeaderDetectedLanguage = "X-Detected-Language"
	HeaderLanguagePath     = "X-Language-Path"
	HeaderBaseLanguage     = "X-Base-Language"
	HeaderLanguageRegion   = "X-Language-Region"
)

// DefaultMaxRedirects is the number of detection redirects tolerated in one
// navigation chain.
const DefaultMaxRedirects = 2

// LanguageOptions configures the Language middleware.
type LanguageOptions struct {
	Detector     *detect.Detector
	Preferences  preference.Provider
	MaxRedirects int
}

// Language resolves the response language from the URL prefix and, on a
// first visit to "/", redirects to the detected language's root with a 301.
// Static files and /api/ routes pass through untouched.
func Language(opts LanguageOptions) func(http.Handler) http.Handler {
	maxRedirects := opts.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}
	if opts.Preferences == nil {
		opts.Preferences = preference.CookieProvider{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if bypassLanguage(path) {
				next.ServeHTTP(w, r)
				return
			}

			current := lang.FromPath(path)
			count := redirectCount(r)
			store := opts.Preferences.Store(w, r)
			ctx := preference.WithStore(r.Context(), store)
			ctx = WithLanguage(ctx, current)

			w.Header().Add("Vary", "Accept-Language, Cookie")

			if path == "/" && count <= maxRedirects && opts.Detector != nil && !hasPreference(ctx, r, store) {
				detected := safeDetect(ctx, opts.Detector, store, detect.Input{
					IP:             clientIP(r),
					AcceptLanguage: r.Header.Get("Accept-Language"),
				})
				if !detected.IsDefault() {
					observability.FromContext(ctx).Info("redirecting to detected language",
						zap.String("lang", detected.String()),
						zap.Int("redirect_count", count+1),
					)
					setLanguageHeaders(w.Header(), detected, count+1)
					http.Redirect(w, r.WithContext(ctx), detected.Root(), http.StatusMovedPermanently)
					return
				}
			}

			setLanguageHeaders(w.Header(), current, count)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bypassLanguage reports whether path is a static file or API route.
func bypassLanguage(path string) bool {
	return strings.Contains(path, ".") || strings.HasPrefix(path, "/api/")
}

func redirectCount(r *http.Request) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.Header.Get(HeaderRedirectCount)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// hasPreference reports whether the visitor made an explicit choice. The
// preference cookie counts whatever its value is.
func hasPreference(ctx context.Context, r *http.Request, store *preference.Store) bool {
	if preference.HasPreferenceCookie(r) {
		return true
	}
	_, ok := store.Preference(ctx)
	return ok
}

// safeDetect runs detection, treating a panic as the default language.
func safeDetect(ctx context.Context, d *detect.Detector, store *preference.Store, in detect.Input) (l lang.Language) {
	defer func() {
		if rec := recover(); rec != nil {
			observability.FromContext(ctx).Error("language detection panicked",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			l = lang.Default
		}
	}()
	l, src := d.Detect(ctx, store, in)
	observability.FromContext(ctx).Debug("language detected",
		zap.String("lang", l.String()),
		zap.String("source", string(src)),
	)
	return l
}

func setLanguageHeaders(h http.Header, l lang.Language, count int) {
	h.Set("Content-Language", l.String())
	h.Set(HeaderDetectedLanguage, l.String())
	h.Set(HeaderLanguagePath, l.Root())
	h.Set(HeaderBaseLanguage, lang.Default.String())
	h.Set(HeaderLanguageRegion, l.Region())
	h.Set(HeaderRedirectCount, strconv.Itoa(count))
}
