package middleware

import (
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/maber00/pixelabril/internal/httpx"
	"github.com/maber00/pixelabril/internal/observability"
)

// RequestLogger stores a request-scoped logger on the context and emits one
// structured entry per completed request.
func RequestLogger(base *zap.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = observability.NoopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := base.With(
				zap.String("request_id", chiMid.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			if ip := clientIP(r); ip != "" {
				logger = logger.With(zap.String("remote_ip", ip))
			}
			r = r.WithContext(observability.WithLogger(r.Context(), logger))

			rw := NewResponseRecorder(w)
			defer func() {
				fields := []zap.Field{
					zap.Int("status", rw.Status()),
					zap.Duration("latency", time.Since(start)),
					zap.Int64("bytes", rw.BytesWritten()),
				}
				if l := rw.Header().Get("Content-Language"); l != "" {
					fields = append(fields, zap.String("lang", l))
				}
				switch {
				case rw.Status() >= http.StatusInternalServerError:
					logger.Error("request completed", fields...)
				case rw.Status() >= http.StatusBadRequest:
					logger.Warn("request completed", fields...)
				default:
					logger.Info("request completed", fields...)
				}
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

// Recovery captures panics, logs the stack trace, and answers 500. API routes
// get the JSON error envelope.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			ctx := r.Context()
			observability.FromContext(ctx).Error("panic recovered",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			if strings.HasPrefix(r.URL.Path, "/api/") {
				httpx.Fail(w, r, httpx.Internal("internal server error"))
				return
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	// Trust X-Forwarded-For set by Cloud Run (last IP is client)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		p := strings.Split(xff, ",")
		return strings.TrimSpace(p[len(p)-1])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return strings.TrimSpace(xrip)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
