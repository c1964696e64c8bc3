package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/streamhub/engagement-hub/internal/domain/shared"
	"github.com/streamhub/engagement-hub/internal/infrastructure/metrics"
	"github.com/streamhub/engagement-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// IDENTITY MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// ActorHeader carries the authenticated actor id from the gateway.
const ActorHeader = "X-Actor-ID"

type contextKey string

const actorKey contextKey = "actor_id"

// ActorMiddleware stores the canonical form of the X-Actor-ID header in the
// request context. A missing or blank header leaves the request anonymous.
// A malformed header is passed to reject; a nil reject answers 400 in plain text.
func ActorMiddleware(reject func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	if reject == nil {
		reject = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(ActorHeader)
			actor, err := shared.CanonicalOptionalID(raw)
			if err != nil {
				reject(w, r, shared.ErrInvalidActor)
				return
			}
			if actor != "" {
				r = r.WithContext(WithActor(r.Context(), actor))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithActor returns ctx carrying actorID.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey, actorID)
}

// CurrentActor returns the actor id, if the request is authenticated.
func CurrentActor(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(actorKey).(string)
	return id, ok && id != ""
}

// ══════════════════════════════════════════════════════════════════════════════
// LOGGING & METRICS MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// RequestLogger logs each request and records it in the HTTP metrics.
// The route label is the chi route pattern, never the raw path.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			requestID := middleware.GetReqID(r.Context())

			reqLog := log.WithRequestID(requestID)
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), reqLog)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			elapsed := time.Since(start)
			metrics.RecordHTTPRequest(r.Method, route, status, elapsed)

			fields := []logger.Field{
				logger.String("method", r.Method),
				logger.String("route", route),
				logger.Int("status", status),
				logger.Latency(elapsed),
				logger.String("ip", r.RemoteAddr),
			}
			if status >= http.StatusInternalServerError {
				reqLog.Warn("http request", fields...)
				return
			}
			reqLog.Debug("http request", fields...)
		})
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HEADER MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// NoCacheMiddleware prevents caching of personalised responses.
func NoCacheMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// SecurityHeadersMiddleware adds security-related headers.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// RequestSizeLimitMiddleware limits the size of request bodies.
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, `{"success":false,"error":{"code":"payload_too_large","message":"Request body too large"}}`,
					http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
