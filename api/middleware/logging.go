package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/stocklane/stocklane-backend/pkg/logger"
)

// Logging emits one structured line per request with tenant, user and request
// id already attached to the context logger.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			if requestID := RequestIDFrom(ctx); requestID != "" {
				ctx = logg.WithRequestID(ctx, requestID)
			}
			if tenantID := TenantID(ctx); tenantID != uuid.Nil {
				ctx = logg.WithTenantID(ctx, tenantID.String())
			}
			if userID := UserID(ctx); userID != uuid.Nil {
				ctx = logg.WithUserID(ctx, userID.String())
			}

			wrapped := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			ctx = logg.WithFields(ctx, map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      wrapped.Status(),
				"bytes":       wrapped.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			logg.Info(ctx, "request completed")
		})
	}
}
