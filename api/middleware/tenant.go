package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/stocklane/stocklane-backend/api/responses"
	pkgerrors "github.com/stocklane/stocklane-backend/pkg/errors"
)

const (
	HeaderTenantID = "X-Tenant-Id"
	HeaderUserID   = "X-User-Id"
)

type tenantIDKey struct{}
type userIDKey struct{}

// TenantContext requires a tenant header on every request and stashes the
// tenant and optional acting user on the context. Requests without a valid
// tenant never reach a handler.
func TenantContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := uuid.Parse(r.Header.Get(HeaderTenantID))
		if err != nil || tenantID == uuid.Nil {
			responses.Error(w, pkgerrors.New(pkgerrors.CodeUnauthorized, "tenant header missing or invalid"))
			return
		}
		ctx := context.WithValue(r.Context(), tenantIDKey{}, tenantID)

		if raw := r.Header.Get(HeaderUserID); raw != "" {
			if userID, err := uuid.Parse(raw); err == nil {
				ctx = context.WithValue(ctx, userIDKey{}, userID)
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantID returns the tenant bound to the request context.
func TenantID(ctx context.Context) uuid.UUID {
	if value, ok := ctx.Value(tenantIDKey{}).(uuid.UUID); ok {
		return value
	}
	return uuid.Nil
}

// UserID returns the acting user bound to the request context, or Nil.
func UserID(ctx context.Context) uuid.UUID {
	if value, ok := ctx.Value(userIDKey{}).(uuid.UUID); ok {
		return value
	}
	return uuid.Nil
}
