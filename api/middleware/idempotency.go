package middleware

import (
	"net/http"
	"time"

	"github.com/stocklane/stocklane-backend/api/responses"
	pkgerrors "github.com/stocklane/stocklane-backend/pkg/errors"
	"github.com/stocklane/stocklane-backend/pkg/redis"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"

	idempotencyTTL = 24 * time.Hour
)

// Idempotency guards mutating endpoints against double submission. When the
// client sends an Idempotency-Key header, the first request claims the key in
// redis for the tenant and any replay within the TTL is rejected with 409.
// Requests without the header pass through untouched, as do all reads.
func Idempotency(store redis.IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || !mutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			key := r.Header.Get(HeaderIdempotencyKey)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			scope := TenantID(r.Context()).String()
			claimed, err := store.SetNX(r.Context(), store.IdempotencyKey(scope, key), r.URL.Path, idempotencyTTL)
			if err != nil {
				responses.Error(w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency store unavailable"))
				return
			}
			if !claimed {
				responses.Error(w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key was already processed"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
