package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeStore struct {
	keys map[string]string
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	return f.keys[key], nil
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := f.keys[key]; exists {
		return false, nil
	}
	f.keys[key] = "1"
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "sl:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.keys, key)
	}
	return nil
}

func idempotentRequest(t *testing.T, handler http.Handler, tenantID uuid.UUID, key string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/transfers", nil)
	req = req.WithContext(context.WithValue(req.Context(), tenantIDKey{}, tenantID))
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIdempotencyRejectsReplay(t *testing.T) {
	store := &fakeStore{keys: map[string]string{}}
	calls := 0
	handler := Idempotency(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))
	tenantID := uuid.New()

	first := idempotentRequest(t, handler, tenantID, "abc-123")
	if first.Code != http.StatusCreated {
		t.Fatalf("first request status = %d", first.Code)
	}

	replay := idempotentRequest(t, handler, tenantID, "abc-123")
	if replay.Code != http.StatusConflict {
		t.Fatalf("replay status = %d, want 409", replay.Code)
	}
	if !strings.Contains(replay.Body.String(), "IDEMPOTENCY_KEY_REUSED") {
		t.Fatalf("replay body = %s", replay.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler called %d times, want 1", calls)
	}
}

func TestIdempotencyScopedPerTenant(t *testing.T) {
	store := &fakeStore{keys: map[string]string{}}
	handler := Idempotency(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	if rec := idempotentRequest(t, handler, uuid.New(), "same-key"); rec.Code != http.StatusCreated {
		t.Fatalf("tenant A status = %d", rec.Code)
	}
	if rec := idempotentRequest(t, handler, uuid.New(), "same-key"); rec.Code != http.StatusCreated {
		t.Fatalf("tenant B with same key status = %d, key must be tenant scoped", rec.Code)
	}
}

func TestIdempotencySkipsWithoutKeyOrOnReads(t *testing.T) {
	store := &fakeStore{keys: map[string]string{}}
	handler := Idempotency(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if rec := idempotentRequest(t, handler, uuid.New(), ""); rec.Code != http.StatusOK {
		t.Fatalf("request without key status = %d", rec.Code)
	}
	if len(store.keys) != 0 {
		t.Fatal("no key should be claimed without the header")
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/transfers", nil)
	req.Header.Set(HeaderIdempotencyKey, "read-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	if len(store.keys) != 0 {
		t.Fatal("reads must not claim idempotency keys")
	}
}
