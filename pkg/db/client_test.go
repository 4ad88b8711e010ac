package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stocklane/stocklane-backend/pkg/config"
)

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{}, nil)
	if err == nil {
		t.Fatal("expected error when DSN is missing")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "transfers_tenant_number_key"}
	if !IsUniqueViolation(pgErr) {
		t.Fatal("expected SQLSTATE 23505 detection")
	}
	if !IsUniqueViolation(fmt.Errorf("create transfer: %w", pgErr)) {
		t.Fatal("expected detection through wrapping")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign key violation should not match")
	}

	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: transfers.number")) {
		t.Fatal("expected sqlite constraint message detection")
	}
	if !IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "x"`)) {
		t.Fatal("expected message text fallback")
	}
	if IsUniqueViolation(errors.New("connection refused")) {
		t.Fatal("unrelated error should not match")
	}
	if IsUniqueViolation(nil) {
		t.Fatal("nil error should not match")
	}
}
