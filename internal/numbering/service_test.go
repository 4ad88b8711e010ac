package numbering

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stocklane/stocklane-backend/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:numbering_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.SequenceCounter{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestNextFormatsAndIncrements(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(4)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	tenantID := uuid.New()
	day := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	want := []string{
		"TRF-20260828-0001",
		"TRF-20260828-0002",
		"TRF-20260828-0003",
	}
	for i, expected := range want {
		number, err := svc.Next(ctx, db, tenantID, "TRF", day)
		if err != nil {
			t.Fatalf("next #%d: %v", i+1, err)
		}
		if number != expected {
			t.Fatalf("number #%d = %q, want %q", i+1, number, expected)
		}
	}
}

func TestNextScopesByTenantPrefixAndDay(t *testing.T) {
	db := newTestDB(t)
	svc, _ := NewService(4)
	ctx := context.Background()
	tenantA := uuid.New()
	tenantB := uuid.New()
	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	first, err := svc.Next(ctx, db, tenantA, "TRF", monday)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if first != "TRF-20260824-0001" {
		t.Fatalf("first = %q", first)
	}

	// Each of these varies one scope dimension, so all restart at 0001.
	cases := []struct {
		tenant uuid.UUID
		prefix string
		day    time.Time
		want   string
	}{
		{tenantB, "TRF", monday, "TRF-20260824-0001"},
		{tenantA, "PCK", monday, "PCK-20260824-0001"},
		{tenantA, "TRF", tuesday, "TRF-20260825-0001"},
	}
	for _, tc := range cases {
		got, err := svc.Next(ctx, db, tc.tenant, tc.prefix, tc.day)
		if err != nil {
			t.Fatalf("next(%s, %s): %v", tc.prefix, tc.day.Format("20060102"), err)
		}
		if got != tc.want {
			t.Fatalf("got %q, want %q", got, tc.want)
		}
	}

	second, err := svc.Next(ctx, db, tenantA, "TRF", monday)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if second != "TRF-20260824-0002" {
		t.Fatalf("original scope continued at %q, want 0002", second)
	}
}

func TestNextRejectsBadInputs(t *testing.T) {
	db := newTestDB(t)
	svc, _ := NewService(4)
	ctx := context.Background()

	if _, err := svc.Next(ctx, nil, uuid.New(), "TRF", time.Now()); err == nil {
		t.Fatal("expected error for nil transaction handle")
	}
	if _, err := svc.Next(ctx, db, uuid.New(), "", time.Now()); err == nil {
		t.Fatal("expected error for empty prefix")
	}
	if _, err := NewService(0); err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestNextWidthOverflowKeepsAllDigits(t *testing.T) {
	db := newTestDB(t)
	svc, _ := NewService(2)
	ctx := context.Background()
	tenantID := uuid.New()
	day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	var last string
	for i := 0; i < 101; i++ {
		number, err := svc.Next(ctx, db, tenantID, "TRF", day)
		if err != nil {
			t.Fatalf("next #%d: %v", i+1, err)
		}
		last = number
	}
	if last != "TRF-20260102-101" {
		t.Fatalf("sequence past padding width = %q, want TRF-20260102-101", last)
	}
}
