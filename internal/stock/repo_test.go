package stock

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stocklane/stocklane-backend/pkg/db/models"
	"github.com/stocklane/stocklane-backend/pkg/enums"
	pkgerrors "github.com/stocklane/stocklane-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:stock_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.StockLevel{}, &models.StockMovement{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedLevel(t *testing.T, db *gorm.DB, key Key, onHand, reserved string) {
	t.Helper()
	level := models.StockLevel{
		ID:          uuid.New(),
		TenantID:    key.TenantID,
		ProductID:   key.ProductID,
		LocationID:  key.LocationID,
		Batch:       key.Batch,
		OnHandQty:   decimal.RequireFromString(onHand),
		ReservedQty: decimal.RequireFromString(reserved),
	}
	if err := db.Create(&level).Error; err != nil {
		t.Fatalf("seed level: %v", err)
	}
}

func testKey() Key {
	return Key{
		TenantID:   uuid.New(),
		ProductID:  uuid.New(),
		LocationID: uuid.New(),
	}
}

func TestReserveHoldsAvailableStock(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	key := testKey()
	seedLevel(t, db, key, "100", "0")

	if err := repo.Reserve(ctx, key, decimal.RequireFromString("30")); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	level, err := repo.Find(ctx, key)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !level.ReservedQty.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("reserved = %s, want 30", level.ReservedQty)
	}
	if !level.OnHandQty.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("on hand changed to %s during reservation", level.OnHandQty)
	}
	if !level.AvailableQty().Equal(decimal.RequireFromString("70")) {
		t.Fatalf("available = %s, want 70", level.AvailableQty())
	}
}

func TestReserveRejectsInsufficientAvailability(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	key := testKey()
	seedLevel(t, db, key, "100", "80")

	err := repo.Reserve(ctx, key, decimal.RequireFromString("25"))
	if err == nil {
		t.Fatal("expected conflict for reservation beyond availability")
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("code = %v, want conflict", err)
	}
	if !strings.Contains(err.Error(), "Available: 20") {
		t.Fatalf("error %q should report the available quantity", err.Error())
	}

	level, _ := repo.Find(ctx, key)
	if !level.ReservedQty.Equal(decimal.RequireFromString("80")) {
		t.Fatalf("failed reservation mutated reserved to %s", level.ReservedQty)
	}
}

func TestReserveOnMissingLevelReportsZeroAvailable(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	err := repo.Reserve(context.Background(), testKey(), decimal.RequireFromString("1"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("code = %v, want conflict", err)
	}
	if !strings.Contains(err.Error(), "Available: 0") {
		t.Fatalf("error %q should report zero availability", err.Error())
	}
}

func TestReleaseReservation(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	key := testKey()
	seedLevel(t, db, key, "50", "20")

	if err := repo.ReleaseReservation(ctx, key, decimal.RequireFromString("20")); err != nil {
		t.Fatalf("release: %v", err)
	}
	level, _ := repo.Find(ctx, key)
	if !level.ReservedQty.IsZero() {
		t.Fatalf("reserved = %s after full release", level.ReservedQty)
	}

	err := repo.ReleaseReservation(ctx, key, decimal.RequireFromString("1"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("over-release should conflict, got %v", err)
	}
}

func TestCommitOutSpendsReservation(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	key := testKey()
	seedLevel(t, db, key, "100", "40")

	if err := repo.CommitOut(ctx, key, decimal.RequireFromString("40")); err != nil {
		t.Fatalf("commit out: %v", err)
	}
	level, _ := repo.Find(ctx, key)
	if !level.OnHandQty.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("on hand = %s, want 60", level.OnHandQty)
	}
	if !level.ReservedQty.IsZero() {
		t.Fatalf("reserved = %s, want 0", level.ReservedQty)
	}
}

func TestCommitOutWithoutReservationConflicts(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	key := testKey()
	seedLevel(t, db, key, "100", "5")

	err := repo.CommitOut(context.Background(), key, decimal.RequireFromString("10"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("commit beyond reservation should conflict, got %v", err)
	}
}

func TestCommitInCreatesAndIncrements(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	key := testKey()

	if err := repo.CommitIn(ctx, key, decimal.RequireFromString("15")); err != nil {
		t.Fatalf("commit in (create): %v", err)
	}
	if err := repo.CommitIn(ctx, key, decimal.RequireFromString("5")); err != nil {
		t.Fatalf("commit in (increment): %v", err)
	}

	level, err := repo.Find(ctx, key)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !level.OnHandQty.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("on hand = %s, want 20", level.OnHandQty)
	}
	if !level.ReservedQty.IsZero() {
		t.Fatalf("new destination level has reserved = %s", level.ReservedQty)
	}
}

func TestAppendMovementValidatesEndpoints(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	transferID := uuid.New()
	loc := uuid.New()

	base := func() *models.StockMovement {
		return &models.StockMovement{
			TenantID:       tenantID,
			ProductID:      uuid.New(),
			Qty:            decimal.RequireFromString("3"),
			Direction:      enums.MovementDirectionOutbound,
			TransferID:     transferID,
			TransferNumber: "TRF-20260828-0001",
		}
	}

	both := base()
	both.FromLocationID = &loc
	both.ToLocationID = &loc
	if err := repo.AppendMovement(ctx, both); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("movement with both endpoints should fail validation, got %v", err)
	}

	neither := base()
	if err := repo.AppendMovement(ctx, neither); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("movement with no endpoint should fail validation, got %v", err)
	}

	out := base()
	out.FromLocationID = &loc
	if err := repo.AppendMovement(ctx, out); err != nil {
		t.Fatalf("valid outbound movement: %v", err)
	}
	if out.ID == uuid.Nil {
		t.Fatal("movement ID was not assigned")
	}

	in := base()
	in.Direction = enums.MovementDirectionInbound
	in.ToLocationID = &loc
	if err := repo.AppendMovement(ctx, in); err != nil {
		t.Fatalf("valid inbound movement: %v", err)
	}

	movements, err := repo.ListMovementsByTransfer(ctx, tenantID, transferID)
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("movements = %d, want 2", len(movements))
	}
}

func TestQuantityMutationsRejectNonPositive(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	key := testKey()
	seedLevel(t, db, key, "10", "0")

	zero := decimal.Zero
	negative := decimal.RequireFromString("-1")

	for _, qty := range []decimal.Decimal{zero, negative} {
		if err := repo.Reserve(ctx, key, qty); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("reserve %s: got %v, want validation error", qty, err)
		}
		if err := repo.CommitIn(ctx, key, qty); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("commit in %s: got %v, want validation error", qty, err)
		}
	}
}
