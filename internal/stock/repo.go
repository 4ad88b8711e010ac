package stock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stocklane/stocklane-backend/internal/repo"
	"github.com/stocklane/stocklane-backend/pkg/db/models"
	pkgerrors "github.com/stocklane/stocklane-backend/pkg/errors"
)

// Key addresses one stock level record.
type Key struct {
	TenantID   uuid.UUID
	ProductID  uuid.UUID
	LocationID uuid.UUID
	Batch      string
}

// Repository owns stock level arithmetic and the append-only movement log.
//
// Every quantity mutation is a single conditional UPDATE so the availability
// check and the write happen atomically on the database; callers never do a
// read-then-write stock check. All mutations are expected to run on the
// transaction handle of the workflow operation that triggered them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, key Key) (*models.StockLevel, error)
	Reserve(ctx context.Context, key Key, qty decimal.Decimal) error
	ReleaseReservation(ctx context.Context, key Key, qty decimal.Decimal) error
	CommitOut(ctx context.Context, key Key, qty decimal.Decimal) error
	CommitIn(ctx context.Context, key Key, qty decimal.Decimal) error
	AppendMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovementsByTransfer(ctx context.Context, tenantID, transferID uuid.UUID) ([]models.StockMovement, error)
	ListLevels(ctx context.Context, tenantID, locationID uuid.UUID) ([]models.StockLevel, error)
}

type repository struct {
	base repo.Base
}

// NewRepository returns a stock repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: repo.NewBase(tx)}
}

func (r *repository) Find(ctx context.Context, key Key) (*models.StockLevel, error) {
	var level models.StockLevel
	err := r.keyed(ctx, key).First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// Reserve places a hold on available stock at the source key. The availability
// guard lives inside the UPDATE itself, so two concurrent reservations against
// the same key cannot both pass a stale check.
func (r *repository) Reserve(ctx context.Context, key Key, qty decimal.Decimal) error {
	if err := validateQty(qty); err != nil {
		return err
	}

	// Anchored on the column so sqlite applies numeric affinity to the bound
	// value; a bare expression comparison would fall back to text ordering.
	result := r.keyed(ctx, key).
		Model(&models.StockLevel{}).
		Where("on_hand_qty >= reserved_qty + CAST(? AS NUMERIC)", qty).
		Update("reserved_qty", gorm.Expr("reserved_qty + ?", qty))
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "reserve stock")
	}
	if result.RowsAffected == 0 {
		available := decimal.Zero
		level, err := r.Find(ctx, key)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock level")
		}
		if level != nil {
			available = level.AvailableQty()
		}
		return pkgerrors.Newf(pkgerrors.CodeConflict,
			"insufficient stock available at source location. Available: %s", available).
			WithDetails(map[string]any{
				"available": available.String(),
				"requested": qty.String(),
			})
	}
	return nil
}

// ReleaseReservation undoes a hold without touching on-hand (goods never left).
func (r *repository) ReleaseReservation(ctx context.Context, key Key, qty decimal.Decimal) error {
	if err := validateQty(qty); err != nil {
		return err
	}

	result := r.keyed(ctx, key).
		Model(&models.StockLevel{}).
		Where("reserved_qty >= ?", qty).
		Update("reserved_qty", gorm.Expr("reserved_qty - ?", qty))
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "release reservation")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.Newf(pkgerrors.CodeConflict,
			"reservation release of %s exceeds reserved quantity", qty)
	}
	return nil
}

// CommitOut spends a reservation as the goods physically leave the source key.
func (r *repository) CommitOut(ctx context.Context, key Key, qty decimal.Decimal) error {
	if err := validateQty(qty); err != nil {
		return err
	}

	result := r.keyed(ctx, key).
		Model(&models.StockLevel{}).
		Where("on_hand_qty >= ? AND reserved_qty >= ?", qty, qty).
		Updates(map[string]any{
			"on_hand_qty":  gorm.Expr("on_hand_qty - ?", qty),
			"reserved_qty": gorm.Expr("reserved_qty - ?", qty),
		})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "commit stock out")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.Newf(pkgerrors.CodeConflict,
			"stock level does not cover outbound commit of %s", qty)
	}
	return nil
}

// CommitIn increases on-hand at the destination key, creating the record with
// zero prior history when it does not exist yet.
func (r *repository) CommitIn(ctx context.Context, key Key, qty decimal.Decimal) error {
	if err := validateQty(qty); err != nil {
		return err
	}

	result := r.keyed(ctx, key).
		Model(&models.StockLevel{}).
		Update("on_hand_qty", gorm.Expr("on_hand_qty + ?", qty))
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "commit stock in")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	level := models.StockLevel{
		ID:          uuid.New(),
		TenantID:    key.TenantID,
		ProductID:   key.ProductID,
		LocationID:  key.LocationID,
		Batch:       key.Batch,
		OnHandQty:   qty,
		ReservedQty: decimal.Zero,
	}
	if err := r.base.DB(ctx).Create(&level).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock level")
	}
	return nil
}

// AppendMovement writes one audit row. Movements are write-only: nothing in
// this codebase updates or deletes them.
func (r *repository) AppendMovement(ctx context.Context, movement *models.StockMovement) error {
	if movement == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "movement is required")
	}
	if !movement.Direction.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid movement direction %q", movement.Direction)
	}
	if err := validateQty(movement.Qty); err != nil {
		return err
	}
	hasFrom := movement.FromLocationID != nil
	hasTo := movement.ToLocationID != nil
	if hasFrom == hasTo {
		return pkgerrors.New(pkgerrors.CodeValidation,
			"movement must carry exactly one of from/to location")
	}
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	if err := r.base.DB(ctx).Create(movement).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append stock movement")
	}
	return nil
}

func (r *repository) ListMovementsByTransfer(ctx context.Context, tenantID, transferID uuid.UUID) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.base.DB(ctx).
		Where("tenant_id = ? AND transfer_id = ?", tenantID, transferID).
		Order("created_at ASC").
		Find(&movements).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}
	return movements, nil
}

func (r *repository) ListLevels(ctx context.Context, tenantID, locationID uuid.UUID) ([]models.StockLevel, error) {
	query := r.base.DB(ctx).Where("tenant_id = ?", tenantID)
	if locationID != uuid.Nil {
		query = query.Where("location_id = ?", locationID)
	}
	var levels []models.StockLevel
	if err := query.Find(&levels).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock levels")
	}
	return levels, nil
}

func (r *repository) keyed(ctx context.Context, key Key) *gorm.DB {
	return r.base.DB(ctx).Where(
		"tenant_id = ? AND product_id = ? AND location_id = ? AND batch = ?",
		key.TenantID, key.ProductID, key.LocationID, key.Batch,
	)
}

func validateQty(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be positive, got %s", qty)
	}
	return nil
}
