package transfers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocklane/stocklane-backend/internal/repo"
	"github.com/stocklane/stocklane-backend/pkg/db"
	"github.com/stocklane/stocklane-backend/pkg/db/models"
	pkgerrors "github.com/stocklane/stocklane-backend/pkg/errors"
	"github.com/stocklane/stocklane-backend/pkg/pagination"
)

// Repository persists transfer headers and lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, transfer *models.Transfer) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Transfer, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*models.Transfer, error)
	FindLine(ctx context.Context, transferID, lineID uuid.UUID) (*models.TransferLine, error)
	SaveHeader(ctx context.Context, transfer *models.Transfer) error
	CreateLine(ctx context.Context, line *models.TransferLine) error
	SaveLine(ctx context.Context, line *models.TransferLine) error
	DeleteLine(ctx context.Context, transferID, lineID uuid.UUID) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Transfer, error)
}

type repository struct {
	base repo.Base
}

// NewRepository returns a transfer repository bound to the provided database.
func NewRepository(database *gorm.DB) Repository {
	return &repository{base: repo.NewBase(database)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, transfer *models.Transfer) error {
	if err := r.base.DB(ctx).Create(transfer).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "transfer number %s already exists", transfer.Number)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transfer")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Transfer, error) {
	var transfer models.Transfer
	err := r.base.DB(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&transfer).Error
	if err != nil {
		return nil, mapTransferErr(err)
	}
	return &transfer, nil
}

func (r *repository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*models.Transfer, error) {
	var transfer models.Transfer
	err := r.base.DB(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		Where("tenant_id = ? AND number = ?", tenantID, number).
		First(&transfer).Error
	if err != nil {
		return nil, mapTransferErr(err)
	}
	return &transfer, nil
}

func (r *repository) FindLine(ctx context.Context, transferID, lineID uuid.UUID) (*models.TransferLine, error) {
	var line models.TransferLine
	err := r.base.DB(ctx).
		Where("transfer_id = ? AND id = ?", transferID, lineID).
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transfer line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transfer line")
	}
	return &line, nil
}

// SaveHeader writes header columns only; lines are persisted through the
// line-level methods so aggregate recomputes never clobber concurrent rows.
func (r *repository) SaveHeader(ctx context.Context, transfer *models.Transfer) error {
	err := r.base.DB(ctx).
		Omit("Lines").
		Save(transfer).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save transfer")
	}
	return nil
}

func (r *repository) CreateLine(ctx context.Context, line *models.TransferLine) error {
	if err := r.base.DB(ctx).Create(line).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "line %d already exists on transfer", line.LineNo)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transfer line")
	}
	return nil
}

func (r *repository) SaveLine(ctx context.Context, line *models.TransferLine) error {
	if err := r.base.DB(ctx).Save(line).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save transfer line")
	}
	return nil
}

func (r *repository) DeleteLine(ctx context.Context, transferID, lineID uuid.UUID) error {
	result := r.base.DB(ctx).
		Where("transfer_id = ? AND id = ?", transferID, lineID).
		Delete(&models.TransferLine{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "delete transfer line")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "transfer line not found")
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	database := r.base.DB(ctx)
	if err := database.Where("transfer_id = ?", id).Delete(&models.TransferLine{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete transfer lines")
	}
	result := database.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.Transfer{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "delete transfer")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "transfer not found")
	}
	return nil
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Transfer, error) {
	query := r.base.DB(ctx).Where("tenant_id = ?", tenantID)

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.SourceWarehouseID != nil {
		query = query.Where("source_warehouse_id = ?", *filter.SourceWarehouseID)
	}
	if filter.DestWarehouseID != nil {
		query = query.Where("dest_warehouse_id = ?", *filter.DestWarehouseID)
	}
	if filter.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *filter.AssignedToID)
	}
	if filter.Number != nil {
		query = query.Where("number = ?", *filter.Number)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var items []models.Transfer
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transfers")
	}
	return items, nil
}

func mapTransferErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "transfer not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transfer")
}
