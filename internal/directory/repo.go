package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocklane/stocklane-backend/pkg/db/models"
	pkgerrors "github.com/stocklane/stocklane-backend/pkg/errors"
)

// Repository resolves warehouses, zones, locations and products for the
// transfer engine. All lookups are tenant-scoped.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindWarehouse(ctx context.Context, tenantID, id uuid.UUID) (*models.Warehouse, error)
	FindZone(ctx context.Context, tenantID, id uuid.UUID) (*models.Zone, error)
	FindLocation(ctx context.Context, tenantID, id uuid.UUID) (*models.Location, error)
	FindProduct(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
	ListWarehouses(ctx context.Context, tenantID uuid.UUID) ([]models.Warehouse, error)
	ListLocations(ctx context.Context, tenantID, warehouseID uuid.UUID) ([]models.Location, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a directory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindWarehouse(ctx context.Context, tenantID, id uuid.UUID) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&warehouse).Error
	if err != nil {
		return nil, mapLookupErr(err, "warehouse not found")
	}
	return &warehouse, nil
}

func (r *repository) FindZone(ctx context.Context, tenantID, id uuid.UUID) (*models.Zone, error) {
	var zone models.Zone
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&zone).Error
	if err != nil {
		return nil, mapLookupErr(err, "zone not found")
	}
	return &zone, nil
}

func (r *repository) FindLocation(ctx context.Context, tenantID, id uuid.UUID) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&location).Error
	if err != nil {
		return nil, mapLookupErr(err, "location not found")
	}
	return &location, nil
}

func (r *repository) FindProduct(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error
	if err != nil {
		return nil, mapLookupErr(err, "product not found")
	}
	return &product, nil
}

func (r *repository) ListWarehouses(ctx context.Context, tenantID uuid.UUID) ([]models.Warehouse, error) {
	var warehouses []models.Warehouse
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("code ASC").
		Find(&warehouses).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list warehouses")
	}
	return warehouses, nil
}

func (r *repository) ListLocations(ctx context.Context, tenantID, warehouseID uuid.UUID) ([]models.Location, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if warehouseID != uuid.Nil {
		query = query.Where("warehouse_id = ?", warehouseID)
	}
	var locations []models.Location
	if err := query.Order("code ASC").Find(&locations).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list locations")
	}
	return locations, nil
}

func mapLookupErr(err error, notFoundMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "directory lookup")
}
