package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a storage slot (bin, rack, staging area) inside a warehouse.
type Location struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	TenantID    uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index"`
	WarehouseID uuid.UUID  `gorm:"column:warehouse_id;type:uuid;not null;index"`
	ZoneID      *uuid.UUID `gorm:"column:zone_id;type:uuid"`
	Code        string     `gorm:"column:code;not null"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
