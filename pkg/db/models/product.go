package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog entry a transfer line moves.
type Product struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index"`
	SKU       string    `gorm:"column:sku;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	Unit      string    `gorm:"column:unit;not null;default:'ea'"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
