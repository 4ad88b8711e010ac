package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevel tracks on-hand and reserved quantity per (product, location, batch).
// Available quantity is derived as on_hand - reserved and never stored.
// Batch is the empty string when stock is not batch-tracked; keeping it non-null
// lets the (tenant, product, location, batch) unique index cover both cases.
type StockLevel struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TenantID    uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_stock_levels_key"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_stock_levels_key"`
	LocationID  uuid.UUID       `gorm:"column:location_id;type:uuid;not null;uniqueIndex:ux_stock_levels_key"`
	Batch       string          `gorm:"column:batch;not null;default:'';uniqueIndex:ux_stock_levels_key"`
	OnHandQty   decimal.Decimal `gorm:"column:on_hand_qty;type:numeric(18,3);not null;default:0"`
	ReservedQty decimal.Decimal `gorm:"column:reserved_qty;type:numeric(18,3);not null;default:0"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// AvailableQty is the quantity not yet held by a reservation.
func (s StockLevel) AvailableQty() decimal.Decimal {
	return s.OnHandQty.Sub(s.ReservedQty)
}
