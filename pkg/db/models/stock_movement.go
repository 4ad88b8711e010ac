package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklane/stocklane-backend/pkg/enums"
)

// StockMovement is one append-only audit row per physical quantity change.
// Exactly one of FromLocationID/ToLocationID is set: outbound rows carry the
// source, inbound rows the destination. Rows are never updated or deleted.
type StockMovement struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	TenantID       uuid.UUID               `gorm:"column:tenant_id;type:uuid;not null;index"`
	ProductID      uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index"`
	Batch          string                  `gorm:"column:batch;not null;default:''"`
	Qty            decimal.Decimal         `gorm:"column:qty;type:numeric(18,3);not null"`
	Direction      enums.MovementDirection `gorm:"column:direction;not null"`
	FromLocationID *uuid.UUID              `gorm:"column:from_location_id;type:uuid"`
	ToLocationID   *uuid.UUID              `gorm:"column:to_location_id;type:uuid"`
	TransferID     uuid.UUID               `gorm:"column:transfer_id;type:uuid;not null;index"`
	TransferNumber string                  `gorm:"column:transfer_number;not null"`
	Note           *string                 `gorm:"column:note"`
	CreatedByID    *uuid.UUID              `gorm:"column:created_by_id;type:uuid"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
}
