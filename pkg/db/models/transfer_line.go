package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklane/stocklane-backend/pkg/enums"
)

// TransferLine is one product/quantity/route item inside a transfer.
// LineNo is 1-based and stable once assigned. Quantities are totals, not
// increments: PickedQty and ReceivedQty always hold the cumulative amount.
type TransferLine struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TransferID uuid.UUID `gorm:"column:transfer_id;type:uuid;not null;index"`
	LineNo     int       `gorm:"column:line_no;not null"`

	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	SKU       string    `gorm:"column:sku;not null"`
	Batch     string    `gorm:"column:batch;not null;default:''"`
	Serial    *string   `gorm:"column:serial"`

	SourceLocationID uuid.UUID `gorm:"column:source_location_id;type:uuid;not null"`
	DestLocationID   uuid.UUID `gorm:"column:dest_location_id;type:uuid;not null"`

	RequestedQty decimal.Decimal `gorm:"column:requested_qty;type:numeric(18,3);not null"`
	PickedQty    decimal.Decimal `gorm:"column:picked_qty;type:numeric(18,3);not null;default:0"`
	ReceivedQty  decimal.Decimal `gorm:"column:received_qty;type:numeric(18,3);not null;default:0"`

	Status       enums.TransferLineStatus `gorm:"column:status;not null"`
	PickedByID   *uuid.UUID               `gorm:"column:picked_by_id;type:uuid"`
	PickedAt     *time.Time               `gorm:"column:picked_at"`
	ReceivedByID *uuid.UUID               `gorm:"column:received_by_id;type:uuid"`
	ReceivedAt   *time.Time               `gorm:"column:received_at"`

	Notes *string `gorm:"column:notes"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// VarianceQty is the received-vs-picked discrepancy surfaced to callers.
func (l TransferLine) VarianceQty() decimal.Decimal {
	return l.ReceivedQty.Sub(l.PickedQty)
}
