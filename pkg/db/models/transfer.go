package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklane/stocklane-backend/pkg/enums"
)

// Transfer is the header aggregate for a stock movement between locations.
// Total* fields are projections recomputed from the line set whenever lines
// change; they are never edited directly.
type Transfer struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_transfers_tenant_number"`
	Number   string    `gorm:"column:number;not null;uniqueIndex:ux_transfers_tenant_number"`

	Type     enums.TransferType `gorm:"column:type;not null"`
	Priority int                `gorm:"column:priority;not null;default:0"`

	SourceWarehouseID uuid.UUID  `gorm:"column:source_warehouse_id;type:uuid;not null;index"`
	DestWarehouseID   uuid.UUID  `gorm:"column:dest_warehouse_id;type:uuid;not null;index"`
	SourceZoneID      *uuid.UUID `gorm:"column:source_zone_id;type:uuid"`
	DestZoneID        *uuid.UUID `gorm:"column:dest_zone_id;type:uuid"`

	ScheduledAt *time.Time `gorm:"column:scheduled_at"`
	RequiredBy  *time.Time `gorm:"column:required_by"`

	ReasonCode      *string    `gorm:"column:reason_code"`
	ReasonNotes     *string    `gorm:"column:reason_notes"`
	SourceDocType   *string    `gorm:"column:source_doc_type"`
	SourceDocID     *uuid.UUID `gorm:"column:source_doc_id;type:uuid"`
	SourceDocNumber *string    `gorm:"column:source_doc_number"`

	Status       enums.TransferStatus `gorm:"column:status;not null;index"`
	AssignedToID *uuid.UUID           `gorm:"column:assigned_to_id;type:uuid"`
	PickedByID   *uuid.UUID           `gorm:"column:picked_by_id;type:uuid"`
	PickedAt     *time.Time           `gorm:"column:picked_at"`
	ReceivedByID *uuid.UUID           `gorm:"column:received_by_id;type:uuid"`
	ReceivedAt   *time.Time           `gorm:"column:received_at"`
	CancelledAt  *time.Time           `gorm:"column:cancelled_at"`

	TotalLines    int             `gorm:"column:total_lines;not null;default:0"`
	TotalQuantity decimal.Decimal `gorm:"column:total_quantity;type:numeric(18,3);not null;default:0"`
	PickedLines   int             `gorm:"column:picked_lines;not null;default:0"`
	ReceivedLines int             `gorm:"column:received_lines;not null;default:0"`

	Lines []TransferLine `gorm:"foreignKey:TransferID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
