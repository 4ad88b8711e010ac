package transfers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklane/stocklane-backend/pkg/db/models"
	"github.com/stocklane/stocklane-backend/pkg/enums"
	"github.com/stocklane/stocklane-backend/pkg/pagination"
)

// LineInput describes one requested product move inside a transfer.
type LineInput struct {
	ProductID        uuid.UUID       `json:"product_id" validate:"required"`
	SourceLocationID uuid.UUID       `json:"source_location_id" validate:"required"`
	DestLocationID   uuid.UUID       `json:"dest_location_id" validate:"required"`
	Batch            string          `json:"batch"`
	RequestedQty     decimal.Decimal `json:"requested_qty" validate:"required"`
	Notes            *string         `json:"notes"`
}

// CreateTransferInput carries everything needed to open a draft transfer.
type CreateTransferInput struct {
	Type              string      `json:"type" validate:"required"`
	Priority          int         `json:"priority" validate:"gte=0,lte=100"`
	SourceWarehouseID uuid.UUID   `json:"source_warehouse_id" validate:"required"`
	DestWarehouseID   uuid.UUID   `json:"dest_warehouse_id" validate:"required"`
	SourceZoneID      *uuid.UUID  `json:"source_zone_id"`
	DestZoneID        *uuid.UUID  `json:"dest_zone_id"`
	ScheduledAt       *time.Time  `json:"scheduled_at"`
	RequiredBy        *time.Time  `json:"required_by"`
	ReasonCode        *string     `json:"reason_code"`
	ReasonNotes       *string     `json:"reason_notes"`
	SourceDocType     *string     `json:"source_doc_type"`
	SourceDocID       *uuid.UUID  `json:"source_doc_id"`
	SourceDocNumber   *string     `json:"source_doc_number"`
	Lines             []LineInput `json:"lines" validate:"dive"`
}

// UpdateLineInput patches an editable line. Nil fields stay untouched.
type UpdateLineInput struct {
	SourceLocationID *uuid.UUID       `json:"source_location_id"`
	DestLocationID   *uuid.UUID       `json:"dest_location_id"`
	Batch            *string          `json:"batch"`
	RequestedQty     *decimal.Decimal `json:"requested_qty"`
	Notes            *string          `json:"notes"`
}

// PickLineInput sets the cumulative picked quantity for a line.
type PickLineInput struct {
	QtyPicked decimal.Decimal `json:"qty_picked" validate:"required"`
}

// ReceiveLineInput sets the cumulative received quantity for a line.
type ReceiveLineInput struct {
	QtyReceived decimal.Decimal `json:"qty_received" validate:"required"`
}

// AssignInput hands the transfer to an operator.
type AssignInput struct {
	AssignedToID uuid.UUID `json:"assigned_to_id" validate:"required"`
}

// CancelInput carries the cancellation reason.
type CancelInput struct {
	Reason *string `json:"reason"`
}

// ListFilter narrows transfer listings.
type ListFilter struct {
	Status            *enums.TransferStatus
	Type              *enums.TransferType
	SourceWarehouseID *uuid.UUID
	DestWarehouseID   *uuid.UUID
	AssignedToID      *uuid.UUID
	Number            *string
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
}

// QuickTransferInput drives the one-shot move executed by the orchestrator.
type QuickTransferInput struct {
	SourceWarehouseID uuid.UUID   `json:"source_warehouse_id" validate:"required"`
	DestWarehouseID   uuid.UUID   `json:"dest_warehouse_id" validate:"required"`
	ReasonCode        *string     `json:"reason_code"`
	Lines             []LineInput `json:"lines" validate:"required,min=1,dive"`
}

// ReplenishInput drives a replenishment run from a bulk location to a pick face.
type ReplenishInput struct {
	SourceWarehouseID uuid.UUID   `json:"source_warehouse_id" validate:"required"`
	DestWarehouseID   uuid.UUID   `json:"dest_warehouse_id" validate:"required"`
	Priority          int         `json:"priority" validate:"gte=0,lte=100"`
	Lines             []LineInput `json:"lines" validate:"required,min=1,dive"`
}

// LineView is the outward shape of a transfer line.
type LineView struct {
	ID               uuid.UUID       `json:"id"`
	LineNo           int             `json:"line_no"`
	ProductID        uuid.UUID       `json:"product_id"`
	SKU              string          `json:"sku"`
	Batch            string          `json:"batch,omitempty"`
	SourceLocationID uuid.UUID       `json:"source_location_id"`
	DestLocationID   uuid.UUID       `json:"dest_location_id"`
	RequestedQty     decimal.Decimal `json:"requested_qty"`
	PickedQty        decimal.Decimal `json:"picked_qty"`
	ReceivedQty      decimal.Decimal `json:"received_qty"`
	VarianceQty      decimal.Decimal `json:"variance_qty"`
	Status           string          `json:"status"`
	Notes            *string         `json:"notes,omitempty"`
}

// TransferView is the outward shape of a transfer header with its lines.
type TransferView struct {
	ID                uuid.UUID       `json:"id"`
	Number            string          `json:"number"`
	Type              string          `json:"type"`
	Priority          int             `json:"priority"`
	Status            string          `json:"status"`
	SourceWarehouseID uuid.UUID       `json:"source_warehouse_id"`
	DestWarehouseID   uuid.UUID       `json:"dest_warehouse_id"`
	SourceZoneID      *uuid.UUID      `json:"source_zone_id,omitempty"`
	DestZoneID        *uuid.UUID      `json:"dest_zone_id,omitempty"`
	ScheduledAt       *time.Time      `json:"scheduled_at,omitempty"`
	RequiredBy        *time.Time      `json:"required_by,omitempty"`
	ReasonCode        *string         `json:"reason_code,omitempty"`
	ReasonNotes       *string         `json:"reason_notes,omitempty"`
	SourceDocType     *string         `json:"source_doc_type,omitempty"`
	SourceDocID       *uuid.UUID      `json:"source_doc_id,omitempty"`
	SourceDocNumber   *string         `json:"source_doc_number,omitempty"`
	AssignedToID      *uuid.UUID      `json:"assigned_to_id,omitempty"`
	PickedByID        *uuid.UUID      `json:"picked_by_id,omitempty"`
	PickedAt          *time.Time      `json:"picked_at,omitempty"`
	ReceivedByID      *uuid.UUID      `json:"received_by_id,omitempty"`
	ReceivedAt        *time.Time      `json:"received_at,omitempty"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
	TotalLines        int             `json:"total_lines"`
	TotalQuantity     decimal.Decimal `json:"total_quantity"`
	PickedLines       int             `json:"picked_lines"`
	ReceivedLines     int             `json:"received_lines"`
	Lines             []LineView      `json:"lines"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TransferPage is one cursor page of transfer headers.
type TransferPage struct {
	Items      []TransferView `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// MovementView is the outward shape of one stock movement audit row.
type MovementView struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	Batch          string          `json:"batch,omitempty"`
	Qty            decimal.Decimal `json:"qty"`
	Direction      string          `json:"direction"`
	FromLocationID *uuid.UUID      `json:"from_location_id,omitempty"`
	ToLocationID   *uuid.UUID      `json:"to_location_id,omitempty"`
	TransferNumber string          `json:"transfer_number"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toLineView(line models.TransferLine) LineView {
	return LineView{
		ID:               line.ID,
		LineNo:           line.LineNo,
		ProductID:        line.ProductID,
		SKU:              line.SKU,
		Batch:            line.Batch,
		SourceLocationID: line.SourceLocationID,
		DestLocationID:   line.DestLocationID,
		RequestedQty:     line.RequestedQty,
		PickedQty:        line.PickedQty,
		ReceivedQty:      line.ReceivedQty,
		VarianceQty:      line.VarianceQty(),
		Status:           line.Status.String(),
		Notes:            line.Notes,
	}
}

func toTransferView(transfer *models.Transfer) *TransferView {
	if transfer == nil {
		return nil
	}
	lines := make([]LineView, 0, len(transfer.Lines))
	for _, line := range transfer.Lines {
		lines = append(lines, toLineView(line))
	}
	return &TransferView{
		ID:                transfer.ID,
		Number:            transfer.Number,
		Type:              transfer.Type.String(),
		Priority:          transfer.Priority,
		Status:            transfer.Status.String(),
		SourceWarehouseID: transfer.SourceWarehouseID,
		DestWarehouseID:   transfer.DestWarehouseID,
		SourceZoneID:      transfer.SourceZoneID,
		DestZoneID:        transfer.DestZoneID,
		ScheduledAt:       transfer.ScheduledAt,
		RequiredBy:        transfer.RequiredBy,
		ReasonCode:        transfer.ReasonCode,
		ReasonNotes:       transfer.ReasonNotes,
		SourceDocType:     transfer.SourceDocType,
		SourceDocID:       transfer.SourceDocID,
		SourceDocNumber:   transfer.SourceDocNumber,
		AssignedToID:      transfer.AssignedToID,
		PickedByID:        transfer.PickedByID,
		PickedAt:          transfer.PickedAt,
		ReceivedByID:      transfer.ReceivedByID,
		ReceivedAt:        transfer.ReceivedAt,
		CancelledAt:       transfer.CancelledAt,
		TotalLines:        transfer.TotalLines,
		TotalQuantity:     transfer.TotalQuantity,
		PickedLines:       transfer.PickedLines,
		ReceivedLines:     transfer.ReceivedLines,
		Lines:             lines,
		CreatedAt:         transfer.CreatedAt,
		UpdatedAt:         transfer.UpdatedAt,
	}
}

func toMovementView(movement models.StockMovement) MovementView {
	return MovementView{
		ID:             movement.ID,
		ProductID:      movement.ProductID,
		Batch:          movement.Batch,
		Qty:            movement.Qty,
		Direction:      movement.Direction.String(),
		FromLocationID: movement.FromLocationID,
		ToLocationID:   movement.ToLocationID,
		TransferNumber: movement.TransferNumber,
		CreatedAt:      movement.CreatedAt,
	}
}

func nextCursorFor(items []models.Transfer, limit int) ([]models.Transfer, string) {
	if len(items) <= limit {
		return items, ""
	}
	trimmed := items[:limit]
	last := trimmed[len(trimmed)-1]
	return trimmed, pagination.EncodeCursor(pagination.Cursor{
		CreatedAt: last.CreatedAt,
		ID:        last.ID,
	})
}
