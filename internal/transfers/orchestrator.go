package transfers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/stocklane/stocklane-backend/pkg/errors"
	"github.com/stocklane/stocklane-backend/pkg/logger"
)

// Orchestrator chains the individual workflow operations into one-shot flows
// for moves that do not need human pick/receive steps.
//
// Each step commits on its own. A failure mid-flow stops the run and leaves
// the transfer exactly where the last successful step put it; the error names
// the failed step and the transfer so the caller can resume or cancel through
// the regular workflow endpoints.
type Orchestrator interface {
	QuickTransfer(ctx context.Context, tenantID, userID uuid.UUID, input QuickTransferInput) (*TransferView, error)
	Replenish(ctx context.Context, tenantID, userID uuid.UUID, input ReplenishInput) (*TransferView, error)
}

type orchestrator struct {
	svc  Service
	logg *logger.Logger
}

// NewOrchestrator wires the quick-transfer orchestrator on top of the workflow service.
func NewOrchestrator(svc Service, logg *logger.Logger) (Orchestrator, error) {
	if svc == nil {
		return nil, fmt.Errorf("transfers: service is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("transfers: logger is required")
	}
	return &orchestrator{svc: svc, logg: logg}, nil
}

func (o *orchestrator) QuickTransfer(ctx context.Context, tenantID, userID uuid.UUID, input QuickTransferInput) (*TransferView, error) {
	create := CreateTransferInput{
		Type:              "internal",
		SourceWarehouseID: input.SourceWarehouseID,
		DestWarehouseID:   input.DestWarehouseID,
		ReasonCode:        input.ReasonCode,
		Lines:             input.Lines,
	}
	return o.execute(ctx, tenantID, userID, create)
}

func (o *orchestrator) Replenish(ctx context.Context, tenantID, userID uuid.UUID, input ReplenishInput) (*TransferView, error) {
	reason := "replenishment"
	create := CreateTransferInput{
		Type:              "replenishment",
		Priority:          input.Priority,
		SourceWarehouseID: input.SourceWarehouseID,
		DestWarehouseID:   input.DestWarehouseID,
		ReasonCode:        &reason,
		Lines:             input.Lines,
	}
	return o.execute(ctx, tenantID, userID, create)
}

func (o *orchestrator) execute(ctx context.Context, tenantID, userID uuid.UUID, create CreateTransferInput) (*TransferView, error) {
	if len(create.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}

	view, err := o.svc.Create(ctx, tenantID, userID, create)
	if err != nil {
		return nil, stepErr("create", uuid.Nil, "", err)
	}
	id := view.ID
	number := view.Number
	ctx = o.logg.WithTransferNumber(ctx, number)

	if view, err = o.svc.Submit(ctx, tenantID, userID, id); err != nil {
		return nil, stepErr("submit", id, number, err)
	}
	if view, err = o.svc.Release(ctx, tenantID, userID, id); err != nil {
		return nil, stepErr("release", id, number, err)
	}
	if view, err = o.svc.StartPicking(ctx, tenantID, userID, id); err != nil {
		return nil, stepErr("start_picking", id, number, err)
	}

	for _, line := range view.Lines {
		view, err = o.svc.PickLine(ctx, tenantID, userID, id, line.ID, PickLineInput{
			QtyPicked: line.RequestedQty,
		})
		if err != nil {
			return nil, stepErr("pick_line", id, number, err)
		}
	}

	if view, err = o.svc.CompletePicking(ctx, tenantID, userID, id); err != nil {
		return nil, stepErr("complete_picking", id, number, err)
	}
	if view, err = o.svc.MarkInTransit(ctx, tenantID, userID, id); err != nil {
		return nil, stepErr("mark_in_transit", id, number, err)
	}

	for _, line := range view.Lines {
		view, err = o.svc.ReceiveLine(ctx, tenantID, userID, id, line.ID, ReceiveLineInput{
			QtyReceived: line.PickedQty,
		})
		if err != nil {
			return nil, stepErr("receive_line", id, number, err)
		}
	}

	if view, err = o.svc.CompleteReceiving(ctx, tenantID, userID, id); err != nil {
		return nil, stepErr("complete_receiving", id, number, err)
	}

	o.logg.Info(ctx, "quick transfer completed")
	return view, nil
}

// stepErr wraps a step failure with enough detail to resume the transfer.
func stepErr(step string, id uuid.UUID, number string, err error) error {
	details := map[string]any{"step": step}
	if id != uuid.Nil {
		details["transfer_id"] = id.String()
		details["transfer_number"] = number
	}
	if typed := pkgerrors.As(err); typed != nil {
		merged := map[string]any{}
		if existing, ok := typed.Details().(map[string]any); ok {
			for k, v := range existing {
				merged[k] = v
			}
		}
		for k, v := range details {
			merged[k] = v
		}
		return typed.WithDetails(merged)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "quick transfer step "+step+" failed").
		WithDetails(details)
}
