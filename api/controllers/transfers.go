package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/stocklane/stocklane-backend/api/middleware"
	"github.com/stocklane/stocklane-backend/api/responses"
	"github.com/stocklane/stocklane-backend/api/validators"
	"github.com/stocklane/stocklane-backend/internal/transfers"
	"github.com/stocklane/stocklane-backend/pkg/enums"
)

// TransfersController maps the HTTP surface onto the transfer workflow service.
type TransfersController struct {
	svc  transfers.Service
	orch transfers.Orchestrator
}

// NewTransfersController wires the transfer endpoints.
func NewTransfersController(svc transfers.Service, orch transfers.Orchestrator) *TransfersController {
	return &TransfersController{svc: svc, orch: orch}
}

func (c *TransfersController) Create(w http.ResponseWriter, r *http.Request) {
	var input transfers.CreateTransferInput
	if err := validators.DecodeAndValidate(r, &input); err != nil {
		responses.Error(w, err)
		return
	}
	view, err := c.svc.Create(r.Context(), middleware.TenantID(r.Context()), middleware.UserID(r.Context()), input)
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusCreated, view)
}

func (c *TransfersController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := validators.PathUUID(r, "transferID")
	if err != nil {
		responses.Error(w, err)
		return
	}
	view, err := c.svc.Get(r.Context(), middleware.TenantID(r.Context()), id)
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusOK, view)
}

func (c *TransfersController) List(w http.ResponseWriter, r *http.Request) {
	params, err := validators.Pagination(r)
	if err != nil {
		responses.Error(w, err)
		return
	}

	filter := transfers.ListFilter{Number: validators.QueryString(r, "number")}
	if raw := validators.QueryString(r, "status"); raw != nil {
		status, err := enums.ParseTransferStatus(*raw)
		if err != nil {
			responses.ValidationError(w, map[string]string{"status": err.Error()})
			return
		}
		filter.Status = &status
	}
	if raw := validators.QueryString(r, "type"); raw != nil {
		transferType, err := enums.ParseTransferType(*raw)
		if err != nil {
			responses.ValidationError(w, map[string]string{"type": err.Error()})
			return
		}
		filter.Type = &transferType
	}
	for name, target := range map[string]**uuid.UUID{
		"source_warehouse_id": &filter.SourceWarehouseID,
		"dest_warehouse_id":   &filter.DestWarehouseID,
		"assigned_to_id":      &filter.AssignedToID,
	} {
		value, err := validators.QueryUUID(r, name)
		if err != nil {
			responses.Error(w, err)
			return
		}
		*target = value
	}
	for name, target := range map[string]**time.Time{
		"created_from": &filter.CreatedFrom,
		"created_to":   &filter.CreatedTo,
	} {
		raw := validators.QueryString(r, name)
		if raw == nil {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, *raw)
		if err != nil {
			responses.ValidationError(w, map[string]string{name: "must be an RFC 3339 timestamp"})
			return
		}
		*target = &parsed
	}

	page, err := c.svc.List(r.Context(), middleware.TenantID(r.Context()), filter, params)
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusOK, page)
}

func (c *TransfersController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := validators.PathUUID(r, "transferID")
	if err != nil {
		responses.Error(w, err)
		return
	}
	if err := c.svc.Delete(r.Context(), middleware.TenantID(r.Context()), id); err != nil {
		responses.Error(w, err)
		return
	}
	responses.NoContent(w)
}

func (c *TransfersController) AddLine(w http.ResponseWriter, r *http.Request) {
	id, err := validators.PathUUID(r, "transferID")
	if err != nil {
		responses.Error(w, err)
		return
	}
	var input transfers.LineInput
	if err := validators.DecodeAndValidate(r, &input); err != nil {
		responses.Error(w, err)
		return
	}
	view, err := c.svc.AddLine(r.Context(), middleware.TenantID(r.Context()), id, input)
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusCreated, view)
}

func (c *TransfersController) UpdateLine(w http.ResponseWriter, r *http.Request) {
	id, lineID, err := c.lineIDs(r)
	if err != nil {
		responses.Error(w, err)
		return
	}
	var input transfers.UpdateLineInput
	if err := validators.DecodeAndValidate(r, &input); err != nil {
		responses.Error(w, err)
		return
	}
	view, err := c.svc.UpdateLine(r.Context(), middleware.TenantID(r.Context()), id, lineID, input)
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusOK, view)
}

func (c *TransfersController) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id, lineID, err := c.lineIDs(r)
	if err != nil {
		responses.Error(w, err)
		return
	}
	view, err := c.svc.RemoveLine(r.Context(), middleware.TenantID(r.Context()), id, lineID)
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusOK, view)
}

func (c *TransfersController) Submit(w http.ResponseWriter, r *http.Request) {
	c.headerOp(w, r, c.svc.Submit)
}

func (c *TransfersController) Release(w http.ResponseWriter, r *http.Request) {
	c.headerOp(w, r, c.svc.Release)
}

func (c *TransfersController) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := validators.PathUUID(r, "transferID")
	if err != nil {
		responses.Error(w, err)
		return
	}
	var input transfers.AssignInput
	if err := validators.DecodeAndValidate(r, &input); err != nil {
		responses.Error(w, err)
		return
	}
	view, err := c.svc.Assign(r.Context(), middleware.TenantID(r.Context()), id, input)
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusOK, view)
}

func (c *TransfersController) StartPicking(w http.ResponseWriter, r *http.Request) {
	c.headerOp(w, r, c.svc.StartPicking)
}

func (c *TransfersController) PickLine(w http.ResponseWriter, r *http.Request) {
	id, lineID, err := c.lineIDs(r)
	if err != nil {
		responses.Error(w, err)
		return
	}
	var input transfers.PickLineInput
	if err := validators.DecodeAndValidate(r, &input); err != nil {
		responses.Error(w, err)
		return
	}
	ctx := r.Context()
	view, err := c.svc.PickLine(ctx, middleware.TenantID(ctx), middleware.UserID(ctx), id, lineID, input)
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusOK, view)
}

func (c *TransfersController) CompletePicking(w http.ResponseWriter, r *http.Request) {
	c.headerOp(w, r, c.svc.CompletePicking)
}

func (c *TransfersController) MarkInTransit(w http.ResponseWriter, r *http.Request) {
	c.headerOp(w, r, c.svc.MarkInTransit)
}

func (c *TransfersController) ReceiveLine(w http.ResponseWriter, r *http.Request) {
	id, lineID, err := c.lineIDs(r)
	if err != nil {
		responses.Error(w, err)
		return
	}
	var input transfers.ReceiveLineInput
	if err := validators.DecodeAndValidate(r, &input); err != nil {
		responses.Error(w, err)
		return
	}
	ctx := r.Context()
	view, err := c.svc.ReceiveLine(ctx, middleware.TenantID(ctx), middleware.UserID(ctx), id, lineID, input)
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusOK, view)
}

func (c *TransfersController) CompleteReceiving(w http.ResponseWriter, r *http.Request) {
	c.headerOp(w, r, c.svc.CompleteReceiving)
}

func (c *TransfersController) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := validators.PathUUID(r, "transferID")
	if err != nil {
		responses.Error(w, err)
		return
	}
	var input transfers.CancelInput
	if r.ContentLength > 0 {
		if err := validators.DecodeAndValidate(r, &input); err != nil {
			responses.Error(w, err)
			return
		}
	}
	ctx := r.Context()
	view, err := c.svc.Cancel(ctx, middleware.TenantID(ctx), middleware.UserID(ctx), id, input)
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusOK, view)
}

func (c *TransfersController) Movements(w http.ResponseWriter, r *http.Request) {
	id, err := validators.PathUUID(r, "transferID")
	if err != nil {
		responses.Error(w, err)
		return
	}
	movements, err := c.svc.ListMovements(r.Context(), middleware.TenantID(r.Context()), id)
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusOK, movements)
}

func (c *TransfersController) QuickTransfer(w http.ResponseWriter, r *http.Request) {
	var input transfers.QuickTransferInput
	if err := validators.DecodeAndValidate(r, &input); err != nil {
		responses.Error(w, err)
		return
	}
	ctx := r.Context()
	view, err := c.orch.QuickTransfer(ctx, middleware.TenantID(ctx), middleware.UserID(ctx), input)
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusCreated, view)
}

func (c *TransfersController) Replenish(w http.ResponseWriter, r *http.Request) {
	var input transfers.ReplenishInput
	if err := validators.DecodeAndValidate(r, &input); err != nil {
		responses.Error(w, err)
		return
	}
	ctx := r.Context()
	view, err := c.orch.Replenish(ctx, middleware.TenantID(ctx), middleware.UserID(ctx), input)
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusCreated, view)
}

type headerOpFunc func(ctx context.Context, tenantID, userID, id uuid.UUID) (*transfers.TransferView, error)

func (c *TransfersController) headerOp(w http.ResponseWriter, r *http.Request, op headerOpFunc) {
	id, err := validators.PathUUID(r, "transferID")
	if err != nil {
		responses.Error(w, err)
		return
	}
	ctx := r.Context()
	view, err := op(ctx, middleware.TenantID(ctx), middleware.UserID(ctx), id)
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusOK, view)
}

func (c *TransfersController) lineIDs(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	id, err := validators.PathUUID(r, "transferID")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	lineID, err := validators.PathUUID(r, "lineID")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return id, lineID, nil
}
