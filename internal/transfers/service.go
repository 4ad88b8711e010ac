package transfers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stocklane/stocklane-backend/internal/directory"
	"github.com/stocklane/stocklane-backend/internal/numbering"
	"github.com/stocklane/stocklane-backend/internal/stock"
	"github.com/stocklane/stocklane-backend/pkg/config"
	"github.com/stocklane/stocklane-backend/pkg/db/models"
	"github.com/stocklane/stocklane-backend/pkg/enums"
	pkgerrors "github.com/stocklane/stocklane-backend/pkg/errors"
	"github.com/stocklane/stocklane-backend/pkg/logger"
	"github.com/stocklane/stocklane-backend/pkg/metrics"
	"github.com/stocklane/stocklane-backend/pkg/pagination"
)

// Service drives the stock transfer workflow. Every mutating operation runs
// inside one database transaction: header, lines, stock levels and movement
// rows change together or not at all.
type Service interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, input CreateTransferInput) (*TransferView, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*TransferView, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) (*TransferPage, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	AddLine(ctx context.Context, tenantID, id uuid.UUID, input LineInput) (*TransferView, error)
	UpdateLine(ctx context.Context, tenantID, id, lineID uuid.UUID, input UpdateLineInput) (*TransferView, error)
	RemoveLine(ctx context.Context, tenantID, id, lineID uuid.UUID) (*TransferView, error)

	Submit(ctx context.Context, tenantID, userID, id uuid.UUID) (*TransferView, error)
	Release(ctx context.Context, tenantID, userID, id uuid.UUID) (*TransferView, error)
	Assign(ctx context.Context, tenantID, id uuid.UUID, input AssignInput) (*TransferView, error)
	StartPicking(ctx context.Context, tenantID, userID, id uuid.UUID) (*TransferView, error)
	PickLine(ctx context.Context, tenantID, userID, id, lineID uuid.UUID, input PickLineInput) (*TransferView, error)
	CompletePicking(ctx context.Context, tenantID, userID, id uuid.UUID) (*TransferView, error)
	MarkInTransit(ctx context.Context, tenantID, userID, id uuid.UUID) (*TransferView, error)
	ReceiveLine(ctx context.Context, tenantID, userID, id, lineID uuid.UUID, input ReceiveLineInput) (*TransferView, error)
	CompleteReceiving(ctx context.Context, tenantID, userID, id uuid.UUID) (*TransferView, error)
	Cancel(ctx context.Context, tenantID, userID, id uuid.UUID, input CancelInput) (*TransferView, error)

	ListMovements(ctx context.Context, tenantID, id uuid.UUID) ([]MovementView, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx        txRunner
	repo      Repository
	stockRepo stock.Repository
	dir       directory.Repository
	numbers   numbering.Service
	numCfg    config.NumberingConfig
	logg      *logger.Logger
	metrics   *metrics.TransferMetrics
	now       func() time.Time
}

// NewService wires the transfer workflow service.
func NewService(
	tx txRunner,
	repository Repository,
	stockRepo stock.Repository,
	dir directory.Repository,
	numbers numbering.Service,
	numCfg config.NumberingConfig,
	logg *logger.Logger,
	m *metrics.TransferMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transfers: transaction runner is required")
	}
	if repository == nil {
		return nil, fmt.Errorf("transfers: repository is required")
	}
	if stockRepo == nil {
		return nil, fmt.Errorf("transfers: stock repository is required")
	}
	if dir == nil {
		return nil, fmt.Errorf("transfers: directory repository is required")
	}
	if numbers == nil {
		return nil, fmt.Errorf("transfers: numbering service is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("transfers: logger is required")
	}
	return &service{
		tx:        tx,
		repo:      repository,
		stockRepo: stockRepo,
		dir:       dir,
		numbers:   numbers,
		numCfg:    numCfg,
		logg:      logg,
		metrics:   m,
		now:       time.Now,
	}, nil
}

func (s *service) run(op string, fn func() error) error {
	start := s.now()
	err := fn()
	s.metrics.ObserveDuration(op, time.Since(start))
	if err != nil {
		code := string(pkgerrors.CodeInternal)
		if typed := pkgerrors.As(err); typed != nil {
			code = string(typed.Code())
		}
		s.metrics.IncFailure(op, code)
		return err
	}
	s.metrics.IncSuccess(op)
	return nil
}

func (s *service) Create(ctx context.Context, tenantID, userID uuid.UUID, input CreateTransferInput) (*TransferView, error) {
	var view *TransferView
	err := s.run("create", func() error {
		transferType, err := enums.ParseTransferType(input.Type)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transfer type")
		}
		if input.SourceWarehouseID == input.DestWarehouseID && transferType == enums.TransferTypeInterWarehouse {
			return pkgerrors.New(pkgerrors.CodeValidation,
				"inter-warehouse transfer requires distinct warehouses")
		}

		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			dir := s.dir.WithTx(tx)
			if _, err := dir.FindWarehouse(ctx, tenantID, input.SourceWarehouseID); err != nil {
				return err
			}
			if _, err := dir.FindWarehouse(ctx, tenantID, input.DestWarehouseID); err != nil {
				return err
			}
			if err := checkZone(ctx, dir, tenantID, input.SourceZoneID, input.SourceWarehouseID, "source"); err != nil {
				return err
			}
			if err := checkZone(ctx, dir, tenantID, input.DestZoneID, input.DestWarehouseID, "destination"); err != nil {
				return err
			}

			number, err := s.numbers.Next(ctx, tx, tenantID, s.numCfg.TransferPrefix, s.now())
			if err != nil {
				return err
			}

			transfer := &models.Transfer{
				ID:                uuid.New(),
				TenantID:          tenantID,
				Number:            number,
				Type:              transferType,
				Priority:          input.Priority,
				SourceWarehouseID: input.SourceWarehouseID,
				DestWarehouseID:   input.DestWarehouseID,
				SourceZoneID:      input.SourceZoneID,
				DestZoneID:        input.DestZoneID,
				ScheduledAt:       input.ScheduledAt,
				RequiredBy:        input.RequiredBy,
				ReasonCode:        input.ReasonCode,
				ReasonNotes:       input.ReasonNotes,
				SourceDocType:     input.SourceDocType,
				SourceDocID:       input.SourceDocID,
				SourceDocNumber:   input.SourceDocNumber,
				Status:            enums.TransferStatusDraft,
				TotalQuantity:     decimal.Zero,
			}

			repo := s.repo.WithTx(tx)
			if err := repo.Create(ctx, transfer); err != nil {
				return err
			}

			for i, lineInput := range input.Lines {
				line, err := s.buildLine(ctx, dir, transfer, i+1, lineInput)
				if err != nil {
					return err
				}
				if err := repo.CreateLine(ctx, line); err != nil {
					return err
				}
				transfer.Lines = append(transfer.Lines, *line)
			}

			recomputeTotals(transfer)
			if err := repo.SaveHeader(ctx, transfer); err != nil {
				return err
			}

			s.logg.Info(s.logg.WithTransferNumber(ctx, number), "transfer created")
			view = toTransferView(transfer)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) Get(ctx context.Context, tenantID, id uuid.UUID) (*TransferView, error) {
	transfer, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toTransferView(transfer), nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) (*TransferPage, error) {
	items, err := s.repo.List(ctx, tenantID, filter, params)
	if err != nil {
		return nil, err
	}
	limit := pagination.NormalizeLimit(params.Limit)
	trimmed, next := nextCursorFor(items, limit)
	page := &TransferPage{Items: make([]TransferView, 0, len(trimmed)), NextCursor: next}
	for i := range trimmed {
		page.Items = append(page.Items, *toTransferView(&trimmed[i]))
	}
	return page, nil
}

// Delete removes a draft that never touched stock. Anything past draft is
// cancelled instead so the audit trail survives.
func (s *service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.run("delete", func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			transfer, err := repo.FindByID(ctx, tenantID, id)
			if err != nil {
				return err
			}
			if transfer.Status != enums.TransferStatusDraft {
				return pkgerrors.Newf(pkgerrors.CodeStateConflict,
					"only draft transfers can be deleted, status is %s", transfer.Status)
			}
			return repo.Delete(ctx, tenantID, id)
		})
	})
}

func (s *service) AddLine(ctx context.Context, tenantID, id uuid.UUID, input LineInput) (*TransferView, error) {
	var view *TransferView
	err := s.run("add_line", func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			transfer, err := repo.FindByID(ctx, tenantID, id)
			if err != nil {
				return err
			}
			if !transfer.Status.AllowsLineEdits() {
				return pkgerrors.Newf(pkgerrors.CodeStateConflict,
					"lines cannot be added in status %s", transfer.Status)
			}

			nextNo := 0
			for _, line := range transfer.Lines {
				if line.LineNo > nextNo {
					nextNo = line.LineNo
				}
			}
			line, err := s.buildLine(ctx, s.dir.WithTx(tx), transfer, nextNo+1, input)
			if err != nil {
				return err
			}
			if err := repo.CreateLine(ctx, line); err != nil {
				return err
			}

			transfer.Lines = append(transfer.Lines, *line)
			recomputeTotals(transfer)
			if err := repo.SaveHeader(ctx, transfer); err != nil {
				return err
			}
			view = toTransferView(transfer)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) UpdateLine(ctx context.Context, tenantID, id, lineID uuid.UUID, input UpdateLineInput) (*TransferView, error) {
	var view *TransferView
	err := s.run("update_line", func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			transfer, err := repo.FindByID(ctx, tenantID, id)
			if err != nil {
				return err
			}
			if !transfer.Status.AllowsLineEdits() {
				return pkgerrors.Newf(pkgerrors.CodeStateConflict,
					"lines cannot be edited in status %s", transfer.Status)
			}

			line, err := repo.FindLine(ctx, transfer.ID, lineID)
			if err != nil {
				return err
			}

			dir := s.dir.WithTx(tx)
			if input.SourceLocationID != nil {
				location, err := dir.FindLocation(ctx, tenantID, *input.SourceLocationID)
				if err != nil {
					return err
				}
				if err := checkContainment(location, transfer.SourceWarehouseID, "source"); err != nil {
					return err
				}
				line.SourceLocationID = *input.SourceLocationID
			}
			if input.DestLocationID != nil {
				location, err := dir.FindLocation(ctx, tenantID, *input.DestLocationID)
				if err != nil {
					return err
				}
				if err := checkContainment(location, transfer.DestWarehouseID, "destination"); err != nil {
					return err
				}
				line.DestLocationID = *input.DestLocationID
			}
			if input.Batch != nil {
				line.Batch = *input.Batch
			}
			if input.RequestedQty != nil {
				if input.RequestedQty.LessThanOrEqual(decimal.Zero) {
					return pkgerrors.New(pkgerrors.CodeValidation, "requested quantity must be positive")
				}
				line.RequestedQty = *input.RequestedQty
			}
			if input.Notes != nil {
				line.Notes = input.Notes
			}
			if line.SourceLocationID == line.DestLocationID {
				return pkgerrors.New(pkgerrors.CodeValidation,
					"source and destination locations must differ")
			}

			if err := repo.SaveLine(ctx, line); err != nil {
				return err
			}
			return s.reloadInto(ctx, repo, tenantID, id, &view)
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) RemoveLine(ctx context.Context, tenantID, id, lineID uuid.UUID) (*TransferView, error) {
	var view *TransferView
	err := s.run("remove_line", func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			transfer, err := repo.FindByID(ctx, tenantID, id)
			if err != nil {
				return err
			}
			if !transfer.Status.AllowsLineEdits() {
				return pkgerrors.Newf(pkgerrors.CodeStateConflict,
					"lines cannot be removed in status %s", transfer.Status)
			}
			if err := repo.DeleteLine(ctx, transfer.ID, lineID); err != nil {
				return err
			}
			return s.reloadInto(ctx, repo, tenantID, id, &view)
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Submit moves a draft into the requested queue.
func (s *service) Submit(ctx context.Context, tenantID, userID, id uuid.UUID) (*TransferView, error) {
	return s.transition(ctx, "submit", tenantID, id, func(tx *gorm.DB, transfer *models.Transfer) error {
		if transfer.Status != enums.TransferStatusDraft {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"transfer cannot be submitted from status %s", transfer.Status)
		}
		if len(transfer.Lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "transfer has no lines")
		}
		transfer.Status = enums.TransferStatusRequested
		return nil
	})
}

// Release opens the transfer for picking. No stock moves here: reservations
// are taken line by line as quantities are actually picked.
func (s *service) Release(ctx context.Context, tenantID, userID, id uuid.UUID) (*TransferView, error) {
	return s.transition(ctx, "release", tenantID, id, func(tx *gorm.DB, transfer *models.Transfer) error {
		if transfer.Status != enums.TransferStatusDraft && transfer.Status != enums.TransferStatusRequested {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"transfer cannot be released from status %s", transfer.Status)
		}
		if len(transfer.Lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "transfer has no lines")
		}
		transfer.Status = enums.TransferStatusReleased
		s.logg.Info(s.logg.WithTransferNumber(ctx, transfer.Number), "transfer released")
		return nil
	})
}

// Assign sets the operator at any point in the workflow without touching status.
func (s *service) Assign(ctx context.Context, tenantID, id uuid.UUID, input AssignInput) (*TransferView, error) {
	return s.transition(ctx, "assign", tenantID, id, func(tx *gorm.DB, transfer *models.Transfer) error {
		assignee := input.AssignedToID
		transfer.AssignedToID = &assignee
		return nil
	})
}

func (s *service) StartPicking(ctx context.Context, tenantID, userID, id uuid.UUID) (*TransferView, error) {
	return s.transition(ctx, "start_picking", tenantID, id, func(tx *gorm.DB, transfer *models.Transfer) error {
		if transfer.Status != enums.TransferStatusReleased {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"picking cannot start from status %s", transfer.Status)
		}
		repo := s.repo.WithTx(tx)
		for i := range transfer.Lines {
			line := &transfer.Lines[i]
			line.Status = enums.TransferLineStatusAllocated
			if err := repo.SaveLine(ctx, line); err != nil {
				return err
			}
		}
		transfer.Status = enums.TransferStatusInProgress
		if transfer.AssignedToID == nil && userID != uuid.Nil {
			picker := userID
			transfer.AssignedToID = &picker
		}
		return nil
	})
}

// PickLine records the cumulative picked quantity for a line. The quantity is
// a running total, so scanning the same line twice sends the new total, not an
// increment. The delta over the previous total is reserved at the source key;
// insufficient stock is reported here with the available quantity. On-hand is
// untouched until dispatch.
func (s *service) PickLine(ctx context.Context, tenantID, userID, id, lineID uuid.UUID, input PickLineInput) (*TransferView, error) {
	return s.transition(ctx, "pick_line", tenantID, id, func(tx *gorm.DB, transfer *models.Transfer) error {
		if transfer.Status != enums.TransferStatusInProgress {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"lines cannot be picked in status %s", transfer.Status)
		}

		repo := s.repo.WithTx(tx)
		line, err := repo.FindLine(ctx, transfer.ID, lineID)
		if err != nil {
			return err
		}

		newTotal := input.QtyPicked
		if newTotal.LessThanOrEqual(decimal.Zero) {
			return pkgerrors.New(pkgerrors.CodeValidation, "picked quantity must be positive")
		}
		if newTotal.LessThan(line.PickedQty) {
			return pkgerrors.Newf(pkgerrors.CodeValidation,
				"picked quantity cannot decrease from %s to %s", line.PickedQty, newTotal)
		}
		if newTotal.GreaterThan(line.RequestedQty) {
			return pkgerrors.Newf(pkgerrors.CodeValidation,
				"picked quantity %s exceeds requested %s", newTotal, line.RequestedQty)
		}

		delta := newTotal.Sub(line.PickedQty)
		if delta.IsPositive() {
			key := stock.Key{
				TenantID:   tenantID,
				ProductID:  line.ProductID,
				LocationID: line.SourceLocationID,
				Batch:      line.Batch,
			}
			if err := s.stockRepo.WithTx(tx).Reserve(ctx, key, delta); err != nil {
				if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
					return typed.WithDetails(map[string]any{
						"line_no":    line.LineNo,
						"product_id": line.ProductID.String(),
					})
				}
				return err
			}
		}

		line.PickedQty = newTotal
		now := s.now()
		line.PickedAt = &now
		line.PickedByID = optionalID(userID)
		if newTotal.Equal(line.RequestedQty) {
			line.Status = enums.TransferLineStatusPicked
		} else {
			line.Status = enums.TransferLineStatusPartiallyPicked
		}
		if err := repo.SaveLine(ctx, line); err != nil {
			return err
		}
		return refreshLines(transfer, line)
	})
}

// CompletePicking closes the pick phase. Every line must have been picked at
// least partially; a partially picked line keeps its partial status and only
// its picked quantity travels onward.
func (s *service) CompletePicking(ctx context.Context, tenantID, userID, id uuid.UUID) (*TransferView, error) {
	return s.transition(ctx, "complete_picking", tenantID, id, func(tx *gorm.DB, transfer *models.Transfer) error {
		if transfer.Status != enums.TransferStatusInProgress {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"picking cannot complete from status %s", transfer.Status)
		}

		unpicked := 0
		for _, line := range transfer.Lines {
			if line.PickedQty.IsZero() {
				unpicked++
			}
		}
		if unpicked > 0 {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"%d lines have not been picked", unpicked)
		}

		now := s.now()
		transfer.Status = enums.TransferStatusPicked
		transfer.PickedAt = &now
		transfer.PickedByID = optionalID(userID)
		return nil
	})
}

// MarkInTransit dispatches the goods. Each picked quantity is committed out of
// the source key (spending its reservation) with one outbound movement row,
// and every line goes in transit.
func (s *service) MarkInTransit(ctx context.Context, tenantID, userID, id uuid.UUID) (*TransferView, error) {
	return s.transition(ctx, "mark_in_transit", tenantID, id, func(tx *gorm.DB, transfer *models.Transfer) error {
		if transfer.Status != enums.TransferStatusPicked {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"transfer cannot go in transit from status %s", transfer.Status)
		}
		stockRepo := s.stockRepo.WithTx(tx)
		repo := s.repo.WithTx(tx)
		for i := range transfer.Lines {
			line := &transfer.Lines[i]
			if line.PickedQty.IsPositive() {
				key := stock.Key{
					TenantID:   tenantID,
					ProductID:  line.ProductID,
					LocationID: line.SourceLocationID,
					Batch:      line.Batch,
				}
				if err := stockRepo.CommitOut(ctx, key, line.PickedQty); err != nil {
					return err
				}
				source := line.SourceLocationID
				movement := &models.StockMovement{
					TenantID:       tenantID,
					ProductID:      line.ProductID,
					Batch:          line.Batch,
					Qty:            line.PickedQty,
					Direction:      enums.MovementDirectionOutbound,
					FromLocationID: &source,
					TransferID:     transfer.ID,
					TransferNumber: transfer.Number,
					CreatedByID:    optionalID(userID),
				}
				if err := stockRepo.AppendMovement(ctx, movement); err != nil {
					return err
				}
			}
			line.Status = enums.TransferLineStatusInTransit
			if err := repo.SaveLine(ctx, line); err != nil {
				return err
			}
		}
		transfer.Status = enums.TransferStatusInTransit
		return nil
	})
}

// ReceiveLine records the cumulative received quantity for a line. Receipts
// are capped by what was picked; the delta lands on-hand at the destination
// with one inbound movement row. When every line is fully received the header
// advances to received on its own.
func (s *service) ReceiveLine(ctx context.Context, tenantID, userID, id, lineID uuid.UUID, input ReceiveLineInput) (*TransferView, error) {
	return s.transition(ctx, "receive_line", tenantID, id, func(tx *gorm.DB, transfer *models.Transfer) error {
		switch transfer.Status {
		case enums.TransferStatusInTransit, enums.TransferStatusReceived:
		default:
			return pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"lines cannot be received in status %s", transfer.Status)
		}

		repo := s.repo.WithTx(tx)
		line, err := repo.FindLine(ctx, transfer.ID, lineID)
		if err != nil {
			return err
		}

		newTotal := input.QtyReceived
		if newTotal.LessThanOrEqual(decimal.Zero) {
			return pkgerrors.New(pkgerrors.CodeValidation, "received quantity must be positive")
		}
		if newTotal.LessThan(line.ReceivedQty) {
			return pkgerrors.Newf(pkgerrors.CodeValidation,
				"received quantity cannot decrease from %s to %s", line.ReceivedQty, newTotal)
		}
		if newTotal.GreaterThan(line.PickedQty) {
			return pkgerrors.Newf(pkgerrors.CodeValidation,
				"received quantity %s exceeds picked %s", newTotal, line.PickedQty)
		}

		delta := newTotal.Sub(line.ReceivedQty)
		if delta.IsPositive() {
			stockRepo := s.stockRepo.WithTx(tx)
			key := stock.Key{
				TenantID:   tenantID,
				ProductID:  line.ProductID,
				LocationID: line.DestLocationID,
				Batch:      line.Batch,
			}
			if err := stockRepo.CommitIn(ctx, key, delta); err != nil {
				return err
			}
			dest := line.DestLocationID
			movement := &models.StockMovement{
				TenantID:       tenantID,
				ProductID:      line.ProductID,
				Batch:          line.Batch,
				Qty:            delta,
				Direction:      enums.MovementDirectionInbound,
				ToLocationID:   &dest,
				TransferID:     transfer.ID,
				TransferNumber: transfer.Number,
				CreatedByID:    optionalID(userID),
			}
			if err := stockRepo.AppendMovement(ctx, movement); err != nil {
				return err
			}
		}

		line.ReceivedQty = newTotal
		now := s.now()
		line.ReceivedAt = &now
		line.ReceivedByID = optionalID(userID)
		if newTotal.Equal(line.PickedQty) {
			line.Status = enums.TransferLineStatusReceived
		} else {
			line.Status = enums.TransferLineStatusPartiallyReceived
		}
		if err := repo.SaveLine(ctx, line); err != nil {
			return err
		}
		if err := refreshLines(transfer, line); err != nil {
			return err
		}

		if allLinesReceived(transfer) {
			transfer.Status = enums.TransferStatusReceived
			transfer.ReceivedAt = &now
			transfer.ReceivedByID = optionalID(userID)
		}
		return nil
	})
}

// CompleteReceiving finalizes the transfer. Lines received short of their
// picked quantity stay short; the discrepancy remains visible as the line
// variance and is settled by a follow-up adjustment, not by this workflow.
func (s *service) CompleteReceiving(ctx context.Context, tenantID, userID, id uuid.UUID) (*TransferView, error) {
	return s.transition(ctx, "complete_receiving", tenantID, id, func(tx *gorm.DB, transfer *models.Transfer) error {
		switch transfer.Status {
		case enums.TransferStatusInTransit, enums.TransferStatusReceived:
		default:
			return pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"receiving cannot complete from status %s", transfer.Status)
		}

		received := 0
		for _, line := range transfer.Lines {
			if !line.ReceivedQty.IsZero() {
				received++
			}
		}
		if received == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				"no lines have been received")
		}

		now := s.now()
		transfer.Status = enums.TransferStatusComplete
		if transfer.ReceivedAt == nil {
			transfer.ReceivedAt = &now
		}
		if transfer.ReceivedByID == nil {
			transfer.ReceivedByID = optionalID(userID)
		}
		s.logg.Info(s.logg.WithTransferNumber(ctx, transfer.Number), "transfer complete")
		return nil
	})
}

// Cancel aborts the transfer and releases the picked reservations at the
// source keys. The goods never left, so on-hand stays put and no movement rows
// are written. Transfers in transit cannot be cancelled while the goods are on
// the road; once received they can, the remaining reservations are simply gone
// already.
func (s *service) Cancel(ctx context.Context, tenantID, userID, id uuid.UUID, input CancelInput) (*TransferView, error) {
	return s.transition(ctx, "cancel", tenantID, id, func(tx *gorm.DB, transfer *models.Transfer) error {
		switch transfer.Status {
		case enums.TransferStatusComplete, enums.TransferStatusInTransit,
			enums.TransferStatusCancelled:
			return pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"transfer cannot be cancelled from status %s", transfer.Status)
		}

		stockRepo := s.stockRepo.WithTx(tx)
		repo := s.repo.WithTx(tx)
		for i := range transfer.Lines {
			line := &transfer.Lines[i]

			// Reservations for dispatched lines were already spent at the
			// outbound commit; only pre-transit picks still hold one.
			dispatched := line.Status == enums.TransferLineStatusInTransit ||
				line.Status == enums.TransferLineStatusPartiallyReceived ||
				line.Status == enums.TransferLineStatusReceived
			if line.PickedQty.IsPositive() && !dispatched {
				key := stock.Key{
					TenantID:   tenantID,
					ProductID:  line.ProductID,
					LocationID: line.SourceLocationID,
					Batch:      line.Batch,
				}
				if err := stockRepo.ReleaseReservation(ctx, key, line.PickedQty); err != nil {
					return err
				}
			}

			line.Status = enums.TransferLineStatusCancelled
			if err := repo.SaveLine(ctx, line); err != nil {
				return err
			}
		}

		now := s.now()
		transfer.Status = enums.TransferStatusCancelled
		transfer.CancelledAt = &now
		if input.Reason != nil {
			transfer.ReasonNotes = input.Reason
		}
		s.logg.Info(s.logg.WithTransferNumber(ctx, transfer.Number), "transfer cancelled")
		return nil
	})
}

func (s *service) ListMovements(ctx context.Context, tenantID, id uuid.UUID) ([]MovementView, error) {
	if _, err := s.repo.FindByID(ctx, tenantID, id); err != nil {
		return nil, err
	}
	movements, err := s.stockRepo.ListMovementsByTransfer(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	views := make([]MovementView, 0, len(movements))
	for _, movement := range movements {
		views = append(views, toMovementView(movement))
	}
	return views, nil
}

// transition loads the transfer, applies fn, recomputes aggregates and saves
// the header, all inside one transaction.
func (s *service) transition(
	ctx context.Context,
	op string,
	tenantID, id uuid.UUID,
	fn func(tx *gorm.DB, transfer *models.Transfer) error,
) (*TransferView, error) {
	var view *TransferView
	err := s.run(op, func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			transfer, err := repo.FindByID(ctx, tenantID, id)
			if err != nil {
				return err
			}
			if err := fn(tx, transfer); err != nil {
				return err
			}
			recomputeTotals(transfer)
			if err := repo.SaveHeader(ctx, transfer); err != nil {
				return err
			}
			view = toTransferView(transfer)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) buildLine(
	ctx context.Context,
	dir directory.Repository,
	transfer *models.Transfer,
	lineNo int,
	input LineInput,
) (*models.TransferLine, error) {
	if input.RequestedQty.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requested quantity must be positive")
	}
	if input.SourceLocationID == input.DestLocationID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			"source and destination locations must differ")
	}

	tenantID := transfer.TenantID
	product, err := dir.FindProduct(ctx, tenantID, input.ProductID)
	if err != nil {
		return nil, err
	}
	source, err := dir.FindLocation(ctx, tenantID, input.SourceLocationID)
	if err != nil {
		return nil, err
	}
	if err := checkContainment(source, transfer.SourceWarehouseID, "source"); err != nil {
		return nil, err
	}
	dest, err := dir.FindLocation(ctx, tenantID, input.DestLocationID)
	if err != nil {
		return nil, err
	}
	if err := checkContainment(dest, transfer.DestWarehouseID, "destination"); err != nil {
		return nil, err
	}

	return &models.TransferLine{
		ID:               uuid.New(),
		TransferID:       transfer.ID,
		LineNo:           lineNo,
		ProductID:        input.ProductID,
		SKU:              product.SKU,
		Batch:            input.Batch,
		SourceLocationID: input.SourceLocationID,
		DestLocationID:   input.DestLocationID,
		RequestedQty:     input.RequestedQty,
		PickedQty:        decimal.Zero,
		ReceivedQty:      decimal.Zero,
		Status:           enums.TransferLineStatusPending,
		Notes:            input.Notes,
	}, nil
}

// reloadInto refreshes the view from storage after line-level writes.
func (s *service) reloadInto(ctx context.Context, repo Repository, tenantID, id uuid.UUID, view **TransferView) error {
	transfer, err := repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	recomputeTotals(transfer)
	if err := repo.SaveHeader(ctx, transfer); err != nil {
		return err
	}
	*view = toTransferView(transfer)
	return nil
}

// refreshLines copies a mutated line back into the in-memory header slice so
// aggregate recomputes and the returned view see the write.
func refreshLines(transfer *models.Transfer, updated *models.TransferLine) error {
	for i := range transfer.Lines {
		if transfer.Lines[i].ID == updated.ID {
			transfer.Lines[i] = *updated
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeInternal, "updated line missing from loaded transfer")
}

func recomputeTotals(transfer *models.Transfer) {
	total := decimal.Zero
	picked := 0
	received := 0
	for _, line := range transfer.Lines {
		total = total.Add(line.RequestedQty)
		if !line.PickedQty.IsZero() && line.PickedQty.GreaterThanOrEqual(line.RequestedQty) {
			picked++
		}
		if !line.ReceivedQty.IsZero() && line.ReceivedQty.GreaterThanOrEqual(line.PickedQty) {
			received++
		}
	}
	transfer.TotalLines = len(transfer.Lines)
	transfer.TotalQuantity = total
	transfer.PickedLines = picked
	transfer.ReceivedLines = received
}

func allLinesReceived(transfer *models.Transfer) bool {
	for _, line := range transfer.Lines {
		if line.Status == enums.TransferLineStatusCancelled {
			continue
		}
		if line.PickedQty.IsZero() || !line.ReceivedQty.Equal(line.PickedQty) {
			return false
		}
	}
	return len(transfer.Lines) > 0
}

func checkContainment(location *models.Location, warehouseID uuid.UUID, role string) error {
	if location.WarehouseID != warehouseID {
		return pkgerrors.Newf(pkgerrors.CodeValidation,
			"%s location %s is not in the %s warehouse", role, location.Code, role)
	}
	return nil
}

func checkZone(ctx context.Context, dir directory.Repository, tenantID uuid.UUID, zoneID *uuid.UUID, warehouseID uuid.UUID, role string) error {
	if zoneID == nil {
		return nil
	}
	zone, err := dir.FindZone(ctx, tenantID, *zoneID)
	if err != nil {
		return err
	}
	if zone.WarehouseID != warehouseID {
		return pkgerrors.Newf(pkgerrors.CodeValidation,
			"%s zone %s is not in the %s warehouse", role, zone.Code, role)
	}
	return nil
}

func optionalID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	value := id
	return &value
}
