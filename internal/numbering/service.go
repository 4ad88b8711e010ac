package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/stocklane/stocklane-backend/pkg/errors"
)

// Service hands out gapless-enough document numbers of the form
// PREFIX-YYYYMMDD-NNNN. Sequences restart at 0001 per (tenant, prefix, day).
//
// Allocation is one atomic insert-or-increment statement, so concurrent
// callers on the same day never observe the same sequence value. Numbers are
// consumed even when the surrounding transaction rolls back; gaps are
// acceptable, duplicates are not.
type Service interface {
	Next(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, prefix string, day time.Time) (string, error)
}

type service struct {
	width int
}

// NewService builds a numbering service padding sequences to width digits.
func NewService(width int) (Service, error) {
	if width < 1 {
		return nil, fmt.Errorf("numbering: sequence width must be at least 1, got %d", width)
	}
	return &service{width: width}, nil
}

const allocateSQL = `
INSERT INTO sequence_counters (tenant_id, prefix, day, last_seq)
VALUES (?, ?, ?, 1)
ON CONFLICT (tenant_id, prefix, day)
DO UPDATE SET last_seq = sequence_counters.last_seq + 1
RETURNING last_seq`

// Next allocates the next number on the given transaction handle. Passing the
// workflow transaction keeps the counter row locked until the caller commits,
// which serializes same-day allocations without an extra round trip.
func (s *service) Next(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, prefix string, day time.Time) (string, error) {
	if tx == nil {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "numbering requires a transaction handle")
	}
	if prefix == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "numbering prefix is required")
	}

	dayKey := day.UTC().Format("20060102")

	var seq int64
	err := tx.WithContext(ctx).
		Raw(allocateSQL, tenantID.String(), prefix, dayKey).
		Scan(&seq).Error
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate sequence number")
	}

	return fmt.Sprintf("%s-%s-%0*d", prefix, dayKey, s.width, seq), nil
}
