package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/velvetarcana/booking-api/internal/model"
)

// ReservationRepository owns all reservation state. Occupancy and expiry are
// computed against the store at query time; nothing above this layer caches
// reservation rows.
type ReservationRepository interface {
	// Create inserts a HELD reservation. Implementations first retire expired
	// HELD rows for the same slot, and must surface a slot-uniqueness
	// violation as the SLOT_TAKEN domain error.
	Create(ctx context.Context, reservation *model.Reservation, now time.Time) error
	Get(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	// FindActiveHold looks up an unexpired HELD reservation for the identity:
	// by user id when authenticated, otherwise by email, never both.
	FindActiveHold(ctx context.Context, identity model.RequesterIdentity, now time.Time) (*model.Reservation, error)
	IsSlotOccupied(ctx context.Context, serviceID, date, timeLabel string, now time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus) error
	// Confirm promotes a HELD reservation and clears its expiry in one write.
	Confirm(ctx context.Context, id uuid.UUID) error
	// ReleaseExpired retires stale HELD rows. Storage hygiene only; the
	// occupancy predicate already ignores them.
	ReleaseExpired(ctx context.Context, now time.Time) (int64, error)
	ListForDate(ctx context.Context, serviceID, date string) ([]*model.Reservation, error)
}

// ScheduleBlockRepository reads operator blackouts. Blocks are written by the
// admin surface, which is external to this service.
type ScheduleBlockRepository interface {
	FindForDate(ctx context.Context, date string, dayOfWeek int) ([]*model.ScheduleBlock, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
