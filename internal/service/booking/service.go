// Package booking implements the reservation core: short-lived exclusive
// holds on slots, their promotion to bookings, and read-time occupancy
// checks. There is no background reaper; a hold's expiry is a predicate of
// (status, expires_at, now) evaluated fresh on every read.
package booking

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/velvetarcana/booking-api/internal/model"
	"github.com/velvetarcana/booking-api/internal/repository"
	"github.com/velvetarcana/booking-api/internal/timeslot"
	"github.com/velvetarcana/booking-api/pkg/clock"
	"github.com/velvetarcana/booking-api/pkg/errors"
)

// DefaultHoldTTL is the fixed claim window granted to a new hold.
const DefaultHoldTTL = 10 * time.Minute

const (
	EventHoldCreated  = "booking.hold_created"
	EventHoldReleased = "booking.hold_released"
	EventHoldExpired  = "booking.hold_expired"
	EventConfirmed    = "booking.confirmed"
)

// ScheduleChecker answers whether an operator blackout covers a slot.
type ScheduleChecker interface {
	IsBlocked(ctx context.Context, date, timeLabel string) (bool, error)
}

// Emitter stages booking lifecycle events for publication.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type Service struct {
	reservations repository.ReservationRepository
	schedule     ScheduleChecker
	events       Emitter
	clock        clock.Clock
	holdTTL      time.Duration
}

func NewService(reservations repository.ReservationRepository, schedule ScheduleChecker, events Emitter, clk clock.Clock, holdTTL time.Duration) *Service {
	if holdTTL <= 0 {
		holdTTL = DefaultHoldTTL
	}
	return &Service{
		reservations: reservations,
		schedule:     schedule,
		events:       events,
		clock:        clk,
		holdTTL:      holdTTL,
	}
}

// IsSlotTaken reports whether an unexpired claim occupies the slot right now.
func (s *Service) IsSlotTaken(ctx context.Context, serviceID, date, timeLabel string) (bool, error) {
	if serviceID == "" || date == "" || timeLabel == "" {
		return false, errors.InvalidRequest("service_id, date and time are required")
	}

	occupied, err := s.reservations.IsSlotOccupied(ctx, serviceID, date, timeLabel, s.clock.Now())
	if err != nil {
		return false, errors.Internal(err)
	}
	return occupied, nil
}

// CreateHold claims a slot for the requester. Validation fails fast in spec
// order: request shape, one-hold-per-requester, schedule blackout, occupancy.
func (s *Service) CreateHold(ctx context.Context, req *model.CreateHoldRequest, identity model.RequesterIdentity) (*model.HoldResponse, error) {
	now := s.clock.Now()

	if req.ServiceID == "" || req.SelectedDate == "" || req.SelectedTime == "" ||
		req.RequesterName == "" || req.RequesterEmail == "" {
		return nil, errors.InvalidRequest("missing required fields")
	}
	if _, err := time.ParseInLocation("2006-01-02", req.SelectedDate, time.Local); err != nil {
		return nil, errors.InvalidRequest("selected_date must be YYYY-MM-DD")
	}
	if !timeslot.Valid(req.SelectedTime) {
		return nil, errors.InvalidRequest("unknown time slot")
	}

	existing, err := s.reservations.FindActiveHold(ctx, identity, now)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if existing != nil {
		return nil, errors.DuplicateHold()
	}

	blocked, err := s.schedule.IsBlocked(ctx, req.SelectedDate, req.SelectedTime)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, errors.SlotBlocked()
	}

	occupied, err := s.reservations.IsSlotOccupied(ctx, req.ServiceID, req.SelectedDate, req.SelectedTime, now)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if occupied {
		return nil, errors.SlotTaken()
	}

	expiresAt := now.Add(s.holdTTL)
	reservation := &model.Reservation{
		ID:             uuid.New(),
		ServiceID:      req.ServiceID,
		SelectedDate:   req.SelectedDate,
		SelectedTime:   req.SelectedTime,
		Status:         model.ReservationStatusHeld,
		RequesterEmail: req.RequesterEmail,
		RequesterName:  req.RequesterName,
		Notes:          req.Notes,
		AddOn:          req.AddOn,
		TotalPrice:     req.TotalPrice,
		ExpiresAt:      &expiresAt,
		CreatedAt:      now,
	}
	if identity.Authenticated() {
		reservation.RequesterID = identity.UserID
	}

	if err := s.reservations.Create(ctx, reservation, now); err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Internal(err)
	}

	s.emit(ctx, EventHoldCreated, reservation)

	return &model.HoldResponse{
		HoldID:    reservation.ID,
		ExpiresAt: expiresAt.UnixMilli(),
	}, nil
}

// ReleaseHold cancels a live hold. Expiry is left untouched; status alone
// gates occupancy.
func (s *Service) ReleaseHold(ctx context.Context, holdID uuid.UUID, identity model.RequesterIdentity) error {
	reservation, err := s.getHold(ctx, holdID)
	if err != nil {
		return err
	}

	if !identity.Owns(reservation) {
		return errors.Forbidden()
	}

	if err := s.reservations.UpdateStatus(ctx, holdID, model.ReservationStatusCancelled); err != nil {
		return errors.Internal(err)
	}

	s.emit(ctx, EventHoldReleased, reservation)
	return nil
}

// Confirm promotes an unexpired hold to a permanent booking. A confirm
// attempt on an expired hold retires it; the attempt itself is one of the
// mechanisms that cleans up stale holds.
func (s *Service) Confirm(ctx context.Context, holdID uuid.UUID, identity model.RequesterIdentity) (*model.BookingSummary, error) {
	now := s.clock.Now()

	reservation, err := s.getHold(ctx, holdID)
	if err != nil {
		return nil, err
	}

	if reservation.ExpiresAt == nil || !reservation.ExpiresAt.After(now) {
		if err := s.reservations.UpdateStatus(ctx, holdID, model.ReservationStatusCancelled); err != nil {
			return nil, errors.Internal(err)
		}
		s.emit(ctx, EventHoldExpired, reservation)
		return nil, errors.Expired()
	}

	if !identity.Owns(reservation) {
		return nil, errors.Forbidden()
	}

	if err := s.reservations.Confirm(ctx, holdID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("hold")
		}
		return nil, errors.Internal(err)
	}

	summary := &model.BookingSummary{
		ID:           reservation.ID,
		ServiceID:    reservation.ServiceID,
		SelectedDate: reservation.SelectedDate,
		SelectedTime: reservation.SelectedTime,
		Status:       model.ReservationStatusConfirmed,
		CreatedAt:    reservation.CreatedAt,
	}

	s.emit(ctx, EventConfirmed, summary)
	return summary, nil
}

// getHold loads a reservation that is still in HELD status. Anything else,
// including an id that was already released or confirmed, is NOT_FOUND.
func (s *Service) getHold(ctx context.Context, holdID uuid.UUID) (*model.Reservation, error) {
	reservation, err := s.reservations.Get(ctx, holdID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("hold")
		}
		return nil, errors.Internal(err)
	}
	if reservation.Status != model.ReservationStatusHeld {
		return nil, errors.NotFound("hold")
	}
	return reservation, nil
}

// emit stages a lifecycle event; delivery is the outbox pipeline's problem
// and must not fail the booking operation.
func (s *Service) emit(ctx context.Context, eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to stage booking event")
	}
}
