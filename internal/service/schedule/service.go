// Package schedule resolves structural availability: which catalog slots an
// operator blackout leaves open on a given date. It deliberately never
// consults reservations; claim state is the booking service's question.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/velvetarcana/booking-api/internal/model"
	"github.com/velvetarcana/booking-api/internal/repository"
	"github.com/velvetarcana/booking-api/internal/timeslot"
	"github.com/velvetarcana/booking-api/pkg/errors"
)

type Service struct {
	repo repository.ScheduleBlockRepository
}

func NewService(repo repository.ScheduleBlockRepository) *Service {
	return &Service{repo: repo}
}

// Resolve merges the fixed slot catalog with the operator blackouts matching
// the date. A day-level block empties availability outright.
func (s *Service) Resolve(ctx context.Context, date string) (*model.AvailabilityResponse, error) {
	blocks, err := s.blocksFor(ctx, date)
	if err != nil {
		return nil, err
	}

	catalog := timeslot.Catalog()

	for _, b := range blocks {
		if b.BlocksWholeDay() {
			return &model.AvailabilityResponse{
				AvailableSlots: []string{},
				BlockedSlots:   catalog,
			}, nil
		}
	}

	blocked := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		blocked[*b.Time] = true
	}

	resp := &model.AvailabilityResponse{
		AvailableSlots: []string{},
		BlockedSlots:   []string{},
	}
	for _, slot := range catalog {
		if blocked[slot] {
			resp.BlockedSlots = append(resp.BlockedSlots, slot)
		} else {
			resp.AvailableSlots = append(resp.AvailableSlots, slot)
		}
	}
	return resp, nil
}

// IsBlocked reports whether a blackout covers the slot, at day or slot level.
func (s *Service) IsBlocked(ctx context.Context, date, timeLabel string) (bool, error) {
	blocks, err := s.blocksFor(ctx, date)
	if err != nil {
		return false, err
	}

	for _, b := range blocks {
		if b.BlocksWholeDay() || *b.Time == timeLabel {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) blocksFor(ctx context.Context, date string) ([]*model.ScheduleBlock, error) {
	dow, err := dayOfWeek(date)
	if err != nil {
		return nil, errors.InvalidRequest("date must be YYYY-MM-DD")
	}

	blocks, err := s.repo.FindForDate(ctx, date, dow)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("failed to fetch schedule blocks: %w", err))
	}
	return blocks, nil
}

// dayOfWeek derives the weekday (0=Sunday) from a YYYY-MM-DD date. The date
// is anchored at local noon so timezone boundary shifts cannot move it onto
// a neighboring day.
func dayOfWeek(date string) (int, error) {
	t, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return 0, err
	}
	noon := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.Local)
	return int(noon.Weekday()), nil
}
