package booking

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velvetarcana/booking-api/internal/model"
	"github.com/velvetarcana/booking-api/pkg/clock"
	"github.com/velvetarcana/booking-api/pkg/errors"
)

// fakeReservationRepo mirrors the Postgres repository's semantics in memory,
// including the retire-then-insert behavior and the slot-uniqueness guard.
type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*model.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[uuid.UUID]*model.Reservation)}
}

func (f *fakeReservationRepo) Create(_ context.Context, r *model.Reservation, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.reservations {
		if existing.ServiceID != r.ServiceID || existing.SelectedDate != r.SelectedDate || existing.SelectedTime != r.SelectedTime {
			continue
		}
		if existing.Status == model.ReservationStatusHeld && existing.ExpiresAt != nil && !existing.ExpiresAt.After(now) {
			existing.Status = model.ReservationStatusCancelled
			continue
		}
		if existing.Occupies(now) {
			return errors.SlotTaken()
		}
	}
	cp := *r
	f.reservations[r.ID] = &cp
	return nil
}

func (f *fakeReservationRepo) Get(_ context.Context, id uuid.UUID) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReservationRepo) FindActiveHold(_ context.Context, identity model.RequesterIdentity, now time.Time) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.Status != model.ReservationStatusHeld || r.ExpiresAt == nil || !r.ExpiresAt.After(now) {
			continue
		}
		if identity.Authenticated() {
			if r.RequesterID != nil && *r.RequesterID == *identity.UserID {
				cp := *r
				return &cp, nil
			}
		} else if r.RequesterEmail == identity.Email {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeReservationRepo) IsSlotOccupied(_ context.Context, serviceID, date, timeLabel string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.ServiceID == serviceID && r.SelectedDate == date && r.SelectedTime == timeLabel && r.Occupies(now) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReservationRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.ReservationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.Status = status
	return nil
}

func (f *fakeReservationRepo) Confirm(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok || r.Status != model.ReservationStatusHeld {
		return sql.ErrNoRows
	}
	r.Status = model.ReservationStatusConfirmed
	r.ExpiresAt = nil
	return nil
}

func (f *fakeReservationRepo) ReleaseExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var released int64
	for _, r := range f.reservations {
		if r.Status == model.ReservationStatusHeld && r.ExpiresAt != nil && !r.ExpiresAt.After(now) {
			r.Status = model.ReservationStatusCancelled
			released++
		}
	}
	return released, nil
}

func (f *fakeReservationRepo) ListForDate(_ context.Context, serviceID, date string) ([]*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Reservation
	for _, r := range f.reservations {
		if r.ServiceID == serviceID && r.SelectedDate == date {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeSchedule struct {
	blockedDays  map[string]bool
	blockedSlots map[string]bool // key: date + "|" + time
}

func (f *fakeSchedule) IsBlocked(_ context.Context, date, timeLabel string) (bool, error) {
	if f.blockedDays[date] {
		return true, nil
	}
	return f.blockedSlots[date+"|"+timeLabel], nil
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeEmitter) Emit(_ context.Context, eventType string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	return nil
}

type fixture struct {
	svc     *Service
	repo    *fakeReservationRepo
	clk     *clock.Fixed
	emitter *fakeEmitter
	sched   *fakeSchedule
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeReservationRepo()
	clk := clock.NewFixed(time.Date(2026, 4, 1, 9, 0, 0, 0, time.Local))
	emitter := &fakeEmitter{}
	sched := &fakeSchedule{
		blockedDays:  make(map[string]bool),
		blockedSlots: make(map[string]bool),
	}
	return &fixture{
		svc:     NewService(repo, sched, emitter, clk, DefaultHoldTTL),
		repo:    repo,
		clk:     clk,
		emitter: emitter,
		sched:   sched,
	}
}

func holdRequest() *model.CreateHoldRequest {
	return &model.CreateHoldRequest{
		ServiceID:      "tarot-reading",
		SelectedDate:   "2026-04-01",
		SelectedTime:   "2:00 PM",
		RequesterName:  "Ada",
		RequesterEmail: "a@x.com",
	}
}

func TestCreateHold(t *testing.T) {
	fx := newFixture(t)

	resp, err := fx.svc.CreateHold(context.Background(), holdRequest(), model.AnonymousRequester("a@x.com"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, resp.HoldID)
	assert.Equal(t, fx.clk.Now().Add(DefaultHoldTTL).UnixMilli(), resp.ExpiresAt)

	stored, err := fx.repo.Get(context.Background(), resp.HoldID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusHeld, stored.Status)
	require.NotNil(t, stored.ExpiresAt)
	assert.Equal(t, []string{EventHoldCreated}, fx.emitter.events)
}

func TestCreateHoldValidation(t *testing.T) {
	fx := newFixture(t)
	identity := model.AnonymousRequester("a@x.com")

	tests := []struct {
		name   string
		mutate func(*model.CreateHoldRequest)
	}{
		{"missing service", func(r *model.CreateHoldRequest) { r.ServiceID = "" }},
		{"missing name", func(r *model.CreateHoldRequest) { r.RequesterName = "" }},
		{"bad date", func(r *model.CreateHoldRequest) { r.SelectedDate = "April 1st" }},
		{"unknown slot", func(r *model.CreateHoldRequest) { r.SelectedTime = "3:30 PM" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := holdRequest()
			tt.mutate(req)
			_, err := fx.svc.CreateHold(context.Background(), req, identity)
			assert.Equal(t, errors.CodeInvalidRequest, errors.CodeOf(err))
		})
	}
}

func TestCreateHoldSlotTaken(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.CreateHold(context.Background(), holdRequest(), model.AnonymousRequester("a@x.com"))
	require.NoError(t, err)

	// Identical triple from a different requester before the first expires.
	req := holdRequest()
	req.RequesterEmail = "b@x.com"
	_, err = fx.svc.CreateHold(context.Background(), req, model.AnonymousRequester("b@x.com"))
	assert.Equal(t, errors.CodeSlotTaken, errors.CodeOf(err))
}

func TestCreateHoldDuplicateRequester(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.CreateHold(context.Background(), holdRequest(), model.AnonymousRequester("a@x.com"))
	require.NoError(t, err)

	// Same email, different slot, first hold still live.
	req := holdRequest()
	req.SelectedTime = "5:00 PM"
	_, err = fx.svc.CreateHold(context.Background(), req, model.AnonymousRequester("a@x.com"))
	assert.Equal(t, errors.CodeDuplicateHold, errors.CodeOf(err))
}

func TestCreateHoldNarrowIdentity(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.CreateHold(context.Background(), holdRequest(), model.AnonymousRequester("a@x.com"))
	require.NoError(t, err)

	// Authenticated requester with the same email is a different identity
	// arm; the prior anonymous hold is not detected.
	req := holdRequest()
	req.SelectedTime = "5:00 PM"
	_, err = fx.svc.CreateHold(context.Background(), req, model.AuthenticatedRequester("user-1", "a@x.com"))
	require.NoError(t, err)
}

func TestCreateHoldBlockedSlot(t *testing.T) {
	fx := newFixture(t)
	fx.sched.blockedSlots["2026-04-01|2:00 PM"] = true

	_, err := fx.svc.CreateHold(context.Background(), holdRequest(), model.AnonymousRequester("a@x.com"))
	assert.Equal(t, errors.CodeSlotBlocked, errors.CodeOf(err))
}

func TestCreateHoldBlockedDay(t *testing.T) {
	fx := newFixture(t)
	fx.sched.blockedDays["2026-04-01"] = true

	_, err := fx.svc.CreateHold(context.Background(), holdRequest(), model.AnonymousRequester("a@x.com"))
	assert.Equal(t, errors.CodeSlotBlocked, errors.CodeOf(err))
}

func TestConfirmHold(t *testing.T) {
	fx := newFixture(t)
	identity := model.AnonymousRequester("a@x.com")

	resp, err := fx.svc.CreateHold(context.Background(), holdRequest(), identity)
	require.NoError(t, err)

	summary, err := fx.svc.Confirm(context.Background(), resp.HoldID, identity)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusConfirmed, summary.Status)
	assert.Equal(t, "tarot-reading", summary.ServiceID)

	stored, err := fx.repo.Get(context.Background(), resp.HoldID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusConfirmed, stored.Status)
	assert.Nil(t, stored.ExpiresAt)

	// A second confirm finds no HELD reservation.
	_, err = fx.svc.Confirm(context.Background(), resp.HoldID, identity)
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
}

func TestConfirmExpiredHold(t *testing.T) {
	fx := newFixture(t)
	identity := model.AnonymousRequester("a@x.com")

	resp, err := fx.svc.CreateHold(context.Background(), holdRequest(), identity)
	require.NoError(t, err)

	fx.clk.Advance(DefaultHoldTTL + time.Second)

	_, err = fx.svc.Confirm(context.Background(), resp.HoldID, identity)
	assert.Equal(t, errors.CodeExpired, errors.CodeOf(err))

	stored, err := fx.repo.Get(context.Background(), resp.HoldID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusCancelled, stored.Status)

	// The slot is free again for the same triple.
	req := holdRequest()
	req.RequesterEmail = "b@x.com"
	_, err = fx.svc.CreateHold(context.Background(), req, model.AnonymousRequester("b@x.com"))
	require.NoError(t, err)

	// A later confirm of the retired hold stays NOT_FOUND, not a second
	// cancellation.
	_, err = fx.svc.Confirm(context.Background(), resp.HoldID, identity)
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
}

func TestExpiredHoldFreesSlotWithoutConfirmAttempt(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.CreateHold(context.Background(), holdRequest(), model.AnonymousRequester("a@x.com"))
	require.NoError(t, err)

	fx.clk.Advance(DefaultHoldTTL + time.Second)

	// Nobody touched the expired hold; the occupancy predicate alone must
	// free the slot.
	taken, err := fx.svc.IsSlotTaken(context.Background(), "tarot-reading", "2026-04-01", "2:00 PM")
	require.NoError(t, err)
	assert.False(t, taken)

	req := holdRequest()
	req.RequesterEmail = "b@x.com"
	_, err = fx.svc.CreateHold(context.Background(), req, model.AnonymousRequester("b@x.com"))
	require.NoError(t, err)
}

func TestConfirmForbidden(t *testing.T) {
	fx := newFixture(t)
	owner := model.AuthenticatedRequester("user-1", "a@x.com")

	resp, err := fx.svc.CreateHold(context.Background(), holdRequest(), owner)
	require.NoError(t, err)

	_, err = fx.svc.Confirm(context.Background(), resp.HoldID, model.AuthenticatedRequester("user-2", "c@x.com"))
	assert.Equal(t, errors.CodeForbidden, errors.CodeOf(err))

	// Anonymous callers are trusted by possession of the hold id.
	_, err = fx.svc.Confirm(context.Background(), resp.HoldID, model.AnonymousRequester(""))
	require.NoError(t, err)
}

func TestReleaseHold(t *testing.T) {
	fx := newFixture(t)
	identity := model.AnonymousRequester("a@x.com")

	resp, err := fx.svc.CreateHold(context.Background(), holdRequest(), identity)
	require.NoError(t, err)

	require.NoError(t, fx.svc.ReleaseHold(context.Background(), resp.HoldID, identity))

	stored, err := fx.repo.Get(context.Background(), resp.HoldID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusCancelled, stored.Status)
	// Release leaves expiry in place; status alone gates occupancy.
	assert.NotNil(t, stored.ExpiresAt)

	// Second release on the same id.
	err = fx.svc.ReleaseHold(context.Background(), resp.HoldID, identity)
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
}

func TestReleaseHoldForbidden(t *testing.T) {
	fx := newFixture(t)

	resp, err := fx.svc.CreateHold(context.Background(), holdRequest(), model.AuthenticatedRequester("user-1", "a@x.com"))
	require.NoError(t, err)

	err = fx.svc.ReleaseHold(context.Background(), resp.HoldID, model.AuthenticatedRequester("user-2", "c@x.com"))
	assert.Equal(t, errors.CodeForbidden, errors.CodeOf(err))
}

func TestReleaseHoldUnknownID(t *testing.T) {
	fx := newFixture(t)

	err := fx.svc.ReleaseHold(context.Background(), uuid.New(), model.AnonymousRequester("a@x.com"))
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
}

func TestIsSlotTaken(t *testing.T) {
	fx := newFixture(t)

	taken, err := fx.svc.IsSlotTaken(context.Background(), "tarot-reading", "2026-04-01", "2:00 PM")
	require.NoError(t, err)
	assert.False(t, taken)

	_, err = fx.svc.CreateHold(context.Background(), holdRequest(), model.AnonymousRequester("a@x.com"))
	require.NoError(t, err)

	taken, err = fx.svc.IsSlotTaken(context.Background(), "tarot-reading", "2026-04-01", "2:00 PM")
	require.NoError(t, err)
	assert.True(t, taken)

	_, err = fx.svc.IsSlotTaken(context.Background(), "", "2026-04-01", "2:00 PM")
	assert.Equal(t, errors.CodeInvalidRequest, errors.CodeOf(err))
}

func TestHoldLifecycleEvents(t *testing.T) {
	fx := newFixture(t)
	identity := model.AnonymousRequester("a@x.com")

	resp, err := fx.svc.CreateHold(context.Background(), holdRequest(), identity)
	require.NoError(t, err)
	_, err = fx.svc.Confirm(context.Background(), resp.HoldID, identity)
	require.NoError(t, err)

	assert.Equal(t, []string{EventHoldCreated, EventConfirmed}, fx.emitter.events)
}
