package model

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusHeld      ReservationStatus = "HELD"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
)

// Reservation is a claim on one (service, date, time) slot. While HELD the
// claim is exclusive only until ExpiresAt; expiry is computed at read time,
// never stored as a transition.
type Reservation struct {
	ID             uuid.UUID         `db:"id" json:"id"`
	ServiceID      string            `db:"service_id" json:"service_id"`
	SelectedDate   string            `db:"selected_date" json:"selected_date"`
	SelectedTime   string            `db:"selected_time" json:"selected_time"`
	Status         ReservationStatus `db:"status" json:"status"`
	RequesterID    *string           `db:"requester_id" json:"requester_id,omitempty"`
	RequesterEmail string            `db:"requester_email" json:"requester_email"`
	RequesterName  string            `db:"requester_name" json:"requester_name"`
	Notes          string            `db:"notes" json:"notes,omitempty"`
	AddOn          bool              `db:"add_on" json:"add_on"`
	TotalPrice     int64             `db:"total_price" json:"total_price"`
	ExpiresAt      *time.Time        `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
}

// Occupies reports whether the reservation blocks its slot as of now.
// Expired holds do not occupy.
func (r *Reservation) Occupies(now time.Time) bool {
	switch r.Status {
	case ReservationStatusConfirmed, ReservationStatusCompleted:
		return true
	case ReservationStatusHeld:
		return r.ExpiresAt != nil && r.ExpiresAt.After(now)
	default:
		return false
	}
}

type CreateHoldRequest struct {
	ServiceID      string `json:"service_id" binding:"required"`
	SelectedDate   string `json:"selected_date" binding:"required"`
	SelectedTime   string `json:"selected_time" binding:"required,timeslot"`
	RequesterName  string `json:"requester_name" binding:"required"`
	RequesterEmail string `json:"requester_email" binding:"required,email"`
	Notes          string `json:"notes" binding:"max=1000"`
	AddOn          bool   `json:"add_on"`
	TotalPrice     int64  `json:"total_price" binding:"min=0"`
}

// HoldResponse carries the absolute expiry in epoch milliseconds so clients
// can render a countdown without further round-trips.
type HoldResponse struct {
	HoldID    uuid.UUID `json:"hold_id"`
	ExpiresAt int64     `json:"expires_at"`
}

type AvailabilityResponse struct {
	AvailableSlots []string `json:"available_slots"`
	BlockedSlots   []string `json:"blocked_slots"`
}

type SlotTakenResponse struct {
	Taken bool `json:"taken"`
}

type BookingSummary struct {
	ID           uuid.UUID         `json:"id"`
	ServiceID    string            `json:"service_id"`
	SelectedDate string            `json:"selected_date"`
	SelectedTime string            `json:"selected_time"`
	Status       ReservationStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
}
