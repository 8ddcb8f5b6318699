package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/velvetarcana/booking-api/internal/model"
	"github.com/velvetarcana/booking-api/pkg/errors"
)

const uniqueViolation = "23505"

const reservationColumns = `
	id, service_id, selected_date, selected_time, status,
	requester_id, requester_email, requester_name, notes,
	add_on, total_price, expires_at, created_at
`

func (r *reservationRepository) Create(ctx context.Context, reservation *model.Reservation, now time.Time) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// Retire expired holds on this slot first so the occupancy index only
		// ever rejects genuinely live claims.
		retire := `
			UPDATE reservations
			SET status = 'CANCELLED'
			WHERE service_id = $1 AND selected_date = $2 AND selected_time = $3
			AND status = 'HELD' AND expires_at <= $4
		`
		if _, err := tx.ExecContext(ctx, retire,
			reservation.ServiceID,
			reservation.SelectedDate,
			reservation.SelectedTime,
			now,
		); err != nil {
			return fmt.Errorf("failed to retire expired holds: %w", err)
		}

		insert := `
			INSERT INTO reservations (` + reservationColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`
		_, err := tx.ExecContext(ctx, insert,
			reservation.ID,
			reservation.ServiceID,
			reservation.SelectedDate,
			reservation.SelectedTime,
			reservation.Status,
			reservation.RequesterID,
			reservation.RequesterEmail,
			reservation.RequesterName,
			reservation.Notes,
			reservation.AddOn,
			reservation.TotalPrice,
			reservation.ExpiresAt,
			reservation.CreatedAt,
		)
		if err != nil {
			var pqErr *pq.Error
			if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				// A concurrent writer won the slot between check and insert.
				return errors.SlotTaken()
			}
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		return nil
	})
}

func (r *reservationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	var reservation model.Reservation
	err := r.db.GetContext(ctx, &reservation, query, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &reservation, nil
}

func (r *reservationRepository) FindActiveHold(ctx context.Context, identity model.RequesterIdentity, now time.Time) (*model.Reservation, error) {
	var query string
	var key interface{}
	if identity.Authenticated() {
		query = `
			SELECT ` + reservationColumns + `
			FROM reservations
			WHERE status = 'HELD' AND expires_at > $1 AND requester_id = $2
			LIMIT 1
		`
		key = *identity.UserID
	} else {
		query = `
			SELECT ` + reservationColumns + `
			FROM reservations
			WHERE status = 'HELD' AND expires_at > $1 AND requester_email = $2
			LIMIT 1
		`
		key = identity.Email
	}

	var reservation model.Reservation
	err := r.db.GetContext(ctx, &reservation, query, now, key)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active hold: %w", err)
	}
	return &reservation, nil
}

func (r *reservationRepository) IsSlotOccupied(ctx context.Context, serviceID, date, timeLabel string, now time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE service_id = $1 AND selected_date = $2 AND selected_time = $3
			AND (
				status IN ('CONFIRMED', 'COMPLETED')
				OR (status = 'HELD' AND expires_at > $4)
			)
		)
	`
	var occupied bool
	err := r.db.GetContext(ctx, &occupied, query, serviceID, date, timeLabel, now)
	if err != nil {
		return false, fmt.Errorf("failed to check slot occupancy: %w", err)
	}
	return occupied, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus) error {
	query := `UPDATE reservations SET status = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *reservationRepository) Confirm(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE reservations
		SET status = 'CONFIRMED', expires_at = NULL
		WHERE id = $1 AND status = 'HELD'
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to confirm reservation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *reservationRepository) ReleaseExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE reservations
		SET status = 'CANCELLED'
		WHERE status = 'HELD' AND expires_at <= $1
	`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to release expired holds: %w", err)
	}
	return result.RowsAffected()
}

func (r *reservationRepository) ListForDate(ctx context.Context, serviceID, date string) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE service_id = $1 AND selected_date = $2
		ORDER BY created_at ASC
	`
	var reservations []*model.Reservation
	err := r.db.SelectContext(ctx, &reservations, query, serviceID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}
