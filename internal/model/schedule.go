package model

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleBlock is an operator-imposed blackout. Recurring blocks apply every
// week on DayOfWeek (0=Sunday); one-off blocks apply to a single Date. A nil
// Time blocks the entire day. Blocks are managed by the admin surface and are
// read-only to the reservation core.
type ScheduleBlock struct {
	ID          uuid.UUID `db:"id" json:"id"`
	IsRecurring bool      `db:"is_recurring" json:"is_recurring"`
	DayOfWeek   *int      `db:"day_of_week" json:"day_of_week,omitempty"`
	Date        *string   `db:"date" json:"date,omitempty"`
	Time        *string   `db:"time" json:"time,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func (b *ScheduleBlock) BlocksWholeDay() bool {
	return b.Time == nil
}
