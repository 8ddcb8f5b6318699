package postgres

import (
	"context"
	"fmt"

	"github.com/velvetarcana/booking-api/internal/model"
)

func (r *scheduleBlockRepository) FindForDate(ctx context.Context, date string, dayOfWeek int) ([]*model.ScheduleBlock, error) {
	query := `
		SELECT id, is_recurring, day_of_week, date, time, created_at
		FROM schedule_blocks
		WHERE (is_recurring = TRUE AND day_of_week = $1)
		OR (is_recurring = FALSE AND date = $2)
	`
	var blocks []*model.ScheduleBlock
	err := r.db.SelectContext(ctx, &blocks, query, dayOfWeek, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule blocks: %w", err)
	}
	return blocks, nil
}
