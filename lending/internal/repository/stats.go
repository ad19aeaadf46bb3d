package repository

import (
	"context"

	"github.com/bookhive/lending-service/lending/internal/model"
	"github.com/bookhive/lending-service/pkg/kafka"
)

func (r *repository) RecordEvent(ctx context.Context, event kafka.LendingEvent) error {
	q := `
insert into lending_events (timestamp, username, record_uid, book_uid, event_type)
values ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, q,
		event.Timestamp, event.UserName, event.RecordUid, event.BookUid, event.EventType)
	return err
}

func (r *repository) GetStats(ctx context.Context) (model.StatsInfo, error) {
	const q = `
	select username,
	       coalesce(count(*) filter (where event_type = 'BORROWED'), 0) as borrows,
	       coalesce(count(*) filter (where event_type = 'RETURNED'), 0) as returns,
	       max(timestamp) as last_event
	from lending_events
	group by username
	order by username
`
	stats := make([]model.UserStats, 0)
	if err := r.db.SelectContext(ctx, &stats, q); err != nil {
		return model.StatsInfo{}, err
	}
	return model.StatsInfo{Data: stats}, nil
}
