package models

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type sqlEventMetricsRepo struct{ db *sql.DB }

func NewSQLEventMetricsRepository(db *sql.DB) EventMetricsRepository {
	return &sqlEventMetricsRepo{db}
}

// ForEvents aggregates registration and like counters per event id.
// Events with no counter rows are absent from the map; callers treat
// that as zeros (the feed's left-join-with-defaults).
func (r *sqlEventMetricsRepo) ForEvents(ctx context.Context, eventIDs []string) (map[string]EventMetrics, error) {
	out := make(map[string]EventMetrics, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT event_id::text,
		       COUNT(*) FILTER (WHERE kind = 'registration'),
		       COUNT(*) FILTER (WHERE kind = 'like'),
		       MAX(created_at)
		FROM (
			SELECT event_id, 'registration' AS kind, created_at
			FROM registrations WHERE event_id = ANY($1::uuid[])
			UNION ALL
			SELECT event_id, 'like', created_at
			FROM event_likes WHERE event_id = ANY($1::uuid[])
		) counters
		GROUP BY event_id`, pq.Array(eventIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var m EventMetrics
		var updated time.Time
		if err := rows.Scan(&id, &m.Registrations, &m.Likes, &updated); err != nil {
			return nil, err
		}
		m.UpdatedAt = updated
		out[id] = m
	}
	return out, rows.Err()
}
