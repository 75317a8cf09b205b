package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"emocare/backend/internal/suggestion"
)

// UserMessageStats rolls up the user's own messages across all sessions by
// hour of day in the configured time zone.
func (s *Store) UserMessageStats(ctx context.Context, userID string) (suggestion.Stats, error) {
	var stats suggestion.Stats
	err := s.withConn(ctx, "message stats", func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(
			ctx,
			`SELECT CAST(EXTRACT(HOUR FROM m."createdAt" AT TIME ZONE $2::text) AS int) AS h,
			        COUNT(*)::int,
			        COALESCE(SUM(char_length(m.content)), 0)::bigint,
			        COALESCE(SUM(char_length(m.content) - char_length(replace(m.content, '!', ''))), 0)::bigint
			 FROM "Message" m
			 JOIN "ChatSession" s ON s."sessionId" = m."sessionId"
			 WHERE s."userId" = $1 AND m.author = 'user'
			 GROUP BY 1`,
			userID,
			s.timezone,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var hour, count int
			var chars, exclamations int64
			if err := rows.Scan(&hour, &count, &chars, &exclamations); err != nil {
				return err
			}
			if hour < 0 || hour >= len(stats.Counts) {
				continue
			}
			stats.Counts[hour] += count
			stats.Chars += chars
			stats.Exclamations += exclamations
		}
		return rows.Err()
	})
	if err != nil {
		return suggestion.Stats{}, err
	}
	return stats, nil
}
