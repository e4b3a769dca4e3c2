package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/watch-rotation-scheduler/internal/model"
)

// CursorRepo persists content cursors keyed by (user, rotation group,
// content).
type CursorRepo struct {
	db *sql.DB
}

// NewCursorRepo returns a new CursorRepo bound to the given database.
func NewCursorRepo(db *sql.DB) *CursorRepo { return &CursorRepo{db: db} }

// ListForUserTx returns every cursor of the user across all scopes.
func (r *CursorRepo) ListForUserTx(ctx context.Context, tx *sql.Tx, userID uint64) ([]model.ContentCursor, error) {
	const q = `SELECT user_id, rotation_group_id, content_id, next_season, next_episode, aired, new_since_rerun,
                      last_season, last_episode, has_aired, total_episodes, default_duration_minutes, updated_at
               FROM content_cursors WHERE user_id = ?
               ORDER BY rotation_group_id, content_id`
	rows, err := tx.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ContentCursor
	for rows.Next() {
		var (
			c                         model.ContentCursor
			lastSeason, lastEp, total sql.NullInt64
		)
		if err := rows.Scan(
			&c.UserID, &c.RotationGroupID, &c.ContentID, &c.NextSeason, &c.NextEpisode, &c.Aired, &c.NewSinceRerun,
			&lastSeason, &lastEp, &c.HasAired, &total, &c.DefaultDurationMinutes, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		c.LastSeason = intPtr(lastSeason)
		c.LastEpisode = intPtr(lastEp)
		c.TotalEpisodes = intPtr(total)
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpsertBulkTx inserts or overwrites the given cursors in one statement.
// Passing an empty slice has no effect and returns nil.
func (r *CursorRepo) UpsertBulkTx(ctx context.Context, tx *sql.Tx, cursors []model.ContentCursor) error {
	if len(cursors) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO content_cursors (user_id, rotation_group_id, content_id, next_season, next_episode,
        aired, new_since_rerun, last_season, last_episode, has_aired, total_episodes, default_duration_minutes) VALUES `)
	args := make([]interface{}, 0, len(cursors)*12)
	for i, c := range cursors {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			c.UserID, c.RotationGroupID, c.ContentID, c.NextSeason, c.NextEpisode,
			c.Aired, c.NewSinceRerun, nullInt(c.LastSeason), nullInt(c.LastEpisode), c.HasAired,
			nullInt(c.TotalEpisodes), c.DefaultDurationMinutes,
		)
	}
	sb.WriteString(` ON DUPLICATE KEY UPDATE
        next_season = VALUES(next_season), next_episode = VALUES(next_episode), aired = VALUES(aired),
        new_since_rerun = VALUES(new_since_rerun), last_season = VALUES(last_season),
        last_episode = VALUES(last_episode), has_aired = VALUES(has_aired),
        total_episodes = VALUES(total_episodes), default_duration_minutes = VALUES(default_duration_minutes)`)
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
