package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/watch-rotation-scheduler/internal/catalog"
	"github.com/iliyamo/watch-rotation-scheduler/internal/model"
)

// ContentRepo reads the episode inventory of catalog content.  It is the
// database-backed catalog.Source.
type ContentRepo struct {
	db *sql.DB
}

// NewContentRepo returns a new ContentRepo bound to the given database.
func NewContentRepo(db *sql.DB) *ContentRepo { return &ContentRepo{db: db} }

// GetEpisodeInventory returns the episode count, season boundaries and
// default duration of a content item.  Movies have no episode count.  When
// contents.total_episodes is NULL for a series the sum of its seasons is
// used.  Unknown content yields catalog.ErrNotFound.
func (r *ContentRepo) GetEpisodeInventory(ctx context.Context, contentID uint64) (catalog.Inventory, error) {
	const q = `SELECT id, kind, total_episodes, default_duration_minutes FROM contents WHERE id = ?`
	var (
		c     model.Content
		total sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, q, contentID).Scan(&c.ID, &c.Kind, &total, &c.DefaultDurationMinutes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Inventory{}, fmt.Errorf("content %d: %w", contentID, catalog.ErrNotFound)
		}
		return catalog.Inventory{}, err
	}
	inv := catalog.Inventory{ContentID: c.ID, DefaultDurationMinutes: c.DefaultDurationMinutes}
	if c.Kind == model.ContentKindMovie {
		return inv, nil
	}

	const qs = `SELECT season_number, episode_count FROM content_seasons WHERE content_id = ? ORDER BY season_number`
	rows, err := r.db.QueryContext(ctx, qs, contentID)
	if err != nil {
		return catalog.Inventory{}, err
	}
	defer rows.Close()
	sum := 0
	for rows.Next() {
		var s model.ContentSeason
		if err := rows.Scan(&s.SeasonNumber, &s.EpisodeCount); err != nil {
			return catalog.Inventory{}, err
		}
		inv.SeasonBoundaries = append(inv.SeasonBoundaries, s.EpisodeCount)
		sum += s.EpisodeCount
	}
	if err := rows.Err(); err != nil {
		return catalog.Inventory{}, err
	}

	n := sum
	if total.Valid {
		n = int(total.Int64)
	}
	inv.TotalEpisodes = &n
	return inv, nil
}
