package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/watch-rotation-scheduler/internal/model"
)

// RotationGroupRepo reads rotation groups and their members.
type RotationGroupRepo struct {
	db *sql.DB
}

// NewRotationGroupRepo returns a new RotationGroupRepo bound to the given database.
func NewRotationGroupRepo(db *sql.DB) *RotationGroupRepo { return &RotationGroupRepo{db: db} }

// GetRotationGroup loads a group with its policy and its items in group
// order.  A missing group yields ErrNotFound.  Weights below 1 are read
// as 1.
func (r *RotationGroupRepo) GetRotationGroup(ctx context.Context, groupID uint64) (*model.RotationGroup, error) {
	const q = `SELECT id, user_id, name, rotation_type, include_reruns, rerun_frequency
               FROM rotation_groups WHERE id = ?`
	var g model.RotationGroup
	err := r.db.QueryRowContext(ctx, q, groupID).Scan(
		&g.ID, &g.UserID, &g.Name, &g.RotationType, &g.IncludeReruns, &g.RerunFrequency,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	const qi = `SELECT group_id, content_id, position, weight FROM rotation_group_items
                WHERE group_id = ? ORDER BY position, content_id`
	rows, err := r.db.QueryContext(ctx, qi, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it model.RotationGroupItem
		if err := rows.Scan(&it.GroupID, &it.ContentID, &it.Position, &it.Weight); err != nil {
			return nil, err
		}
		if it.Weight < 1 {
			it.Weight = 1
		}
		g.Items = append(g.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &g, nil
}
