package repository

import (
	"context"
	"database/sql"
)

// QueueRepo reads personal watch queues.
type QueueRepo struct {
	db *sql.DB
}

// NewQueueRepo returns a new QueueRepo bound to the given database.
func NewQueueRepo(db *sql.DB) *QueueRepo { return &QueueRepo{db: db} }

// GetQueueOrder returns the content ids of the user's queue in queue order
// (position, then insertion id).  An empty queue is an empty slice.
func (r *QueueRepo) GetQueueOrder(ctx context.Context, userID uint64) ([]uint64, error) {
	const q = `SELECT content_id FROM queue_entries WHERE user_id = ? ORDER BY position, id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
