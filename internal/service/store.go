package service

import (
	"context"

	"github.com/iliyamo/watch-rotation-scheduler/internal/catalog"
	"github.com/iliyamo/watch-rotation-scheduler/internal/model"
	"github.com/iliyamo/watch-rotation-scheduler/internal/repository"
)

//go:generate mockgen -destination=mocks/mock_collaborators.go -package=mocks github.com/iliyamo/watch-rotation-scheduler/internal/service Catalog,QueueSource,GroupSource

// Catalog answers episode inventory lookups.
type Catalog interface {
	catalog.Source
}

// QueueSource reads a user's queue order.
type QueueSource interface {
	GetQueueOrder(ctx context.Context, userID uint64) ([]uint64, error)
}

// GroupSource reads rotation groups.
type GroupSource interface {
	GetRotationGroup(ctx context.Context, groupID uint64) (*model.RotationGroup, error)
}

// Store opens write sessions holding the per-owner schedule lock.
type Store interface {
	Begin(ctx context.Context, ownerID uint64) (Session, error)
}

// Session is one locked transaction of a generation run.
type Session interface {
	Cursors(ctx context.Context) ([]model.ContentCursor, error)
	EntriesInRange(ctx context.Context, start, end string) ([]model.ScheduleEntry, error)
	FirstGeneratedAfter(ctx context.Context, end string) (map[model.CursorKey]model.CursorSnapshot, error)
	ReplaceGenerated(ctx context.Context, start, end string, batch []model.ScheduleEntry) (int64, error)
	SaveCursors(ctx context.Context, cursors []model.ContentCursor) error
	Commit() error
	Rollback() error
}

type sqlStore struct {
	w *repository.ScheduleWriter
}

// NewSQLStore adapts the MySQL schedule writer to Store.
func NewSQLStore(w *repository.ScheduleWriter) Store { return sqlStore{w: w} }

func (s sqlStore) Begin(ctx context.Context, ownerID uint64) (Session, error) {
	ws, err := s.w.Begin(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return ws, nil
}
