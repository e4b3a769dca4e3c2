package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/watch-rotation-scheduler/internal/model"
)

// ScheduleWriter runs the read-delete-insert cycle of a generation run
// inside one transaction that holds the owner's schedule lock.  Two
// sessions for the same owner never overlap; sessions of different owners
// do not block each other.
type ScheduleWriter struct {
	db      *sql.DB
	entries *ScheduleEntryRepo
	cursors *CursorRepo
}

// NewScheduleWriter returns a ScheduleWriter bound to the given database.
func NewScheduleWriter(db *sql.DB) *ScheduleWriter {
	return &ScheduleWriter{db: db, entries: NewScheduleEntryRepo(db), cursors: NewCursorRepo(db)}
}

// WriteSession is an open transaction holding one owner's schedule lock.
// Callers must end it with Commit or Rollback.
type WriteSession struct {
	w       *ScheduleWriter
	tx      *sql.Tx
	ownerID uint64
	done    bool
}

// Begin opens a transaction and takes the owner's lock row, creating it on
// first use.  It blocks while another session of the same owner is open.
// Deadlocks and lock wait timeouts are reported wrapped in ErrConflict.
//
// The transaction itself is not bound to ctx: cancelling ctx aborts the
// statement in flight, but a session whose statements run under a
// non-cancellable context always reaches Commit or Rollback.
func (w *ScheduleWriter) Begin(ctx context.Context, ownerID uint64) (*WriteSession, error) {
	tx, err := w.db.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `INSERT IGNORE INTO schedule_locks (user_id) VALUES (?)`, ownerID); err != nil {
		return nil, classify(err)
	}
	var locked uint64
	if err := tx.QueryRowContext(ctx, `SELECT user_id FROM schedule_locks WHERE user_id = ? FOR UPDATE`, ownerID).Scan(&locked); err != nil {
		return nil, classify(err)
	}
	committed = true // ownership of the transaction moves to the session
	return &WriteSession{w: w, tx: tx, ownerID: ownerID}, nil
}

// Cursors returns every cursor of the owner.
func (s *WriteSession) Cursors(ctx context.Context) ([]model.ContentCursor, error) {
	out, err := s.w.cursors.ListForUserTx(ctx, s.tx, s.ownerID)
	return out, classify(err)
}

// EntriesInRange returns the owner's entries of every source type dated
// within [start, end].
func (s *WriteSession) EntriesInRange(ctx context.Context, start, end string) ([]model.ScheduleEntry, error) {
	out, err := s.w.entries.ListInRangeTx(ctx, s.tx, s.ownerID, start, end)
	return out, classify(err)
}

// FirstGeneratedAfter returns, for every cursor scope with generated
// entries dated after end, the cursor snapshot of the earliest such entry.
func (s *WriteSession) FirstGeneratedAfter(ctx context.Context, end string) (map[model.CursorKey]model.CursorSnapshot, error) {
	out, err := s.w.entries.FirstGeneratedAfterTx(ctx, s.tx, s.ownerID, end)
	return out, classify(err)
}

// ReplaceGenerated deletes the owner's auto and rotation entries within
// [start, end] and inserts batch in their place.  It returns the number
// of superseded rows.
func (s *WriteSession) ReplaceGenerated(ctx context.Context, start, end string, batch []model.ScheduleEntry) (int64, error) {
	deleted, err := s.w.entries.DeleteGeneratedInRangeTx(ctx, s.tx, s.ownerID, start, end)
	if err != nil {
		return 0, classify(err)
	}
	if err := s.w.entries.CreateBulkTx(ctx, s.tx, batch); err != nil {
		return 0, classify(err)
	}
	return deleted, nil
}

// SaveCursors upserts the given cursors.
func (s *WriteSession) SaveCursors(ctx context.Context, cursors []model.ContentCursor) error {
	return classify(s.w.cursors.UpsertBulkTx(ctx, s.tx, cursors))
}

// Commit makes every write of the session durable and releases the lock.
func (s *WriteSession) Commit() error {
	if s.done {
		return sql.ErrTxDone
	}
	s.done = true
	return classify(s.tx.Commit())
}

// Rollback discards the session.  It is a no-op after Commit so it can be
// deferred unconditionally.
func (s *WriteSession) Rollback() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
