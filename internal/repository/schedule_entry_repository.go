package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/iliyamo/watch-rotation-scheduler/internal/model"
)

// insertBatchSize caps the rows per INSERT so a long range never hits the
// placeholder limit of a prepared statement.
const insertBatchSize = 500

// ScheduleEntryRepo stores and queries schedule entries by owner and
// date.  Dates are YYYY-MM-DD strings in the owner's local time.
type ScheduleEntryRepo struct {
	db *sql.DB
}

// NewScheduleEntryRepo returns a new ScheduleEntryRepo bound to the given database.
func NewScheduleEntryRepo(db *sql.DB) *ScheduleEntryRepo { return &ScheduleEntryRepo{db: db} }

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const entryColumns = `id, user_id, content_id, season, episode, DATE_FORMAT(slot_date, '%Y-%m-%d'), track,
       start_time, end_time, timezone_offset, source_type, rotation_group_id, watched, is_rerun,
       generation_id, cursor_before, created_at`

// ListByDateRange returns the owner's entries with start <= slot_date <=
// end ordered by date, start time and track.
func (r *ScheduleEntryRepo) ListByDateRange(ctx context.Context, userID uint64, start, end string) ([]model.ScheduleEntry, error) {
	return listInRange(ctx, r.db, userID, start, end)
}

// ListInRangeTx is ListByDateRange inside the caller's transaction.
func (r *ScheduleEntryRepo) ListInRangeTx(ctx context.Context, tx *sql.Tx, userID uint64, start, end string) ([]model.ScheduleEntry, error) {
	return listInRange(ctx, tx, userID, start, end)
}

func listInRange(ctx context.Context, q queryer, userID uint64, start, end string) ([]model.ScheduleEntry, error) {
	query := `SELECT ` + entryColumns + `
              FROM schedule_entries
              WHERE user_id = ? AND slot_date BETWEEN ? AND ?
              ORDER BY slot_date, start_time, track, id`
	rows, err := q.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ScheduleEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEntry(rows *sql.Rows) (model.ScheduleEntry, error) {
	var (
		e                      model.ScheduleEntry
		season, episode, group sql.NullInt64
		generationID           sql.NullString
		cursorRaw              []byte
	)
	err := rows.Scan(
		&e.ID, &e.UserID, &e.ContentID, &season, &episode, &e.SlotDate, &e.Track,
		&e.StartTime, &e.EndTime, &e.TimezoneOffset, &e.SourceType, &group, &e.Watched, &e.IsRerun,
		&generationID, &cursorRaw, &e.CreatedAt,
	)
	if err != nil {
		return e, err
	}
	if season.Valid {
		v := int(season.Int64)
		e.Season = &v
	}
	if episode.Valid {
		v := int(episode.Int64)
		e.Episode = &v
	}
	if group.Valid {
		v := uint64(group.Int64)
		e.RotationGroupID = &v
	}
	if generationID.Valid {
		v := generationID.String
		e.GenerationID = &v
	}
	if len(cursorRaw) > 0 {
		var snap model.CursorSnapshot
		if err := json.Unmarshal(cursorRaw, &snap); err != nil {
			return e, err
		}
		e.CursorBefore = &snap
	}
	return e, nil
}

// FirstGeneratedAfterTx scans the owner's generated entries dated after end
// in schedule order and keeps the cursor snapshot of the first entry of
// each cursor scope.
func (r *ScheduleEntryRepo) FirstGeneratedAfterTx(ctx context.Context, tx *sql.Tx, userID uint64, end string) (map[model.CursorKey]model.CursorSnapshot, error) {
	const q = `SELECT COALESCE(rotation_group_id, 0), content_id, cursor_before
               FROM schedule_entries
               WHERE user_id = ? AND slot_date > ? AND source_type IN ('auto', 'rotation') AND cursor_before IS NOT NULL
               ORDER BY slot_date, start_time, track, id`
	rows, err := tx.QueryContext(ctx, q, userID, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[model.CursorKey]model.CursorSnapshot{}
	for rows.Next() {
		var (
			key model.CursorKey
			raw []byte
		)
		if err := rows.Scan(&key.RotationGroupID, &key.ContentID, &raw); err != nil {
			return nil, err
		}
		if _, seen := out[key]; seen {
			continue
		}
		var snap model.CursorSnapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, err
		}
		out[key] = snap
	}
	return out, rows.Err()
}

// DeleteGeneratedInRangeTx removes the owner's auto and rotation entries
// dated within [start, end].  Manual entries are never touched.  It returns
// the number of rows removed.
func (r *ScheduleEntryRepo) DeleteGeneratedInRangeTx(ctx context.Context, tx *sql.Tx, userID uint64, start, end string) (int64, error) {
	const q = `DELETE FROM schedule_entries
               WHERE user_id = ? AND slot_date BETWEEN ? AND ? AND source_type IN ('auto', 'rotation')`
	res, err := tx.ExecContext(ctx, q, userID, start, end)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateBulkTx inserts entries in multi-row statements within the provided
// transaction.  Passing an empty slice has no effect and returns nil.
// Generated ids are not read back.
func (r *ScheduleEntryRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, entries []model.ScheduleEntry) error {
	for start := 0; start < len(entries); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := insertEntries(ctx, tx, entries[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func insertEntries(ctx context.Context, tx *sql.Tx, entries []model.ScheduleEntry) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO schedule_entries (user_id, content_id, season, episode, slot_date, track,
        start_time, end_time, timezone_offset, source_type, rotation_group_id, watched, is_rerun,
        generation_id, cursor_before) VALUES `)
	args := make([]interface{}, 0, len(entries)*15)
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		var cursor interface{}
		if e.CursorBefore != nil {
			b, err := json.Marshal(e.CursorBefore)
			if err != nil {
				return err
			}
			cursor = string(b)
		}
		args = append(args,
			e.UserID, e.ContentID, nullInt(e.Season), nullInt(e.Episode), e.SlotDate, e.Track,
			e.StartTime, e.EndTime, e.TimezoneOffset, e.SourceType, nullUint(e.RotationGroupID),
			e.Watched, e.IsRerun, nullString(e.GenerationID), cursor,
		)
	}
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

func nullInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullUint(p *uint64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullString(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
