package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/watch-rotation-scheduler/internal/catalog"
	"github.com/iliyamo/watch-rotation-scheduler/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestContentRepo_SeriesInventory(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q(`FROM contents WHERE id = ?`)).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "total_episodes", "default_duration_minutes"}).
			AddRow(7, "SERIES", nil, 24))
	mock.ExpectQuery(q(`FROM content_seasons WHERE content_id = ? ORDER BY season_number`)).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"season_number", "episode_count"}).AddRow(1, 12).AddRow(2, 13))

	inv, err := NewContentRepo(db).GetEpisodeInventory(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, inv.Movie())
	assert.Equal(t, 25, *inv.TotalEpisodes)
	assert.Equal(t, []int{12, 13}, inv.SeasonBoundaries)
	assert.Equal(t, 24, inv.DefaultDurationMinutes)
}

func TestContentRepo_MovieHasNoEpisodes(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q(`FROM contents WHERE id = ?`)).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "total_episodes", "default_duration_minutes"}).
			AddRow(3, "MOVIE", nil, 120))

	inv, err := NewContentRepo(db).GetEpisodeInventory(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, inv.Movie())
	assert.Equal(t, 120, inv.DefaultDurationMinutes)
}

func TestContentRepo_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q(`FROM contents WHERE id = ?`)).WithArgs(99).WillReturnError(sql.ErrNoRows)

	_, err := NewContentRepo(db).GetEpisodeInventory(context.Background(), 99)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestQueueRepo_GetQueueOrder(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q(`FROM queue_entries WHERE user_id = ? ORDER BY position, id`)).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"content_id"}).AddRow(11).AddRow(4).AddRow(9))

	ids, err := NewQueueRepo(db).GetQueueOrder(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []uint64{11, 4, 9}, ids)
}

func TestRotationGroupRepo_GetRotationGroup(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q(`FROM rotation_groups WHERE id = ?`)).WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "rotation_type", "include_reruns", "rerun_frequency"}).
			AddRow(2, 5, "weeknights", "weighted", true, "often"))
	mock.ExpectQuery(q(`FROM rotation_group_items`)).WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"group_id", "content_id", "position", "weight"}).
			AddRow(2, 10, 1, 3).AddRow(2, 12, 2, 0))

	g, err := NewRotationGroupRepo(db).GetRotationGroup(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "weighted", g.RotationType)
	assert.True(t, g.IncludeReruns)
	require.Len(t, g.Items, 2)
	assert.Equal(t, 3, g.Items[0].Weight)
	assert.Equal(t, 1, g.Items[1].Weight)
}

func TestRotationGroupRepo_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q(`FROM rotation_groups WHERE id = ?`)).WithArgs(8).WillReturnError(sql.ErrNoRows)

	_, err := NewRotationGroupRepo(db).GetRotationGroup(context.Background(), 8)
	assert.ErrorIs(t, err, ErrNotFound)
}

var entryCols = []string{
	"id", "user_id", "content_id", "season", "episode", "slot_date", "track", "start_time", "end_time",
	"timezone_offset", "source_type", "rotation_group_id", "watched", "is_rerun", "generation_id",
	"cursor_before", "created_at",
}

func TestScheduleEntryRepo_ListByDateRange(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(q(`WHERE user_id = ? AND slot_date BETWEEN ? AND ?`)).WithArgs(5, "2024-05-01", "2024-05-02").
		WillReturnRows(sqlmock.NewRows(entryCols).
			AddRow(1, 5, 10, 1, 3, "2024-05-01", 0, "18:00", "18:24", "+09:00", "rotation", 2, false, true, "gen-1",
				`{"next_season":1,"next_episode":3,"aired":2,"new_since_rerun":2,"has_aired":true}`, now).
			AddRow(2, 5, 11, nil, nil, "2024-05-01", 0, "18:30", "19:00", "+09:00", "manual", nil, true, false, nil, nil, now))

	out, err := NewScheduleEntryRepo(db).ListByDateRange(context.Background(), 5, "2024-05-01", "2024-05-02")
	require.NoError(t, err)
	require.Len(t, out, 2)

	gen := out[0]
	assert.Equal(t, 3, *gen.Episode)
	assert.Equal(t, uint64(2), gen.CursorGroupID())
	assert.True(t, gen.Generated())
	require.NotNil(t, gen.CursorBefore)
	assert.Equal(t, 2, gen.CursorBefore.Aired)
	assert.Equal(t, "gen-1", *gen.GenerationID)

	manual := out[1]
	assert.Nil(t, manual.Season)
	assert.Nil(t, manual.CursorBefore)
	assert.False(t, manual.Generated())
	assert.True(t, manual.Watched)
}

func TestScheduleEntryRepo_CreateBulkTx(t *testing.T) {
	db, mock := newMock(t)
	ep := 1
	gen := "gen-1"
	entries := []model.ScheduleEntry{
		{UserID: 5, ContentID: 10, Season: &ep, Episode: &ep, SlotDate: "2024-05-01", StartTime: "18:00", EndTime: "18:24",
			TimezoneOffset: "+00:00", SourceType: model.SourceAuto, GenerationID: &gen, CursorBefore: &model.CursorSnapshot{NextSeason: 1, NextEpisode: 1}},
		{UserID: 5, ContentID: 11, SlotDate: "2024-05-01", StartTime: "18:30", EndTime: "19:00",
			TimezoneOffset: "+00:00", SourceType: model.SourceAuto, GenerationID: &gen},
	}

	mock.ExpectBegin()
	mock.ExpectExec(q(`INSERT INTO schedule_entries`)).
		WithArgs(
			5, 10, 1, 1, "2024-05-01", 0, "18:00", "18:24", "+00:00", "auto", nil, false, false, "gen-1", sqlmock.AnyArg(),
			5, 11, nil, nil, "2024-05-01", 0, "18:30", "19:00", "+00:00", "auto", nil, false, false, "gen-1", nil,
		).
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, NewScheduleEntryRepo(db).CreateBulkTx(context.Background(), tx, entries))
	require.NoError(t, tx.Commit())
}

func TestScheduleEntryRepo_CreateBulkTxEmpty(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	tx, err := db.Begin()
	require.NoError(t, err)
	assert.NoError(t, NewScheduleEntryRepo(db).CreateBulkTx(context.Background(), tx, nil))
	require.NoError(t, tx.Rollback())
}

func TestCursorRepo_UpsertBulkTx(t *testing.T) {
	db, mock := newMock(t)
	last := 4
	mock.ExpectBegin()
	mock.ExpectExec(`(?s)` + q(`INSERT INTO content_cursors`) + `.*` + q(`ON DUPLICATE KEY UPDATE`)).
		WithArgs(5, 0, 10, 1, 5, 4, 4, 1, last, true, 12, 24).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	one, total := 1, 12
	err = NewCursorRepo(db).UpsertBulkTx(context.Background(), tx, []model.ContentCursor{{
		UserID: 5, ContentID: 10, NextSeason: 1, NextEpisode: 5, Aired: 4, NewSinceRerun: 4,
		LastSeason: &one, LastEpisode: &last, HasAired: true, TotalEpisodes: &total, DefaultDurationMinutes: 24,
	}})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
}

func expectLock(mock sqlmock.Sqlmock, owner uint64) {
	mock.ExpectBegin()
	mock.ExpectExec(q(`INSERT IGNORE INTO schedule_locks (user_id) VALUES (?)`)).WithArgs(owner).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q(`SELECT user_id FROM schedule_locks WHERE user_id = ? FOR UPDATE`)).WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(owner))
}

func TestScheduleWriter_SessionReplacesGenerated(t *testing.T) {
	db, mock := newMock(t)
	expectLock(mock, 5)
	mock.ExpectExec(q(`DELETE FROM schedule_entries`)).WithArgs(5, "2024-05-01", "2024-05-01").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(q(`INSERT INTO schedule_entries`)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	s, err := NewScheduleWriter(db).Begin(ctx, 5)
	require.NoError(t, err)
	defer s.Rollback()

	deleted, err := s.ReplaceGenerated(ctx, "2024-05-01", "2024-05-01", []model.ScheduleEntry{{
		UserID: 5, ContentID: 1, SlotDate: "2024-05-01", StartTime: "18:00", EndTime: "18:30",
		TimezoneOffset: "+00:00", SourceType: model.SourceAuto,
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	require.NoError(t, s.Commit())
	assert.NoError(t, s.Rollback(), "rollback after commit is a no-op")
}

func TestScheduleWriter_DeadlockIsConflict(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q(`INSERT IGNORE INTO schedule_locks`)).WithArgs(5).
		WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"})
	mock.ExpectRollback()

	_, err := NewScheduleWriter(db).Begin(context.Background(), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	var me *mysql.MySQLError
	assert.True(t, errors.As(err, &me))
}

func TestScheduleWriter_FailedInsertRollsBack(t *testing.T) {
	db, mock := newMock(t)
	expectLock(mock, 5)
	mock.ExpectExec(q(`DELETE FROM schedule_entries`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q(`INSERT INTO schedule_entries`)).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	ctx := context.Background()
	s, err := NewScheduleWriter(db).Begin(ctx, 5)
	require.NoError(t, err)
	_, err = s.ReplaceGenerated(ctx, "2024-05-01", "2024-05-01", []model.ScheduleEntry{{UserID: 5, ContentID: 1, SourceType: model.SourceAuto}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConflict)
	require.NoError(t, s.Rollback())
}

func TestClassify_LockWaitTimeout(t *testing.T) {
	err := classify(&mysql.MySQLError{Number: 1205})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Nil(t, classify(nil))
	plain := errors.New("boom")
	assert.Same(t, plain, classify(plain))
}
