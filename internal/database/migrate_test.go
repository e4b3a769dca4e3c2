package database

import (
	"context"
	"errors"
	"io/fs"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_AreCollectedByGoose(t *testing.T) {
	goose.SetBaseFS(migrations)
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	ms, err := goose.CollectMigrations("migrations", 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, int64(1), ms[0].Version)
}

func TestMigrations_CreateEveryTable(t *testing.T) {
	raw, err := fs.ReadFile(migrations, "migrations/00001_init.sql")
	require.NoError(t, err)
	text := string(raw)

	up := regexp.MustCompile(`(?m)^-- \+goose Up$`).FindStringIndex(text)
	down := regexp.MustCompile(`(?m)^-- \+goose Down$`).FindStringIndex(text)
	require.NotNil(t, up)
	require.NotNil(t, down)
	require.Less(t, up[0], down[0])

	created := map[string]bool{}
	for _, m := range regexp.MustCompile(`CREATE TABLE IF NOT EXISTS (\w+)`).FindAllStringSubmatch(text[:down[0]], -1) {
		created[m[1]] = true
	}
	for _, table := range []string{
		"contents", "content_seasons", "queue_entries", "rotation_groups",
		"rotation_group_items", "content_cursors", "schedule_entries", "schedule_locks",
	} {
		assert.True(t, created[table], table)
		assert.Contains(t, text[down[0]:], table, "down drops %s", table)
	}
}

func TestMigrate_WrapsDatabaseErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	down := errors.New("connection refused")
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(".*").WillReturnError(down)
	mock.ExpectExec(".*").WillReturnError(down)

	err = Migrate(context.Background(), db, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate:")
}
