package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Connect(Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "db.sqlite")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, EnsureSchema(context.Background(), db))
	return db
}

func insertUser(db *sqlx.DB, name string) error {
	_, err := db.Exec(`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, 'x', ?)`,
		name, name+"@example.com", time.Now().UTC())
	return err
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(Config{Driver: "mysql"})
	assert.Error(t, err)
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, EnsureSchema(context.Background(), db))
	require.NoError(t, insertUser(db, "alice"))
	require.NoError(t, EnsureSchema(context.Background(), db))

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 1, n)
}

func TestResetSchemaDropsData(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, insertUser(db, "alice"))
	require.NoError(t, ResetSchema(context.Background(), db))

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM users`))
	assert.Zero(t, n)
}

func TestTranslateSQLite(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, insertUser(db, "alice"))

	err := Translate(insertUser(db, "alice"))
	assert.ErrorIs(t, err, ErrConflict)

	_, err = db.Exec(`INSERT INTO tasks (title, status, priority, creator_id, created_at, updated_at) VALUES ('t', 'todo', 'low', 42, ?, ?)`,
		time.Now().UTC(), time.Now().UTC())
	assert.ErrorIs(t, Translate(err), ErrReference)
}

func TestTranslateSQLiteCascades(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, insertUser(db, "alice"))
	require.NoError(t, insertUser(db, "bob"))
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO tasks (title, status, priority, creator_id, assignee_id, created_at, updated_at) VALUES ('t', 'todo', 'low', 1, 2, ?, ?)`, now, now)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO comments (task_id, user_id, content, created_at) VALUES (1, 2, 'c', ?)`, now)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM users WHERE id = 2`)
	require.NoError(t, err)

	var assignee *int64
	require.NoError(t, db.Get(&assignee, `SELECT assignee_id FROM tasks WHERE id = 1`))
	assert.Nil(t, assignee, "assignee is cleared")
	var comments int
	require.NoError(t, db.Get(&comments, `SELECT COUNT(*) FROM comments`))
	assert.Zero(t, comments, "author's comments are removed")
}

func TestTranslatePostgres(t *testing.T) {
	tests := []struct {
		code pq.ErrorCode
		want error
	}{
		{"23505", ErrConflict},
		{"23503", ErrReference},
	}
	for _, tt := range tests {
		err := errors.Wrap(&pq.Error{Code: tt.code, Message: "violation"}, "insert")
		assert.ErrorIs(t, Translate(err), tt.want)
	}

	other := &pq.Error{Code: "42601"}
	assert.Same(t, other, Translate(other))
	assert.Nil(t, Translate(nil))
}

func TestSQLiteDSN(t *testing.T) {
	dsn := SQLiteDSN("/tmp/x.db")
	assert.Contains(t, dsn, "file:/tmp/x.db?")
	assert.Contains(t, dsn, "foreign_keys(1)")
}
