// Package testutil provides SQLite-backed fixtures for storage tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-task-go/pkg/database"
)

// Epoch is a fixed instant fixtures and fake clocks start from.
var Epoch = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

// NewDB opens a fresh SQLite database in t.TempDir with the schema applied.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		DSN:    database.SQLiteDSN(filepath.Join(t.TempDir(), "test.db")),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.EnsureSchema(context.Background(), db))
	return db
}

// InsertUser adds a user named username (email username@example.com) and
// returns its id. The password hash is a placeholder.
func InsertUser(t *testing.T, db *sqlx.DB, username string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRowx(
		`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
		username, username+"@example.com", "x", Epoch,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// Task holds the columns InsertTask writes. Zero Status and Priority become
// todo and medium; a zero CreatedAt becomes Epoch.
type Task struct {
	Title      string
	Status     string
	Priority   string
	CreatorID  int64
	AssigneeID *int64
	DueDate    *time.Time
	CreatedAt  time.Time
}

// InsertTask writes a task row directly and returns its id.
func InsertTask(t *testing.T, db *sqlx.DB, task Task) int64 {
	t.Helper()
	if task.Title == "" {
		task.Title = "task"
	}
	if task.Status == "" {
		task.Status = "todo"
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = Epoch
	}
	var due any
	if task.DueDate != nil {
		due = task.DueDate.UTC()
	}
	var assignee any
	if task.AssigneeID != nil {
		assignee = *task.AssigneeID
	}
	var id int64
	err := db.QueryRowx(
		`INSERT INTO tasks (title, status, priority, creator_id, assignee_id, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		task.Title, task.Status, task.Priority, task.CreatorID, assignee, due, task.CreatedAt.UTC(), task.CreatedAt.UTC(),
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
