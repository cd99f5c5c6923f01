package repo

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/task/entity"
	"github.com/ovaphlow/pitchfork/service-task-go/pkg/database"
)

const taskColumns = `id, title, description, status, priority, creator_id, assignee_id, due_date, created_at, updated_at`

// updatable maps patch keys to the columns they write.
var updatable = map[string]string{
	entity.FieldTitle:       "title",
	entity.FieldDescription: "description",
	entity.FieldStatus:      "status",
	entity.FieldPriority:    "priority",
	entity.FieldAssigneeID:  "assignee_id",
	entity.FieldDueDate:     "due_date",
}

// TaskRepo provides data access for the tasks table using sqlx.
type TaskRepo struct {
	db *sqlx.DB
}

func NewTaskRepo(db *sqlx.DB) *TaskRepo { return &TaskRepo{db: db} }

// List returns one page of tasks matching preds, newest first, together with
// the number of all tasks matching preds. Both queries run concurrently.
func (r *TaskRepo) List(ctx context.Context, preds []Predicate, page entity.Page) ([]entity.Task, int64, error) {
	lq, err := buildListQuery(preds, page)
	if err != nil {
		return nil, 0, err
	}

	tasks := []entity.Task{}
	var total int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := r.db.SelectContext(gctx, &tasks, r.db.Rebind(lq.Select), lq.SelectArgs...); err != nil {
			return errors.Wrap(err, "failed to list tasks")
		}
		return nil
	})
	g.Go(func() error {
		if err := r.db.GetContext(gctx, &total, r.db.Rebind(lq.Count), lq.CountArgs...); err != nil {
			return errors.Wrap(err, "failed to count tasks")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// GetByID fetches a task row or returns sql.ErrNoRows.
func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*entity.Task, error) {
	var t entity.Task
	if err := r.db.GetContext(ctx, &t, r.db.Rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "failed to get task %d", id)
	}
	return &t, nil
}

// Exists reports whether a task with the id exists.
func (r *TaskRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, r.db.Rebind(`SELECT 1 FROM tasks WHERE id = ? LIMIT 1`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, errors.Wrap(err, "failed to check task existence")
	}
	return true, nil
}

// Create inserts a task and returns its generated id.
func (r *TaskRepo) Create(ctx context.Context, t *entity.Task) (int64, error) {
	q := r.db.Rebind(`INSERT INTO tasks (title, description, status, priority, creator_id, assignee_id, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	var id int64
	err := r.db.QueryRowxContext(ctx, q,
		t.Title, columnValue(t.Description), t.Status, t.Priority, t.CreatorID,
		columnValue(t.AssigneeID), columnValue(t.DueDate), t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(database.Translate(err), "failed to create task")
	}
	t.ID = id
	return id, nil
}

// Update writes the patch fields plus updated_at. Keys without a column
// mapping are skipped; columns are written in sorted order so the statement
// text is stable for a given key set.
func (r *TaskRepo) Update(ctx context.Context, id int64, patch entity.Patch, now time.Time) error {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		if _, ok := updatable[k]; ok {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+2)
	for _, k := range keys {
		sets = append(sets, updatable[k]+" = ?")
		args = append(args, columnValue(patch[k]))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, now.UTC(), id)

	q := r.db.Rebind(`UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrapf(database.Translate(err), "failed to update task %d", id)
	}
	return nil
}

// SetAssignee writes assignee_id (nil clears it).
func (r *TaskRepo) SetAssignee(ctx context.Context, id int64, assigneeID *int64, now time.Time) error {
	q := r.db.Rebind(`UPDATE tasks SET assignee_id = ?, updated_at = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, q, columnValue(assigneeID), now.UTC(), id); err != nil {
		return errors.Wrapf(database.Translate(err), "failed to assign task %d", id)
	}
	return nil
}

// Delete removes a task and returns the number of rows removed.
func (r *TaskRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to delete task %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get rows affected")
	}
	return n, nil
}

// columnValue dereferences the pointer types used for nullable columns so
// drivers receive either NULL or a plain value. Times are stored in UTC.
func columnValue(v any) any {
	switch x := v.(type) {
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case *int64:
		if x == nil {
			return nil
		}
		return *x
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC()
	case time.Time:
		return x.UTC()
	default:
		return v
	}
}
