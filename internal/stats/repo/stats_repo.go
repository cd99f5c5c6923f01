package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/stats/entity"
)

// StatsRepo runs the aggregate queries behind the statistics report. Each
// method is a single independent read.
type StatsRepo struct {
	db *sqlx.DB
}

func NewStatsRepo(db *sqlx.DB) *StatsRepo { return &StatsRepo{db: db} }

func (r *StatsRepo) TotalTasks(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM tasks`); err != nil {
		return 0, errors.Wrap(err, "failed to count tasks")
	}
	return n, nil
}

func (r *StatsRepo) CountByStatus(ctx context.Context) ([]entity.GroupCount, error) {
	return r.groupCount(ctx, "status")
}

func (r *StatsRepo) CountByPriority(ctx context.Context) ([]entity.GroupCount, error) {
	return r.groupCount(ctx, "priority")
}

// column is one of the fixed names above, never caller input.
func (r *StatsRepo) groupCount(ctx context.Context, column string) ([]entity.GroupCount, error) {
	rows := []entity.GroupCount{}
	q := `SELECT ` + column + ` AS group_key, COUNT(*) AS group_count FROM tasks GROUP BY ` + column
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrapf(err, "failed to count tasks by %s", column)
	}
	return rows, nil
}

// Overdue counts unfinished tasks whose due date is strictly before now.
func (r *StatsRepo) Overdue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	q := r.db.Rebind(`SELECT COUNT(*) FROM tasks WHERE due_date IS NOT NULL AND due_date < ? AND status <> 'done'`)
	if err := r.db.GetContext(ctx, &n, q, now.UTC()); err != nil {
		return 0, errors.Wrap(err, "failed to count overdue tasks")
	}
	return n, nil
}

// ByAssignee lists every user with the number of tasks assigned to them,
// busiest first.
func (r *StatsRepo) ByAssignee(ctx context.Context) ([]entity.AssigneeCount, error) {
	rows := []entity.AssigneeCount{}
	q := `SELECT u.id AS user_id, u.username, COUNT(t.id) AS task_count
		FROM users u LEFT JOIN tasks t ON t.assignee_id = u.id
		GROUP BY u.id, u.username
		ORDER BY task_count DESC, u.id ASC`
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "failed to count tasks by assignee")
	}
	return rows, nil
}
