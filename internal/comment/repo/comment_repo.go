package repo

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/comment/entity"
	"github.com/ovaphlow/pitchfork/service-task-go/pkg/database"
)

// comments joined with their author; the author may have been removed
const commentSelect = `SELECT c.id, c.task_id, c.user_id, c.content, c.created_at, u.username, u.email
	FROM comments c LEFT JOIN users u ON u.id = c.user_id`

type CommentRepo struct {
	db *sqlx.DB
}

func NewCommentRepo(db *sqlx.DB) *CommentRepo { return &CommentRepo{db: db} }

// ListByTask returns a task's comments, oldest first.
func (r *CommentRepo) ListByTask(ctx context.Context, taskID int64) ([]entity.Comment, error) {
	comments := []entity.Comment{}
	q := r.db.Rebind(commentSelect + ` WHERE c.task_id = ? ORDER BY c.created_at ASC, c.id ASC`)
	if err := r.db.SelectContext(ctx, &comments, q, taskID); err != nil {
		return nil, errors.Wrapf(err, "failed to list comments of task %d", taskID)
	}
	return comments, nil
}

// GetByID fetches a comment or returns sql.ErrNoRows.
func (r *CommentRepo) GetByID(ctx context.Context, id int64) (*entity.Comment, error) {
	var c entity.Comment
	if err := r.db.GetContext(ctx, &c, r.db.Rebind(commentSelect+` WHERE c.id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "failed to get comment %d", id)
	}
	return &c, nil
}

func (r *CommentRepo) Create(ctx context.Context, c *entity.Comment) (int64, error) {
	q := r.db.Rebind(`INSERT INTO comments (task_id, user_id, content, created_at) VALUES (?, ?, ?, ?) RETURNING id`)
	var id int64
	if err := r.db.QueryRowxContext(ctx, q, c.TaskID, c.UserID, c.Content, c.CreatedAt.UTC()).Scan(&id); err != nil {
		return 0, errors.Wrap(database.Translate(err), "failed to create comment")
	}
	c.ID = id
	return id, nil
}
