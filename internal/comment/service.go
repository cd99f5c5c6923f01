package comment

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/comment/entity"
	commentrepo "github.com/ovaphlow/pitchfork/service-task-go/internal/comment/repo"
)

var (
	ErrNotFound        = errors.New("comment not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrContentRequired = errors.New("content is required")
)

// Checker answers whether an id refers to an existing row.
type Checker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// CommentService manages comments nested under a task.
type CommentService struct {
	repo  *commentrepo.CommentRepo
	tasks Checker
	users Checker
	clock clockwork.Clock
}

func NewCommentService(r *commentrepo.CommentRepo, tasks, users Checker, clock clockwork.Clock) *CommentService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CommentService{repo: r, tasks: tasks, users: users, clock: clock}
}

// TaskExists reports whether the parent task exists.
func (s *CommentService) TaskExists(ctx context.Context, taskID int64) (bool, error) {
	return s.tasks.Exists(ctx, taskID)
}

// ListByTask returns the thread under a task, oldest first. Callers check
// the task with TaskExists first.
func (s *CommentService) ListByTask(ctx context.Context, taskID int64) ([]entity.Comment, error) {
	return s.repo.ListByTask(ctx, taskID)
}

// Get returns a comment with its author fields or ErrNotFound.
func (s *CommentService) Get(ctx context.Context, id int64) (*entity.Comment, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// Create adds a comment. The task is checked before the author, so a request
// naming neither reports ErrTaskNotFound.
func (s *CommentService) Create(ctx context.Context, taskID, userID int64, content string) (*entity.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrContentRequired
	}
	ok, err := s.tasks.Exists(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTaskNotFound
	}
	ok, err = s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	c := &entity.Comment{
		TaskID:    taskID,
		UserID:    userID,
		Content:   content,
		CreatedAt: s.clock.Now().UTC().Truncate(time.Microsecond),
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
