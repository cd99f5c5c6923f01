package task

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/task/entity"
	taskrepo "github.com/ovaphlow/pitchfork/service-task-go/internal/task/repo"
)

var (
	ErrNotFound         = errors.New("task not found")
	ErrAssigneeNotFound = errors.New("assignee not found")
	ErrCreatorNotFound  = errors.New("creator not found")
	ErrCreatorRequired  = errors.New("creator is required")
	ErrTitleRequired    = errors.New("title is required")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidPriority  = errors.New("invalid priority")
)

// QueryDefaults is the pagination applied when a list request leaves the
// window unspecified. MaxLimit is advisory; it bounds input validation.
type QueryDefaults struct {
	Limit    int
	Offset   int
	MaxLimit int
}

// DefaultQuery returns limit 50, offset 0, max 100.
func DefaultQuery() QueryDefaults {
	return QueryDefaults{Limit: 50, Offset: 0, MaxLimit: 100}
}

// Resolve fills the absent parts of a page request.
func (d QueryDefaults) Resolve(p entity.PageRequest) entity.Page {
	page := entity.Page{Limit: d.Limit, Offset: d.Offset}
	if p.Limit != nil && *p.Limit > 0 {
		page.Limit = *p.Limit
	}
	if p.Offset != nil && *p.Offset >= 0 {
		page.Offset = *p.Offset
	}
	return page
}

// UserChecker answers whether a user id refers to an existing user.
type UserChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// TaskService implements task listing and mutation on top of TaskRepo.
type TaskService struct {
	repo     *taskrepo.TaskRepo
	users    UserChecker
	clock    clockwork.Clock
	defaults QueryDefaults
}

func NewTaskService(r *taskrepo.TaskRepo, users UserChecker, clock clockwork.Clock, defaults QueryDefaults) *TaskService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if defaults.Limit < 1 {
		defaults = DefaultQuery()
	}
	if defaults.MaxLimit < defaults.Limit {
		defaults.MaxLimit = defaults.Limit
	}
	return &TaskService{repo: r, users: users, clock: clock, defaults: defaults}
}

func (s *TaskService) Defaults() QueryDefaults { return s.defaults }

func (s *TaskService) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

// List returns one page of tasks matching f, newest first, and the size of
// the whole filtered set.
func (s *TaskService) List(ctx context.Context, f entity.Filter, p entity.PageRequest) (*entity.ListResult, error) {
	page := s.defaults.Resolve(p)
	items, total, err := s.repo.List(ctx, taskrepo.Predicates(f), page)
	if err != nil {
		return nil, err
	}
	return &entity.ListResult{Items: items, Total: total, Page: page}, nil
}

// Get returns a task by id or ErrNotFound.
func (s *TaskService) Get(ctx context.Context, id int64) (*entity.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Create inserts a task with status todo and, unless given, priority medium.
// The creator and a non-null assignee must exist. The stored row is returned.
func (s *TaskService) Create(ctx context.Context, in entity.CreateInput) (*entity.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	priority := in.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}
	if !entity.ValidPriority(priority) {
		return nil, ErrInvalidPriority
	}
	if in.CreatorID < 1 {
		return nil, ErrCreatorRequired
	}
	if err := s.requireUser(ctx, in.CreatorID, ErrCreatorNotFound); err != nil {
		return nil, err
	}
	if in.AssigneeID != nil {
		if err := s.requireUser(ctx, *in.AssigneeID, ErrAssigneeNotFound); err != nil {
			return nil, err
		}
	}

	now := s.now()
	t := &entity.Task{
		Title:       title,
		Description: in.Description,
		Status:      entity.StatusTodo,
		Priority:    priority,
		CreatorID:   in.CreatorID,
		AssigneeID:  in.AssigneeID,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Update applies the whitelisted fields of patch. A patch with no such field
// returns the stored task untouched.
func (s *TaskService) Update(ctx context.Context, id int64, patch entity.Patch) (*entity.Task, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, err := s.checkPatch(ctx, patch)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return existing, nil
	}

	if err := s.repo.Update(ctx, id, fields, s.now()); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// checkPatch keeps the whitelisted keys and rejects values a caller could
// only have produced by bypassing validation.
func (s *TaskService) checkPatch(ctx context.Context, patch entity.Patch) (entity.Patch, error) {
	fields := entity.Patch{}
	for k, v := range patch {
		switch k {
		case entity.FieldTitle:
			title, ok := v.(string)
			if !ok || strings.TrimSpace(title) == "" {
				return nil, ErrTitleRequired
			}
			fields[k] = strings.TrimSpace(title)
		case entity.FieldStatus:
			status, ok := v.(string)
			if !ok || !entity.ValidStatus(status) {
				return nil, ErrInvalidStatus
			}
			fields[k] = status
		case entity.FieldPriority:
			priority, ok := v.(string)
			if !ok || !entity.ValidPriority(priority) {
				return nil, ErrInvalidPriority
			}
			fields[k] = priority
		case entity.FieldAssigneeID:
			assignee, _ := v.(*int64)
			if assignee != nil {
				if err := s.requireUser(ctx, *assignee, ErrAssigneeNotFound); err != nil {
					return nil, err
				}
			}
			fields[k] = assignee
		case entity.FieldDescription:
			desc, _ := v.(*string)
			fields[k] = desc
		case entity.FieldDueDate:
			due, _ := v.(*time.Time)
			fields[k] = due
		}
	}
	return fields, nil
}

// Delete removes a task; false means there was nothing to remove.
// Comments go with the task through the foreign key.
func (s *TaskService) Delete(ctx context.Context, id int64) (bool, error) {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Assign sets or, with a nil assignee, clears the task's assignee.
func (s *TaskService) Assign(ctx context.Context, id int64, assigneeID *int64) (*entity.Task, error) {
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	if assigneeID != nil {
		if err := s.requireUser(ctx, *assigneeID, ErrAssigneeNotFound); err != nil {
			return nil, err
		}
	}
	if err := s.repo.SetAssignee(ctx, id, assigneeID, s.now()); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *TaskService) requireUser(ctx context.Context, id int64, missing error) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return missing
	}
	return nil
}
