package stats

import (
	"context"
	"math"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/stats/entity"
	statsrepo "github.com/ovaphlow/pitchfork/service-task-go/internal/stats/repo"
	taskentity "github.com/ovaphlow/pitchfork/service-task-go/internal/task/entity"
)

// Counts holds the raw results of the aggregate queries.
type Counts struct {
	Total      int64
	ByStatus   []entity.GroupCount
	ByPriority []entity.GroupCount
	Overdue    int64
	ByAssignee []entity.AssigneeCount
}

type StatsService struct {
	repo  *statsrepo.StatsRepo
	clock clockwork.Clock
}

func NewStatsService(r *statsrepo.StatsRepo, clock clockwork.Clock) *StatsService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &StatsService{repo: r, clock: clock}
}

// Get runs the aggregate queries concurrently and merges them. If any query
// fails no report is returned.
func (s *StatsService) Get(ctx context.Context) (*entity.Report, error) {
	var c Counts
	now := s.clock.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		c.Total, err = s.repo.TotalTasks(gctx)
		return err
	})
	g.Go(func() (err error) {
		c.ByStatus, err = s.repo.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		c.ByPriority, err = s.repo.CountByPriority(gctx)
		return err
	})
	g.Go(func() (err error) {
		c.Overdue, err = s.repo.Overdue(gctx, now)
		return err
	})
	g.Go(func() (err error) {
		c.ByAssignee, err = s.repo.ByAssignee(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to get stats")
	}

	r := Merge(c)
	return &r, nil
}

// Merge builds the report from query results. Every status and priority is
// present in the maps even when no task has it.
func Merge(c Counts) entity.Report {
	r := entity.Report{
		TotalTasks:      c.Total,
		TasksByStatus:   seed(taskentity.Statuses),
		TasksByPriority: seed(taskentity.Priorities),
		OverdueTasks:    c.Overdue,
		TasksByAssignee: c.ByAssignee,
	}
	for _, g := range c.ByStatus {
		r.TasksByStatus[g.Key] = g.Count
	}
	for _, g := range c.ByPriority {
		r.TasksByPriority[g.Key] = g.Count
	}
	if r.TasksByAssignee == nil {
		r.TasksByAssignee = []entity.AssigneeCount{}
	}
	r.CompletionRate = CompletionRate(r.TasksByStatus[taskentity.StatusDone], c.Total)
	return r
}

// CompletionRate is done/total as a rounded percentage, 0 for no tasks.
func CompletionRate(done, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

func seed(keys []string) map[string]int64 {
	m := make(map[string]int64, len(keys))
	for _, k := range keys {
		m[k] = 0
	}
	return m
}
