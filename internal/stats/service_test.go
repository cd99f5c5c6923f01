package stats

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/stats/entity"
	statsrepo "github.com/ovaphlow/pitchfork/service-task-go/internal/stats/repo"
	"github.com/ovaphlow/pitchfork/service-task-go/internal/testutil"
)

func TestMerge(t *testing.T) {
	r := Merge(Counts{
		Total:      4,
		ByStatus:   []entity.GroupCount{{Key: "todo", Count: 2}, {Key: "in_progress", Count: 1}, {Key: "done", Count: 1}},
		ByPriority: []entity.GroupCount{{Key: "high", Count: 4}},
		Overdue:    1,
		ByAssignee: []entity.AssigneeCount{{UserID: 1, Username: "alice", TaskCount: 3}},
	})

	assert.Equal(t, int64(4), r.TotalTasks)
	assert.Equal(t, map[string]int64{"todo": 2, "in_progress": 1, "done": 1}, r.TasksByStatus)
	assert.Equal(t, map[string]int64{"low": 0, "medium": 0, "high": 4}, r.TasksByPriority)
	assert.Equal(t, 25, r.CompletionRate)
	assert.Equal(t, int64(1), r.OverdueTasks)
	assert.Len(t, r.TasksByAssignee, 1)
}

func TestMergeEmpty(t *testing.T) {
	r := Merge(Counts{})

	assert.Zero(t, r.TotalTasks)
	assert.Zero(t, r.CompletionRate)
	assert.Equal(t, map[string]int64{"todo": 0, "in_progress": 0, "done": 0}, r.TasksByStatus)
	assert.Equal(t, map[string]int64{"low": 0, "medium": 0, "high": 0}, r.TasksByPriority)
	assert.NotNil(t, r.TasksByAssignee)
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		done, total int64
		want        int
	}{
		{0, 0, 0},
		{1, 4, 25},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompletionRate(tt.done, tt.total), "%d/%d", tt.done, tt.total)
	}
}

func TestGet(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewStatsService(statsrepo.NewStatsRepo(db), clockwork.NewFakeClockAt(testutil.Epoch))

	alice := testutil.InsertUser(t, db, "alice")
	bob := testutil.InsertUser(t, db, "bob")
	carol := testutil.InsertUser(t, db, "carol")
	past := testutil.Epoch.Add(-24 * time.Hour)
	future := testutil.Epoch.Add(24 * time.Hour)

	testutil.InsertTask(t, db, testutil.Task{Status: "todo", Priority: "high", CreatorID: alice, AssigneeID: &bob, DueDate: &past})
	testutil.InsertTask(t, db, testutil.Task{Status: "todo", Priority: "low", CreatorID: alice, AssigneeID: &bob, DueDate: &future})
	testutil.InsertTask(t, db, testutil.Task{Status: "in_progress", CreatorID: alice, AssigneeID: &alice})
	testutil.InsertTask(t, db, testutil.Task{Status: "done", CreatorID: alice, DueDate: &past})

	r, err := svc.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), r.TotalTasks)
	assert.Equal(t, map[string]int64{"todo": 2, "in_progress": 1, "done": 1}, r.TasksByStatus)
	assert.Equal(t, map[string]int64{"low": 1, "medium": 2, "high": 1}, r.TasksByPriority)
	assert.Equal(t, 25, r.CompletionRate)
	assert.Equal(t, int64(1), r.OverdueTasks, "only past-due and unfinished counts")
	assert.Equal(t, []entity.AssigneeCount{
		{UserID: bob, Username: "bob", TaskCount: 2},
		{UserID: alice, Username: "alice", TaskCount: 1},
		{UserID: carol, Username: "carol", TaskCount: 0},
	}, r.TasksByAssignee)
}

func TestGetEmptyDatabase(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewStatsService(statsrepo.NewStatsRepo(db), clockwork.NewFakeClockAt(testutil.Epoch))

	r, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Zero(t, r.TotalTasks)
	assert.Zero(t, r.CompletionRate)
	assert.Equal(t, map[string]int64{"todo": 0, "in_progress": 0, "done": 0}, r.TasksByStatus)
	assert.Empty(t, r.TasksByAssignee)
}

func TestGetFailsAsWhole(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewStatsService(statsrepo.NewStatsRepo(db), nil)
	require.NoError(t, db.Close())

	r, err := svc.Get(context.Background())
	assert.Nil(t, r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get stats")
}
