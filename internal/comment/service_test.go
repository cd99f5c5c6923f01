package comment

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commentrepo "github.com/ovaphlow/pitchfork/service-task-go/internal/comment/repo"
	taskrepo "github.com/ovaphlow/pitchfork/service-task-go/internal/task/repo"
	"github.com/ovaphlow/pitchfork/service-task-go/internal/testutil"
	userrepo "github.com/ovaphlow/pitchfork/service-task-go/internal/user/repo"
)

func newService(t *testing.T) (*CommentService, *clockwork.FakeClock, int64, int64) {
	t.Helper()
	db := testutil.NewDB(t)
	clock := clockwork.NewFakeClockAt(testutil.Epoch)
	svc := NewCommentService(commentrepo.NewCommentRepo(db), taskrepo.NewTaskRepo(db), userrepo.NewUserRepo(db), clock)
	alice := testutil.InsertUser(t, db, "alice")
	taskID := testutil.InsertTask(t, db, testutil.Task{CreatorID: alice})
	return svc, clock, alice, taskID
}

func TestCreateReturnsAuthorFields(t *testing.T) {
	svc, _, alice, taskID := newService(t)

	c, err := svc.Create(context.Background(), taskID, alice, "  looks good  ")
	require.NoError(t, err)
	assert.Positive(t, c.ID)
	assert.Equal(t, taskID, c.TaskID)
	assert.Equal(t, alice, c.UserID)
	assert.Equal(t, "looks good", c.Content)
	require.NotNil(t, c.Username)
	assert.Equal(t, "alice", *c.Username)
	require.NotNil(t, c.Email)
	assert.Equal(t, "alice@example.com", *c.Email)
	assert.True(t, testutil.Epoch.Equal(c.CreatedAt))
}

func TestCreateCheckOrder(t *testing.T) {
	svc, _, alice, taskID := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 999, 999, "hi")
	assert.ErrorIs(t, err, ErrTaskNotFound, "missing task wins over missing user")

	_, err = svc.Create(ctx, 999, alice, "hi")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = svc.Create(ctx, taskID, 999, "hi")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Create(ctx, taskID, alice, "   ")
	assert.ErrorIs(t, err, ErrContentRequired)
}

func TestListOldestFirst(t *testing.T) {
	svc, clock, alice, taskID := newService(t)
	ctx := context.Background()

	var ids []int64
	for _, body := range []string{"one", "two", "three"} {
		c, err := svc.Create(ctx, taskID, alice, body)
		require.NoError(t, err)
		ids = append(ids, c.ID)
		clock.Advance(time.Minute)
	}

	comments, err := svc.ListByTask(ctx, taskID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	for i, c := range comments {
		assert.Equal(t, ids[i], c.ID)
	}
	assert.True(t, comments[0].CreatedAt.Before(comments[2].CreatedAt))

	ok, err := svc.TaskExists(ctx, taskID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.TaskExists(ctx, taskID+1)
	require.NoError(t, err)
	assert.False(t, ok)

	empty, err := svc.ListByTask(ctx, taskID+1)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetMissing(t *testing.T) {
	svc, _, _, _ := newService(t)
	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}
