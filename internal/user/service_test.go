package user

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/testutil"
	"github.com/ovaphlow/pitchfork/service-task-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-task-go/internal/user/repo"
)

func newService(t *testing.T) (*UserService, *userrepo.UserRepo, *clockwork.FakeClock) {
	t.Helper()
	db := testutil.NewDB(t)
	repo := userrepo.NewUserRepo(db)
	clock := clockwork.NewFakeClockAt(testutil.Epoch)
	return NewUserService(repo, BcryptHasher{Cost: bcrypt.MinCost}, clock), repo, clock
}

func TestCreateHashesPassword(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, entity.CreateInput{Username: "alice", Email: " Alice@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Positive(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Empty(t, u.PasswordHash)
	assert.True(t, testutil.Epoch.Equal(u.CreatedAt))

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, BcryptHasher{}.Verify(stored.PasswordHash, "secret1"))
	assert.False(t, BcryptHasher{}.Verify(stored.PasswordHash, "secret2"))
}

func TestCreateUniqueness(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, entity.CreateInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   entity.CreateInput
		want error
	}{
		{name: "both collide reports username", in: entity.CreateInput{Username: "alice", Email: "alice@example.com", Password: "secret1"}, want: ErrUsernameTaken},
		{name: "username", in: entity.CreateInput{Username: "alice", Email: "other@example.com", Password: "secret1"}, want: ErrUsernameTaken},
		{name: "email differs only in case", in: entity.CreateInput{Username: "bob", Email: "ALICE@example.com", Password: "secret1"}, want: ErrEmailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetAndList(t *testing.T) {
	svc, _, clock := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, entity.CreateInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := svc.Create(ctx, entity.CreateInput{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Empty(t, got.PasswordHash)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, second.ID, users[0].ID, "newest first")
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
	}

	ok, err := svc.Exists(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
