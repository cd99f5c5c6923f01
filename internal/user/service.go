package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-task-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-task-go/pkg/database"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation. bcrypt salts every hash itself.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
)

// UserService orchestrates registration and lookup.
type UserService struct {
	repo   *userrepo.UserRepo
	hasher PasswordHasher
	clock  clockwork.Clock
}

func NewUserService(r *userrepo.UserRepo, hasher PasswordHasher, clock clockwork.Clock) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 10}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &UserService{repo: r, hasher: hasher, clock: clock}
}

// Create registers a user. Username uniqueness is checked before email, so a
// request colliding on both reports the username. The password is hashed
// before it touches storage and the result carries no credential.
func (s *UserService) Create(ctx context.Context, in entity.CreateInput) (*entity.User, error) {
	username := strings.TrimSpace(in.Username)
	email := NormalizeEmail(in.Email)

	taken, err := s.repo.UsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}
	taken, err = s.repo.EmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now().UTC().Truncate(time.Microsecond),
	}
	id, err := s.repo.Create(ctx, u)
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, database.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Get returns a user by id or ErrNotFound.
func (s *UserService) Get(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

// List returns all users, newest first, without credentials.
func (s *UserService) List(ctx context.Context) ([]entity.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// Exists reports whether a user with the id exists.
func (s *UserService) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// NormalizeEmail trims and lower-cases an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
