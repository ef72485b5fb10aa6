package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"glucolog/domain"
	"glucolog/entities"
	"glucolog/internal/logging"
	"glucolog/pkg/jwt"
	"glucolog/pkg/storage"
)

type fixedCounter int64

func (c fixedCounter) CountMeals(context.Context, uuid.UUID) (int64, error) {
	return int64(c), nil
}

// brokenRepository fails every call like an unreachable database.
type brokenRepository struct{}

var errConnRefused = errors.New("dial tcp: connection refused")

func (brokenRepository) InitSchema(context.Context) error { return errConnRefused }
func (brokenRepository) CreateUser(context.Context, *entities.User) (*entities.User, error) {
	return nil, errConnRefused
}
func (brokenRepository) GetUserByEmail(context.Context, string) (*entities.User, error) {
	return nil, errConnRefused
}
func (brokenRepository) GetUserByID(context.Context, uuid.UUID) (*entities.User, error) {
	return nil, errConnRefused
}
func (brokenRepository) UpdateName(context.Context, uuid.UUID, string) (*entities.User, error) {
	return nil, errConnRefused
}

func newTestUserService(repo UserRepository, meals MealCounter) (UserService, jwt.JWTService) {
	tokens := jwt.NewJWTService("test-secret", time.Hour)
	svc := NewUserService(repo, tokens, meals, logging.NewNopLogger()).(*userService)
	svc.hashCost = bcrypt.MinCost
	return svc, tokens
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	svc, tokens := newTestUserService(NewInMemoryUserRepository(), fixedCounter(0))
	ctx := context.Background()

	registered, err := svc.Register(ctx, domain.RegisterRequest{Email: "Ana@Example.com", Password: "secret1", Name: " Ana "})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", registered.User.Email)
	assert.Equal(t, "Ana", registered.User.Name)

	id, err := tokens.GetUserIDByToken(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, id)

	loggedIn, err := svc.Login(ctx, domain.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	svc, _ := newTestUserService(NewInMemoryUserRepository(), fixedCounter(0))
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Email: "ana@example.com", Password: "secret1", Name: "Ana"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, domain.RegisterRequest{Email: "ANA@example.com", Password: "other12", Name: "Ana 2"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestUserService_LoginFailures(t *testing.T) {
	svc, _ := newTestUserService(NewInMemoryUserRepository(), fixedCounter(0))
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Email: "ana@example.com", Password: "secret1", Name: "Ana"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUserService_ProfileAndUpdate(t *testing.T) {
	svc, _ := newTestUserService(NewInMemoryUserRepository(), fixedCounter(4))
	ctx := context.Background()

	registered, err := svc.Register(ctx, domain.RegisterRequest{Email: "ana@example.com", Password: "secret1", Name: "Ana"})
	require.NoError(t, err)

	profile, err := svc.GetProfile(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), profile.MealCount)
	assert.Equal(t, "ana@example.com", profile.Email)

	updated, err := svc.UpdateProfile(ctx, registered.User.ID, domain.UpdateProfileRequest{Name: "Ana Maria"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)

	_, err = svc.GetProfile(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = svc.GetProfile(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrParseUUID)
}

func TestUserService_FallsBackToMemoryWhenDatabaseFails(t *testing.T) {
	latch := storage.NewLatch()
	repo := NewFallbackUserRepository(brokenRepository{}, NewInMemoryUserRepository(), latch)
	svc, _ := newTestUserService(repo, fixedCounter(0))
	ctx := context.Background()

	res, err := svc.Register(ctx, domain.RegisterRequest{Email: "ana@example.com", Password: "secret1", Name: "Ana"})
	require.NoError(t, err)
	assert.True(t, latch.Tripped())

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}
