package meal

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glucolog/domain"
	"glucolog/entities"
	"glucolog/pkg/storage"
)

// flakyStore behaves like the in-memory store until broken is set.
type flakyStore struct {
	*InMemoryStore
	broken    atomic.Bool
	schemaErr error
	calls     atomic.Int32
}

func (f *flakyStore) InitSchema(context.Context) error { return f.schemaErr }

func (f *flakyStore) Create(ctx context.Context, m *entities.Meal) (*entities.Meal, error) {
	f.calls.Add(1)
	if f.broken.Load() {
		return nil, errors.New("dial tcp 10.0.0.5:5432: connection refused")
	}
	return f.InMemoryStore.Create(ctx, m)
}

func (f *flakyStore) List(ctx context.Context, q ListQuery) ([]*entities.Meal, int64, error) {
	f.calls.Add(1)
	if f.broken.Load() {
		return nil, 0, errors.New("connection reset by peer")
	}
	return f.InMemoryStore.List(ctx, q)
}

func TestFallbackStore_UsesPrimaryWhileHealthy(t *testing.T) {
	t.Parallel()

	primary := &flakyStore{InMemoryStore: NewInMemoryStore()}
	s := NewFallbackStore(primary, NewInMemoryStore(), storage.NewLatch())
	ctx := context.Background()

	_, err := s.Create(ctx, newMeal("toast", nil))
	require.NoError(t, err)

	assert.Equal(t, domain.BackendPostgres, s.Backend())
	assert.Equal(t, int32(1), primary.calls.Load())
}

func TestFallbackStore_TripsOnceAndStaysOnMemory(t *testing.T) {
	t.Parallel()

	var trips atomic.Int32
	latch := storage.NewLatch(func(error) { trips.Add(1) })
	primary := &flakyStore{InMemoryStore: NewInMemoryStore()}
	primary.broken.Store(true)
	s := NewFallbackStore(primary, NewInMemoryStore(), latch)
	ctx := context.Background()

	created, err := s.Create(ctx, newMeal("rice and beans", nil))
	require.NoError(t, err)
	assert.Equal(t, "rice and beans", created.Description)
	assert.Equal(t, domain.BackendMemory, s.Backend())

	// recovering the primary does not switch back
	primary.broken.Store(false)
	meals, total, err := s.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, created.ID, meals[0].ID)

	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Equal(t, int32(1), trips.Load())
}

func TestFallbackStore_NotFoundDoesNotTrip(t *testing.T) {
	t.Parallel()

	latch := storage.NewLatch()
	s := NewFallbackStore(&flakyStore{InMemoryStore: NewInMemoryStore()}, NewInMemoryStore(), latch)

	_, err := s.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrMealNotFound)
	assert.False(t, latch.Tripped())
}

func TestFallbackStore_ValidationDoesNotTrip(t *testing.T) {
	t.Parallel()

	latch := storage.NewLatch()
	s := NewFallbackStore(&flakyStore{InMemoryStore: NewInMemoryStore()}, NewInMemoryStore(), latch)

	_, err := s.Create(context.Background(), &entities.Meal{MealType: "LUNCH"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, latch.Tripped())
}

func TestFallbackStore_SchemaFailureTrips(t *testing.T) {
	t.Parallel()

	latch := storage.NewLatch()
	primary := &flakyStore{InMemoryStore: NewInMemoryStore(), schemaErr: errors.New("permission denied for schema public")}
	s := NewFallbackStore(primary, NewInMemoryStore(), latch)

	_, err := s.Create(context.Background(), newMeal("toast", nil))
	require.NoError(t, err)
	assert.True(t, latch.Tripped())
	assert.Zero(t, primary.calls.Load())
}

func TestFallbackStore_NoPrimaryIsMemory(t *testing.T) {
	t.Parallel()

	latch := storage.NewLatch()
	s := NewFallbackStore(nil, NewInMemoryStore(), latch)

	_, err := s.Create(context.Background(), newMeal("toast", nil))
	require.NoError(t, err)
	assert.Equal(t, domain.BackendMemory, s.Backend())
	assert.False(t, latch.Tripped())
}
