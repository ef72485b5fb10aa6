package meal

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"glucolog/domain"
	"glucolog/entities"
	"glucolog/pkg/storage"
)

// FallbackStore serves from the relational store until its first operational
// failure, then from memory for the rest of the process lifetime.
type FallbackStore struct {
	primary  Store
	fallback Store
	latch    *storage.Latch

	schemaOnce sync.Once
}

// NewFallbackStore accepts a nil primary when no database is configured.
func NewFallbackStore(primary Store, fallback Store, latch *storage.Latch) *FallbackStore {
	return &FallbackStore{primary: primary, fallback: fallback, latch: latch}
}

func (s *FallbackStore) Backend() string {
	if s.usePrimary() {
		return domain.BackendPostgres
	}
	return domain.BackendMemory
}

func (s *FallbackStore) usePrimary() bool {
	return s.primary != nil && !s.latch.Tripped()
}

func (s *FallbackStore) InitSchema(ctx context.Context) error {
	var err error
	s.schemaOnce.Do(func() {
		_, err = storage.WithFallback(s.latch, s.primary != nil,
			func() (struct{}, error) {
				return struct{}{}, s.primary.InitSchema(context.WithoutCancel(ctx))
			},
			func() (struct{}, error) { return struct{}{}, s.fallback.InitSchema(ctx) },
		)
	})
	return err
}

func (s *FallbackStore) Create(ctx context.Context, meal *entities.Meal) (*entities.Meal, error) {
	s.ensureSchema(ctx)
	return storage.WithFallback(s.latch, s.primary != nil,
		func() (*entities.Meal, error) { return s.primary.Create(ctx, meal) },
		func() (*entities.Meal, error) { return s.fallback.Create(ctx, meal) },
	)
}

func (s *FallbackStore) List(ctx context.Context, q ListQuery) ([]*entities.Meal, int64, error) {
	type page struct {
		meals []*entities.Meal
		total int64
	}
	s.ensureSchema(ctx)
	res, err := storage.WithFallback(s.latch, s.primary != nil,
		func() (page, error) {
			meals, total, err := s.primary.List(ctx, q)
			return page{meals, total}, err
		},
		func() (page, error) {
			meals, total, err := s.fallback.List(ctx, q)
			return page{meals, total}, err
		},
	)
	return res.meals, res.total, err
}

func (s *FallbackStore) GetByID(ctx context.Context, id uuid.UUID) (*entities.Meal, error) {
	s.ensureSchema(ctx)
	return storage.WithFallback(s.latch, s.primary != nil,
		func() (*entities.Meal, error) { return s.primary.GetByID(ctx, id) },
		func() (*entities.Meal, error) { return s.fallback.GetByID(ctx, id) },
	)
}

func (s *FallbackStore) Update(ctx context.Context, id uuid.UUID, p Patch) (*entities.Meal, error) {
	s.ensureSchema(ctx)
	return storage.WithFallback(s.latch, s.primary != nil,
		func() (*entities.Meal, error) { return s.primary.Update(ctx, id, p) },
		func() (*entities.Meal, error) { return s.fallback.Update(ctx, id, p) },
	)
}

func (s *FallbackStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.ensureSchema(ctx)
	_, err := storage.WithFallback(s.latch, s.primary != nil,
		func() (struct{}, error) { return struct{}{}, s.primary.Delete(ctx, id) },
		func() (struct{}, error) { return struct{}{}, s.fallback.Delete(ctx, id) },
	)
	return err
}

func (s *FallbackStore) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.ensureSchema(ctx)
	return storage.WithFallback(s.latch, s.primary != nil,
		func() (int64, error) { return s.primary.CountByUser(ctx, userID) },
		func() (int64, error) { return s.fallback.CountByUser(ctx, userID) },
	)
}

// ensureSchema ignores the error: a failed schema init has already tripped
// the latch, and the caller proceeds on memory.
func (s *FallbackStore) ensureSchema(ctx context.Context) {
	_ = s.InitSchema(ctx)
}
