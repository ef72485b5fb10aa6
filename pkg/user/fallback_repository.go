package user

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"glucolog/entities"
	"glucolog/pkg/storage"
)

// FallbackUserRepository shares its latch with the meal store, so both
// switch to memory together.
type FallbackUserRepository struct {
	primary  UserRepository
	fallback UserRepository
	latch    *storage.Latch

	schemaOnce sync.Once
}

func NewFallbackUserRepository(primary, fallback UserRepository, latch *storage.Latch) *FallbackUserRepository {
	return &FallbackUserRepository{primary: primary, fallback: fallback, latch: latch}
}

func (r *FallbackUserRepository) InitSchema(ctx context.Context) error {
	var err error
	r.schemaOnce.Do(func() {
		_, err = storage.WithFallback(r.latch, r.primary != nil,
			func() (struct{}, error) {
				return struct{}{}, r.primary.InitSchema(context.WithoutCancel(ctx))
			},
			func() (struct{}, error) { return struct{}{}, r.fallback.InitSchema(ctx) },
		)
	})
	return err
}

func (r *FallbackUserRepository) CreateUser(ctx context.Context, user *entities.User) (*entities.User, error) {
	_ = r.InitSchema(ctx)
	return storage.WithFallback(r.latch, r.primary != nil,
		func() (*entities.User, error) { return r.primary.CreateUser(ctx, user) },
		func() (*entities.User, error) { return r.fallback.CreateUser(ctx, user) },
	)
}

func (r *FallbackUserRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	_ = r.InitSchema(ctx)
	return storage.WithFallback(r.latch, r.primary != nil,
		func() (*entities.User, error) { return r.primary.GetUserByEmail(ctx, email) },
		func() (*entities.User, error) { return r.fallback.GetUserByEmail(ctx, email) },
	)
}

func (r *FallbackUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	_ = r.InitSchema(ctx)
	return storage.WithFallback(r.latch, r.primary != nil,
		func() (*entities.User, error) { return r.primary.GetUserByID(ctx, id) },
		func() (*entities.User, error) { return r.fallback.GetUserByID(ctx, id) },
	)
}

func (r *FallbackUserRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (*entities.User, error) {
	_ = r.InitSchema(ctx)
	return storage.WithFallback(r.latch, r.primary != nil,
		func() (*entities.User, error) { return r.primary.UpdateName(ctx, id, name) },
		func() (*entities.User, error) { return r.fallback.UpdateName(ctx, id, name) },
	)
}
