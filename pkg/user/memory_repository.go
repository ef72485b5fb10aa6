package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"glucolog/domain"
	"glucolog/entities"
)

type InMemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*entities.User
	byEmail map[string]uuid.UUID
	now     func() time.Time
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID:    make(map[uuid.UUID]*entities.User),
		byEmail: make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

func (r *InMemoryUserRepository) InitSchema(context.Context) error { return nil }

func (r *InMemoryUserRepository) CreateUser(_ context.Context, user *entities.User) (*entities.User, error) {
	record := *user
	record.Email = normalizeEmail(record.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[record.Email]; taken {
		return nil, domain.ErrEmailAlreadyExists
	}
	record.ID = uuid.New()
	now := r.now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	r.byID[record.ID] = &record
	r.byEmail[record.Email] = record.ID
	out := record
	return &out, nil
}

func (r *InMemoryUserRepository) GetUserByEmail(_ context.Context, email string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *r.byID[id]
	return &out, nil
}

func (r *InMemoryUserRepository) GetUserByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *InMemoryUserRepository) UpdateName(_ context.Context, id uuid.UUID, name string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Name = name
	u.UpdatedAt = r.now().UTC()
	out := *u
	return &out, nil
}
