package meal

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"glucolog/domain"
	"glucolog/entities"
)

// InMemoryStore keeps meals newest-first in process memory. It is the
// fallback backend and loses everything on restart.
type InMemoryStore struct {
	mu    sync.RWMutex
	meals []*entities.Meal
	last  time.Time
	now   func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{now: time.Now}
}

func (s *InMemoryStore) InitSchema(context.Context) error { return nil }

func (s *InMemoryStore) Create(_ context.Context, meal *entities.Meal) (*entities.Meal, error) {
	record, err := prepareNew(meal)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// createdAt must strictly increase even when the clock does not move
	stamp := s.now().UTC()
	if !stamp.After(s.last) {
		stamp = s.last.Add(time.Microsecond)
	}
	s.last = stamp

	record.ID = uuid.New()
	record.CreatedAt = stamp
	record.UpdatedAt = stamp
	if record.UserID != nil {
		owner := *record.UserID
		record.UserID = &owner
	}

	s.meals = append([]*entities.Meal{&record}, s.meals...)
	return clone(&record), nil
}

func (s *InMemoryStore) List(_ context.Context, q ListQuery) ([]*entities.Meal, int64, error) {
	page, limit := domain.NormalizePage(q.Page, q.Limit)

	s.mu.RLock()
	matched := make([]*entities.Meal, 0, len(s.meals))
	for _, m := range s.meals {
		if !sameOwner(m.UserID, q.UserID) {
			continue
		}
		if q.From != nil && q.To != nil && (m.CreatedAt.Before(*q.From) || !m.CreatedAt.Before(*q.To)) {
			continue
		}
		matched = append(matched, clone(m))
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := domain.Offset(page, limit)
	if start >= len(matched) {
		return []*entities.Meal{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id uuid.UUID) (*entities.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.meals {
		if m.ID == id {
			return clone(m), nil
		}
	}
	return nil, domain.ErrMealNotFound
}

func (s *InMemoryStore) Update(_ context.Context, id uuid.UUID, p Patch) (*entities.Meal, error) {
	p, err := p.normalized()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.meals {
		if m.ID == id {
			p.apply(m)
			m.UpdatedAt = s.now().UTC()
			return clone(m), nil
		}
	}
	return nil, domain.ErrMealNotFound
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.meals {
		if m.ID == id {
			s.meals = append(s.meals[:i], s.meals[i+1:]...)
			return nil
		}
	}
	return domain.ErrMealNotFound
}

func (s *InMemoryStore) CountByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, m := range s.meals {
		if m.UserID != nil && *m.UserID == userID {
			count++
		}
	}
	return count, nil
}

func clone(m *entities.Meal) *entities.Meal {
	c := *m
	if m.UserID != nil {
		owner := *m.UserID
		c.UserID = &owner
	}
	return &c
}

// sameOwner treats two nil owners as the anonymous scope.
func sameOwner(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
