package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"glucolog/domain"
	"glucolog/internal/logging"
)

const DefaultIdleTTL = 30 * time.Minute

type (
	MealReader interface {
		GetMealByID(ctx context.Context, id string, userID *uuid.UUID) (domain.MealResponse, error)
	}

	Manager struct {
		mu       sync.Mutex
		sessions map[string]*entry

		runner *Runner
		meals  MealReader
		ttl    time.Duration
		now    func() time.Time
		newID  func() string
		logger logging.Logger
	}

	// entry serialises events of one session without blocking the others.
	entry struct {
		owner   *uuid.UUID
		mu      sync.Mutex
		session Session
	}
)

func NewManager(runner *Runner, meals MealReader, ttl time.Duration, logger logging.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &Manager{
		sessions: make(map[string]*entry),
		runner:   runner,
		meals:    meals,
		ttl:      ttl,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logger.With("component", "conversation"),
	}
}

// Start opens a new session, seeded from a saved meal when editMealID is set.
func (m *Manager) Start(ctx context.Context, userID *uuid.UUID, editMealID string) (Session, error) {
	flow := m.runner.Flow()
	id := m.newID()

	var s Session
	if editMealID != "" {
		meal, err := m.meals.GetMealByID(ctx, editMealID, userID)
		if err != nil {
			return Session{}, err
		}
		s = flow.StartEdit(id, userID, meal)
	} else {
		s = flow.Start(id, userID)
	}

	m.mu.Lock()
	m.sessions[id] = &entry{owner: s.UserID, session: s}
	m.mu.Unlock()

	m.logger.Debug(ctx, "conversation started", "session_id", id, "editing", editMealID != "")
	return s.clone(), nil
}

func (m *Manager) Get(id string, userID *uuid.UUID) (Session, error) {
	e, err := m.lookup(id, userID)
	if err != nil {
		return Session{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.clone(), nil
}

// Dispatch runs ev against the session. On error the stored session is left
// as it was.
func (m *Manager) Dispatch(ctx context.Context, id string, userID *uuid.UUID, ev Event) (Session, error) {
	e, err := m.lookup(id, userID)
	if err != nil {
		return Session{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := m.runner.Dispatch(ctx, e.session, ev)
	if err != nil {
		return e.session.clone(), err
	}
	e.session = next
	return next.clone(), nil
}

// Cancel moves the session to cancelled and forgets it.
func (m *Manager) Cancel(ctx context.Context, id string, userID *uuid.UUID) (Session, error) {
	e, err := m.lookup(id, userID)
	if err != nil {
		return Session{}, err
	}

	e.mu.Lock()
	s := e.session
	if !s.State.Terminal() {
		s, _, err = m.runner.Flow().Transition(s, Cancelled{})
		if err != nil {
			e.mu.Unlock()
			return Session{}, err
		}
	}
	e.session = s
	e.mu.Unlock()

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()

	m.logger.Debug(ctx, "conversation cancelled", "session_id", id)
	return s.clone(), nil
}

// Sweep drops sessions idle for longer than the TTL and returns how many.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.sessions {
		if !e.mu.TryLock() {
			// busy sessions are not idle
			continue
		}
		if e.session.LastActivity.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Info(ctx, "expired idle conversations", "count", n)
			}
		}
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) lookup(id string, userID *uuid.UUID) (*entry, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !sameUser(e.owner, userID) {
		return nil, domain.ErrSessionNotFound
	}
	return e, nil
}

func sameUser(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
