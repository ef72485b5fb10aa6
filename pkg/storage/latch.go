// Package storage holds the pieces shared by the relational and in-memory
// stores: the one-way backend latch and the fallback dispatch helper.
package storage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"glucolog/domain"
)

// Latch flips once from the primary backend to the fallback and never back.
type Latch struct {
	tripped atomic.Bool

	mu     sync.Mutex
	onTrip []func(error)
}

func NewLatch(onTrip ...func(error)) *Latch {
	return &Latch{onTrip: onTrip}
}

// OnTrip registers a callback run once, by the goroutine that trips the latch.
func (l *Latch) OnTrip(fn func(error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onTrip = append(l.onTrip, fn)
}

func (l *Latch) Tripped() bool {
	return l.tripped.Load()
}

// Trip reports whether this call was the one that flipped the latch.
func (l *Latch) Trip(cause error) bool {
	if !l.tripped.CompareAndSwap(false, true) {
		return false
	}
	l.mu.Lock()
	callbacks := append([]func(error){}, l.onTrip...)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(cause)
	}
	return true
}

// IsOperational separates backend failures from expected domain outcomes.
func IsOperational(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, domain.ErrMealNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrEmailAlreadyExists),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// WithFallback runs primary while the latch is closed and primary is enabled.
// An operational error trips the latch and the call is repeated on fallback.
func WithFallback[T any](latch *Latch, primaryEnabled bool, primary, fallback func() (T, error)) (T, error) {
	if primaryEnabled && !latch.Tripped() {
		v, err := primary()
		if !IsOperational(err) {
			return v, err
		}
		latch.Trip(err)
	}
	return fallback()
}
