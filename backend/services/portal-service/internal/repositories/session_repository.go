package repositories

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository keeps per-browser state in memory, keyed by a random ID.
// A session expires once it has not been touched for the configured TTL.
type SessionRepository[T any] interface {
	Create(ctx context.Context, value T) (uuid.UUID, error)
	// Get returns the session and refreshes its last-seen time.
	Get(ctx context.Context, id uuid.UUID) (T, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteExpired removes idle sessions and reports how many were dropped.
	DeleteExpired(ctx context.Context) (int, error)
	Len() int
}

type sessionEntry[T any] struct {
	value    T
	lastSeen time.Time
}

type memorySessionRepository[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[uuid.UUID]*sessionEntry[T]
}

func NewSessionRepository[T any](ttl time.Duration) SessionRepository[T] {
	return newSessionRepository[T](ttl, time.Now)
}

func newSessionRepository[T any](ttl time.Duration, now func() time.Time) *memorySessionRepository[T] {
	return &memorySessionRepository[T]{
		ttl:     ttl,
		now:     now,
		entries: make(map[uuid.UUID]*sessionEntry[T]),
	}
}

func (r *memorySessionRepository[T]) Create(ctx context.Context, value T) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = &sessionEntry[T]{value: value, lastSeen: r.now()}
	return id, nil
}

func (r *memorySessionRepository[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return zero, ErrSessionNotFound
	}
	now := r.now()
	if r.expired(e, now) {
		delete(r.entries, id)
		return zero, ErrSessionNotFound
	}
	e.lastSeen = now
	return e.value, nil
}

func (r *memorySessionRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *memorySessionRepository[T]) DeleteExpired(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	removed := 0
	for id, e := range r.entries {
		if r.expired(e, now) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed, nil
}

func (r *memorySessionRepository[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *memorySessionRepository[T]) expired(e *sessionEntry[T], now time.Time) bool {
	return r.ttl > 0 && now.Sub(e.lastSeen) > r.ttl
}
