package storage

import (
	"context"
	"sync"

	"meettimer/internal/core/model"
)

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	values   map[string]any
	watchers map[int]func()
	nextID   int
	offline  bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:   make(map[string]any),
		watchers: make(map[int]func()),
	}
}

// SetOffline makes all operations fail with ErrUnavailable.
func (store *MemoryStore) SetOffline(offline bool) {
	store.mu.Lock()
	store.offline = offline
	store.mu.Unlock()
}

// Get returns copies of the requested keys, or all keys when none are given.
func (store *MemoryStore) Get(ctx context.Context, keys ...string) (model.Values, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.offline {
		return nil, ErrUnavailable
	}
	return selectKeys(store.values, keys), nil
}

// Set merges values and notifies watchers.
func (store *MemoryStore) Set(ctx context.Context, values model.Values) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	store.mu.Lock()
	if store.offline {
		store.mu.Unlock()
		return ErrUnavailable
	}
	applyValues(store.values, values)
	watchers := make([]func(), 0, len(store.watchers))
	for _, fn := range store.watchers {
		watchers = append(watchers, fn)
	}
	store.mu.Unlock()

	for _, fn := range watchers {
		fn()
	}
	return nil
}

// Watch registers onChange until ctx is done.
func (store *MemoryStore) Watch(ctx context.Context, onChange func()) error {
	store.mu.Lock()
	id := store.nextID
	store.nextID++
	store.watchers[id] = onChange
	store.mu.Unlock()

	go func() {
		<-ctx.Done()
		store.mu.Lock()
		delete(store.watchers, id)
		store.mu.Unlock()
	}()
	return nil
}

// Close is a no-op.
func (store *MemoryStore) Close() error {
	return nil
}
