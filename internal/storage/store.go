package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"meettimer/internal/core/model"
)

// ErrUnavailable indicates the store cannot be reached.
var ErrUnavailable = errors.New("store unavailable")

// Store is an asynchronous-by-contract key-value store shared by all contexts.
// Writes from one context are not guaranteed to be visible to a concurrent
// reader in another context. A nil value passed to Set deletes the key.
type Store interface {
	Get(ctx context.Context, keys ...string) (model.Values, error)
	Set(ctx context.Context, values model.Values) error
}

// Watcher is implemented by stores that can report external changes.
// onChange is invoked from a background goroutine until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// Backend is a Store owning resources.
type Backend interface {
	Store
	Close() error
}

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverYAML   = "yaml"
	DriverSQLite = "sqlite"
)

// Open creates a backend for driver at path. logger receives watcher
// diagnostics of file backed drivers.
func Open(driver, path string, logger *slog.Logger) (Backend, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverYAML:
		return NewFileStore(path, logger), nil
	case DriverSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func selectKeys(values model.Values, keys []string) model.Values {
	if len(keys) == 0 {
		result := make(model.Values, len(values))
		for key, value := range values {
			result[key] = value
		}
		return result
	}
	result := make(model.Values, len(keys))
	for _, key := range keys {
		if value, ok := values[key]; ok {
			result[key] = value
		}
	}
	return result
}

func applyValues(target map[string]any, values model.Values) {
	for key, value := range values {
		if value == nil {
			delete(target, key)
			continue
		}
		target[key] = value
	}
}
