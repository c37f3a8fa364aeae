package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"meettimer/internal/core/model"
	"meettimer/internal/logfields"
)

const (
	stateFileName  = "state.yaml"
	watchDebounce  = 100 * time.Millisecond
	stateFileMode  = 0o644
	stateDirectory = 0o755
)

// FileStore persists values as a flat YAML map.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, logger: logger}
}

// DefaultStatePath returns the per-user state file location.
func DefaultStatePath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, stateFileName), nil
}

// Path returns the backing file path.
func (store *FileStore) Path() string {
	return store.path
}

// Get reads the requested keys. A missing file yields no values.
func (store *FileStore) Get(ctx context.Context, keys ...string) (model.Values, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	store.mu.Lock()
	defer store.mu.Unlock()

	values, err := store.readLocked()
	if err != nil {
		return nil, err
	}
	return selectKeys(values, keys), nil
}

// Set merges values into the file and rewrites it atomically.
func (store *FileStore) Set(ctx context.Context, values model.Values) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	store.mu.Lock()
	defer store.mu.Unlock()

	current, err := store.readLocked()
	if err != nil {
		return err
	}
	applyValues(current, values)
	return store.writeLocked(current)
}

// Watch reports writes to the backing file, from this or any other process.
func (store *FileStore) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	dir := filepath.Dir(store.path)
	if err := os.MkdirAll(dir, stateDirectory); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch state directory %s: %w", dir, err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		var pending *time.Timer
		defer func() {
			if pending != nil {
				pending.Stop()
			}
		}()
		target := filepath.Clean(store.path)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(watchDebounce, onChange)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				store.logger.Warn("State file watcher error", logfields.Path(store.path), logfields.Error(err))
			}
		}
	}()
	return nil
}

// Close is a no-op; watchers stop with their context.
func (store *FileStore) Close() error {
	return nil
}

func (store *FileStore) readLocked() (map[string]any, error) {
	values := make(map[string]any)
	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if err := yaml.Unmarshal(rawData, &values); err != nil {
		return nil, fmt.Errorf("parse state yaml: %w", err)
	}
	if values == nil {
		values = make(map[string]any)
	}
	return values, nil
}

func (store *FileStore) writeLocked(values map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(store.path), stateDirectory); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	serialized, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal state yaml: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(store.path), ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(serialized); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Chmod(tmpName, stateFileMode); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod state file: %w", err)
	}
	if err := os.Rename(tmpName, store.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
