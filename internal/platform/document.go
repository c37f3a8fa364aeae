package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/net/html"

	"meettimer/internal/core/visibility"
	"meettimer/internal/logfields"
	"meettimer/internal/page"
)

// Markup conventions understood by FileDocument.
const (
	URLMetaName         = "meettimer-url"
	FullscreenAttribute = "data-fullscreen"
)

// FileDocument is a page whose content lives in a local HTML file. The
// file may override the page address with a meta tag and flag an element
// as fullscreen with an attribute. An empty path yields an empty document.
type FileDocument struct {
	mu     sync.Mutex
	url    string
	path   string
	logger *slog.Logger
}

// NewFileDocument creates a document for url backed by path.
func NewFileDocument(url, path string, logger *slog.Logger) *FileDocument {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileDocument{url: url, path: path, logger: logger}
}

// SetURL records a navigation.
func (doc *FileDocument) SetURL(url string) {
	doc.mu.Lock()
	doc.url = url
	doc.mu.Unlock()
}

// URL returns the last known address.
func (doc *FileDocument) URL() string {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	return doc.url
}

// Snapshot parses the backing file.
func (doc *FileDocument) Snapshot() (visibility.Snapshot, error) {
	snapshot := visibility.Snapshot{URL: doc.URL()}
	if doc.path == "" {
		return snapshot, nil
	}

	file, err := os.Open(doc.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return snapshot, nil
		}
		return snapshot, fmt.Errorf("open document: %w", err)
	}
	defer func() { _ = file.Close() }()

	root, err := html.Parse(file)
	if err != nil {
		return snapshot, fmt.Errorf("parse document: %w", err)
	}
	snapshot.Document = root

	inspect(root, func(node *html.Node) {
		if node.Type != html.ElementNode {
			return
		}
		if node.Data == "meta" && attr(node, "name") == URLMetaName {
			if content := strings.TrimSpace(attr(node, "content")); content != "" {
				snapshot.URL = content
			}
		}
		if hasAttr(node, FullscreenAttribute) {
			snapshot.Fullscreen = true
		}
	})
	if snapshot.URL != doc.URL() {
		doc.SetURL(snapshot.URL)
	}
	return snapshot, nil
}

// Watch reports changes of the backing file to onChange. A changed address
// is reported as TriggerURLChange, a toggled fullscreen flag as
// TriggerFullscreen and any other edit as TriggerMutation.
func (doc *FileDocument) Watch(ctx context.Context, onChange func(page.Trigger)) error {
	if doc.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create document watcher: %w", err)
	}
	dir := filepath.Dir(doc.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch document directory %s: %w", dir, err)
	}

	last, err := doc.Snapshot()
	if err != nil {
		doc.logger.Debug("Initial document snapshot failed", logfields.Path(doc.path), logfields.Error(err))
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		target := filepath.Clean(doc.path)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || event.Op == fsnotify.Chmod {
					continue
				}
				next, err := doc.Snapshot()
				if err != nil {
					onChange(page.TriggerMutation)
					continue
				}
				onChange(classifyChange(last, next))
				last = next
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				doc.logger.Warn("Document watcher error", logfields.Path(doc.path), logfields.Error(err))
			}
		}
	}()
	return nil
}

func classifyChange(prev, next visibility.Snapshot) page.Trigger {
	switch {
	case prev.URL != next.URL:
		return page.TriggerURLChange
	case prev.Fullscreen != next.Fullscreen:
		return page.TriggerFullscreen
	default:
		return page.TriggerMutation
	}
}

func inspect(node *html.Node, visit func(*html.Node)) {
	visit(node)
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		inspect(child, visit)
	}
}

func attr(node *html.Node, key string) string {
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(node *html.Node, key string) bool {
	for _, a := range node.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
