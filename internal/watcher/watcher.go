// Package watcher reports debounced changes under the content directories so
// the server can drop its template cache and reload open pages.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/demoapp/internal/logging"
)

// FileWatcher watches directory trees and hands batches of changes to its
// handlers once the tree has been quiet for the debounce delay.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	logger    logging.Logger

	mutex    sync.RWMutex
	filters  []FileFilter
	handlers []ChangeHandler

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// ChangeEvent is one changed path.
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
	Size    int64
}

// EventType is the kind of change.
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileFilter reports whether a path is of interest. Every filter must accept
// a path for its events to be delivered.
type FileFilter func(path string) bool

// ChangeHandler receives a debounced batch, sorted by path.
type ChangeHandler func(ctx context.Context, events []ChangeEvent) error

// NewFileWatcher creates a watcher. A nil logger discards output.
func NewFileWatcher(debounceDelay time.Duration, logger logging.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher:   w,
		debouncer: NewDebouncer(debounceDelay),
		logger:    logger.WithComponent("watcher"),
	}, nil
}

func (fw *FileWatcher) AddFilter(filter FileFilter) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.filters = append(fw.filters, filter)
}

func (fw *FileWatcher) AddHandler(handler ChangeHandler) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// AddPath watches a single directory.
func (fw *FileWatcher) AddPath(path string) error {
	cleanPath, err := validateDir(path)
	if err != nil {
		return err
	}
	return fw.watcher.Add(cleanPath)
}

// AddRecursive watches root and every directory below it. Hidden
// directories are skipped.
func (fw *FileWatcher) AddRecursive(root string) error {
	cleanRoot, err := validateDir(root)
	if err != nil {
		return err
	}

	return filepath.WalkDir(cleanRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != cleanRoot && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.watcher.Add(path)
	})
}

// WatchList returns the watched directories.
func (fw *FileWatcher) WatchList() []string {
	list := fw.watcher.WatchList()
	sort.Strings(list)
	return list
}

func validateDir(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("invalid path: empty")
	}
	cleanPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("invalid path %s: %w", path, err)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", fmt.Errorf("invalid path %s: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("invalid path %s: not a directory", path)
	}
	return cleanPath, nil
}

// Start launches the watch loop and handler dispatch. They run until ctx is
// cancelled or Stop is called.
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.wg.Add(3)
	go func() {
		defer fw.wg.Done()
		fw.debouncer.Run(ctx)
	}()
	go func() {
		defer fw.wg.Done()
		fw.processEvents(ctx)
	}()
	go func() {
		defer fw.wg.Done()
		fw.watchLoop(ctx)
	}()
	return nil
}

// Stop closes the underlying watcher and waits for the goroutines started by
// Start.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		fw.debouncer.Stop()
		err = fw.watcher.Close()
	})
	fw.wg.Wait()
	return err
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFsnotifyEvent(ctx, event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn(ctx, err, "file watcher error")
		}
	}
}

func (fw *FileWatcher) handleFsnotifyEvent(ctx context.Context, event fsnotify.Event) {
	info, statErr := os.Stat(event.Name)

	// New directories are watched as they appear.
	if statErr == nil && info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := fw.AddRecursive(event.Name); err != nil {
				fw.logger.Warn(ctx, err, "watching new directory", "path", event.Name)
			}
		}
		return
	}

	fw.mutex.RLock()
	filters := fw.filters
	fw.mutex.RUnlock()

	for _, filter := range filters {
		if !filter(event.Name) {
			return
		}
	}

	change := ChangeEvent{Type: eventTypeOf(event.Op), Path: event.Name}
	if statErr == nil {
		change.ModTime = info.ModTime()
		change.Size = info.Size()
	}

	fw.debouncer.Add(change)
}

func eventTypeOf(op fsnotify.Op) EventType {
	switch {
	case op.Has(fsnotify.Create):
		return EventTypeCreated
	case op.Has(fsnotify.Write):
		return EventTypeModified
	case op.Has(fsnotify.Remove):
		return EventTypeDeleted
	case op.Has(fsnotify.Rename):
		return EventTypeRenamed
	default:
		return EventTypeModified
	}
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.debouncer.Done():
			return
		case events := <-fw.debouncer.Output():
			fw.mutex.RLock()
			handlers := fw.handlers
			fw.mutex.RUnlock()

			fw.logger.Debug(ctx, "files changed", "count", len(events))
			for _, handler := range handlers {
				if err := handler(ctx, events); err != nil {
					fw.logger.Error(ctx, err, "file watcher handler failed")
				}
			}
		}
	}
}

// Common filters.

// ViewFilter accepts the files the server renders or serves as docs.
func ViewFilter(path string) bool {
	switch filepath.Ext(path) {
	case ".html", ".md", ".yaml", ".yml":
		return true
	}
	return false
}

// NoHiddenFilter rejects dot files.
func NoHiddenFilter(path string) bool {
	return !strings.HasPrefix(filepath.Base(path), ".")
}

// NoEditorTempFilter rejects swap and backup files editors write next to
// the file being edited.
func NoEditorTempFilter(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, "~") || strings.HasPrefix(base, "#") {
		return false
	}
	switch filepath.Ext(base) {
	case ".swp", ".swx", ".tmp":
		return false
	}
	return true
}
