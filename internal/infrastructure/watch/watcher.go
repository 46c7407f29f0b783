package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent represents a change of the export file.
type ChangeEvent struct {
	Path       string
	ChangeType string // "create", "write", "remove", "rename"
}

// FileWatcher watches one file through its directory, so that exports
// replaced by rename are still seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	filter   *ExportFilter
	debounce time.Duration
	onChange func(ChangeEvent)
}

func NewFileWatcher(path string, debounce time.Duration, onChange func(ChangeEvent)) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &FileWatcher{
		watcher:  w,
		filter:   NewExportFilter(abs),
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *FileWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	debouncer := NewDebouncer(w.debounce, w.onChange)
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			changeType := opToChangeType(event.Op)
			if changeType == "" || !w.filter.Matches(event.Name) {
				continue
			}
			debouncer.Trigger(ChangeEvent{Path: event.Name, ChangeType: changeType})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func opToChangeType(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return ""
	}
}
