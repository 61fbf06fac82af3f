package file

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/elum-utils/chatfilter/interfaces"
)

const defaultDebounce = 100 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	// Debounce is the quiet period after the last change before onChange
	// runs. Default: 100ms.
	Debounce time.Duration
	Logger   interfaces.Logger
}

// Watch calls onChange after the vocabulary file is written, created or
// replaced, until ctx ends. The parent directory is watched so editors that
// save through a rename are picked up too.
func (s *YAMLSource) Watch(ctx context.Context, opt WatchOptions, onChange func()) error {
	if opt.Debounce <= 0 {
		opt.Debounce = defaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("file: create watcher: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(s.path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("file: watch %s: %w", s.path, err)
	}

	timer := time.NewTimer(opt.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(opt.Debounce)

		case <-timer.C:
			if opt.Logger != nil {
				opt.Logger.Debug("vocabulary file changed", map[string]any{"path": s.path})
			}
			onChange()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if opt.Logger != nil {
				opt.Logger.Warn("vocabulary watch error", map[string]any{"path": s.path, "error": err.Error()})
			}
		}
	}
}
