package docgen

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the Watcher waits after the last change
// before running its callback.
const DefaultDebounce = 100 * time.Millisecond

// Watcher runs a callback whenever a file changes.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before the callback runs.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithWatchLogger sets the watcher logger.
func WithWatchLogger(logger zerolog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher starts watching path. The parent directory is watched so
// that editors replacing the file on save are noticed.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	w := &Watcher{
		path:     absPath,
		debounce: DefaultDebounce,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	w.watcher = watcher

	return w, nil
}

// Run calls onChange after each change to the file until ctx is done.
// Callback errors are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, onChange func() error) error {
	defer w.watcher.Close()

	filename := filepath.Base(w.path)
	w.logger.Info().Str("path", w.path).Msg("watching for changes")

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			// atomic saves show up as create
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			w.logger.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("file changed")
			timer.Reset(w.debounce)

		case <-timer.C:
			if err := onChange(); err != nil {
				w.logger.Error().Err(err).Msg("rebuild failed")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("file watcher error")

		case <-ctx.Done():
			return nil
		}
	}
}

// Close stops watching without running.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
