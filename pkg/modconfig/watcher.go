// pkg/modconfig/watcher.go
package modconfig

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Watcher observes the configuration directory and reports which module's
// document changed, so cached configurations can be refreshed without an
// explicit reload. Changes are debounced per document to coalesce the
// rapid successive writes editors produce.
type Watcher struct {
	dir      string
	onChange func(module string)
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   zerolog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewWatcher creates a watcher for the given configuration directory.
// onChange receives the module name derived from the document filename.
func NewWatcher(dir string, onChange func(module string)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		dir:      dir,
		onChange: onChange,
		watcher:  fsWatcher,
		debounce: 100 * time.Millisecond,
		logger:   log.With().Str("component", "modconfig.watcher").Logger(),
		timers:   map[string]*time.Timer{},
	}, nil
}

// Start begins watching. It blocks until ctx is canceled and should be run
// in its own goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		w.logger.Error().Err(err).Str("dir", w.dir).Msg("Failed to watch config directory")
		return err
	}
	defer func() { _ = w.watcher.Close() }()

	w.logger.Debug().Str("dir", w.dir).Msg("Watching module configuration directory")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			module, ok := moduleNameFromPath(event.Name)
			if !ok {
				continue
			}
			w.schedule(module)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("Config watcher error")
		}
	}
}

// schedule arms (or re-arms) the debounce timer for one module.
func (w *Watcher) schedule(module string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[module]; ok {
		timer.Stop()
	}
	w.timers[module] = time.AfterFunc(w.debounce, func() {
		w.logger.Debug().Str("module", module).Msg("Configuration document changed")
		w.onChange(module)
	})
}

// moduleNameFromPath derives the module name from a document path.
func moduleNameFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, FileSuffix) {
		return "", false
	}
	return strings.TrimSuffix(base, FileSuffix), true
}
