package preset

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher reloads a presets file whenever it changes on disk.
type Watcher struct {
	path    string
	onLoad  func(*Set)
	watcher *fsnotify.Watcher
}

// NewWatcher starts watching the directory holding path. Editors often
// replace files instead of writing them, so the directory is watched and
// events are filtered by name.
func NewWatcher(path string, onLoad func(*Set)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	path = filepath.Clean(path)
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{path: path, onLoad: onLoad, watcher: fw}, nil
}

// Run delivers reloads until ctx is done. It closes the watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Str("path", w.path).Msg("preset watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	s, err := Load(w.path)
	if err != nil {
		// A half-written file fails here; the next write event retries.
		log.Debug().Err(err).Str("path", w.path).Msg("preset reload skipped")
		return
	}
	log.Info().Str("path", w.path).Int("presets", len(s.Presets)).Msg("presets reloaded")
	w.onLoad(s)
}

// Watch runs a Watcher for path until ctx is done.
func Watch(ctx context.Context, path string, onLoad func(*Set)) error {
	w, err := NewWatcher(path, onLoad)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
