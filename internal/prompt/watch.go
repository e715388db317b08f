package prompt

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a named prompt's template from disk whenever the
// operator edits the file backing it, so the registry never needs a
// restart to pick up a new prompt body.
type Watcher struct {
	registry *Registry
	log      *zap.SugaredLogger
	watcher  *fsnotify.Watcher
	dir      string
}

// WatchDir starts watching dir for .txt/.md files named after prompt ids
// (e.g. "default.txt" updates the "default" prompt). It is a best-effort
// feature: a missing directory disables hot-reload without failing
// startup.
func WatchDir(dir string, registry *Registry, log *zap.SugaredLogger) (*Watcher, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); err != nil {
		log.Infow("prompt directory not present, hot-reload disabled", "dir", dir)
		return nil, nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{registry: registry, log: log, watcher: fw, dir: dir}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload(ev.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnw("prompt watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload(path string) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext != ".txt" && ext != ".md" {
		return
	}
	id := strings.TrimSuffix(base, ext)

	b, err := os.ReadFile(path)
	if err != nil {
		w.log.Warnw("failed to reload prompt file", "path", path, "error", err)
		return
	}

	existing, _ := w.registry.Get(id)
	existing.ID = id
	existing.Template = string(b)
	w.registry.Set(existing)
	w.log.Infow("reloaded prompt from disk", "id", id)
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	if w == nil || w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}
