package engine

import (
	"errors"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher reports changes to the config file. It never blocks: the run
// loop drains it once per iteration.
type ConfigWatcher struct {
	path     string
	fsnotify *fsnotify.Watcher
	isClosed bool
}

// NewConfigWatcher watches the directory holding path so that editors which
// replace the file on save are still noticed.
func NewConfigWatcher(path string) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	return &ConfigWatcher{
		path:     abs,
		fsnotify: fsWatch,
	}, nil
}

// Poll returns true when at least one write, create, rename or remove of the
// config file is pending. Pending events for other files are discarded.
func (cw *ConfigWatcher) Poll() (bool, error) {
	if cw.isClosed {
		return false, errors.New("config watcher already closed")
	}

	changed := false
	for {
		select {
		case event, ok := <-cw.fsnotify.Events:
			if !ok {
				return changed, nil
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				changed = true
			}
		case err, ok := <-cw.fsnotify.Errors:
			if !ok {
				return changed, nil
			}
			return changed, err
		default:
			return changed, nil
		}
	}
}

func (cw *ConfigWatcher) Close() error {
	if cw.isClosed {
		return nil
	}
	cw.isClosed = true
	return cw.fsnotify.Close()
}
