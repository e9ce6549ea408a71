// Package watcher reports debounced changes to recipe documents and to the
// user technique catalog.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/mise/internal/log"
)

// Watcher monitors files and directory trees and sends the set of changed
// paths once writes settle.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	files     map[string]bool
	dirs      []string
	exts      map[string]bool
	debounce  time.Duration
	onChange  chan []string
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	// Files are watched through their parent directories, so editors that
	// replace the file on save are still seen.
	Files []string
	// Dirs are watched recursively for files with one of Extensions.
	Dirs       []string
	Extensions []string
	Debounce   time.Duration
}

// DefaultConfig watches a single recipe file.
func DefaultConfig(file string) Config {
	return Config{
		Files:      []string{file},
		Extensions: []string{".yaml", ".yml", ".tmpl"},
		Debounce:   300 * time.Millisecond,
	}
}

// New creates a watcher. Nothing is watched until Start.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsw,
		files:     make(map[string]bool, len(cfg.Files)),
		exts:      make(map[string]bool, len(cfg.Extensions)),
		debounce:  cfg.Debounce,
		onChange:  make(chan []string, 1),
		done:      make(chan struct{}),
	}
	for _, f := range cfg.Files {
		w.files[clean(f)] = true
	}
	for _, d := range cfg.Dirs {
		w.dirs = append(w.dirs, clean(d))
	}
	for _, e := range cfg.Extensions {
		w.exts[e] = true
	}
	return w, nil
}

// Start begins watching. The returned channel receives sorted, de-duplicated
// paths that changed during a debounce window.
func (w *Watcher) Start() (<-chan []string, error) {
	seen := make(map[string]bool)
	add := func(dir string) error {
		if seen[dir] {
			return nil
		}
		seen[dir] = true
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
		return nil
	}

	for f := range w.files {
		if err := add(filepath.Dir(f)); err != nil {
			return nil, err
		}
	}
	for _, root := range w.dirs {
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending = make(map[string]struct{})
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.isNewDir(event) {
				if err := w.fsWatcher.Add(event.Name); err != nil {
					log.Warn(log.CatWatch, "cannot watch new directory", "path", event.Name, "error", err)
				}
				continue
			}
			if !w.isRelevantEvent(event) {
				continue
			}

			pending[clean(event.Name)] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]struct{})

			// Drop the batch if the consumer is still busy with the previous one.
			select {
			case w.onChange <- changed:
			default:
				log.Debug(log.CatWatch, "change dropped, consumer busy", "paths", len(changed))
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatWatch, "watch error", "error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent reports writes, creates and renames of watched files, or of
// files with a watched extension inside a watched tree.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	name := clean(event.Name)
	if w.files[name] {
		return true
	}
	if !w.exts[filepath.Ext(name)] {
		return false
	}
	for _, d := range w.dirs {
		if name == d || strings.HasPrefix(name, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) isNewDir(event fsnotify.Event) bool {
	if event.Op&fsnotify.Create == 0 || len(w.dirs) == 0 {
		return false
	}
	name := clean(event.Name)
	inTree := false
	for _, d := range w.dirs {
		if strings.HasPrefix(name, d+string(filepath.Separator)) {
			inTree = true
			break
		}
	}
	if !inTree {
		return false
	}
	info, err := os.Stat(name)
	return err == nil && info.IsDir()
}

func clean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
