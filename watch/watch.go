// Package watch observes a live save container on disk, snapshots a
// timestamped backup on every write and fans the change out to listeners.
package watch

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event describes one observed change of the save file.
type Event struct {
	Path   string    `json:"path"`
	Backup string    `json:"backup,omitempty"`
	Time   time.Time `json:"time"`
}

type Watcher struct {
	savePath  string
	backupDir string
	watcher   *fsnotify.Watcher
	events    chan Event
}

func New(savePath, backupDir string) *Watcher {
	return &Watcher{
		savePath:  savePath,
		backupDir: backupDir,
		events:    make(chan Event, 16),
	}
}

// Events delivers change notifications. The channel is closed when the
// watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start watches the save file's directory. The games rewrite saves via
// rename, so watching the file itself would silently detach.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	go func() {
		defer close(w.events)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if filepath.Clean(event.Name) != filepath.Clean(w.savePath) {
					continue
				}
				w.handleChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[watch] %v", err)
			}
		}
	}()

	if err := watcher.Add(filepath.Dir(w.savePath)); err != nil {
		watcher.Close()
		return err
	}
	log.Printf("[watch] Watching %v", w.savePath)
	return nil
}

func (w *Watcher) Stop() {
	if w.watcher != nil {
		w.watcher.Close()
	}
}

func (w *Watcher) handleChange() {
	ev := Event{Path: w.savePath, Time: time.Now()}

	if w.backupDir != "" {
		backup, err := w.snapshot()
		if err != nil {
			log.Printf("[watch] Failed to snapshot: %v", err)
		} else {
			ev.Backup = backup
			log.Printf("[watch] Saved backup %v", backup)
		}
	}

	select {
	case w.events <- ev:
	default:
		// Listener stalled, drop rather than block the watch loop.
	}
}

func (w *Watcher) snapshot() (string, error) {
	buf, err := os.ReadFile(w.savePath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.backupDir, 0755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s.%s.bak", filepath.Base(w.savePath), time.Now().Format("20060102-150405.000"))
	backup := filepath.Join(w.backupDir, name)
	if err := os.WriteFile(backup, buf, 0644); err != nil {
		return "", err
	}
	return backup, nil
}
