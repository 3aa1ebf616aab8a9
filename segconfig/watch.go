package segconfig

import (
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watch loads path once, then watches it for writes and pushes each
// successfully reparsed Config onto the returned channel. Parse errors
// during a reload are logged and skipped — the process keeps running on
// its last-known-good Config rather than crashing on a bad edit mid-save.
// The returned stop function closes the underlying watcher; callers
// should defer it.
func Watch(path string) (<-chan Config, func() error, error) {
	initial, err := Load(path)
	if err != nil {
		return nil, nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, nil, err
	}

	out := make(chan Config, 1)
	out <- initial

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					log.Printf("segconfig: reload %s failed, keeping previous config: %v", path, err)
					continue
				}
				out <- cfg
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("segconfig: watch error on %s: %v", path, err)
			}
		}
	}()

	return out, w.Close, nil
}
