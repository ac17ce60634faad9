package config

import (
	"os"
	"sync"
	"time"
)

// Handler is called with the freshly loaded configuration after the watched
// file changes and parses cleanly.
type Handler func(Config)

// Watcher polls a configuration file for changes and triggers reloads.
// Polling (rather than OS notification) keeps behavior identical across
// platforms and editors that replace files on save.
type Watcher struct {
	path     string
	interval time.Duration
	handler  Handler

	mu      sync.Mutex
	lastMod time.Time
	done    chan struct{}
	running bool
}

// NewWatcher creates a watcher for path. interval <= 0 defaults to 2s.
func NewWatcher(path string, interval time.Duration, handler Handler) *Watcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Watcher{
		path:     path,
		interval: interval,
		handler:  handler,
	}
}

// Start begins polling in a background goroutine. Starting a running
// watcher is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	if info, err := os.Stat(w.path); err == nil {
		w.lastMod = info.ModTime()
	}
	w.done = make(chan struct{})
	w.running = true
	go w.loop(w.done)
}

// Stop halts polling. Safe to call on a stopped watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	close(w.done)
	w.running = false
}

func (w *Watcher) loop(done chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	info, err := os.Stat(w.path)
	if err != nil {
		return
	}

	w.mu.Lock()
	changed := info.ModTime().After(w.lastMod)
	if changed {
		w.lastMod = info.ModTime()
	}
	w.mu.Unlock()

	if !changed {
		return
	}

	cfg, err := Load(w.path)
	if err != nil {
		return
	}
	if w.handler != nil {
		w.handler(cfg)
	}
}
