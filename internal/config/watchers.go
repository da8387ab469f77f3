package config

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/ilodestar/aiops-naas/internal/tracking"
)

// AllowListWatcher watches the flat operational allow-list file named by
// AllowList.Path and reloads it on every write, fanning the new list out
// to registered callbacks. Adapted from the teacher's ConfigWatcher,
// generalized from a YAML config reload to a plain newline-delimited
// list of normal-operational text fragments (startup banners, heartbeat
// confirmations) — spec §4.1: "records whose text matches a
// normal-operational allow-list ... are dropped, no anomaly emitted."
// A log record is dropped when its message contains any one entry as a
// substring, not on an exact match.
type AllowListWatcher struct {
	path     string
	logger   tracking.Logger
	mu       sync.RWMutex
	entries  map[string]struct{}
	watchers []func(map[string]struct{})
	stopCh   chan struct{}
}

// NewAllowListWatcher constructs a watcher for path. An empty path
// disables filtering entirely; Start becomes a no-op in that case.
func NewAllowListWatcher(path string, logger tracking.Logger) *AllowListWatcher {
	return &AllowListWatcher{
		path:    path,
		logger:  logger,
		entries: map[string]struct{}{},
		stopCh:  make(chan struct{}),
	}
}

// Start begins watching the allow-list file for changes. It performs an
// initial load before entering its watch loop, so Matches reflects the
// file as soon as that load completes; Start itself blocks until ctx is
// canceled or Stop is called.
func (w *AllowListWatcher) Start(ctx context.Context) error {
	if w.path == "" {
		return nil
	}
	if err := w.reload(); err != nil {
		w.logger.Warn("initial allow-list load failed, starting with an empty list", "error", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create allow-list watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.path); err != nil {
		return fmt.Errorf("failed to watch allow-list file: %w", err)
	}

	w.logger.Info("allow-list watcher started", "path", w.path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				w.logger.Info("allow-list file changed, reloading", "file", event.Name)
				if err := w.reload(); err != nil {
					w.logger.Error("failed to reload allow-list", "error", err)
					continue
				}
				w.notify()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("allow-list watcher error", "error", err)
		case <-ctx.Done():
			return nil
		case <-w.stopCh:
			return nil
		}
	}
}

// RegisterWatcher adds a callback invoked with the new entry set
// whenever the file is reloaded.
func (w *AllowListWatcher) RegisterWatcher(callback func(map[string]struct{})) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.watchers = append(w.watchers, callback)
}

// Matches reports whether text contains any entry in the current
// allow-list as a substring — true means text is known-normal
// operational chatter and should be dropped rather than scored. An
// empty list matches nothing (no filtering is applied).
func (w *AllowListWatcher) Matches(text string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for entry := range w.entries {
		if strings.Contains(text, entry) {
			return true
		}
	}
	return false
}

// Stop stops the watcher goroutine.
func (w *AllowListWatcher) Stop() {
	close(w.stopCh)
}

func (w *AllowListWatcher) reload() error {
	f, err := os.Open(w.path)
	if err != nil {
		return err
	}
	defer f.Close()

	entries := map[string]struct{}{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	w.entries = entries
	w.mu.Unlock()
	return nil
}

func (w *AllowListWatcher) notify() {
	w.mu.RLock()
	entries := w.entries
	watchers := make([]func(map[string]struct{}), len(w.watchers))
	copy(watchers, w.watchers)
	w.mu.RUnlock()

	for _, cb := range watchers {
		go func(cb func(map[string]struct{})) {
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("allow-list watcher callback panicked", "panic", r)
				}
			}()
			cb(entries)
		}(cb)
	}
}
