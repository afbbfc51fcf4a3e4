package routing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Overrides is the on-disk shape of a keyword overrides file. Domains absent
// from the file keep their built-in lists; listed domains are replaced
// wholesale.
type Overrides struct {
	Domains         map[string][]string `yaml:"domains"`
	OverlayKeywords []string            `yaml:"overlay_keywords"`
}

// LoadOverrides reads and applies an overrides file.
func (r *Router) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read routing overrides: %w", err)
	}
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("parse routing overrides: %w", err)
	}
	r.Apply(o)
	return nil
}

// Apply swaps in override keyword lists. Safe to call while Route is running
// concurrently.
func (r *Router) Apply(o Overrides) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(o.Domains) > 0 {
		// Copy-on-write so in-flight readers keep a consistent table.
		next := make(map[Domain][]string, len(r.keywords))
		for d, kws := range r.keywords {
			next[d] = kws
		}
		for name, kws := range o.Domains {
			if len(kws) > 0 {
				next[Domain(name)] = kws
			}
		}
		r.keywords = next
	}
	if len(o.OverlayKeywords) > 0 {
		r.overlay = o.OverlayKeywords
	}
	r.log.Info("routing keyword overrides applied",
		zap.Int("domains", len(o.Domains)),
		zap.Int("overlay_keywords", len(o.OverlayKeywords)))
}

// WatchOverrides loads path (when it exists) and reloads it on every write
// until ctx is cancelled. Tuning routing keywords is a config change, not a
// deploy, so the file is hot-reloaded.
func (r *Router) WatchOverrides(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		if err := r.LoadOverrides(path); err != nil {
			r.log.Warn("initial routing overrides load failed", zap.Error(err))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create overrides watcher: %w", err)
	}
	// Watch the parent directory: editors replace files on save, which
	// drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch overrides dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := r.LoadOverrides(path); err != nil {
					r.log.Warn("routing overrides reload failed", zap.Error(err))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.log.Warn("routing overrides watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
