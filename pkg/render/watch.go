package render

import (
	"context"
	"fmt"
	"time"

	"go-minimalapp/pkg/logger"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watch reloads templates whenever a file in dir changes, until ctx is done.
// dir must be the directory backing the renderer's fs.FS.
func (r *Renderer) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create template watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		reload := make(chan struct{}, 1)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				// group editor write bursts into a single reload
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, func() {
					select {
					case reload <- struct{}{}:
					default:
					}
				})
			case <-reload:
				if err := r.Load(); err != nil {
					logger.Log.Error("Template reload failed", "error", err)
					continue
				}
				logger.Log.Debug("Templates reloaded", "dir", dir)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Log.Warn("Template watcher error", "error", err)
			}
		}
	}()

	return nil
}
