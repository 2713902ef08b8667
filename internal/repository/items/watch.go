package items

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oshokin/med-reminder/internal/logger"
)

// watchDebounce collapses the burst of events an editor produces on save.
const watchDebounce = 250 * time.Millisecond

// Watch calls onChange after the items file was written, created, renamed
// or removed, until ctx is done. The directory is watched rather than the
// file so that editors replacing the file are still noticed.
func (r *FileRepository) Watch(ctx context.Context, onChange func(ctx context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	defer watcher.Close()

	dir := filepath.Dir(r.path)
	if err = watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx = logger.WithKV(ctx, "path", r.path)

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)

	defer func() {
		timerMu.Lock()
		defer timerMu.Unlock()

		if timer != nil {
			timer.Stop()
		}
	}()

	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()

		if timer != nil {
			timer.Stop()
		}

		timer = time.AfterFunc(watchDebounce, func() {
			if ctx.Err() == nil {
				onChange(ctx)
			}
		})
	}

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != r.path || event.Op&relevant == 0 {
				continue
			}

			logger.DebugKV(ctx, "Items file changed", "op", event.Op.String())
			debounce()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.WarnKV(ctx, "Items watcher error", "error", err)
		}
	}
}
