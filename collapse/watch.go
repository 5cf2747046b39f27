package collapse

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"cellsplit/fragment"
)

const (
	watchDebounce = 200 * time.Millisecond
	watchOps      = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
)

// Watch collapses fragments once and then keeps output up to date: every
// change to root or to any fragment it references triggers another
// collapse. Output is always overwritten. Returns when context is canceled.
func Watch(ctx context.Context, store fragment.Store, path string, opts Options, log *zap.Logger) error {
	opts.Overwrite, opts.Cleanup = true, false

	res, err := Process(ctx, store, path, opts, log)
	if err != nil {
		return err
	}
	log.Info("Collapse completed", zap.String("to", res.Output), zap.Int("fragments", res.Fragments))

	watched, err := watchSet(ctx, store, res.Root)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to start file watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(res.Root)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("unable to watch directory %q: %w", dir, err)
	}
	log.Info("Watching fragments", zap.String("dir", dir), zap.Int("files", len(watched)))

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("Watch stopped")
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&watchOps == 0 || !watched[filepath.Clean(ev.Name)] {
				continue
			}
			log.Debug("Fragment changed", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			timer.Reset(watchDebounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn("File watcher error", zap.Error(err))

		case <-timer.C:
			res, err := Process(ctx, store, path, opts, log)
			if err != nil {
				log.Error("Unable to collapse fragments", zap.Error(err))
				continue
			}
			log.Info("Collapse completed", zap.String("to", res.Output), zap.Int("fragments", res.Fragments))
			if set, err := watchSet(ctx, store, res.Root); err == nil {
				watched = set
			} else {
				log.Warn("Unable to refresh list of fragments", zap.Error(err))
			}
		}
	}
}

func watchSet(ctx context.Context, store fragment.Store, root string) (map[string]bool, error) {
	tree, err := Scan(ctx, store, root)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	for _, name := range tree.Names() {
		set[filepath.Clean(name)] = true
	}
	return set, nil
}
