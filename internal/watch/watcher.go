// Package watch notices when the stored goal file is rewritten by another
// process.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/metas/internal/goalstore"
)

// DefaultDebounce coalesces the burst of events an atomic rewrite produces.
const DefaultDebounce = 200 * time.Millisecond

// Writer reports the checksum of the last collection this process wrote.
type Writer interface {
	Checksum() string
}

// ChangeCallback receives the checksum of an externally written file, or
// "" when the file was removed.
type ChangeCallback func(checksum string)

// Watch observes file until ctx is cancelled and calls cb when its content
// changes to something own did not write.
//
// The parent directory is watched rather than the file so that atomic
// replacements, which swap the inode, keep being seen.
func Watch(ctx context.Context, file string, own Writer, debounce time.Duration, logger *slog.Logger, cb ChangeCallback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	file = filepath.Clean(file)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(file)); err != nil {
		return err
	}

	last := currentSum(file)
	logger.Info("watcher: started", slog.String("file", file))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
			return
		}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			sum := currentSum(file)
			if sum == last {
				continue
			}
			last = sum
			if sum != "" && sum == own.Checksum() {
				logger.Debug("watcher: own write", slog.String("checksum", sum))
				continue
			}
			logger.Info("watcher: external change", slog.String("file", file), slog.String("checksum", sum))
			if cb != nil {
				cb(sum)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != file {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// currentSum returns the checksum of file, or "" when it cannot be read.
func currentSum(file string) string {
	data, err := os.ReadFile(file)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Debug("watcher: read failed", slog.String("file", file), slog.String("error", err.Error()))
		}
		return ""
	}
	return goalstore.Checksum(data)
}
