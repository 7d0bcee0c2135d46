package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/paychain/packages/core/logging"
	"github.com/abdul-hamid-achik/paychain/packages/core/scenario"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watch re-runs every scenario when a scenario file is written, until ctx
// is cancelled. Bursts of writes within WatchDebounceDelay trigger a
// single re-run.
func (s *session) watch(ctx context.Context, stdout io.Writer, args []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	log := logging.FromContext(ctx)

	for _, dir := range watchDirs(s.files, args) {
		if err := watcher.Add(dir); err != nil {
			log.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	fmt.Fprintf(stdout, "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	rerun := make(chan string, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !scenario.IsScenarioFile(event.Name) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				select {
				case rerun <- name:
				default:
				}
			})

		case name := <-rerun:
			fmt.Fprintf(stdout, "\n\nFile changed: %s\nRe-running scenarios...\n\n", name)
			if files, err := collectFiles(args); err == nil {
				s.files = files
			}
			if _, err := s.runOnce(ctx, stdout); err != nil {
				log.Error("re-run failed", zap.Error(err))
			}
			fmt.Fprintf(stdout, "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		}
	}
}

// watchDirs returns the directories holding files plus every directory
// below the directory args, without duplicates.
func watchDirs(files, args []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, file := range files {
		add(filepath.Dir(file))
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			continue
		}
		_ = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				add(path)
			}
			return nil
		})
	}
	return dirs
}
