package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a burst of file events must stay quiet
// before the script is re-run.
const DefaultDebounce = 100 * time.Millisecond

var errWatcherClosed = errors.New("watcher closed")

// RunWatch executes the script in development mode, re-running it whenever
// the script, the config, the page file or a served page changes.
func RunWatch(ctx context.Context, opts RunOptions) error {
	return runWatch(ctx, opts, DefaultDebounce)
}

func runWatch(ctx context.Context, opts RunOptions, debounce time.Duration) error {
	opts.resolveDefaults()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	printSystemMessage(opts.Stdout, "Watching '%s'.", opts.ScriptPath)

	for {
		// Watch before running so edits made during the run are not lost.
		files, err := watchFiles(watcher, watchedFiles(opts))
		if err != nil {
			return err
		}

		report, err := RunOnce(ctx, opts)
		switch {
		case isInterrupted(err):
			return err
		case err != nil:
			printSystemMessage(opts.Stdout, "Run error: %v", err)
		case report.OK():
			printSystemMessage(opts.Stdout, "All %d steps passed.", report.Passed)
		default:
			printSystemMessage(opts.Stdout, "%d of %d steps failed.", report.Failed, len(report.Steps))
		}
		printSystemMessage(opts.Stdout, "Waiting for changes...")

		changed, err := waitForChange(ctx, watcher, files, debounce)
		if err != nil {
			return err
		}
		printSystemMessage(opts.Stdout, "Change detected in '%s', re-running.", filepath.Base(changed))
	}
}

// watchedFiles lists what a run depends on. Config errors fall back to
// the script alone; the next run reports them.
func watchedFiles(opts RunOptions) []string {
	files := []string{opts.ScriptPath}
	if opts.ConfigPath != "" {
		files = append(files, opts.ConfigPath)
	}
	cfg, err := LoadConfig(opts.ProjectOptions)
	if err != nil {
		return files
	}
	files = append(files, cfg.PageFile)
	for _, f := range cfg.Pages {
		files = append(files, f)
	}
	sort.Strings(files[1:])
	return files
}

// watchFiles registers the directories holding files and returns the set
// of cleaned absolute paths to react to. Editors often replace files by
// renaming, which only a directory watch observes.
func watchFiles(w *fsnotify.Watcher, files []string) (map[string]bool, error) {
	set := make(map[string]bool, len(files))
	watched := make(map[string]bool)
	for _, f := range w.WatchList() {
		watched[f] = true
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		set[abs] = true
		dir := filepath.Dir(abs)
		if watched[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watched[dir] = true
	}
	return set, nil
}

// waitForChange blocks until one of files changes, then waits for the
// events to stay quiet for debounce. It returns the last changed path.
func waitForChange(ctx context.Context, w *fsnotify.Watcher, files map[string]bool, debounce time.Duration) (string, error) {
	var (
		changed string
		settled <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case err, ok := <-w.Errors:
			if !ok {
				return "", errWatcherClosed
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// Events were dropped; assume something relevant changed.
				changed = "(overflow)"
				settled = time.After(debounce)
				continue
			}
			return "", fmt.Errorf("watch failed: %w", err)
		case ev, ok := <-w.Events:
			if !ok {
				return "", errWatcherClosed
			}
			if ev.Op == fsnotify.Chmod || !files[filepath.Clean(ev.Name)] {
				continue
			}
			changed = ev.Name
			settled = time.After(debounce)
		case <-settled:
			return changed, nil
		}
	}
}
