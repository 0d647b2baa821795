package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/4thel00z/synaptic/internal"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const maxInboxFileSize = 1 << 20

func NewWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Process files dropped into a directory",
		Long:  `Watch a directory tree and run a cognitive cycle with the content of every created or modified text file. Paths matched by .synapticignore are skipped.`,
		Args:  cobra.ExactArgs(1),
		RunE:  makeWatchRunner(a),
	}

	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Debounce window for batching changes")
	return cmd
}

func makeWatchRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		debounce, _ := cmd.Flags().GetDuration("debounce")

		root, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolve %s: %w", args[0], err)
		}
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			return fmt.Errorf("not a directory: %s", root)
		}

		rt, err := a.runtime(cmd)
		if err != nil {
			return err
		}

		ignore, err := internal.NewIgnoreMatcher(root)
		if err != nil {
			return fmt.Errorf("read %s: %w", internal.IgnoreFilename, err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		if err := addWatchDirs(watcher, root, ignore); err != nil {
			return fmt.Errorf("add watch dirs: %w", err)
		}

		ctx := cmd.Context()
		logger := internal.LoggerFrom(ctx)
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for new input...\n", root)

		timer := time.NewTimer(0)
		if !timer.Stop() {
			<-timer.C
		}
		pending := map[string]struct{}{}

		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !ignore.MatchDir(event.Name) {
						if err := addWatchDirs(watcher, event.Name, ignore); err != nil {
							logger.Warn("could not watch new directory", "path", event.Name, "error", err)
						}
						continue
					}
				}
				if !shouldProcessEvent(event, ignore) {
					continue
				}
				if len(pending) == 0 {
					timer.Reset(debounce)
				}
				pending[event.Name] = struct{}{}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn("watch error", "error", err)
			case <-timer.C:
				paths := make([]string, 0, len(pending))
				for p := range pending {
					paths = append(paths, p)
				}
				clear(pending)
				sort.Strings(paths)

				for _, p := range paths {
					processed, err := processInboxFile(ctx, rt.Loop, root, p)
					if err != nil {
						logger.Warn("could not process file", "path", p, "error", err)
						continue
					}
					if processed {
						rel, _ := filepath.Rel(root, p)
						intention, _ := rt.Loop.Intention()
						fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", rel, intention)
					}
				}
			}
		}
	}
}

func addWatchDirs(watcher *fsnotify.Watcher, root string, ignore *internal.IgnoreMatcher) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && ignore.MatchDir(path) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func shouldProcessEvent(event fsnotify.Event, ignore *internal.IgnoreMatcher) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return !ignore.Match(event.Name)
}

// processInboxFile feeds a text file to the loop. Files that vanished, are
// empty, too large or binary are skipped and reported as not processed.
func processInboxFile(ctx context.Context, loop *internal.SynapticLoop, root, path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !info.Mode().IsRegular() || info.Size() == 0 || info.Size() > maxInboxFileSize {
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if bytes.IndexByte(data, 0) >= 0 || len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	err = loop.ProcessInput(ctx, string(bytes.TrimSpace(data)),
		internal.WithSource("file"),
		internal.WithMetadata(map[string]any{"path": filepath.ToSlash(rel)}))
	if err != nil {
		return false, err
	}
	return true, nil
}
