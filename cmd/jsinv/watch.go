package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/arjunmahishi/jsinv/jsinv"
	"github.com/arjunmahishi/jsinv/output"
	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v3"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "scan a directory, then re-analyze files as they change (one JSON line per file)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Value: ".",
				Usage: "root path to watch",
			},
			languageFlag(),
			sourceTypeFlag(),
			&cli.DurationFlag{
				Name:  "debounce",
				Value: 250 * time.Millisecond,
				Usage: "quiet period before re-analyzing changed files",
			},
		},
		Action: runWatch,
	}
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(cmd.String("path"))
	if err != nil {
		return err
	}
	opts := jsinv.ScanOptions{
		Language:   cmd.String("lang"),
		SourceType: jsinv.SourceType(cmd.String("source-type")),
		Path:       root,
	}

	w := output.New(output.Config{Compact: true, Output: writer(cmd)})

	results, err := jsinv.Scan(opts)
	if err != nil {
		return err
	}
	for _, r := range results {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	logger.Info("initial scan complete", slog.String("root", root), slog.Int("files", len(results)))

	return watchTree(ctx, root, cmd.Duration("debounce"), logger, func(changed []string) {
		for _, path := range changed {
			r, ok := reanalyze(root, path, opts, logger)
			if !ok {
				continue
			}
			if err := w.Write(r); err != nil {
				logger.Error("write result", slog.String("file", r.File), slog.Any("error", err))
			}
		}
	})
}

// reanalyze analyzes one changed file. Removed files and files no
// registered language handles are skipped.
func reanalyze(root, path string, opts jsinv.ScanOptions, logger *slog.Logger) (jsinv.FileReport, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		logger.Debug("skip changed path", slog.String("path", path))
		return jsinv.FileReport{}, false
	}
	if opts.Language == "" && jsinv.ByExtension(filepath.Ext(path)) == nil {
		return jsinv.FileReport{}, false
	}

	results, err := jsinv.Scan(jsinv.ScanOptions{
		Language:   opts.Language,
		SourceType: opts.SourceType,
		File:       path,
		Jobs:       1,
	})
	if err != nil || len(results) != 1 {
		logger.Debug("skip changed file", slog.String("path", path), slog.Any("error", err))
		return jsinv.FileReport{}, false
	}

	r := results[0]
	if rel, err := filepath.Rel(root, path); err == nil {
		r.File = filepath.ToSlash(rel)
	}
	if r.Error != "" {
		logger.Warn("parse failed", slog.String("file", r.File), slog.String("error", r.Error))
	}
	return r, true
}

// watchTree watches root recursively and calls onChange with the sorted set
// of paths touched during each debounce window. It returns when ctx is done.
func watchTree(ctx context.Context, root string, debounce time.Duration, logger *slog.Logger, onChange func(changed []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	ignore := jsinv.DefaultIgnoreDirs()
	if err := addWatchRecursive(watcher, root, ignore); err != nil {
		return err
	}

	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)
			if _, skip := ignore[filepath.Base(path)]; skip {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
					if err := addWatchRecursive(watcher, path, ignore); err != nil {
						logger.Warn("watch new directory", slog.String("path", path), slog.Any("error", err))
					}
					continue
				}
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}

			pending[path] = true
			timer.Reset(debounce)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pending = map[string]bool{}
			logger.Debug("files changed", slog.Int("count", len(changed)))
			onChange(changed)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return watchErr
		}
	}
}

func addWatchRecursive(watcher *fsnotify.Watcher, root string, ignore map[string]struct{}) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			if _, skip := ignore[d.Name()]; skip {
				return filepath.SkipDir
			}
		}
		return watcher.Add(path)
	})
}
