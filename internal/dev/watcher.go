// Package dev runs the watch mode: domain-model files are regenerated as
// they change on disk.
package dev

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher watches a directory tree and reports changes to files matching the
// configured patterns.
type Watcher struct {
	watcher  *fsnotify.Watcher
	patterns []string
	exclude  []string
	onChange func(path string, op fsnotify.Op)
	logger   zerolog.Logger
}

// NewWatcher creates a watcher. onChange is called for every event whose path
// matches the patterns and none of the exclusions.
func NewWatcher(patterns, exclude []string, onChange func(path string, op fsnotify.Op), logger zerolog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsWatcher,
		patterns: patterns,
		exclude:  exclude,
		onChange: onChange,
		logger:   logger.With().Str("component", "watcher").Logger(),
	}, nil
}

// AddDirectory recursively registers a directory tree with the watcher.
func (w *Watcher) AddDirectory(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		for _, pattern := range w.exclude {
			matched, _ := filepath.Match(pattern, filepath.Base(path))
			if matched {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch directory %s: %w", path, err)
			}
		}

		return nil
	})
}

// Start delivers change events until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}

			if w.matches(event.Name) {
				w.onChange(event.Name, event.Op)
			}

			// Newly created directories need to be registered too.
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.AddDirectory(event.Name); err != nil {
						w.logger.Warn().Err(err).Str("dir", event.Name).Msg("failed to watch new directory")
					}
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			if err != nil {
				w.logger.Warn().Err(err).Msg("watcher error")
			}
		}
	}
}

// matches reports whether a path should trigger a change event.
func (w *Watcher) matches(path string) bool {
	base := filepath.Base(path)

	for _, pattern := range w.exclude {
		if matched, _ := filepath.Match(pattern, base); matched {
			return false
		}
	}

	for _, pattern := range w.patterns {
		if strings.HasPrefix(pattern, "**/") {
			if matched, _ := filepath.Match(strings.TrimPrefix(pattern, "**/"), base); matched {
				return true
			}
		} else if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
