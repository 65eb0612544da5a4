package dev

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/sjhorn/scaffolding/internal/bundle"
	"github.com/sjhorn/scaffolding/internal/config"
	"github.com/sjhorn/scaffolding/internal/generate"
)

// Server watches the project tree and regenerates scaffolds as domain models
// change. Invocations for distinct inputs run concurrently; a newer save of
// the same input cancels the invocation still running for it.
type Server struct {
	config      *config.Config
	projectRoot string
	generator   *generate.Generator
	logger      zerolog.Logger

	mu      sync.Mutex
	running map[string]*runHandle
	wg      sync.WaitGroup
}

type runHandle struct {
	cancel context.CancelFunc
}

// NewServer creates a watch server around a generator.
func NewServer(cfg *config.Config, projectRoot string, generator *generate.Generator, logger zerolog.Logger) *Server {
	return &Server{
		config:      cfg,
		projectRoot: projectRoot,
		generator:   generator,
		logger:      logger.With().Str("component", "dev-server").Logger(),
		running:     make(map[string]*runHandle),
	}
}

// Start runs an initial full generation pass, then watches for changes until
// the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	inputs, err := s.generator.Inputs()
	if err != nil {
		return fmt.Errorf("failed to discover domain models: %w", err)
	}

	fmt.Printf("🔨 Running initial generation for %d domain model(s)...\n", len(inputs))
	for _, input := range inputs {
		if err := s.generator.Generate(ctx, input); err != nil {
			fmt.Printf("❌ %s: %v\n", input, err)
			s.logger.Error().Err(err).Str("input", input).Msg("initial generation failed")
		}
	}

	watcher, err := NewWatcher(s.config.Dev.Watch, s.config.Dev.Exclude, func(path string, op fsnotify.Op) {
		s.handleChange(ctx, path, op)
	}, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.AddDirectory(s.projectRoot); err != nil {
		return fmt.Errorf("failed to watch project directory: %w", err)
	}

	fmt.Println("👀 Watching for changes...")
	err = watcher.Start(ctx)
	s.wg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// handleChange regenerates the scaffold for a changed domain-model file.
func (s *Server) handleChange(ctx context.Context, path string, op fsnotify.Op) {
	if op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !s.isInput(path) {
		return
	}

	relPath, _ := filepath.Rel(s.projectRoot, path)
	fmt.Printf("\n📝 Domain model changed: %s\n", relPath)

	// The latest save wins: cancel any invocation still running for this input.
	s.mu.Lock()
	if prev, ok := s.running[path]; ok {
		prev.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	handle := &runHandle{cancel: cancel}
	s.running[path] = handle
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			cancel()
			s.mu.Lock()
			if s.running[path] == handle {
				delete(s.running, path)
			}
			s.mu.Unlock()
		}()

		if err := s.generator.Generate(runCtx, path); err != nil {
			if errors.Is(err, context.Canceled) {
				s.logger.Debug().Str("input", path).Msg("invocation superseded by a newer change")
				return
			}
			fmt.Printf("❌ %s: %v\n", relPath, err)
			s.logger.Error().Err(err).Str("input", path).Msg("generation failed")
			return
		}

		fmt.Printf("✅ %s → %s\n", relPath, filepath.Base(generate.OutputPath(path)))
	}()
}

// isInput reports whether a changed path is a configured domain-model file.
// Generated artifacts never retrigger generation.
func (s *Server) isInput(path string) bool {
	if strings.HasSuffix(path, bundle.ScaffoldSuffix) {
		return false
	}

	rel, err := filepath.Rel(s.projectRoot, path)
	if err != nil {
		return false
	}

	base := filepath.Base(path)
	for _, pattern := range s.config.Exclude {
		if matched, _ := filepath.Match(pattern, base); matched {
			return false
		}
	}
	for _, pattern := range s.config.Include {
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}
