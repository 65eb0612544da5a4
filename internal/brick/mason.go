package brick

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
)

// commandRunner is the seam between the mason engine and the host system.
type commandRunner interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}

type osRunner struct{}

func (osRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osRunner) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// MasonEngine drives the mason CLI. Variables are passed through a JSON file
// and the generated file set is read back from the target directory. Mason's
// own pre_gen/post_gen hooks run inside the brick, so the Engine hooks here
// are pass-throughs.
type MasonEngine struct {
	runner commandRunner
	logger zerolog.Logger
}

// NewMasonEngine creates an engine backed by the mason executable on PATH.
func NewMasonEngine(logger zerolog.Logger) *MasonEngine {
	return &MasonEngine{
		runner: osRunner{},
		logger: logger.With().Str("component", "mason").Logger(),
	}
}

func (m *MasonEngine) PreGen(ctx context.Context, vars Variables) (Variables, error) {
	return vars, nil
}

func (m *MasonEngine) PostGen(ctx context.Context, vars Variables) error {
	return nil
}

// Generate materializes the brick into targetDir via `mason make`.
func (m *MasonEngine) Generate(ctx context.Context, ref string, vars Variables, targetDir string, onConflict ConflictPolicy) (FileSet, error) {
	if _, err := m.runner.LookPath("mason"); err != nil {
		return nil, &ResolutionError{Ref: ref, Err: fmt.Errorf("mason CLI is not installed: %w", err)}
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create target directory: %w", err)
	}

	data, err := json.Marshal(vars)
	if err != nil {
		return nil, fmt.Errorf("failed to encode brick variables: %w", err)
	}

	varsPath := filepath.Join(targetDir, ".mason-vars.json")
	if err := os.WriteFile(varsPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write brick variables: %w", err)
	}

	m.logger.Debug().
		Str("brick", ref).
		Str("target", targetDir).
		Msg("invoking mason make")

	output, err := m.runner.Run(ctx, targetDir, "mason",
		"make", ref,
		"-o", targetDir,
		"--on-conflict", string(onConflict),
		"-c", varsPath)
	if err != nil {
		return nil, &ResolutionError{Ref: ref, Err: fmt.Errorf("%w\nOutput: %s", err, output)}
	}

	if err := os.Remove(varsPath); err != nil {
		m.logger.Warn().Err(err).Str("path", varsPath).Msg("failed to remove variables file")
	}

	return collectFiles(targetDir)
}

// collectFiles reads every generated file under dir, sorted by path so
// downstream bundling sees a deterministic enumeration.
func collectFiles(dir string) (FileSet, error) {
	var set FileSet
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		set = append(set, File{Path: rel, Content: string(data)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect generated files: %w", err)
	}

	sort.Slice(set, func(i, j int) bool { return set[i].Path < set[j].Path })
	return set, nil
}
