package brick

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner stands in for the mason executable. Its run function receives
// the target directory so it can drop generated files there like the real
// CLI would.
type fakeRunner struct {
	lookPathErr error
	runErr      error
	runOutput   []byte
	run         func(dir string, args []string) error

	gotArgs []string
	gotDir  string
}

func (f *fakeRunner) LookPath(file string) (string, error) {
	if f.lookPathErr != nil {
		return "", f.lookPathErr
	}
	return "/usr/bin/" + file, nil
}

func (f *fakeRunner) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	f.gotDir = dir
	f.gotArgs = append([]string{name}, args...)
	if f.run != nil {
		if err := f.run(dir, args); err != nil {
			return nil, err
		}
	}
	return f.runOutput, f.runErr
}

func newTestEngine(runner commandRunner) *MasonEngine {
	return &MasonEngine{runner: runner, logger: zerolog.Nop()}
}

func TestMasonEngine_Generate(t *testing.T) {
	// Test plan:
	// - Variables are written for the CLI, the brick runs, and the generated
	//   files come back sorted by path
	// - The variables file is removed before collection

	runner := &fakeRunner{
		run: func(dir string, args []string) error {
			if err := os.WriteFile(filepath.Join(dir, "view.dart"), []byte("class View {}"), 0644); err != nil {
				return err
			}
			return os.WriteFile(filepath.Join(dir, "repository.dart"), []byte("class Repo {}"), 0644)
		},
	}
	engine := newTestEngine(runner)

	target := t.TempDir()
	set, err := engine.Generate(context.Background(), "scaffold", Variables{"feature": "contact"}, target, Overwrite)
	require.NoError(t, err)

	require.Len(t, set, 2)
	assert.Equal(t, "repository.dart", set[0].Path)
	assert.Equal(t, "view.dart", set[1].Path)

	assert.Equal(t, []string{
		"mason", "make", "scaffold",
		"-o", target,
		"--on-conflict", "overwrite",
		"-c", filepath.Join(target, ".mason-vars.json"),
	}, runner.gotArgs)
	assert.Equal(t, target, runner.gotDir)
}

func TestMasonEngine_MasonNotInstalled(t *testing.T) {
	// Test plan:
	// - A missing mason binary resolves to a ResolutionError

	engine := newTestEngine(&fakeRunner{lookPathErr: fmt.Errorf("not found")})

	_, err := engine.Generate(context.Background(), "scaffold", Variables{}, t.TempDir(), Overwrite)
	require.Error(t, err)

	var resolution *ResolutionError
	require.ErrorAs(t, err, &resolution)
	assert.Equal(t, "scaffold", resolution.Ref)
}

func TestMasonEngine_BrickFailure(t *testing.T) {
	// Test plan:
	// - A failing mason invocation surfaces its output in a ResolutionError

	engine := newTestEngine(&fakeRunner{
		runErr:    fmt.Errorf("exit status 1"),
		runOutput: []byte("brick not found in registry"),
	})

	_, err := engine.Generate(context.Background(), "missing_brick", Variables{}, t.TempDir(), Overwrite)
	require.Error(t, err)

	var resolution *ResolutionError
	require.ErrorAs(t, err, &resolution)
	assert.Equal(t, "missing_brick", resolution.Ref)
	assert.Contains(t, err.Error(), "brick not found in registry")
}

func TestMasonEngine_HooksPassThrough(t *testing.T) {
	// Test plan:
	// - Mason runs its own hooks, so PreGen/PostGen are identity operations

	engine := newTestEngine(&fakeRunner{})
	vars := Variables{"feature": "contact"}

	got, err := engine.PreGen(context.Background(), vars)
	require.NoError(t, err)
	assert.Equal(t, vars, got)

	require.NoError(t, engine.PostGen(context.Background(), vars))
}
