package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjhorn/scaffolding/internal/brick"
	"github.com/sjhorn/scaffolding/internal/config"
	"github.com/sjhorn/scaffolding/internal/domain"
)

const contactModel = `class Contact {
  String firstname = 'Scott';
  String lastname = 'Horn';
  int age = 21;
  bool favourite = true;
}
`

// fakeFS keeps everything in memory so tests never touch the real disk.
type fakeFS struct {
	files    map[string]string
	written  map[string]string
	removed  []string
	writeErr error
}

func newFakeFS(files map[string]string) *fakeFS {
	return &fakeFS{files: files, written: make(map[string]string)}
}

func (f *fakeFS) ReadFile(path string) ([]byte, error) {
	content, ok := f.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(content), nil
}

func (f *fakeFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written[path] = string(data)
	return nil
}

func (f *fakeFS) MkdirAll(path string, perm os.FileMode) error { return nil }

func (f *fakeFS) RemoveAll(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

func (f *fakeFS) Glob(pattern string) ([]string, error) {
	var matches []string
	for path := range f.files {
		if matched, err := filepath.Match(pattern, path); err != nil {
			return nil, err
		} else if matched {
			matches = append(matches, path)
		}
	}
	return matches, nil
}

// fakeEngine returns canned file sets per brick reference and records the
// variables it was handed.
type fakeEngine struct {
	filesByRef map[string]brick.FileSet
	varsByRef  map[string]brick.Variables
	targets    map[string]string

	preGenCalls  int
	postGenCalls int
	preGenErr    error
	generateErr  error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		filesByRef: make(map[string]brick.FileSet),
		varsByRef:  make(map[string]brick.Variables),
		targets:    make(map[string]string),
	}
}

func (e *fakeEngine) PreGen(ctx context.Context, vars brick.Variables) (brick.Variables, error) {
	e.preGenCalls++
	return vars, e.preGenErr
}

func (e *fakeEngine) Generate(ctx context.Context, ref string, vars brick.Variables, targetDir string, onConflict brick.ConflictPolicy) (brick.FileSet, error) {
	if e.generateErr != nil {
		return nil, e.generateErr
	}
	e.varsByRef[ref] = vars
	e.targets[ref] = targetDir
	return e.filesByRef[ref], nil
}

func (e *fakeEngine) PostGen(ctx context.Context, vars brick.Variables) error {
	e.postGenCalls++
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Name:    "myapp",
		Engine:  "mason",
		Bricks:  config.BricksConfig{Feature: "scaffold", Home: "scaffold_home"},
		Include: []string{"lib/*.dart"},
		Exclude: []string{"*.scaffold.dart"},
	}
}

func testGenerator(fs *fakeFS, engine brick.Engine) *Generator {
	return NewGenerator(testConfig(), "/project", engine, fs, zerolog.Nop())
}

func TestGenerate_WritesBundledArtifact(t *testing.T) {
	// Test plan:
	// - The pipeline parses the model, runs both bricks and writes exactly
	//   one bundled artifact next to the input
	// - Imports are deduplicated, sorted, and stripped of self references
	// - The scratch directory is removed

	fs := newFakeFS(map[string]string{
		"/project/lib/contact.dart": contactModel,
	})
	engine := newFakeEngine()
	engine.filesByRef["scaffold"] = brick.FileSet{
		{Path: "repository.dart", Content: "import 'dart:async';\nimport 'package:myapp/contact/view.dart';\nclass ContactRepository {}"},
		{Path: "view.dart", Content: "import 'dart:async';\nclass ContactView {}"},
	}
	engine.filesByRef["scaffold_home"] = brick.FileSet{
		{Path: "home.dart", Content: "import 'package:flutter/widgets.dart';\nclass HomeView {}"},
	}

	g := testGenerator(fs, engine)
	err := g.Generate(context.Background(), "/project/lib/contact.dart")
	require.NoError(t, err)

	out, ok := fs.written["/project/lib/contact.scaffold.dart"]
	require.True(t, ok, "expected artifact to be written")
	require.Len(t, fs.written, 1)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "import 'dart:async';", lines[0])
	assert.Equal(t, "import 'package:flutter/widgets.dart';", lines[1])
	assert.Equal(t, 1, strings.Count(out, "import 'dart:async';"))
	assert.NotContains(t, out, "package:myapp/")
	assert.Contains(t, out, "class ContactRepository {}")
	assert.Contains(t, out, "class ContactView {}")
	assert.Contains(t, out, "class HomeView {}")

	require.Len(t, fs.removed, 1)
	assert.Contains(t, fs.removed[0], "scaffolding-contact-")
}

func TestGenerate_VariableMappings(t *testing.T) {
	// Test plan:
	// - The feature brick gets package, feature and the full property list
	// - The home brick gets the sorted feature names from all matched models

	fs := newFakeFS(map[string]string{
		"/project/lib/contact.dart": contactModel,
		"/project/lib/order.dart":   "class Order {\n  int total = 0;\n}",
	})
	engine := newFakeEngine()
	engine.filesByRef["scaffold"] = brick.FileSet{{Path: "a.dart", Content: "class A {}"}}
	engine.filesByRef["scaffold_home"] = brick.FileSet{{Path: "h.dart", Content: "class H {}"}}

	g := testGenerator(fs, engine)
	require.NoError(t, g.Generate(context.Background(), "/project/lib/contact.dart"))

	featureVars := engine.varsByRef["scaffold"]
	assert.Equal(t, "myapp", featureVars["package"])
	assert.Equal(t, "contact", featureVars["feature"])
	props, ok := featureVars["properties"].([]map[string]string)
	require.True(t, ok)
	require.Len(t, props, 4)
	assert.Equal(t, "firstname", props[0]["name"])
	assert.Equal(t, "'Scott'", props[0]["defaultValue"])

	indexVars := engine.varsByRef["scaffold_home"]
	assert.Equal(t, []string{"contact", "order"}, indexVars["features"])

	assert.Equal(t, 2, engine.preGenCalls)
	assert.Equal(t, 2, engine.postGenCalls)
}

func TestGenerate_DistinctScratchSubdirectories(t *testing.T) {
	// Test plan:
	// - Feature and home bricks target different subdirectories of the same
	//   scratch directory so their writes cannot collide

	fs := newFakeFS(map[string]string{"/project/lib/contact.dart": contactModel})
	engine := newFakeEngine()
	engine.filesByRef["scaffold"] = brick.FileSet{{Path: "a.dart", Content: "class A {}"}}
	engine.filesByRef["scaffold_home"] = brick.FileSet{{Path: "h.dart", Content: "class H {}"}}

	g := testGenerator(fs, engine)
	require.NoError(t, g.Generate(context.Background(), "/project/lib/contact.dart"))

	featureDir := engine.targets["scaffold"]
	homeDir := engine.targets["scaffold_home"]
	assert.NotEqual(t, featureDir, homeDir)
	assert.Equal(t, filepath.Dir(featureDir), filepath.Dir(homeDir))
}

func TestGenerate_MalformedModel(t *testing.T) {
	// Test plan:
	// - A malformed model fails before any templating and writes nothing
	// - The error carries the offending file path

	fs := newFakeFS(map[string]string{
		"/project/lib/contact.dart": "class Contact {\n  DateTime when = DateTime.now();\n}",
	})
	engine := newFakeEngine()

	g := testGenerator(fs, engine)
	err := g.Generate(context.Background(), "/project/lib/contact.dart")
	require.Error(t, err)

	var malformed *domain.MalformedDomainError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "/project/lib/contact.dart", malformed.Path)

	assert.Empty(t, fs.written)
	assert.Equal(t, 0, engine.preGenCalls)
}

func TestGenerate_EngineFailure(t *testing.T) {
	// Test plan:
	// - A brick resolution failure aborts the invocation with nothing written
	// - The scratch directory is still removed

	fs := newFakeFS(map[string]string{"/project/lib/contact.dart": contactModel})
	engine := newFakeEngine()
	engine.generateErr = &brick.ResolutionError{Ref: "scaffold", Err: fmt.Errorf("unreachable")}

	g := testGenerator(fs, engine)
	err := g.Generate(context.Background(), "/project/lib/contact.dart")
	require.Error(t, err)

	var resolution *brick.ResolutionError
	require.ErrorAs(t, err, &resolution)

	assert.Empty(t, fs.written)
	assert.Len(t, fs.removed, 1)
}

func TestGenerate_EmptyEngineOutput(t *testing.T) {
	// Test plan:
	// - An engine that produces no files is an internal invariant violation,
	//   surfaced as a bundling error rather than silently recovered

	fs := newFakeFS(map[string]string{"/project/lib/contact.dart": contactModel})
	engine := newFakeEngine()

	g := testGenerator(fs, engine)
	err := g.Generate(context.Background(), "/project/lib/contact.dart")
	require.Error(t, err)

	var bundling *BundlingError
	require.ErrorAs(t, err, &bundling)
	assert.Empty(t, fs.written)
}

func TestGenerate_WriteFailure(t *testing.T) {
	// Test plan:
	// - A failed artifact write surfaces as a WriteError naming the path

	fs := newFakeFS(map[string]string{"/project/lib/contact.dart": contactModel})
	fs.writeErr = fmt.Errorf("disk full")
	engine := newFakeEngine()
	engine.filesByRef["scaffold"] = brick.FileSet{{Path: "a.dart", Content: "class A {}"}}
	engine.filesByRef["scaffold_home"] = brick.FileSet{{Path: "h.dart", Content: "class H {}"}}

	g := testGenerator(fs, engine)
	err := g.Generate(context.Background(), "/project/lib/contact.dart")
	require.Error(t, err)

	var write *WriteError
	require.ErrorAs(t, err, &write)
	assert.Equal(t, "/project/lib/contact.scaffold.dart", write.Path)
}

func TestGenerate_Cancellation(t *testing.T) {
	// Test plan:
	// - A cancelled context stops the pipeline between steps with nothing
	//   written

	fs := newFakeFS(map[string]string{"/project/lib/contact.dart": contactModel})
	engine := newFakeEngine()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := testGenerator(fs, engine)
	err := g.Generate(ctx, "/project/lib/contact.dart")
	require.ErrorIs(t, err, context.Canceled)

	assert.Empty(t, fs.written)
	assert.Equal(t, 0, engine.preGenCalls)
}

func TestGenerate_Idempotent(t *testing.T) {
	// Test plan:
	// - Regenerating from unchanged input and unchanged engine output twice
	//   yields byte-identical artifacts

	fs := newFakeFS(map[string]string{"/project/lib/contact.dart": contactModel})
	engine := newFakeEngine()
	engine.filesByRef["scaffold"] = brick.FileSet{{Path: "a.dart", Content: "import 'dart:io';\nclass A {}"}}
	engine.filesByRef["scaffold_home"] = brick.FileSet{{Path: "h.dart", Content: "class H {}"}}

	g := testGenerator(fs, engine)
	require.NoError(t, g.Generate(context.Background(), "/project/lib/contact.dart"))
	first := fs.written["/project/lib/contact.scaffold.dart"]

	require.NoError(t, g.Generate(context.Background(), "/project/lib/contact.dart"))
	second := fs.written["/project/lib/contact.scaffold.dart"]

	assert.Equal(t, first, second)
}

func TestInputs(t *testing.T) {
	// Test plan:
	// - Include globs match domain models
	// - Generated artifacts and excluded files never count as inputs
	// - Results are sorted

	fs := newFakeFS(map[string]string{
		"/project/lib/order.dart":            "class Order {}",
		"/project/lib/contact.dart":          contactModel,
		"/project/lib/contact.scaffold.dart": "generated",
		"/project/README.md":                 "docs",
	})

	g := testGenerator(fs, newFakeEngine())
	inputs, err := g.Inputs()
	require.NoError(t, err)

	assert.Equal(t, []string{"/project/lib/contact.dart", "/project/lib/order.dart"}, inputs)
}

func TestOutputPath(t *testing.T) {
	// Test plan:
	// - The artifact path is basename + .scaffold + original extension

	assert.Equal(t, "lib/contact.scaffold.dart", OutputPath("lib/contact.dart"))
	assert.Equal(t, "order.scaffold.dart", OutputPath("order.dart"))
}
