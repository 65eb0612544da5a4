// Package generate wires the parser, variable builder, template engine and
// bundler into the per-input build step.
package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sjhorn/scaffolding/internal/brick"
	"github.com/sjhorn/scaffolding/internal/bundle"
	"github.com/sjhorn/scaffolding/internal/config"
	"github.com/sjhorn/scaffolding/internal/domain"
)

// State tracks where a single generation invocation is in its pipeline.
type State int

const (
	StateIdle State = iota
	StateParsing
	StateVariableBuilding
	StateFeatureTemplate
	StateIndexTemplate
	StateBundling
	StateWriting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateParsing:
		return "parsing"
	case StateVariableBuilding:
		return "variable-building"
	case StateFeatureTemplate:
		return "feature-template"
	case StateIndexTemplate:
		return "index-template"
	case StateBundling:
		return "bundling"
	case StateWriting:
		return "writing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Generator runs the scaffold pipeline for domain-model files. All
// collaborators are passed in explicitly so the pipeline is testable in
// isolation.
type Generator struct {
	config      *config.Config
	projectRoot string
	engine      brick.Engine
	fs          FileSystem
	bundler     *bundle.Bundler
	logger      zerolog.Logger
	scratchRoot string
}

// NewGenerator creates a generator for one project.
func NewGenerator(cfg *config.Config, projectRoot string, engine brick.Engine, fs FileSystem, logger zerolog.Logger) *Generator {
	return &Generator{
		config:      cfg,
		projectRoot: projectRoot,
		engine:      engine,
		fs:          fs,
		bundler:     bundle.New(cfg.Name),
		logger:      logger.With().Str("component", "generator").Logger(),
		scratchRoot: os.TempDir(),
	}
}

// invocation carries the state of one build step. Invocations for different
// inputs are independent and may run concurrently; within one invocation the
// steps are strictly sequential.
type invocation struct {
	state  State
	logger zerolog.Logger
}

func (inv *invocation) transition(next State) {
	inv.logger.Debug().
		Str("from", inv.state.String()).
		Str("to", next.String()).
		Msg("state transition")
	inv.state = next
}

// OutputPath returns the artifact path for an input file: the same basename
// with the scaffold marker inserted before the extension.
func OutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + ".scaffold" + ext
}

// Generate runs the full pipeline for one domain-model file: parse, build
// variables, materialize the feature and home bricks, bundle, write. Any
// failure aborts the invocation with nothing written; the caller decides
// whether a later trigger retries.
func (g *Generator) Generate(ctx context.Context, inputPath string) (err error) {
	inv := &invocation{
		state:  StateIdle,
		logger: g.logger.With().Str("input", inputPath).Logger(),
	}
	defer func() {
		if err != nil {
			inv.transition(StateFailed)
		}
	}()

	inv.transition(StateParsing)
	source, err := g.fs.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read domain model %s: %w", inputPath, err)
	}
	info, err := domain.Parse(string(source))
	if err != nil {
		var malformed *domain.MalformedDomainError
		if errors.As(err, &malformed) && malformed.Path == "" {
			malformed.Path = inputPath
		}
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	inv.transition(StateVariableBuilding)
	featureVars := brick.FeatureVariables(g.config.Name, info)
	features, err := g.features()
	if err != nil {
		return err
	}
	indexVars := brick.IndexVariables(g.config.Name, features)

	// One scratch directory per invocation; the timestamp keeps concurrent
	// invocations from colliding. Removed on every exit path.
	scratch := filepath.Join(g.scratchRoot,
		fmt.Sprintf("scaffolding-%s-%d", brick.SnakeCase(info.Name), time.Now().UnixNano()))
	defer func() {
		if rmErr := g.fs.RemoveAll(scratch); rmErr != nil {
			inv.logger.Warn().Err(rmErr).Str("dir", scratch).Msg("failed to remove scratch directory")
		}
	}()

	inv.transition(StateFeatureTemplate)
	featureSet, err := g.runBrick(ctx, g.config.Bricks.Feature, featureVars, filepath.Join(scratch, "feature"))
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	inv.transition(StateIndexTemplate)
	indexSet, err := g.runBrick(ctx, g.config.Bricks.Home, indexVars, filepath.Join(scratch, "home"))
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	inv.transition(StateBundling)
	files := make([]bundle.File, 0, len(featureSet)+len(indexSet))
	for _, f := range featureSet {
		files = append(files, bundle.File{Path: filepath.Join("feature", f.Path), Content: f.Content})
	}
	for _, f := range indexSet {
		files = append(files, bundle.File{Path: filepath.Join("home", f.Path), Content: f.Content})
	}
	text, err := g.bundler.Bundle(files)
	if err != nil {
		return &BundlingError{Err: err}
	}

	inv.transition(StateWriting)
	outputPath := OutputPath(inputPath)
	if err = g.fs.WriteFile(outputPath, []byte(text), 0644); err != nil {
		return &WriteError{Path: outputPath, Err: err}
	}

	inv.transition(StateDone)
	inv.logger.Info().
		Str("output", outputPath).
		Int("fields", len(info.Fields)).
		Msg("scaffold generated")
	return nil
}

// runBrick wraps one engine invocation in its pre/post generation hooks.
func (g *Generator) runBrick(ctx context.Context, ref string, vars brick.Variables, targetDir string) (brick.FileSet, error) {
	vars, err := g.engine.PreGen(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("pre-generation hook failed for brick %q: %w", ref, err)
	}

	set, err := g.engine.Generate(ctx, ref, vars, targetDir, brick.Overwrite)
	if err != nil {
		return nil, err
	}

	if err := g.engine.PostGen(ctx, vars); err != nil {
		return nil, fmt.Errorf("post-generation hook failed for brick %q: %w", ref, err)
	}

	return set, nil
}

// Inputs returns every domain-model file matched by the configured include
// globs, minus exclusions and previously generated artifacts, sorted.
func (g *Generator) Inputs() ([]string, error) {
	seen := make(map[string]struct{})
	var inputs []string

	for _, pattern := range g.config.Include {
		matches, err := g.fs.Glob(filepath.Join(g.projectRoot, pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if strings.HasSuffix(m, bundle.ScaffoldSuffix) || g.excluded(m) {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			inputs = append(inputs, m)
		}
	}

	sort.Strings(inputs)
	return inputs, nil
}

// features lists the feature token for every matched domain model. Inputs
// follow the class-per-file convention, so the token derives from the
// file basename.
func (g *Generator) features() ([]string, error) {
	inputs, err := g.Inputs()
	if err != nil {
		return nil, err
	}

	features := make([]string, 0, len(inputs))
	for _, input := range inputs {
		base := filepath.Base(input)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		features = append(features, brick.SnakeCase(name))
	}
	return features, nil
}

func (g *Generator) excluded(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range g.config.Exclude {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
