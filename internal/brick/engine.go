// Package brick defines the contract with the external template engine that
// materializes parameterized file bundles ("bricks"), plus the variable
// mappings the engine consumes.
package brick

import "context"

// ConflictPolicy controls what the engine does when a generated file already
// exists in the target directory.
type ConflictPolicy string

// Overwrite replaces existing files. The pipeline always regenerates fully
// rather than patching.
const Overwrite ConflictPolicy = "overwrite"

// Variables is the mapping handed to the template engine for substitution.
type Variables map[string]any

// File is one generated file read back from the engine's target directory.
// Path is relative to the target directory.
type File struct {
	Path    string
	Content string
}

// FileSet is the ordered output of one engine invocation.
type FileSet []File

// Engine materializes bricks into concrete files. Implementations wrap an
// external tool; the substitution logic itself is not part of this module.
type Engine interface {
	// PreGen runs before generation and may derive additional variables.
	PreGen(ctx context.Context, vars Variables) (Variables, error)

	// Generate materializes the brick identified by ref into targetDir and
	// returns the files it produced, sorted by path.
	Generate(ctx context.Context, ref string, vars Variables, targetDir string, onConflict ConflictPolicy) (FileSet, error)

	// PostGen runs after generation, once the file set is on disk.
	PostGen(ctx context.Context, vars Variables) error
}
