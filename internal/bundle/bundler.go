// Package bundle merges the template engine's multi-file output into one
// importable source file with a deduplicated, sorted import block.
package bundle

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ScaffoldSuffix marks bundled artifacts: contact.dart -> contact.scaffold.dart.
const ScaffoldSuffix = ".scaffold.dart"

// Directive patterns for the generated Dart sources. export and part wiring
// only makes sense across separate files, so those lines are dropped when
// the files are merged into one.
var (
	importLine = regexp.MustCompile(`^\s*import\s+.+;\s*$`)
	exportLine = regexp.MustCompile(`^\s*export\s+.+;\s*$`)
	partLine   = regexp.MustCompile(`^\s*part(\s+of)?\s+.+;\s*$`)
)

// File pairs a generated file's path with its content.
type File struct {
	Path    string
	Content string
}

// Bundler merges generated source files for one target package.
type Bundler struct {
	packageName string
}

// New creates a bundler for the given target package namespace.
func New(packageName string) *Bundler {
	return &Bundler{packageName: packageName}
}

// Bundle concatenates file bodies with import/export/part directives
// stripped, then prepends the deduplicated, lexicographically sorted import
// set. Files are sorted by path first, so output is byte-identical no matter
// what order the files are passed in. Imports that resolve back into the
// target package or into a scaffold bundle are removed: both would create a
// cycle into the file being produced.
func (b *Bundler) Bundle(files []File) (string, error) {
	sorted := make([]File, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	imports := make(map[string]struct{})
	var body strings.Builder
	bundled := 0

	for _, f := range sorted {
		// Hidden files are engine metadata, not part of the module.
		if strings.HasPrefix(filepath.Base(f.Path), ".") {
			continue
		}

		var kept []string
		for _, line := range strings.Split(f.Content, "\n") {
			switch {
			case importLine.MatchString(line):
				imports[strings.TrimSpace(line)] = struct{}{}
			case exportLine.MatchString(line), partLine.MatchString(line):
				// dropped
			default:
				kept = append(kept, line)
			}
		}

		body.WriteString(strings.TrimSpace(strings.Join(kept, "\n")))
		body.WriteString("\n")
		bundled++
	}

	if bundled == 0 {
		return "", fmt.Errorf("no files to bundle")
	}

	selfPackage := "package:" + b.packageName + "/"
	keep := make([]string, 0, len(imports))
	for imp := range imports {
		if strings.Contains(imp, selfPackage) || strings.Contains(imp, ScaffoldSuffix) {
			continue
		}
		keep = append(keep, imp)
	}
	sort.Strings(keep)

	if len(keep) == 0 {
		return body.String(), nil
	}
	return strings.Join(keep, "\n") + "\n\n" + body.String(), nil
}
