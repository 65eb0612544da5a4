package generate

import "fmt"

// WriteError reports a final artifact that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write artifact %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// BundlingError wraps a failure while merging generated files. Bundling is a
// pure text transform over already-generated files, so any occurrence means
// an earlier step produced malformed output.
type BundlingError struct {
	Err error
}

func (e *BundlingError) Error() string {
	return fmt.Sprintf("bundling failed: %v", e.Err)
}

func (e *BundlingError) Unwrap() error {
	return e.Err
}
