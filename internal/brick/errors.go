package brick

import "fmt"

// ResolutionError reports a brick reference that could not be fetched or run.
// It aborts the whole build step; there is no partial generation.
type ResolutionError struct {
	Ref string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve brick %q: %v", e.Ref, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
