package domain

import "fmt"

// MalformedDomainError reports a domain-model file the generator cannot
// scaffold: the source does not parse, it does not declare exactly one class,
// a field has no initializer, or a field's type is unsupported.
type MalformedDomainError struct {
	Path   string
	Reason string
}

func (e *MalformedDomainError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed domain model: %s", e.Reason)
	}
	return fmt.Sprintf("malformed domain model %s: %s", e.Path, e.Reason)
}
