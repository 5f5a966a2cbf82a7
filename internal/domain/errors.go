package domain

import "strings"

// ValidationError reports caller-supplied data that violates a documented
// precondition. It carries every violated rule, not just the first, and is
// always produced before any network call is made.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Violations, "; ")
}
