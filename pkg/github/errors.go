package github

import (
	"errors"
	"fmt"
)

// Typed failures callers surface to the user without interpreting beyond
// the category.
var (
	ErrNotFound    = errors.New("repository path not found")
	ErrRateLimited = errors.New("rate limited by remote API")
)

// HTTPError is the generic remote failure for statuses with no dedicated
// sentinel.
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("remote API returned %d for %s", e.Status, e.URL)
}
