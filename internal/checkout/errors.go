package checkout

import (
	"errors"
	"fmt"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

// ValidationError names the required shipping field that is missing.
// It is raised locally, before any network call.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}
