package workflow

import (
	"errors"
	"fmt"
)

// Typed failures surfaced by Decide. NotFound, InvalidTransition and
// MissingReason are caller errors (4xx-equivalent); RepositoryUnavailable is
// retryable; RevertFailed leaves the change request PENDING so the rejection
// can be retried.
var (
	ErrNotFound              = errors.New("entity not found")
	ErrInvalidTransition     = errors.New("invalid transition")
	ErrMissingReason         = errors.New("rejection reason is required")
	ErrRepositoryUnavailable = errors.New("repository unavailable")
	ErrRevertFailed          = errors.New("revert failed")
)

// PropagationWarning reports a mapped product that could not be updated
// during partner approval propagation. The partner approval itself stands;
// the propagation is retried on the next approval attempt for the same
// partner, which is a no-op for products already updated.
type PropagationWarning struct {
	ProductID string
	Err       error
}

func (w *PropagationWarning) Error() string {
	return fmt.Sprintf("propagation to product %s failed: %v", w.ProductID, w.Err)
}

func (w *PropagationWarning) Unwrap() error { return w.Err }
