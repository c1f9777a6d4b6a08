package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/superapp/marketplace-approvals/internal/metrics"
	"github.com/superapp/marketplace-approvals/pkg/model"
)

// ChangeRequestEngine encapsulates the apply-ahead pattern for product
// configuration toggles: the mutation is applied to the live product the
// moment the change request is created, so approval is pure bookkeeping and
// rejection must restore the captured pre-image.
type ChangeRequestEngine struct {
	repo   Repository
	logger *zap.Logger
}

// NewChangeRequestEngine creates a new ChangeRequestEngine.
func NewChangeRequestEngine(repo Repository, logger *zap.Logger) *ChangeRequestEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeRequestEngine{repo: repo, logger: logger}
}

// Revert restores the product field touched by cr to cr.CurrentValue, the
// pre-image captured at request creation. The live value is never used to
// compute the target: it may have drifted since the optimistic apply.
// Every failure is wrapped in ErrRevertFailed so the caller leaves the
// change request PENDING and the rejection stays retryable.
func (e *ChangeRequestEngine) Revert(ctx context.Context, cr *model.ChangeRequest) error {
	product, err := e.repo.GetProduct(ctx, cr.ProductID)
	if err != nil {
		metrics.IncRevert("error")
		return fmt.Errorf("%w: load product %s: %w", ErrRevertFailed, cr.ProductID, mapStoreErr(err))
	}

	loadedStatus := product.Status
	changed, err := e.applyInverse(product, cr)
	if err != nil {
		metrics.IncRevert("error")
		return err
	}
	if !changed {
		// Live value already matches the pre-image; nothing to write.
		metrics.IncRevert("noop")
		return nil
	}

	if err := e.repo.SaveProduct(ctx, product, loadedStatus); err != nil {
		metrics.IncRevert("error")
		return fmt.Errorf("%w: restore product %s: %w", ErrRevertFailed, cr.ProductID, mapStoreErr(err))
	}

	e.logger.Info("changerequest.reverted",
		zap.String("change_request_id", cr.ID),
		zap.String("product_id", cr.ProductID),
		zap.String("action", string(cr.Action)),
		zap.String("restored_value", cr.CurrentValue))
	metrics.IncRevert("ok")
	return nil
}

// applyInverse mutates product in memory to undo cr's optimistic change.
// It reports whether a write is needed.
func (e *ChangeRequestEngine) applyInverse(product *model.Product, cr *model.ChangeRequest) (bool, error) {
	switch cr.Action {
	case model.ActionOperationalToggle:
		target := model.ProductStatus(cr.CurrentValue)
		if product.Status == target {
			return false, nil
		}
		product.Status = target
		return true, nil

	case model.ActionWhitelistToggle:
		want := model.BoolValue(cr.CurrentValue)
		if product.WhitelistMode == want {
			return false, nil
		}
		product.WhitelistMode = want
		return true, nil

	case model.ActionMaintenanceToggle:
		want := model.BoolValue(cr.CurrentValue)
		if product.MaintenanceMode == want {
			return false, nil
		}
		product.MaintenanceMode = want
		return true, nil

	default:
		return false, fmt.Errorf("%w: unknown action %q", ErrRevertFailed, cr.Action)
	}
}
