package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/superapp/marketplace-approvals/internal/store"
	"github.com/superapp/marketplace-approvals/pkg/model"
)

// Repository is the subset of the entity store the workflow engine needs.
// Save methods are guarded by the status the engine observed at load time;
// a lost race surfaces as store.ErrStatusConflict.
type Repository interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetPartner(ctx context.Context, id string) (*model.Partner, error)
	GetAsset(ctx context.Context, id string) (*model.Asset, error)
	GetChangeRequest(ctx context.Context, id string) (*model.ChangeRequest, error)

	SaveProduct(ctx context.Context, p *model.Product, expected model.ProductStatus) error
	SavePartner(ctx context.Context, p *model.Partner, expected model.PartnerStatus) error
	SaveAsset(ctx context.Context, a *model.Asset, expected model.AssetStatus) error
	SaveChangeRequest(ctx context.Context, cr *model.ChangeRequest, expected model.ChangeRequestStatus) error

	RecordApprovalEvent(ctx context.Context, ev model.ApprovalEvent) error
}

// mapStoreErr translates repository failures into the workflow's typed
// errors. A guarded save losing its race means another decision moved the
// entity first, which callers see as InvalidTransition (the stale-UI
// double-click case). Anything else is a retryable availability problem.
func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrStatusConflict):
		return ErrInvalidTransition
	default:
		return fmt.Errorf("%w: %w", ErrRepositoryUnavailable, err)
	}
}
