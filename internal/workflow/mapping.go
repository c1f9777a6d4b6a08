package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/superapp/marketplace-approvals/internal/metrics"
	"github.com/superapp/marketplace-approvals/pkg/model"
)

// MappingMaintainer keeps the Partner↔Product back-reference lists mutually
// consistent. The mapping is declared once, from the partner side, at
// creation time; approval is the point at which it becomes live, so the
// product-side projection is written here and nowhere else.
type MappingMaintainer struct {
	repo   Repository
	logger *zap.Logger
}

// NewMappingMaintainer creates a new MappingMaintainer.
func NewMappingMaintainer(repo Repository, logger *zap.Logger) *MappingMaintainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MappingMaintainer{repo: repo, logger: logger}
}

// Propagate appends the partner's ref to every mapped product that does not
// already carry it. It is idempotent so a retried approval converges instead
// of duplicating refs. Per-product failures do not roll back the partner's
// own status change; they come back as PropagationWarnings for the caller to
// surface and retry.
func (m *MappingMaintainer) Propagate(ctx context.Context, partner *model.Partner) []error {
	var warnings []error
	for _, ref := range partner.Products {
		if err := m.propagateOne(ctx, partner, ref.ID); err != nil {
			m.logger.Warn("mapping.propagation_failed",
				zap.String("partner_id", partner.ID),
				zap.String("product_id", ref.ID),
				zap.Error(err))
			metrics.IncPropagation("error")
			warnings = append(warnings, &PropagationWarning{ProductID: ref.ID, Err: err})
			continue
		}
		metrics.IncPropagation("ok")
	}
	return warnings
}

func (m *MappingMaintainer) propagateOne(ctx context.Context, partner *model.Partner, productID string) error {
	product, err := m.repo.GetProduct(ctx, productID)
	if err != nil {
		return mapStoreErr(err)
	}
	if product.HasPartner(partner.ID) {
		// Already consistent, e.g. a retried approval after partial failure.
		return nil
	}
	product.Partners = append(product.Partners, partner.Ref())
	if err := m.repo.SaveProduct(ctx, product, product.Status); err != nil {
		return mapStoreErr(err)
	}
	m.logger.Info("mapping.partner_linked",
		zap.String("partner_id", partner.ID),
		zap.String("product_id", productID))
	return nil
}
