package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/superapp/marketplace-approvals/internal/store"
	"github.com/superapp/marketplace-approvals/pkg/model"
)

// ErrMappingNotEstablished is returned when an asset is created for a
// partner-product pair whose mapping has not gone live yet (the partner is
// missing from the product's partners list).
var ErrMappingNotEstablished = errors.New("partner-product mapping not established")

// Service handles entity onboarding: creating products, partners, assets and
// change requests in their initial lifecycle states. Review happens
// elsewhere; nothing here moves an entity past its creation status.
type Service struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a catalog Service.
func NewService(st store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  st,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateProductInput carries the fields an admin submits for a new product.
type CreateProductInput struct {
	Code        string
	Name        string
	ProductType string
	Submit      bool // true sends the product straight to review instead of DRAFT
}

// CreateProduct inserts a new product in DRAFT, or PENDING_APPROVAL when
// submitted for review immediately.
func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (*model.Product, error) {
	status := model.ProductDraft
	if in.Submit {
		status = model.ProductPendingApproval
	}
	product := &model.Product{
		ID:          uuid.NewString(),
		Code:        in.Code,
		Name:        in.Name,
		ProductType: in.ProductType,
		Status:      status,
		Partners:    []model.PartnerRef{},
		CreatedAt:   s.now(),
	}
	if err := s.store.InsertProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	s.logger.Info("catalog.product_created",
		zap.String("product_id", product.ID),
		zap.String("code", product.Code),
		zap.String("status", string(product.Status)))
	return product, nil
}

// CreatePartnerInput carries the fields an admin submits for a new partner.
// ProductIDs declares the partner-product mappings; they go live only when
// the partner is approved.
type CreatePartnerInput struct {
	Code         string
	Name         string
	Type         string
	ContactEmail string
	ContactPhone string
	WebhookURL   string
	ProductIDs   []string
}

// CreatePartner inserts a new partner in PENDING with its declared product
// refs resolved. Unknown product ids fail the creation: a mapping to a
// product that does not exist could never be propagated.
func (s *Service) CreatePartner(ctx context.Context, in CreatePartnerInput) (*model.Partner, error) {
	refs := make([]model.ProductRef, 0, len(in.ProductIDs))
	for _, pid := range in.ProductIDs {
		product, err := s.store.GetProduct(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("resolve product %s: %w", pid, err)
		}
		refs = append(refs, model.ProductRef{ID: product.ID, Name: product.Name, Code: product.Code})
	}

	partner := &model.Partner{
		ID:           uuid.NewString(),
		Code:         in.Code,
		Name:         in.Name,
		Type:         in.Type,
		Status:       model.PartnerPending,
		Products:     refs,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		WebhookURL:   in.WebhookURL,
		CreatedAt:    s.now(),
	}
	if err := s.store.InsertPartner(ctx, partner); err != nil {
		return nil, fmt.Errorf("insert partner: %w", err)
	}
	s.logger.Info("catalog.partner_created",
		zap.String("partner_id", partner.ID),
		zap.String("code", partner.Code),
		zap.Int("mapped_products", len(refs)))
	return partner, nil
}

// CreateAssetInput carries the fields submitted for a new asset listing.
type CreateAssetInput struct {
	Code          string
	Name          string
	AssetType     string
	ProductID     string
	PartnerID     string
	CurrentPrice  decimal.Decimal
	MinInvestment decimal.Decimal
	Currency      string
}

// CreateAsset inserts a new asset in PENDING_APPROVAL. An asset may only be
// listed under an established mapping: the product's partners list must
// already carry the partner, which happens on partner approval.
func (s *Service) CreateAsset(ctx context.Context, in CreateAssetInput) (*model.Asset, error) {
	product, err := s.store.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("resolve product %s: %w", in.ProductID, err)
	}
	if !product.HasPartner(in.PartnerID) {
		return nil, fmt.Errorf("%w: partner %s is not mapped on product %s",
			ErrMappingNotEstablished, in.PartnerID, in.ProductID)
	}

	asset := &model.Asset{
		ID:            uuid.NewString(),
		Code:          in.Code,
		Name:          in.Name,
		AssetType:     in.AssetType,
		Status:        model.AssetPendingApproval,
		ProductID:     in.ProductID,
		PartnerID:     in.PartnerID,
		CurrentPrice:  in.CurrentPrice,
		MinInvestment: in.MinInvestment,
		Currency:      in.Currency,
		CreatedAt:     s.now(),
	}
	if err := s.store.InsertAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("insert asset: %w", err)
	}

	// Keep the product's display counter in step; a lost update here only
	// skews a dashboard number, so it does not fail the creation.
	product.AssetsCount++
	if err := s.store.SaveProduct(ctx, product, product.Status); err != nil {
		s.logger.Warn("catalog.assets_count_update_failed",
			zap.String("product_id", product.ID),
			zap.Error(err))
	}

	s.logger.Info("catalog.asset_created",
		zap.String("asset_id", asset.ID),
		zap.String("product_id", asset.ProductID),
		zap.String("partner_id", asset.PartnerID))
	return asset, nil
}

// CreateChangeRequestInput carries a proposed product configuration change.
type CreateChangeRequestInput struct {
	ProductID     string
	Action        model.ChangeAction
	CurrentValue  string // optional; captured from the live product when empty
	ProposedValue string
	RequestedBy   string
}

// CreateChangeRequest records a configuration change and applies it to the
// product immediately (apply-ahead). The pre-image is captured now, at
// creation, and becomes the fixed revert target; review later either
// confirms the already-live change or restores this pre-image.
func (s *Service) CreateChangeRequest(ctx context.Context, in CreateChangeRequestInput) (*model.ChangeRequest, error) {
	product, err := s.store.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("resolve product %s: %w", in.ProductID, err)
	}

	current := in.CurrentValue
	if current == "" {
		current = liveValue(product, in.Action)
	}

	cr := &model.ChangeRequest{
		ID:            uuid.NewString(),
		ProductID:     product.ID,
		ProductCode:   product.Code,
		ProductName:   product.Name,
		Action:        in.Action,
		CurrentValue:  current,
		ProposedValue: in.ProposedValue,
		Status:        model.ChangeRequestPending,
		RequestedBy:   in.RequestedBy,
		RequestedAt:   s.now(),
	}

	loadedStatus := product.Status
	changed, err := applyProposed(product, in.Action, in.ProposedValue)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.store.SaveProduct(ctx, product, loadedStatus); err != nil {
			return nil, fmt.Errorf("apply change to product %s: %w", product.ID, err)
		}
	}

	if err := s.store.InsertChangeRequest(ctx, cr); err != nil {
		return nil, fmt.Errorf("insert change request: %w", err)
	}
	s.logger.Info("catalog.change_request_created",
		zap.String("change_request_id", cr.ID),
		zap.String("product_id", cr.ProductID),
		zap.String("action", string(cr.Action)),
		zap.String("current", cr.CurrentValue),
		zap.String("proposed", cr.ProposedValue))
	return cr, nil
}

// liveValue reads the product field targeted by action, for pre-image capture.
func liveValue(p *model.Product, action model.ChangeAction) string {
	switch action {
	case model.ActionOperationalToggle:
		return string(p.Status)
	case model.ActionWhitelistToggle:
		return fmt.Sprintf("%t", p.WhitelistMode)
	case model.ActionMaintenanceToggle:
		return fmt.Sprintf("%t", p.MaintenanceMode)
	default:
		return ""
	}
}

// applyProposed mutates the product in memory to the proposed value and
// reports whether a write is needed. Re-submitting an already-applied change
// is a no-op, so UI and backend applying the same toggle do not conflict.
func applyProposed(p *model.Product, action model.ChangeAction, proposed string) (bool, error) {
	switch action {
	case model.ActionOperationalToggle:
		target := model.ProductStatus(proposed)
		if target != model.ProductActive && target != model.ProductSuspended {
			return false, fmt.Errorf("invalid operational status %q", proposed)
		}
		if p.Status == target {
			return false, nil
		}
		p.Status = target
		return true, nil
	case model.ActionWhitelistToggle:
		want := model.BoolValue(proposed)
		if p.WhitelistMode == want {
			return false, nil
		}
		p.WhitelistMode = want
		return true, nil
	case model.ActionMaintenanceToggle:
		want := model.BoolValue(proposed)
		if p.MaintenanceMode == want {
			return false, nil
		}
		p.MaintenanceMode = want
		return true, nil
	default:
		return false, fmt.Errorf("unknown change action %q", action)
	}
}
