package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/superapp/marketplace-approvals/internal/catalog"
	"github.com/superapp/marketplace-approvals/internal/store"
	"github.com/superapp/marketplace-approvals/internal/workflow"
	"github.com/superapp/marketplace-approvals/pkg/model"
)

// DecisionService is the approval surface the handler needs.
type DecisionService interface {
	Decide(ctx context.Context, req workflow.Request) (*workflow.Result, error)
}

// CatalogService creates entities in their initial lifecycle states.
type CatalogService interface {
	CreateProduct(ctx context.Context, in catalog.CreateProductInput) (*model.Product, error)
	CreatePartner(ctx context.Context, in catalog.CreatePartnerInput) (*model.Partner, error)
	CreateAsset(ctx context.Context, in catalog.CreateAssetInput) (*model.Asset, error)
	CreateChangeRequest(ctx context.Context, in catalog.CreateChangeRequestInput) (*model.ChangeRequest, error)
}

// Registry is the read side: entity lookups, filtered listings and the
// pending-review counters backing the admin dashboard.
type Registry interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetPartner(ctx context.Context, id string) (*model.Partner, error)
	GetAsset(ctx context.Context, id string) (*model.Asset, error)
	GetChangeRequest(ctx context.Context, id string) (*model.ChangeRequest, error)
	ListProducts(ctx context.Context, status string) ([]model.Product, error)
	ListPartners(ctx context.Context, status string) ([]model.Partner, error)
	ListAssets(ctx context.Context, status string) ([]model.Asset, error)
	ListChangeRequests(ctx context.Context, status string) ([]model.ChangeRequest, error)
	ListChangeRequestsByProduct(ctx context.Context, productID string) ([]model.ChangeRequest, error)
	CountPending(ctx context.Context) (map[model.EntityType]int, error)
}

// ApprovalHandler handles HTTP API requests for the approval workflow.
type ApprovalHandler struct {
	logger    *zap.Logger
	decisions DecisionService
	catalog   CatalogService
	registry  Registry
}

// NewApprovalHandler creates a new ApprovalHandler.
func NewApprovalHandler(logger *zap.Logger, decisions DecisionService, catalog CatalogService, registry Registry) *ApprovalHandler {
	return &ApprovalHandler{
		logger:    logger,
		decisions: decisions,
		catalog:   catalog,
		registry:  registry,
	}
}

// ApproveHandler handles PATCH /:entityType/:id/approve.
func (h *ApprovalHandler) ApproveHandler(c *fiber.Ctx) error {
	return h.decide(c, workflow.DecisionApprove)
}

// RejectHandler handles PATCH /:entityType/:id/reject.
func (h *ApprovalHandler) RejectHandler(c *fiber.Ctx) error {
	return h.decide(c, workflow.DecisionReject)
}

func (h *ApprovalHandler) decide(c *fiber.Ctx, decision workflow.Decision) error {
	entityType, err := model.ParseEntityType(c.Params("entityType"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var req DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := h.decisions.Decide(c.Context(), workflow.Request{
		EntityType: entityType,
		EntityID:   c.Params("id"),
		Decision:   decision,
		Actor:      req.Actor,
		Reason:     req.Reason,
	})
	if err != nil {
		h.logger.Warn("api.decision_failed",
			zap.String("entity_type", string(entityType)),
			zap.String("entity_id", c.Params("id")),
			zap.String("decision", string(decision)),
			zap.Error(err))
		return c.Status(decisionStatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(res)
}

// decisionStatusCode maps workflow sentinels onto HTTP status codes.
func decisionStatusCode(err error) int {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, workflow.ErrMissingReason):
		return fiber.StatusBadRequest
	case errors.Is(err, workflow.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, workflow.ErrRevertFailed):
		return fiber.StatusBadGateway
	case errors.Is(err, workflow.ErrRepositoryUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// CreateProductHandler handles POST /products.
func (h *ApprovalHandler) CreateProductHandler(c *fiber.Ctx) error {
	var req ProductCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	product, err := h.catalog.CreateProduct(c.Context(), catalog.CreateProductInput{
		Code:        req.Code,
		Name:        req.Name,
		ProductType: req.ProductType,
		Submit:      req.Submit,
	})
	if err != nil {
		h.logger.Error("api.create_product_failed", zap.String("code", req.Code), zap.Error(err))
		return c.Status(createStatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// CreatePartnerHandler handles POST /partners.
func (h *ApprovalHandler) CreatePartnerHandler(c *fiber.Ctx) error {
	var req PartnerCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	partner, err := h.catalog.CreatePartner(c.Context(), catalog.CreatePartnerInput{
		Code:         req.Code,
		Name:         req.Name,
		Type:         req.PartnerType,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		WebhookURL:   req.WebhookURL,
		ProductIDs:   req.ProductIDs,
	})
	if err != nil {
		h.logger.Error("api.create_partner_failed", zap.String("code", req.Code), zap.Error(err))
		return c.Status(createStatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(partner)
}

// CreateAssetHandler handles POST /assets.
func (h *ApprovalHandler) CreateAssetHandler(c *fiber.Ctx) error {
	var req AssetCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	asset, err := h.catalog.CreateAsset(c.Context(), catalog.CreateAssetInput{
		Code:          req.Code,
		Name:          req.Name,
		AssetType:     req.AssetType,
		ProductID:     req.ProductID,
		PartnerID:     req.PartnerID,
		CurrentPrice:  req.CurrentPrice,
		MinInvestment: req.MinInvestment,
		Currency:      req.Currency,
	})
	if err != nil {
		h.logger.Error("api.create_asset_failed",
			zap.String("product_id", req.ProductID),
			zap.String("partner_id", req.PartnerID),
			zap.Error(err))
		return c.Status(createStatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(asset)
}

// CreateChangeRequestHandler handles POST /change-requests. The proposed
// change goes live on the product immediately; the created request tracks
// the pre-image for a possible revert on rejection.
func (h *ApprovalHandler) CreateChangeRequestHandler(c *fiber.Ctx) error {
	var req ChangeRequestCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	cr, err := h.catalog.CreateChangeRequest(c.Context(), catalog.CreateChangeRequestInput{
		ProductID:     req.ProductID,
		Action:        model.ChangeAction(req.Action),
		CurrentValue:  req.CurrentValue,
		ProposedValue: req.ProposedValue,
		RequestedBy:   req.RequestedBy,
	})
	if err != nil {
		h.logger.Error("api.create_change_request_failed",
			zap.String("product_id", req.ProductID),
			zap.String("action", req.Action),
			zap.Error(err))
		return c.Status(createStatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(cr)
}

func createStatusCode(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, catalog.ErrMappingNotEstablished):
		return fiber.StatusConflict
	case errors.Is(err, store.ErrStatusConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusBadRequest
	}
}

// GetEntityHandler handles GET /:entityType/:id.
func (h *ApprovalHandler) GetEntityHandler(c *fiber.Ctx) error {
	entityType, err := model.ParseEntityType(c.Params("entityType"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var entity any
	switch entityType {
	case model.EntityProduct:
		entity, err = h.registry.GetProduct(c.Context(), c.Params("id"))
	case model.EntityPartner:
		entity, err = h.registry.GetPartner(c.Context(), c.Params("id"))
	case model.EntityAsset:
		entity, err = h.registry.GetAsset(c.Context(), c.Params("id"))
	case model.EntityChangeRequest:
		entity, err = h.registry.GetChangeRequest(c.Context(), c.Params("id"))
	}
	if err != nil {
		return c.Status(lookupStatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(entity)
}

// ListEntitiesHandler handles GET /:entityType with an optional ?status=
// filter. Change requests additionally support ?productId=.
func (h *ApprovalHandler) ListEntitiesHandler(c *fiber.Ctx) error {
	entityType, err := model.ParseEntityType(c.Params("entityType"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	status := c.Query("status")

	var items any
	switch entityType {
	case model.EntityProduct:
		items, err = h.registry.ListProducts(c.Context(), status)
	case model.EntityPartner:
		items, err = h.registry.ListPartners(c.Context(), status)
	case model.EntityAsset:
		items, err = h.registry.ListAssets(c.Context(), status)
	case model.EntityChangeRequest:
		if productID := c.Query("productId"); productID != "" {
			items, err = h.registry.ListChangeRequestsByProduct(c.Context(), productID)
		} else {
			items, err = h.registry.ListChangeRequests(c.Context(), status)
		}
	}
	if err != nil {
		h.logger.Error("api.list_failed", zap.String("entity_type", string(entityType)), zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"items": items})
}

// ListPendingEntitiesHandler handles GET /:entityType/pending, the review
// queue for one entity type.
func (h *ApprovalHandler) ListPendingEntitiesHandler(c *fiber.Ctx) error {
	entityType, err := model.ParseEntityType(c.Params("entityType"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var items any
	switch entityType {
	case model.EntityProduct:
		items, err = h.registry.ListProducts(c.Context(), string(model.ProductPendingApproval))
	case model.EntityPartner:
		items, err = h.registry.ListPartners(c.Context(), string(model.PartnerPending))
	case model.EntityAsset:
		items, err = h.registry.ListAssets(c.Context(), string(model.AssetPendingApproval))
	case model.EntityChangeRequest:
		items, err = h.registry.ListChangeRequests(c.Context(), string(model.ChangeRequestPending))
	}
	if err != nil {
		h.logger.Error("api.list_pending_failed", zap.String("entity_type", string(entityType)), zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"items": items})
}

// ListChangeRequestsByProductHandler handles GET /change-requests/product/:productId.
func (h *ApprovalHandler) ListChangeRequestsByProductHandler(c *fiber.Ctx) error {
	productID := c.Params("productId")
	items, err := h.registry.ListChangeRequestsByProduct(c.Context(), productID)
	if err != nil {
		h.logger.Error("api.list_change_requests_failed", zap.String("product_id", productID), zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"items": items})
}

// PendingSummaryHandler handles GET /pending: per-entity counts of items
// waiting for review.
func (h *ApprovalHandler) PendingSummaryHandler(c *fiber.Ctx) error {
	counts, err := h.registry.CountPending(c.Context())
	if err != nil {
		h.logger.Error("api.pending_summary_failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"pending": counts})
}

func lookupStatusCode(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.StatusNotFound
	}
	return fiber.StatusServiceUnavailable
}
