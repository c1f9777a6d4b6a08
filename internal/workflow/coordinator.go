package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/superapp/marketplace-approvals/internal/metrics"
	"github.com/superapp/marketplace-approvals/pkg/model"
)

// DecisionPublisher emits canonical decision events after a successful
// decision. Optional: a nil publisher disables event emission.
type DecisionPublisher interface {
	PublishDecision(ctx context.Context, payload model.DecisionPayload) error
}

// PartnerNotifier delivers decision notifications to a partner's webhook.
// Optional and best-effort.
type PartnerNotifier interface {
	NotifyPartner(ctx context.Context, partner *model.Partner, payload model.DecisionPayload)
}

// Request carries one admin decision into the coordinator.
type Request struct {
	EntityType model.EntityType
	EntityID   string
	Decision   Decision
	Actor      string
	Reason     string
}

// Result is the outcome of a successful decision. Exactly one entity field
// is populated, matching the request's entity type. Warnings carry
// non-fatal propagation failures from partner approvals.
type Result struct {
	Product       *model.Product       `json:"product,omitempty"`
	Partner       *model.Partner       `json:"partner,omitempty"`
	Asset         *model.Asset         `json:"asset,omitempty"`
	ChangeRequest *model.ChangeRequest `json:"changeRequest,omitempty"`
	FromStatus    string               `json:"fromStatus"`
	ToStatus      string               `json:"toStatus"`
	Warnings      []string             `json:"warnings,omitempty"`
}

// Coordinator is the single entry point for approval decisions. It loads the
// entity, validates the transition, persists the review outcome, and
// triggers mapping propagation (partner approvals) or configuration reverts
// (change request rejections). It holds no state between calls.
type Coordinator struct {
	repo      Repository
	mapping   *MappingMaintainer
	changes   *ChangeRequestEngine
	publisher DecisionPublisher
	notifier  PartnerNotifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewCoordinator creates a Coordinator. publisher and notifier may be nil.
func NewCoordinator(repo Repository, publisher DecisionPublisher, notifier PartnerNotifier, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		repo:      repo,
		mapping:   NewMappingMaintainer(repo, logger),
		changes:   NewChangeRequestEngine(repo, logger),
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Decide applies one approval decision and returns the updated entity.
// Within a single call the entity's own status write happens before any
// dependent propagation, and a change request rejection returns only after
// the product's configuration is actually restored.
func (c *Coordinator) Decide(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	var (
		res *Result
		err error
	)
	switch req.EntityType {
	case model.EntityProduct:
		res, err = c.decideProduct(ctx, req)
	case model.EntityPartner:
		res, err = c.decidePartner(ctx, req)
	case model.EntityAsset:
		res, err = c.decideAsset(ctx, req)
	case model.EntityChangeRequest:
		res, err = c.decideChangeRequest(ctx, req)
	default:
		err = fmt.Errorf("%w: unsupported entity type %q", ErrInvalidTransition, req.EntityType)
	}

	if err != nil {
		c.logger.Warn("coordinator.decide_failed",
			zap.String("entity_type", string(req.EntityType)),
			zap.String("entity_id", req.EntityID),
			zap.String("decision", string(req.Decision)),
			zap.Error(err))
		metrics.IncDecision(string(req.EntityType), string(req.Decision), "error")
		return nil, err
	}

	c.logger.Info("coordinator.decided",
		zap.String("entity_type", string(req.EntityType)),
		zap.String("entity_id", req.EntityID),
		zap.String("decision", string(req.Decision)),
		zap.String("from", res.FromStatus),
		zap.String("to", res.ToStatus),
		zap.Int("warnings", len(res.Warnings)))
	metrics.IncDecision(string(req.EntityType), string(req.Decision), "ok")
	metrics.ObserveDuration(metrics.DecisionDuration, start, string(req.EntityType))

	c.afterDecision(ctx, req, res)
	return res, nil
}

func (c *Coordinator) decideProduct(ctx context.Context, req Request) (*Result, error) {
	product, err := c.repo.GetProduct(ctx, req.EntityID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	from := product.Status
	to, err := Transition(model.EntityProduct, string(from), req.Decision, req.Reason)
	if err != nil {
		return nil, err
	}

	c.stampProductReview(product, req)
	product.Status = model.ProductStatus(to)
	if err := c.repo.SaveProduct(ctx, product, from); err != nil {
		return nil, mapStoreErr(err)
	}

	c.audit(ctx, req, string(from), to)
	return &Result{Product: product, FromStatus: string(from), ToStatus: to}, nil
}

func (c *Coordinator) decidePartner(ctx context.Context, req Request) (*Result, error) {
	partner, err := c.repo.GetPartner(ctx, req.EntityID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	from := partner.Status
	to, err := Transition(model.EntityPartner, string(from), req.Decision, req.Reason)
	if err != nil {
		return nil, err
	}

	now := c.now()
	partner.ReviewedBy = req.Actor
	partner.ReviewedAt = &now
	if req.Decision == DecisionReject {
		partner.RejectionReason = req.Reason
	}
	partner.Status = model.PartnerStatus(to)
	if err := c.repo.SavePartner(ctx, partner, from); err != nil {
		return nil, mapStoreErr(err)
	}

	c.audit(ctx, req, string(from), to)
	res := &Result{Partner: partner, FromStatus: string(from), ToStatus: to}

	// The partner is validly ACTIVE even if propagation to a product lags;
	// warnings tell the caller to retry the approval, which converges.
	if req.Decision == DecisionApprove {
		for _, warn := range c.mapping.Propagate(ctx, partner) {
			res.Warnings = append(res.Warnings, warn.Error())
		}
	}
	return res, nil
}

func (c *Coordinator) decideAsset(ctx context.Context, req Request) (*Result, error) {
	asset, err := c.repo.GetAsset(ctx, req.EntityID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	from := asset.Status
	to, err := Transition(model.EntityAsset, string(from), req.Decision, req.Reason)
	if err != nil {
		return nil, err
	}

	now := c.now()
	asset.ReviewedBy = req.Actor
	asset.ReviewedAt = &now
	if req.Decision == DecisionReject {
		asset.RejectionReason = req.Reason
	}
	asset.Status = model.AssetStatus(to)
	if err := c.repo.SaveAsset(ctx, asset, from); err != nil {
		return nil, mapStoreErr(err)
	}

	c.audit(ctx, req, string(from), to)
	return &Result{Asset: asset, FromStatus: string(from), ToStatus: to}, nil
}

func (c *Coordinator) decideChangeRequest(ctx context.Context, req Request) (*Result, error) {
	cr, err := c.repo.GetChangeRequest(ctx, req.EntityID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	from := cr.Status
	to, err := Transition(model.EntityChangeRequest, string(from), req.Decision, req.Reason)
	if err != nil {
		return nil, err
	}

	// Rejection restores the product first. The REJECTED status commits only
	// once the live configuration is back to the pre-image, so a recorded
	// rejection always means the proposed change is not in effect.
	if req.Decision == DecisionReject {
		if err := c.changes.Revert(ctx, cr); err != nil {
			return nil, err
		}
	}

	now := c.now()
	cr.ReviewedBy = req.Actor
	cr.ReviewedAt = &now
	if req.Decision == DecisionReject {
		cr.RejectionReason = req.Reason
	}
	cr.Status = model.ChangeRequestStatus(to)
	if err := c.repo.SaveChangeRequest(ctx, cr, from); err != nil {
		return nil, mapStoreErr(err)
	}

	c.audit(ctx, req, string(from), to)
	return &Result{ChangeRequest: cr, FromStatus: string(from), ToStatus: to}, nil
}

func (c *Coordinator) stampProductReview(product *model.Product, req Request) {
	now := c.now()
	product.ReviewedBy = req.Actor
	product.ReviewedAt = &now
	if req.Decision == DecisionReject {
		product.RejectionReason = req.Reason
	}
}

// audit records the decision in the immutable approval log. Audit failures
// are logged, not fatal: the decision itself has already committed.
func (c *Coordinator) audit(ctx context.Context, req Request, from, to string) {
	ev := model.ApprovalEvent{
		ID:         uuid.NewString(),
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Decision:   string(req.Decision),
		FromStatus: from,
		ToStatus:   to,
		Actor:      req.Actor,
		Reason:     req.Reason,
		DecidedAt:  c.now(),
	}
	if err := c.repo.RecordApprovalEvent(ctx, ev); err != nil {
		c.logger.Warn("coordinator.audit_failed",
			zap.String("entity_id", req.EntityID),
			zap.Error(err))
	}
}

// afterDecision emits the decision event and, when a partner is affected,
// pushes a webhook notification. Both are best-effort.
func (c *Coordinator) afterDecision(ctx context.Context, req Request, res *Result) {
	payload := model.DecisionPayload{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Decision:   string(req.Decision),
		FromStatus: res.FromStatus,
		ToStatus:   res.ToStatus,
		Actor:      req.Actor,
		Reason:     req.Reason,
		Warnings:   res.Warnings,
		DecidedAt:  c.now(),
	}

	if c.publisher != nil {
		if err := c.publisher.PublishDecision(ctx, payload); err != nil {
			c.logger.Warn("coordinator.publish_failed",
				zap.String("entity_id", req.EntityID),
				zap.Error(err))
		}
	}

	if c.notifier != nil {
		if partner := c.affectedPartner(ctx, req, res); partner != nil {
			c.notifier.NotifyPartner(ctx, partner, payload)
		}
	}
}

// affectedPartner resolves the partner to notify: the partner itself for
// partner decisions, the owning partner for asset decisions.
func (c *Coordinator) affectedPartner(ctx context.Context, req Request, res *Result) *model.Partner {
	switch req.EntityType {
	case model.EntityPartner:
		return res.Partner
	case model.EntityAsset:
		if res.Asset == nil || res.Asset.PartnerID == "" {
			return nil
		}
		partner, err := c.repo.GetPartner(ctx, res.Asset.PartnerID)
		if err != nil {
			c.logger.Warn("coordinator.notify_lookup_failed",
				zap.String("partner_id", res.Asset.PartnerID),
				zap.Error(err))
			return nil
		}
		return partner
	default:
		return nil
	}
}
