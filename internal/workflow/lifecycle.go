package workflow

import (
	"fmt"
	"strings"

	"github.com/superapp/marketplace-approvals/pkg/model"
)

// Decision is an admin review verdict.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision maps API and message fields to a Decision.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve", "approved":
		return DecisionApprove, nil
	case "reject", "rejected":
		return DecisionReject, nil
	default:
		return "", fmt.Errorf("unknown decision %q", s)
	}
}

type rule struct {
	from string
	to   string
}

// transitions is the sole authority on legal lifecycle moves. Any
// (entity, current status, decision) combination not in this table fails
// with ErrInvalidTransition.
var transitions = map[model.EntityType]map[Decision]rule{
	model.EntityProduct: {
		DecisionApprove: {from: string(model.ProductPendingApproval), to: string(model.ProductActive)},
		DecisionReject:  {from: string(model.ProductPendingApproval), to: string(model.ProductRejected)},
	},
	model.EntityPartner: {
		DecisionApprove: {from: string(model.PartnerPending), to: string(model.PartnerActive)},
		DecisionReject:  {from: string(model.PartnerPending), to: string(model.PartnerSuspended)},
	},
	model.EntityAsset: {
		DecisionApprove: {from: string(model.AssetPendingApproval), to: string(model.AssetActive)},
		DecisionReject:  {from: string(model.AssetPendingApproval), to: string(model.AssetRejected)},
	},
	model.EntityChangeRequest: {
		DecisionApprove: {from: string(model.ChangeRequestPending), to: string(model.ChangeRequestApproved)},
		DecisionReject:  {from: string(model.ChangeRequestPending), to: string(model.ChangeRequestRejected)},
	},
}

// Transition validates a decision against the current status and returns the
// target status. It performs no mutation: validation happens entirely before
// any write, and a rejection without a reason fails before the status check
// is even consulted.
func Transition(entityType model.EntityType, current string, decision Decision, reason string) (string, error) {
	if decision == DecisionReject && strings.TrimSpace(reason) == "" {
		return "", fmt.Errorf("%w: rejecting a %s", ErrMissingReason, entityType)
	}

	rules, ok := transitions[entityType]
	if !ok {
		return "", fmt.Errorf("%w: no lifecycle defined for %q", ErrInvalidTransition, entityType)
	}
	r, ok := rules[decision]
	if !ok {
		return "", fmt.Errorf("%w: %s does not support %q", ErrInvalidTransition, entityType, decision)
	}
	if current != r.from {
		return "", fmt.Errorf("%w: cannot %s %s in status %s (expected %s)",
			ErrInvalidTransition, decision, entityType, current, r.from)
	}
	return r.to, nil
}
