package api

import (
	"fmt"
	"strings"

	"github.com/superapp/marketplace-approvals/pkg/model"
)

func (r DecisionRequest) Validate() error {
	if strings.TrimSpace(r.Actor) == "" {
		return fmt.Errorf("actor is required")
	}
	return nil
}

func (r ProductCreateRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return fmt.Errorf("code is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(r.ProductType) == "" {
		return fmt.Errorf("productType is required")
	}
	return nil
}

func (r PartnerCreateRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return fmt.Errorf("code is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(r.ContactEmail) == "" {
		return fmt.Errorf("contactEmail is required")
	}
	if !strings.Contains(r.ContactEmail, "@") {
		return fmt.Errorf("contactEmail must be a valid email address")
	}
	for _, pid := range r.ProductIDs {
		if strings.TrimSpace(pid) == "" {
			return fmt.Errorf("productIds must not contain empty ids")
		}
	}
	return nil
}

func (r AssetCreateRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return fmt.Errorf("code is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(r.ProductID) == "" {
		return fmt.Errorf("productId is required")
	}
	if strings.TrimSpace(r.PartnerID) == "" {
		return fmt.Errorf("partnerId is required")
	}
	if r.CurrentPrice.IsNegative() {
		return fmt.Errorf("currentPrice must not be negative")
	}
	if r.MinInvestment.IsNegative() {
		return fmt.Errorf("minInvestment must not be negative")
	}
	if strings.TrimSpace(r.Currency) == "" {
		return fmt.Errorf("currency is required")
	}
	return nil
}

func (r ChangeRequestCreateRequest) Validate() error {
	if strings.TrimSpace(r.ProductID) == "" {
		return fmt.Errorf("productId is required")
	}
	switch model.ChangeAction(r.Action) {
	case model.ActionOperationalToggle, model.ActionWhitelistToggle, model.ActionMaintenanceToggle:
	default:
		return fmt.Errorf("action must be one of OPERATIONAL_TOGGLE, WHITELIST_TOGGLE, MAINTENANCE_TOGGLE")
	}
	if strings.TrimSpace(r.ProposedValue) == "" {
		return fmt.Errorf("proposedValue is required")
	}
	if strings.TrimSpace(r.RequestedBy) == "" {
		return fmt.Errorf("requestedBy is required")
	}
	return nil
}
