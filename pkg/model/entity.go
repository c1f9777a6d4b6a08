package model

import (
	"fmt"
	"strings"
)

// EntityType identifies which marketplace entity a workflow decision targets.
type EntityType string

const (
	EntityProduct       EntityType = "product"
	EntityPartner       EntityType = "partner"
	EntityAsset         EntityType = "asset"
	EntityChangeRequest EntityType = "change_request"
)

// ParseEntityType maps API path segments and message fields to an EntityType.
// Both singular and plural forms are accepted ("products", "change-requests", ...).
func ParseEntityType(s string) (EntityType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "product", "products":
		return EntityProduct, nil
	case "partner", "partners":
		return EntityPartner, nil
	case "asset", "assets":
		return EntityAsset, nil
	case "change_request", "change-request", "change-requests", "changerequest":
		return EntityChangeRequest, nil
	default:
		return "", fmt.Errorf("unknown entity type %q", s)
	}
}

// PartnerRef is a denormalized partner projection held on a Product for
// display and asset-eligibility filtering. It is maintained exclusively by
// the mapping consistency pass on partner approval.
type PartnerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// ProductRef is a denormalized product projection held on a Partner. It is
// declared once at partner creation, when the admin selects products.
type ProductRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}
