package model

import (
	"strconv"
	"time"
)

// ChangeRequestStatus is the review state of a product configuration change.
type ChangeRequestStatus string

const (
	ChangeRequestPending  ChangeRequestStatus = "PENDING"
	ChangeRequestApproved ChangeRequestStatus = "APPROVED"
	ChangeRequestRejected ChangeRequestStatus = "REJECTED"
)

// ChangeAction identifies which product field a change request mutates.
type ChangeAction string

const (
	// ActionOperationalToggle switches product.status between ACTIVE and SUSPENDED.
	ActionOperationalToggle ChangeAction = "OPERATIONAL_TOGGLE"
	// ActionWhitelistToggle flips product.whitelistMode.
	ActionWhitelistToggle ChangeAction = "WHITELIST_TOGGLE"
	// ActionMaintenanceToggle flips product.maintenanceMode.
	ActionMaintenanceToggle ChangeAction = "MAINTENANCE_TOGGLE"
)

// ChangeRequest records a product configuration change that was applied
// optimistically and awaits review. CurrentValue is the pre-image captured at
// request creation; it is the sole revert target and is never recomputed from
// the live product, which may have drifted since.
//
// Values are strings: "true"/"false" for the flag toggles, a ProductStatus
// for OPERATIONAL_TOGGLE.
type ChangeRequest struct {
	ID              string              `json:"id"`
	ProductID       string              `json:"productId"`
	ProductCode     string              `json:"productCode,omitempty"`
	ProductName     string              `json:"productName,omitempty"`
	Action          ChangeAction        `json:"action"`
	CurrentValue    string              `json:"currentValue"`
	ProposedValue   string              `json:"proposedValue"`
	Status          ChangeRequestStatus `json:"status"`
	RequestedBy     string              `json:"requestedBy"`
	RequestedAt     time.Time           `json:"requestedAt"`
	ReviewedBy      string              `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time          `json:"reviewedAt,omitempty"`
	RejectionReason string              `json:"rejectionReason,omitempty"`
}

// IsTerminal reports whether the change request has been reviewed.
// Terminal requests are immutable.
func (cr *ChangeRequest) IsTerminal() bool {
	return cr.Status == ChangeRequestApproved || cr.Status == ChangeRequestRejected
}

// BoolValue parses a toggle value ("true"/"false"). Invalid input counts as false.
func BoolValue(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
