package model

import "time"

// PartnerStatus is the lifecycle state of a distribution partner.
type PartnerStatus string

const (
	PartnerPending   PartnerStatus = "PENDING"
	PartnerActive    PartnerStatus = "ACTIVE"
	PartnerSuspended PartnerStatus = "SUSPENDED"
)

// Partner is an onboarded distribution partner. Products lists the product
// mappings declared at creation time; the mapping becomes live for asset
// creation only once the partner is approved.
type Partner struct {
	ID              string        `json:"id"`
	Code            string        `json:"code"`
	Name            string        `json:"name"`
	Type            string        `json:"type"`
	Status          PartnerStatus `json:"status"`
	Products        []ProductRef  `json:"products"`
	ContactEmail    string        `json:"contactEmail"`
	ContactPhone    string        `json:"contactPhone,omitempty"`
	WebhookURL      string        `json:"webhookUrl,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	ReviewedBy      string        `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time    `json:"reviewedAt,omitempty"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
}

// Ref returns the denormalized projection of the partner written onto
// mapped products during approval propagation.
func (p *Partner) Ref() PartnerRef {
	return PartnerRef{ID: p.ID, Name: p.Name, Code: p.Code}
}
