package model

import "time"

// ProductStatus is the lifecycle state of a marketplace product.
type ProductStatus string

const (
	ProductDraft           ProductStatus = "DRAFT"
	ProductPendingApproval ProductStatus = "PENDING_APPROVAL"
	ProductActive          ProductStatus = "ACTIVE"
	ProductRejected        ProductStatus = "REJECTED"
	ProductSuspended       ProductStatus = "SUSPENDED"
)

// Product is a marketplace product offered through one or more partners.
// Code is unique and immutable once assigned.
type Product struct {
	ID              string        `json:"id"`
	Code            string        `json:"code"`
	Name            string        `json:"name"`
	ProductType     string        `json:"productType"`
	Status          ProductStatus `json:"status"`
	Partners        []PartnerRef  `json:"partners"`
	MaintenanceMode bool          `json:"maintenanceMode"`
	WhitelistMode   bool          `json:"whitelistMode"`
	AssetsCount     int           `json:"assetsCount"`
	CreatedAt       time.Time     `json:"createdAt"`
	ReviewedBy      string        `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time    `json:"reviewedAt,omitempty"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
}

// HasPartner reports whether the partner already appears in the product's
// back-reference list.
func (p *Product) HasPartner(partnerID string) bool {
	for _, ref := range p.Partners {
		if ref.ID == partnerID {
			return true
		}
	}
	return false
}
