package api

import (
	"github.com/shopspring/decimal"
)

// DecisionRequest is the payload for approving or rejecting an entity.
type DecisionRequest struct {
	Actor  string `json:"actor" example:"ops@superapp"`
	Reason string `json:"reason,omitempty" example:"KYC documents incomplete"`
}

// ProductCreateRequest is the payload to register a new product.
type ProductCreateRequest struct {
	Code        string `json:"code" example:"SAVINGS-PLUS"`
	Name        string `json:"name" example:"Savings Plus"`
	ProductType string `json:"productType" example:"SAVINGS"`
	Submit      bool   `json:"submit,omitempty"`
}

// PartnerCreateRequest is the payload to register a new partner with its
// declared product mappings.
type PartnerCreateRequest struct {
	Code         string   `json:"code" example:"ACME"`
	Name         string   `json:"name" example:"Acme Capital"`
	PartnerType  string   `json:"partnerType" example:"DISTRIBUTOR"`
	ContactEmail string   `json:"contactEmail" example:"ops@acme.example"`
	ContactPhone string   `json:"contactPhone,omitempty"`
	WebhookURL   string   `json:"webhookUrl,omitempty"`
	ProductIDs   []string `json:"productIds,omitempty"`
}

// AssetCreateRequest is the payload to list a new asset under an
// established partner-product mapping.
type AssetCreateRequest struct {
	Code          string          `json:"code" example:"GOLD-10G"`
	Name          string          `json:"name" example:"Gold 10g Bar"`
	AssetType     string          `json:"assetType" example:"COMMODITY"`
	ProductID     string          `json:"productId"`
	PartnerID     string          `json:"partnerId"`
	CurrentPrice  decimal.Decimal `json:"currentPrice" example:"1520.50"`
	MinInvestment decimal.Decimal `json:"minInvestment" example:"100"`
	Currency      string          `json:"currency" example:"USD"`
}

// ChangeRequestCreateRequest is the payload to propose a product
// configuration change. currentValue is optional; when omitted the live
// product value is captured as the revert target.
type ChangeRequestCreateRequest struct {
	ProductID     string `json:"productId"`
	Action        string `json:"action" example:"MAINTENANCE_TOGGLE"`
	CurrentValue  string `json:"currentValue,omitempty"`
	ProposedValue string `json:"proposedValue" example:"true"`
	RequestedBy   string `json:"requestedBy" example:"ops@superapp"`
}
