package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetStatus is the lifecycle state of an investable asset.
type AssetStatus string

const (
	AssetPendingApproval AssetStatus = "PENDING_APPROVAL"
	AssetActive          AssetStatus = "ACTIVE"
	AssetRejected        AssetStatus = "REJECTED"
)

// Asset is an investable instrument listed under an established
// partner-product mapping. An asset may only be created for a product whose
// partners list already contains the asset's partner.
type Asset struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	AssetType       string          `json:"assetType"`
	Status          AssetStatus     `json:"status"`
	ProductID       string          `json:"productId"`
	PartnerID       string          `json:"partnerId"`
	CurrentPrice    decimal.Decimal `json:"currentPrice"`
	MinInvestment   decimal.Decimal `json:"minInvestment"`
	Currency        string          `json:"currency"`
	CreatedAt       time.Time       `json:"createdAt"`
	ReviewedBy      string          `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time      `json:"reviewedAt,omitempty"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
}
