package store

import (
	"context"
	"errors"
	"time"

	"github.com/superapp/marketplace-approvals/pkg/model"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrNotFound indicates the entity id has no stored record.
	ErrNotFound = errors.New("entity not found")
	// ErrStatusConflict indicates a guarded save lost a race: the stored
	// status no longer matches the status the caller read.
	ErrStatusConflict = errors.New("entity status conflict")
)

// Store is the persistence contract for marketplace entities. Save methods
// take the status the caller observed when it loaded the entity; the write
// commits only if the stored row still carries that status, which gives
// single-entity read-modify-write atomicity for concurrent decisions.
type Store interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetPartner(ctx context.Context, id string) (*model.Partner, error)
	GetAsset(ctx context.Context, id string) (*model.Asset, error)
	GetChangeRequest(ctx context.Context, id string) (*model.ChangeRequest, error)

	SaveProduct(ctx context.Context, p *model.Product, expected model.ProductStatus) error
	SavePartner(ctx context.Context, p *model.Partner, expected model.PartnerStatus) error
	SaveAsset(ctx context.Context, a *model.Asset, expected model.AssetStatus) error
	SaveChangeRequest(ctx context.Context, cr *model.ChangeRequest, expected model.ChangeRequestStatus) error

	InsertProduct(ctx context.Context, p *model.Product) error
	InsertPartner(ctx context.Context, p *model.Partner) error
	InsertAsset(ctx context.Context, a *model.Asset) error
	InsertChangeRequest(ctx context.Context, cr *model.ChangeRequest) error

	// List* filter by status when status is non-empty.
	ListProducts(ctx context.Context, status string) ([]model.Product, error)
	ListPartners(ctx context.Context, status string) ([]model.Partner, error)
	ListAssets(ctx context.Context, status string) ([]model.Asset, error)
	ListChangeRequests(ctx context.Context, status string) ([]model.ChangeRequest, error)
	ListChangeRequestsByProduct(ctx context.Context, productID string) ([]model.ChangeRequest, error)

	// CountPending returns the number of entities awaiting review per type,
	// for the admin dashboard counters.
	CountPending(ctx context.Context) (map[model.EntityType]int, error)

	// RecordApprovalEvent inserts an immutable audit row for a decision.
	RecordApprovalEvent(ctx context.Context, ev model.ApprovalEvent) error

	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error

	HealthCheck(ctx context.Context) error
	Close() error
}
