package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/superapp/marketplace-approvals/internal/store"
	"github.com/superapp/marketplace-approvals/pkg/model"
)

// mockRepo is an in-memory Repository with per-method failure injection.
// Gets hand out copies so unsaved mutations never leak into the stored
// state, mirroring a real round-trip through the store.
type mockRepo struct {
	mu             sync.Mutex
	products       map[string]*model.Product
	partners       map[string]*model.Partner
	assets         map[string]*model.Asset
	changeRequests map[string]*model.ChangeRequest
	events         []model.ApprovalEvent

	getProductErr  error
	saveProductErr func(p *model.Product) error
	savePartnerErr error
	saveCRErr      error
	auditErr       error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		products:       make(map[string]*model.Product),
		partners:       make(map[string]*model.Partner),
		assets:         make(map[string]*model.Asset),
		changeRequests: make(map[string]*model.ChangeRequest),
	}
}

func copyProduct(p *model.Product) *model.Product {
	cp := *p
	cp.Partners = append([]model.PartnerRef(nil), p.Partners...)
	return &cp
}

func copyPartner(p *model.Partner) *model.Partner {
	cp := *p
	cp.Products = append([]model.ProductRef(nil), p.Products...)
	return &cp
}

func (m *mockRepo) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getProductErr != nil {
		return nil, m.getProductErr
	}
	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyProduct(p), nil
}

func (m *mockRepo) GetPartner(ctx context.Context, id string) (*model.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partners[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyPartner(p), nil
}

func (m *mockRepo) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) GetChangeRequest(ctx context.Context, id string) (*model.ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cr, ok := m.changeRequests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *cr
	return &cp, nil
}

func (m *mockRepo) SaveProduct(ctx context.Context, p *model.Product, expected model.ProductStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveProductErr != nil {
		if err := m.saveProductErr(p); err != nil {
			return err
		}
	}
	stored, ok := m.products[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	if stored.Status != expected {
		return store.ErrStatusConflict
	}
	m.products[p.ID] = copyProduct(p)
	return nil
}

func (m *mockRepo) SavePartner(ctx context.Context, p *model.Partner, expected model.PartnerStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.savePartnerErr != nil {
		return m.savePartnerErr
	}
	stored, ok := m.partners[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	if stored.Status != expected {
		return store.ErrStatusConflict
	}
	m.partners[p.ID] = copyPartner(p)
	return nil
}

func (m *mockRepo) SaveAsset(ctx context.Context, a *model.Asset, expected model.AssetStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.assets[a.ID]
	if !ok {
		return store.ErrNotFound
	}
	if stored.Status != expected {
		return store.ErrStatusConflict
	}
	cp := *a
	m.assets[a.ID] = &cp
	return nil
}

func (m *mockRepo) SaveChangeRequest(ctx context.Context, cr *model.ChangeRequest, expected model.ChangeRequestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveCRErr != nil {
		return m.saveCRErr
	}
	stored, ok := m.changeRequests[cr.ID]
	if !ok {
		return store.ErrNotFound
	}
	if stored.Status != expected {
		return store.ErrStatusConflict
	}
	cp := *cr
	m.changeRequests[cr.ID] = &cp
	return nil
}

func (m *mockRepo) RecordApprovalEvent(ctx context.Context, ev model.ApprovalEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.auditErr != nil {
		return m.auditErr
	}
	m.events = append(m.events, ev)
	return nil
}

// --- fixtures ---

func pendingProduct(id string) *model.Product {
	return &model.Product{
		ID:          id,
		Code:        "PRD-" + id,
		Name:        "Product " + id,
		ProductType: "FIXED_INCOME",
		Status:      model.ProductPendingApproval,
		CreatedAt:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func activeProduct(id string) *model.Product {
	p := pendingProduct(id)
	p.Status = model.ProductActive
	return p
}

func pendingPartner(id string, productIDs ...string) *model.Partner {
	refs := make([]model.ProductRef, 0, len(productIDs))
	for _, pid := range productIDs {
		refs = append(refs, model.ProductRef{ID: pid, Name: "Product " + pid, Code: "PRD-" + pid})
	}
	return &model.Partner{
		ID:           id,
		Code:         "PTN-" + id,
		Name:         "Partner " + id,
		Type:         "DISTRIBUTOR",
		Status:       model.PartnerPending,
		Products:     refs,
		ContactEmail: "ops@" + id + ".example.com",
		CreatedAt:    time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

func pendingChangeRequest(id, productID string, action model.ChangeAction, current, proposed string) *model.ChangeRequest {
	return &model.ChangeRequest{
		ID:            id,
		ProductID:     productID,
		Action:        action,
		CurrentValue:  current,
		ProposedValue: proposed,
		Status:        model.ChangeRequestPending,
		RequestedBy:   "ops@superapp.io",
		RequestedAt:   time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
	}
}
