package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/superapp/marketplace-approvals/internal/catalog"
	"github.com/superapp/marketplace-approvals/internal/store"
	"github.com/superapp/marketplace-approvals/internal/workflow"
	"github.com/superapp/marketplace-approvals/pkg/model"
)

// --- Mocks ---

type mockDecisions struct {
	decideFn func(ctx context.Context, req workflow.Request) (*workflow.Result, error)
}

func (m *mockDecisions) Decide(ctx context.Context, req workflow.Request) (*workflow.Result, error) {
	if m.decideFn != nil {
		return m.decideFn(ctx, req)
	}
	return nil, fmt.Errorf("not implemented")
}

type mockCatalog struct {
	createProductFn       func(ctx context.Context, in catalog.CreateProductInput) (*model.Product, error)
	createPartnerFn       func(ctx context.Context, in catalog.CreatePartnerInput) (*model.Partner, error)
	createAssetFn         func(ctx context.Context, in catalog.CreateAssetInput) (*model.Asset, error)
	createChangeRequestFn func(ctx context.Context, in catalog.CreateChangeRequestInput) (*model.ChangeRequest, error)
}

func (m *mockCatalog) CreateProduct(ctx context.Context, in catalog.CreateProductInput) (*model.Product, error) {
	if m.createProductFn != nil {
		return m.createProductFn(ctx, in)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockCatalog) CreatePartner(ctx context.Context, in catalog.CreatePartnerInput) (*model.Partner, error) {
	if m.createPartnerFn != nil {
		return m.createPartnerFn(ctx, in)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockCatalog) CreateAsset(ctx context.Context, in catalog.CreateAssetInput) (*model.Asset, error) {
	if m.createAssetFn != nil {
		return m.createAssetFn(ctx, in)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockCatalog) CreateChangeRequest(ctx context.Context, in catalog.CreateChangeRequestInput) (*model.ChangeRequest, error) {
	if m.createChangeRequestFn != nil {
		return m.createChangeRequestFn(ctx, in)
	}
	return nil, fmt.Errorf("not implemented")
}

type mockRegistry struct {
	getProductFn   func(ctx context.Context, id string) (*model.Product, error)
	listProductsFn func(ctx context.Context, status string) ([]model.Product, error)
	listCRsFn      func(ctx context.Context, status string) ([]model.ChangeRequest, error)
	listCRsByPrdFn func(ctx context.Context, productID string) ([]model.ChangeRequest, error)
	countPendingFn func(ctx context.Context) (map[model.EntityType]int, error)
}

func (m *mockRegistry) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	if m.getProductFn != nil {
		return m.getProductFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockRegistry) GetPartner(ctx context.Context, id string) (*model.Partner, error) {
	return nil, store.ErrNotFound
}

func (m *mockRegistry) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	return nil, store.ErrNotFound
}

func (m *mockRegistry) GetChangeRequest(ctx context.Context, id string) (*model.ChangeRequest, error) {
	return nil, store.ErrNotFound
}

func (m *mockRegistry) ListProducts(ctx context.Context, status string) ([]model.Product, error) {
	if m.listProductsFn != nil {
		return m.listProductsFn(ctx, status)
	}
	return nil, nil
}

func (m *mockRegistry) ListPartners(ctx context.Context, status string) ([]model.Partner, error) {
	return nil, nil
}

func (m *mockRegistry) ListAssets(ctx context.Context, status string) ([]model.Asset, error) {
	return nil, nil
}

func (m *mockRegistry) ListChangeRequests(ctx context.Context, status string) ([]model.ChangeRequest, error) {
	if m.listCRsFn != nil {
		return m.listCRsFn(ctx, status)
	}
	return nil, nil
}

func (m *mockRegistry) ListChangeRequestsByProduct(ctx context.Context, productID string) ([]model.ChangeRequest, error) {
	if m.listCRsByPrdFn != nil {
		return m.listCRsByPrdFn(ctx, productID)
	}
	return nil, nil
}

func (m *mockRegistry) CountPending(ctx context.Context) (map[model.EntityType]int, error) {
	if m.countPendingFn != nil {
		return m.countPendingFn(ctx)
	}
	return map[model.EntityType]int{}, nil
}

// --- Test Helpers ---

func newTestApp(decisions DecisionService, cat CatalogService, reg Registry) *fiber.App {
	app := fiber.New()
	handler := NewApprovalHandler(zap.NewNop(), decisions, cat, reg)
	mp := app.Group("/api/marketplace")
	mp.Get("/pending", handler.PendingSummaryHandler)
	mp.Post("/products", handler.CreateProductHandler)
	mp.Post("/partners", handler.CreatePartnerHandler)
	mp.Post("/assets", handler.CreateAssetHandler)
	mp.Post("/change-requests", handler.CreateChangeRequestHandler)
	mp.Get("/change-requests/product/:productId", handler.ListChangeRequestsByProductHandler)
	mp.Get("/:entityType", handler.ListEntitiesHandler)
	mp.Get("/:entityType/pending", handler.ListPendingEntitiesHandler)
	mp.Get("/:entityType/:id", handler.GetEntityHandler)
	mp.Patch("/:entityType/:id/approve", handler.ApproveHandler)
	mp.Patch("/:entityType/:id/reject", handler.RejectHandler)
	return app
}

func jsonRequest(method, path, body string) *http.Request {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// --- Decision Tests ---

func TestApproveHandler_Success(t *testing.T) {
	decisions := &mockDecisions{
		decideFn: func(ctx context.Context, req workflow.Request) (*workflow.Result, error) {
			assert.Equal(t, model.EntityProduct, req.EntityType)
			assert.Equal(t, "prd-1", req.EntityID)
			assert.Equal(t, workflow.DecisionApprove, req.Decision)
			assert.Equal(t, "ops@superapp", req.Actor)
			return &workflow.Result{
				Product: &model.Product{
					ID:     "prd-1",
					Status: model.ProductActive,
				},
				FromStatus: "PENDING_APPROVAL",
				ToStatus:   "ACTIVE",
			}, nil
		},
	}

	app := newTestApp(decisions, &mockCatalog{}, &mockRegistry{})

	req := jsonRequest(http.MethodPatch, "/api/marketplace/products/prd-1/approve",
		`{"actor": "ops@superapp"}`)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result workflow.Result
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Equal(t, "ACTIVE", result.ToStatus)
	require.NotNil(t, result.Product)
	assert.Equal(t, model.ProductActive, result.Product.Status)
}

func TestRejectHandler_PassesReason(t *testing.T) {
	var received workflow.Request
	decisions := &mockDecisions{
		decideFn: func(ctx context.Context, req workflow.Request) (*workflow.Result, error) {
			received = req
			return &workflow.Result{
				Partner:    &model.Partner{ID: "ptn-1", Status: model.PartnerSuspended},
				FromStatus: "PENDING",
				ToStatus:   "SUSPENDED",
			}, nil
		},
	}

	app := newTestApp(decisions, &mockCatalog{}, &mockRegistry{})

	req := jsonRequest(http.MethodPatch, "/api/marketplace/partners/ptn-1/reject",
		`{"actor": "ops@superapp", "reason": "KYC documents incomplete"}`)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, workflow.DecisionReject, received.Decision)
	assert.Equal(t, "KYC documents incomplete", received.Reason)
}

func TestDecide_MissingActor(t *testing.T) {
	app := newTestApp(&mockDecisions{}, &mockCatalog{}, &mockRegistry{})

	req := jsonRequest(http.MethodPatch, "/api/marketplace/products/prd-1/approve", `{}`)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Contains(t, result["error"], "actor is required")
}

func TestDecide_UnknownEntityType(t *testing.T) {
	app := newTestApp(&mockDecisions{}, &mockCatalog{}, &mockRegistry{})

	req := jsonRequest(http.MethodPatch, "/api/marketplace/widgets/w-1/approve",
		`{"actor": "ops@superapp"}`)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDecide_ErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", workflow.ErrNotFound, fiber.StatusNotFound},
		{"missing reason", workflow.ErrMissingReason, fiber.StatusBadRequest},
		{"invalid transition", workflow.ErrInvalidTransition, fiber.StatusConflict},
		{"revert failed", workflow.ErrRevertFailed, fiber.StatusBadGateway},
		{"repository unavailable", workflow.ErrRepositoryUnavailable, fiber.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decisions := &mockDecisions{
				decideFn: func(ctx context.Context, req workflow.Request) (*workflow.Result, error) {
					return nil, fmt.Errorf("decide: %w", tc.err)
				},
			}
			app := newTestApp(decisions, &mockCatalog{}, &mockRegistry{})

			req := jsonRequest(http.MethodPatch, "/api/marketplace/products/prd-1/reject",
				`{"actor": "ops@superapp", "reason": "nope"}`)
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.code, resp.StatusCode)
		})
	}
}

// --- Create Tests ---

func TestCreateProductHandler_Success(t *testing.T) {
	cat := &mockCatalog{
		createProductFn: func(ctx context.Context, in catalog.CreateProductInput) (*model.Product, error) {
			assert.Equal(t, "SAVINGS-PLUS", in.Code)
			assert.True(t, in.Submit)
			return &model.Product{
				ID:     "prd-1",
				Code:   in.Code,
				Status: model.ProductPendingApproval,
			}, nil
		},
	}
	app := newTestApp(&mockDecisions{}, cat, &mockRegistry{})

	req := jsonRequest(http.MethodPost, "/api/marketplace/products",
		`{"code": "SAVINGS-PLUS", "name": "Savings Plus", "productType": "SAVINGS", "submit": true}`)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result model.Product
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Equal(t, model.ProductPendingApproval, result.Status)
}

func TestCreateProductHandler_ValidationError(t *testing.T) {
	app := newTestApp(&mockDecisions{}, &mockCatalog{}, &mockRegistry{})

	req := jsonRequest(http.MethodPost, "/api/marketplace/products",
		`{"name": "Savings Plus", "productType": "SAVINGS"}`)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Contains(t, result["error"], "code is required")
}

func TestCreatePartnerHandler_UnknownProduct(t *testing.T) {
	cat := &mockCatalog{
		createPartnerFn: func(ctx context.Context, in catalog.CreatePartnerInput) (*model.Partner, error) {
			return nil, fmt.Errorf("resolve product GONE: %w", store.ErrNotFound)
		},
	}
	app := newTestApp(&mockDecisions{}, cat, &mockRegistry{})

	req := jsonRequest(http.MethodPost, "/api/marketplace/partners",
		`{"code": "ACME", "name": "Acme Capital", "contactEmail": "ops@acme.example", "productIds": ["GONE"]}`)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateAssetHandler_MappingNotEstablished(t *testing.T) {
	cat := &mockCatalog{
		createAssetFn: func(ctx context.Context, in catalog.CreateAssetInput) (*model.Asset, error) {
			return nil, fmt.Errorf("%w: partner ptn-1 is not mapped on product prd-1",
				catalog.ErrMappingNotEstablished)
		},
	}
	app := newTestApp(&mockDecisions{}, cat, &mockRegistry{})

	req := jsonRequest(http.MethodPost, "/api/marketplace/assets",
		`{"code": "GOLD-10G", "name": "Gold 10g", "assetType": "COMMODITY",
		  "productId": "prd-1", "partnerId": "ptn-1",
		  "currentPrice": "1520.50", "minInvestment": "100", "currency": "USD"}`)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCreateChangeRequestHandler_Success(t *testing.T) {
	cat := &mockCatalog{
		createChangeRequestFn: func(ctx context.Context, in catalog.CreateChangeRequestInput) (*model.ChangeRequest, error) {
			assert.Equal(t, model.ActionMaintenanceToggle, in.Action)
			assert.Equal(t, "true", in.ProposedValue)
			return &model.ChangeRequest{
				ID:            "cr-1",
				ProductID:     in.ProductID,
				Action:        in.Action,
				CurrentValue:  "false",
				ProposedValue: in.ProposedValue,
				Status:        model.ChangeRequestPending,
				RequestedAt:   time.Now().UTC(),
			}, nil
		},
	}
	app := newTestApp(&mockDecisions{}, cat, &mockRegistry{})

	req := jsonRequest(http.MethodPost, "/api/marketplace/change-requests",
		`{"productId": "prd-1", "action": "MAINTENANCE_TOGGLE", "proposedValue": "true", "requestedBy": "ops@superapp"}`)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result model.ChangeRequest
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Equal(t, "false", result.CurrentValue)
	assert.Equal(t, model.ChangeRequestPending, result.Status)
}

func TestCreateChangeRequestHandler_UnknownAction(t *testing.T) {
	app := newTestApp(&mockDecisions{}, &mockCatalog{}, &mockRegistry{})

	req := jsonRequest(http.MethodPost, "/api/marketplace/change-requests",
		`{"productId": "prd-1", "action": "FEE_TOGGLE", "proposedValue": "true", "requestedBy": "ops@superapp"}`)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

// --- Read Tests ---

func TestGetEntityHandler_Found(t *testing.T) {
	reg := &mockRegistry{
		getProductFn: func(ctx context.Context, id string) (*model.Product, error) {
			return &model.Product{ID: id, Code: "SAVINGS-PLUS", Status: model.ProductActive}, nil
		},
	}
	app := newTestApp(&mockDecisions{}, &mockCatalog{}, reg)

	req := jsonRequest(http.MethodGet, "/api/marketplace/products/prd-1", "")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result model.Product
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Equal(t, "prd-1", result.ID)
}

func TestGetEntityHandler_NotFound(t *testing.T) {
	app := newTestApp(&mockDecisions{}, &mockCatalog{}, &mockRegistry{})

	req := jsonRequest(http.MethodGet, "/api/marketplace/partners/missing", "")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListEntitiesHandler_StatusFilter(t *testing.T) {
	var receivedStatus string
	reg := &mockRegistry{
		listProductsFn: func(ctx context.Context, status string) ([]model.Product, error) {
			receivedStatus = status
			return []model.Product{{ID: "prd-1", Status: model.ProductPendingApproval}}, nil
		},
	}
	app := newTestApp(&mockDecisions{}, &mockCatalog{}, reg)

	req := jsonRequest(http.MethodGet, "/api/marketplace/products?status=PENDING_APPROVAL", "")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "PENDING_APPROVAL", receivedStatus)
}

func TestListEntitiesHandler_ChangeRequestsByProduct(t *testing.T) {
	reg := &mockRegistry{
		listCRsByPrdFn: func(ctx context.Context, productID string) ([]model.ChangeRequest, error) {
			assert.Equal(t, "prd-1", productID)
			return []model.ChangeRequest{{ID: "cr-1", ProductID: productID}}, nil
		},
		listCRsFn: func(ctx context.Context, status string) ([]model.ChangeRequest, error) {
			t.Fatal("status listing should not be used when productId is set")
			return nil, nil
		},
	}
	app := newTestApp(&mockDecisions{}, &mockCatalog{}, reg)

	req := jsonRequest(http.MethodGet, "/api/marketplace/change-requests?productId=prd-1", "")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestListPendingEntitiesHandler(t *testing.T) {
	var receivedStatus string
	reg := &mockRegistry{
		listProductsFn: func(ctx context.Context, status string) ([]model.Product, error) {
			receivedStatus = status
			return []model.Product{{ID: "prd-1", Status: model.ProductPendingApproval}}, nil
		},
	}
	app := newTestApp(&mockDecisions{}, &mockCatalog{}, reg)

	req := jsonRequest(http.MethodGet, "/api/marketplace/products/pending", "")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "PENDING_APPROVAL", receivedStatus)
}

func TestListChangeRequestsByProductHandler(t *testing.T) {
	reg := &mockRegistry{
		listCRsByPrdFn: func(ctx context.Context, productID string) ([]model.ChangeRequest, error) {
			assert.Equal(t, "prd-1", productID)
			return []model.ChangeRequest{{ID: "cr-1", ProductID: productID}}, nil
		},
	}
	app := newTestApp(&mockDecisions{}, &mockCatalog{}, reg)

	req := jsonRequest(http.MethodGet, "/api/marketplace/change-requests/product/prd-1", "")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestPendingSummaryHandler(t *testing.T) {
	reg := &mockRegistry{
		countPendingFn: func(ctx context.Context) (map[model.EntityType]int, error) {
			return map[model.EntityType]int{
				model.EntityProduct:       2,
				model.EntityChangeRequest: 1,
			}, nil
		},
	}
	app := newTestApp(&mockDecisions{}, &mockCatalog{}, reg)

	req := jsonRequest(http.MethodGet, "/api/marketplace/pending", "")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Pending map[string]int `json:"pending"`
	}
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Equal(t, 2, result.Pending["product"])
	assert.Equal(t, 1, result.Pending["change_request"])
}
