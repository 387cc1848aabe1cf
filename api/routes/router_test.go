package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/internal/invoices"
	"github.com/angelmondragon/stockbill-backend/internal/purchases"
	"github.com/angelmondragon/stockbill-backend/internal/stockledger"
	pkgauth "github.com/angelmondragon/stockbill-backend/pkg/auth"
	"github.com/angelmondragon/stockbill-backend/pkg/config"
	"github.com/angelmondragon/stockbill-backend/pkg/db/models"
	"github.com/angelmondragon/stockbill-backend/pkg/enums"
	"github.com/angelmondragon/stockbill-backend/pkg/logger"
	"github.com/angelmondragon/stockbill-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubLedgerService struct{}

func (s stubLedgerService) WithTx(*gorm.DB) stockledger.Service { return s }

func (stubLedgerService) RecordMovement(context.Context, stockledger.RecordMovementInput) (*models.StockLedgerEntry, error) {
	return &models.StockLedgerEntry{}, nil
}

func (stubLedgerService) RecordMovements(context.Context, []stockledger.RecordMovementInput) ([]*models.StockLedgerEntry, error) {
	return nil, nil
}

func (stubLedgerService) CurrentStock(context.Context, uuid.UUID, uuid.UUID) (int, error) {
	return 7, nil
}

func (stubLedgerService) AdjustStockLevel(context.Context, stockledger.AdjustInput) (*models.StockLedgerEntry, error) {
	return &models.StockLedgerEntry{}, nil
}

func (stubLedgerService) ListMovements(context.Context, uuid.UUID, uuid.UUID, pagination.Params) ([]models.StockLedgerEntry, string, error) {
	return nil, "", nil
}

type stubPurchaseService struct{}

func (stubPurchaseService) CreateDraft(context.Context, purchases.CreateBillInput) (*models.PurchaseBill, error) {
	return &models.PurchaseBill{Status: enums.PurchaseBillStatusDraft}, nil
}

func (stubPurchaseService) GetBill(context.Context, uuid.UUID, uuid.UUID) (*models.PurchaseBill, error) {
	return &models.PurchaseBill{}, nil
}

func (stubPurchaseService) ListBills(context.Context, uuid.UUID, pagination.Params) ([]models.PurchaseBill, string, error) {
	return nil, "", nil
}

func (stubPurchaseService) Approve(context.Context, purchases.ApproveInput) (*models.PurchaseBill, error) {
	return &models.PurchaseBill{Status: enums.PurchaseBillStatusApproved}, nil
}

func (stubPurchaseService) Post(context.Context, purchases.PostInput) (*models.PurchaseBill, error) {
	return &models.PurchaseBill{Status: enums.PurchaseBillStatusPosted}, nil
}

type stubInvoiceService struct{}

func (stubInvoiceService) CreateDraft(context.Context, invoices.SaveDraftInput) (*models.Invoice, error) {
	return &models.Invoice{Status: enums.InvoiceStatusDraft}, nil
}

func (stubInvoiceService) UpdateDraft(context.Context, invoices.UpdateDraftInput) (*models.Invoice, error) {
	return &models.Invoice{Status: enums.InvoiceStatusDraft}, nil
}

func (stubInvoiceService) GetInvoice(context.Context, uuid.UUID, uuid.UUID) (*models.Invoice, error) {
	return &models.Invoice{}, nil
}

func (stubInvoiceService) ListInvoices(context.Context, uuid.UUID, pagination.Params) ([]models.Invoice, string, error) {
	return []models.Invoice{}, "", nil
}

func (stubInvoiceService) ValidateItems(context.Context, uuid.UUID, uuid.UUID) ([]invoices.ItemIssue, error) {
	return nil, nil
}

func (stubInvoiceService) Finalize(context.Context, invoices.FinalizeInput) (*models.Invoice, error) {
	return &models.Invoice{Status: enums.InvoiceStatusFinalized}, nil
}

func (stubInvoiceService) Post(context.Context, invoices.PostInput) (*models.Invoice, error) {
	return &models.Invoice{Status: enums.InvoiceStatusPosted}, nil
}

func (stubInvoiceService) ReopenToDraft(context.Context, invoices.ReopenInput) (*models.Invoice, error) {
	return &models.Invoice{Status: enums.InvoiceStatusDraft}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "stockbill-test",
			ExpirationMinutes: 15,
		},
		Invoicing: config.InvoicingConfig{PostIdempotencyTTL: 7 * 24 * time.Hour},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	return NewRouter(cfg, logg, stubPinger{}, nil, stubLedgerService{}, stubPurchaseService{}, stubInvoiceService{})
}

func mintToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		OrgID:  uuid.New(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if env := resp.Header().Get("X-StockBill-Env"); env != "test" {
		t.Fatalf("expected env header, got %q", env)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t)
	paths := []string{
		"/api/v1/invoices",
		"/api/v1/purchase-bills",
		"/api/v1/stock/products/" + uuid.NewString(),
	}
	for _, path := range paths {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, resp.Code)
		}
	}
}

func TestAuthenticatedListInvoices(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testConfig()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Data struct {
			Invoices []json.RawMessage `json:"invoices"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestPostingEndpointsRequireIdempotencyKey(t *testing.T) {
	router := newTestRouter(t)
	token := mintToken(t, testConfig())
	paths := []string{
		"/api/v1/invoices/" + uuid.NewString() + "/post",
		"/api/v1/purchase-bills/" + uuid.NewString() + "/post",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 without Idempotency-Key, got %d", path, resp.Code)
		}
	}
}

func TestTaxCalculateEndToEnd(t *testing.T) {
	router := newTestRouter(t)
	payload := `{
		"seller": {"state_code": "29", "tax_status": "registered"},
		"customer": {"state_code": "29", "tax_status": "registered"},
		"lines": [{"line_total": "1180", "tax_rate": "18", "hsn_sac_code": "8517"}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tax/calculate", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testConfig()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Data struct {
			SupplyType   string `json:"supply_type"`
			TotalCGST    string `json:"total_cgst"`
			TotalSGST    string `json:"total_sgst"`
			TotalTaxable string `json:"total_taxable"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.SupplyType != string(enums.SupplyTypeIntrastate) {
		t.Fatalf("expected intrastate supply, got %s", body.Data.SupplyType)
	}
	if body.Data.TotalCGST != "90" || body.Data.TotalSGST != "90" {
		t.Fatalf("unexpected tax split cgst=%s sgst=%s", body.Data.TotalCGST, body.Data.TotalSGST)
	}
	if body.Data.TotalTaxable != "1000" {
		t.Fatalf("unexpected taxable %s", body.Data.TotalTaxable)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(t)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "go_goroutines") {
		t.Fatalf("expected default process metrics in output")
	}
}
