package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/as-electrica/storefront-backend/internal/cart"
	pkgauth "github.com/as-electrica/storefront-backend/pkg/auth"
	"github.com/as-electrica/storefront-backend/pkg/auth/session"
	"github.com/as-electrica/storefront-backend/pkg/config"
	"github.com/as-electrica/storefront-backend/pkg/db/models"
	"github.com/as-electrica/storefront-backend/pkg/enums"
	"github.com/as-electrica/storefront-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct {
	active bool
}

func (s stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return s.active, nil
}

type stubCartService struct{}

func (stubCartService) GetOrCreate(ctx context.Context, sessionToken string) (*models.Cart, error) {
	panic("unimplemented")
}

func (stubCartService) AttachCustomer(ctx context.Context, sessionToken string, customerID uuid.UUID) (*models.Cart, error) {
	panic("unimplemented")
}

func (stubCartService) AddItem(ctx context.Context, sessionToken string, productID int64, requestedQty int) (*cart.ItemResult, error) {
	panic("unimplemented")
}

func (stubCartService) SetItemQty(ctx context.Context, sessionToken string, productID int64, quantity int) (*cart.ItemResult, error) {
	panic("unimplemented")
}

func (stubCartService) RemoveItem(ctx context.Context, sessionToken string, productID int64) error {
	panic("unimplemented")
}

func (stubCartService) Detail(ctx context.Context, sessionToken string) (*cart.Detail, error) {
	return &cart.Detail{Total: decimal.Zero}, nil
}

type stubOrdersService struct {
	advanced *bool
}

func (stubOrdersService) List(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	return []models.Order{}, nil
}

func (stubOrdersService) Detail(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (s stubOrdersService) Advance(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if s.advanced != nil {
		*s.advanced = true
	}
	return &models.Order{ID: orderID, Status: next}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
			SessionTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config, checker session.Checker) http.Handler {
	return newTestRouterWithOrders(cfg, checker, stubOrdersService{})
}

func newTestRouterWithOrders(cfg *config.Config, checker session.Checker, orders stubOrdersService) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(cfg, logg, Deps{
		DB:       stubPinger{},
		Redis:    stubPinger{},
		Sessions: checker,
		Cart:     stubCartService{},
		Orders:   orders,
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.CustomerRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		CustomerID:  uuid.New(),
		Email:       "shopper@example.com",
		IsConfirmed: true,
		Role:        role,
		JTI:         session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig(), stubSessionChecker{active: true})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-Storefront-Env"); got != "test" {
		t.Fatalf("expected env header got %q", got)
	}
}

func TestOrdersRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), stubSessionChecker{active: true})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestOrdersSucceedWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubSessionChecker{active: true})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.CustomerRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestOrderAdvanceForbiddenForCustomers(t *testing.T) {
	cfg := testConfig()
	advanced := false
	router := newTestRouterWithOrders(cfg, stubSessionChecker{active: true}, stubOrdersService{advanced: &advanced})

	body := strings.NewReader(`{"status":"ready"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+uuid.NewString()+"/advance", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.CustomerRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer role got %d", resp.Code)
	}
	if advanced {
		t.Fatal("expected the order service to stay untouched")
	}
}

func TestOrderAdvanceAllowsStaff(t *testing.T) {
	cfg := testConfig()
	advanced := false
	router := newTestRouterWithOrders(cfg, stubSessionChecker{active: true}, stubOrdersService{advanced: &advanced})

	body := strings.NewReader(`{"status":"ready"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+uuid.NewString()+"/advance", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.CustomerRoleStaff))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for staff role got %d", resp.Code)
	}
	if !advanced {
		t.Fatal("expected the order service to be invoked")
	}
	if !strings.Contains(resp.Body.String(), `"ready"`) {
		t.Fatalf("expected advanced status in response got %s", resp.Body.String())
	}
}

func TestRevokedSessionRejected(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubSessionChecker{active: false})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.CustomerRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked session got %d", resp.Code)
	}
}

func TestCartIssuesSessionCookie(t *testing.T) {
	router := newTestRouter(testConfig(), stubSessionChecker{active: true})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var issued *http.Cookie
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == "cart_session" {
			issued = cookie
		}
	}
	if issued == nil {
		t.Fatal("expected cart_session cookie to be issued")
	}
	if issued.Value == "" {
		t.Fatal("expected non-empty cart session token")
	}
}

func TestCartReusesExistingCookie(t *testing.T) {
	router := newTestRouter(testConfig(), stubSessionChecker{active: true})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "existing-token"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == "cart_session" {
			t.Fatal("expected no new cookie for an existing cart session")
		}
	}
}

func TestCheckoutRequiresAuth(t *testing.T) {
	router := newTestRouter(testConfig(), stubSessionChecker{active: true})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}
