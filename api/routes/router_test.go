package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	checkoutsvc "github.com/orderstack/checkout-service/internal/checkout"
	pkgAuth "github.com/orderstack/checkout-service/pkg/auth"
	"github.com/orderstack/checkout-service/pkg/config"
	"github.com/orderstack/checkout-service/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) Initiate(ctx context.Context, customerID string, input checkoutsvc.CartInput) (*checkoutsvc.InitiateResult, error) {
	return &checkoutsvc.InitiateResult{SessionID: "cs_test_router"}, nil
}

func (stubCheckoutService) ConfirmSuccess(ctx context.Context, sessionID string) (checkoutsvc.ConfirmOutcome, error) {
	return checkoutsvc.OutcomeCompleted, nil
}

func (stubCheckoutService) ConfirmFailure(ctx context.Context, sessionID string) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "checkout-service",
			ExpirationMinutes: 60,
		},
		Checkout: config.CheckoutConfig{
			SuccessURL:     "https://shop.example.com/success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:      "https://shop.example.com/failure?session_id={CHECKOUT_SESSION_ID}",
			SuccessPageURL: "https://shop.example.com/order-confirmed",
			FailurePageURL: "https://shop.example.com/order-failed",
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(cfg, logg, stubPinger{}, nil, stubPinger{}, stubCheckoutService{})
}

func mintToken(t *testing.T, cfg *config.Config, customerID string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		CustomerID: customerID,
		JTI:        "router-test",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestCheckoutSessionRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout-session", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCheckoutSessionSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"items":[{"name":"Sticker Pack","price":"9.99","quantity":2}],"totalAmount":"19.98"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout-session", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, "cust-1"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestSuccessRouteIsPublic(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/success?session_id=cs_test_router", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", resp.Code)
	}
	if got := resp.Header().Get("Location"); got != cfg.Checkout.SuccessPageURL {
		t.Fatalf("expected redirect to %q got %q", cfg.Checkout.SuccessPageURL, got)
	}
}

func TestFailureRouteIsPublic(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/failure?session_id=cs_test_router", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", resp.Code)
	}
}

func TestHealthLiveRoute(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
