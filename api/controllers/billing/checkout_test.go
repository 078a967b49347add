package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/calebmoran/tunewave-backend/api/middleware"
	billingsvc "github.com/calebmoran/tunewave-backend/internal/billing"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
)

type fakeBillingService struct {
	checkout *billingsvc.CheckoutSession
	portal   *billingsvc.PortalSession
	err      error

	gotPriceID string
	gotUserID  uuid.UUID
}

func (f *fakeBillingService) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, email, priceID string) (*billingsvc.CheckoutSession, error) {
	f.gotUserID = userID
	f.gotPriceID = priceID
	if f.err != nil {
		return nil, f.err
	}
	return f.checkout, nil
}

func (f *fakeBillingService) CreatePortalSession(ctx context.Context, userID uuid.UUID, email string) (*billingsvc.PortalSession, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.portal, nil
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithUserEmail(ctx, "listener@example.com")
	return req.WithContext(ctx)
}

func TestCreateCheckoutSession(t *testing.T) {
	userID := uuid.New()
	svc := &fakeBillingService{checkout: &billingsvc.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/cs_1"}}
	handler := CreateCheckoutSession(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/billing/checkout", `{"price_id":"price_1"}`, userID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.gotUserID != userID {
		t.Fatalf("expected user %s, got %s", userID, svc.gotUserID)
	}
	if svc.gotPriceID != "price_1" {
		t.Fatalf("expected price_1, got %s", svc.gotPriceID)
	}

	var payload struct {
		Data struct {
			SessionID string `json:"session_id"`
			URL       string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.SessionID != "cs_1" || payload.Data.URL == "" {
		t.Fatalf("unexpected payload: %+v", payload.Data)
	}
}

func TestCreateCheckoutSessionRequiresPrice(t *testing.T) {
	svc := &fakeBillingService{}
	handler := CreateCheckoutSession(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/billing/checkout", `{}`, uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.gotPriceID != "" {
		t.Fatal("service should not be called on validation failure")
	}
}

func TestCreateCheckoutSessionWithoutIdentityIsForbidden(t *testing.T) {
	svc := &fakeBillingService{}
	handler := CreateCheckoutSession(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout", strings.NewReader(`{"price_id":"price_1"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestCreatePortalSession(t *testing.T) {
	svc := &fakeBillingService{portal: &billingsvc.PortalSession{URL: "https://billing.stripe.com/p/session"}}
	handler := CreatePortalSession(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/billing/portal", "", uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var payload struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.URL != "https://billing.stripe.com/p/session" {
		t.Fatalf("unexpected url %q", payload.Data.URL)
	}
}

func TestCreatePortalSessionSurfacesForbidden(t *testing.T) {
	svc := &fakeBillingService{err: pkgerrors.New(pkgerrors.CodeForbidden, "no billing account")}
	handler := CreatePortalSession(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/billing/portal", "", uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
