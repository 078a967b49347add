package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/calebmoran/tunewave-backend/internal/catalog"
	"github.com/calebmoran/tunewave-backend/pkg/db/models"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
)

type stubCatalogRepo struct {
	products map[string]*models.Product
	prices   map[string]*models.Price
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{
		products: map[string]*models.Product{},
		prices:   map[string]*models.Price{},
	}
}

func (s *stubCatalogRepo) WithTx(*gorm.DB) catalog.Repository { return s }

func (s *stubCatalogRepo) UpsertProduct(_ context.Context, product *models.Product) error {
	s.products[product.ID] = product
	return nil
}

func (s *stubCatalogRepo) UpsertPrice(_ context.Context, price *models.Price) error {
	s.prices[price.ID] = price
	return nil
}

func (s *stubCatalogRepo) FindProductByID(_ context.Context, id string) (*models.Product, error) {
	return s.products[id], nil
}

func (s *stubCatalogRepo) FindPriceByID(_ context.Context, id string) (*models.Price, error) {
	return s.prices[id], nil
}

func (s *stubCatalogRepo) ListActiveWithPrices(context.Context) ([]models.Product, error) {
	return nil, nil
}

type syncCall struct {
	subscriptionID string
	customerID     string
	isCreation     bool
}

type stubSyncer struct {
	calls []syncCall
	err   error
}

func (s *stubSyncer) SyncStatus(_ context.Context, subscriptionID, customerID string, isCreation bool) error {
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, syncCall{subscriptionID, customerID, isCreation})
	return nil
}

func newTestService(t *testing.T) (*Service, *stubCatalogRepo, *stubSyncer) {
	t.Helper()
	repo := newStubCatalogRepo()
	syncer := &stubSyncer{}
	service, err := NewService(ServiceParams{Catalog: repo, Subscriptions: syncer})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return service, repo, syncer
}

func eventOf(t *testing.T, eventType stripe.EventType, payload any) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &stripe.Event{Type: eventType, Data: &stripe.EventData{Raw: raw}}
}

func TestService_HandleProductEventUpserts(t *testing.T) {
	service, repo, _ := newTestService(t)

	event := eventOf(t, stripe.EventTypeProductCreated, &stripe.Product{
		ID:     "prod_1",
		Active: true,
		Name:   "Premium",
	})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if repo.products["prod_1"] == nil {
		t.Fatal("expected product upserted")
	}

	// Redelivery lands on the same row.
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle redelivery: %v", err)
	}
	if len(repo.products) != 1 {
		t.Fatalf("expected one product, got %d", len(repo.products))
	}
}

func TestService_HandlePriceUpdatedEvent(t *testing.T) {
	service, repo, _ := newTestService(t)

	event := eventOf(t, stripe.EventTypePriceUpdated, &stripe.Price{
		ID:         "price_1",
		Product:    &stripe.Product{ID: "prod_1"},
		Active:     true,
		Currency:   stripe.CurrencyUSD,
		UnitAmount: 1299,
		Type:       stripe.PriceTypeRecurring,
		Recurring:  &stripe.PriceRecurring{Interval: stripe.PriceRecurringIntervalMonth},
	})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	stored := repo.prices["price_1"]
	if stored == nil {
		t.Fatal("expected price upserted")
	}
	if stored.UnitAmount != 1299 {
		t.Fatalf("expected unit amount 1299, got %d", stored.UnitAmount)
	}
}

func TestService_HandleSubscriptionEventsRouteToSyncer(t *testing.T) {
	service, _, syncer := newTestService(t)

	sub := &stripe.Subscription{
		ID:       "sub_1",
		Customer: &stripe.Customer{ID: "cus_1"},
		Status:   stripe.SubscriptionStatusActive,
	}

	created := eventOf(t, stripe.EventTypeCustomerSubscriptionCreated, sub)
	if err := service.HandleEvent(context.Background(), created); err != nil {
		t.Fatalf("handle created: %v", err)
	}
	deleted := eventOf(t, stripe.EventTypeCustomerSubscriptionDeleted, sub)
	if err := service.HandleEvent(context.Background(), deleted); err != nil {
		t.Fatalf("handle deleted: %v", err)
	}

	if len(syncer.calls) != 2 {
		t.Fatalf("expected two sync calls, got %d", len(syncer.calls))
	}
	if !syncer.calls[0].isCreation {
		t.Fatal("created event should set the creation flag")
	}
	if syncer.calls[1].isCreation {
		t.Fatal("deleted event should not set the creation flag")
	}
	if syncer.calls[0].customerID != "cus_1" {
		t.Fatalf("unexpected customer id %q", syncer.calls[0].customerID)
	}
}

func TestService_HandleCheckoutSessionCompleted(t *testing.T) {
	service, _, syncer := newTestService(t)

	event := eventOf(t, stripe.EventTypeCheckoutSessionCompleted, &stripe.CheckoutSession{
		ID:           "cs_1",
		Mode:         stripe.CheckoutSessionModeSubscription,
		Subscription: &stripe.Subscription{ID: "sub_1"},
		Customer:     &stripe.Customer{ID: "cus_1"},
	})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	if len(syncer.calls) != 1 {
		t.Fatalf("expected one sync call, got %d", len(syncer.calls))
	}
	if !syncer.calls[0].isCreation {
		t.Fatal("checkout completion should set the creation flag")
	}
}

func TestService_HandleCheckoutSessionPaymentModeIsNoop(t *testing.T) {
	service, _, syncer := newTestService(t)

	event := eventOf(t, stripe.EventTypeCheckoutSessionCompleted, &stripe.CheckoutSession{
		ID:   "cs_1",
		Mode: stripe.CheckoutSessionModePayment,
	})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(syncer.calls) != 0 {
		t.Fatal("payment-mode session should not sync")
	}
}

func TestService_UnlistedEventIsNoop(t *testing.T) {
	service, repo, syncer := newTestService(t)

	event := eventOf(t, stripe.EventType("invoice.paid"), map[string]string{"id": "in_1"})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unlisted event should be acknowledged: %v", err)
	}
	if len(repo.products) != 0 || len(repo.prices) != 0 || len(syncer.calls) != 0 {
		t.Fatal("unlisted event must not mutate anything")
	}
}

func TestService_SubscriptionEventMissingCustomerFails(t *testing.T) {
	service, _, _ := newTestService(t)

	event := eventOf(t, stripe.EventTypeCustomerSubscriptionUpdated, &stripe.Subscription{ID: "sub_1"})
	err := service.HandleEvent(context.Background(), event)
	if err == nil {
		t.Fatal("expected validation error")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_RelevantEventWithoutHandlerFails(t *testing.T) {
	service, repo, syncer := newTestService(t)

	// Simulate an allow-list entry that the dispatch switch does not cover.
	orphan := stripe.EventType("customer.subscription.paused")
	relevantEvents[orphan] = true
	t.Cleanup(func() { delete(relevantEvents, orphan) })

	event := eventOf(t, orphan, map[string]string{"id": "sub_1"})
	err := service.HandleEvent(context.Background(), event)
	if err == nil {
		t.Fatal("expected error for relevant event without a handler")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnhandledEvent {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.products) != 0 || len(repo.prices) != 0 || len(syncer.calls) != 0 {
		t.Fatal("unhandled event must not mutate anything")
	}
}

func TestIsRelevant(t *testing.T) {
	if !IsRelevant(stripe.EventTypeProductCreated) {
		t.Fatal("product.created should be relevant")
	}
	if IsRelevant(stripe.EventType("invoice.paid")) {
		t.Fatal("invoice.paid should not be relevant")
	}
}
