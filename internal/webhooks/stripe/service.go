package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"

	"github.com/calebmoran/tunewave-backend/internal/catalog"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
)

// relevantEvents is the explicit allow-list. Everything else is acknowledged
// without action so Stripe stops redelivering it.
var relevantEvents = map[stripe.EventType]bool{
	stripe.EventTypeProductCreated:              true,
	stripe.EventTypeProductUpdated:              true,
	stripe.EventTypePriceCreated:                true,
	stripe.EventTypePriceUpdated:                true,
	stripe.EventTypeCheckoutSessionCompleted:    true,
	stripe.EventTypeCustomerSubscriptionCreated: true,
	stripe.EventTypeCustomerSubscriptionUpdated: true,
	stripe.EventTypeCustomerSubscriptionDeleted: true,
}

// IsRelevant reports whether the event type is on the allow-list.
func IsRelevant(eventType stripe.EventType) bool {
	return relevantEvents[eventType]
}

type subscriptionSyncer interface {
	SyncStatus(ctx context.Context, subscriptionID, stripeCustomerID string, isCreationEvent bool) error
}

type ServiceParams struct {
	Catalog       catalog.Repository
	Subscriptions subscriptionSyncer
}

// Service routes verified Stripe events to the matching reconciler.
type Service struct {
	catalog       catalog.Repository
	subscriptions subscriptionSyncer
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog repo required")
	}
	if params.Subscriptions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions service required")
	}
	return &Service{
		catalog:       params.Catalog,
		subscriptions: params.Subscriptions,
	}, nil
}

// HandleEvent dispatches one allow-listed event. An allow-listed type without
// a wired handler is a contract violation and fails loudly rather than being
// silently acknowledged.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeProductCreated, stripe.EventTypeProductUpdated:
		return s.reconcileProduct(ctx, event)
	case stripe.EventTypePriceCreated, stripe.EventTypePriceUpdated:
		return s.reconcilePrice(ctx, event)
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		return s.reconcileSubscription(ctx, event)
	case stripe.EventTypeCheckoutSessionCompleted:
		return s.reconcileCheckoutSession(ctx, event)
	default:
		if IsRelevant(event.Type) {
			return pkgerrors.New(pkgerrors.CodeUnhandledEvent, "no handler for relevant event type")
		}
		return nil
	}
}

func (s *Service) reconcileProduct(ctx context.Context, event *stripe.Event) error {
	var product stripe.Product
	if err := json.Unmarshal(event.Data.Raw, &product); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode product event")
	}
	mapped, err := catalog.ProductFromStripe(&product)
	if err != nil {
		return err
	}
	if err := s.catalog.UpsertProduct(ctx, mapped); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert product")
	}
	return nil
}

func (s *Service) reconcilePrice(ctx context.Context, event *stripe.Event) error {
	var price stripe.Price
	if err := json.Unmarshal(event.Data.Raw, &price); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode price event")
	}
	mapped, err := catalog.PriceFromStripe(&price)
	if err != nil {
		return err
	}
	if err := s.catalog.UpsertPrice(ctx, mapped); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert price")
	}
	return nil
}

func (s *Service) reconcileSubscription(ctx context.Context, event *stripe.Event) error {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode subscription event")
	}
	if stripeSub.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription id missing")
	}
	customerID := customerIDFromSubscription(&stripeSub)
	if customerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id missing")
	}
	isCreation := event.Type == stripe.EventTypeCustomerSubscriptionCreated
	return s.subscriptions.SyncStatus(ctx, stripeSub.ID, customerID, isCreation)
}

// reconcileCheckoutSession routes a completed subscription checkout into the
// subscription reconciler with the creation flag set. One-time payment
// sessions have no subscription to sync and are acknowledged.
func (s *Service) reconcileCheckoutSession(ctx context.Context, event *stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
	}
	if session.Mode != stripe.CheckoutSessionModeSubscription {
		return nil
	}
	if session.Subscription == nil || session.Subscription.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session has no subscription")
	}
	if session.Customer == nil || session.Customer.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session has no customer")
	}
	return s.subscriptions.SyncStatus(ctx, session.Subscription.ID, session.Customer.ID, true)
}

func customerIDFromSubscription(sub *stripe.Subscription) string {
	if sub.Customer == nil {
		return ""
	}
	return sub.Customer.ID
}
