package subscriptions

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentmethod"
	"github.com/stripe/stripe-go/v84/subscription"

	pkgstripe "github.com/calebmoran/tunewave-backend/pkg/stripe"
)

// StripeSubscriptionClient exposes the subset of Stripe operations required by
// the subscription reconciler.
type StripeSubscriptionClient interface {
	GetSubscription(ctx context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
	GetPaymentMethod(ctx context.Context, id string) (*stripe.PaymentMethod, error)
}

type stripeClientWrapper struct{}

// NewStripeClient wraps the provided Stripe client so the reconciler can be tested.
func NewStripeClient(api *pkgstripe.Client) StripeSubscriptionClient {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{}
}

func (w *stripeClientWrapper) GetSubscription(ctx context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	if params == nil {
		params = &stripe.SubscriptionParams{}
	}
	params.Context = ctx
	return subscription.Get(id, params)
}

func (w *stripeClientWrapper) GetPaymentMethod(ctx context.Context, id string) (*stripe.PaymentMethod, error) {
	params := &stripe.PaymentMethodParams{}
	params.Context = ctx
	return paymentmethod.Get(id, params)
}
