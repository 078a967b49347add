package customers

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/customer"

	pkgstripe "github.com/calebmoran/tunewave-backend/pkg/stripe"
)

// StripeCustomerClient exposes the subset of Stripe operations the customer
// resolution flow needs.
type StripeCustomerClient interface {
	FindByEmail(ctx context.Context, email string) (*stripe.Customer, error)
	Create(ctx context.Context, email string, metadata map[string]string) (*stripe.Customer, error)
}

type stripeClientWrapper struct{}

// NewStripeClient wraps the provided Stripe client so the service can be tested.
func NewStripeClient(api *pkgstripe.Client) StripeCustomerClient {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{}
}

func (w *stripeClientWrapper) FindByEmail(ctx context.Context, email string) (*stripe.Customer, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := customer.List(params)
	if iter.Next() {
		return iter.Customer(), nil
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (w *stripeClientWrapper) Create(ctx context.Context, email string, metadata map[string]string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	return customer.New(params)
}
