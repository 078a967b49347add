package billing

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/calebmoran/tunewave-backend/internal/catalog"
	"github.com/calebmoran/tunewave-backend/pkg/config"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
)

type customerResolver interface {
	CreateOrRetrieve(ctx context.Context, userID uuid.UUID, email string) (string, error)
}

// CheckoutSession is the client-facing session handle.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PortalSession carries the billing-portal redirect.
type PortalSession struct {
	URL string `json:"url"`
}

type ServiceParams struct {
	Customers    customerResolver
	Catalog      catalog.Repository
	StripeClient StripeSessionClient
	BaseURL      string
	StripeConfig config.StripeConfig
}

// Service creates hosted Stripe sessions for checkout and self-serve billing.
type Service struct {
	customers customerResolver
	catalog   catalog.Repository
	stripe    StripeSessionClient
	baseURL   string
	cfg       config.StripeConfig
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Customers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "customers service required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog repo required")
	}
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	if strings.TrimSpace(params.BaseURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "base url required")
	}
	return &Service{
		customers: params.Customers,
		catalog:   params.Catalog,
		stripe:    params.StripeClient,
		baseURL:   strings.TrimRight(params.BaseURL, "/"),
		cfg:       params.StripeConfig,
	}, nil
}

// CreateCheckoutSession resolves the Stripe customer and opens a subscription
// checkout for the selected price.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, email, priceID string) (*CheckoutSession, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price id is required")
	}

	price, err := s.catalog.FindPriceByID(ctx, priceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load price")
	}
	if price == nil || !price.Active {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "price not found")
	}

	customerID, err := s.customers.CreateOrRetrieve(ctx, userID, email)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(priceID),
			Quantity: stripe.Int64(1),
		}},
		AllowPromotionCodes: stripe.Bool(true),
		SuccessURL:          stripe.String(s.baseURL + s.cfg.CheckoutSuccessURL),
		CancelURL:           stripe.String(s.baseURL + s.cfg.CheckoutCancelURL),
	}
	params.AddMetadata("user_id", userID.String())

	session, err := s.stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// CreatePortalSession opens the Stripe billing portal for the user's customer.
func (s *Service) CreatePortalSession(ctx context.Context, userID uuid.UUID, email string) (*PortalSession, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	customerID, err := s.customers.CreateOrRetrieve(ctx, userID, email)
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeValidation {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "could not resolve billing customer")
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(s.baseURL + s.cfg.PortalReturnPath),
	}
	session, err := s.stripe.CreatePortalSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create portal session")
	}
	return &PortalSession{URL: session.URL}, nil
}
