package subscriptions

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/calebmoran/tunewave-backend/internal/users"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
	"github.com/calebmoran/tunewave-backend/pkg/logger"
	"github.com/calebmoran/tunewave-backend/pkg/types"
)

type userResolver interface {
	ResolveUser(ctx context.Context, stripeCustomerID string) (uuid.UUID, error)
}

type ServiceParams struct {
	Repo         Repository
	UsersRepo    users.Repository
	Customers    userResolver
	StripeClient StripeSubscriptionClient
	Logger       *logger.Logger
}

// Service reconciles local subscription state against Stripe.
type Service struct {
	repo      Repository
	usersRepo users.Repository
	customers userResolver
	stripe    StripeSubscriptionClient
	logg      *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions repo required")
	}
	if params.UsersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repo required")
	}
	if params.Customers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "customer resolver required")
	}
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		repo:      params.Repo,
		usersRepo: params.UsersRepo,
		customers: params.Customers,
		stripe:    params.StripeClient,
		logg:      params.Logger,
	}, nil
}

// SyncStatus re-fetches the subscription from Stripe and overwrites the local
// row. The webhook payload itself is never trusted: fetching current state
// makes redelivered and reordered events land on the same result.
func (s *Service) SyncStatus(ctx context.Context, subscriptionID, stripeCustomerID string, isCreationEvent bool) error {
	if strings.TrimSpace(subscriptionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription id is required")
	}
	if strings.TrimSpace(stripeCustomerID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe customer id is required")
	}

	userID, err := s.customers.ResolveUser(ctx, stripeCustomerID)
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "no user mapped to stripe customer")
		}
		return err
	}

	params := &stripe.SubscriptionParams{}
	params.AddExpand("default_payment_method")
	stripeSub, err := s.stripe.GetSubscription(ctx, subscriptionID, params)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch stripe subscription")
	}

	built, err := BuildSubscriptionFromStripe(stripeSub, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, built); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert subscription")
	}

	if isCreationEvent {
		s.backfillBillingProfile(ctx, userID, stripeSub)
	}
	return nil
}

// backfillBillingProfile copies the card summary and billing address from the
// default payment method onto the user row. Best effort only: any failure is
// logged and the sync result stands.
func (s *Service) backfillBillingProfile(ctx context.Context, userID uuid.UUID, stripeSub *stripe.Subscription) {
	pmID := DefaultPaymentMethodID(stripeSub)
	if pmID == "" {
		return
	}

	pm := stripeSub.DefaultPaymentMethod
	if pm == nil || pm.BillingDetails == nil {
		fetched, err := s.stripe.GetPaymentMethod(ctx, pmID)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "payment_method_id", pmID), "billing backfill: fetch payment method failed")
			return
		}
		pm = fetched
	}

	var addressBlob, cardBlob json.RawMessage
	if pm.BillingDetails != nil && pm.BillingDetails.Address != nil {
		addr := pm.BillingDetails.Address
		blob, err := json.Marshal(types.BillingAddress{
			Line1:      addr.Line1,
			Line2:      addr.Line2,
			City:       addr.City,
			State:      addr.State,
			PostalCode: addr.PostalCode,
			Country:    addr.Country,
		})
		if err == nil {
			addressBlob = blob
		}
	}
	if pm.Card != nil {
		blob, err := json.Marshal(types.PaymentMethodSummary{
			Brand: string(pm.Card.Brand),
			Last4: pm.Card.Last4,
		})
		if err == nil {
			cardBlob = blob
		}
	}
	if addressBlob == nil && cardBlob == nil {
		return
	}

	if err := s.usersRepo.UpdateBillingProfile(ctx, userID, addressBlob, cardBlob); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "user_id", userID.String()), "billing backfill: user update failed")
	}
}
