package customers

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/calebmoran/tunewave-backend/pkg/db/models"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
	"github.com/calebmoran/tunewave-backend/pkg/logger"
)

type ServiceParams struct {
	Repo         Repository
	StripeClient StripeCustomerClient
	Logger       *logger.Logger
}

// Service resolves application users to Stripe customers, creating the remote
// customer and local mapping on first contact.
type Service struct {
	repo   Repository
	stripe StripeCustomerClient
	logg   *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "customers repo required")
	}
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		repo:   params.Repo,
		stripe: params.StripeClient,
		logg:   params.Logger,
	}, nil
}

// CreateOrRetrieve returns the Stripe customer id for the user. A stored
// mapping is trusted without a remote existence check; on a miss the remote
// side is searched by email before a new customer is created.
func (s *Service) CreateOrRetrieve(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	if userID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	mapping, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer mapping")
	}
	if mapping != nil {
		return mapping.StripeCustomerID, nil
	}

	remote, err := s.stripe.FindByEmail(ctx, email)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search stripe customer")
	}

	var stripeCustomerID string
	if remote != nil {
		stripeCustomerID = remote.ID
	} else {
		created, err := s.stripe.Create(ctx, email, map[string]string{"user_id": userID.String()})
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe customer")
		}
		stripeCustomerID = created.ID
	}

	record := &models.Customer{UserID: userID, StripeCustomerID: stripeCustomerID}
	if err := s.repo.Create(ctx, record); err != nil {
		// The remote customer is left orphaned; swept manually via this log.
		warnCtx := s.logg.WithFields(ctx, map[string]any{
			"user_id":            userID.String(),
			"stripe_customer_id": stripeCustomerID,
		})
		s.logg.Warn(warnCtx, "customer mapping insert failed after remote creation")
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist customer mapping")
	}

	return stripeCustomerID, nil
}

// ResolveUser maps a Stripe customer id back to the owning user.
func (s *Service) ResolveUser(ctx context.Context, stripeCustomerID string) (uuid.UUID, error) {
	if strings.TrimSpace(stripeCustomerID) == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe customer id is required")
	}
	mapping, err := s.repo.FindByStripeCustomerID(ctx, stripeCustomerID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer mapping")
	}
	if mapping == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "no user for stripe customer")
	}
	return mapping.UserID, nil
}
