package entitlements

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/calebmoran/tunewave-backend/internal/subscriptions"
	"github.com/calebmoran/tunewave-backend/pkg/enums"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
)

// Snapshot is the billing state the account page and subscribe modal decide on.
type Snapshot struct {
	Subscribed        bool                      `json:"subscribed"`
	Status            *enums.SubscriptionStatus `json:"status,omitempty"`
	PriceID           *string                   `json:"price_id,omitempty"`
	CurrentPeriodEnd  *time.Time                `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool                      `json:"cancel_at_period_end"`
}

type ServiceParams struct {
	Subscriptions subscriptions.Repository
}

// Service derives user affordances from synchronized subscription state. It
// never calls Stripe; the webhook pipeline is the only writer of that state.
type Service struct {
	subs subscriptions.Repository
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Subscriptions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions repo required")
	}
	return &Service{subs: params.Subscriptions}, nil
}

// CanUpload reports whether the user holds an active-equivalent subscription.
func (s *Service) CanUpload(ctx context.Context, userID uuid.UUID) (bool, error) {
	snapshot, err := s.SnapshotFor(ctx, userID)
	if err != nil {
		return false, err
	}
	return snapshot.Subscribed, nil
}

// SnapshotFor returns the entitlement snapshot for the user's most recent
// subscription. Users with no subscription history get the zero snapshot.
func (s *Service) SnapshotFor(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	sub, err := s.subs.FindLatestByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if sub == nil {
		return &Snapshot{}, nil
	}

	status := sub.Status
	snapshot := &Snapshot{
		Subscribed:        subscriptions.IsActiveStatus(status),
		Status:            &status,
		PriceID:           sub.PriceID,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if !sub.CurrentPeriodEnd.IsZero() {
		end := sub.CurrentPeriodEnd
		snapshot.CurrentPeriodEnd = &end
	}
	return snapshot, nil
}
