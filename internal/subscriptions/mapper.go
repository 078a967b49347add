package subscriptions

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/calebmoran/tunewave-backend/pkg/db/models"
	"github.com/calebmoran/tunewave-backend/pkg/enums"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
)

// BuildSubscriptionFromStripe maps a freshly fetched Stripe subscription into
// the canonical model. The full payload replaces whatever is stored, which
// keeps redelivered and reordered events convergent.
func BuildSubscriptionFromStripe(stripeSub *stripe.Subscription, userID uuid.UUID) (*models.Subscription, error) {
	if stripeSub == nil || stripeSub.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe subscription payload is empty")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	status, err := enums.ParseSubscriptionStatus(string(stripeSub.Status))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalid subscription status")
	}

	metadata, err := marshalMetadata(stripeSub.Metadata)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal subscription metadata")
	}

	out := &models.Subscription{
		ID:                stripeSub.ID,
		UserID:            userID,
		Status:            status,
		CancelAtPeriodEnd: stripeSub.CancelAtPeriodEnd,
		Metadata:          metadata,
		Created:           toTime(stripeSub.Created),
		EndedAt:           toTimePtr(stripeSub.EndedAt),
		CancelAt:          toTimePtr(stripeSub.CancelAt),
		CanceledAt:        toTimePtr(stripeSub.CanceledAt),
		TrialStart:        toTimePtr(stripeSub.TrialStart),
		TrialEnd:          toTimePtr(stripeSub.TrialEnd),
	}

	if item := firstItem(stripeSub); item != nil {
		if item.Price != nil && item.Price.ID != "" {
			priceID := item.Price.ID
			out.PriceID = &priceID
		}
		if item.Quantity > 0 {
			quantity := item.Quantity
			out.Quantity = &quantity
		}
		out.CurrentPeriodStart = toTime(item.CurrentPeriodStart)
		out.CurrentPeriodEnd = toTime(item.CurrentPeriodEnd)
	}

	return out, nil
}

// DefaultPaymentMethodID returns the id of the subscription's default payment
// method, whether the field arrived expanded or as a bare reference.
func DefaultPaymentMethodID(stripeSub *stripe.Subscription) string {
	if stripeSub == nil || stripeSub.DefaultPaymentMethod == nil {
		return ""
	}
	return stripeSub.DefaultPaymentMethod.ID
}

// IsActiveStatus reports whether the status grants paid entitlements.
func IsActiveStatus(status enums.SubscriptionStatus) bool {
	return status == enums.SubscriptionStatusActive || status == enums.SubscriptionStatusTrialing
}

func firstItem(sub *stripe.Subscription) *stripe.SubscriptionItem {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil
	}
	return sub.Items.Data[0]
}

func marshalMetadata(metadata map[string]string) (json.RawMessage, error) {
	if len(metadata) == 0 {
		return json.RawMessage("{}"), nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func toTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

func toTimePtr(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
