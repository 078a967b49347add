package subscriptions

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	"github.com/calebmoran/tunewave-backend/pkg/enums"
)

func stripeSubFixture(id string, status stripe.SubscriptionStatus) *stripe.Subscription {
	return &stripe.Subscription{
		ID:      id,
		Status:  status,
		Created: 1700000000,
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{{
				Price:              &stripe.Price{ID: "price_1"},
				Quantity:           1,
				CurrentPeriodStart: 1700000000,
				CurrentPeriodEnd:   1702592000,
			}},
		},
		Metadata: map[string]string{"plan": "premium"},
	}
}

func TestBuildSubscriptionFromStripe(t *testing.T) {
	userID := uuid.New()
	built, err := BuildSubscriptionFromStripe(stripeSubFixture("sub_1", stripe.SubscriptionStatusActive), userID)
	require.NoError(t, err)

	assert.Equal(t, "sub_1", built.ID)
	assert.Equal(t, userID, built.UserID)
	assert.Equal(t, enums.SubscriptionStatusActive, built.Status)
	require.NotNil(t, built.PriceID)
	assert.Equal(t, "price_1", *built.PriceID)
	require.NotNil(t, built.Quantity)
	assert.Equal(t, int64(1), *built.Quantity)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), built.CurrentPeriodStart)
	assert.Equal(t, time.Unix(1702592000, 0).UTC(), built.CurrentPeriodEnd)
	assert.JSONEq(t, `{"plan":"premium"}`, string(built.Metadata))
	assert.Nil(t, built.CanceledAt)
}

func TestBuildSubscriptionFromStripeCanceled(t *testing.T) {
	sub := stripeSubFixture("sub_1", stripe.SubscriptionStatusCanceled)
	sub.CanceledAt = 1701000000
	sub.EndedAt = 1701000000

	built, err := BuildSubscriptionFromStripe(sub, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, enums.SubscriptionStatusCanceled, built.Status)
	require.NotNil(t, built.CanceledAt)
	assert.Equal(t, time.Unix(1701000000, 0).UTC(), *built.CanceledAt)
	require.NotNil(t, built.EndedAt)
}

func TestBuildSubscriptionFromStripeRejectsBadInput(t *testing.T) {
	_, err := BuildSubscriptionFromStripe(nil, uuid.New())
	assert.Error(t, err)

	_, err = BuildSubscriptionFromStripe(stripeSubFixture("sub_1", stripe.SubscriptionStatusActive), uuid.Nil)
	assert.Error(t, err)

	bad := stripeSubFixture("sub_1", "mystery_status")
	_, err = BuildSubscriptionFromStripe(bad, uuid.New())
	assert.Error(t, err)
}

func TestIsActiveStatus(t *testing.T) {
	assert.True(t, IsActiveStatus(enums.SubscriptionStatusActive))
	assert.True(t, IsActiveStatus(enums.SubscriptionStatusTrialing))
	assert.False(t, IsActiveStatus(enums.SubscriptionStatusCanceled))
	assert.False(t, IsActiveStatus(enums.SubscriptionStatusPastDue))
	assert.False(t, IsActiveStatus(enums.SubscriptionStatusUnpaid))
}

func TestDefaultPaymentMethodID(t *testing.T) {
	assert.Empty(t, DefaultPaymentMethodID(nil))
	assert.Empty(t, DefaultPaymentMethodID(&stripe.Subscription{}))
	assert.Equal(t, "pm_1", DefaultPaymentMethodID(&stripe.Subscription{
		DefaultPaymentMethod: &stripe.PaymentMethod{ID: "pm_1"},
	}))
}
