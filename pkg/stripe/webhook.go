package stripe

import (
	"errors"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

var errNoSigningSecret = errors.New("stripe signing secret not configured")

// VerifyEvent checks the Stripe-Signature header against the raw payload
// and returns the decoded event. The check is timestamp-tolerant per
// Stripe's default tolerance window.
func (c *Client) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	if c == nil || c.signingSecret == "" {
		return stripe.Event{}, errNoSigningSecret
	}
	return webhook.ConstructEvent(payload, sigHeader, c.signingSecret)
}
