package webhooks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/calebmoran/tunewave-backend/api/responses"
	stripewebhook "github.com/calebmoran/tunewave-backend/internal/webhooks/stripe"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
	"github.com/calebmoran/tunewave-backend/pkg/logger"
	"github.com/calebmoran/tunewave-backend/pkg/metrics"
)

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

type stripeWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type stripeClient interface {
	VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// StripeWebhook handles Stripe catalog and subscription lifecycle events.
// Events outside the allow-list are acknowledged without touching state so
// Stripe stops redelivering them.
func StripeWebhook(svc StripeWebhookService, client stripeClient, guard stripeWebhookGuard, wm *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stripe client unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "stripe signature missing"))
			return
		}

		event, err := client.VerifyEvent(payload, sigHeader)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook signature"))
			return
		}

		wm.IncReceived(string(event.Type))

		if logg != nil {
			ctx = logg.WithEventID(ctx, event.ID)
		}

		if !stripewebhook.IsRelevant(event.Type) {
			if logg != nil {
				logg.Info(ctx, fmt.Sprintf("stripe event %s ignored", event.Type))
			}
			responses.WriteSuccess(w, nil)
			return
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, event.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			responses.WriteSuccess(w, nil)
			return
		}

		start := time.Now()
		if err := svc.HandleEvent(ctx, &event); err != nil {
			_ = guard.Delete(ctx, event.ID)
			wm.IncFailed(string(event.Type))
			responses.WriteError(ctx, logg, w, asWebhookFailure(err))
			return
		}

		wm.IncHandled(string(event.Type))
		wm.ObserveDuration(string(event.Type), time.Since(start))

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("stripe event %s processed", event.ID))
		}
		responses.WriteSuccess(w, nil)
	}
}

// asWebhookFailure keeps request-level codes intact and folds everything else
// into a 400-class failure so Stripe treats the delivery as rejected and
// retries it.
func asWebhookFailure(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		switch typed.Code() {
		case pkgerrors.CodeValidation, pkgerrors.CodeUnhandledEvent:
			return err
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeWebhookFailure, err, "process webhook event")
}
