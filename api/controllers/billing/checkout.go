package billing

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/calebmoran/tunewave-backend/api/middleware"
	"github.com/calebmoran/tunewave-backend/api/responses"
	"github.com/calebmoran/tunewave-backend/api/validators"
	billingsvc "github.com/calebmoran/tunewave-backend/internal/billing"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
	"github.com/calebmoran/tunewave-backend/pkg/logger"
)

type Service interface {
	CreateCheckoutSession(ctx context.Context, userID uuid.UUID, email, priceID string) (*billingsvc.CheckoutSession, error)
	CreatePortalSession(ctx context.Context, userID uuid.UUID, email string) (*billingsvc.PortalSession, error)
}

type checkoutRequest struct {
	PriceID string `json:"price_id" validate:"required"`
}

type checkoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type portalResponse struct {
	URL string `json:"url"`
}

// CreateCheckoutSession starts a subscription checkout for the signed-in user.
func CreateCheckoutSession(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		userID, email, err := resolveUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.CreateCheckoutSession(r.Context(), userID, email, payload.PriceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			SessionID: session.ID,
			URL:       session.URL,
		})
	}
}

// CreatePortalSession opens a billing portal session for the signed-in user.
func CreatePortalSession(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		userID, email, err := resolveUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.CreatePortalSession(r.Context(), userID, email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, portalResponse{URL: session.URL})
	}
}

func resolveUser(r *http.Request) (uuid.UUID, string, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeForbidden, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return userID, middleware.UserEmailFromContext(r.Context()), nil
}
