package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/calebmoran/tunewave-backend/api/responses"
	"github.com/calebmoran/tunewave-backend/internal/entitlements"
	"github.com/calebmoran/tunewave-backend/internal/users"
	"github.com/calebmoran/tunewave-backend/pkg/db/models"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
	"github.com/calebmoran/tunewave-backend/pkg/logger"
	"github.com/calebmoran/tunewave-backend/pkg/types"
)

type EntitlementService interface {
	SnapshotFor(ctx context.Context, userID uuid.UUID) (*entitlements.Snapshot, error)
}

type accountResponse struct {
	ID             uuid.UUID                   `json:"id"`
	Email          string                      `json:"email"`
	FullName       *string                     `json:"full_name,omitempty"`
	AvatarURL      *string                     `json:"avatar_url,omitempty"`
	BillingAddress *types.BillingAddress       `json:"billing_address,omitempty"`
	PaymentMethod  *types.PaymentMethodSummary `json:"payment_method,omitempty"`
	CreatedAt      time.Time                   `json:"created_at"`
}

// AccountProfile returns the signed-in user's profile with any backfilled
// billing details.
func AccountProfile(repo users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user repository unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := repo.FindByID(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user"))
			return
		}
		if user == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
			return
		}

		responses.WriteSuccess(w, newAccountResponse(user))
	}
}

// AccountSubscription returns the caller's entitlement snapshot.
func AccountSubscription(svc EntitlementService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "entitlement service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.SnapshotFor(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

func newAccountResponse(user *models.User) accountResponse {
	resp := accountResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}
	if len(user.BillingAddress) > 0 {
		var addr types.BillingAddress
		if err := json.Unmarshal(user.BillingAddress, &addr); err == nil {
			resp.BillingAddress = &addr
		}
	}
	if len(user.PaymentMethod) > 0 {
		var pm types.PaymentMethodSummary
		if err := json.Unmarshal(user.PaymentMethod, &pm); err == nil {
			resp.PaymentMethod = &pm
		}
	}
	return resp
}
