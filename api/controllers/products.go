package controllers

import (
	"net/http"

	"github.com/calebmoran/tunewave-backend/api/responses"
	"github.com/calebmoran/tunewave-backend/internal/catalog"
	"github.com/calebmoran/tunewave-backend/pkg/db/models"
	"github.com/calebmoran/tunewave-backend/pkg/enums"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
	"github.com/calebmoran/tunewave-backend/pkg/logger"
)

type productPriceResponse struct {
	ID              string                 `json:"id"`
	Currency        string                 `json:"currency"`
	UnitAmount      int64                  `json:"unit_amount"`
	DisplayAmount   string                 `json:"display_amount"`
	Type            enums.PricingType      `json:"type"`
	Interval        *enums.PricingInterval `json:"interval,omitempty"`
	IntervalCount   *int64                 `json:"interval_count,omitempty"`
	TrialPeriodDays *int64                 `json:"trial_period_days,omitempty"`
}

type productResponse struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description *string                `json:"description,omitempty"`
	Image       *string                `json:"image,omitempty"`
	Prices      []productPriceResponse `json:"prices"`
}

// ProductList returns the active plan catalog with active prices, ordered for
// display.
func ProductList(repo catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog repository unavailable"))
			return
		}

		products, err := repo.ListActiveWithPrices(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products"))
			return
		}

		resp := make([]productResponse, 0, len(products))
		for _, product := range products {
			resp = append(resp, newProductResponse(product))
		}
		responses.WriteSuccess(w, resp)
	}
}

func newProductResponse(product models.Product) productResponse {
	resp := productResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Image:       product.Image,
		Prices:      make([]productPriceResponse, 0, len(product.Prices)),
	}
	for _, price := range product.Prices {
		resp.Prices = append(resp.Prices, productPriceResponse{
			ID:              price.ID,
			Currency:        price.Currency,
			UnitAmount:      price.UnitAmount,
			DisplayAmount:   catalog.DisplayAmount(price.UnitAmount, price.Currency),
			Type:            price.Type,
			Interval:        price.Interval,
			IntervalCount:   price.IntervalCount,
			TrialPeriodDays: price.TrialPeriodDays,
		})
	}
	return resp
}
