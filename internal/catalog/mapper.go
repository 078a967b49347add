package catalog

import (
	"encoding/json"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/calebmoran/tunewave-backend/pkg/db/models"
	"github.com/calebmoran/tunewave-backend/pkg/enums"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
)

// ProductFromStripe maps a Stripe product payload into the canonical model.
// Only the first image is stored; the storefront renders a single cover.
func ProductFromStripe(product *stripe.Product) (*models.Product, error) {
	if product == nil || product.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe product payload is empty")
	}

	metadata, err := marshalMetadata(product.Metadata)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal product metadata")
	}

	var image *string
	if len(product.Images) > 0 {
		image = trimmedPtr(product.Images[0])
	}

	return &models.Product{
		ID:          product.ID,
		Active:      product.Active,
		Name:        product.Name,
		Description: trimmedPtr(product.Description),
		Image:       image,
		Metadata:    metadata,
	}, nil
}

// PriceFromStripe maps a Stripe price payload into the canonical model.
func PriceFromStripe(price *stripe.Price) (*models.Price, error) {
	if price == nil || price.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe price payload is empty")
	}
	if price.Product == nil || price.Product.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe price has no product reference")
	}

	pricingType, err := enums.ParsePricingType(string(price.Type))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalid price type")
	}

	metadata, err := marshalMetadata(price.Metadata)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal price metadata")
	}

	out := &models.Price{
		ID:          price.ID,
		ProductID:   price.Product.ID,
		Active:      price.Active,
		Currency:    strings.ToLower(string(price.Currency)),
		Description: trimmedPtr(price.Nickname),
		UnitAmount:  price.UnitAmount,
		Type:        pricingType,
		Metadata:    metadata,
	}

	if price.Recurring != nil {
		interval, err := enums.ParsePricingInterval(string(price.Recurring.Interval))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalid price interval")
		}
		out.Interval = &interval
		count := price.Recurring.IntervalCount
		out.IntervalCount = &count
		trial := price.Recurring.TrialPeriodDays
		out.TrialPeriodDays = &trial
	}

	return out, nil
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

func trimmedPtr(value string) *string {
	if s := strings.TrimSpace(value); s != "" {
		return &s
	}
	return nil
}
