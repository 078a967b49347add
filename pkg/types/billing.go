package types

// BillingAddress mirrors the gateway's billing-details address shape. It is
// stored as JSONB on the user profile during first-activation backfill.
type BillingAddress struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// PaymentMethodSummary keeps only the displayable card fields, never the PAN.
type PaymentMethodSummary struct {
	Brand string `json:"brand,omitempty"`
	Last4 string `json:"last4,omitempty"`
}
