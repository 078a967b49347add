package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currencies Stripe treats as zero-decimal: unit_amount is already whole units.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true,
	"kmf": true, "krw": true, "mga": true, "pyg": true, "rwf": true,
	"ugx": true, "vnd": true, "vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// DisplayAmount converts a minor-unit amount into a decimal string for the
// pricing page, e.g. 999 "usd" -> "9.99".
func DisplayAmount(unitAmount int64, currency string) string {
	amount := decimal.NewFromInt(unitAmount)
	if zeroDecimalCurrencies[strings.ToLower(currency)] {
		return amount.StringFixed(0)
	}
	return amount.Div(decimal.NewFromInt(100)).StringFixed(2)
}
