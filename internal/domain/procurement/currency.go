package procurement

import (
	"strings"

	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
)

// DefaultCurrency is used when a document carries no currency marker
const DefaultCurrency = "USD"

var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
	"₹": "INR",
	"RS": "INR",
}

// NormalizeCurrency accepts an ISO 4217 code or a common symbol and returns
// the upper-case code
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency, nil
	}
	if iso, ok := currencySymbols[code]; ok {
		return iso, nil
	}
	if len(code) != 3 {
		return "", shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
		}
	}
	return code, nil
}
