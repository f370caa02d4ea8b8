package matching

import (
	"fmt"

	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Weights assigns the share of each field in the confidence score
type Weights struct {
	Vendor    decimal.Decimal
	PONumber  decimal.Decimal
	Amount    decimal.Decimal
	Date      decimal.Decimal
	LineItems decimal.Decimal
}

// DefaultWeights returns the standard field weighting
func DefaultWeights() Weights {
	return Weights{
		Vendor:    decimal.RequireFromString("0.25"),
		PONumber:  decimal.RequireFromString("0.35"),
		Amount:    decimal.RequireFromString("0.20"),
		Date:      decimal.RequireFromString("0.10"),
		LineItems: decimal.RequireFromString("0.10"),
	}
}

var weightSumEpsilon = decimal.RequireFromString("0.0001")

// Sum returns the total of all weights
func (w Weights) Sum() decimal.Decimal {
	return w.Vendor.Add(w.PONumber).Add(w.Amount).Add(w.Date).Add(w.LineItems)
}

// Validate checks that no weight is negative and that they sum to one
func (w Weights) Validate() error {
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"vendor", w.Vendor},
		{"po_number", w.PONumber},
		{"amount", w.Amount},
		{"date", w.Date},
		{"line_items", w.LineItems},
	} {
		if f.value.IsNegative() {
			return shared.NewDomainError("INVALID_WEIGHTS", fmt.Sprintf("Weight %s cannot be negative", f.name))
		}
	}
	if w.Sum().Sub(decimal.NewFromInt(1)).Abs().GreaterThan(weightSumEpsilon) {
		return shared.NewDomainError("INVALID_WEIGHTS", fmt.Sprintf("Weights must sum to 1, got %s", w.Sum().String()))
	}
	return nil
}

// ComparisonConfig holds the tunables of the matching pipeline
type ComparisonConfig struct {
	Weights           Weights
	AmountTolerance   decimal.Decimal
	QuantityTolerance decimal.Decimal
	// A score at or above AutoApproveThreshold is approved without review
	AutoApproveThreshold int
	// A score at or above ReviewThreshold is queued for review, below it the pair is a mismatch
	ReviewThreshold int
	CandidateLimit  int
}

// DefaultComparisonConfig returns the standard matching configuration
func DefaultComparisonConfig() ComparisonConfig {
	return ComparisonConfig{
		Weights:              DefaultWeights(),
		AmountTolerance:      decimal.RequireFromString("0.01"),
		QuantityTolerance:    decimal.Zero,
		AutoApproveThreshold: 90,
		ReviewThreshold:      70,
		CandidateLimit:       5,
	}
}

// Validate checks that the configuration is usable
func (c ComparisonConfig) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.AmountTolerance.IsNegative() || c.QuantityTolerance.IsNegative() {
		return shared.NewDomainError("INVALID_TOLERANCE", "Tolerances cannot be negative")
	}
	if c.ReviewThreshold < 0 || c.AutoApproveThreshold > 100 || c.ReviewThreshold > c.AutoApproveThreshold {
		return shared.NewDomainError("INVALID_THRESHOLDS",
			"Thresholds must satisfy 0 <= review <= auto_approve <= 100")
	}
	if c.CandidateLimit < 1 {
		return shared.NewDomainError("INVALID_CANDIDATE_LIMIT", "Candidate limit must be positive")
	}
	return nil
}
