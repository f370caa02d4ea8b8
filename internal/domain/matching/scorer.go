package matching

import "github.com/shopspring/decimal"

// Scorer combines field scores into a single confidence score
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weights
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score returns the weighted sum of the field scores, rounded half away from
// zero and clamped to [0,100]. A PO number match counts as 100.
func (s *Scorer) Score(fs FieldScores) int {
	po := 0
	if fs.PONumberMatch {
		po = 100
	}
	sum := s.weights.Vendor.Mul(decimal.NewFromInt(int64(fs.Vendor))).
		Add(s.weights.PONumber.Mul(decimal.NewFromInt(int64(po)))).
		Add(s.weights.Amount.Mul(decimal.NewFromInt(int64(fs.Amount)))).
		Add(s.weights.Date.Mul(decimal.NewFromInt(int64(fs.Date)))).
		Add(s.weights.LineItems.Mul(decimal.NewFromInt(int64(fs.LineItems))))

	score := int(sum.Round(0).IntPart())
	return min(max(score, 0), 100)
}

// Classify maps a score to the status a fresh comparison starts in
func Classify(score int, cfg ComparisonConfig) Status {
	switch {
	case score >= cfg.AutoApproveThreshold:
		return StatusAutoApproved
	case score >= cfg.ReviewThreshold:
		return StatusNeedsReview
	default:
		return StatusMismatched
	}
}
