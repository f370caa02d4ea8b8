package matching

import "sort"

// Candidate is a purchase order scored against an invoice
type Candidate struct {
	Record     Record
	Comparison Comparison
	Score      int
	Status     Status
}

// Matcher runs the full compare-and-score step
type Matcher struct {
	cfg        ComparisonConfig
	comparator *Comparator
	scorer     *Scorer
}

// NewMatcher creates a matcher. cfg must already be validated.
func NewMatcher(cfg ComparisonConfig) *Matcher {
	return &Matcher{
		cfg:        cfg,
		comparator: NewComparator(cfg),
		scorer:     NewScorer(cfg.Weights),
	}
}

// Config returns the configuration the matcher was built with
func (m *Matcher) Config() ComparisonConfig {
	return m.cfg
}

// Match compares a PO with an invoice and classifies the score
func (m *Matcher) Match(po, inv Record) Candidate {
	cmp := m.comparator.Compare(po, inv)
	score := m.scorer.Score(cmp.Scores)
	return Candidate{
		Record:     po,
		Comparison: cmp,
		Score:      score,
		Status:     Classify(score, m.cfg),
	}
}

// tier orders candidates before scoring: exact PO number first, then a
// vendor overlap, then everything else
func tier(po, inv Record) int {
	if ComparePONumber(po.PONumber, inv.PONumber) {
		return 0
	}
	if CompareVendor(po.Vendor, inv.Vendor) > 0 {
		return 1
	}
	return 2
}

// Rank scores every purchase order against the invoice and returns at most
// limit candidates, best first. Ties keep the tier order and then the input order.
func (m *Matcher) Rank(inv Record, pos []Record, limit int) []Candidate {
	type ranked struct {
		Candidate
		tier int
	}
	all := make([]ranked, 0, len(pos))
	for _, po := range pos {
		all = append(all, ranked{Candidate: m.Match(po, inv), tier: tier(po, inv)})
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].tier != all[j].tier {
			return all[i].tier < all[j].tier
		}
		return all[i].Score > all[j].Score
	})
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}
	out := make([]Candidate, 0, limit)
	for _, r := range all[:limit] {
		out = append(out, r.Candidate)
	}
	return out
}
