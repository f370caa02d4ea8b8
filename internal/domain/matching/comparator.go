package matching

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// FieldScores holds the per-field similarity of a PO/invoice pair.
// Every score is in [0,100].
type FieldScores struct {
	Vendor        int  `json:"vendor"`
	PONumberMatch bool `json:"po_number_match"`
	Amount        int  `json:"amount"`
	Date          int  `json:"date"`
	LineItems     int  `json:"line_items"`
}

// Discrepancy describes a field that did not fully agree
type Discrepancy struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Message  string `json:"message"`
}

// Comparison is the output of a field-by-field compare
type Comparison struct {
	Scores        FieldScores
	Discrepancies []Discrepancy
}

// Comparator computes per-field similarity between a purchase order and an invoice
type Comparator struct {
	amountTolerance   decimal.Decimal
	quantityTolerance decimal.Decimal
}

// NewComparator creates a comparator with the tolerances from cfg
func NewComparator(cfg ComparisonConfig) *Comparator {
	return &Comparator{
		amountTolerance:   cfg.AmountTolerance,
		quantityTolerance: cfg.QuantityTolerance,
	}
}

// Compare runs every field comparison. Missing fields score 0.
func (c *Comparator) Compare(po, inv Record) Comparison {
	scores := FieldScores{
		Vendor:        CompareVendor(po.Vendor, inv.Vendor),
		PONumberMatch: ComparePONumber(po.PONumber, inv.PONumber),
		Amount:        CompareAmount(po.Amount, inv.Amount, c.amountTolerance),
		Date:          CompareDates(po.Date, inv.Date),
		LineItems:     CompareLineItems(po.LineItems, inv.LineItems, c.quantityTolerance),
	}

	var issues []Discrepancy
	if scores.Vendor < 100 {
		issues = append(issues, Discrepancy{
			Field: "vendor", Expected: po.Vendor, Actual: inv.Vendor,
			Message: vendorMessage(scores.Vendor),
		})
	}
	if !scores.PONumberMatch {
		issues = append(issues, Discrepancy{
			Field: "po_number", Expected: po.PONumber, Actual: inv.PONumber,
			Message: "PO number does not match",
		})
	}
	if scores.Amount < 100 {
		issues = append(issues, Discrepancy{
			Field: "amount", Expected: po.Amount.StringFixed(2), Actual: inv.Amount.StringFixed(2),
			Message: fmt.Sprintf("Amounts differ by %s", po.Amount.Sub(inv.Amount).Abs().StringFixed(2)),
		})
	}
	if scores.Date < 100 {
		issues = append(issues, Discrepancy{
			Field: "date", Expected: formatDate(po.Date), Actual: formatDate(inv.Date),
			Message: dateMessage(po.Date, inv.Date),
		})
	}
	if scores.LineItems < 100 {
		issues = append(issues, Discrepancy{
			Field:    "line_items",
			Expected: fmt.Sprintf("%d lines", len(po.LineItems)),
			Actual:   fmt.Sprintf("%d lines", len(inv.LineItems)),
			Message:  fmt.Sprintf("%d%% of line items matched", scores.LineItems),
		})
	}
	return Comparison{Scores: scores, Discrepancies: issues}
}

// normalizeName folds case and collapses runs of whitespace
func normalizeName(s string) string {
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}

// CompareVendor scores vendor names: 100 when equal ignoring case, 75 when
// one contains the other, 0 otherwise or when either is missing.
func CompareVendor(a, b string) int {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 75
	}
	return 0
}

// ComparePONumber reports exact equality of two PO numbers. Missing never matches.
func ComparePONumber(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && a == b
}

var hundred = decimal.NewFromInt(100)

// CompareAmount scores two amounts. A difference within tolerance is a full
// match. Beyond it the score falls with the relative difference and bottoms
// out at 0. A zero amount is treated as missing.
func CompareAmount(a, b, tolerance decimal.Decimal) int {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	return gradedScore(a, b, tolerance)
}

// CompareQuantity scores two quantities with the same rule as CompareAmount
func CompareQuantity(a, b, tolerance decimal.Decimal) int {
	return CompareAmount(a, b, tolerance)
}

func gradedScore(a, b, tolerance decimal.Decimal) int {
	diff := a.Sub(b).Abs()
	if diff.LessThanOrEqual(tolerance) {
		return 100
	}
	base := decimal.Max(a.Abs(), b.Abs())
	score := hundred.Mul(decimal.NewFromInt(1).Sub(diff.Div(base))).Round(0)
	if score.IsNegative() {
		return 0
	}
	return int(score.IntPart())
}

// CompareDates scores the distance in days between two dates:
// within 30 days 100, within 60 days 75, within 90 days 50, beyond that 25.
// A missing date scores 0.
func CompareDates(a, b *time.Time) int {
	if a == nil || b == nil || a.IsZero() || b.IsZero() {
		return 0
	}
	days := DaysBetween(*a, *b)
	switch {
	case days <= 30:
		return 100
	case days <= 60:
		return 75
	case days <= 90:
		return 50
	default:
		return 25
	}
}

// DaysBetween returns the absolute number of calendar days between two dates
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(da.Sub(db).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

// CompareLineItems pairs each PO line with the first unused invoice line
// whose description contains (or is contained by) the PO description and
// whose quantity is within tolerance. The score is the share of matched
// lines over the longer list.
func CompareLineItems(po, inv []Line, quantityTolerance decimal.Decimal) int {
	if len(po) == 0 || len(inv) == 0 {
		return 0
	}
	used := make([]bool, len(inv))
	matched := 0
	for _, p := range po {
		pd := normalizeName(p.Description)
		if pd == "" {
			continue
		}
		for j, l := range inv {
			if used[j] {
				continue
			}
			ld := normalizeName(l.Description)
			if ld == "" || !(strings.Contains(pd, ld) || strings.Contains(ld, pd)) {
				continue
			}
			if p.Quantity.Sub(l.Quantity).Abs().GreaterThan(quantityTolerance) {
				continue
			}
			used[j] = true
			matched++
			break
		}
	}
	total := max(len(po), len(inv))
	return int(decimal.NewFromInt(int64(matched)).Mul(hundred).Div(decimal.NewFromInt(int64(total))).Round(0).IntPart())
}

func vendorMessage(score int) string {
	if score == 0 {
		return "Vendor names do not match"
	}
	return "Vendor names match partially"
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func dateMessage(a, b *time.Time) string {
	if a == nil || b == nil || a.IsZero() || b.IsZero() {
		return "Date is missing"
	}
	return fmt.Sprintf("Dates are %d days apart", DaysBetween(*a, *b))
}
