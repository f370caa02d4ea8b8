package procurement

import (
	"strings"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItem is a single priced row on a purchase order or an invoice
type LineItem struct {
	ID          uuid.UUID
	LineNumber  int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// NewLineItem creates a line item and derives its amount from quantity and
// unit price. An extracted amount that disagrees with quantity*price is kept
// as-is when quantity or price is missing from the source document.
func NewLineItem(lineNumber int, description string, quantity, unitPrice, amount decimal.Decimal) (*LineItem, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, shared.NewDomainError("INVALID_LINE_DESCRIPTION", "Line item description cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_UNIT_PRICE", "Unit price cannot be negative")
	}
	if quantity.IsPositive() && !unitPrice.IsZero() {
		amount = quantity.Mul(unitPrice).Round(2)
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Line amount cannot be negative")
	}
	return &LineItem{
		ID:          uuid.New(),
		LineNumber:  lineNumber,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      amount,
	}, nil
}

// sumLines returns the total amount of the given lines
func sumLines(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}
