package procurement

import (
	"fmt"
	"time"

	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/procurement"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
)

// buildLineItems validates request lines and recalculates their totals
func buildLineItems(reqs []LineItemRequest) ([]procurement.LineItem, error) {
	items := make([]procurement.LineItem, 0, len(reqs))
	for i, req := range reqs {
		if !req.Quantity.IsPositive() {
			return nil, shared.NewDomainError("INVALID_QUANTITY",
				fmt.Sprintf("Line %d: quantity must be positive", i+1))
		}
		item, err := procurement.NewLineItem(i+1, req.Description, req.Quantity, req.UnitPrice, req.Amount)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// parseDate parses an optional YYYY-MM-DD value
func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("%s must be formatted as YYYY-MM-DD", field))
	}
	return &t, nil
}

type dateRange struct {
	start, end string
}

// newDomainFilter builds a shared.Filter with paging defaults applied
func newDomainFilter(search string, page, pageSize int, orderBy, orderDir string, dates dateRange) (shared.Filter, error) {
	if orderBy == "" {
		orderBy = "created_at"
	}
	if orderDir == "" {
		orderDir = "desc"
	}
	filter := shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Search:   search,
		Filters:  make(map[string]any),
	}.Normalize()

	start, err := parseDate("start_date", dates.start)
	if err != nil {
		return filter, err
	}
	end, err := parseDate("end_date", dates.end)
	if err != nil {
		return filter, err
	}
	if start != nil {
		filter.Filters["start_date"] = *start
	}
	if end != nil {
		// inclusive upper bound
		filter.Filters["end_date"] = end.Add(24*time.Hour - time.Nanosecond)
	}
	return filter, nil
}
