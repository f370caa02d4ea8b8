package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches sentinel with different message", func(t *testing.T) {
		err := ErrNotFound.WithMessage("purchase order not found")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Equal(t, "purchase order not found", err.Error())
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("load: %w", ErrInvalidState)
		assert.True(t, errors.Is(err, ErrInvalidState))
		assert.False(t, errors.Is(err, ErrNotFound))
	})

	t.Run("AsDomainError", func(t *testing.T) {
		de, ok := AsDomainError(fmt.Errorf("x: %w", NewDomainError("CODE", "msg")))
		assert.True(t, ok)
		assert.Equal(t, "CODE", de.Code)

		_, ok = AsDomainError(errors.New("plain"))
		assert.False(t, ok)
	})
}

func TestFilter_Normalize(t *testing.T) {
	f := Filter{Page: 0, PageSize: 1000}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageSize, f.PageSize)
	assert.NotNil(t, f.Filters)

	f = Filter{Page: 3, PageSize: 10}.Normalize()
	assert.Equal(t, 20, f.Offset())
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2, 3}, 21, 1, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(21), p.Total)

	p = NewPaginated([]int{}, 0, 1, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, DefaultPageSize, p.PageSize)
}
