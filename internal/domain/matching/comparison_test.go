package matching

import (
	"testing"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusNeedsReview, StatusApproved, true},
		{StatusNeedsReview, StatusRejected, true},
		{StatusMismatched, StatusApproved, true},
		{StatusMismatched, StatusRejected, true},
		{StatusAutoApproved, StatusRejected, true},
		{StatusAutoApproved, StatusApproved, false},
		{StatusApproved, StatusRejected, false},
		{StatusRejected, StatusApproved, false},
		{StatusNeedsReview, StatusMismatched, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func newTestResult(t *testing.T, status Status) *Result {
	t.Helper()
	r, err := NewResult(uuid.New(), uuid.New(), uuid.New(), Comparison{}, 75, status)
	require.NoError(t, err)
	return r
}

func TestNewResult(t *testing.T) {
	r := newTestResult(t, StatusNeedsReview)
	assert.NotNil(t, r.Discrepancies)
	assert.Equal(t, 1, r.GetVersion())

	_, err := NewResult(uuid.New(), uuid.Nil, uuid.New(), Comparison{}, 50, StatusMismatched)
	assert.Error(t, err)

	_, err = NewResult(uuid.New(), uuid.New(), uuid.New(), Comparison{}, 101, StatusMismatched)
	assert.Error(t, err)

	_, err = NewResult(uuid.New(), uuid.New(), uuid.New(), Comparison{}, 50, StatusApproved)
	assert.Error(t, err)
}

func TestResult_Review(t *testing.T) {
	t.Run("approve needs review", func(t *testing.T) {
		r := newTestResult(t, StatusNeedsReview)
		require.NoError(t, r.Approve("alice@example.com", "checked"))
		assert.Equal(t, StatusApproved, r.Status)
		assert.Equal(t, "alice@example.com", r.ReviewedBy)
		assert.NotNil(t, r.ReviewedAt)
		assert.Equal(t, 2, r.GetVersion())
	})

	t.Run("reject auto approved", func(t *testing.T) {
		r := newTestResult(t, StatusAutoApproved)
		require.NoError(t, r.Reject("bob", "wrong vendor"))
		assert.Equal(t, StatusRejected, r.Status)
	})

	t.Run("terminal state", func(t *testing.T) {
		r := newTestResult(t, StatusNeedsReview)
		require.NoError(t, r.Reject("bob", ""))
		assert.ErrorIs(t, r.Approve("bob", ""), shared.ErrInvalidState)
		assert.ErrorIs(t, r.Refresh(Comparison{}, 90, StatusAutoApproved), shared.ErrInvalidState)
	})

	t.Run("reviewer required", func(t *testing.T) {
		r := newTestResult(t, StatusNeedsReview)
		assert.Error(t, r.Approve("", ""))
	})
}
