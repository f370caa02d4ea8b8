package matching

// Status is the approval state of a stored comparison
type Status string

const (
	StatusAutoApproved Status = "AUTO_APPROVED"
	StatusNeedsReview  Status = "NEEDS_REVIEW"
	StatusMismatched   Status = "MISMATCHED"
	StatusApproved     Status = "APPROVED"
	StatusRejected     Status = "REJECTED"
)

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	switch s {
	case StatusAutoApproved, StatusNeedsReview, StatusMismatched, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether a reviewer has decided the comparison
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo checks if the status can move to target
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusNeedsReview, StatusMismatched:
		return target == StatusApproved || target == StatusRejected
	case StatusAutoApproved:
		return target == StatusRejected
	case StatusApproved, StatusRejected:
		return false
	}
	return false
}
