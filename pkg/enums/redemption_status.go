package enums

// RedemptionStatus tracks the review lifecycle of a reward redemption.
type RedemptionStatus string

const (
	RedemptionStatusPending  RedemptionStatus = "pending"
	RedemptionStatusApproved RedemptionStatus = "approved"
	RedemptionStatusRejected RedemptionStatus = "rejected"
	RedemptionStatusShipped  RedemptionStatus = "shipped"
)

func (s RedemptionStatus) IsValid() bool {
	switch s {
	case RedemptionStatusPending, RedemptionStatusApproved, RedemptionStatusRejected, RedemptionStatusShipped:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from s.
func (s RedemptionStatus) IsTerminal() bool {
	return s == RedemptionStatusRejected || s == RedemptionStatusShipped
}

// CanTransitionTo encodes pending -> {approved, rejected} and approved -> shipped.
func (s RedemptionStatus) CanTransitionTo(next RedemptionStatus) bool {
	switch s {
	case RedemptionStatusPending:
		return next == RedemptionStatusApproved || next == RedemptionStatusRejected
	case RedemptionStatusApproved:
		return next == RedemptionStatusShipped
	}
	return false
}

func ParseRedemptionStatus(value string) (RedemptionStatus, error) {
	status := RedemptionStatus(value)
	if !status.IsValid() {
		return "", errInvalidEnum("redemption status", value)
	}
	return status, nil
}
