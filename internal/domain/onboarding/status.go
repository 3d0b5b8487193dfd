package onboarding

import "fmt"

// Status is the lifecycle state of an onboarding request.
//
//	INVITED ──submit──▶ PENDING_APPROVAL ──approve──▶ ONBOARDED
//	   ▲                      │
//	   └──────send back───────┤
//	                          └────drop────▶ DROPPED
//
// INVITED requests may also be dropped directly (expiry or withdrawal).
// ONBOARDED and DROPPED are terminal.
type Status string

const (
	StatusInvited         Status = "INVITED"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusOnboarded       Status = "ONBOARDED"
	StatusDropped         Status = "DROPPED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusInvited, StatusPendingApproval, StatusOnboarded, StatusDropped:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusOnboarded || s == StatusDropped
}

func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusInvited:
		return target == StatusPendingApproval || target == StatusDropped
	case StatusPendingApproval:
		return target == StatusOnboarded || target == StatusDropped || target == StatusInvited
	default:
		return false
	}
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid onboarding status: %s", raw)
	}
	return s, nil
}
