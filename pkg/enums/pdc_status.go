package enums

import "fmt"

// PDCStatus tracks the lifecycle of a post-dated cheque.
type PDCStatus string

const (
	PDCStatusReceived  PDCStatus = "received"
	PDCStatusDue       PDCStatus = "due"
	PDCStatusDeposited PDCStatus = "deposited"
	PDCStatusCleared   PDCStatus = "cleared"
	PDCStatusBounced   PDCStatus = "bounced"
	PDCStatusReplaced  PDCStatus = "replaced"
	PDCStatusWithdrawn PDCStatus = "withdrawn"
	PDCStatusCancelled PDCStatus = "cancelled"
)

var validPDCStatuses = []PDCStatus{
	PDCStatusReceived,
	PDCStatusDue,
	PDCStatusDeposited,
	PDCStatusCleared,
	PDCStatusBounced,
	PDCStatusReplaced,
	PDCStatusWithdrawn,
	PDCStatusCancelled,
}

// pdcTransitions is the single source of truth for legal status edges.
// Anything absent here is rejected by the transition engine.
var pdcTransitions = map[PDCStatus][]PDCStatus{
	PDCStatusReceived:  {PDCStatusDue, PDCStatusWithdrawn, PDCStatusCancelled},
	PDCStatusDue:       {PDCStatusDeposited, PDCStatusWithdrawn},
	PDCStatusDeposited: {PDCStatusCleared, PDCStatusBounced},
	PDCStatusBounced:   {PDCStatusReplaced},
	PDCStatusCleared:   nil,
	PDCStatusReplaced:  nil,
	PDCStatusWithdrawn: nil,
	PDCStatusCancelled: nil,
}

// String implements fmt.Stringer.
func (s PDCStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PDCStatus.
func (s PDCStatus) IsValid() bool {
	for _, candidate := range validPDCStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist out of the status.
func (s PDCStatus) IsTerminal() bool {
	targets, ok := pdcTransitions[s]
	return ok && len(targets) == 0
}

// CanTransitionTo reports whether the edge s -> target is in the allowed set.
func (s PDCStatus) CanTransitionTo(target PDCStatus) bool {
	for _, candidate := range pdcTransitions[s] {
		if candidate == target {
			return true
		}
	}
	return false
}

// Outstanding reports whether the cheque still represents an unresolved
// settlement attempt (counted in the outstanding-value aggregate).
func (s PDCStatus) Outstanding() bool {
	switch s {
	case PDCStatusReceived, PDCStatusDue, PDCStatusDeposited:
		return true
	}
	return false
}

// OutstandingStatuses lists the statuses counted as unresolved settlements.
func OutstandingStatuses() []PDCStatus {
	return []PDCStatus{PDCStatusReceived, PDCStatusDue, PDCStatusDeposited}
}

// ParsePDCStatus converts raw input into a PDCStatus.
func ParsePDCStatus(value string) (PDCStatus, error) {
	for _, candidate := range validPDCStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pdc status %q", value)
}
