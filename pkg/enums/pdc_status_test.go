package enums

import "testing"

func TestPDCStatusTransitionTable(t *testing.T) {
	allowed := map[PDCStatus][]PDCStatus{
		PDCStatusReceived:  {PDCStatusDue, PDCStatusWithdrawn, PDCStatusCancelled},
		PDCStatusDue:       {PDCStatusDeposited, PDCStatusWithdrawn},
		PDCStatusDeposited: {PDCStatusCleared, PDCStatusBounced},
		PDCStatusBounced:   {PDCStatusReplaced},
	}

	isAllowed := func(from, to PDCStatus) bool {
		for _, target := range allowed[from] {
			if target == to {
				return true
			}
		}
		return false
	}

	// Every (source, target) pair outside the edge set must be rejected.
	for _, from := range validPDCStatuses {
		for _, to := range validPDCStatuses {
			got := from.CanTransitionTo(to)
			want := isAllowed(from, to)
			if got != want {
				t.Fatalf("transition %s -> %s: got %v want %v", from, to, got, want)
			}
		}
	}
}

func TestPDCStatusTerminal(t *testing.T) {
	terminal := []PDCStatus{PDCStatusCleared, PDCStatusReplaced, PDCStatusWithdrawn, PDCStatusCancelled}
	for _, status := range terminal {
		if !status.IsTerminal() {
			t.Fatalf("expected %s terminal", status)
		}
	}
	for _, status := range []PDCStatus{PDCStatusReceived, PDCStatusDue, PDCStatusDeposited, PDCStatusBounced} {
		if status.IsTerminal() {
			t.Fatalf("expected %s non-terminal", status)
		}
	}
	if PDCStatus("unknown").IsTerminal() {
		t.Fatalf("unknown status must not report terminal")
	}
}

func TestPDCStatusOutstanding(t *testing.T) {
	for _, status := range []PDCStatus{PDCStatusReceived, PDCStatusDue, PDCStatusDeposited} {
		if !status.Outstanding() {
			t.Fatalf("expected %s outstanding", status)
		}
	}
	for _, status := range []PDCStatus{PDCStatusCleared, PDCStatusBounced, PDCStatusReplaced, PDCStatusWithdrawn, PDCStatusCancelled} {
		if status.Outstanding() {
			t.Fatalf("expected %s not outstanding", status)
		}
	}
}

func TestParsePDCStatus(t *testing.T) {
	status, err := ParsePDCStatus("deposited")
	if err != nil || status != PDCStatusDeposited {
		t.Fatalf("parse deposited: %v %v", status, err)
	}
	if _, err := ParsePDCStatus("ALL"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}
