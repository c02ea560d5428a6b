package domain

import "testing"

func TestProcessingStatusTerminal(t *testing.T) {
	terminal := []ProcessingStatus{
		ProcessingStatusCompleted,
		ProcessingStatusTimeout,
		ProcessingStatusFailed,
	}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}

	transient := []ProcessingStatus{
		ProcessingStatusPending,
		ProcessingStatusProcessing,
	}
	for _, s := range transient {
		if s.Terminal() {
			t.Errorf("expected %s to be transient", s)
		}
	}
}
