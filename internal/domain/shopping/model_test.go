package shopping

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusConcept, StatusReady, true},
		{StatusReady, StatusConcept, true},
		{StatusReady, StatusDone, true},
		{StatusConcept, StatusDone, false},
		{StatusDone, StatusReady, false},
		{StatusDone, StatusConcept, false},
		{StatusConcept, StatusConcept, false},
		{StatusConcept, "bogus", false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
