package worker

import (
	"testing"
	"time"
)

func TestExponentialBackoffGrows(t *testing.T) {
	// jitter adds up to 250ms, so compare against the floor
	tests := []struct {
		attempt int
		floor   time.Duration
	}{
		{0, 2 * time.Second},
		{1, 4 * time.Second},
		{2, 8 * time.Second},
		{3, 16 * time.Second},
	}

	for _, tt := range tests {
		d := ExponentialBackoff(tt.attempt)

		if d < tt.floor {
			t.Errorf("attempt %d: delay %v below floor %v", tt.attempt, d, tt.floor)
		}

		if d > tt.floor+time.Second {
			t.Errorf("attempt %d: delay %v too far above floor %v", tt.attempt, d, tt.floor)
		}
	}
}

func TestExponentialBackoffCaps(t *testing.T) {
	d := ExponentialBackoff(30)

	if d > 5*time.Minute+time.Second {
		t.Errorf("delay %v exceeds cap", d)
	}
}
