package clock

import (
	"testing"
	"time"
)

func TestAnchorClock(t *testing.T) {
	anchor := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	c := NewAnchorClock(anchor)
	if !c.Now().Equal(anchor) {
		t.Errorf("Now() = %v, want %v", c.Now(), anchor)
	}
	if c.NowUTC().Location() != time.UTC {
		t.Errorf("NowUTC() should be UTC")
	}

	zero := NewAnchorClock(time.Time{})
	if zero.Now().IsZero() {
		t.Errorf("zero anchor should fall back to current time")
	}
}

func TestFakeClock(t *testing.T) {
	fixed := time.Unix(1700000000, 0)
	f := &FakeClock{NowFn: func() time.Time { return fixed }}
	if !f.Now().Equal(fixed) {
		t.Errorf("expected fixed time")
	}
	var _ Clock = f
	var _ Clock = RealClock{}
}
