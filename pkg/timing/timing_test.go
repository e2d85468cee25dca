package timing

import (
	"testing"
	"time"
)

func TestStopwatchElapsed(t *testing.T) {
	clk := NewFakeClock()
	sw := NewStopwatch(clk)
	clk.Advance(5 * time.Millisecond)
	if got := sw.Elapsed(); got != 5*time.Millisecond {
		t.Fatalf("Elapsed = %v, want 5ms", got)
	}
	if sw.Exceeded(5 * time.Millisecond) {
		t.Error("5ms should not exceed a 5ms budget")
	}
	clk.Advance(time.Millisecond)
	if !sw.Exceeded(5 * time.Millisecond) {
		t.Error("6ms should exceed a 5ms budget")
	}
	sw.Reset()
	if got := sw.Elapsed(); got != 0 {
		t.Errorf("Elapsed after Reset = %v, want 0", got)
	}
}

func TestFakeClockStep(t *testing.T) {
	clk := NewFakeClock()
	clk.Step = time.Millisecond
	first := clk.Now()
	second := clk.Now()
	if second.Sub(first) != time.Millisecond {
		t.Errorf("step = %v, want 1ms", second.Sub(first))
	}
}

func TestFakeClockSet(t *testing.T) {
	clk := NewFakeClock()
	target := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	clk.Set(target)
	if !clk.Now().Equal(target) {
		t.Errorf("Now = %v, want %v", clk.Now(), target)
	}
}

func TestNewStopwatchNilClock(t *testing.T) {
	sw := NewStopwatch(nil)
	if sw.Elapsed() < 0 {
		t.Error("elapsed should never be negative")
	}
}
