package scheduler

import (
	"slices"
	"testing"
	"time"

	"github.com/go-drift/repeater/pkg/frame"
	"github.com/go-drift/repeater/pkg/timing"
)

func newTestScheduler(budget time.Duration, step time.Duration) (*Scheduler, *frame.Loop) {
	clock := timing.NewFakeClock()
	clock.Step = step
	loop := frame.NewLoop()
	return New(Options{Budget: budget, Clock: clock, Loop: loop}), loop
}

func TestLowestPriorityRunsFirst(t *testing.T) {
	s, loop := newTestScheduler(Unlimited, 0)
	var order []int
	for _, p := range []int{3, 1, 2} {
		s.RegisterWork(p, func() { order = append(order, p) })
	}
	loop.Step()
	if !slices.Equal(order, []int{1, 2, 3}) {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
}

func TestWorkRunsOnceAndDrainsAcrossFrames(t *testing.T) {
	// Every clock read costs 3ms, so one item fits in a 5ms frame.
	s, loop := newTestScheduler(5*time.Millisecond, 3*time.Millisecond)
	runs := make([]int, 3)
	for i := range runs {
		s.RegisterWork(i, func() { runs[i]++ })
	}

	for n := 1; n <= 3; n++ {
		loop.Step()
		if got := s.Pending(); got != 3-n {
			t.Fatalf("frame %d: pending = %d, want %d", n, got, 3-n)
		}
	}
	for i, n := range runs {
		if n != 1 {
			t.Errorf("work %d ran %d times, want 1", i, n)
		}
	}
	if loop.Active() {
		t.Error("scheduler should unsubscribe once drained")
	}

	loop.Step()
	for i, n := range runs {
		if n != 1 {
			t.Errorf("work %d ran %d times after drain, want 1", i, n)
		}
	}
}

func TestSubscribesOnce(t *testing.T) {
	s, loop := newTestScheduler(Unlimited, 0)
	frames := 0
	loop.Subscribe(func() { frames++ })
	s.RegisterWork(1, func() {})
	s.RegisterWork(2, func() {})
	if s.unsubscribe == nil {
		t.Fatal("expected a frame subscription")
	}
	loop.Step()
	if s.Pending() != 0 || s.unsubscribe != nil {
		t.Errorf("pending = %d, subscribed = %v", s.Pending(), s.unsubscribe != nil)
	}
	if !loop.Active() {
		t.Error("other subscribers must stay registered")
	}
}

func TestReentrantRegistration(t *testing.T) {
	s, loop := newTestScheduler(Unlimited, 0)
	var order []string
	s.RegisterWork(1, func() {
		order = append(order, "outer")
		s.RegisterWork(0, func() { order = append(order, "inner") })
	})
	loop.Step()
	if !slices.Equal(order, []string{"outer", "inner"}) {
		t.Errorf("order = %v, want [outer inner]", order)
	}
	if s.Pending() != 0 || loop.Active() {
		t.Error("re-entrant work should drain in the same frame under an unlimited budget")
	}
}

func TestShouldYield(t *testing.T) {
	clock := timing.NewFakeClock()
	s := New(Options{Budget: 4 * time.Millisecond, Clock: clock})
	s.stopwatch.Reset()
	if s.ShouldYield() {
		t.Error("fresh frame should not yield")
	}
	clock.Advance(5 * time.Millisecond)
	if !s.ShouldYield() {
		t.Error("exceeded budget should yield")
	}
}

func TestBudgetForFPS(t *testing.T) {
	tests := []struct {
		fps  int
		want time.Duration
	}{
		{60, DefaultBudget},
		{120, time.Second / 240},
		{0, DefaultBudget},
		{-5, DefaultBudget},
	}
	for _, tt := range tests {
		if got := BudgetForFPS(tt.fps); got != tt.want {
			t.Errorf("BudgetForFPS(%d) = %v, want %v", tt.fps, got, tt.want)
		}
	}
	if New(Options{}).Budget() != DefaultBudget {
		t.Error("zero budget should select DefaultBudget")
	}
}
