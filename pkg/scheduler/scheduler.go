// Package scheduler spreads deferred work across frames under a time budget.
package scheduler

import (
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-drift/repeater/pkg/frame"
	"github.com/go-drift/repeater/pkg/timing"
)

const (
	// DefaultBudget is half of a frame interval at 60 frames per second.
	DefaultBudget = time.Second / 120
	// Unlimited disables yielding.
	Unlimited time.Duration = math.MaxInt64
)

// BudgetForFPS returns half of one frame interval at fps, or DefaultBudget
// for non-positive rates.
func BudgetForFPS(fps int) time.Duration {
	if fps <= 0 {
		return DefaultBudget
	}
	return time.Second / time.Duration(2*fps)
}

// Options configure a Scheduler.
type Options struct {
	// Budget bounds the work executed per frame. Zero selects DefaultBudget.
	Budget time.Duration
	// Clock measures the budget. Nil selects the system clock.
	Clock timing.Clock
	// Loop is the frame hook the scheduler subscribes to while work is
	// pending. Nil creates a private loop, available through Loop.
	Loop *frame.Loop
	// Logger receives deferral traces. Nil selects log.Default().
	Logger *log.Logger
}

type work struct {
	priority int
	fn       func()
}

// Scheduler runs registered work on frame callbacks, lowest priority value
// first, until the per-frame budget is used up. Work left over runs on
// later frames.
type Scheduler struct {
	budget      time.Duration
	stopwatch   *timing.Stopwatch
	loop        *frame.Loop
	logger      *log.Logger
	pending     []work
	unsubscribe func()
}

// New returns a Scheduler.
func New(opts Options) *Scheduler {
	if opts.Budget <= 0 {
		opts.Budget = DefaultBudget
	}
	if opts.Loop == nil {
		opts.Loop = frame.NewLoop()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Scheduler{
		budget:    opts.Budget,
		stopwatch: timing.NewStopwatch(opts.Clock),
		loop:      opts.Loop,
		logger:    opts.Logger,
	}
}

// Loop returns the frame hook the scheduler runs on.
func (s *Scheduler) Loop() *frame.Loop {
	return s.loop
}

// Budget returns the per-frame budget.
func (s *Scheduler) Budget() time.Duration {
	return s.budget
}

// Pending returns the number of work items not yet executed.
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// RegisterWork queues fn to run on a later frame. Lower priority values run
// first. Work may be registered from inside a running work item.
func (s *Scheduler) RegisterWork(priority int, fn func()) {
	s.pending = append(s.pending, work{priority: priority, fn: fn})
	if s.unsubscribe == nil {
		s.unsubscribe = s.loop.Subscribe(s.onFrame)
	}
}

// ShouldYield reports whether the current frame's budget is used up.
func (s *Scheduler) ShouldYield() bool {
	if s.budget == Unlimited {
		return false
	}
	return s.stopwatch.Exceeded(s.budget)
}

func (s *Scheduler) onFrame() {
	s.stopwatch.Reset()
	if len(s.pending) > 0 {
		// Descending, so the next item to run is always at the back.
		slices.SortStableFunc(s.pending, func(a, b work) int {
			return b.priority - a.priority
		})
		executed := 0
		for len(s.pending) > 0 && !s.ShouldYield() {
			last := len(s.pending) - 1
			next := s.pending[last]
			s.pending = slices.Delete(s.pending, last, last+1)
			next.fn()
			executed++
		}
		if len(s.pending) > 0 {
			s.logger.Debug("deferred", "executed", executed, "pending", len(s.pending))
		}
	}
	if len(s.pending) == 0 && s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.stopwatch.Reset()
}
