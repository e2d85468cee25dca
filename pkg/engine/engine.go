// Package engine drives frames: queued callbacks, then frame subscribers
// such as the phasing scheduler, then a layout flush of the root element.
package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-drift/repeater/pkg/errors"
	"github.com/go-drift/repeater/pkg/frame"
	"github.com/go-drift/repeater/pkg/graphics"
	"github.com/go-drift/repeater/pkg/layout"
	"github.com/go-drift/repeater/pkg/timing"
)

// Options configure an Engine.
type Options struct {
	// Loop is stepped once per frame. Nil creates one.
	Loop *frame.Loop
	// Clock times the frame phases. Nil selects the system clock.
	Clock  timing.Clock
	Logger *log.Logger
	// TraceCapacity is the number of frame samples kept. Zero selects 240.
	TraceCapacity int
	// TraceThreshold is the frame duration above which a frame counts as
	// dropped. Zero selects one 60 fps frame interval.
	TraceThreshold time.Duration
}

// owned is implemented by elements that can be scheduled as layout roots.
type owned interface {
	SetOwner(owner *layout.Pipeline)
}

// Engine runs frames for one root element.
//
// StepFrame and the setters are safe to call from different goroutines.
// Dispatch may be called at any time, including from inside a frame.
type Engine struct {
	mu       sync.Mutex
	loop     *frame.Loop
	pipeline layout.Pipeline
	clock    timing.Clock
	logger   *log.Logger
	trace    *FrameTraceBuffer
	root     layout.Element
	size     graphics.Size
	frames   uint64

	dispatchMu    sync.Mutex
	dispatchQueue []func()
	pendingFrame  atomic.Bool
}

// New returns an Engine.
func New(opts Options) *Engine {
	if opts.Loop == nil {
		opts.Loop = frame.NewLoop()
	}
	if opts.Clock == nil {
		opts.Clock = timing.System()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Engine{
		loop:   opts.Loop,
		clock:  opts.Clock,
		logger: opts.Logger,
		trace:  NewFrameTraceBuffer(opts.TraceCapacity, opts.TraceThreshold),
	}
}

// Loop returns the frame loop stepped by StepFrame.
func (e *Engine) Loop() *frame.Loop { return e.loop }

// SetRoot replaces the root element. Invalidations inside the root's tree
// schedule it for the next frame.
func (e *Engine) SetRoot(root layout.Element) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o, ok := e.root.(owned); ok {
		o.SetOwner(nil)
	}
	e.root = root
	if o, ok := root.(owned); ok {
		o.SetOwner(&e.pipeline)
	}
	if root != nil {
		e.pipeline.ScheduleLayout(root)
	}
}

// Root returns the root element.
func (e *Engine) Root() layout.Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.root
}

// SetSize sets the size the root is laid out at.
func (e *Engine) SetSize(size graphics.Size) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.size == size {
		return
	}
	e.size = size
	if e.root != nil {
		e.pipeline.ScheduleLayout(e.root)
	}
}

// Dispatch queues callback to run at the start of the next frame.
func (e *Engine) Dispatch(callback func()) {
	if callback == nil {
		return
	}
	e.dispatchMu.Lock()
	e.dispatchQueue = append(e.dispatchQueue, callback)
	e.dispatchMu.Unlock()
	e.RequestFrame()
}

// RequestFrame asks for another frame even if nothing is dirty.
func (e *Engine) RequestFrame() {
	e.pendingFrame.Store(true)
}

// NeedsFrame reports whether StepFrame has work to do.
func (e *Engine) NeedsFrame() bool {
	if e.pendingFrame.Load() || e.loop.Active() {
		return true
	}
	e.dispatchMu.Lock()
	pending := len(e.dispatchQueue) > 0
	e.dispatchMu.Unlock()
	if pending {
		return true
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pipeline.NeedsLayout()
}

// Frames returns the number of frames run.
func (e *Engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// Trace returns the recent frame samples.
func (e *Engine) Trace() FrameTimeline {
	return e.trace.Snapshot()
}

// StepFrame runs one frame. A panic inside the frame is reported to the
// error handler and returned; the next frame starts from a clean state.
func (e *Engine) StepFrame() (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer errors.RecoverWithCallback("engine.StepFrame", func(r any) {
		err = panicToError("engine.StepFrame", r)
		e.pendingFrame.Store(true)
		e.logger.Error("frame failed", "frame", e.frames, "err", err)
	})

	e.pendingFrame.Store(false)
	frameStart := e.clock.Now()
	var sample FrameSample
	sample.Timestamp = frameStart.UnixMilli()

	// Dispatch
	phaseStart := frameStart
	for _, callback := range e.drainDispatchQueue() {
		callback()
	}
	sample.Phases.DispatchMs = durationToMillis(e.clock.Now().Sub(phaseStart))

	// Frame callbacks
	phaseStart = e.clock.Now()
	sample.Counts.Subscribers = boolToInt(e.loop.Active())
	e.loop.Step()
	sample.Phases.CallbacksMs = durationToMillis(e.clock.Now().Sub(phaseStart))

	// Layout
	phaseStart = e.clock.Now()
	if e.root != nil && e.pipeline.NeedsLayout() {
		sample.Flags.LaidOut = true
		e.pipeline.FlushLayout(e.root, e.size)
	}
	sample.Phases.LayoutMs = durationToMillis(e.clock.Now().Sub(phaseStart))
	sample.Counts.Elements = countElements(e.root)

	duration := e.clock.Now().Sub(frameStart)
	sample.FrameMs = durationToMillis(duration)
	e.trace.Add(sample, duration)
	e.frames++
	if duration > e.trace.Threshold() {
		e.logger.Debug("slow frame", "frame", e.frames, "ms", sample.FrameMs)
	}
	return nil
}

func (e *Engine) drainDispatchQueue() []func() {
	e.dispatchMu.Lock()
	callbacks := e.dispatchQueue
	e.dispatchQueue = nil
	e.dispatchMu.Unlock()
	return callbacks
}

func panicToError(op string, r any) error {
	switch v := r.(type) {
	case *errors.UsageError:
		return v
	case *errors.PanicError:
		return v
	default:
		return &errors.PanicError{Op: op, Value: r, Timestamp: time.Now()}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
