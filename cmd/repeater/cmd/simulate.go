package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-drift/repeater/pkg/engine"
	"github.com/go-drift/repeater/pkg/graphics"
)

type simulateOptions struct {
	items     int
	layout    string
	alignment string
	width     float64
	height    float64
	step      float64
	frames    int
	jump      int
	trace     string
}

func newSimulateCmd() *cobra.Command {
	opts := simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Scroll a generated collection headlessly and report frame statistics",
		Long: `Scroll a generated collection through a repeater, one scroll step per frame,
then keep stepping frames until the deferred content work has drained.

Examples:
  repeater simulate --items 100000 --frames 240
  repeater simulate --layout flow --align center --step 120
  repeater simulate --jump 50000 --trace frames.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.items, "items", "n", 10000, "number of generated items")
	cmd.Flags().StringVarP(&opts.layout, "layout", "l", layoutStack, "layout: stack or flow")
	cmd.Flags().StringVar(&opts.alignment, "align", "", "flow line alignment (start, center, end, space-around, space-between, space-evenly)")
	cmd.Flags().Float64Var(&opts.width, "width", 320, "viewport width")
	cmd.Flags().Float64Var(&opts.height, "height", 240, "viewport height")
	cmd.Flags().Float64Var(&opts.step, "step", 48, "scroll distance per frame")
	cmd.Flags().IntVarP(&opts.frames, "frames", "f", 120, "number of scrolling frames")
	cmd.Flags().IntVar(&opts.jump, "jump", -1, "bring this item into view on the second frame")
	cmd.Flags().StringVar(&opts.trace, "trace", "", "write the frame trace as JSON to this file")

	return cmd
}

func runSimulate(cmd *cobra.Command, opts simulateOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	if opts.frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", opts.frames)
	}
	if opts.width <= 0 || opts.height <= 0 {
		return fmt.Errorf("viewport must have a positive size, got %vx%v", opts.width, opts.height)
	}
	if opts.items < 0 {
		return fmt.Errorf("item count must not be negative, got %d", opts.items)
	}
	if opts.jump >= opts.items {
		return fmt.Errorf("jump target %d out of range for %d items", opts.jump, opts.items)
	}

	s, err := newSession(cfg, logger, sessionOptions{
		count:     opts.items,
		layout:    opts.layout,
		alignment: opts.alignment,
		size:      graphics.Size{Width: opts.width, Height: opts.height},
	})
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	for frame := range opts.frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch {
		case frame == 1 && opts.jump >= 0:
			s.engine.Dispatch(func() { s.repeater.GetOrCreateElement(opts.jump) })
		case frame > 0:
			s.engine.Dispatch(func() { s.scroll.ScrollBy(opts.step) })
		}
		if err := s.engine.StepFrame(); err != nil {
			return err
		}
	}
	settled, err := s.settle(10 * opts.frames)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Simulated %d frames", s.engine.Frames()))
	logger.Debug("deferred work drained", "frames", settled, "pending", s.repeater.Scheduler().Pending())

	timeline := s.engine.Trace()
	renderSummary(cmd.OutOrStdout(), "Simulation", simulationFields(s, timeline))

	if opts.trace != "" {
		if err := writeTrace(opts.trace, timeline); err != nil {
			return err
		}
		logger.Info("Wrote frame trace", "path", opts.trace, "samples", len(timeline.Samples))
	}
	return nil
}

func simulationFields(s *session, timeline engine.FrameTimeline) []field {
	var total float64
	for _, sample := range timeline.Samples {
		total += sample.FrameMs
	}
	average := 0.0
	if len(timeline.Samples) > 0 {
		average = total / float64(len(timeline.Samples))
	}
	content := s.scroll.ContentSize()
	return []field{
		{label: "layout", value: s.layout},
		{label: "items", value: fmt.Sprint(s.list.Len())},
		{label: "frames", value: fmt.Sprint(s.engine.Frames())},
		{label: "offset", value: fmt.Sprintf("%.0f / %.0f", s.scroll.Offset(), s.scroll.MaxOffset())},
		{label: "extent", value: fmt.Sprintf("%.0fx%.0f", content.Width, content.Height)},
		{label: "realized", value: fmt.Sprint(s.realized())},
		{label: "built", value: fmt.Sprint(s.stats.built)},
		{label: "prepared", value: fmt.Sprint(s.stats.prepared)},
		{label: "recycled", value: fmt.Sprint(s.stats.cleared)},
		{label: "phase callbacks", value: fmt.Sprint(s.stats.phases)},
		{label: "pending work", value: fmt.Sprint(s.repeater.Scheduler().Pending()), warn: s.repeater.Scheduler().Pending() > 0},
		{label: "avg frame", value: fmt.Sprintf("%.3fms", average)},
		{label: "dropped frames", value: fmt.Sprint(timeline.DroppedFrames), warn: timeline.DroppedFrames > 0},
	}
}

func writeTrace(path string, timeline engine.FrameTimeline) error {
	data, err := json.MarshalIndent(timeline, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode trace: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
