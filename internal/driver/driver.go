package driver

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixil98/go-rotmg/internal/game"
	"github.com/pixil98/go-rotmg/internal/render"
)

const (
	DefaultFrameInterval = time.Millisecond * 16
	// DefaultViewSize is the number of world units visible across the view.
	DefaultViewSize = 16
)

// FrameSink receives every recorded frame.
type FrameSink interface {
	SendFrame(ctx context.Context, f render.Frame) error
}

// FrameDriver steps the world and renders it at a fixed interval.
type FrameDriver struct {
	interval time.Duration
	order    game.Order
	view     mgl32.Mat4
	sinks    []FrameSink

	world    *game.World
	pipeline *render.Pipeline
	recorder *render.Recorder
	seq      uint64
}

// NewFrameDriver creates a driver for world. The recorder must be the
// device behind the pipeline's context.
func NewFrameDriver(world *game.World, pipeline *render.Pipeline, recorder *render.Recorder, opts ...FrameDriverOpt) *FrameDriver {
	half := float32(DefaultViewSize) / 2
	d := &FrameDriver{
		interval: DefaultFrameInterval,
		order:    game.ElevationOrder,
		view:     mgl32.Ortho2D(-half, half, -half, half),
		world:    world,
		pipeline: pipeline,
		recorder: recorder,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *FrameDriver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			d.Tick(ctx, now.Sub(last))
			last = now
		}
	}
}

// Tick advances the world by elapsed, reaps it, renders the live objects
// and hands the frame to every sink. Sink failures are logged and never
// stop the frame loop.
func (d *FrameDriver) Tick(ctx context.Context, elapsed time.Duration) render.Frame {
	reaped := d.world.Tick(elapsed)
	if reaped > 0 {
		slog.DebugContext(ctx, "reaped objects", "count", reaped)
	}

	d.pipeline.Context().SetView(d.view)
	stats := d.pipeline.Frame(ctx, d.world.Drawables(d.order))

	d.seq++
	f := render.Frame{
		Seq:      d.seq,
		View:     d.view,
		Commands: d.recorder.Flush(),
		Stats:    stats,
	}

	for _, s := range d.sinks {
		if err := s.SendFrame(ctx, f); err != nil {
			slog.WarnContext(ctx, "sending frame", "seq", f.Seq, "error", err)
		}
	}

	return f
}
