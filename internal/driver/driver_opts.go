package driver

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixil98/go-rotmg/internal/game"
)

type FrameDriverOpt func(*FrameDriver)

func WithFrameInterval(interval time.Duration) FrameDriverOpt {
	return func(d *FrameDriver) {
		d.interval = interval
	}
}

func WithOrder(order game.Order) FrameDriverOpt {
	return func(d *FrameDriver) {
		d.order = order
	}
}

func WithView(view mgl32.Mat4) FrameDriverOpt {
	return func(d *FrameDriver) {
		d.view = view
	}
}

func WithSink(s FrameSink) FrameDriverOpt {
	return func(d *FrameDriver) {
		d.sinks = append(d.sinks, s)
	}
}
