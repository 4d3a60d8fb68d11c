package render

import (
	"context"
	"iter"
	"log/slog"
)

// Drawable is anything the pipeline can render.
type Drawable interface {
	ID() string
	Render(*Context) error
}

// FrameStats summarizes one frame.
type FrameStats struct {
	Drawn   int `json:"drawn"`
	Skipped int `json:"skipped"`
	// Leaked counts renders that returned without finishing the shared buffer.
	Leaked int `json:"leaked"`
}

// Pipeline renders the live objects of a frame.
type Pipeline struct {
	rc *Context
}

func NewPipeline(rc *Context) *Pipeline {
	return &Pipeline{rc: rc}
}

// Context returns the render context handed to every object.
func (p *Pipeline) Context() *Context { return p.rc }

// Frame calls Render on every object in order. An object that fails to
// render is skipped and the frame goes on. On a Rewinder device the draws a
// failed object already issued are dropped; other devices may show it
// partially drawn.
func (p *Pipeline) Frame(ctx context.Context, objs iter.Seq[Drawable]) FrameStats {
	var stats FrameStats
	rw, _ := p.rc.device.(Rewinder)

	for o := range objs {
		var mark int
		if rw != nil {
			mark = rw.Mark()
		}

		err := o.Render(p.rc)

		if p.rc.buffers.InUse() {
			p.rc.buffers.held.Finish()
			stats.Leaked++
			slog.WarnContext(ctx, "object left shared buffer bound", "object", o.ID())
		}

		if err != nil {
			if rw != nil {
				rw.Rewind(mark)
			}
			stats.Skipped++
			slog.DebugContext(ctx, "skipping object", "object", o.ID(), "error", err)
			continue
		}
		stats.Drawn++
	}

	return stats
}
