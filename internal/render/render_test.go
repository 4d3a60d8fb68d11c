package render

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixil98/go-rotmg/internal/rotmg"
	"github.com/pixil98/go-testutil"
)

type mapRegistry map[string]map[string]any

func (r mapRegistry) Get(category, key string) (any, bool) {
	v, ok := r[category][key]
	return v, ok
}

type countingDevice struct {
	*Recorder
	buffers  int
	compiles int
}

func (d *countingDevice) NewBuffer() (BufferID, error) {
	d.buffers++
	return d.Recorder.NewBuffer()
}

func (d *countingDevice) CompileProgram(name, vertex, fragment string) (ProgramID, error) {
	d.compiles++
	return d.Recorder.CompileProgram(name, vertex, fragment)
}

func newCountingDevice() *countingDevice {
	return &countingDevice{Recorder: NewRecorder()}
}

func testRegistry() mapRegistry {
	return mapRegistry{
		ProgramCategory: {
			"billboard/color": &rotmg.ProgramSource{Name: "billboard/color", Vertex: "v", Fragment: "f"},
			"broken":          &rotmg.ProgramSource{Name: "broken", Vertex: "v"},
		},
		SpriteCategory: {
			"lofiObj5:48": &rotmg.Sprite{Sheet: "lofiObj5", Index: 48, AtlasID: 2, Position: rotmg.Rect{X: 10, Y: 20, W: 8, H: 8}},
			"players:0:0:0:0:0": &rotmg.AnimatedSprite{
				Sprite: rotmg.Sprite{Sheet: "players", AtlasID: 1, Position: rotmg.Rect{X: 8, W: 8, H: 8}},
			},
		},
	}
}

func TestRect(t *testing.T) {
	r := Rect{}.Expand(0.5, 0.25)

	testutil.AssertEqual(t, "rect", r, Rect{X: -0.5, Y: -0.25, W: 1, H: 0.5})
	testutil.AssertEqual(t, "verts", fmt.Sprint(r.Verts()), "[-0.5 -0.25 0.5 -0.25 -0.5 0.25 0.5 0.25]")

	uv := Rect{W: 1, H: 1}
	testutil.AssertEqual(t, "textured", fmt.Sprint(r.TexturedVerts(uv)),
		"[-0.5 -0.25 0 0 0.5 -0.25 1 0 -0.5 0.25 0 1 0.5 0.25 1 1]")
}

func TestBufferPool_Acquire(t *testing.T) {
	d := newCountingDevice()
	pool := NewBufferPool(d)

	buf, err := pool.Acquire()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = pool.Acquire()
	testutil.AssertEqual(t, "second acquire", errors.Is(err, ErrBufferInUse), true)

	buf.Finish()
	buf.Finish()
	testutil.AssertEqual(t, "in use", pool.InUse(), false)

	if _, err := pool.Acquire(); err != nil {
		t.Fatalf("unexpected error after finish: %v", err)
	}
	testutil.AssertEqual(t, "buffers created", d.buffers, 1)

	pool.Release()
	if _, err := pool.Acquire(); err != nil {
		t.Fatalf("unexpected error after release: %v", err)
	}
	testutil.AssertEqual(t, "buffers created after release", d.buffers, 2)
}

func TestBuffer_Upload(t *testing.T) {
	tests := map[string]struct {
		data     []float32
		stride   int
		finished bool
		expCount int
		expErr   string
	}{
		"quad": {
			data:     Rect{W: 1, H: 1}.Verts(),
			stride:   PositionStride,
			expCount: 4,
		},
		"textured quad": {
			data:     Rect{W: 1, H: 1}.TexturedVerts(Rect{W: 1, H: 1}),
			stride:   TexturedStride,
			expCount: 4,
		},
		"ragged": {
			data:   []float32{1, 2, 3},
			stride: PositionStride,
			expErr: "do not divide",
		},
		"finished": {
			data:     Rect{}.Verts(),
			stride:   PositionStride,
			finished: true,
			expErr:   "finished buffer",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			pool := NewBufferPool(NewRecorder())
			buf, err := pool.Acquire()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.finished {
				buf.Finish()
			}

			err = buf.Upload(tt.data, tt.stride)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "count", buf.Count(), tt.expCount)
		})
	}
}

func TestContext_Program(t *testing.T) {
	d := newCountingDevice()
	reg := testRegistry()
	rc := NewContext(d, reg)

	first, err := rc.Program("billboard/color")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := rc.Program("billboard/color")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "same program", first, second)
	testutil.AssertEqual(t, "compiles", d.compiles, 1)

	reg[ProgramCategory]["billboard/color"] = &rotmg.ProgramSource{Name: "billboard/color", Vertex: "v2", Fragment: "f2"}
	third, err := rc.Program("billboard/color")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "recompiled", third != first, true)
	testutil.AssertEqual(t, "compiles after reload", d.compiles, 2)
}

func TestContext_ResolveErrors(t *testing.T) {
	tests := map[string]struct {
		resolve func(*Context) error
		expKey  string
		expErr  string
	}{
		"missing program": {
			resolve: func(rc *Context) error { _, err := rc.Program("nope"); return err },
			expKey:  "nope",
			expErr:  "not found",
		},
		"program fails to compile": {
			resolve: func(rc *Context) error { _, err := rc.Program("broken"); return err },
			expKey:  "broken",
			expErr:  "missing a shader stage",
		},
		"missing texture": {
			resolve: func(rc *Context) error { _, err := rc.Texture("lofiObj5:99"); return err },
			expKey:  "lofiObj5:99",
			expErr:  "not found",
		},
		"program key used as texture": {
			resolve: func(rc *Context) error { _, err := rc.Texture("billboard/color"); return err },
			expKey:  "billboard/color",
			expErr:  "not found",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.resolve(NewContext(NewRecorder(), testRegistry()))

			var re *ResolveError
			if !errors.As(err, &re) {
				t.Fatalf("expected ResolveError, got %v", err)
			}
			testutil.AssertEqual(t, "key", re.Key, tt.expKey)
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestContext_Texture(t *testing.T) {
	rc := NewContext(NewRecorder(), testRegistry())

	tex, err := rc.Texture("lofiObj5:48")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "texture", *tex, Texture{AtlasID: 2, Region: Rect{X: 10, Y: 20, W: 8, H: 8}})

	tex, err = rc.Texture("players:0:0:0:0:0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "animated", *tex, Texture{AtlasID: 1, Region: Rect{X: 8, W: 8, H: 8}})
}

type mockDrawable struct {
	id        string
	err       error
	leak      bool
	// failAfter makes Render report an error once its quad was drawn.
	failAfter error
	rendered  int
}

func (m *mockDrawable) ID() string { return m.id }

func (m *mockDrawable) Render(rc *Context) error {
	m.rendered++
	if m.err != nil {
		return m.err
	}

	prog, err := rc.Program("billboard/color")
	if err != nil {
		return err
	}
	buf, err := rc.Buffers().Acquire()
	if err != nil {
		return err
	}
	if err := buf.Upload(Rect{}.Expand(0.1, 0.1).Verts(), PositionStride); err != nil {
		return err
	}
	if err := rc.Draw(buf, DrawCall{Program: prog, ModelView: mgl32.Translate3D(1, 2, 0)}); err != nil {
		return err
	}
	if !m.leak {
		buf.Finish()
	}
	return m.failAfter
}

func TestPipeline_Frame(t *testing.T) {
	rec := NewRecorder()
	p := NewPipeline(NewContext(rec, testRegistry()))

	objs := []*mockDrawable{
		{id: "a"},
		{id: "b", err: &ResolveError{Category: ProgramCategory, Key: "x"}},
		{id: "c", leak: true},
		{id: "d"},
	}

	stats := p.Frame(context.Background(), func(yield func(Drawable) bool) {
		for _, o := range objs {
			if !yield(o) {
				return
			}
		}
	})

	testutil.AssertEqual(t, "stats", stats, FrameStats{Drawn: 3, Skipped: 1, Leaked: 1})
	for _, o := range objs {
		testutil.AssertEqual(t, o.id+" rendered", o.rendered, 1)
	}
	testutil.AssertEqual(t, "buffer released", p.Context().Buffers().InUse(), false)

	cmds := rec.Flush()
	testutil.AssertEqual(t, "commands", len(cmds), 3)
	testutil.AssertEqual(t, "program", cmds[0].Program, "billboard/color")
	testutil.AssertEqual(t, "primitive", cmds[0].Primitive, "triangle-strip")
	testutil.AssertEqual(t, "vertices", slices.Equal(cmds[0].Vertices, Rect{}.Expand(0.1, 0.1).Verts()), true)
	testutil.AssertEqual(t, "model view", cmds[0].ModelView, mgl32.Translate3D(1, 2, 0))
	testutil.AssertEqual(t, "flushed", len(rec.Flush()), 0)
}

func TestPipeline_Frame_DropsFailedDraws(t *testing.T) {
	rec := NewRecorder()
	p := NewPipeline(NewContext(rec, testRegistry()))

	objs := []*mockDrawable{
		{id: "a"},
		{id: "b", failAfter: errors.New("device lost")},
		{id: "c"},
	}

	stats := p.Frame(context.Background(), func(yield func(Drawable) bool) {
		for _, o := range objs {
			if !yield(o) {
				return
			}
		}
	})

	testutil.AssertEqual(t, "stats", stats, FrameStats{Drawn: 2, Skipped: 1})
	testutil.AssertEqual(t, "commands", len(rec.Flush()), 2)
}

func TestRecorder_Rewind(t *testing.T) {
	rec := NewRecorder()
	buf, _ := rec.NewBuffer()
	prog, _ := rec.CompileProgram("p", "v", "f")
	_ = rec.Upload(buf, Rect{}.Verts())

	_ = rec.Draw(DrawCall{Program: prog, Buffer: buf})
	mark := rec.Mark()
	_ = rec.Draw(DrawCall{Program: prog, Buffer: buf})
	_ = rec.Draw(DrawCall{Program: prog, Buffer: buf})
	rec.Rewind(mark)
	rec.Rewind(10)

	testutil.AssertEqual(t, "commands", len(rec.Flush()), 1)
}
