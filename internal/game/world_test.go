package game

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixil98/go-rotmg/internal/render"
	"github.com/pixil98/go-testutil"
)

func TestWorld_DeleteDuringPass(t *testing.T) {
	w := NewWorld()
	a, b, c := newMockObject(0), newMockObject(0), newMockObject(0)
	a.onUpdate = func() { c.Delete() }
	b.onUpdate = func() { a.Delete() }
	w.Spawn(a)
	w.Spawn(b)
	w.Spawn(c)

	w.Update(time.Millisecond)
	testutil.AssertEqual(t, "a updates", a.updates, 1)
	testutil.AssertEqual(t, "b updates", b.updates, 1)
	testutil.AssertEqual(t, "c updates", c.updates, 1)

	testutil.AssertEqual(t, "reaped", w.Reap(), 2)
	testutil.AssertEqual(t, "len", w.Len(), 1)

	w.Update(time.Millisecond)
	testutil.AssertEqual(t, "a updates after reap", a.updates, 1)
	testutil.AssertEqual(t, "b updates after reap", b.updates, 2)
	testutil.AssertEqual(t, "c updates after reap", c.updates, 1)
}

func TestWorld_DeletedSkippedBeforeReap(t *testing.T) {
	w := NewWorld()
	a := newMockObject(0)
	w.Spawn(a)

	a.Delete()
	w.Update(time.Millisecond)

	testutil.AssertEqual(t, "updates", a.updates, 0)
	testutil.AssertEqual(t, "len before reap", w.Len(), 1)
	_, found := w.Find(a.ID())
	testutil.AssertEqual(t, "found", found, false)
}

func TestWorld_SpawnDuringPass(t *testing.T) {
	w := NewWorld()
	child := newMockObject(0)
	parent := newMockObject(0)
	parent.onUpdate = func() {
		if parent.updates == 1 {
			w.Spawn(child)
		}
	}
	w.Spawn(parent)

	w.Update(time.Millisecond)
	testutil.AssertEqual(t, "child updates", child.updates, 0)
	testutil.AssertEqual(t, "len", w.Len(), 2)

	w.Update(time.Millisecond)
	testutil.AssertEqual(t, "child updates next pass", child.updates, 1)
}

func TestWorld_Enqueue(t *testing.T) {
	w := NewWorld()
	target := newMockObject(0)
	w.Spawn(target)

	var spawned *Particle
	w.Enqueue(func(w *World) {
		o, ok := w.Find(target.ID())
		if !ok {
			return
		}
		spawned = NewParticle(o, time.Second, red)
		w.Spawn(spawned)
	})
	testutil.AssertEqual(t, "len before update", w.Len(), 1)

	w.Update(10 * time.Millisecond)
	if spawned == nil {
		t.Fatalf("queued work did not run")
	}
	testutil.AssertEqual(t, "len", w.Len(), 2)
	testutil.AssertEqual(t, "particle updated", spawned.Time, 10*time.Millisecond)
}

func TestWorld_Tick(t *testing.T) {
	w := NewWorld()
	w.Spawn(NewParticle(Point{}, 10*time.Millisecond, red))
	w.Spawn(NewParticle(Point{}, time.Second, red))

	testutil.AssertEqual(t, "first tick", w.Tick(10*time.Millisecond), 0)
	testutil.AssertEqual(t, "second tick", w.Tick(10*time.Millisecond), 1)
	testutil.AssertEqual(t, "len", w.Len(), 1)
}

func TestWorld_Drawables(t *testing.T) {
	w := NewWorld()
	high, low, mid, gone := newMockObject(3), newMockObject(-1), newMockObject(1), newMockObject(0)
	for _, o := range []*mockObject{high, low, mid, gone} {
		w.Spawn(o)
	}
	gone.Delete()

	tests := map[string]struct {
		order Order
		exp   []*mockObject
	}{
		"spawn order": {
			order: SpawnOrder,
			exp:   []*mockObject{high, low, mid},
		},
		"elevation order": {
			order: ElevationOrder,
			exp:   []*mockObject{low, mid, high},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var got []render.Drawable
			for d := range w.Drawables(tt.order) {
				got = append(got, d)
			}
			testutil.AssertEqual(t, "count", len(got), len(tt.exp))
			for i, o := range tt.exp {
				testutil.AssertEqual(t, "id", got[i].ID(), o.ID())
			}
		})
	}
}

func TestBase_ModelView(t *testing.T) {
	b := NewBase(mgl32.Vec2{2, 3})
	b.Z = 1
	b.Scale = 2

	testutil.AssertEqual(t, "model view", b.ModelView(),
		mgl32.Translate3D(2, 3, 1).Mul4(mgl32.HomogRotate3DZ(0)).Mul4(mgl32.Scale3D(2, 2, 1)))
	testutil.AssertEqual(t, "origin", b.ModelView().Mul4x1(mgl32.Vec4{0, 0, 0, 1}), mgl32.Vec4{2, 3, 1, 1})
}

func TestVec(t *testing.T) {
	v := mgl32.Vec2{2, 3}

	testutil.AssertEqual(t, "scale", Scale(v, 2), mgl32.Vec2{4, 6})
	testutil.AssertEqual(t, "scale xy", ScaleXY(v, 2, 0.5), mgl32.Vec2{4, 1.5})
	testutil.AssertEqual(t, "components", MulComponents(v, mgl32.Vec2{-1, 2}), mgl32.Vec2{-2, 6})
}
