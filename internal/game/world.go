package game

import (
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/pixil98/go-rotmg/internal/render"
)

// Order selects how Drawables walks the world.
type Order int

const (
	// SpawnOrder walks objects in the order they were spawned.
	SpawnOrder Order = iota
	// ElevationOrder walks objects from lowest to highest elevation.
	ElevationOrder
)

// World is the live object arena. Deleting an object only flags it; Reap
// removes flagged objects outside of any pass. Objects spawned during an
// update pass join the arena when the pass ends.
//
// Update, Reap, Tick and the object accessors belong to the goroutine
// driving the world. Other goroutines may only Spawn, Enqueue and Len.
type World struct {
	mu      sync.RWMutex
	objects []Object
	pending []Object
	queue   []func(*World)
	passing bool
}

func NewWorld() *World {
	return &World{}
}

func (w *World) Spawn(o Object) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.passing {
		w.pending = append(w.pending, o)
		return
	}
	w.objects = append(w.objects, o)
}

// Enqueue runs fn on the driving goroutine at the start of the next Update.
func (w *World) Enqueue(fn func(*World)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.queue = append(w.queue, fn)
}

// Update runs queued work, then advances every object that was alive when
// the pass began exactly once, even if a sibling deletes it during the pass.
func (w *World) Update(elapsed time.Duration) {
	w.mu.Lock()
	queued := w.queue
	w.queue = nil
	w.mu.Unlock()

	for _, fn := range queued {
		fn(w)
	}

	w.mu.Lock()
	pass := make([]Object, 0, len(w.objects))
	for _, o := range w.objects {
		if !o.Deleted() {
			pass = append(pass, o)
		}
	}
	w.passing = true
	w.mu.Unlock()

	for _, o := range pass {
		o.Update(elapsed)
	}

	w.mu.Lock()
	w.passing = false
	w.objects = append(w.objects, w.pending...)
	w.pending = nil
	w.mu.Unlock()
}

// Reap removes deleted objects and returns how many were removed.
func (w *World) Reap() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(w.objects)
	w.objects = slices.DeleteFunc(w.objects, func(o Object) bool {
		return o.Deleted()
	})
	return n - len(w.objects)
}

// Tick updates the world, then reaps it.
func (w *World) Tick(elapsed time.Duration) int {
	w.Update(elapsed)
	return w.Reap()
}

// Len returns the number of objects in the arena, deleted or not.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return len(w.objects)
}

// Find returns the live object with id.
func (w *World) Find(id string) (Object, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, o := range w.objects {
		if o.ID() == id && !o.Deleted() {
			return o, true
		}
	}
	return nil, false
}

// Objects returns the live objects in spawn order.
func (w *World) Objects() iter.Seq[Object] {
	return func(yield func(Object) bool) {
		for _, o := range w.live() {
			if !yield(o) {
				return
			}
		}
	}
}

// Drawables returns the live objects in the given order for the render
// pipeline. Elevation ties keep spawn order.
func (w *World) Drawables(order Order) iter.Seq[render.Drawable] {
	return func(yield func(render.Drawable) bool) {
		objs := w.live()
		if order == ElevationOrder {
			slices.SortStableFunc(objs, func(a, b Object) int {
				switch {
				case a.Elevation() < b.Elevation():
					return -1
				case a.Elevation() > b.Elevation():
					return 1
				default:
					return 0
				}
			})
		}

		for _, o := range objs {
			if !yield(o) {
				return
			}
		}
	}
}

func (w *World) live() []Object {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Object, 0, len(w.objects))
	for _, o := range w.objects {
		if !o.Deleted() {
			out = append(out, o)
		}
	}
	return out
}
