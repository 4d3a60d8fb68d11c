package storage

import (
	"iter"
	"sync"
)

// ValidatingSpec is satisfied by every record kept in a collection.
type ValidatingSpec interface {
	Validate() error
}

// Storer is the read side of a keyed collection.
type Storer[T any] interface {
	Get(string) (T, bool)
	All() iter.Seq2[string, T]
	Len() int
}

// Rank orders writes into a collection. A write declared later has a higher
// rank: a later load, a later container in the same load, or a later source
// in the same container.
type Rank struct {
	Load      int
	Container int
	Source    int
}

// Less reports whether r was declared before o.
func (r Rank) Less(o Rank) bool {
	if r.Load != o.Load {
		return r.Load < o.Load
	}
	if r.Container != o.Container {
		return r.Container < o.Container
	}
	return r.Source < o.Source
}

type entry[T any] struct {
	val      T
	rank     Rank
	readOnly bool
}

// Collection is an ordered keyed set of records. Keys iterate in the order
// they were first stored; replacing a value keeps its position.
type Collection[T any] struct {
	keys    []string
	records map[string]entry[T]

	mu sync.RWMutex
}

func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{
		records: map[string]entry[T]{},
	}
}

// Put stores val under key unless an existing record takes precedence and
// reports whether the value was stored. A read-only record is never replaced
// by a write declared after it, and a read-only write replaces anything
// declared after it. Otherwise the write declared last wins, whatever order
// the writes arrive in.
func (c *Collection[T]) Put(key string, val T, rank Rank, readOnly bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur, ok := c.records[key]
	if !ok {
		c.keys = append(c.keys, key)
		c.records[key] = entry[T]{val: val, rank: rank, readOnly: readOnly}
		return true
	}

	if rank.Less(cur.rank) {
		if !readOnly {
			return false
		}
	} else if cur.readOnly {
		return false
	}

	c.records[key] = entry[T]{val: val, rank: rank, readOnly: readOnly}
	return true
}

// Get returns the record stored under key. A missing key returns the zero
// value and false.
func (c *Collection[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.records[key]
	if !ok {
		var zero T
		return zero, false
	}
	return e.val, true
}

// All returns a restartable sequence over the collection in registration
// order. Each iteration works on a snapshot taken when it starts, so the
// consumer may query or write the collection while iterating.
func (c *Collection[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		keys, vals := c.snapshot()
		for i, k := range keys {
			if !yield(k, vals[i]) {
				return
			}
		}
	}
}

// Values is All without the keys.
func (c *Collection[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range c.All() {
			if !yield(v) {
				return
			}
		}
	}
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.keys)
}

func (c *Collection[T]) snapshot() ([]string, []T) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	vals := make([]T, len(keys))
	for i, k := range keys {
		vals[i] = c.records[k].val
	}
	return keys, vals
}
