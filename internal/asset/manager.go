package asset

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-rotmg/internal/source"
	"github.com/pixil98/go-rotmg/internal/storage"
	"golang.org/x/sync/errgroup"
)

// Settled describes one container that finished loading.
type Settled struct {
	Config    string        `json:"config"`
	Index     int           `json:"index"`
	Type      string        `json:"type"`
	Loader    string        `json:"loader"`
	Parsed    int           `json:"parsed"`
	Stored    int           `json:"stored"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
	ErrString string        `json:"error,omitempty"`
}

// Notifier is told about every container as soon as it settles.
type Notifier interface {
	Settled(context.Context, Settled)
}

// Manager is the asset registry. Categories are only written while a load
// is in flight; containers that already settled can be queried at any time.
//
// Overlapping Load calls on one manager are not supported.
type Manager struct {
	loaders    map[string]FormatLoader
	sources    *source.Registry
	categories map[string]*storage.Collection[any]
	notifier   Notifier
	loads      int

	mu sync.RWMutex
}

type ManagerOpt func(*Manager)

// WithNotifier reports settled containers to n.
func WithNotifier(n Notifier) ManagerOpt {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithSources uses an existing source loader registry.
func WithSources(r *source.Registry) ManagerOpt {
	return func(m *Manager) {
		m.sources = r
	}
}

func NewManager(opts ...ManagerOpt) *Manager {
	m := &Manager{
		loaders:    map[string]FormatLoader{},
		sources:    source.NewRegistry(),
		categories: map[string]*storage.Collection[any]{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// RegisterLoader adds a format loader under name.
func (m *Manager) RegisterLoader(name string, l FormatLoader) error {
	if l == nil {
		return fmt.Errorf("loader %q is nil", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.loaders[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateLoader, name)
	}
	m.loaders[name] = l
	return nil
}

// RegisterSource adds a source loader under name.
func (m *Manager) RegisterSource(name string, l source.Loader) error {
	return m.sources.Register(name, l)
}

type job struct {
	index     int
	container Container
	loader    FormatLoader
	fetcher   source.Loader
	readOnly  bool
}

// Load runs every container of cfg concurrently and returns once all of them
// have settled. A failing container does not affect the others; its error is
// in the report. The returned error is only set for configuration problems,
// in which case nothing was loaded.
func (m *Manager) Load(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigurationError{Config: cfg.Name, Err: err}
	}

	expanded, err := cfg.expand()
	if err != nil {
		return nil, &ConfigurationError{Config: cfg.Name, Err: err}
	}

	jobs, err := m.plan(expanded)
	if err != nil {
		return nil, &ConfigurationError{Config: cfg.Name, Err: err}
	}

	m.mu.Lock()
	m.loads++
	seq := m.loads
	m.mu.Unlock()

	report := &Report{
		Config:     cfg.Name,
		Containers: make([]Settled, len(jobs)),
	}

	var g errgroup.Group
	for _, j := range jobs {
		g.Go(func() error {
			report.Containers[j.index] = m.run(ctx, cfg.Name, seq, j)
			return nil
		})
	}
	_ = g.Wait()

	return report, nil
}

func (m *Manager) plan(cfg Config) ([]job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	el := errors.NewErrorList()
	jobs := make([]job, 0, len(cfg.Containers))
	for i, c := range cfg.Containers {
		l, ok := m.loaders[c.Loader]
		if !ok {
			el.Add(fmt.Errorf("container %d: unknown loader %q", i, c.Loader))
		}
		f, ok := m.sources.Get(c.SourceLoader)
		if !ok {
			el.Add(fmt.Errorf("container %d: unknown source loader %q", i, c.SourceLoader))
		}
		ro, _ := c.Settings.ReadOnly()

		jobs = append(jobs, job{index: i, container: c, loader: l, fetcher: f, readOnly: ro})
	}

	return jobs, el.Err()
}

func (m *Manager) run(ctx context.Context, cfgName string, seq int, j job) Settled {
	start := time.Now()

	records, err := j.loader.Load(ctx, Request{
		Category: j.container.Type,
		Fetcher:  j.fetcher,
		Sources:  j.container.Sources,
		Settings: j.container.Settings,
	})

	stored := 0
	for _, r := range records {
		category := r.Category
		if category == "" {
			category = j.container.Type
		}
		rank := storage.Rank{Load: seq, Container: j.index, Source: r.Source}
		if m.collection(category).Put(r.Key, r.Value, rank, j.readOnly) {
			stored++
		}
	}

	s := Settled{
		Config:   cfgName,
		Index:    j.index,
		Type:     j.container.Type,
		Loader:   j.container.Loader,
		Parsed:   len(records),
		Stored:   stored,
		Duration: time.Since(start),
		Err:      err,
	}

	if err != nil {
		s.ErrString = err.Error()
		slog.WarnContext(ctx, "container settled with errors",
			"config", cfgName, "container", j.index, "type", j.container.Type,
			"records", stored, "error", err)
	} else {
		slog.InfoContext(ctx, "container loaded",
			"config", cfgName, "container", j.index, "type", j.container.Type,
			"records", stored, "duration", s.Duration)
	}

	if m.notifier != nil {
		m.notifier.Settled(ctx, s)
	}

	return s
}

func (m *Manager) collection(category string) *storage.Collection[any] {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.categories[category]
	if !ok {
		c = storage.NewCollection[any]()
		m.categories[category] = c
	}
	return c
}

func (m *Manager) lookup(category string) (*storage.Collection[any], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.categories[category]
	return c, ok
}

// Get returns the record stored under key in category. Missing categories
// and keys are not errors.
func (m *Manager) Get(category, key string) (any, bool) {
	c, ok := m.lookup(category)
	if !ok {
		return nil, false
	}
	return c.Get(key)
}

// GetAll returns a restartable sequence over every record of category in
// registration order.
func (m *Manager) GetAll(category string) iter.Seq[any] {
	return func(yield func(any) bool) {
		c, ok := m.lookup(category)
		if !ok {
			return
		}
		for v := range c.Values() {
			if !yield(v) {
				return
			}
		}
	}
}

// Entries returns a restartable sequence of key/record pairs of category in
// registration order.
func (m *Manager) Entries(category string) iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		c, ok := m.lookup(category)
		if !ok {
			return
		}
		for k, v := range c.All() {
			if !yield(k, v) {
				return
			}
		}
	}
}

// Len returns the number of records in category.
func (m *Manager) Len(category string) int {
	c, ok := m.lookup(category)
	if !ok {
		return 0
	}
	return c.Len()
}

// Categories returns the known category names, sorted.
func (m *Manager) Categories() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.categories))
	for name := range m.categories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get returns the record under key in category if it has type T.
func Get[T any](m *Manager, category, key string) (T, bool) {
	v, ok := m.Get(category, key)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// All returns the records of category that have type T.
func All[T any](m *Manager, category string) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range m.GetAll(category) {
			t, ok := v.(T)
			if !ok {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Report is the outcome of one Load call.
type Report struct {
	Config     string
	Containers []Settled
}

// Err aggregates the errors of every failed container.
func (r *Report) Err() error {
	el := errors.NewErrorList()
	for _, c := range r.Containers {
		if c.Err != nil {
			el.Add(fmt.Errorf("container %d (%s): %w", c.Index, c.Type, c.Err))
		}
	}
	return el.Err()
}

// Stored returns the number of records written by the load.
func (r *Report) Stored() int {
	n := 0
	for _, c := range r.Containers {
		n += c.Stored
	}
	return n
}
