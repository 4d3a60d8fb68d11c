package asset

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pixil98/go-rotmg/internal/source"
	"github.com/pixil98/go-testutil"
)

type loaderFunc func(ctx context.Context, req Request) ([]Record, error)

func (f loaderFunc) Load(ctx context.Context, req Request) ([]Record, error) {
	return f(ctx, req)
}

type mockEquipment struct {
	Name string
	Tier int
}

// kvLoader parses "key=name" lines from every source.
var kvLoader = loaderFunc(func(ctx context.Context, req Request) ([]Record, error) {
	return FetchAll(ctx, req, func(_ int, _ string, data []byte) ([]Record, error) {
		var recs []Record
		for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
			k, v, ok := strings.Cut(line, "=")
			if !ok {
				return recs, fmt.Errorf("malformed line %q", line)
			}
			recs = append(recs, Record{Category: req.Category, Key: k, Value: &mockEquipment{Name: v}})
		}
		return recs, nil
	})
})

func mapSource(payloads map[string]string) source.Loader {
	return source.LoaderFunc(func(_ context.Context, src string) ([]byte, error) {
		p, ok := payloads[src]
		if !ok {
			return nil, &source.FetchError{Source: src, Err: fmt.Errorf("not found")}
		}
		return []byte(p), nil
	})
}

func newTestManager(t *testing.T, payloads map[string]string) *Manager {
	t.Helper()

	m := NewManager()
	if err := m.RegisterLoader("kv", kvLoader); err != nil {
		t.Fatalf("registering loader: %v", err)
	}
	if err := m.RegisterSource("map", mapSource(payloads)); err != nil {
		t.Fatalf("registering source: %v", err)
	}
	return m
}

func TestManager_RegisterLoader_Duplicate(t *testing.T) {
	m := NewManager()
	if err := m.RegisterLoader("rotmg-loader", kvLoader); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := m.RegisterLoader("rotmg-loader", kvLoader)
	if !errors.Is(err, ErrDuplicateLoader) {
		t.Errorf("expected ErrDuplicateLoader, got %v", err)
	}
}

func TestManager_Load_ConfigurationErrors(t *testing.T) {
	tests := map[string]struct {
		cfg    Config
		expErr string
	}{
		"unknown loader": {
			cfg: Config{Name: "base", Containers: []Container{
				{Type: "rotmg", Loader: "nope", SourceLoader: "map", Sources: []string{"a"}},
			}},
			expErr: `unknown loader "nope"`,
		},
		"unknown source loader": {
			cfg: Config{Name: "base", Containers: []Container{
				{Type: "rotmg", Loader: "kv", SourceLoader: "ftp", Sources: []string{"a"}},
			}},
			expErr: `unknown source loader "ftp"`,
		},
		"missing name": {
			cfg:    Config{},
			expErr: "name is required",
		},
		"missing type": {
			cfg: Config{Name: "base", Containers: []Container{
				{Loader: "kv", SourceLoader: "map"},
			}},
			expErr: "type is required",
		},
		"bad template": {
			cfg: Config{Name: "base", Containers: []Container{
				{Type: "rotmg", Loader: "kv", SourceLoader: "map", Sources: []string{"{{ .missing }}/x"}},
			}},
			expErr: "container 0 source 0",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m := newTestManager(t, map[string]string{"a": "dagger=Dagger"})

			report, err := m.Load(context.Background(), tt.cfg)
			testutil.AssertErrorContains(t, err, tt.expErr)

			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Errorf("expected ConfigurationError, got %T", err)
			}
			if report != nil {
				t.Errorf("expected no report")
			}
			testutil.AssertEqual(t, "categories", len(m.Categories()), 0)
		})
	}
}

func TestManager_Load_IsolatesFailures(t *testing.T) {
	m := newTestManager(t, map[string]string{
		"equip.xml":   "dagger=Dagger\nbow=Bow",
		"broken.xml":  "not a record",
		"sprites.txt": "lofiObj5:48=sprite",
	})

	report, err := m.Load(context.Background(), Config{
		Name: "rotmg/base",
		Containers: []Container{
			{Type: "rotmg", Loader: "kv", SourceLoader: "map", Sources: []string{"equip.xml", "missing.xml", "broken.xml"}},
			{Type: "sprites", Loader: "kv", SourceLoader: "map", Sources: []string{"sprites.txt"}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "containers", len(report.Containers), 2)
	testutil.AssertEqual(t, "stored", report.Stored(), 3)
	if report.Containers[0].Err == nil {
		t.Fatalf("expected first container to report errors")
	}
	if report.Containers[1].Err != nil {
		t.Errorf("unexpected error on second container: %v", report.Containers[1].Err)
	}
	testutil.AssertErrorContains(t, report.Err(), "missing.xml")
	testutil.AssertErrorContains(t, report.Err(), "malformed line")

	eq, ok := Get[*mockEquipment](m, "rotmg", "bow")
	testutil.AssertEqual(t, "bow found", ok, true)
	testutil.AssertEqual(t, "bow name", eq.Name, "Bow")

	_, ok = m.Get("sprites", "lofiObj5:48")
	testutil.AssertEqual(t, "sprite found", ok, true)
}

func TestManager_Load_WaitsForEveryContainer(t *testing.T) {
	release := make(chan struct{})
	var slowDone atomic.Bool

	m := newTestManager(t, map[string]string{"equip.xml": "dagger=Dagger"})
	slow := loaderFunc(func(ctx context.Context, req Request) ([]Record, error) {
		<-release
		slowDone.Store(true)
		return []Record{{Category: req.Category, Key: "players", Value: &mockEquipment{Name: "Wizard"}}}, nil
	})
	if err := m.RegisterLoader("slow", slow); err != nil {
		t.Fatalf("registering loader: %v", err)
	}

	type result struct {
		report *Report
		err    error
	}
	done := make(chan result, 1)
	go func() {
		r, err := m.Load(context.Background(), Config{
			Name: "base",
			Containers: []Container{
				{Type: "rotmg", Loader: "kv", SourceLoader: "map", Sources: []string{"equip.xml"}},
				{Type: "classes", Loader: "slow", SourceLoader: "map"},
			},
		})
		done <- result{r, err}
	}()

	// The fast container becomes visible while the slow one is in flight.
	deadline := time.After(2 * time.Second)
	for {
		if _, ok := m.Get("rotmg", "dagger"); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("fast container never became visible")
		case <-time.After(time.Millisecond):
		}
	}

	select {
	case <-done:
		t.Fatal("load resolved before every container settled")
	default:
	}

	close(release)
	res := <-done
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	testutil.AssertEqual(t, "slow settled", slowDone.Load(), true)
	testutil.AssertEqual(t, "stored", res.report.Stored(), 2)
}

func TestManager_Load_ReadOnly(t *testing.T) {
	tests := map[string]struct {
		readOnly bool
		expName  string
	}{
		"read only keeps first write": {readOnly: true, expName: "Dagger"},
		"writable takes last write":   {readOnly: false, expName: "Dagger of Foul Malevolence"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m := newTestManager(t, map[string]string{
				"base.xml":     "dagger=Dagger",
				"override.xml": "dagger=Dagger of Foul Malevolence",
			})

			settings := Settings{}
			if err := settings.Set("readOnly", tt.readOnly); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			_, err := m.Load(context.Background(), Config{Name: "base", Containers: []Container{
				{Type: "rotmg", Loader: "kv", SourceLoader: "map", Settings: settings, Sources: []string{"base.xml"}},
			}})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			before, _ := Get[*mockEquipment](m, "rotmg", "dagger")

			_, err = m.Load(context.Background(), Config{Name: "layer", Containers: []Container{
				{Type: "rotmg", Loader: "kv", SourceLoader: "map", Sources: []string{"override.xml"}},
			}})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			after, _ := Get[*mockEquipment](m, "rotmg", "dagger")
			testutil.AssertEqual(t, "name", after.Name, tt.expName)
			testutil.AssertEqual(t, "original untouched", before.Name, "Dagger")
			testutil.AssertEqual(t, "len", m.Len("rotmg"), 1)
		})
	}
}

func TestManager_Get_Missing(t *testing.T) {
	m := newTestManager(t, map[string]string{"equip.xml": "dagger=Dagger"})

	_, err := m.Load(context.Background(), Config{Name: "base", Containers: []Container{
		{Type: "rotmg", Loader: "kv", SourceLoader: "map", Sources: []string{"equip.xml"}},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, ok := m.Get("rotmg", "Helm of the Juggernaut")
	testutil.AssertEqual(t, "found", ok, false)
	if v != nil {
		t.Errorf("expected nil, got %v", v)
	}

	_, ok = m.Get("unknown-category", "dagger")
	testutil.AssertEqual(t, "unknown category found", ok, false)

	_, ok = Get[string](m, "rotmg", "dagger")
	testutil.AssertEqual(t, "wrong type found", ok, false)

	count := 0
	for range m.GetAll("unknown-category") {
		count++
	}
	testutil.AssertEqual(t, "unknown category count", count, 0)
}

func TestManager_GetAll_RegistrationOrder(t *testing.T) {
	m := newTestManager(t, map[string]string{
		"a.xml": "staff=Staff\nwand=Wand",
		"b.xml": "bow=Bow\nstaff=Staff of Destruction",
	})

	_, err := m.Load(context.Background(), Config{Name: "base", Containers: []Container{
		{Type: "rotmg", Loader: "kv", SourceLoader: "map", Sources: []string{"a.xml", "b.xml"}},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for eq := range All[*mockEquipment](m, "rotmg") {
		names = append(names, eq.Name)
	}
	testutil.AssertEqual(t, "names", strings.Join(names, ","), "Staff of Destruction,Wand,Bow")

	var keys []string
	for k := range m.Entries("rotmg") {
		keys = append(keys, k)
	}
	testutil.AssertEqual(t, "keys", strings.Join(keys, ","), "staff,wand,bow")

	// restartable
	count := 0
	for range m.GetAll("rotmg") {
		count++
	}
	testutil.AssertEqual(t, "count", count, 3)
}

func TestManager_Load_ExpandsSources(t *testing.T) {
	m := newTestManager(t, map[string]string{"https://cdn/xml/equip.xml": "dagger=Dagger"})

	report, err := m.Load(context.Background(), Config{
		Name: "base",
		Vars: map[string]string{"cdn": "https://cdn"},
		Containers: []Container{
			{Type: "rotmg", Loader: "kv", SourceLoader: "map", Sources: []string{"{{ .cdn }}/xml/{{ \"EQUIP\" | lower }}.xml"}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := report.Err(); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	_, ok := m.Get("rotmg", "dagger")
	testutil.AssertEqual(t, "found", ok, true)
}

type recordingNotifier struct {
	settled atomic.Int32
}

func (n *recordingNotifier) Settled(context.Context, Settled) {
	n.settled.Add(1)
}

func TestManager_Load_Notifies(t *testing.T) {
	n := &recordingNotifier{}
	m := NewManager(WithNotifier(n))
	if err := m.RegisterLoader("kv", kvLoader); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.RegisterSource("map", mapSource(map[string]string{"a": "x=y"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := m.Load(context.Background(), Config{Name: "base", Containers: []Container{
		{Type: "one", Loader: "kv", SourceLoader: "map", Sources: []string{"a"}},
		{Type: "two", Loader: "kv", SourceLoader: "map", Sources: []string{"b"}},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "settled", n.settled.Load(), int32(2))
	testutil.AssertEqual(t, "categories", strings.Join(m.Categories(), ","), "one")
}
