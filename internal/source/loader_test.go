package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	noop := LoaderFunc(func(context.Context, string) ([]byte, error) { return nil, nil })

	if err := r.Register("url-to-text", noop); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := r.Register("url-to-text", noop)
	if !errors.Is(err, ErrDuplicateSource) {
		t.Errorf("expected ErrDuplicateSource, got %v", err)
	}

	_, ok := r.Get("url-to-text")
	testutil.AssertEqual(t, "found", ok, true)
	_, ok = r.Get("missing")
	testutil.AssertEqual(t, "missing found", ok, false)
}

func TestHTTPLoader_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/equip.xml":
			_, _ = w.Write([]byte("<Objects/>"))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := map[string]struct {
		path    string
		expData string
		expErr  string
	}{
		"ok": {
			path:    "/equip.xml",
			expData: "<Objects/>",
		},
		"not found": {
			path:   "/missing.xml",
			expErr: "unexpected status 404",
		},
		"timeout": {
			path:   "/slow",
			expErr: "deadline exceeded",
		},
	}

	l := NewHTTPLoader(WithTimeout(50 * time.Millisecond))

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := l.Fetch(context.Background(), srv.URL+tt.path)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				var fe *FetchError
				if !errors.As(err, &fe) {
					t.Errorf("expected FetchError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "data", string(data), tt.expData)
		})
	}
}

func TestFileLoader_Fetch(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, "sheet.json"), []byte(`{"sprites":[]}`), 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	l := NewFileLoader(tmpDir)

	data, err := l.Fetch(context.Background(), "sheet.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "relative", string(data), `{"sprites":[]}`)

	data, err = l.Fetch(context.Background(), "file://"+filepath.Join(tmpDir, "sheet.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "absolute", string(data), `{"sprites":[]}`)

	_, err = l.Fetch(context.Background(), "nope.json")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	testutil.AssertEqual(t, "source", fe.Source, "nope.json")
}

func TestHTTPLoader_Fetch_MaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := strings.Repeat("x", 32)
		if r.URL.Path == "/chunked" {
			// No Content-Length, the limit has to trip while reading.
			w.WriteHeader(http.StatusOK)
			w.(http.Flusher).Flush()
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	tests := map[string]struct {
		path     string
		maxBytes int64
		expErr   string
	}{
		"under limit": {
			path:     "/sized",
			maxBytes: 32,
		},
		"content length over limit": {
			path:     "/sized",
			maxBytes: 16,
			expErr:   "exceeds the 16 byte limit",
		},
		"streamed over limit": {
			path:     "/chunked",
			maxBytes: 16,
			expErr:   "exceeds the 16 byte limit",
		},
		"no limit": {
			path:     "/chunked",
			maxBytes: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l := NewHTTPLoader(WithMaxBytes(tt.maxBytes))
			data, err := l.Fetch(context.Background(), srv.URL+tt.path)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "length", len(data), 32)
		})
	}
}
