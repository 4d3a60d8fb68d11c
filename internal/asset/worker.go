package asset

import (
	"context"
	"fmt"
	"log/slog"
)

// LoadWorker loads a set of manifests once at startup and then idles until
// the service stops.
type LoadWorker struct {
	manager *Manager
	configs []Config
	wait    func(context.Context) error
	done    chan struct{}
}

type LoadWorkerOpt func(*LoadWorker)

// WithWaitFor delays loading until fn returns. An error from fn aborts the
// worker.
func WithWaitFor(fn func(context.Context) error) LoadWorkerOpt {
	return func(w *LoadWorker) {
		w.wait = fn
	}
}

func NewLoadWorker(m *Manager, configs []Config, opts ...LoadWorkerOpt) *LoadWorker {
	w := &LoadWorker{
		manager: m,
		configs: configs,
		done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Done is closed once every manifest has been loaded.
func (w *LoadWorker) Done() <-chan struct{} {
	return w.done
}

func (w *LoadWorker) Start(ctx context.Context) error {
	if w.wait != nil {
		if err := w.wait(ctx); err != nil {
			return fmt.Errorf("waiting to load assets: %w", err)
		}
	}

	for _, cfg := range w.configs {
		report, err := w.manager.Load(ctx, cfg)
		if err != nil {
			return err
		}
		if err := report.Err(); err != nil {
			slog.WarnContext(ctx, "manifest loaded with errors", "config", cfg.Name, "records", report.Stored(), "error", err)
			continue
		}
		slog.InfoContext(ctx, "manifest loaded", "config", cfg.Name, "records", report.Stored())
	}
	close(w.done)

	<-ctx.Done()
	return nil
}
