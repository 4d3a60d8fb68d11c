package web

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pixil98/go-rotmg/internal/game"
	"github.com/pixil98/go-rotmg/internal/player"
)

const (
	DefaultAddr            = "127.0.0.1:8080"
	DefaultShutdownTimeout = 5 * time.Second
)

// Assets is the query surface of the asset registry.
type Assets interface {
	Get(category, key string) (any, bool)
	GetAll(category string) iter.Seq[any]
	Len(category string) int
	Categories() []string
}

// Subscriber delivers bus messages to the websocket clients.
type Subscriber interface {
	Subscribe(subject string, handler func(subject string, data []byte)) (func(), error)
}

// Server serves the JSON query surface and the websocket event stream the
// browser viewer is built on.
type Server struct {
	addr            string
	staticDir       string
	accessLog       io.Writer
	shutdownTimeout time.Duration
	category        string

	assets  Assets
	players *player.Manager
	world   *game.World
	bus     Subscriber
}

func NewServer(assets Assets, players *player.Manager, world *game.World, opts ...ServerOpt) *Server {
	s := &Server{
		addr:            DefaultAddr,
		accessLog:       os.Stdout,
		shutdownTimeout: DefaultShutdownTimeout,
		category:        player.DefaultCategory,
		assets:          assets,
		players:         players,
		world:           world,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler builds the routed and wrapped handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{category}", s.handleCategory).Methods(http.MethodGet)
	api.HandleFunc("/categories/{category}/{key}", s.handleRecord).Methods(http.MethodGet)
	api.HandleFunc("/equipment", s.handleEquipment).Methods(http.MethodGet)
	api.HandleFunc("/player/class", s.handleGetClass).Methods(http.MethodGet)
	api.HandleFunc("/player/class", s.handleSelectClass).Methods(http.MethodPut)
	api.HandleFunc("/player/inventory", s.handleGetInventory).Methods(http.MethodGet)
	api.HandleFunc("/player/inventory", s.handleGiveItem).Methods(http.MethodPost)
	api.HandleFunc("/player/spawn", s.handleSpawn).Methods(http.MethodPost)
	api.HandleFunc("/particles", s.handleParticle).Methods(http.MethodPost)

	if s.bus != nil {
		r.HandleFunc("/ws", s.handleWebsocket)
	}
	if s.staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
	}

	var h http.Handler = r
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	h = handlers.RecoveryHandler()(h)
	if s.accessLog != nil {
		h = handlers.CombinedLoggingHandler(s.accessLog, h)
	}
	return h
}

func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "web server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
