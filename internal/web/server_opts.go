package web

import (
	"io"
	"time"
)

type ServerOpt func(*Server)

func WithAddr(addr string) ServerOpt {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithStaticDir serves the browser viewer from dir.
func WithStaticDir(dir string) ServerOpt {
	return func(s *Server) {
		s.staticDir = dir
	}
}

// WithAccessLog sets where access logs go. nil disables them.
func WithAccessLog(w io.Writer) ServerOpt {
	return func(s *Server) {
		s.accessLog = w
	}
}

func WithShutdownTimeout(d time.Duration) ServerOpt {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// WithSubscriber enables the websocket stream.
func WithSubscriber(bus Subscriber) ServerOpt {
	return func(s *Server) {
		s.bus = bus
	}
}

// WithCategory sets the category equipment is searched in.
func WithCategory(category string) ServerOpt {
	return func(s *Server) {
		s.category = category
	}
}
