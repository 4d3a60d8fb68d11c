package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"syscall"

	"github.com/iammegalith/telnet"
)

// TelnetListener serves console sessions over plain telnet.
type TelnetListener struct {
	addr string
	cm   *ConnectionManager
}

func NewTelnetListener(addr string, cm *ConnectionManager) *TelnetListener {
	return &TelnetListener{
		addr: addr,
		cm:   cm,
	}
}

func (l *TelnetListener) Start(ctx context.Context) error {
	sessions := newTelnetSessions(ctx, l.cm)
	svr := telnet.NewServer(l.addr, sessions)

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			svr.Stop()
			sessions.closeAll()
		case <-stopped:
		}
	}()

	slog.InfoContext(ctx, "listening for telnet", "addr", l.addr)

	if err := svr.ListenAndServe(); err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("telnet console address %s is already in use", l.addr)
		}
		return fmt.Errorf("serving telnet on %s: %w", l.addr, err)
	}
	return nil
}

// telnetSessions runs each accepted connection as a console session. The
// sessions get their own context so that a stopping accept loop can still
// wait for them to wind down.
type telnetSessions struct {
	cm     *ConnectionManager
	ctx    context.Context
	cancel context.CancelFunc
	active sync.WaitGroup
}

func newTelnetSessions(parent context.Context, cm *ConnectionManager) *telnetSessions {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	return &telnetSessions{cm: cm, ctx: ctx, cancel: cancel}
}

func (s *telnetSessions) HandleTelnet(conn *telnet.Connection) {
	s.active.Add(1)
	defer s.active.Done()

	s.cm.AcceptConnection(s.ctx, conn)

	if err := conn.Close(); err != nil {
		slog.DebugContext(s.ctx, "closing telnet connection", "error", err)
	}
}

func (s *telnetSessions) closeAll() {
	s.cancel()
	s.active.Wait()
}
