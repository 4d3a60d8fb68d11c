package listener

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"
)

// SshListener serves console sessions over ssh without client
// authentication. Bind it to trusted interfaces only.
type SshListener struct {
	addr    string
	cm      *ConnectionManager
	hostKey ssh.Signer
}

func NewSshListener(addr string, cm *ConnectionManager, hostKey ssh.Signer) *SshListener {
	return &SshListener{
		addr:    addr,
		cm:      cm,
		hostKey: hostKey,
	}
}

func (l *SshListener) Start(ctx context.Context) error {
	config := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	config.AddHostKey(l.hostKey)

	listener, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", l.addr, err)
	}

	slog.InfoContext(ctx, "listening for ssh", "addr", listener.Addr())

	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup

	// Close the listener when the parent context is canceled
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			// Check if shutdown was requested
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			slog.ErrorContext(ctx, "accepting ssh connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.handleConnection(connCtx, conn, config)
		}()
	}
}

func (l *SshListener) handleConnection(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		slog.ErrorContext(ctx, "ssh handshake", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	defer sshConn.Close()

	slog.InfoContext(ctx, "ssh connection established", "remote", conn.RemoteAddr())

	// Close the SSH connection when the context is cancelled.
	// This unblocks the channel iteration loop below so handleConnection can return.
	go func() {
		<-ctx.Done()
		sshConn.Close()
	}()

	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			newChan.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}
		l.serveChannel(ctx, newChan)
	}
}

// serveChannel runs one console session on a session channel. A shell
// request gets an interactive session; an exec request runs its command
// and ends the session.
func (l *SshListener) serveChannel(ctx context.Context, newChan ssh.NewChannel) {
	ch, requests, err := newChan.Accept()
	if err != nil {
		slog.ErrorContext(ctx, "accepting ssh channel", "error", err)
		return
	}
	defer ch.Close()

	// SSH clients won't forward input until they receive the shell reply.
	start := make(chan string, 1)
	go func() {
		started := false
		for req := range requests {
			switch {
			case req.Type == "pty-req":
				// Rejecting the pty keeps local echo and line buffering on the client.
				req.Reply(false, nil)
			case req.Type == "shell" && !started:
				started = true
				req.Reply(true, nil)
				start <- ""
			case req.Type == "exec" && !started:
				var payload struct{ Command string }
				if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
					req.Reply(false, nil)
					continue
				}
				started = true
				req.Reply(true, nil)
				start <- payload.Command
			default:
				req.Reply(false, nil)
			}
		}
	}()

	var command string
	select {
	case command = <-start:
	case <-ctx.Done():
		return
	}

	var conn io.ReadWriter = newCRLFReadWriter(ch)
	if command != "" {
		conn = &scriptedConn{Reader: strings.NewReader(command + "\nquit\n"), Writer: conn}
	}
	l.cm.AcceptConnection(ctx, conn)

	status := struct{ Status uint32 }{}
	if _, err := ch.SendRequest("exit-status", false, ssh.Marshal(&status)); err != nil {
		slog.DebugContext(ctx, "sending ssh exit status", "error", err)
	}
}

// scriptedConn feeds a fixed script to a session while its output still
// goes to the client.
type scriptedConn struct {
	io.Reader
	io.Writer
}
