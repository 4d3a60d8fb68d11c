package command

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-rotmg/internal/listener"
	"github.com/pixil98/go-service"
	"golang.org/x/crypto/ssh"
)

// ListenerType is the wire protocol of a console listener.
type ListenerType int

const (
	ListenerTypeTelnet ListenerType = iota
	ListenerTypeSSH
)

var listenerTypeNames = map[ListenerType]string{
	ListenerTypeTelnet: "telnet",
	ListenerTypeSSH:    "ssh",
}

func (lt ListenerType) String() string {
	if name, ok := listenerTypeNames[lt]; ok {
		return name
	}
	return fmt.Sprintf("ListenerType(%d)", int(lt))
}

func (lt ListenerType) MarshalText() ([]byte, error) {
	name, ok := listenerTypeNames[lt]
	if !ok {
		return nil, fmt.Errorf("unknown listener type: %d", int(lt))
	}
	return []byte(name), nil
}

func (lt *ListenerType) UnmarshalText(text []byte) error {
	for t, name := range listenerTypeNames {
		if name == string(text) {
			*lt = t
			return nil
		}
	}
	return fmt.Errorf("unknown listener type: %s", text)
}

// ConsoleConfig configures the operator console. No listeners means no
// console.
type ConsoleConfig struct {
	Width     int              `json:"width"`
	Listeners []ListenerConfig `json:"listeners"`
}

func (c *ConsoleConfig) validate() error {
	el := errors.NewErrorList()

	if c.Width < 0 {
		el.Add(fmt.Errorf("console: width must not be negative"))
	}
	for i, l := range c.Listeners {
		if err := l.validate(); err != nil {
			el.Add(fmt.Errorf("console: listener %d: %w", i, err))
		}
	}

	return el.Err()
}

type ListenerConfig struct {
	Protocol    ListenerType `json:"protocol"`
	Addr        string       `json:"addr"`
	HostKeyPath string       `json:"host_key_path,omitempty"`
}

func (cl *ListenerConfig) validate() error {
	el := errors.NewErrorList()

	if cl.Addr == "" {
		el.Add(fmt.Errorf("addr is required"))
	}
	if cl.HostKeyPath != "" && cl.Protocol != ListenerTypeSSH {
		el.Add(fmt.Errorf("host_key_path only applies to ssh listeners"))
	}

	return el.Err()
}

// BuildListener returns the worker serving console sessions on cl.Addr.
func (cl *ListenerConfig) BuildListener(cm *listener.ConnectionManager) (service.Worker, error) {
	if cl.Protocol == ListenerTypeTelnet {
		return listener.NewTelnetListener(cl.Addr, cm), nil
	}
	if cl.Protocol != ListenerTypeSSH {
		return nil, fmt.Errorf("unknown listener type: %v", cl.Protocol)
	}

	hostKey, err := cl.hostKey()
	if err != nil {
		return nil, fmt.Errorf("ssh console on %s: %w", cl.Addr, err)
	}
	return listener.NewSshListener(cl.Addr, cm, hostKey), nil
}

// hostKey reads the ed25519 key at HostKeyPath, creating and saving one the
// first time. Without a path the key only lives as long as the process.
func (cl *ListenerConfig) hostKey() (ssh.Signer, error) {
	if cl.HostKeyPath == "" {
		slog.Warn("ssh console has no host_key_path, host key changes on every start", "addr", cl.Addr)
		_, key, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generating host key: %w", err)
		}
		return ssh.NewSignerFromKey(key)
	}

	data, err := os.ReadFile(cl.HostKeyPath)
	if stderrors.Is(err, fs.ErrNotExist) {
		return cl.createHostKey()
	}
	if err != nil {
		return nil, fmt.Errorf("reading host key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("parsing host key %s: %w", cl.HostKeyPath, err)
	}
	return signer, nil
}

func (cl *ListenerConfig) createHostKey() (ssh.Signer, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating host key: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(key, "rotmg console")
	if err != nil {
		return nil, fmt.Errorf("encoding host key: %w", err)
	}
	if err := os.WriteFile(cl.HostKeyPath, pem.EncodeToMemory(block), 0o600); err != nil {
		return nil, fmt.Errorf("saving host key: %w", err)
	}
	slog.Info("created ssh host key", "path", cl.HostKeyPath)

	return ssh.NewSignerFromKey(key)
}
