package console

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/pixil98/go-rotmg/internal/asset"
	"github.com/pixil98/go-rotmg/internal/display"
	"github.com/pixil98/go-rotmg/internal/game"
	"github.com/pixil98/go-rotmg/internal/messaging"
	"github.com/pixil98/go-rotmg/internal/player"
)

// Assets is the part of the registry the console reads.
type Assets interface {
	Get(category, key string) (any, bool)
	Entries(category string) iter.Seq2[string, any]
	Len(category string) int
	Categories() []string
}

// Subscriber delivers bus messages to open sessions.
type Subscriber interface {
	Subscribe(subject string, handler func(subject string, data []byte)) (func(), error)
}

// Console is a line oriented operator console over the registry, the
// player state and the world. Every connection runs its own session.
type Console struct {
	assets   Assets
	players  *player.Manager
	world    *game.World
	bus      Subscriber
	category string
	width    int
	commands map[string]command
}

type ConsoleOpt func(*Console)

// WithSubscriber relays asset load notifications to every session.
func WithSubscriber(bus Subscriber) ConsoleOpt {
	return func(c *Console) {
		c.bus = bus
	}
}

// WithCategory sets the category classes and equipment are looked up in.
func WithCategory(category string) ConsoleOpt {
	return func(c *Console) {
		c.category = category
	}
}

// WithWidth sets the width descriptions are wrapped to.
func WithWidth(width int) ConsoleOpt {
	return func(c *Console) {
		c.width = width
	}
}

func NewConsole(assets Assets, players *player.Manager, world *game.World, opts ...ConsoleOpt) *Console {
	c := &Console{
		assets:   assets,
		players:  players,
		world:    world,
		category: player.DefaultCategory,
		width:    display.DefaultWidth,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.commands = c.buildCommands()
	return c
}

type session struct {
	conn io.ReadWriter
	quit bool
}

func (s *session) prompt() error {
	_, err := s.conn.Write([]byte("> "))
	return err
}

func (s *session) writeLine(msg string) error {
	_, err := s.conn.Write([]byte(msg + "\n"))
	return err
}

// RunSession serves one connection until the operator quits, the
// connection drops or ctx is done.
func (c *Console) RunSession(ctx context.Context, conn io.ReadWriter) error {
	s := &session{conn: conn}

	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			select {
			case inputChan <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		inputErrChan <- scanner.Err()
		close(inputChan)
	}()

	msgs := make(chan string, 16)
	if c.bus != nil {
		unsub, err := c.bus.Subscribe(messaging.SettledSubjectPrefix+".>", func(_ string, data []byte) {
			select {
			case msgs <- settledMessage(data):
			default:
			}
		})
		if err != nil {
			slog.WarnContext(ctx, "subscribing console to load events", "error", err)
		} else {
			defer unsub()
		}
	}

	if err := s.writeLine("rotmg asset console, type 'help' for commands"); err != nil {
		return err
	}
	if err := s.prompt(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg := <-msgs:
			if err := s.writeLine("\n" + msg); err != nil {
				return err
			}
			if err := s.prompt(); err != nil {
				return err
			}

		case line, ok := <-inputChan:
			if !ok {
				select {
				case err := <-inputErrChan:
					return err
				default:
					return nil
				}
			}

			if err := c.exec(ctx, s, line); err != nil {
				var userErr *UserError
				if !errors.As(err, &userErr) {
					return fmt.Errorf("command execution failed: %w", err)
				}
				if err := s.writeLine(userErr.Message); err != nil {
					return err
				}
			}

			if s.quit {
				return s.writeLine("Goodbye!")
			}
			if err := s.prompt(); err != nil {
				return err
			}
		}
	}
}

// exec runs one input line. Blank lines are ignored.
func (c *Console) exec(ctx context.Context, s *session, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	name := strings.ToLower(parts[0])
	cmd, ok := c.commands[name]
	if !ok {
		return userErrorf("Unknown command: %s", parts[0])
	}

	args := parts[1:]
	if len(args) < cmd.minArgs {
		return userErrorf("Usage: %s", cmd.usage)
	}

	return cmd.run(ctx, s, args)
}

func settledMessage(data []byte) string {
	var s asset.Settled
	if err := json.Unmarshal(data, &s); err != nil {
		return "asset load event: " + string(data)
	}
	if s.ErrString != "" {
		return fmt.Sprintf("[%s] container %d (%s) failed: %s", s.Config, s.Index, s.Type, s.ErrString)
	}
	return fmt.Sprintf("[%s] container %d (%s) loaded %d records", s.Config, s.Index, s.Type, s.Stored)
}
