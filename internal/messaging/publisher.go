package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pixil98/go-rotmg/internal/asset"
	"github.com/pixil98/go-rotmg/internal/render"
)

const (
	SettledSubjectPrefix = "assets.settled"
	FrameSubject         = "render.frames"
)

// SettledSubject is the subject a config's settle events are published on.
func SettledSubject(config string) string {
	token := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, config)
	if token == "" {
		token = "_"
	}
	return SettledSubjectPrefix + "." + token
}

// Publisher sends raw messages to a subject.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// LoadPublisher publishes every settled container as JSON.
type LoadPublisher struct {
	pub Publisher
}

func NewLoadPublisher(pub Publisher) *LoadPublisher {
	return &LoadPublisher{pub: pub}
}

// Settled satisfies asset.Notifier
func (p *LoadPublisher) Settled(ctx context.Context, s asset.Settled) {
	data, err := json.Marshal(s)
	if err != nil {
		slog.WarnContext(ctx, "encoding settle event", "config", s.Config, "error", err)
		return
	}
	if err := p.pub.Publish(SettledSubject(s.Config), data); err != nil {
		slog.WarnContext(ctx, "publishing settle event", "config", s.Config, "error", err)
	}
}

// FramePublisher publishes recorded frames as JSON.
type FramePublisher struct {
	pub Publisher
}

func NewFramePublisher(pub Publisher) *FramePublisher {
	return &FramePublisher{pub: pub}
}

// SendFrame satisfies driver.FrameSink
func (p *FramePublisher) SendFrame(_ context.Context, f render.Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding frame %d: %w", f.Seq, err)
	}
	return p.pub.Publish(FrameSubject, data)
}
