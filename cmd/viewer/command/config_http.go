package command

import (
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-rotmg/internal/game"
	"github.com/pixil98/go-rotmg/internal/player"
	"github.com/pixil98/go-rotmg/internal/web"
	"github.com/pixil98/go-service"
)

type HTTPConfig struct {
	Addr            string `json:"addr,omitempty"`
	StaticDir       string `json:"static_dir,omitempty"`
	AccessLog       bool   `json:"access_log"`
	ShutdownTimeout string `json:"shutdown_timeout"`
}

func (c *HTTPConfig) validate() error {
	el := errors.NewErrorList()

	if c.StaticDir != "" {
		if _, err := os.Stat(c.StaticDir); err != nil {
			el.Add(fmt.Errorf("http: invalid static_dir %q: %w", c.StaticDir, err))
		}
	}
	if c.ShutdownTimeout != "" {
		_, err := time.ParseDuration(c.ShutdownTimeout)
		if err != nil {
			el.Add(fmt.Errorf("http: parsing shutdown_timeout: %w", err))
		}
	}

	return el.Err()
}

func (c *HTTPConfig) BuildServer(assets web.Assets, players *player.Manager, world *game.World, bus web.Subscriber, category string) (service.Worker, error) {
	opts := []web.ServerOpt{web.WithSubscriber(bus)}
	if c.Addr != "" {
		opts = append(opts, web.WithAddr(c.Addr))
	}
	if c.StaticDir != "" {
		opts = append(opts, web.WithStaticDir(c.StaticDir))
	}
	if c.AccessLog {
		opts = append(opts, web.WithAccessLog(os.Stdout))
	}
	if c.ShutdownTimeout != "" {
		d, err := time.ParseDuration(c.ShutdownTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing shutdown_timeout: %w", err)
		}
		opts = append(opts, web.WithShutdownTimeout(d))
	}
	if category != "" {
		opts = append(opts, web.WithCategory(category))
	}

	return web.NewServer(assets, players, world, opts...), nil
}
