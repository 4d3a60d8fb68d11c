package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	FrameInterval string        `json:"frame_interval"`
	Assets        AssetsConfig  `json:"assets"`
	HTTP          HTTPConfig    `json:"http"`
	Nats          NatsConfig    `json:"nats"`
	Player        PlayerConfig  `json:"player"`
	World         WorldConfig   `json:"world"`
	Console       ConsoleConfig `json:"console"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.FrameInterval != "" {
		d, err := time.ParseDuration(c.FrameInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing frame_interval: %w", err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("frame_interval must be positive"))
		}
	}

	el.Add(c.Assets.Validate())
	el.Add(c.HTTP.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Player.validate())
	el.Add(c.World.validate())
	el.Add(c.Console.validate())

	return el.Err()
}

type PlayerConfig struct {
	Category      string `json:"category"`
	InventorySize int    `json:"inventory_size"`
}

func (c *PlayerConfig) validate() error {
	el := errors.NewErrorList()

	if c.InventorySize < 0 {
		el.Add(fmt.Errorf("inventory_size must not be negative"))
	}

	return el.Err()
}

type WorldConfig struct {
	ViewSize float32 `json:"view_size"`
	Order    string  `json:"order"`
}

func (c *WorldConfig) validate() error {
	el := errors.NewErrorList()

	if c.ViewSize < 0 {
		el.Add(fmt.Errorf("view_size must not be negative"))
	}
	switch c.Order {
	case "", "elevation", "spawn":
	default:
		el.Add(fmt.Errorf("unknown order %q", c.Order))
	}

	return el.Err()
}
