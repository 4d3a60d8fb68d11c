package command

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixil98/go-rotmg/internal/asset"
	"github.com/pixil98/go-rotmg/internal/console"
	"github.com/pixil98/go-rotmg/internal/driver"
	"github.com/pixil98/go-rotmg/internal/game"
	"github.com/pixil98/go-rotmg/internal/listener"
	"github.com/pixil98/go-rotmg/internal/messaging"
	"github.com/pixil98/go-rotmg/internal/player"
	"github.com/pixil98/go-rotmg/internal/render"
	"github.com/pixil98/go-service/service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Message bus
	bus, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Asset registry, loaded once the bus can carry its notifications
	assets, err := cfg.Assets.BuildManager(messaging.NewLoadPublisher(bus))
	if err != nil {
		return nil, fmt.Errorf("creating asset manager: %w", err)
	}
	manifests, err := cfg.Assets.LoadManifests()
	if err != nil {
		return nil, fmt.Errorf("reading manifests: %w", err)
	}
	loader := asset.NewLoadWorker(assets, manifests, asset.WithWaitFor(bus.WaitReady))

	// Render pipeline backed by a recording device
	recorder := render.NewRecorder()
	pipeline := render.NewPipeline(render.NewContext(recorder, assets))

	world := game.NewWorld()

	var playerOpts []player.ManagerOpt
	if cfg.Player.Category != "" {
		playerOpts = append(playerOpts, player.WithCategory(cfg.Player.Category))
	}
	if cfg.Player.InventorySize > 0 {
		playerOpts = append(playerOpts, player.WithInventorySize(cfg.Player.InventorySize))
	}
	players := player.NewManager(assets, playerOpts...)

	driverOpts, err := cfg.driverOpts()
	if err != nil {
		return nil, err
	}
	driverOpts = append(driverOpts, driver.WithSink(messaging.NewFramePublisher(bus)))
	frames := driver.NewFrameDriver(world, pipeline, recorder, driverOpts...)

	httpServer, err := cfg.HTTP.BuildServer(assets, players, world, bus, cfg.Player.Category)
	if err != nil {
		return nil, fmt.Errorf("creating http server: %w", err)
	}

	// Operator console listeners
	consoleOpts := []console.ConsoleOpt{console.WithSubscriber(bus)}
	if cfg.Player.Category != "" {
		consoleOpts = append(consoleOpts, console.WithCategory(cfg.Player.Category))
	}
	if cfg.Console.Width > 0 {
		consoleOpts = append(consoleOpts, console.WithWidth(cfg.Console.Width))
	}
	cm := listener.NewConnectionManager(console.NewConsole(assets, players, world, consoleOpts...))

	listeners := make(service.WorkerList, len(cfg.Console.Listeners))
	for i, l := range cfg.Console.Listeners {
		w, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = w
	}

	return service.WorkerList{
		"nats":      bus,
		"assets":    loader,
		"driver":    frames,
		"http":      httpServer,
		"listeners": &listeners,
	}, nil
}

func (c *Config) driverOpts() ([]driver.FrameDriverOpt, error) {
	var opts []driver.FrameDriverOpt

	if c.FrameInterval != "" {
		d, err := time.ParseDuration(c.FrameInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing frame_interval: %w", err)
		}
		opts = append(opts, driver.WithFrameInterval(d))
	}

	if c.World.ViewSize > 0 {
		half := c.World.ViewSize / 2
		opts = append(opts, driver.WithView(mgl32.Ortho2D(-half, half, -half, half)))
	}

	switch c.World.Order {
	case "spawn":
		opts = append(opts, driver.WithOrder(game.SpawnOrder))
	case "elevation":
		opts = append(opts, driver.WithOrder(game.ElevationOrder))
	}

	return opts, nil
}
