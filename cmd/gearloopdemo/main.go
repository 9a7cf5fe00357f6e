// Command gearloopdemo wires a World, a couple of demo components, and
// a demo system into a ticker-driven loop with signal-based shutdown.
// Grounded on cmd/l1jgo/main.go's overall shape (load config, build
// logger, build world, register systems, ticker loop, signal
// shutdown), trimmed of everything specific to the MMO (no database,
// no net server, no persisted data tables).
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wyrmforge/gearloop/config"
	"github.com/wyrmforge/gearloop/diag"
	"github.com/wyrmforge/gearloop/ecs"
	"github.com/wyrmforge/gearloop/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "configs/gearloop.toml"
	if p := os.Getenv("GEARLOOP_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := diag.NewLogger(diag.LogConfig{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	world := ecs.NewWorld(
		ecs.WithLogger(log),
		ecs.WithSink(diag.LogSink{Log: log}),
		ecs.WithDeferredRemovalEnabled(cfg.World.DeferredRemovalEnabled),
		ecs.WithInitialPoolCapacity(cfg.Pool.InitialCapacity),
	)

	if _, err := ecs.RegisterComponent[Position](world); err != nil {
		return fmt.Errorf("register Position: %w", err)
	}
	if _, err := ecs.RegisterComponent[Velocity](world); err != nil {
		return fmt.Errorf("register Velocity: %w", err)
	}

	manager := system.NewManager(world)
	if err := manager.Register(NewMotionSystem()); err != nil {
		return fmt.Errorf("register motion system: %w", err)
	}

	for i := 0; i < 4; i++ {
		e := world.CreateEntity()
		e.SetName(fmt.Sprintf("demo-%d", i))
		_ = ecs.AddComponent(e, &Position{X: float64(i), Y: 0})
		_ = ecs.AddComponent(e, &Velocity{DX: 1, DY: 0.5})
	}

	if !cfg.World.StartPlaying {
		manager.Stop()
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.World.TickRate)
	defer ticker.Stop()

	log.Info("gearloop demo ready", zap.Duration("tickRate", cfg.World.TickRate))

	for {
		select {
		case <-ticker.C:
			manager.Tick(cfg.World.TickRate.Seconds())
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			return nil
		}
	}
}
