package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soul-harvest/internal/api"
	"soul-harvest/internal/command"
	"soul-harvest/internal/config"
	"soul-harvest/internal/economy"
	"soul-harvest/internal/game"
	"soul-harvest/internal/persist"
	"soul-harvest/internal/render"
)

func main() {
	if path, ok := config.LoadDotEnv("../.env", ".env"); ok {
		log.Printf("✅ Loaded environment from %s", path)
	} else {
		log.Println("💡 No .env file found, using environment variables only")
	}

	log.Println("🧟 ================================")
	log.Println("🧟  SOUL HARVEST - HEADLESS SERVER")
	log.Println("🧟 ================================")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Config: %v", err)
	}
	log.Printf("🎮 Config: %.0fx%.0f world, %d walkers, %d FPS frames, max %d steps/frame",
		cfg.World.Width, cfg.World.Height, cfg.Population.WalkerTarget, cfg.Loop.FrameRate, cfg.Loop.MaxStepsPerFrame)

	eco, err := economy.New(cfg.Upgrades, cfg.Areas)
	if err != nil {
		log.Fatalf("❌ Economy: %v", err)
	}
	store := persist.Open(cfg.Persistence)
	if _, err := store.RestoreInto(eco); err != nil {
		log.Printf("⚠️ Ignoring unreadable save: %v", err)
	}

	opts := []game.Option{game.WithMetrics(api.EngineMetrics{})}

	var frames api.FrameSource
	if os.Getenv("DISABLE_FRAME_RENDER") != "true" {
		canvas, err := render.NewCanvas(render.Options{
			Width:       int(cfg.World.Width),
			Height:      int(cfg.World.Height),
			MinInterval: 200 * time.Millisecond,
			ShowGrid:    true,
		})
		if err != nil {
			log.Fatalf("❌ Render surface: %v", err)
		}
		frames = canvas
		opts = append(opts, game.WithRenderer(canvas))
	}

	var eventLog *game.EventLog
	if path := cfg.Persistence.EventLogPath; path != "" {
		eventLog = game.NewEventLog()
		if err := eventLog.Start(path); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
			eventLog = nil
		} else {
			log.Printf("📝 Event log: %s", path)
			opts = append(opts, game.WithEventLog(eventLog))
		}
	}

	engine, err := game.NewEngine(cfg, eco, opts...)
	if err != nil {
		log.Fatalf("❌ Engine: %v", err)
	}

	debugServer := api.StartDebugServer(cfg.Observability)

	commands := command.NewHandler(engine, command.RateLimitConfig{
		PerSecond: cfg.Server.CommandsPerSecond,
		Burst:     cfg.Server.CommandBurst,
	}, 2*time.Second)

	server := api.NewServer(api.ServerConfig{
		Engine:   engine,
		Frames:   frames,
		Commands: commands,
		Server:   cfg.Server,
	})
	if cfg.Server.AdminToken == "" {
		log.Println("⚠️ ADMIN_TOKEN not set - mutating routes are open")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine.Start(ctx)

	// Not tied to ctx: the final save must run after the engine stops
	autosaver := persist.NewAutosaver(store, engine, cfg.Persistence.AutosaveInterval)
	autosaver.Start(context.Background())

	go func() {
		if err := server.Start(); err != nil {
			log.Printf("❌ %v", err)
			stop()
		}
	}()

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Println("🛑 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ API shutdown: %v", err)
	}
	if debugServer != nil {
		debugServer.Shutdown(shutdownCtx)
	}
	commands.Close()
	engine.Stop()
	autosaver.Stop()
	if eventLog != nil {
		eventLog.Stop()
	}
	log.Println("👋 Goodbye!")
}
