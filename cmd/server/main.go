// Command pyd-server boots the difficulty lifecycle engine with an
// in-process host and serves the operator JSON surface.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/admin"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/config"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/engine"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/server"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/telemetry"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/world"
)

func main() {
	logger := log.Default()

	rt, err := config.RuntimeFromEnv()
	if err != nil {
		logger.Fatalf("runtime env: %v", err)
	}

	cfg, err := loadConfig(rt.ConfigPath, logger)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	events := telemetry.NewMemoryRepository()
	perms := world.NewFakePerms()
	perms.AllowAll = true
	overlays := world.NewFakeOverlayFactory()

	eng, err := engine.NewEngine(cfg, engine.Deps{
		ConfigPath: rt.ConfigPath,
		DataDir:    rt.DataDir,
		Locator:    world.NewFakeWorld(),
		Overlays:   overlays,
		Perms:      perms,
		Menu:       world.NewFakeMenu(),
		Sounds:     world.NewFakeSounds(),
		Notify:     world.NewFakeNotifier(),
		Dispatch:   world.NewFakeDispatcher(),
		Roster:     world.NewFakeRoster(),
		Playtime:   world.NewFakePlaytime(),
		Events:     events,
		Clock:      engine.RealClock{},
		Logger:     logger,
	})
	if err != nil {
		logger.Fatalf("build engine: %v", err)
	}
	if err := eng.Start(); err != nil {
		logger.Fatalf("start engine: %v", err)
	}
	overlays.Visibility = eng.Prefs().Visible

	handler, err := server.NewHandler(server.Options{
		Admin:  admin.NewService(eng, events, logger),
		Logger: logger,
	})
	if err != nil {
		logger.Fatalf("build server: %v", err)
	}

	srv := &http.Server{Addr: rt.ListenAddr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Printf("listening on %s", rt.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Print("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown: %v", err)
	}
	if err := eng.Close(); err != nil {
		logger.Printf("engine close: %v", err)
	}
}

// loadConfig reads the YAML file, falling back to built-in defaults when
// the file does not exist so a fresh checkout boots without setup.
func loadConfig(path string, logger *log.Logger) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	logger.Printf("config %s not found, using defaults", path)
	cfg = &config.Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
