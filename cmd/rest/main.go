package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"turingtest-be/internal/bootstrap"
	"turingtest-be/internal/config"
	"turingtest-be/internal/model"
	"turingtest-be/internal/pkg/logger"
	"turingtest-be/internal/server"
	"turingtest-be/internal/tracer"
	"turingtest-be/pkg/database"

	"github.com/fatih/color"
)

func banner(cfg *config.Config) {
	color.Cyan("%s", cfg.App.Name)
	fmt.Printf("  env:       %s\n", cfg.App.Environment)
	fmt.Printf("  port:      %s\n", cfg.App.Port)
	fmt.Printf("  database:  %s\n", cfg.Database.Driver)
	fmt.Printf("  llm:       %s (%s-%s)\n", cfg.Llm.Provider, cfg.Llm.MinDelay, cfg.Llm.MaxDelay)
	if cfg.Infra.RedisURL == "" {
		color.Yellow("  redis:     disabled (single instance websocket fan-out)")
	}
	if cfg.Infra.NatsURL == "" {
		color.Yellow("  nats:      disabled (events stay in process)")
	}
}

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	banner(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Tracer
	shutdownTracer := tracer.InitTracer(ctx, cfg.Tracing, cfg.App.Name, sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.Open(database.Options{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.Connection,
		LogLevel: cfg.Database.LogLevel,
		Pool: database.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		},
	})
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	defer database.Close(gormDB)

	if cfg.Database.AutoMigrate {
		if err := gormDB.AutoMigrate(model.All()...); err != nil {
			log.Panicf("AutoMigrate failed: %v", err)
		}
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, gormDB, cfg, bootstrap.WithLogger(sysLogger))
	if err != nil {
		log.Panicf("Unable to build container: %v", err)
	}
	defer container.Close()

	// 5. Start Background Services
	if err := container.Start(ctx); err != nil {
		log.Panicf("Unable to start background services: %v", err)
	}

	// 6. Run Server until a signal arrives
	srv := server.New(cfg, container)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			sysLogger.Error("SERVER", "Server stopped", map[string]interface{}{"error": err})
		}
	case <-ctx.Done():
		sysLogger.Info("SERVER", "Shutting down", nil)
		// In-flight replies can take up to the max LLM delay.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Llm.MaxDelay+5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sysLogger.Error("SERVER", "Graceful shutdown failed", map[string]interface{}{"error": err})
		}
	}
}
