package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travel-chatbot-be/internal/bootstrap"
	"travel-chatbot-be/internal/config"
	"travel-chatbot-be/internal/server"
	"travel-chatbot-be/internal/tracer"
	"travel-chatbot-be/pkg/database"

	"gorm.io/gorm"
)

func needsDatabase(cfg *config.Config) bool {
	if cfg.Rag.VectorStore == "pgvector" {
		return true
	}
	for _, sink := range cfg.Rag.TranscriptSinks {
		if sink == "db" {
			return true
		}
	}
	return false
}

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEndpoint)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	var gormDB *gorm.DB
	if needsDatabase(cfg) {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment != "production")
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}
	defer container.Close()

	// 5. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := container.Start(ctx); err != nil {
		log.Fatalf("Failed to start background services: %v", err)
	}

	// 6. Run Server
	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown()
		_ = shutdownTracer(shutdownCtx)
	}()

	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
