package main

import (
	"context"
	"log"

	"prospec-live/internal/bootstrap"
	"prospec-live/internal/config"
	"prospec-live/internal/server"
	"prospec-live/internal/tracer"
	"prospec-live/pkg/database"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Transcription Consumer...")
		if err := container.TranscriptionService.Consume(context.Background()); err != nil {
			log.Printf("Background Transcription Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
