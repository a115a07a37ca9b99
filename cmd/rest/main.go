package main

import (
	"context"
	"log"
	"time"

	"agent-chat-be/internal/bootstrap"
	"agent-chat-be/internal/config"
	"agent-chat-be/internal/server"
	"agent-chat-be/internal/tracer"
	"agent-chat-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Unable to load configuration: %v", err)
	}

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.OtlpEndpoint)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDB(cfg.DatabaseURL)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 5. Start Background Services
	log.Println("Background: Starting Email Consumer...")
	if err := container.ConsumerService.Run(context.Background()); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	container.MaintenanceService.StartPeriodicPurge(context.Background(), time.Hour)

	// 6. Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
