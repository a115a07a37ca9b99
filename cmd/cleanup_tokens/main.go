package main

import (
	"context"
	"log"
	"os"
	"time"

	"agent-chat-be/internal/repository/unitofwork"
	"agent-chat-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// One-shot purge of expired verification and password-reset tokens. Meant
// for cron; the server also purges hourly on its own.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		color.Red("Error: DATABASE_URL is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDB(dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	now := time.Now()
	repo := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx).UserRepository()

	verification, err := repo.DeleteExpiredVerificationTokens(ctx, now)
	if err != nil {
		color.Red("Error: Failed to purge verification tokens: %v", err)
		os.Exit(1)
	}

	reset, err := repo.DeleteExpiredResetTokens(ctx, now)
	if err != nil {
		color.Red("Error: Failed to purge reset tokens: %v", err)
		os.Exit(1)
	}

	color.Green("Success: Purged %d verification and %d reset tokens.", verification, reset)
}
