package main

import (
	"log"
	"os"

	"agent-chat-be/internal/model"
	"agent-chat-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

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

	color.Cyan("Starting Authoritative GORM Migration...")

	models := []interface{}{
		&model.User{},
		&model.EmailVerificationToken{},
		&model.PasswordResetToken{},
		&model.Session{},
		&model.Thread{},
		&model.Message{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	color.Green("Success: Database migration completed (%d tables).", len(models))
}
