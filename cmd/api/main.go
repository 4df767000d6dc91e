package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pastpaper/pastpaper-be/database"
	"github.com/pastpaper/pastpaper-be/internal/config"
	"github.com/pastpaper/pastpaper-be/internal/pkg/validate"
)

func main() {
	viperConfig := config.NewViper()

	log := config.NewLogger(viperConfig)
	db := database.New(viperConfig)
	redisClient := database.NewRedis(viperConfig)
	validator := validate.NewValidator()
	api := config.NewAPI(viperConfig, log)

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Info("Migrations completed successfully")

	// Run seeders
	if err := database.SeedSubjects(db); err != nil {
		log.Fatalf("Failed to seed subjects: %v", err)
	}
	if err := database.SeedSampleQuestions(db); err != nil {
		log.Fatalf("Failed to seed sample questions: %v", err)
	}
	log.Info("Seeders completed successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	defer stop()

	config.Bootstrap(&config.BootstrapConfig{
		Config:    viperConfig,
		Log:       log,
		Api:       api,
		Validator: validator,
		DB:        db,
		Redis:     redisClient,
	})

	port := viperConfig.GetInt("api.port")
	if port == 0 {
		port = 8080
	}
	listenAddr := fmt.Sprintf(":%d", port)

	go func() {
		if err := api.Listen(listenAddr); err != nil {
			log.Fatalf("Failed to start API server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := api.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("API shutdown error: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Errorf("Redis close error: %v", err)
		}
	}

	log.Info("Shutting down server...")

}
