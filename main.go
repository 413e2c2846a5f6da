package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/krshsl/mockmate/backend/repository"
	"github.com/krshsl/mockmate/backend/services"
)

func main() {
	// Setup structured logging with JSON format
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config := services.LoadConfig()
	ctx := context.Background()

	var repo *repository.GORMRepository
	if config.Database.URL != "" {
		var err error
		repo, err = repository.Open(ctx, repository.Options{
			Driver:       config.Database.Driver,
			URL:          config.Database.URL,
			LogLevel:     config.Database.LogLevel,
			MaxIdleConns: config.Database.MaxIdleConns,
			MaxOpenConns: config.Database.MaxOpenConns,
		})
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer repo.Close()

		if err := repo.AutoMigrate(); err != nil {
			slog.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}

		if config.Database.Seed {
			if err := services.NewDatabaseSeeder(repo).SeedDatabase(ctx); err != nil {
				slog.Error("Failed to seed database", "error", err)
			}
		}
	} else {
		slog.Warn("Database URL not configured, running without database")
	}

	server := services.NewServer(config, repo)
	if err := server.InitializeServices(ctx); err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	server.Start()
}
