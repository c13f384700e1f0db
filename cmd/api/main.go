package main

import (
	"os"
	"path/filepath"

	"github.com/aaeducates/backend/internal/config"
	"github.com/aaeducates/backend/internal/pkg/logger" // Still needed for initial error logging
	"github.com/aaeducates/backend/internal/server"
)

// @title AA Educates API
// @version 1.0
// @description API for the AA Educates learning platform: students, parents, schools, corporate partners and mentors.

// @contact.name API Support
// @contact.email support@aaeducates.org

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization, as "Bearer <token>"

func main() {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))

	srv, err := server.NewServer(configPath)
	if err != nil {
		// Error details are logged within NewServer's setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until a shutdown signal arrives
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
