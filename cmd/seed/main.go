package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/JDamianDelgado/ValleDePaz/internal/config"
	"github.com/JDamianDelgado/ValleDePaz/internal/database"
	"github.com/JDamianDelgado/ValleDePaz/internal/repository"
	"github.com/JDamianDelgado/ValleDePaz/internal/service"
	"github.com/JDamianDelgado/ValleDePaz/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Seeds the administrator account and the initial memorial records.
// Safe to run repeatedly.
func main() {
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db := database.Connect(cfg)
	database.MustMigrate(db)

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		logger.Log.Fatal("Missing environment variables: ADMIN_USERNAME, ADMIN_EMAIL, ADMIN_PASSWORD")
	}

	// The token issued on registration is discarded, any secret will do
	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
	}
	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, secret, time.Hour, cfg.Environment)

	admin, err := authService.RegisterAdmin(adminUsername, adminEmail, adminPassword)
	switch {
	case errors.Is(err, service.ErrEmailAlreadyExists), errors.Is(err, service.ErrUsernameAlreadyExists):
		logger.Log.Info("Admin user already exists", zap.String("email", adminEmail))
	case err != nil:
		logger.Log.Fatal("Failed to create admin", zap.Error(err))
	default:
		logger.Log.Info("Admin user created",
			zap.String("username", admin.Username),
			zap.String("email", admin.Email),
		)
	}

	// Fixture records already carry their image URLs, so no uploader is needed
	inhumadoService := service.NewInhumadoService(repository.NewInhumadoRepository(db), nil, 0)
	inserted, err := inhumadoService.Seed(context.Background())
	if err != nil {
		logger.Log.Fatal("Failed to seed records", zap.Int("inserted", inserted), zap.Error(err))
	}
	logger.Log.Info("Records seeded", zap.Int("inserted", inserted))
}
