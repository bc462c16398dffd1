package main

import (
	"context"
	"log"

	"github.com/JDamianDelgado/ValleDePaz/internal/config"
	"github.com/JDamianDelgado/ValleDePaz/internal/dashboard"
	"github.com/JDamianDelgado/ValleDePaz/internal/database"
	"github.com/JDamianDelgado/ValleDePaz/internal/handler"
	"github.com/JDamianDelgado/ValleDePaz/internal/media"
	"github.com/JDamianDelgado/ValleDePaz/internal/middleware"
	"github.com/JDamianDelgado/ValleDePaz/internal/notification"
	"github.com/JDamianDelgado/ValleDePaz/internal/repository"
	"github.com/JDamianDelgado/ValleDePaz/internal/service"
	"github.com/JDamianDelgado/ValleDePaz/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log.Println("Config loaded successfully")

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "" {
		logger.Log.Fatal("JWT_SECRET is required")
	}

	db := database.Connect(cfg)
	database.MustMigrate(db)

	uploader, err := newUploader(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize media provider",
			zap.String("provider", cfg.MediaProvider),
			zap.Error(err),
		)
	}
	notifier := newNotifier(cfg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewVirginMessageRepository(db)
	inhumadoRepo := repository.NewInhumadoRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.Environment)
	userService := service.NewUserService(userRepo, uploader, cfg.Uploads.ProfileImageMaxBytes)
	inhumadoService := service.NewInhumadoService(inhumadoRepo, uploader, cfg.Uploads.RecordImageMaxBytes)
	messageService := service.NewVirginMessageService(messageRepo, userRepo, uploader, notifier, service.ModerationOptions{
		MaxImageBytes:     cfg.Uploads.MessageImageMaxBytes,
		ResendOnReapprove: cfg.ResendOnReapprove,
	})

	renderer, err := dashboard.NewRenderer()
	if err != nil {
		logger.Log.Fatal("Failed to parse dashboard templates", zap.Error(err))
	}

	routerCfg := handler.RouterConfig{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		IsProduction:   cfg.IsProduction(),
		MaxBodyBytes:   maxUpload(cfg.Uploads) + 1<<20,
		HealthCheck: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	// Rate limiting is optional; without Redis the API runs unthrottled
	if cfg.RedisURL != "" {
		redisClient, err := newRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()

		routerCfg.RateLimiter = middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
			Scope:       "api",
			MaxRequests: cfg.RateLimitMaxRequests,
			Window:      cfg.RateLimitWindow,
			BlockTime:   cfg.RateLimitBlockTime,
		})
		routerCfg.AuthRateLimiter = middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
			Scope:       "auth",
			MaxRequests: cfg.RateLimitAuthMaxRequests,
			Window:      cfg.RateLimitWindow,
			BlockTime:   cfg.RateLimitBlockTime,
		})
	} else {
		logger.Log.Warn("REDIS_URL not set, rate limiting disabled")
	}

	router := handler.NewRouter(routerCfg, handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService, cfg.Uploads.ProfileImageMaxBytes),
		Message:   handler.NewVirginMessageHandler(messageService, cfg.Uploads.MessageImageMaxBytes),
		Inhumado:  handler.NewInhumadoHandler(inhumadoService, cfg.Uploads.RecordImageMaxBytes),
		Dashboard: handler.NewDashboardHandler(renderer, messageService, inhumadoService, userService),
	})

	logger.Log.Info("Server starting",
		zap.String("addr", cfg.ServerPort),
		zap.String("environment", cfg.Environment),
		zap.String("media_provider", cfg.MediaProvider),
	)
	if err := router.Run(cfg.ServerPort); err != nil {
		logger.Log.Fatal("Failed to start server", zap.Error(err))
	}
}

func newUploader(cfg *config.Config) (media.Uploader, error) {
	switch cfg.MediaProvider {
	case config.MediaProviderS3:
		client, err := media.NewS3Client(cfg.S3)
		if err != nil {
			return nil, err
		}
		return media.NewS3Uploader(client, cfg.S3.Bucket, cfg.S3.PublicBaseURL), nil
	default:
		uploader, err := media.NewCloudinaryUploader(cfg.Cloudinary)
		if err != nil {
			return nil, err
		}
		return uploader, nil
	}
}

// newNotifier falls back to logging the emails when no SMTP host is configured
func newNotifier(cfg *config.Config) notification.Notifier {
	if cfg.SMTP.Host == "" {
		logger.Log.Warn("SMTP_HOST not set, emails will only be logged")
		return notification.NewLogNotifier()
	}
	notifier, err := notification.NewSMTPNotifier(cfg.SMTP)
	if err != nil {
		logger.Log.Fatal("Failed to initialize SMTP notifier", zap.Error(err))
	}
	return notifier
}

func newRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func maxUpload(limits config.UploadLimits) int64 {
	largest := limits.ProfileImageMaxBytes
	if limits.RecordImageMaxBytes > largest {
		largest = limits.RecordImageMaxBytes
	}
	if limits.MessageImageMaxBytes > largest {
		largest = limits.MessageImageMaxBytes
	}
	return largest
}
