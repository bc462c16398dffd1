package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/JDamianDelgado/ValleDePaz/internal/dashboard"
	"github.com/JDamianDelgado/ValleDePaz/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the settings the HTTP surface needs
type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
	IsProduction   bool
	MaxBodyBytes   int64

	// Optional. Nil disables rate limiting.
	RateLimiter     *middleware.RateLimiter
	AuthRateLimiter *middleware.RateLimiter

	// Optional readiness probe used by /health
	HealthCheck func(ctx context.Context) error
}

// Handlers groups every route handler
type Handlers struct {
	Auth      *AuthHandler
	User      *UserHandler
	Message   *VirginMessageHandler
	Inhumado  *InhumadoHandler
	Dashboard *DashboardHandler
}

func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.IsProduction))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", health(cfg.HealthCheck))

	auth := middleware.AuthMiddleware(cfg.JWTSecret)
	admin := middleware.AdminMiddleware()
	self := middleware.SelfOrAdminMiddleware("id")

	api := router.Group("/api")
	api.Use(middleware.UploadLimitMiddleware(cfg.MaxBodyBytes))
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Middleware())
	}

	// Auth
	authRoutes := api.Group("/auth")
	if cfg.AuthRateLimiter != nil {
		authRoutes.Use(cfg.AuthRateLimiter.Middleware())
	}
	authRoutes.POST("/register", h.Auth.Register)
	authRoutes.POST("/login", h.Auth.Login)
	authRoutes.POST("/logout", h.Auth.Logout)

	// Memorial records
	records := api.Group("/inhumados")
	{
		records.GET("", h.Inhumado.List)
		records.GET("/:id", h.Inhumado.Get)
		records.GET("/valle/:valle", auth, h.Inhumado.ListByValle)
		records.GET("/nombre/:nombre/:apellido", auth, h.Inhumado.GetByName)
		records.POST("", auth, admin, h.Inhumado.Create)
		records.POST("/seed", auth, admin, h.Inhumado.Seed)
		records.PUT("/:id", auth, admin, h.Inhumado.Update)
		records.DELETE("/:id", auth, admin, h.Inhumado.Delete)
	}

	// Users
	users := api.Group("/user", auth)
	{
		users.GET("", admin, h.User.List)
		users.GET("/:id", self, h.User.Get)
		users.GET("/:id/datos", self, h.User.GetFullProfile)
		users.PATCH("/:id", self, h.User.Update)
		users.PATCH("/:id/preferences", self, h.User.UpdatePreferences)
		users.POST("/:id/imagen-perfil", self, h.User.UploadProfileImage)
		users.PUT("/:id/imagen-perfil", self, h.User.ReplaceProfileImage)
		users.DELETE("/:id", admin, h.User.Delete)
		users.DELETE("/:id/with-messages", admin, h.User.DeleteWithMessages)
	}

	// Messages to the Virgin
	messages := api.Group("/mensajes-virgen")
	{
		messages.GET("/aprobados", h.Message.ListApproved)
		messages.GET("", auth, admin, h.Message.List)
		messages.GET("/filter", auth, admin, h.Message.Filter)
		messages.POST("", auth, h.Message.Create)
		messages.PUT("/:id", auth, h.Message.Update)
		messages.PATCH("/:id/approve", auth, admin, h.Message.Approve)
		messages.DELETE("/:id", auth, admin, h.Message.Reject)
	}

	// Dashboard (cookie session or bearer)
	if h.Dashboard != nil {
		panel := router.Group("/admin", auth, admin)
		panel.GET("", h.Dashboard.Home)
		panel.GET("/mensajes", h.Dashboard.Messages)
		panel.GET("/inhumados", h.Dashboard.Records)
		panel.GET("/usuarios", h.Dashboard.Users)
		panel.StaticFS("/static", dashboard.Static())
	}

	return router
}

func health(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
