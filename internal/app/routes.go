package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"

	"github.com/Shuvo-2525/duedateuk/internal/auth"
	"github.com/Shuvo-2525/duedateuk/internal/cache"
	"github.com/Shuvo-2525/duedateuk/internal/config"
	"github.com/Shuvo-2525/duedateuk/internal/handlers"
	"github.com/Shuvo-2525/duedateuk/internal/registry"
	"github.com/Shuvo-2525/duedateuk/internal/repo"
	"github.com/Shuvo-2525/duedateuk/internal/service"
	"github.com/Shuvo-2525/duedateuk/internal/watch"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	chClient := registry.NewClient(cfg.CompaniesHouse.BaseURL, cfg.CompaniesHouse.APIKey, cfg.CompaniesHouse.Timeout.Duration())
	// Public lookup proxy, same path shape the SPA used.
	r.GET("/api/company/:number", handlers.NewRegistryHandler(chClient).Lookup)

	api := r.Group("/api/v1")

	sessionStore := auth.NewStore(rdb, 24*time.Hour)
	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo)
	authHandler := handlers.NewAuthHandler(sessionStore, userSvc)
	registerAuthRoutes(api, authHandler)

	protected := api.Group("", auth.RequireSession(sessionStore))
	companyRepo := repo.NewPGCompanyRepo(db)
	companyCache := cache.NewCompanyCache(rdb, cfg.Redis.DefaultTTL.Duration())
	companySvc := service.NewCompanyService(companyRepo, companyCache, watch.NewNotifier(rdb))
	hub := watch.NewHub(rdb, companySvc)
	companyHandler := handlers.NewCompanyHandler(companySvc, hub)
	registerCompanyRoutes(protected, companyHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "DueDate.UK API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"openapi": "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerCompanyRoutes(api *gin.RouterGroup, h *handlers.CompanyHandler) {
	api.POST("/companies", h.Create)
	api.GET("/companies", h.List)
	api.GET("/companies/watch", h.Watch)
	api.DELETE("/companies/:id", h.Delete)
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/login", h.Login)
	api.POST("/auth/register", h.Register)
	api.POST("/auth/logout", h.Logout)
}
