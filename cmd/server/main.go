package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/easymart/chat-backend/internal/application/catalog"
	"github.com/easymart/chat-backend/internal/application/connector"
	"github.com/easymart/chat-backend/internal/domain/commerce"
	"github.com/easymart/chat-backend/internal/infrastructure/assistant"
	"github.com/easymart/chat-backend/internal/infrastructure/config"
	"github.com/easymart/chat-backend/internal/infrastructure/logger"
	"github.com/easymart/chat-backend/internal/interfaces/http/handler"
	"github.com/easymart/chat-backend/internal/interfaces/http/middleware"
	"github.com/easymart/chat-backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting EasyMart Chat Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("provider", cfg.Commerce.Provider),
	)

	// Assistant service client. It doubles as the cart delegate for
	// providers whose carts live in the assistant's session store.
	assistantClient, err := assistant.NewClient(&assistant.Config{
		BaseURL:        cfg.Assistant.BaseURL,
		TimeoutSeconds: cfg.Assistant.TimeoutSeconds,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize assistant client", zap.Error(err))
	}

	// Active commerce provider selected from config
	provider, err := connector.BuildProvider(cfg, assistantClient, log)
	if err != nil {
		log.Fatal("Failed to initialize commerce provider", zap.Error(err))
	}
	log.Info("Commerce provider ready", zap.String("provider", string(provider.Code())))

	// Application services
	commerceService := connector.NewService(provider, log)
	exportService := catalog.NewExportService(
		provider, cfg.Commerce.ExportPageLimit, cfg.Commerce.ExportMaxPages, log,
	)

	// HTTP handlers
	chatHandler := handler.NewChatHandler(assistantClient, commerceService, log)
	cartHandler := handler.NewCartHandler(commerceService, log)
	catalogHandler := handler.NewCatalogHandler(exportService, log)
	systemHandler := handler.NewSystemHandler(commerceService.ActiveProvider())

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests from the storefront widget
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Fallbacks for unmatched routes and methods
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(handler.NoRoute())
	engine.NoMethod(handler.NoMethod())

	// Health check endpoint (outside the /api prefix)
	engine.GET("/health", healthHandler(assistantClient, provider.Code()))

	// Widget-facing routes are unversioned; shipped widgets call /api/... directly
	r := router.NewRouter(engine)

	chatRoutes := router.NewDomainGroup("chat", "/chat")
	chatRoutes.POST("", chatHandler.Chat)

	cartRoutes := router.NewDomainGroup("cart", "/cart")
	cartRoutes.POST("/add", cartHandler.AddToCart).
		GET("", cartHandler.GetCart).
		PUT("/update", cartHandler.UpdateCartItem).
		DELETE("/remove", cartHandler.RemoveFromCart)

	// Operator-facing routes live under /internal, away from the widget surface
	internalRoutes := router.NewDomainGroup("internal", "/internal")
	catalogRoutes := internalRoutes.Group("catalog", "/catalog")
	catalogRoutes.GET("/export", catalogHandler.Export).
		GET("/stats", catalogHandler.Stats)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo).
		GET("/ping", systemHandler.Ping)

	r.Register(chatRoutes).
		Register(cartRoutes).
		Register(internalRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness plus the reachability of the assistant
// service. A down assistant degrades chat only, so the endpoint stays 200
// and surfaces the state for monitoring instead.
func healthHandler(assistantClient *assistant.Client, provider commerce.ProviderCode) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		assistantStatus := "ok"
		if !assistantClient.HealthCheck(c.Request.Context()) {
			reqLog := logger.GetGinLogger(c)
			reqLog.Warn("Assistant health check failed")
			status = "degraded"
			assistantStatus = "unreachable"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    status,
			"time":      time.Now().Format(time.RFC3339),
			"provider":  string(provider),
			"assistant": assistantStatus,
		})
	}
}
