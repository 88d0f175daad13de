package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "pettycash/api/swagger" // swagger docs
	"pettycash/internal/blob"
	"pettycash/internal/config"
	"pettycash/internal/database"
	"pettycash/internal/handler"
	"pettycash/internal/identity"
	"pettycash/internal/metrics"
	"pettycash/internal/middleware"
	"pettycash/internal/repository"
	"pettycash/internal/service"
	"pettycash/internal/websocket"
	"pettycash/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Petty Cash API
// @version         1.0
// @description     Petty-cash expense requests, review decisions, disbursement exports and user provisioning.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("Logger setup failed: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.PostgresDSN())
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("database migration failed", zap.Error(err))
	}
	zlog.Info("connected to PostgreSQL")

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	requestRepo := repository.NewRequestRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	identityRepo := repository.NewIdentityRepository(db)
	allocator := repository.NewEmployeeIDAllocator(db, txManager, profileRepo)

	var provider identity.Provider
	switch cfg.IdentityProvider {
	case config.IdentityGoTrue:
		provider = identity.NewGoTrue(identity.GoTrueConfig{
			URL:            cfg.SupabaseURL,
			AnonKey:        cfg.SupabaseAnonKey,
			ServiceRoleKey: cfg.SupabaseServiceRoleKey,
			JWTSecret:      cfg.SupabaseJWTSecret,
			Timeout:        cfg.HTTPClientTimeout,
		})
	default:
		provider = identity.NewLocal(identityRepo, cfg.JWTSecret, cfg.JWTTTL)
	}

	var receipts blob.Store
	var localReceipts *blob.Local
	switch cfg.BlobBackend {
	case config.BlobSupabase:
		receipts = blob.NewSupabase(blob.SupabaseConfig{
			URL:        cfg.SupabaseURL,
			ServiceKey: cfg.SupabaseServiceRoleKey,
			Bucket:     cfg.ReceiptsBucket,
			Timeout:    cfg.HTTPClientTimeout,
		})
	default:
		localReceipts, err = blob.NewLocal(cfg.ReceiptsDir, cfg.PublicBaseURL+"/receipts")
		if err != nil {
			zlog.Fatal("receipt store setup failed", zap.Error(err))
		}
		receipts = localReceipts
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			zlog.Warn("redis unreachable, idempotent requests will fail until it recovers", zap.Error(err))
		}
	}
	idempotency := middleware.Idempotency(rdb, cfg.IdempotencyTTL(), zlog.Named("idempotency"))

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(zlog.Named("ws"))
	go wsHub.Run(ctx)

	userService := service.NewUserService(provider, profileRepo)
	requestService := service.NewRequestService(requestRepo, auditRepo, receipts, wsHub, zlog.Named("requests"))
	auditService := service.NewAuditService(auditRepo)
	provisioningService := service.NewProvisioningService(userService, provider, allocator, profileRepo, zlog.Named("provisioning"))

	// Initialize Handlers
	secureCookies := cfg.GinMode == gin.ReleaseMode
	userHandler := handler.NewUserHandler(userService, provisioningService, secureCookies)
	requestHandler := handler.NewRequestHandler(requestService, auditService, idempotency)
	auditHandler := handler.NewAuditHandler(auditService)
	statisticsHandler := handler.NewStatisticsHandler(requestService)
	provisioningHandler := handler.NewProvisioningHandler(provisioningService, idempotency, zlog.Named("provisioning"))

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(zlog.Named("http")), middleware.Metrics())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"authorization", "x-client-info", "apikey", "content-type", "idempotency-key"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, zlog.Named("ratelimit"))
	limiter.StartCleanup(ctx, 10*time.Minute)

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if localReceipts != nil {
		router.Static("/receipts", localReceipts.Root())
	}

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, userService)
	})

	// API Routing
	public := router.Group("", limiter.Handler())
	userHandler.RegisterPublicRoutes(public)
	provisioningHandler.RegisterRoutes(public)

	api := router.Group("/api", middleware.Authenticate(userService), limiter.Handler())
	userHandler.RegisterRoutes(api)
	requestHandler.RegisterRoutes(api)
	statisticsHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
