package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"slotshare/internal/caching"
	"slotshare/internal/handlers"
	"slotshare/internal/jobs/background"
	"slotshare/internal/middleware"
	"slotshare/internal/ratelimit"
	"slotshare/internal/repositories"
	"slotshare/internal/services"
	"slotshare/pkg/database"
)

const version = "1.0.0"

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(context.Background(), databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; sessions will not survive a restart")
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		log.Printf("WARNING: ADMIN_TOKEN not set, tenant administration endpoints are disabled")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"

	// Repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	slotRepo := repositories.NewSlotRepo(pool)
	slotPhotoRepo := repositories.NewSlotPhotoRepo(pool)
	reservationRepo := repositories.NewReservationRepo(pool)

	// Cache
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Rate limiter: in-process store by default. Single-instance only; set
	// RATE_LIMIT_STORE=redis so all instances share one counter.
	var limiter *ratelimit.Limiter
	var limiterMemStore *ratelimit.MemoryStore
	if os.Getenv("RATE_LIMIT_STORE") == "redis" {
		limiter = ratelimit.NewLimiter(ratelimit.NewRedisStore(cacheSvc.Client()), ratelimit.DefaultMaxAttempts, ratelimit.DefaultWindow)
	} else {
		limiterMemStore = ratelimit.NewMemoryStore()
		limiter = ratelimit.NewLimiter(limiterMemStore, ratelimit.DefaultMaxAttempts, ratelimit.DefaultWindow)
	}

	// Services
	authSvc := services.NewAuthService(userRepo, tenantRepo, limiter, jwtSecret, 24*time.Hour)
	slotSvc := services.NewSlotService(slotRepo, reservationRepo, cacheSvc)
	reservationSvc := services.NewReservationService(reservationRepo)
	tenantSvc := services.NewTenantService(tenantRepo, cacheSvc)

	storageSvc, err := services.NewStorageService(minioEndpoint, minioAccessKey, minioSecretKey, minioUseSSL, slotRepo, slotPhotoRepo)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}
	if err := storageSvc.EnsureBucket(context.Background()); err != nil {
		log.Printf("WARNING: could not ensure photo bucket: %v", err)
	}

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	slotHandlers := handlers.NewSlotHandlers(slotSvc, storageSvc)
	reservationHandlers := handlers.NewReservationHandlers(reservationSvc)
	tenantHandlers := handlers.NewTenantHandlers(tenantSvc)

	// Background jobs
	scheduler, err := background.NewJobScheduler(reservationRepo, limiterMemStore)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("scheduler shutdown: %v", err)
		}
	}()

	// Echo instance and global middleware
	e := echo.New()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", handlers.HealthCheck)
	e.GET("/health/ready", func(c echo.Context) error {
		return handlers.ReadinessCheck(c, pool)
	})

	v1 := e.Group("/v1")

	// Authentication routes (no JWT; rate limited inside the service)
	auth := v1.Group("/auth")
	auth.POST("/register", authHandlers.Register)
	auth.POST("/login", authHandlers.Login)

	// Protected routes (require a tenant session)
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.SessionConfig([]byte(jwtSecret))))

	protected.GET("/slots", slotHandlers.ListSlots)
	protected.POST("/slots", slotHandlers.CreateSlot)
	protected.GET("/slots/:id", slotHandlers.GetSlot)
	protected.PATCH("/slots/:id", slotHandlers.UpdateSlot)
	protected.DELETE("/slots/:id", slotHandlers.RetireSlot)
	protected.POST("/slots/:id/photos", slotHandlers.UploadSlotPhoto)
	protected.GET("/slots/:id/photos", slotHandlers.ListSlotPhotos)

	protected.GET("/reservations", reservationHandlers.ListReservations)
	protected.POST("/reservations", reservationHandlers.CreateReservation)
	protected.PATCH("/reservations/:id", reservationHandlers.CancelReservation)

	// Operator-only tenant administration
	admin := v1.Group("/admin", middleware.AdminGuard(adminToken))
	admin.POST("/tenants", tenantHandlers.CreateTenant)
	admin.POST("/tenants/rotate", tenantHandlers.RotateTenantCode)

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	go func() {
		log.Printf("slotshare v%s starting on port %d", version, port)
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
