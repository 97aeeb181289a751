package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"foamworks/internal/caching"
	"foamworks/internal/handlers"
	"foamworks/internal/jobs/background"
	"foamworks/internal/middleware"
	"foamworks/internal/repositories"
	"foamworks/internal/services"
	"foamworks/pkg/database"
)

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if s := os.Getenv("REDIS_DB"); s != "" {
		if db, err := strconv.Atoi(s); err == nil {
			redisDB = db
		}
	}

	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	minioBucket := os.Getenv("MINIO_BUCKET")
	if minioBucket == "" {
		minioBucket = "foamworks"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	requireCompleted := os.Getenv("REQUIRE_COMPLETED_FOR_PAYMENT") == "true"

	storageSvc, err := services.NewMinioStorageService(minioEndpoint, minioAccessKey, minioSecretKey, minioBucket, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}
	if err := storageSvc.EnsureBucketExists(context.Background()); err != nil {
		log.Printf("WARNING: could not ensure bucket %s exists: %v", minioBucket, err)
	}

	// Create repositories
	usersRepo := repositories.NewUsersRepo(pool)
	settingsRepo := repositories.NewSettingsRepo(pool)
	customersRepo := repositories.NewCustomersRepo(pool)
	inventoryRepo := repositories.NewInventoryRepo(pool)
	equipmentRepo := repositories.NewEquipmentRepo(pool)
	estimatesRepo := repositories.NewEstimatesRepo(pool)
	materialLogsRepo := repositories.NewMaterialLogsRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	authSvc := services.NewAuthService(usersRepo, cacheSvc, jwtSecret)
	syncSvc := services.NewSyncService(pool, settingsRepo, customersRepo, inventoryRepo, equipmentRepo, estimatesRepo, materialLogsRepo, cacheSvc)
	jobsSvc := services.NewJobsService(pool, cacheSvc, requireCompleted)

	// Create handlers
	healthHandlers := handlers.NewHealthHandlers(pool)
	authHandlers := handlers.NewAuthHandlers(authSvc)
	syncHandlers := handlers.NewSyncHandlers(syncSvc)
	jobHandlers := handlers.NewJobHandlers(jobsSvc)
	fileHandlers := handlers.NewFileHandlers(storageSvc, jobsSvc)
	legacyHandlers := handlers.NewLegacyHandlers(authHandlers, syncHandlers, jobHandlers, fileHandlers, usersRepo, jwtSecret)

	jwtConfig := echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(middleware.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints and legacy action adapter (no auth required)
	e.GET("/", healthHandlers.HealthCheck)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.Ready)
	e.POST("/", legacyHandlers.Dispatch)

	// Stored files (photos and PDFs)
	e.GET("/files/*", fileHandlers.Serve)

	// Authentication routes
	auth := e.Group("/v1/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/crew-login", authHandlers.CrewLogin)

	// Protected routes
	protected := e.Group("/v1")
	protected.Use(echojwt.WithConfig(jwtConfig))
	protected.Use(middleware.ResolveTenant(usersRepo))

	protected.POST("/sync/down", syncHandlers.Down)
	protected.POST("/sync/up", syncHandlers.Up)

	protected.POST("/jobs/start", jobHandlers.Start)
	protected.POST("/jobs/complete", jobHandlers.Complete)
	protected.POST("/jobs/paid", jobHandlers.MarkPaid)
	protected.POST("/jobs/delete", jobHandlers.Delete)

	protected.POST("/uploads/photo", fileHandlers.UploadImage)
	protected.POST("/uploads/pdf", fileHandlers.SavePDF)

	// Background reconciliation
	reconciler, err := background.NewReconciler(estimatesRepo)
	if err != nil {
		log.Fatalf("Failed to initialize reconciler: %v", err)
	}
	reconciler.Start()
	defer func() {
		if err := reconciler.Stop(); err != nil {
			log.Printf("Failed to stop reconciler: %v", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
