package main

import (
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/session"
	"backend/internal/websocket"
	"context"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Authorization & Scoping API
// @version         1.0
// @description     Role, permission and province-scoping engine for the branch administration platform.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	if err := database.Seed(db); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	profileRepo := repository.NewProfileRepository(db)
	orgRepo := repository.NewOrgRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	authService := service.NewAuthService(profileRepo, tokenRepo)
	profileService := service.NewProfileService(profileRepo, orgRepo, auditRepo, wsHub)
	orgService := service.NewOrgService(orgRepo)
	userService := service.NewUserService(profileRepo, tokenRepo, auditRepo, wsHub)
	auditService := service.NewAuditService(auditRepo)

	// Each websocket connection owns a session store fed by the profile
	// watcher, with the org directory backing its scope checks.
	orgDirectory := service.NewOrgDirectory(orgRepo)
	if err := orgDirectory.Refresh(context.Background()); err != nil {
		log.Println("WARNING: Failed to load org directory:", err)
	}
	profileWatcher := service.NewProfileWatcher(profileRepo, wsHub)
	newSessionStore := func() *session.Store {
		return session.NewStore(profileWatcher, orgDirectory)
	}

	auth := middleware.NewAuth(profileRepo, middleware.GetJWTSecret())

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(profileService, auth)
	orgHandler := handler.NewOrgHandler(orgService, auth)
	userHandler := handler.NewUserHandler(userService, auth)
	auditHandler := handler.NewAuditHandler(auditService, auth)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret(), newSessionStore)
	})

	// Register API Routes
	api := router.Group("")
	authHandler.RegisterRoutes(api)
	profileHandler.RegisterRoutes(api)
	orgHandler.RegisterRoutes(api)
	userHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
