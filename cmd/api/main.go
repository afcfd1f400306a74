package main

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/tastebook/backend/config"
	"github.com/tastebook/backend/internal/api"
	"github.com/tastebook/backend/internal/database"
	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/router"
	"github.com/tastebook/backend/internal/server"
	"github.com/tastebook/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis only backs the recipe-creation rate limiter; the API stays up
	// without it.
	var redisClient *redis.Client
	if redisClient, err = database.NewRedisClient(cfg); err != nil {
		log.Printf("Redis unavailable, rate limiting disabled: %v", err)
		redisClient = nil
	}

	// Image storage is likewise optional; without it, submitted image values
	// are stored verbatim.
	s3Config, err := config.NewS3Config(context.Background())
	if err != nil {
		log.Printf("S3 unavailable, storing image values as-is: %v", err)
		s3Config = nil
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	userService := service.NewUserService(db)
	followService := service.NewFollowService(db)
	recipeService := service.NewRecipeService(db)
	shoppingService := service.NewShoppingListService(db)
	referenceService := service.NewReferenceService(db)
	imageService := service.NewImageService(s3Config)

	var rateLimiter *middleware.RateLimiter
	if redisClient != nil {
		rateLimiter = middleware.NewRecipeCreationRateLimiter(redisClient)
	}

	engine := router.SetupRouter(
		db,
		api.NewAuthHandler(authService),
		api.NewUserHandler(userService, followService, authService),
		api.NewRecipeHandler(recipeService, shoppingService, followService, authService, imageService, rateLimiter),
		api.NewReferenceHandler(referenceService),
	)

	port := cfg.ServerPort
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s", port)
	srv := server.NewServer(engine)
	if err := srv.Start(port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
