package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"petsitter-app/internal/config"
	"petsitter-app/internal/handler"
	"petsitter-app/internal/repository"
	"petsitter-app/internal/services"
	"petsitter-app/internal/utils"
)

func main() {
	baseCtx := context.Background()
	ctx, shutdownManager := utils.NewShutdownManager(baseCtx)
	shutdownManager.StartListening()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	db := mongoClient.Database(cfg.MongoDB)

	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Closing MongoDB connection...")
		return mongoClient.Disconnect(ctx)
	})

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("Invalid Redis URL:", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	cache := utils.WrapRedisClient(rdb)

	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Closing Redis connection...")
		return rdb.Close()
	})

	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret)

	userRepo := repository.NewUserRepository(db)
	petRepo := repository.NewPetRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	authService := services.NewAuthService(userRepo, jwtUtil, cache)
	userService := services.NewUserService(userRepo, cache)
	petService := services.NewPetService(petRepo)
	requestService := services.NewRequestService(requestRepo, petService, cache)
	reviewService := services.NewReviewService(reviewRepo, requestService, userService, cache)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	petHandler := handler.NewPetHandler(petService)
	requestHandler := handler.NewRequestHandler(requestService)
	reviewHandler := handler.NewReviewHandler(reviewService)

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authRequired := utils.AuthMiddleware(jwtUtil, cache)

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authRequired, authHandler.Logout)
	}

	users := router.Group("/api/users")
	{
		users.GET("/petsitters", userHandler.GetPetsitters)
		users.GET("", userHandler.GetAll)

		users.GET("/profile", authRequired, userHandler.GetProfile)
		users.PATCH("/profile", authRequired, userHandler.UpdateProfile)
		users.DELETE("/profile", authRequired, userHandler.DeactivateProfile)

		users.GET("/:id", userHandler.GetByID)
	}

	pets := router.Group("/api/pets")
	{
		pets.GET("", petHandler.GetAll)
		pets.GET("/my", authRequired, utils.RequireRoles("client"), petHandler.GetMy)
		pets.GET("/:id", petHandler.GetByID)

		pets.POST("", authRequired, utils.RequireRoles("client"), petHandler.Create)
		pets.PATCH("/:id", authRequired, utils.RequireRoles("client"), petHandler.Update)
		pets.DELETE("/:id", authRequired, utils.RequireRoles("client"), petHandler.Delete)
	}

	requests := router.Group("/api/requests")
	{
		requests.GET("", requestHandler.GetAll)
		requests.GET("/pending", requestHandler.GetPending)
		requests.GET("/my", authRequired, requestHandler.GetMy)
		requests.GET("/statistics", authRequired, requestHandler.GetStatistics)
		requests.GET("/:id", requestHandler.GetByID)

		requests.POST("", authRequired, utils.RequireRoles("client"), requestHandler.Create)
		requests.POST("/:id/accept", authRequired, utils.RequireRoles("petsitter"), requestHandler.Accept)
		requests.PATCH("/:id/status", authRequired, requestHandler.UpdateStatus)
		requests.DELETE("/:id", authRequired, utils.RequireRoles("client"), requestHandler.Cancel)
	}

	reviews := router.Group("/api/reviews")
	{
		reviews.GET("", reviewHandler.GetAll)
		reviews.GET("/petsitter/:id", reviewHandler.GetByPetsitter)
		reviews.GET("/petsitter/:id/statistics", reviewHandler.GetStatistics)
		reviews.GET("/:id", reviewHandler.GetByID)

		reviews.POST("", authRequired, utils.RequireRoles("client"), reviewHandler.Create)
		reviews.PATCH("/:id/toggle-visibility", authRequired, utils.RequireRoles("petsitter"), reviewHandler.ToggleVisibility)
	}

	server := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Petsitter service running on %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Shutting down HTTP server...")
		return server.Shutdown(ctx)
	})

	select {}
}
