package main

import (
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"blokus/backend/internal/auth"
	"blokus/backend/internal/config"
	"blokus/backend/internal/database"
	"blokus/backend/internal/game"
	"blokus/backend/internal/handler"
	"blokus/backend/internal/hub"
	"blokus/backend/internal/identity"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "blokus/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Blokus Server API
// @version         1.0
// @description     Multiplayer board game server: lobbies, turn-based piece placement and realtime match channels.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database (identity store only; match state is in-memory)
	database.Connect(config.AppConfig.DatabaseURL)

	users := identity.NewStore(database.DB)
	repo := game.NewRepository()
	views := game.NewViews(repo, users)
	liveHub := hub.New(repo, views)
	engine := game.NewEngine(repo, users, liveHub, rand.New(rand.NewSource(time.Now().UnixNano())))
	handler.Init(engine, views, liveHub, users)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("", handler.SearchUsers) // Must be before /:id
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.GET("/:id", handler.GetUserByID)
		}

		// Match routes (protected)
		matchRoutes := apiV1.Group("/matches")
		matchRoutes.Use(auth.AuthMiddleware())
		{
			matchRoutes.GET("", handler.ListMatches)
			matchRoutes.POST("", handler.CreateMatch)
			matchRoutes.GET("/:id", handler.GetRoomView)
			matchRoutes.GET("/:id/game", handler.GetInMatchView)
			matchRoutes.POST("/:id/join", handler.JoinMatch)
			matchRoutes.POST("/:id/exit", handler.ExitMatch)
			matchRoutes.POST("/:id/ready", handler.ReadyMatch)
			matchRoutes.POST("/:id/unready", handler.UnreadyMatch)
			matchRoutes.POST("/:id/start", handler.StartMatch)
			matchRoutes.POST("/:id/place", handler.PlacePiece)

			// Realtime channels
			matchRoutes.GET("/:id/room", handler.MatchRoomSocket)
			matchRoutes.GET("/:id/chat", handler.MatchChatSocket)
		}

		// Global social channel (protected)
		apiV1.GET("/chat", auth.AuthMiddleware(), handler.GlobalChatSocket)
	}

	fmt.Printf("Server is running on %s\n", config.AppConfig.ServerAddress)
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(config.AppConfig.ServerAddress))
}
