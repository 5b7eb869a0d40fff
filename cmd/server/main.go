package main

import (
	"fmt"
	"log"
	"net/http"

	"synapo/backend/internal/auth"
	"synapo/backend/internal/config"
	"synapo/backend/internal/database"
	"synapo/backend/internal/handler"
	"synapo/backend/internal/service"

	"github.com/gin-gonic/gin"
)

func init() {
	config.LoadConfig()
}

// @title           Synapo API
// @version         1.0
// @description     This is the API for the Synapo social network.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)
	defer database.Close()

	// Core services share the one connection pool
	social := service.NewSocialService(database.DB)
	recommend := service.NewRecommendService(database.DB)
	chats := service.NewChatService(database.DB)

	authHandler := &handler.AuthHandler{DB: database.DB}
	users := &handler.UserHandler{DB: database.DB, Social: social, Recommend: recommend}
	friends := &handler.FriendHandler{DB: database.DB, Social: social}
	groups := &handler.GroupHandler{DB: database.DB, Social: social, Recommend: recommend}
	chatHandler := &handler.ChatHandler{Chats: chats}

	router := gin.Default()

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
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}

		// Interest catalog (public)
		apiV1.GET("/interests", users.ListInterests)

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("", users.SearchUsers) // Must be before /:id
			userRoutes.GET("/me", users.GetMe)
			userRoutes.DELETE("/me", users.DeleteMe)
			userRoutes.PUT("/me/interests", users.UpdateInterests)
			userRoutes.GET("/me/friends", friends.ListFriends)
			userRoutes.GET("/me/requests", friends.ListRequests)
			userRoutes.GET("/:id", users.GetUserByID)
			userRoutes.GET("/:id/recommendations", users.FriendRecommendations)
			userRoutes.GET("/:id/groups", groups.UserGroups)

			// Friendship routes
			userRoutes.POST("/:id/request", friends.SendRequest)
			userRoutes.POST("/:id/accept", friends.AcceptRequest)
			userRoutes.POST("/:id/decline", friends.DeclineRequest)
			userRoutes.POST("/:id/friend", friends.AddFriend)
		}

		// Group directory (public; a token enriches the results)
		groupBrowse := apiV1.Group("/groups")
		groupBrowse.Use(auth.OptionalAuthMiddleware())
		{
			groupBrowse.GET("", groups.ListGroups)
			groupBrowse.GET("/search", groups.SearchGroups)
			groupBrowse.GET("/:id", groups.GetGroupByID)
		}

		// Group routes (protected)
		groupRoutes := apiV1.Group("/groups")
		groupRoutes.Use(auth.AuthMiddleware())
		{
			groupRoutes.POST("", groups.CreateGroup)
			groupRoutes.GET("/recommendations", groups.GroupRecommendations)
			groupRoutes.GET("/active", groups.ActiveGroups)
			groupRoutes.GET("/:id/members", groups.GroupMembers)
			groupRoutes.GET("/:id/events", groups.GroupEvents)
			groupRoutes.POST("/:id/events", groups.CreateEvent)
			groupRoutes.POST("/:id/join", groups.JoinGroup)
			groupRoutes.POST("/:id/leave", groups.LeaveGroup)
			groupRoutes.GET("/:id/messages", chatHandler.GroupMessages)
			groupRoutes.POST("/:id/messages", chatHandler.SendGroupMessage)
		}

		// Chat routes (protected)
		chatRoutes := apiV1.Group("/chats")
		chatRoutes.Use(auth.AuthMiddleware())
		{
			chatRoutes.GET("/direct/:id", chatHandler.DirectMessages)
			chatRoutes.POST("/direct/:id", chatHandler.SendDirectMessage)
		}
	}

	addr := ":" + config.AppConfig.Port
	fmt.Printf("Server is running on %s\n", addr)
	log.Fatal(router.Run(addr))
}
