package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	log "github.com/sirupsen/logrus"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/config"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/handlers"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/middleware"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/repository"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/services"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/store"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{
		FieldMap: log.FieldMap{log.FieldKeyMsg: "message"},
	})
	log.SetLevel(log.InfoLevel)

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using system environment variables")
	}

	cfg := config.Load()

	if err := config.InitFirebase(cfg.FirebaseCredentialsPath); err != nil {
		log.WithError(err).Fatal("failed to initialize firebase")
	}
	defer config.CloseFirebase()

	schema, err := config.LoadSchema(cfg.SchemaPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load profile schema")
	}

	st := store.NewFirestoreStore(config.FirestoreClient)

	// Repositories
	userRepo := repository.NewUserRepository(st)
	matchRepo := repository.NewMatchRepository(st)
	messageRepo := repository.NewMessageRepository(st)
	notificationRepo := repository.NewNotificationRepository(st)
	eventRepo := repository.NewEventRepository(st)
	schemaRepo := repository.NewSchemaRepository(st)

	// Services
	tokens := services.GetTokenStore()
	notifier := services.NewNotifier(notificationRepo, userRepo, expo.NewPushClient(nil))
	authService := services.NewAuthService(userRepo, schema, tokens)
	profileService := services.NewProfileService(userRepo, schemaRepo, schema)
	resolver := services.NewRoleResolver(schema, services.ExistsViaStore(st))
	chatService := services.NewChatService(matchRepo, messageRepo, notifier)
	matchService := services.NewMatchService(matchRepo, notifier)
	eventService := services.NewEventService(eventRepo, notifier)
	adminService := services.NewAdminService(userRepo, schemaRepo, notifier)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, profileService, resolver, tokens)
	profileHandler := handlers.NewProfileHandler(profileService)
	chatHandler := handlers.NewChatHandler(chatService, matchService)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	streamHandler := handlers.NewStreamHandler(matchRepo, messageRepo, notificationRepo, resolver, tokens)
	eventHandler := handlers.NewEventHandler(eventService)
	adminHandler := handlers.NewAdminHandler(adminService, eventService, matchService)

	router := gin.Default()
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)

			authProtected := auth.Group("")
			authProtected.Use(middleware.AuthMiddleware())
			{
				authProtected.POST("/logout", authHandler.Logout)
				authProtected.POST("/refresh-token", authHandler.RefreshToken)
				authProtected.POST("/update-expo-token", authHandler.UpdateExpoToken)
				authProtected.GET("/me", authHandler.Me)
			}
		}

		profile := api.Group("/profile")
		profile.Use(middleware.AuthMiddleware())
		{
			profile.GET("", profileHandler.GetProfile)
			profile.PUT("", profileHandler.UpdateProfile)
		}

		match := api.Group("/match")
		match.Use(middleware.AuthMiddleware())
		{
			match.GET("", chatHandler.GetMatch)
			match.PUT("/status", chatHandler.UpdateMatchStatus)
		}

		chat := api.Group("/chat")
		chat.Use(middleware.AuthMiddleware())
		{
			chat.GET("", chatHandler.GetThread)
			chat.GET("/stream", streamHandler.ChatStream)
			chat.POST("/messages", chatHandler.SendMessage)
			chat.POST("/typing", chatHandler.Typing)
		}

		notifications := api.Group("/notifications")
		notifications.Use(middleware.AuthMiddleware())
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/stream", streamHandler.NotificationStream)
			notifications.POST("/mark-read", notificationHandler.MarkAllRead)
			notifications.DELETE("", notificationHandler.ClearAll)
		}

		events := api.Group("/events")
		events.Use(middleware.AuthMiddleware())
		{
			events.GET("", eventHandler.Catalog)
			events.POST("/:eventId/interest", eventHandler.ToggleInterest)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.POST("/users/:userId/approve", adminHandler.ApproveUser)
			admin.POST("/events", adminHandler.CreateEvent)
			admin.POST("/events/:eventId/cancel", adminHandler.CancelEvent)
			admin.POST("/matches", adminHandler.CreateMatch)
			admin.POST("/custom-fields", adminHandler.AddCustomField)
			admin.DELETE("/custom-fields/:fieldId", adminHandler.DeleteCustomField)
			admin.GET("/stats/registrations", adminHandler.RegistrationStats)
		}
	}

	log.WithField("port", cfg.Port).Info("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}
