package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/driftchat/DriftChat-backend/internal/cache"
	"github.com/driftchat/DriftChat-backend/internal/handlers"
	"github.com/driftchat/DriftChat-backend/internal/handlers/ws"
	"github.com/driftchat/DriftChat-backend/internal/httpx"
	"github.com/driftchat/DriftChat-backend/internal/middleware"
	"github.com/driftchat/DriftChat-backend/internal/repository"
	"github.com/driftchat/DriftChat-backend/internal/service"
	"github.com/driftchat/DriftChat-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "DriftChat Backend",
		// Media uploads up to 50MB + overhead.
		BodyLimit: 52 * 1024 * 1024,
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, redisPassword, redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	presenceCache := cache.NewPresenceCache(redisCache)
	historyCache := cache.NewHistoryCache(redisCache)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	readStateRepo := repository.NewReadStateRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	stickerRepo := repository.NewStickerRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, presenceCache)
	messageService := service.NewMessageService(messageRepo, groupRepo, mediaRepo, stickerRepo, historyCache)
	readStateService := service.NewReadStateService(readStateRepo, messageRepo)
	friendshipService := service.NewFriendshipService(friendshipRepo, userRepo, readStateService)
	groupService := service.NewGroupService(groupRepo, userRepo, messageService)

	// Initialize S3/MinIO storage (best-effort; feature endpoints return 503 if missing)
	var s3Store *storage.S3Storage
	if cfg, err := storage.LoadS3ConfigFromEnv(); err != nil {
		log.Printf("WARNING: S3 storage not configured: %v", err)
	} else if st, err := storage.NewS3Storage(cfg); err != nil {
		log.Printf("WARNING: Failed to initialize S3 storage: %v", err)
	} else {
		s3Store = st
		log.Printf("S3 storage initialized successfully (bucket=%s)", cfg.Bucket)
	}

	avatarService := service.NewAvatarService(userRepo, s3Store)
	var mediaService *service.MediaService
	if s3Store != nil {
		mediaService = service.NewMediaService(mediaRepo, s3Store)
	}

	// Realtime core
	hub := ws.NewHub()
	presence := ws.NewPresenceBroadcaster(hub, userRepo, friendshipRepo, userService)

	// Initialize handlers
	wsHandler := handlers.NewWebSocketHandler(hub, presence, authService, messageService, readStateService, groupService)
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, userRepo, friendshipService, presence)
	friendshipHandler := handlers.NewFriendshipHandler(friendshipService)
	groupHandler := handlers.NewGroupHandler(groupService, hub)
	avatarHandler := handlers.NewAvatarHandler(avatarService)
	mediaHandler := handlers.NewMediaHandler(mediaService, s3Store)
	stickerHandler := handlers.NewStickerHandler(stickerRepo)

	// Public routes
	api := app.Group("/api", middleware.OriginAllowed())
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Protected routes
	protected := api.Group("/", middleware.AuthRequired())
	protected.Get("/users/me", userHandler.GetCurrentUser)
	protected.Put("/users/me", userHandler.UpdateProfile)
	protected.Patch("/users/me/status", userHandler.SetStatus)
	protected.Post(
		"/users/me/avatar",
		limiter.New(limiter.Config{
			Max:        10,
			Expiration: 10 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				if uid, err := httpx.LocalUint(c, "userID"); err == nil {
					return "avatar:" + strconv.FormatUint(uint64(uid), 10)
				}
				return c.IP()
			},
		}),
		avatarHandler.UploadMyAvatar,
	)
	protected.Delete("/users/me/avatar", avatarHandler.DeleteMyAvatar)
	protected.Get("/users/search", userHandler.SearchUsers)
	protected.Get("/users/:id", userHandler.GetUser)

	// Friendship routes
	protected.Post("/friends/requests", friendshipHandler.SendRequest)
	protected.Post("/friends/requests/:id/respond", friendshipHandler.Respond)
	protected.Get("/friends", friendshipHandler.ListFriends)
	protected.Get("/friends/pending", friendshipHandler.ListPending)
	protected.Delete("/friends/:userId", friendshipHandler.Remove)
	protected.Post("/friends/block", friendshipHandler.Block)
	protected.Post("/friends/unblock", friendshipHandler.Unblock)
	protected.Get("/friends/blocked", friendshipHandler.ListBlocked)

	// Group routes
	protected.Post("/groups", groupHandler.CreateGroup)
	protected.Get("/groups", groupHandler.GetMyGroups)
	protected.Post("/groups/:id/join", groupHandler.JoinGroup)
	protected.Post("/groups/:id/leave", groupHandler.LeaveGroup)
	protected.Post("/groups/:id/invite", groupHandler.InviteMember)
	protected.Post("/groups/:id/kick", groupHandler.KickMember)
	protected.Get("/groups/:id/members", groupHandler.GetGroupMembers)

	// Media and sticker routes
	protected.Post("/media", mediaHandler.Upload)
	protected.Get("/media/*", mediaHandler.GetObject)
	protected.Get("/stickers", stickerHandler.List)

	// WebSocket route: no HTTP auth middleware here, the connection
	// authenticates in-band with an IDENTIFY frame.
	app.Use(
		"/ws",
		middleware.OriginAllowed(),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "DriftChat is running",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
