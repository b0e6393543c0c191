package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"handicapper/internal/config"
	"handicapper/internal/handlers"
	"handicapper/internal/middleware"
	"handicapper/internal/repositories/mongodb"
	"handicapper/internal/services"
	"handicapper/internal/utils"
	"handicapper/pkg/cache"
	"handicapper/pkg/database"
	"handicapper/pkg/firebaseauth"
	"handicapper/pkg/logger"
	"handicapper/pkg/oauth"
	"handicapper/pkg/payment"
	"handicapper/pkg/push"
	"handicapper/pkg/storage"
	"handicapper/pkg/websocket"
	"handicapper/routes"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  "stdout",
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage backends
	mongo, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
		AppName:        cfg.App.Name,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer mongo.Close()

	if cfg.Database.RunMigrations {
		if err := database.NewMigrator(mongo.Database, appLogger).Up(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to run migrations")
		}
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		KeyPrefix:    cfg.Redis.KeyPrefix,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	// Repositories
	db := mongo.Database
	userRepo := mongodb.NewUserRepository(db, redisCache)
	reviewRepo := mongodb.NewReviewRepository(db)
	pickRepo := mongodb.NewPickRepository(db)
	interactionRepo := mongodb.NewPickInteractionRepository(db)
	transactionRepo := mongodb.NewTransactionRepository(db)
	subscriptionRepo := mongodb.NewSubscriptionRepository(db)
	followRepo := mongodb.NewFollowRepository(db)
	tokenRepo := mongodb.NewNotificationTokenRepository(db)
	analyticsRepo := mongodb.NewAnalyticsRepository(db)
	chatRepo := mongodb.NewChatRepository(db)

	// External providers. Anything left unconfigured stays a nil interface
	// and the dependent feature degrades.
	var firebaseApp *firebase.App
	if cfg.Firebase.Configured() {
		firebaseApp, err = firebaseauth.NewApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize Firebase")
		}
	}

	var fcmProvider, apnsProvider push.PushProvider
	if cfg.Push.Enabled && firebaseApp != nil {
		fcm, err := push.NewFCMProvider(ctx, firebaseApp)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize FCM")
		}
		fcmProvider = fcm
	}
	if cfg.Push.Enabled && cfg.Push.APNS.Configured() {
		apns, err := push.NewAPNSProvider(cfg.Push.APNS.KeyFile, cfg.Push.APNS.KeyID, cfg.Push.APNS.TeamID, cfg.Push.APNS.BundleID, cfg.Push.APNS.Production)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize APNs")
		}
		apnsProvider = apns
	}

	var identityVerifier services.IdentityVerifier
	if firebaseApp != nil {
		verifier, err := firebaseauth.NewVerifier(ctx, firebaseApp)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize Firebase auth")
		}
		identityVerifier = verifier
	}

	var oauthProviders []oauth.OAuthProvider
	if cfg.OAuth.Google.ClientID != "" {
		google := cfg.OAuth.Google
		oauthProviders = append(oauthProviders, oauth.NewGoogleOAuthProvider(google.ClientID, google.ClientSecret, google.RedirectURL, google.Scopes))
	}
	if cfg.OAuth.Apple.ClientID != "" {
		apple := cfg.OAuth.Apple
		provider, err := oauth.NewAppleOAuthProvider(apple.ClientID, apple.TeamID, apple.KeyID, apple.KeyFile, apple.RedirectURL)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize Sign in with Apple")
		}
		oauthProviders = append(oauthProviders, provider)
	}

	paymentProvider := payment.NewStripeProvider(cfg.Payment.Stripe.SecretKey, cfg.Payment.Stripe.WebhookSecret)

	storageProvider, err := newStorageProvider(ctx, cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}

	// Live chat
	hub := websocket.NewHub(appLogger)
	wsHandler := websocket.NewHandler(ctx, hub, websocket.HandlerConfig{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		AllowedOrigins:  cfg.WebSocket.AllowedOrigins,
		Client: websocket.ClientOptions{
			PingInterval:   cfg.WebSocket.PingInterval,
			PongTimeout:    cfg.WebSocket.PongTimeout,
			MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		},
	})

	// Services
	analyticsService := services.NewAnalyticsService(analyticsRepo, redisCache, cfg.Analytics, appLogger)
	notificationService := services.NewNotificationService(tokenRepo, subscriptionRepo, fcmProvider, apnsProvider, appLogger)
	tokenIssuer := utils.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.JWTAccessTokenTTL, cfg.Security.JWTRefreshTokenTTL)
	authService := services.NewAuthService(userRepo, oauthProviders, identityVerifier, tokenIssuer, analyticsService, appLogger)
	userService := services.NewUserService(userRepo, storageProvider, analyticsService, cfg.Storage.MaxAvatarSize, appLogger)
	reviewService := services.NewReviewService(reviewRepo, transactionRepo, userRepo, analyticsService, appLogger)
	pickService := services.NewPickService(pickRepo, interactionRepo, userRepo, followRepo, notificationService, analyticsService, cfg.Features, appLogger)
	followingService := services.NewFollowingService(followRepo, userRepo, redisCache, analyticsService, appLogger)
	purchaseService := services.NewPurchaseService(transactionRepo, subscriptionRepo, pickRepo, interactionRepo, paymentProvider, notificationService, analyticsService, cfg.Payment, appLogger)
	chatService := services.NewChatService(chatRepo, userRepo, hub, analyticsService, appLogger)

	hub.OnMessage(chatService.HandleInbound)
	go hub.Run(ctx)
	go runSubscriptionReminders(ctx, notificationService, cfg.Push.ReminderInterval, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	reviewHandler := handlers.NewReviewHandler(reviewService, userService)
	handicapperHandler := handlers.NewHandicapperHandler(userService, pickService, purchaseService, followingService)
	pickHandler := handlers.NewPickHandler(pickService)
	followHandler := handlers.NewFollowHandler(followingService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	userHandler := handlers.NewUserHandler(userService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	chatHandler := handlers.NewChatHandler(chatService)

	// Initialize Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		appLogger.WithError(err).Fatal("Invalid trusted proxies")
	}

	// Global middleware. Logging and metrics wrap recovery so panics are
	// recorded as 500s.
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RecoveryMiddleware(appLogger))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))

	// API routes
	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, authHandler)
		routes.SetupReviewRoutes(v1, authService, reviewHandler, handicapperHandler)
		routes.SetupPickRoutes(v1, authService, pickHandler)
		routes.SetupFollowRoutes(v1, authService, followHandler)
		routes.SetupPurchaseRoutes(v1, authService, purchaseHandler)
		routes.SetupUserRoutes(v1, authService, userHandler, notificationHandler)
		routes.SetupChatRoutes(v1, authService, chatHandler, wsHandler)
	}

	if cfg.Storage.Provider == "local" {
		router.Static("/uploads", cfg.Storage.Local.BasePath)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		health := gin.H{
			"status":      "healthy",
			"version":     cfg.App.Version,
			"connections": hub.ConnectionCount(),
		}
		if err := mongo.Client.Ping(c.Request.Context(), nil); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "unhealthy"
			health["database"] = err.Error()
		}
		if err := redisCache.Ping(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "unhealthy"
			health["cache"] = err.Error()
		}
		c.JSON(status, health)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Start server
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server shutdown failed")
	}
}

func newStorageProvider(ctx context.Context, cfg *config.StorageConfig) (storage.StorageProvider, error) {
	switch cfg.Provider {
	case "s3":
		return storage.NewAWSS3Storage(ctx, cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.CDNDomain)
	case "gcs":
		return storage.NewGCSStorage(ctx, cfg.GCS.Bucket, cfg.GCS.CredentialsFile, cfg.GCS.CDNDomain)
	case "local", "":
		return storage.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// runSubscriptionReminders sweeps for subscriptions that end within the
// next interval and pushes a renewal or expiry notice for each.
func runSubscriptionReminders(ctx context.Context, notifications services.NotificationService, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sent := notifications.SendExpiringSubscriptionNotices(ctx, interval)
			log.WithField("subscriptions", sent).Info("Subscription reminder sweep finished")
		}
	}
}
