package config

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"glucolog/internal/api/handlers"
	"glucolog/internal/api/routes"
	"glucolog/internal/logging"
	"glucolog/internal/middleware"
	"glucolog/internal/utils"
	"glucolog/internal/utils/mailing"
	"glucolog/internal/utils/storage"
	"glucolog/pkg/analysis"
	"glucolog/pkg/conversation"
	"glucolog/pkg/jwt"
	"glucolog/pkg/meal"
	backend "glucolog/pkg/storage"
	"glucolog/pkg/user"
)

// bodyLimit fits a storage.MaxPhotoSize image sent as a base64 data URL.
const bodyLimit = storage.MaxPhotoSize*4/3 + 1<<20

// NewApp wires the whole service. db may be nil, and dbErr carries the
// reason a configured database could not be reached; either way the stores
// start on memory.
func NewApp(ctx context.Context, cfg *utils.Config, db *gorm.DB, dbErr error, log logging.Logger, accessLog io.Writer) (*fiber.App, error) {
	utils.InitValidator()
	validator := utils.Validate

	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:   "glucolog",
		BodyLimit: bodyLimit,
	})
	middlewares := middleware.NewMiddleware(cfg.CORSOrigins)

	app.Use(recover.New())

	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   cfg.AppTimezone,
		Output:     accessLog,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3, err := storage.NewAwsS3(ctx, cfg)
	if err != nil {
		return nil, err
	}
	mailer := mailing.NewMailer(mailing.LoadMailConfig(cfg))
	latch := backend.NewLatch(func(cause error) {
		log.Error(ctx, "storage backend failed, switching to in-memory storage for the rest of this process", "error", cause)
		if !cfg.MailConfigured() {
			return
		}
		go func() {
			body := fmt.Sprintf("Glucolog switched to in-memory storage at %s.\n\nCause: %v\n\nData written from now on will be lost on restart.",
				time.Now().Format(time.RFC3339), cause)
			if err := mailer.SendMail(cfg.AlertEmail, "[glucolog] storage fallback engaged", body); err != nil {
				log.Warn(ctx, "failed to send storage alert", "error", err)
			}
		}()
	})

	// Analysis
	var client analysis.Client = analysis.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		client = analysis.NewCachedClient(client, analysis.NewRedisCache(rdb), analysis.DefaultCacheTTL, log)
	}
	gateway := analysis.NewGateway(client, cfg.AITimeout(), log)

	// Repository
	var (
		mealPrimary meal.Store
		userPrimary user.UserRepository
	)
	if db != nil {
		mealPrimary = meal.NewRelationalStore(db)
		userPrimary = user.NewUserRepository(db)
	}
	mealStore := meal.NewFallbackStore(mealPrimary, meal.NewInMemoryStore(), latch)
	userRepository := user.NewFallbackUserRepository(userPrimary, user.NewInMemoryUserRepository(), latch)
	if dbErr != nil {
		latch.Trip(dbErr)
	}

	// Service
	if cfg.JWTSecret == "" {
		log.Warn(ctx, "JWT_SECRET is not set, signing tokens with a random per-process key")
	}
	jwtService := jwt.NewJWTService(cfg.JWTSecret, cfg.JWTTTL())
	mealService := meal.NewMealService(mealStore, gateway, s3, location, log)
	userService := user.NewUserService(userRepository, jwtService, mealService, log)

	runner := conversation.NewRunner(conversation.NewFlow(cfg.SkipPortion, location), gateway, s3, mealService, log)
	conversations := conversation.NewManager(runner, mealService, conversation.DefaultIdleTTL, log)
	go conversations.Run(ctx)

	// Handler
	mealHandler := handlers.NewMealHandler(mealService, validator)
	aiHandler := handlers.NewAIHandler(gateway, validator)
	userHandler := handlers.NewUserHandler(userService, validator)
	uploadHandler := handlers.NewUploadHandler(s3)
	conversationHandler := handlers.NewConversationHandler(conversations, validator)

	// routes
	routesConfig := routes.Config{
		App:                 app,
		MealHandler:         mealHandler,
		AIHandler:           aiHandler,
		UserHandler:         userHandler,
		UploadHandler:       uploadHandler,
		ConversationHandler: conversationHandler,
		Middleware:          middlewares,
		JWTService:          jwtService,
		Backend:             mealStore.Backend,
	}
	routesConfig.Setup()

	log.Info(ctx, "application configured",
		"backend", mealStore.Backend(),
		"s3", s3.Enabled(),
		"gemini", cfg.GeminiAPIKey != "",
		"analysis_cache", cfg.RedisAddr != "",
	)
	return app, nil
}
