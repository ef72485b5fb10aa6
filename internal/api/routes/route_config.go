package routes

import (
	"github.com/gofiber/fiber/v2"

	"glucolog/domain"
	"glucolog/internal/api/handlers"
	"glucolog/internal/api/presenters"
	"glucolog/internal/middleware"
	"glucolog/pkg/jwt"
)

type Config struct {
	App                 *fiber.App
	MealHandler         handlers.MealHandler
	AIHandler           handlers.AIHandler
	UserHandler         handlers.UserHandler
	UploadHandler       handlers.UploadHandler
	ConversationHandler handlers.ConversationHandler
	Middleware          middleware.Middleware
	JWTService          jwt.JWTService
	// Backend reports the storage backend currently serving requests.
	Backend             func() string
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	api := c.App.Group("/api/v1")
	c.GuestRoute(api)
	c.Auth(api)
	c.User(api)
	c.Meals(api)
	c.AI(api)
	c.Uploads(api)
	c.Conversations(api)
}

func (c *Config) GuestRoute(api fiber.Router) {
	api.Get("/ping", func(ctx *fiber.Ctx) error {
		return presenters.SuccessResponse(ctx, domain.PingResponse{Backend: c.Backend()}, fiber.StatusOK, domain.MessageSuccessPing)
	})
}

func (c *Config) Auth(api fiber.Router) {
	auth := api.Group("/auth")
	auth.Post("/register", c.UserHandler.Register)
	auth.Post("/login", c.UserHandler.Login)
}

func (c *Config) User(api fiber.Router) {
	user := api.Group("/user", c.Middleware.AuthMiddleware(c.JWTService))
	user.Get("/profile", c.UserHandler.GetProfile)
	user.Put("/profile", c.UserHandler.UpdateProfile)
}

func (c *Config) Meals(api fiber.Router) {
	meals := api.Group("/meals", c.Middleware.OptionalAuthMiddleware(c.JWTService))
	meals.Post("", c.MealHandler.LogMeal)
	meals.Get("", c.MealHandler.GetMeals)
	meals.Get("/:id", c.MealHandler.GetMealByID)
	meals.Put("/:id", c.MealHandler.UpdateMeal)
	meals.Delete("/:id", c.MealHandler.DeleteMeal)
}

func (c *Config) AI(api fiber.Router) {
	ai := api.Group("/ai", c.Middleware.OptionalAuthMiddleware(c.JWTService))
	ai.Post("/analyze", c.AIHandler.Analyze)
}

func (c *Config) Uploads(api fiber.Router) {
	uploads := api.Group("/uploads", c.Middleware.OptionalAuthMiddleware(c.JWTService))
	uploads.Post("", c.UploadHandler.UploadPhoto)
}

func (c *Config) Conversations(api fiber.Router) {
	conversations := api.Group("/conversations", c.Middleware.OptionalAuthMiddleware(c.JWTService))
	conversations.Post("", c.ConversationHandler.Start)
	conversations.Get("/:id", c.ConversationHandler.Get)
	conversations.Post("/:id/events", c.ConversationHandler.Dispatch)
	conversations.Delete("/:id", c.ConversationHandler.Cancel)
}
