package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"

	"glucolog/domain"
	"glucolog/internal/api/presenters"
	"glucolog/pkg/jwt"
)

// UserIDKey holds a uuid.UUID in fiber locals once a bearer token checks out.
const UserIDKey = "user_id"

type Middleware struct {
	allowOrigins string
}

func NewMiddleware(allowOrigins string) Middleware {
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	return Middleware{allowOrigins: allowOrigins}
}

func (m Middleware) CORSMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: m.allowOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	})
}

// AuthMiddleware rejects requests without a valid bearer token.
func (m Middleware) AuthMiddleware(jwtService jwt.JWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedGetToken, domain.ErrTokenNotFound)
		}
		id, err := userID(jwtService, token)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
		}
		c.Locals(UserIDKey, id)
		return c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a token is sent and lets
// anonymous requests through. A token that is sent but invalid is rejected.
func (m Middleware) OptionalAuthMiddleware(jwtService jwt.JWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Next()
		}
		id, err := userID(jwtService, token)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
		}
		c.Locals(UserIDKey, id)
		return c.Next()
	}
}

// CurrentUser returns nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *uuid.UUID {
	id, ok := c.Locals(UserIDKey).(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func userID(jwtService jwt.JWTService, token string) (uuid.UUID, error) {
	raw, err := jwtService.GetUserIDByToken(token)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ErrTokenInvalid
	}
	return id, nil
}
