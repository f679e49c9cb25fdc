package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/golang-jwt/jwt/v5"
)

const userIDKey = "user_id"

// requireAuth validates the bearer token and stores its subject under
// userIDKey.
func (s *Server) requireAuth() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    []byte(s.cfg.JWT.Secret),
		SigningMethod: "HS256",
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwtv4.Token)
			if !ok {
				return unauthorized(c)
			}
			claims, ok := token.Claims.(jwtv4.MapClaims)
			if !ok {
				return unauthorized(c)
			}
			sub, _ := claims["sub"].(string)
			if sub == "" {
				return unauthorized(c)
			}
			c.Locals(userIDKey, sub)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if err.Error() == "Missing or malformed JWT" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			return unauthorized(c)
		},
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Invalid or expired JWT",
	})
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

// issueToken signs a session token for userID.
func (s *Server) issueToken(userID, email string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   now.Add(s.cfg.JWT.Expiration).Unix(),
		"iat":   now.Unix(),
	})

	signed, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// expiresIn is the lifetime of issued tokens, for clients that cache them.
func (s *Server) expiresIn() time.Duration {
	return s.cfg.JWT.Expiration
}
