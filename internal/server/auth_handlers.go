package server

import (
	"log/slog"
	"time"

	"tradepost/internal/middleware"
	"tradepost/internal/models"
	"tradepost/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Language string `json:"language"`
		Bio      string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Language: req.Language,
		Bio:      req.Bio,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Login(c.UserContext(), req.Username)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/auth/logout. The token's JTI is blacklisted in
// Redis until the token would have expired anyway.
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("jti").(string)
	expiresAt, _ := c.Locals("tokenExpiresAt").(time.Time)

	revoked := false
	if s.redis != nil && jti != "" {
		ttl := time.Until(expiresAt)
		if ttl <= 0 {
			ttl = time.Minute
		}
		if err := s.redis.Set(c.UserContext(), blacklistKey(jti), "1", ttl).Err(); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "failed to revoke token", slog.String("error", err.Error()))
		} else {
			revoked = true
		}
	}

	return c.JSON(fiber.Map{
		"message": "Logged out",
		"revoked": revoked,
	})
}
