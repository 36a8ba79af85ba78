package server

import (
	"tradepost/internal/models"
	"tradepost/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAllUsers handles GET /api/users
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	users, err := s.userService.ListUsers(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(users)
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Language *string `json:"language"`
		Bio      *string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   currentUserID(c),
		Language: req.Language,
		Bio:      req.Bio,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id and includes the user's listings.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	listings, err := s.itemService.ListBySeller(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	user.Listings = listings
	return c.JSON(user)
}
