package server

import (
	"tradepost/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyPurchases handles GET /api/purchases
func (s *Server) GetMyPurchases(c *fiber.Ctx) error {
	purchases, err := s.purchaseService.ListForUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(purchases)
}

// GetPurchase handles GET /api/purchases/:id
func (s *Server) GetPurchase(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	thread, err := s.purchaseService.GetThread(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(thread)
}

// SendMessage handles POST /api/purchases/:id/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.purchaseService.SendMessage(c.UserContext(), currentUserID(c), id, req.Body)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// CompletePurchase handles POST /api/purchases/:id/complete
func (s *Server) CompletePurchase(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	purchase, err := s.purchaseService.CompletePurchase(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(purchase)
}
