package server

import (
	"encoding/json"
	"fmt"

	"tradepost/internal/models"
	"tradepost/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetItems handles GET /api/items
func (s *Server) GetItems(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	items, err := s.itemService.ListItems(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(items)
}

// CreateItem handles POST /api/items. Price may be a JSON number or string.
func (s *Server) CreateItem(c *fiber.Ctx) error {
	var req struct {
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Price       json.RawMessage `json:"price"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	item, err := s.itemService.CreateItem(c.UserContext(), service.CreateItemInput{
		SellerID:    currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Price:       rawPrice(req.Price),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	c.Location(fmt.Sprintf("/api/items/%d", item.ID))
	return c.Status(fiber.StatusCreated).JSON(item)
}

func rawPrice(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return string(raw)
}

// GetItem handles GET /api/items/:id. When the caller is signed in the
// response also carries their purchase for the item, if any.
func (s *Server) GetItem(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	item, err := s.itemService.GetItem(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	resp := fiber.Map{
		"item":         item,
		"purchase":     nil,
		"can_purchase": false,
	}
	if viewerID, ok := s.optionalUserID(c); ok {
		existing, err := s.purchaseService.FindForBuyer(c.UserContext(), item.ID, viewerID)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		if existing != nil {
			resp["purchase"] = existing
		}
		resp["can_purchase"] = existing == nil && item.IsAvailable() && item.SellerID != viewerID
	}
	return c.JSON(resp)
}

// StartPurchase handles POST /api/items/:id/purchase. A new purchase answers
// 201; an existing one for the same buyer answers 200. Both set Location.
func (s *Server) StartPurchase(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	purchase, created, err := s.purchaseService.StartPurchase(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	c.Location(fmt.Sprintf("/api/purchases/%d", purchase.ID))
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"purchase": purchase,
		"created":  created,
	})
}
