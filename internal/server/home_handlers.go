package server

import (
	"sort"

	"tradepost/internal/models"

	"github.com/gofiber/fiber/v2"
)

type language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func supportedLanguages() []language {
	out := make([]language, 0, len(models.SupportedLanguages))
	for code, name := range models.SupportedLanguages {
		out = append(out, language{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Home handles GET /api/
func (s *Server) Home(c *fiber.Ctx) error {
	feed, err := s.purchaseService.Home(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(feed)
}

// GetLanguages handles GET /api/languages
func (s *Server) GetLanguages(c *fiber.Ctx) error {
	return c.JSON(supportedLanguages())
}
