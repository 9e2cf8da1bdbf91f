package handlers

import (
	"github.com/gofiber/fiber/v3"

	"yuvai/internal/config"
	"yuvai/internal/middleware"
	"yuvai/internal/models"
)

// NewsSource supplies the headlines shown on the home page.
type NewsSource interface {
	Items() []models.NewsItem
}

// HomeHandler renders the claim-checking page.
type HomeHandler struct {
	cfg  *config.Config
	news NewsSource
}

// NewHomeHandler creates a new home handler.
func NewHomeHandler(cfg *config.Config, news NewsSource) *HomeHandler {
	return &HomeHandler{cfg: cfg, news: news}
}

// Index shows the analysis form and the current news board.
func (h *HomeHandler) Index(c fiber.Ctx) error {
	id, _ := middleware.GetIdentity(c)
	return renderPage(c, h.cfg, fiber.StatusOK, "index", fiber.Map{
		"Title":   "Check a claim",
		"User":    id.Username,
		"IsAdmin": id.IsAdmin(),
		"News":    h.news.Items(),
	})
}
