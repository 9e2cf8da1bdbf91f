package api

import (
	"github.com/gofiber/fiber/v3"

	"yuvai/internal/models"
)

// NewsSource supplies the current headline board.
type NewsSource interface {
	Items() []models.NewsItem
}

// NewsHandler exposes the headline board as JSON.
type NewsHandler struct {
	news NewsSource
}

// NewNewsHandler creates a new news handler.
func NewNewsHandler(news NewsSource) *NewsHandler {
	return &NewsHandler{news: news}
}

// List returns the current headlines.
func (h *NewsHandler) List(c fiber.Ctx) error {
	return jsonSuccess(c, h.news.Items())
}
