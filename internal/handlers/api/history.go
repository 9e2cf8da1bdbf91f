package api

import (
	"github.com/gofiber/fiber/v3"

	"yuvai/internal/db"
	"yuvai/internal/middleware"
	"yuvai/internal/models"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HistoryHandler lists a user's past analyses.
type HistoryHandler struct {
	store db.HistoryStore
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(store db.HistoryStore) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// List returns the caller's most recent analyses, newest first.
func (h *HistoryHandler) List(c fiber.Ctx) error {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "authentication required")
	}

	entries, err := h.store.ListHistory(c.Context(), id.Username, limitParam(c, defaultHistoryLimit, maxHistoryLimit))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch history")
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}

	return jsonSuccess(c, entries)
}
