package api

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"yuvai/internal/analysis"
	"yuvai/internal/db"
	"yuvai/internal/middleware"
	"yuvai/internal/models"
)

// ClaimAnalyzer is implemented by *analysis.Analyzer.
type ClaimAnalyzer interface {
	Analyze(ctx context.Context, claim, lang string) (*models.Verdict, error)
	Language(lang string) string
}

// AnalyzeHandler serves claim analysis.
type AnalyzeHandler struct {
	analyzer ClaimAnalyzer
	history  db.HistoryStore
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(analyzer ClaimAnalyzer, history db.HistoryStore) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer, history: history}
}

// analyzeResponse flattens the verdict next to the envelope status.
type analyzeResponse struct {
	Status string `json:"status"`
	*models.Verdict
}

// Analyze scores the submitted claim (fields text and lang, form or JSON).
func (h *AnalyzeHandler) Analyze(c fiber.Ctx) error {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var text, lang string
	if err := bind(c, map[string]*string{"text": &text, "lang": &lang}); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	text = strings.TrimSpace(text)

	verdict, err := h.analyzer.Analyze(c.Context(), text, lang)
	if err != nil {
		var inputErr *analysis.InputError
		if errors.As(err, &inputErr) {
			return jsonError(c, fiber.StatusBadRequest, inputErr.Message)
		}
		log.Printf("Analyze failed for %s: %v", id.Username, err)
		return jsonError(c, fiber.StatusInternalServerError, "analysis failed")
	}

	if verdict.Label != models.VerdictError {
		entry := &models.HistoryEntry{
			ID:       uuid.New(),
			Username: id.Username,
			Claim:    text,
			Lang:     h.analyzer.Language(lang),
			Verdict:  verdict.Label,
			Score:    verdict.Score,
		}
		if err := h.history.AppendHistory(c.Context(), entry); err != nil {
			log.Printf("Failed to record history for %s: %v", id.Username, err)
		}
	}

	return c.JSON(analyzeResponse{Status: statusOK, Verdict: verdict})
}
