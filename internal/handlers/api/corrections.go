package api

import (
	"log"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"yuvai/internal/db"
	"yuvai/internal/middleware"
	"yuvai/internal/models"
	"yuvai/internal/validation"
)

const (
	maxNoteLength          = 500
	defaultCorrectionLimit = 50
	maxCorrectionLimit     = 200
)

// CorrectionHandler collects user disagreements with verdicts.
type CorrectionHandler struct {
	store db.HistoryStore
}

// NewCorrectionHandler creates a new correction handler.
func NewCorrectionHandler(store db.HistoryStore) *CorrectionHandler {
	return &CorrectionHandler{store: store}
}

// Create stores a correction (fields claim, suggested_verdict, note, evidence_url).
func (h *CorrectionHandler) Create(c fiber.Ctx) error {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var claim, suggested, note, evidence string
	err := bind(c, map[string]*string{
		"claim":             &claim,
		"suggested_verdict": &suggested,
		"note":              &note,
		"evidence_url":      &evidence,
	})
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	claim = strings.TrimSpace(claim)
	suggested = strings.ToUpper(strings.TrimSpace(suggested))
	note = strings.TrimSpace(note)
	evidence = strings.TrimSpace(evidence)

	if ok, msg := validation.ValidateClaim(claim); !ok {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if !models.IsValidVerdictLabel(suggested) {
		return jsonError(c, fiber.StatusBadRequest, "suggested_verdict must be REAL, FAKE or UNVERIFIED")
	}
	if utf8.RuneCountInString(note) > maxNoteLength {
		return jsonError(c, fiber.StatusBadRequest, "note is too long (maximum 500 characters)")
	}
	if evidence != "" {
		if ok, msg := validation.ValidateURL(evidence); !ok {
			return jsonError(c, fiber.StatusBadRequest, msg)
		}
	}

	correction := &models.Correction{
		ID:               uuid.New(),
		Username:         id.Username,
		Claim:            claim,
		SuggestedVerdict: suggested,
		Note:             note,
		EvidenceURL:      evidence,
	}
	if err := h.store.AddCorrection(c.Context(), correction); err != nil {
		log.Printf("Failed to store correction from %s: %v", id.Username, err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to store correction")
	}

	return jsonCreated(c, correction)
}

// List returns recent corrections, newest first (admin only).
func (h *CorrectionHandler) List(c fiber.Ctx) error {
	id, ok := middleware.GetIdentity(c)
	if !ok || !id.IsAdmin() {
		return jsonError(c, fiber.StatusForbidden, "admin access required")
	}

	corrections, err := h.store.ListCorrections(c.Context(), limitParam(c, defaultCorrectionLimit, maxCorrectionLimit))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch corrections")
	}
	if corrections == nil {
		corrections = []models.Correction{}
	}

	return jsonSuccess(c, corrections)
}
