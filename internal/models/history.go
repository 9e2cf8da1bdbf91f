package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry records one completed analysis for a user.
type HistoryEntry struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Claim     string    `json:"claim"`
	Lang      string    `json:"lang"`
	Verdict   string    `json:"verdict"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// Correction is a user's disagreement with a verdict, kept for review.
type Correction struct {
	ID               uuid.UUID `json:"id"`
	Username         string    `json:"username"`
	Claim            string    `json:"claim"`
	SuggestedVerdict string    `json:"suggested_verdict"`
	Note             string    `json:"note,omitempty"`
	EvidenceURL      string    `json:"evidence_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
