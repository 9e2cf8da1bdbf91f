package models

// Verdict labels
const (
	VerdictReal       = "REAL"
	VerdictFake       = "FAKE"
	VerdictUnverified = "UNVERIFIED"
	VerdictError      = "ERROR"
)

// Verdict is the analyzer's answer for one claim. Built per request, never stored.
type Verdict struct {
	Label    string   `json:"verdict"`
	Score    int      `json:"score"` // 0-100
	Reasons  []string `json:"reasons"`
	Sources  []Source `json:"sources"`
	DateInfo string   `json:"date_info"`
}

// Source is a search result surfaced alongside a verdict.
type Source struct {
	Domain string `json:"domain"`
	Title  string `json:"title"`
	Link   string `json:"link"`
}

// IsValidVerdictLabel reports whether label is one a user may suggest in a correction.
func IsValidVerdictLabel(label string) bool {
	switch label {
	case VerdictReal, VerdictFake, VerdictUnverified:
		return true
	}
	return false
}
