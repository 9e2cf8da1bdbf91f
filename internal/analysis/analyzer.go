// Package analysis turns a claim and its search results into a verdict.
//
// The heuristic is stateless: every constant and list is fixed at startup.
// A trusted or fact-checking site that pairs the claim with a negation keyword
// ("hoax", "debunked", "لا صحة") settles the verdict as FAKE. Otherwise each
// trusted confirmation raises the score from a neutral baseline and each
// contradiction lowers it, and the clamped score is mapped onto a label.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"yuvai/internal/config"
	"yuvai/internal/metrics"
	"yuvai/internal/models"
	"yuvai/internal/search"
	"yuvai/internal/validation"
)

// Scoring constants.
const (
	BaselineScore        = 50
	TrustedBonus         = 25
	RelevanceBonus       = 10 // trusted confirmation that shares MinKeywordOverlap claim keywords
	FactCheckerBonus     = 5
	ContradictionPenalty = 20
	RealThreshold        = 80 // score >= RealThreshold is REAL
	FakeThreshold        = 35 // score <= FakeThreshold is FAKE
	ConfirmedFakeScore   = 15
	MinKeywordOverlap    = 2
	MaxReasons           = 2
	MaxSources           = 5
)

// Reason texts that do not cite a domain.
const (
	ReasonNoResults        = "No search results were found for this claim"
	ReasonNoConfirmation   = "No trusted source confirmed this claim"
	ReasonConnectionFailed = "Could not connect to the search service, please try again later"
	ReasonBadUpstream      = "The search service returned an unusable response"
)

// InputError reports a claim rejected by the input-quality check.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// Analyzer scores claims against web search results.
type Analyzer struct {
	lists    *config.CredibilityConfig
	searcher search.Searcher
	now      func() time.Time
}

// New creates an analyzer over the given credibility lists and search backend.
func New(lists *config.CredibilityConfig, searcher search.Searcher) *Analyzer {
	return &Analyzer{
		lists:    lists,
		searcher: searcher,
		now:      time.Now,
	}
}

// Language returns the canonical language tag used for lang.
func (a *Analyzer) Language(lang string) string {
	return a.lists.Resolve(lang)
}

// Analyze validates the claim, runs one search and scores the results.
// The only error it returns is *InputError; upstream failures become
// ERROR or UNVERIFIED verdicts.
func (a *Analyzer) Analyze(ctx context.Context, claim, lang string) (*models.Verdict, error) {
	claim = strings.TrimSpace(claim)
	if ok, msg := validation.ValidateClaim(claim); !ok {
		return nil, &InputError{Message: msg}
	}

	lc := a.lists.For(lang)
	results, err := a.searcher.Search(ctx, search.Query{
		Q:       lc.Query(claim),
		Region:  lc.Region,
		Lang:    lc.SearchLanguage,
		Recency: lc.RecencyFilter(claim),
	})

	var v *models.Verdict
	if err != nil {
		v = a.failure(err)
	} else {
		v = a.score(claim, lc, results)
	}

	metrics.RecordVerdict(v.Label)
	return v, nil
}

// failure maps a search error to a fixed fallback verdict.
func (a *Analyzer) failure(err error) *models.Verdict {
	v := &models.Verdict{
		Sources:  []models.Source{},
		DateInfo: a.today(),
	}
	if errors.Is(err, search.ErrUnavailable) {
		v.Label = models.VerdictError
		v.Score = 0
		v.Reasons = []string{ReasonConnectionFailed}
		return v
	}
	v.Label = models.VerdictUnverified
	v.Score = BaselineScore
	v.Reasons = []string{ReasonBadUpstream}
	return v
}

func (a *Analyzer) score(claim string, lc *config.LanguageConfig, results []search.Result) *models.Verdict {
	v := &models.Verdict{
		Sources:  sourcesOf(results),
		DateInfo: a.dateInfo(results),
	}

	if len(results) == 0 {
		v.Label = models.VerdictUnverified
		v.Score = BaselineScore
		v.Reasons = []string{ReasonNoResults}
		return v
	}

	keywords := keywordsOf(claim)
	score := BaselineScore
	var reasons []string

	for _, r := range results {
		text := r.Title + " " + r.Snippet
		trustedDomain, trusted := lc.IsTrusted(r.Link)
		checkerDomain, checker := lc.IsFactChecker(r.Link)

		if (trusted || checker) && lc.HasNegation(text) {
			domain := trustedDomain
			if checker {
				domain = checkerDomain
			}
			v.Label = models.VerdictFake
			v.Score = ConfirmedFakeScore
			v.Reasons = capReasons(append([]string{fmt.Sprintf("Debunked by %s", domain)}, reasons...))
			return v
		}

		if trusted {
			score += TrustedBonus
			reasons = append(reasons, fmt.Sprintf("Confirmed by trusted source %s", trustedDomain))
			if overlap(keywords, text) >= MinKeywordOverlap {
				score += RelevanceBonus
			}
		}

		if checker {
			score += FactCheckerBonus
			reasons = append(reasons, fmt.Sprintf("Reviewed by fact-checker %s with no false rating", checkerDomain))
		}

		if trusted || checker {
			if said, found, ok := lc.Opposite(claim, text); ok {
				score -= ContradictionPenalty
				reasons = append(reasons, fmt.Sprintf("%s reports %q where the claim says %q", hostOf(r.Link), found, said))
			}
		}
	}

	v.Score = clamp(score, 0, 100)
	switch {
	case v.Score >= RealThreshold:
		v.Label = models.VerdictReal
	case v.Score <= FakeThreshold:
		v.Label = models.VerdictFake
	default:
		v.Label = models.VerdictUnverified
	}

	if len(reasons) == 0 {
		reasons = []string{ReasonNoConfirmation}
	}
	v.Reasons = capReasons(reasons)
	return v
}

func (a *Analyzer) today() string {
	return a.now().Format("2006-01-02")
}

// dateInfo is the first dated result, or today's date.
func (a *Analyzer) dateInfo(results []search.Result) string {
	for _, r := range results {
		if r.Date != "" {
			return r.Date
		}
	}
	return a.today()
}

func sourcesOf(results []search.Result) []models.Source {
	n := min(len(results), MaxSources)
	out := make([]models.Source, 0, n)
	for _, r := range results[:n] {
		out = append(out, models.Source{
			Domain: hostOf(r.Link),
			Title:  r.Title,
			Link:   r.Link,
		})
	}
	return out
}

// capReasons drops duplicates, keeping first occurrences, then truncates.
func capReasons(reasons []string) []string {
	seen := make(map[string]bool, len(reasons))
	out := make([]string, 0, MaxReasons)
	for _, r := range reasons {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
		if len(out) == MaxReasons {
			break
		}
	}
	return out
}

var stopwords = map[string]bool{
	"about": true, "after": true, "been": true, "from": true, "have": true,
	"said": true, "says": true, "that": true, "their": true, "there": true,
	"they": true, "this": true, "truth": true, "were": true, "what": true,
	"when": true, "with": true, "will": true, "reports": true, "report": true,
}

// keywordsOf returns the claim words long enough to be meaningful.
func keywordsOf(claim string) map[string]bool {
	out := make(map[string]bool)
	for w := range config.Words(claim) {
		if utf8.RuneCountInString(w) >= 4 && !stopwords[w] {
			out[w] = true
		}
	}
	return out
}

func overlap(keywords map[string]bool, text string) int {
	n := 0
	for w := range config.Words(text) {
		if keywords[w] {
			n++
		}
	}
	return n
}

func hostOf(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return link
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}
