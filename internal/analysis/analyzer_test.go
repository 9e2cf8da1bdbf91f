package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"yuvai/internal/config"
	"yuvai/internal/models"
	"yuvai/internal/search"
)

type fakeSearcher struct {
	results []search.Result
	err     error
	calls   int
	last    search.Query
}

func (f *fakeSearcher) Search(_ context.Context, q search.Query) ([]search.Result, error) {
	f.calls++
	f.last = q
	return f.results, f.err
}

func newTestAnalyzer(t *testing.T, fs *fakeSearcher) *Analyzer {
	t.Helper()
	lists, err := config.LoadCredibility("")
	if err != nil {
		t.Fatalf("LoadCredibility() error = %v", err)
	}
	a := New(lists, fs)
	a.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return a
}

func TestAnalyze_RejectsLowQualityInput(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"hello world",
		"123 456 789 000",
		"!!! ??? ...",
		strings.Repeat("word ", 300),
	}

	for _, claim := range tests {
		t.Run(fmt.Sprintf("%.20q", claim), func(t *testing.T) {
			fs := &fakeSearcher{}
			a := newTestAnalyzer(t, fs)

			v, err := a.Analyze(context.Background(), claim, "en")
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("Analyze() error = %v, want *InputError", err)
			}
			if inputErr.Message == "" {
				t.Error("InputError has no message")
			}
			if v != nil {
				t.Errorf("Analyze() verdict = %+v, want nil", v)
			}
			if fs.calls != 0 {
				t.Errorf("search called %d times, want 0", fs.calls)
			}
		})
	}
}

func TestAnalyze_BuildsQuery(t *testing.T) {
	tests := []struct {
		claim   string
		lang    string
		wantQ   string
		wantGL  string
		wantTBS string
	}{
		{"Peace treaty signed today", "en", "truth about Peace treaty signed today", "us", "qdr:d"},
		{"Celebrity X died yesterday", "", "truth about Celebrity X died yesterday", "us", "qdr:w"},
		{"Water boils at sea level", "xx", "truth about Water boils at sea level", "us", ""},
		{"انخفاض أسعار الذهب اليوم", "ar", "انخفاض أسعار الذهب اليوم حقيقة", "eg", "qdr:d"},
	}

	for _, tt := range tests {
		t.Run(tt.claim, func(t *testing.T) {
			fs := &fakeSearcher{}
			if _, err := newTestAnalyzer(t, fs).Analyze(context.Background(), tt.claim, tt.lang); err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if fs.last.Q != tt.wantQ {
				t.Errorf("query = %q, want %q", fs.last.Q, tt.wantQ)
			}
			if fs.last.Region != tt.wantGL {
				t.Errorf("region = %q, want %q", fs.last.Region, tt.wantGL)
			}
			if fs.last.Recency != tt.wantTBS {
				t.Errorf("recency = %q, want %q", fs.last.Recency, tt.wantTBS)
			}
		})
	}
}

func TestAnalyze_NoResults(t *testing.T) {
	a := newTestAnalyzer(t, &fakeSearcher{})

	v, err := a.Analyze(context.Background(), "Aliens landed in the city square", "en")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if v.Label != models.VerdictUnverified {
		t.Errorf("Label = %s, want UNVERIFIED", v.Label)
	}
	if v.Score != BaselineScore {
		t.Errorf("Score = %d, want %d", v.Score, BaselineScore)
	}
	if len(v.Reasons) == 0 {
		t.Error("Reasons should not be empty")
	}
	if v.DateInfo != "2026-03-14" {
		t.Errorf("DateInfo = %q, want today", v.DateInfo)
	}
}

func TestAnalyze_TrustedConfirmation(t *testing.T) {
	fs := &fakeSearcher{results: []search.Result{
		{Title: "Peace treaty signed", Snippet: "Leaders met in Geneva", Link: "https://www.bbc.com/news/world-123", Date: "Mar 13, 2026"},
	}}
	a := newTestAnalyzer(t, fs)

	v, err := a.Analyze(context.Background(), "BBC reports peace treaty signed today", "en")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if v.Label != models.VerdictReal {
		t.Errorf("Label = %s, want REAL", v.Label)
	}
	if v.Score < RealThreshold {
		t.Errorf("Score = %d, want >= %d", v.Score, RealThreshold)
	}
	if len(v.Sources) != 1 || v.Sources[0].Domain != "bbc.com" {
		t.Errorf("Sources = %+v, want the bbc.com entry", v.Sources)
	}
	if v.DateInfo != "Mar 13, 2026" {
		t.Errorf("DateInfo = %q, want first result date", v.DateInfo)
	}
	if !strings.Contains(v.Reasons[0], "bbc.com") {
		t.Errorf("Reasons = %v, want a reason citing bbc.com", v.Reasons)
	}
}

func TestAnalyze_FactCheckerDebunk(t *testing.T) {
	fs := &fakeSearcher{results: []search.Result{
		{Title: "Celebrity X death hoax", Snippet: "Reports are false", Link: "https://www.snopes.com/fact-check/celebrity-x"},
	}}
	a := newTestAnalyzer(t, fs)

	v, err := a.Analyze(context.Background(), "Celebrity X died yesterday", "en")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if v.Label != models.VerdictFake {
		t.Errorf("Label = %s, want FAKE", v.Label)
	}
	if v.Score > 20 {
		t.Errorf("Score = %d, want <= 20", v.Score)
	}
	if len(v.Reasons) == 0 || !strings.Contains(v.Reasons[0], "snopes.com") {
		t.Errorf("Reasons = %v, want a reason citing snopes.com", v.Reasons)
	}
}

func TestAnalyze_Arabic(t *testing.T) {
	tests := []struct {
		name      string
		claim     string
		result    search.Result
		wantLabel string
		wantScore int
		wantCite  string
	}{
		{
			name:      "confirmation containing a negation-like stem",
			claim:     "الحكومة تعلن تنفيذ اتفاق السلام",
			result:    search.Result{Title: "بدء تنفيذ اتفاق السلام اليوم", Link: "https://www.aljazeera.net/news/2026/3/14/peace"},
			wantLabel: models.VerdictReal,
			wantScore: BaselineScore + TrustedBonus + RelevanceBonus,
			wantCite:  "aljazeera.net",
		},
		{
			name:      "fact-checker phrase debunks",
			claim:     "توقيع اتفاق السلام بين البلدين",
			result:    search.Result{Title: "لا صحة لخبر توقيع اتفاق السلام", Link: "https://misbar.com/factcheck/2026/03/14/peace"},
			wantLabel: models.VerdictFake,
			wantScore: ConfirmedFakeScore,
			wantCite:  "Debunked by misbar.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeSearcher{results: []search.Result{tt.result}}
			a := newTestAnalyzer(t, fs)

			v, err := a.Analyze(context.Background(), tt.claim, "ar")
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if v.Label != tt.wantLabel || v.Score != tt.wantScore {
				t.Errorf("verdict = %s %d, want %s %d", v.Label, v.Score, tt.wantLabel, tt.wantScore)
			}
			if len(v.Reasons) == 0 || !strings.Contains(v.Reasons[0], tt.wantCite) {
				t.Errorf("Reasons = %v, want first reason citing %q", v.Reasons, tt.wantCite)
			}
		})
	}
}

func TestAnalyze_DebunkOverridesPositiveScore(t *testing.T) {
	fs := &fakeSearcher{results: []search.Result{
		{Title: "Storm hits coast", Snippet: "storm coast damage", Link: "https://www.reuters.com/a"},
		{Title: "Storm hits coast", Snippet: "storm coast damage", Link: "https://apnews.com/b"},
		{Title: "Storm hits coast", Snippet: "storm coast damage", Link: "https://www.bbc.co.uk/c"},
		{Title: "Viral storm photo is doctored", Link: "https://www.politifact.com/d"},
		{Title: "Storm hits coast", Snippet: "storm coast damage", Link: "https://www.nytimes.com/e"},
	}}
	a := newTestAnalyzer(t, fs)

	v, err := a.Analyze(context.Background(), "Giant storm hits the coast", "en")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if v.Label != models.VerdictFake || v.Score != ConfirmedFakeScore {
		t.Errorf("verdict = %s %d, want FAKE %d", v.Label, v.Score, ConfirmedFakeScore)
	}
	if !strings.Contains(v.Reasons[0], "politifact.com") {
		t.Errorf("Reasons[0] = %q, want the debunking domain first", v.Reasons[0])
	}
	if len(v.Sources) != 5 {
		t.Errorf("Sources = %d, want 5", len(v.Sources))
	}
}

func TestAnalyze_ScoreBoundsAndReasonCap(t *testing.T) {
	var results []search.Result
	for i := range 12 {
		results = append(results, search.Result{
			Title:   "Central bank raises interest rates",
			Snippet: "The central bank raised rates",
			Link:    fmt.Sprintf("https://www.reuters.com/markets/%d", i),
		})
	}
	results = append(results, search.Result{Title: "Rates", Link: "https://www.theguardian.com/x"})
	a := newTestAnalyzer(t, &fakeSearcher{results: results})

	v, err := a.Analyze(context.Background(), "Central bank raises interest rates", "en")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if v.Score < 0 || v.Score > 100 {
		t.Errorf("Score = %d, want within [0,100]", v.Score)
	}
	if v.Score != 100 {
		t.Errorf("Score = %d, want clamped to 100", v.Score)
	}
	if len(v.Reasons) > MaxReasons {
		t.Errorf("Reasons = %d, want <= %d", len(v.Reasons), MaxReasons)
	}
	seen := map[string]bool{}
	for _, r := range v.Reasons {
		if seen[r] {
			t.Errorf("duplicate reason %q", r)
		}
		seen[r] = true
	}
	if len(v.Sources) != MaxSources {
		t.Errorf("Sources = %d, want %d", len(v.Sources), MaxSources)
	}
}

func TestAnalyze_Contradictions(t *testing.T) {
	var results []search.Result
	for _, link := range []string{"https://www.reuters.com/a", "https://apnews.com/b", "https://www.bbc.com/c"} {
		results = append(results, search.Result{Title: "Crowd celebrates win at stadium", Link: link})
	}
	a := newTestAnalyzer(t, &fakeSearcher{results: results})

	v, err := a.Analyze(context.Background(), "Home team suffered a loss", "en")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	// each result: +25 trusted, -20 contradiction
	if want := BaselineScore + 3*(TrustedBonus-ContradictionPenalty); v.Score != want {
		t.Errorf("Score = %d, want %d", v.Score, want)
	}
	if v.Label != models.VerdictUnverified {
		t.Errorf("Label = %s, want UNVERIFIED", v.Label)
	}
}

func TestAnalyze_ContradictionsOnlyFloorAtZero(t *testing.T) {
	var results []search.Result
	for i := range 5 {
		results = append(results, search.Result{
			Title: "Minister was released",
			Link:  fmt.Sprintf("https://www.snopes.com/%d", i),
		})
	}
	a := newTestAnalyzer(t, &fakeSearcher{results: results})

	v, err := a.Analyze(context.Background(), "Minister was arrested at airport", "en")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if v.Score != 0 {
		t.Errorf("Score = %d, want 0", v.Score)
	}
	if v.Label != models.VerdictFake {
		t.Errorf("Label = %s, want FAKE", v.Label)
	}
}

func TestAnalyze_UntrustedResultsStayUnverified(t *testing.T) {
	fs := &fakeSearcher{results: []search.Result{
		{Title: "Moon made of cheese, says blogger", Link: "https://random-blog.example/post"},
		{Title: "Cheese moon theory is a hoax", Link: "https://another.example/hoax"},
	}}
	a := newTestAnalyzer(t, fs)

	v, err := a.Analyze(context.Background(), "The moon is made of cheese", "en")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if v.Label != models.VerdictUnverified || v.Score != BaselineScore {
		t.Errorf("verdict = %s %d, want UNVERIFIED %d", v.Label, v.Score, BaselineScore)
	}
	if len(v.Reasons) != 1 || v.Reasons[0] != ReasonNoConfirmation {
		t.Errorf("Reasons = %v", v.Reasons)
	}
}

func TestAnalyze_SearchFailures(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLabel string
		wantScore int
	}{
		{"unreachable", fmt.Errorf("%w: dial tcp: refused", search.ErrUnavailable), models.VerdictError, 0},
		{"bad status", fmt.Errorf("%w: 403", search.ErrBadStatus), models.VerdictUnverified, BaselineScore},
		{"malformed", search.ErrMalformed, models.VerdictUnverified, BaselineScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAnalyzer(t, &fakeSearcher{err: tt.err})

			v, err := a.Analyze(context.Background(), "Peace treaty signed in Geneva", "en")
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if v.Label != tt.wantLabel || v.Score != tt.wantScore {
				t.Errorf("verdict = %s %d, want %s %d", v.Label, v.Score, tt.wantLabel, tt.wantScore)
			}
			if len(v.Reasons) != 1 {
				t.Errorf("Reasons = %v, want one reason", v.Reasons)
			}
			if v.Sources == nil {
				t.Error("Sources should be an empty slice, not nil")
			}
		})
	}
}

func TestCapReasons(t *testing.T) {
	got := capReasons([]string{"a", "a", "b", "c"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("capReasons() = %v, want [a b]", got)
	}
}

func TestHostOf(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://www.BBC.com/news/1", "bbc.com"},
		{"https://apnews.com/x", "apnews.com"},
		{"not a url", "not a url"},
	}
	for _, tt := range tests {
		if got := hostOf(tt.link); got != tt.want {
			t.Errorf("hostOf(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}
