package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"yuvai/internal/analysis"
	"yuvai/internal/config"
	"yuvai/internal/db"
	"yuvai/internal/middleware"
	"yuvai/internal/models"
	"yuvai/internal/search"
	"yuvai/internal/testutil"
)

type fakeSearcher struct {
	results []search.Result
	err     error
	calls   int
}

func (f *fakeSearcher) Search(_ context.Context, _ search.Query) ([]search.Result, error) {
	f.calls++
	return f.results, f.err
}

type staticNews []models.NewsItem

func (s staticNews) Items() []models.NewsItem { return s }

type testEnv struct {
	app      *fiber.App
	store    *db.FileStore
	searcher *fakeSearcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := testutil.TestStore(t)
	testutil.CreateTestAccount(t, store, "alice", models.RoleUser)
	testutil.CreateTestAccount(t, store, "root", models.RoleAdmin)

	lists, err := config.LoadCredibility("")
	if err != nil {
		t.Fatal(err)
	}
	searcher := &fakeSearcher{}
	analyzer := analysis.New(lists, searcher)

	auth := middleware.NewAuthMiddleware(store)
	analyzeHandler := NewAnalyzeHandler(analyzer, store)
	historyHandler := NewHistoryHandler(store)
	correctionHandler := NewCorrectionHandler(store)
	newsHandler := NewNewsHandler(staticNews{{Title: "Headline", Source: "Wire", Date: "2026-03-14"}})

	app := fiber.New()
	sessionMiddleware, _ := session.NewWithStore(session.Config{})
	app.Use(sessionMiddleware)
	app.Get("/as/:user", func(c fiber.Ctx) error {
		session.FromContext(c).Set(middleware.SessionUsername, c.Params("user"))
		return c.SendString("ok")
	})

	api := app.Group("/api", auth.RequireAPIAuth)
	api.Post("/analyze", analyzeHandler.Analyze)
	api.Get("/history", historyHandler.List)
	api.Post("/corrections", correctionHandler.Create)
	api.Get("/corrections", auth.RequireAdmin, correctionHandler.List)
	api.Get("/news", newsHandler.List)

	return &testEnv{app: app, store: store, searcher: searcher}
}

func (e *testEnv) login(t *testing.T, user string) []*http.Cookie {
	t.Helper()
	req, _ := http.NewRequest("GET", "/as/"+user, nil)
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp.Cookies()
}

func (e *testEnv) do(t *testing.T, req *http.Request, cookies []*http.Cookie) (int, map[string]any) {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := e.app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, body
}

func formRequest(path string, values url.Values) *http.Request {
	req, _ := http.NewRequest("POST", path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(path string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, strings.NewReader(string(data)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAnalyze_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, formRequest("/api/analyze", url.Values{"text": {"Peace treaty signed today"}}), nil)
	if status != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}
	if body["status"] != "error" {
		t.Errorf("body = %v, want error envelope", body)
	}
	if env.searcher.calls != 0 {
		t.Errorf("search called %d times, want 0", env.searcher.calls)
	}
}

func TestAnalyze_InvalidInput(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t, "alice")

	status, body := env.do(t, formRequest("/api/analyze", url.Values{"text": {"hi there"}}), cookies)
	if status != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
	if msg, _ := body["error"].(string); msg == "" {
		t.Errorf("body = %v, want a descriptive error", body)
	}
	if env.searcher.calls != 0 {
		t.Errorf("search called %d times, want 0", env.searcher.calls)
	}
}

func TestAnalyze_TrustedSource(t *testing.T) {
	env := newTestEnv(t)
	env.searcher.results = []search.Result{
		{Title: "Peace treaty signed", Snippet: "Leaders met", Link: "https://www.bbc.com/news/world-123"},
	}
	cookies := env.login(t, "alice")

	status, body := env.do(t, formRequest("/api/analyze", url.Values{"text": {"BBC reports peace treaty signed today"}, "lang": {"en"}}), cookies)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 (%v)", status, body)
	}
	if body["verdict"] != models.VerdictReal {
		t.Errorf("verdict = %v, want REAL", body["verdict"])
	}
	if score, _ := body["score"].(float64); score < 80 {
		t.Errorf("score = %v, want >= 80", body["score"])
	}
	sources, _ := body["sources"].([]any)
	if len(sources) != 1 {
		t.Fatalf("sources = %v, want one entry", body["sources"])
	}
	if src, _ := sources[0].(map[string]any); src["domain"] != "bbc.com" {
		t.Errorf("sources[0] = %v, want bbc.com", src)
	}
	for _, key := range []string{"reasons", "date_info"} {
		if _, ok := body[key]; !ok {
			t.Errorf("response missing %q", key)
		}
	}

	entries, err := env.store.ListHistory(context.Background(), "alice", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Verdict != models.VerdictReal || entries[0].Lang != "en" {
		t.Errorf("history = %+v, want one REAL entry", entries)
	}
}

func TestAnalyze_JSONBody(t *testing.T) {
	env := newTestEnv(t)
	env.searcher.results = []search.Result{
		{Title: "Celebrity X death hoax", Link: "https://www.snopes.com/fact-check/x"},
	}
	cookies := env.login(t, "alice")

	status, body := env.do(t, jsonRequest("/api/analyze", map[string]string{"text": "Celebrity X died yesterday"}), cookies)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 (%v)", status, body)
	}
	if body["verdict"] != models.VerdictFake {
		t.Errorf("verdict = %v, want FAKE", body["verdict"])
	}
	reasons, _ := body["reasons"].([]any)
	if len(reasons) == 0 || !strings.Contains(reasons[0].(string), "snopes.com") {
		t.Errorf("reasons = %v, want a reason citing snopes.com", reasons)
	}
}

func TestAnalyze_SearchUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.searcher.err = search.ErrUnavailable
	cookies := env.login(t, "alice")

	status, body := env.do(t, formRequest("/api/analyze", url.Values{"text": {"Peace treaty signed in Geneva"}}), cookies)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["verdict"] != models.VerdictError || body["score"] != float64(0) {
		t.Errorf("body = %v, want ERROR 0", body)
	}

	entries, _ := env.store.ListHistory(context.Background(), "alice", 0)
	if len(entries) != 0 {
		t.Errorf("history = %d entries, want none for ERROR verdicts", len(entries))
	}
}

func TestHistory_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, user := range []string{"alice", "alice", "root"} {
		env.store.AppendHistory(ctx, &models.HistoryEntry{Username: user, Claim: "a claim to check", Verdict: models.VerdictUnverified, Score: 50})
	}

	req, _ := http.NewRequest("GET", "/api/history", nil)
	status, body := env.do(t, req, env.login(t, "alice"))
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	data, _ := body["data"].([]any)
	if len(data) != 2 {
		t.Errorf("data = %d entries, want only alice's 2", len(data))
	}
}

func TestHistory_EmptyIsArray(t *testing.T) {
	env := newTestEnv(t)

	req, _ := http.NewRequest("GET", "/api/history", nil)
	_, body := env.do(t, req, env.login(t, "alice"))
	if data, ok := body["data"].([]any); !ok || len(data) != 0 {
		t.Errorf("data = %v, want []", body["data"])
	}
}

func TestCorrections(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login(t, "alice")

	tests := []struct {
		name   string
		values url.Values
		want   int
	}{
		{"valid", url.Values{"claim": {"Peace treaty signed today"}, "suggested_verdict": {"fake"}, "evidence_url": {"https://example.org/proof"}}, fiber.StatusCreated},
		{"bad verdict", url.Values{"claim": {"Peace treaty signed today"}, "suggested_verdict": {"ERROR"}}, fiber.StatusBadRequest},
		{"short claim", url.Values{"claim": {"treaty"}, "suggested_verdict": {"REAL"}}, fiber.StatusBadRequest},
		{"unsafe evidence", url.Values{"claim": {"Peace treaty signed today"}, "suggested_verdict": {"REAL"}, "evidence_url": {"javascript:alert(1)"}}, fiber.StatusBadRequest},
		{"long note", url.Values{"claim": {"Peace treaty signed today"}, "suggested_verdict": {"REAL"}, "note": {strings.Repeat("n", 501)}}, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, formRequest("/api/corrections", tt.values), alice)
			if status != tt.want {
				t.Errorf("status = %d, want %d (%v)", status, tt.want, body)
			}
		})
	}

	req, _ := http.NewRequest("GET", "/api/corrections", nil)
	if status, _ := env.do(t, req, alice); status != fiber.StatusForbidden {
		t.Errorf("non-admin list status = %d, want 403", status)
	}

	req, _ = http.NewRequest("GET", "/api/corrections", nil)
	status, body := env.do(t, req, env.login(t, "root"))
	if status != fiber.StatusOK {
		t.Fatalf("admin list status = %d, want 200", status)
	}
	data, _ := body["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("data = %d corrections, want 1", len(data))
	}
	if c, _ := data[0].(map[string]any); c["suggested_verdict"] != "FAKE" || c["username"] != "alice" {
		t.Errorf("correction = %v", c)
	}
}

func TestNews_List(t *testing.T) {
	env := newTestEnv(t)

	req, _ := http.NewRequest("GET", "/api/news", nil)
	status, body := env.do(t, req, env.login(t, "alice"))
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	data, _ := body["data"].([]any)
	if len(data) != 1 {
		t.Errorf("data = %v, want one headline", body["data"])
	}
}
