package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

func newAdminServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	store := memory.NewCatalogStore(sampleCatalog())
	cache := memory.NewCatalogRepository(store, time.Minute)
	quiz := app.NewQuizService(app.Dependencies{Catalog: cache, Sessions: memory.NewSessionStore()})
	admin := app.NewAdminService(store, cache, "2468", nil)

	server := httptest.NewServer(NewRouter(RouterConfig{
		Quiz:        quiz,
		Admin:       admin,
		AdminSecret: "test-secret-test-secret-test-sec",
		Live:        memory.NewSessionStore(),
	}))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return server, &http.Client{Jar: jar}
}

func do(t *testing.T, client *http.Client, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAdminRequiresLogin(t *testing.T) {
	server, client := newAdminServer(t)

	question := map[string]any{"text": "Q", "options": []map[string]string{{"text": "a"}, {"text": "b"}}, "correctAnswer": 0}
	if resp := do(t, client, http.MethodPost, server.URL+"/admin/questions", question); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 before login, got %d", resp.StatusCode)
	}
	if resp := do(t, client, http.MethodPost, server.URL+"/admin/login", map[string]string{"pin": "0000"}); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong pin, got %d", resp.StatusCode)
	}
	if resp := do(t, client, http.MethodPost, server.URL+"/admin/login", map[string]string{"pin": "2468"}); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected login to succeed, got %d", resp.StatusCode)
	}
	if resp := do(t, client, http.MethodPost, server.URL+"/admin/questions", question); resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 after login, got %d", resp.StatusCode)
	}

	if resp := do(t, client, http.MethodPost, server.URL+"/admin/logout", nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected logout to succeed, got %d", resp.StatusCode)
	}
	if resp := do(t, client, http.MethodGet, server.URL+"/admin/catalog", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestAdminEditsReachPublicAPI(t *testing.T) {
	server, client := newAdminServer(t)
	do(t, client, http.MethodPost, server.URL+"/admin/login", map[string]string{"pin": "2468"})

	resp := do(t, client, http.MethodPost, server.URL+"/admin/categories", map[string]string{"name": "Grade 3-4"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category: %d", resp.StatusCode)
	}
	var category domain.Category
	_ = json.NewDecoder(resp.Body).Decode(&category)

	resp = do(t, client, http.MethodPost, server.URL+"/admin/questions", map[string]any{
		"text":          "What is 6 x 7?",
		"options":       []map[string]string{{"text": "42"}, {"text": "36"}},
		"correctAnswer": 0,
		"points":        75,
		"categories":    []int{category.ID},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create question: %d", resp.StatusCode)
	}

	resp = do(t, client, http.MethodGet, server.URL+"/api/questions", nil)
	var raw []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode questions: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(raw))
	}
	for _, q := range raw {
		if _, leaked := q["correctAnswer"]; leaked {
			t.Fatalf("public questions must not expose the correct answer")
		}
	}

	if resp := do(t, client, http.MethodPut, server.URL+"/admin/settings", map[string]any{"durationSeconds": 0}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid settings, got %d", resp.StatusCode)
	}
	if resp := do(t, client, http.MethodDelete, server.URL+"/admin/questions/999", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing question, got %d", resp.StatusCode)
	}

	resp = do(t, client, http.MethodGet, server.URL+"/api/leaderboard?category=1", nil)
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("expected empty leaderboard, got %d %q", resp.StatusCode, body)
	}
	if resp := do(t, client, http.MethodGet, server.URL+"/api/history?limit=abc", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", resp.StatusCode)
	}
}

func TestHealthzReportsLiveSessions(t *testing.T) {
	server, client := newAdminServer(t)
	resp := do(t, client, http.MethodGet, server.URL+"/healthz", nil)
	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "ok" || health.LiveSessions == nil || *health.LiveSessions != 0 {
		t.Fatalf("unexpected health %+v", health)
	}
}
