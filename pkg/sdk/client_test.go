package docrag

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Error("New() with blank base URL succeeded")
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/books" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"books": []any{}})
	}))
	defer server.Close()

	c, err := New(server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Books(context.Background()); err != nil {
		t.Fatalf("Books() error = %v", err)
	}
}

func TestAsk_RememberSession(t *testing.T) {
	var gotHeader []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = append(gotHeader, r.Header.Get(SessionHeader))

		var req AskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Question == "" {
			t.Error("question not forwarded")
		}

		w.Header().Set(SessionHeader, "sess-1")
		json.NewEncoder(w).Encode(AskResponse{
			Answer:    "Attention weighs token pairs.",
			Intent:    "general",
			SessionID: "sess-1",
		})
	}))
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := c.Ask(context.Background(), AskRequest{Question: "What is attention?"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if resp.Answer != "Attention weighs token pairs." {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if c.SessionID() != "sess-1" {
		t.Errorf("SessionID() = %q, want sess-1", c.SessionID())
	}

	if _, err := c.Ask(context.Background(), AskRequest{Question: "What about chapter 3?"}); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(gotHeader) != 2 || gotHeader[0] != "" || gotHeader[1] != "sess-1" {
		t.Errorf("session headers = %v, want second call to reuse sess-1", gotHeader)
	}
}

func TestAsk_EmptyQuestion(t *testing.T) {
	c, err := New("http://unused")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Ask(context.Background(), AskRequest{Question: "   "}); !errors.Is(err, ErrBadRequest) {
		t.Errorf("Ask() error = %v, want ErrBadRequest", err)
	}
}

func TestAsk_APIErrorMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "book_not_found",
			"message": "book not found",
		})
	}))
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Ask(context.Background(), AskRequest{Question: "q", Book: "unknown"})
	if !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("Ask() error = %v, want ErrBookNotFound", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Code != "book_not_found" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestBooks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/books" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"books": []Book{
				{ID: "ml-basics", Title: "ML Basics", Author: "Ada Author"},
			},
		})
	}))
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatal(err)
	}

	books, err := c.Books(context.Background())
	if err != nil {
		t.Fatalf("Books() error = %v", err)
	}
	if len(books) != 1 || books[0].ID != "ml-basics" {
		t.Errorf("Books() = %+v", books)
	}
}

func TestStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Stats{
			Books:          5,
			Chunks:         1200,
			ActiveSessions: 3,
			Feedback:       FeedbackStats{Positive: 9, Negative: 1, Total: 10, Satisfaction: 0.9},
		})
	}))
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatal(err)
	}

	stats, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Chunks != 1200 || stats.Feedback.Satisfaction != 0.9 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestFeedback(t *testing.T) {
	var gotPositive bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/feedback" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body struct {
			Positive bool `json:"positive"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotPositive = body.Positive
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Feedback(context.Background(), true); err != nil {
		t.Fatalf("Feedback() error = %v", err)
	}
	if !gotPositive {
		t.Error("positive flag not forwarded")
	}
}

func TestResetSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sessions/reset" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get(SessionHeader) != "sess-1" {
			t.Errorf("session header = %q", r.Header.Get(SessionHeader))
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c, err := New(server.URL, WithSession("sess-1"))
	if err != nil {
		t.Fatal(err)
	}

	if err := c.ResetSession(context.Background()); err != nil {
		t.Fatalf("ResetSession() error = %v", err)
	}
}

func TestResetSession_NoSession(t *testing.T) {
	c, err := New("http://unused")
	if err != nil {
		t.Fatal(err)
	}

	if err := c.ResetSession(context.Background()); !errors.Is(err, ErrBadRequest) {
		t.Errorf("ResetSession() error = %v, want ErrBadRequest", err)
	}
}

func TestHealth_Degraded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(Health{
			Status: "degraded",
			Checks: map[string]string{"store": "ok", "index:ml-basics": "error"},
		})
	}))
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatal(err)
	}

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v, degraded should not be an error", err)
	}
	if h.Status != "degraded" || h.Checks["index:ml-basics"] != "error" {
		t.Errorf("Health() = %+v", h)
	}
}
