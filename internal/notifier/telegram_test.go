package notifier

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pgauin01/hustlebot/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func timePtr(t time.Time) *time.Time { return &t }

func sampleJob(title string, score int) model.Job {
	return model.Job{
		ID:             "123",
		Source:         "remoteok",
		Title:          title,
		Company:        "Acme Corp",
		URL:            "https://example.com/apply",
		PostedAt:       timePtr(time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)),
		RelevanceScore: score,
		Reasoning:      "strong skill overlap",
	}
}

func newTestNotifier(srv *httptest.Server) *TelegramNotifier {
	n := NewTelegramNotifier("test-token", "chat-42", srv.Client(), discardLogger())
	n.baseURL = srv.URL
	return n
}

func TestTelegramNotifier_EmptyJobs(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(telegramResponse{OK: true})
	}))
	defer srv.Close()

	n := newTestNotifier(srv)

	if err := n.Notify(nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if c := calls.Load(); c != 0 {
		t.Errorf("expected 0 HTTP calls, got %d", c)
	}
}

func TestTelegramNotifier_SingleJob(t *testing.T) {
	var (
		gotPath string
		body    []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(telegramResponse{OK: true})
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	if err := n.Notify([]model.Job{sampleJob("Go Developer", 85)}); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	if gotPath != "/bottest-token/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}

	var msg telegramMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if msg.ChatID != "chat-42" {
		t.Errorf("chat_id = %q", msg.ChatID)
	}
	if msg.ParseMode != "HTML" {
		t.Errorf("parse_mode = %q, want HTML", msg.ParseMode)
	}
	for _, want := range []string{"Go Developer", "Acme Corp", "Score: 85/100", "https://example.com/apply"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("message text missing %q:\n%s", want, msg.Text)
		}
	}
}

func TestBuildAlert_EmojiByScore(t *testing.T) {
	hot := buildAlert(sampleJob("Hot", 92))
	if !strings.HasPrefix(hot, "🔥") {
		t.Errorf("score 92 alert = %q, want fire prefix", hot[:8])
	}

	warm := buildAlert(sampleJob("Warm", 80))
	if !strings.HasPrefix(warm, "✨") {
		t.Errorf("score 80 alert = %q, want sparkle prefix", warm[:8])
	}
}

func TestBuildAlert_EscapesHTML(t *testing.T) {
	job := sampleJob("C++ <senior> dev", 70)
	alert := buildAlert(job)
	if strings.Contains(alert, "<senior>") {
		t.Error("title HTML must be escaped")
	}
	if !strings.Contains(alert, "&lt;senior&gt;") {
		t.Error("expected escaped title in alert")
	}
}

func TestTelegramNotifier_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(telegramResponse{OK: false, Description: "boom"})
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	err := n.Notify([]model.Job{sampleJob("A", 80), sampleJob("B", 80)})
	if err == nil {
		t.Fatal("expected error when all notifications fail")
	}
}

func TestTelegramNotifier_PartialFailureIsNil(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(telegramResponse{OK: false, Description: "boom"})
			return
		}
		json.NewEncoder(w).Encode(telegramResponse{OK: true})
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	if err := n.Notify([]model.Job{sampleJob("A", 80), sampleJob("B", 80)}); err != nil {
		t.Errorf("Notify() = %v, want nil when at least one message lands", err)
	}
}

func TestTelegramNotifier_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(telegramResponse{OK: false, Description: "rate limited"})
			return
		}
		json.NewEncoder(w).Encode(telegramResponse{OK: true})
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	if err := n.Notify([]model.Job{sampleJob("A", 80)}); err != nil {
		t.Errorf("Notify() = %v, want nil after retry", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (original + retry), got %d", c)
	}
}
