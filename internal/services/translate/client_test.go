package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestTranslateSendsQueryAndDecodes(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		if r.URL.Query().Get("sl") != "en" || r.URL.Query().Get("tl") != "zh-TW" {
			t.Errorf("unexpected language params: %v", r.URL.Query())
		}
		_, _ = w.Write([]byte(`[[["大家好。","Hello everyone.",null,null,10]],null,"en"]`))
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL})
	result, err := client.Translate(context.Background(), "Hello everyone.")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if result != "大家好。" {
		t.Fatalf("unexpected translation: %q", result)
	}
	if gotQuery != "Hello everyone." {
		t.Fatalf("unexpected query text: %q", gotQuery)
	}
}

func TestTranslateSkipsTargetLanguageText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for CJK input")
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL})
	result, err := client.Translate(context.Background(), "今天天氣很好")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if result != "" {
		t.Fatalf("expected empty result, got %q", result)
	}
}

func TestTranslateRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[[["第三次成功。","Third time works.",null,null,10]]]`))
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(Config{Endpoint: server.URL},
		WithRetryBackoff(time.Millisecond, 4*time.Millisecond),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)

	result, err := client.Translate(context.Background(), "Third time works.")
	if err != nil {
		t.Fatalf("Translate failed after retries: %v", err)
	}
	if result != "第三次成功。" {
		t.Fatalf("unexpected translation: %q", result)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
	if len(slept) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(slept))
	}
}

func TestTranslateGivesUpOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL}, WithSleeper(func(time.Duration) {}))
	if _, err := client.Translate(context.Background(), "Broken request text."); err == nil {
		t.Fatal("expected error for http 400")
	}
	if calls.Load() != 1 {
		t.Fatalf("client errors should not retry, got %d attempts", calls.Load())
	}
}

func TestNeedsTranslation(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"The quarterly numbers look solid.", true},
		{"我們下週再討論", false},
		{"OK 好的沒問題大家繼續", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := NeedsTranslation(tc.text); got != tc.want {
			t.Errorf("NeedsTranslation(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestSplitChunksPrefersSentenceBoundaries(t *testing.T) {
	text := strings.Repeat("This is a fairly long sentence for chunking. ", 10)
	chunks := SplitChunks(text, 120)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 120 {
			t.Errorf("chunk %d exceeds limit: %d chars", i, len(chunk))
		}
		if !strings.HasSuffix(strings.TrimSpace(chunk), ".") {
			t.Errorf("chunk %d not split at sentence boundary: %q", i, chunk)
		}
	}
}

func TestSplitChunksHandlesRunOnText(t *testing.T) {
	text := strings.Repeat("word ", 100)
	chunks := SplitChunks(text, 50)
	for i, chunk := range chunks {
		if len(chunk) > 50 {
			t.Errorf("chunk %d exceeds limit: %d chars", i, len(chunk))
		}
	}
}

func TestSplitChunksShortTextUnchanged(t *testing.T) {
	chunks := SplitChunks("short", 100)
	if len(chunks) != 1 || chunks[0] != "short" {
		t.Fatalf("unexpected chunks: %#v", chunks)
	}
}
