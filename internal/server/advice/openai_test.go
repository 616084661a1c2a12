package advice

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBuildPrompt_EmbedsAllFields(t *testing.T) {
	t.Parallel()

	p := BuildPrompt(Input{Name: "Alice", BirthDate: "1990-05-01", BirthTime: "12:30", Location: "Riga"})

	for _, want := range []string{"Name: Alice", "Birth Date: 1990-05-01", "Birth Time: 12:30", "Location: Riga"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestBuildPrompt_MissingBirthTimeFallback(t *testing.T) {
	t.Parallel()

	p := BuildPrompt(Input{Name: "Bob", BirthDate: "1985-01-15", Location: "Oslo"})
	if !strings.Contains(p, "Birth Time: Not provided") {
		t.Fatalf("expected literal fallback for missing birth time:\n%s", p)
	}
}

func TestGenerate_Success(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  trust the stars  "}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "gpt-3.5-turbo", 5*time.Second)

	text, err := c.Generate(context.Background(), Input{Name: "Alice", BirthDate: "1990-05-01", Location: "Riga"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if text != "  trust the stars  " {
		t.Fatalf("completion text must be returned unmodified, got %q", text)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected Authorization header %q", gotAuth)
	}
	if gotBody.Model != "gpt-3.5-turbo" {
		t.Fatalf("unexpected model %q", gotBody.Model)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" || gotBody.Messages[1].Role != "user" {
		t.Fatalf("expected system+user messages, got %+v", gotBody.Messages)
	}
	if !strings.Contains(gotBody.Messages[1].Content, "Birth Time: Not provided") {
		t.Fatalf("user prompt missing birth-time fallback: %q", gotBody.Messages[1].Content)
	}
}

func TestGenerate_UpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m", 5*time.Second)
	_, err := c.Generate(context.Background(), Input{Name: "A", BirthDate: "b", Location: "c"})
	if err == nil || !strings.Contains(err.Error(), "status 429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestGenerate_NoChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m", 5*time.Second)
	_, err := c.Generate(context.Background(), Input{Name: "A", BirthDate: "b", Location: "c"})
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("expected no-choices error, got %v", err)
	}
}

func TestGenerate_ContextCancelled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server detects the client disconnect and
		// cancels the request context; otherwise srv.Close deadlocks.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m", time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Generate(ctx, Input{Name: "A", BirthDate: "b", Location: "c"})
	if err == nil {
		t.Fatalf("expected error on cancelled context")
	}
}
