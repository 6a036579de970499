package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

const completionJSON = `{
  "id": "gen-1",
  "object": "chat.completion",
  "created": 1,
  "model": "deepseek/deepseek-r1",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "It's 3 PM."}}]
}`

func TestOpenAIClientRequest(t *testing.T) {
	var got chatRequest
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionJSON))
	}))
	defer srv.Close()

	c, err := NewOpenAI(OpenAIConfig{
		BaseURL: srv.URL + "/api/v1",
		APIKey:  "sk-test",
		Model:   "deepseek/deepseek-r1",
		Timeout: 5 * time.Second,
		Referer: "local-eve",
		Title:   "Eve Voice",
	})
	if err != nil {
		t.Fatal(err)
	}
	reply, err := c.Complete(context.Background(), "You are Eve.", "what time is it")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "It's 3 PM." {
		t.Errorf("reply = %q", reply)
	}

	if h := headers.Get("Authorization"); h != "Bearer sk-test" {
		t.Errorf("Authorization = %q", h)
	}
	if h := headers.Get("HTTP-Referer"); h != "local-eve" {
		t.Errorf("HTTP-Referer = %q", h)
	}
	if h := headers.Get("X-Title"); h != "Eve Voice" {
		t.Errorf("X-Title = %q", h)
	}
	if got.Model != "deepseek/deepseek-r1" {
		t.Errorf("model = %q", got.Model)
	}
	if len(got.Messages) != 2 ||
		got.Messages[0].Role != "system" || got.Messages[0].Content != "You are Eve." ||
		got.Messages[1].Role != "user" || got.Messages[1].Content != "what time is it" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestOpenAIClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
		}},
		{"malformed", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{not json`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			c, err := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, APIKey: "k", Model: "m"})
			if err != nil {
				t.Fatal(err)
			}
			_, err = c.Complete(context.Background(), "s", "u")
			var rme *RemoteModelError
			if !errors.As(err, &rme) {
				t.Errorf("err = %v, want RemoteModelError", err)
			}
		})
	}
}

func TestNewOpenAIValidation(t *testing.T) {
	if _, err := NewOpenAI(OpenAIConfig{Model: "m"}); err == nil {
		t.Error("missing key accepted")
	}
	if _, err := NewOpenAI(OpenAIConfig{APIKey: "k"}); err == nil {
		t.Error("missing model accepted")
	}
}

func TestOllamaClient(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.WriteHeader(http.StatusOK)
		case "/api/chat":
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"model":"gemma3:1b","created_at":"2026-01-01T00:00:00Z","message":{"role":"assistant","content":"It's 3 PM."},"done":true}` + "\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := NewOllama(OllamaConfig{Host: srv.URL + "/", Model: "gemma3:1b", Temperature: 0.7, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatal(err)
	}
	reply, err := c.Complete(context.Background(), "persona", "what time is it")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "It's 3 PM." {
		t.Errorf("reply = %q", reply)
	}
	if got.Model != "gemma3:1b" || len(got.Messages) != 2 || got.Messages[1].Content != "what time is it" {
		t.Errorf("request = %+v", got)
	}
}

func TestOllamaClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer srv.Close()

	c, _ := NewOllama(OllamaConfig{Host: srv.URL, Model: "m"})
	_, err := c.Complete(context.Background(), "s", "u")
	var rme *RemoteModelError
	if !errors.As(err, &rme) || !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("err = %v", err)
	}
}

type stubClient struct {
	reply string
	err   error
	calls int
	ctxOK bool
}

func (s *stubClient) Name() string { return "stub" }

func (s *stubClient) Complete(ctx context.Context, system, user string) (string, error) {
	s.calls++
	_, s.ctxOK = ctx.Deadline()
	return s.reply, s.err
}

func TestBrainReply(t *testing.T) {
	c := &stubClient{reply: "  It's 3 PM.\n"}
	b := NewBrain(c, "You are Eve.", time.Minute)
	if got := b.Reply(context.Background(), "what time is it"); got != "It's 3 PM." {
		t.Errorf("Reply = %q", got)
	}
	if !c.ctxOK {
		t.Error("request had no deadline")
	}
}

func TestBrainNetworkFailureBecomesDiagnostic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listens any more

	c, err := NewOpenAI(OpenAIConfig{BaseURL: url, APIKey: "k", Model: "m", Timeout: 2 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	got := NewBrain(c, "sys", 5*time.Second).Reply(context.Background(), "hello")
	if !strings.HasPrefix(got, DiagnosticPrefix) {
		t.Fatalf("Reply = %q", got)
	}
	if !strings.Contains(got, "connection refused") && !strings.Contains(got, "connect") {
		t.Errorf("diagnostic lacks the reason: %q", got)
	}
}

func TestBrainEmptyCompletion(t *testing.T) {
	got := NewBrain(&stubClient{reply: "   "}, "sys", 0).Reply(context.Background(), "hi")
	if got != DiagnosticPrefix+"stub: empty completion" {
		t.Errorf("Reply = %q", got)
	}
}

func TestBrainError(t *testing.T) {
	c := &stubClient{err: &RemoteModelError{Provider: "stub", Err: errors.New("rate limited")}}
	got := NewBrain(c, "sys", time.Second).Reply(context.Background(), "hi")
	if got != DiagnosticPrefix+"stub: rate limited" {
		t.Errorf("Reply = %q", got)
	}
}
