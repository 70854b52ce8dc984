package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/openai/openai-go/option"

	"github.com/hanlens/hanlens/internal/types"
)

// openaiSSE renders a chat.completion chunked stream delivering the
// text chunks plus a final usage chunk (prompt 10 / completion 20).
func openaiSSE(chunks []string) string {
	var sb strings.Builder
	write := func(payload string) {
		sb.WriteString("data: " + payload + "\n\n")
	}
	for _, c := range chunks {
		payload, _ := json.Marshal(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion.chunk",
			"created": 1,
			"model":   "gpt-test",
			"choices": []map[string]any{{
				"index": 0,
				"delta": map[string]any{"role": "assistant", "content": c},
			}},
		})
		write(string(payload))
	}
	write(`{"id":"chatcmpl-1","object":"chat.completion.chunk","created":1,"model":"gpt-test","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`)
	write(`{"id":"chatcmpl-1","object":"chat.completion.chunk","created":1,"model":"gpt-test","choices":[],"usage":{"prompt_tokens":10,"completion_tokens":20,"total_tokens":30}}`)
	sb.WriteString("data: [DONE]\n\n")
	return sb.String()
}

// openaiCompletion renders a non-streaming chat.completion response.
func openaiCompletion(text string, in, out int) string {
	resp := map[string]any{
		"id":      "chatcmpl-2",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-test",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": text},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": in, "completion_tokens": out, "total_tokens": in + out},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func newOpenAITestProvider(srvURL string) *OpenAIProvider {
	return NewOpenAIProvider("gpt-test",
		option.WithBaseURL(srvURL),
		option.WithMaxRetries(0),
	)
}

func TestOpenAIQuickStreamingTwoChunks(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, openaiSSE([]string{
			`{"translations":[{"id":"1","naturalTranslation":"The wea`,
			`ther is really nice today"}]}`,
		}))
	}))
	defer srv.Close()

	var emitted []types.QuickTranslation
	var usage types.UsageStats
	completes := 0

	p := newOpenAITestProvider(srv.URL)
	p.TranslateQuickStreaming(context.Background(), testTweets, "test-key", QuickCallbacks{
		OnTranslation: func(qt types.QuickTranslation) { emitted = append(emitted, qt) },
		OnComplete:    func(u types.UsageStats) { completes++; usage = u },
		OnError:       func(err error) { t.Errorf("unexpected OnError: %v", err) },
	})

	if len(emitted) != 1 || emitted[0].ID != "1" {
		t.Fatalf("expected exactly one translation for id 1, got %+v", emitted)
	}
	if completes != 1 {
		t.Errorf("OnComplete fired %d times, want 1", completes)
	}
	if usage != (types.UsageStats{InputTokens: 10, OutputTokens: 20}) {
		t.Errorf("usage = %+v, want 10/20 from the usage chunk", usage)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("expected 1 request, got %d", got)
	}
}

func TestOpenAIQuickStreamFailureFallsBack(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if isStreamingRequest(r) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":{"message":"server overloaded","type":"server_error"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, openaiCompletion(
			`{"translations":[{"id":"1","naturalTranslation":"The weather is really nice today"}]}`, 7, 9))
	}))
	defer srv.Close()

	var emitted []types.QuickTranslation
	var usage types.UsageStats

	p := newOpenAITestProvider(srv.URL)
	p.TranslateQuickStreaming(context.Background(), testTweets, "test-key", QuickCallbacks{
		OnTranslation: func(qt types.QuickTranslation) { emitted = append(emitted, qt) },
		OnComplete:    func(u types.UsageStats) { usage = u },
		OnError:       func(err error) { t.Errorf("unexpected OnError after successful fallback: %v", err) },
	})

	if len(emitted) != 1 || emitted[0].ID != "1" {
		t.Fatalf("expected one translation, got %+v", emitted)
	}
	if usage != (types.UsageStats{InputTokens: 7, OutputTokens: 9}) {
		t.Errorf("usage = %+v, want fallback call's 7/9", usage)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("expected 2 requests, got %d", got)
	}
}

func TestOpenAIPreconditionsSkipNetwork(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	p := newOpenAITestProvider(srv.URL)

	var gotErr error
	p.TranslateQuickStreaming(context.Background(), testTweets, "", QuickCallbacks{
		OnError: func(err error) { gotErr = err },
	})
	if gotErr == nil || gotErr.Error() != "API key is required" {
		t.Errorf("expected config error, got %v", gotErr)
	}

	gotErr = nil
	p.TranslateThreadStreaming(context.Background(), nil, "test-key", ThreadCallbacks{
		OnError: func(err error) { gotErr = err },
	})
	if gotErr == nil || gotErr.Error() != "No tweets to translate" {
		t.Errorf("expected config error, got %v", gotErr)
	}

	if got := requests.Load(); got != 0 {
		t.Errorf("precondition failures must not reach the network, saw %d requests", got)
	}
}

func TestOpenAIBreakdownNoText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// A response with no choices carries no text.
		io.WriteString(w, `{"id":"chatcmpl-3","object":"chat.completion","created":1,"model":"gpt-test","choices":[],"usage":{"prompt_tokens":1,"completion_tokens":0,"total_tokens":1}}`)
	}))
	defer srv.Close()

	p := newOpenAITestProvider(srv.URL)
	_, _, err := p.GetBreakdown(context.Background(), "好", "test-key", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if KindOf(err) != ErrFormat || err.Error() != "No text in response" {
		t.Errorf("expected 'No text in response' format error, got %v", err)
	}
}

func TestOpenAIBreakdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, openaiCompletion(
			`{"segments":[{"chinese":"走走","pinyin":"zǒuzou","gloss":"take a walk"}],"notes":["reduplication softens the verb"]}`, 12, 34))
	}))
	defer srv.Close()

	p := newOpenAITestProvider(srv.URL)
	bd, usage, err := p.GetBreakdown(context.Background(), "出去走走吧", "test-key", nil)
	if err != nil {
		t.Fatalf("GetBreakdown: %v", err)
	}
	if len(bd.Segments) != 1 || bd.Segments[0].Chinese != "走走" {
		t.Errorf("unexpected breakdown: %+v", bd)
	}
	if len(bd.Notes) != 1 {
		t.Errorf("notes lost: %+v", bd.Notes)
	}
	if usage != (types.UsageStats{InputTokens: 12, OutputTokens: 34}) {
		t.Errorf("usage = %+v", usage)
	}
}
