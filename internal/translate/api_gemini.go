package translate

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/hanlens/hanlens/internal/logging"
	"github.com/hanlens/hanlens/internal/types"
)

// GeminiProvider targets the Gemini API through the official SDK. The
// transport is single-shot request/response; quick "streaming" runs the
// one completed response through the same emitter so the dedupe and
// cancellation contract is identical to the true streaming providers.
type GeminiProvider struct {
	model string
	opts  []option.ClientOption
}

// NewGeminiProvider creates the adapter. Extra client options are test
// hooks (endpoint override); production callers pass none.
func NewGeminiProvider(model string, opts ...option.ClientOption) *GeminiProvider {
	return &GeminiProvider{model: model, opts: opts}
}

// ID returns the provider identifier
func (p *GeminiProvider) ID() string { return "google" }

// generate runs one request against the model and returns the response
// text plus provider-reported usage.
func (p *GeminiProvider) generate(ctx context.Context, apiKey, system, user string, maxTokens int32) (string, types.UsageStats, error) {
	opts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, p.opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", types.UsageStats{}, NewTransportError("Failed to create Gemini client", err)
	}
	defer client.Close()

	model := client.GenerativeModel(p.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}
	model.SetMaxOutputTokens(maxTokens)
	// Gemini can be told to emit JSON directly; recovery still handles
	// truncation when the token limit cuts the payload short.
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		if isAbort(err) {
			return "", types.UsageStats{}, NewCancelledError(err)
		}
		return "", types.UsageStats{}, NewTransportError("Gemini request failed", err)
	}

	text := geminiText(resp)
	if text == "" {
		return "", types.UsageStats{}, NewFormatError("No text in response")
	}
	return text, usageFromGemini(resp.UsageMetadata), nil
}

// TranslateQuickStreaming issues the single-shot call and emits each
// complete translation through the shared emitter. The transport is
// already non-streaming, so the streaming fallback is a no-op here.
func (p *GeminiProvider) TranslateQuickStreaming(ctx context.Context, tweets []types.Tweet, apiKey string, cb QuickCallbacks) {
	em := newQuickEmitter(ctx, cb)
	if err := checkBatchPreconditions(apiKey, tweets); err != nil {
		em.fail(err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	logging.Debugf("[Gemini] quick translation: tweets=%d model=%s", len(tweets), p.model)

	text, usage, err := p.generate(ctx, apiKey, quickSystemPrompt, buildQuickUserMessage(tweets), defaultQuickMaxTokens)
	if err != nil {
		em.fail(err)
		return
	}
	if err := em.feed(text); err != nil {
		return
	}
	em.complete(usage)
}

// TranslateThreadStreaming decodes the completed response once and
// emits translations in provider order.
func (p *GeminiProvider) TranslateThreadStreaming(ctx context.Context, tweets []types.Tweet, apiKey string, cb ThreadCallbacks) {
	if err := checkBatchPreconditions(apiKey, tweets); err != nil {
		reportError(ctx, cb.OnError, err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	logging.Debugf("[Gemini] thread translation: tweets=%d model=%s", len(tweets), p.model)

	text, usage, err := p.generate(ctx, apiKey, threadSystemPrompt, buildThreadUserMessage(tweets), defaultThreadMaxTokens)
	if err != nil {
		reportError(ctx, cb.OnError, err)
		return
	}
	translations, derr := decodeThreadResponse(text)
	if derr != nil {
		reportError(ctx, cb.OnError, derr)
		return
	}
	for _, tr := range translations {
		if ctx.Err() != nil {
			return
		}
		if cb.OnTranslation != nil {
			cb.OnTranslation(tr)
		}
	}
	reportComplete(ctx, cb.OnComplete, usage)
}

// GetBreakdown analyzes a single text block in one request.
func (p *GeminiProvider) GetBreakdown(ctx context.Context, text, apiKey string, tctx *types.ThreadContext) (types.Breakdown, types.UsageStats, error) {
	if apiKey == "" {
		return types.Breakdown{}, types.UsageStats{}, NewConfigError("API key is required")
	}
	if err := ctx.Err(); err != nil {
		return types.Breakdown{}, types.UsageStats{}, NewCancelledError(err)
	}

	raw, usage, err := p.generate(ctx, apiKey, breakdownSystemPrompt, buildBreakdownUserMessage(text, tctx), defaultBreakdownMaxTokens)
	if err != nil {
		return types.Breakdown{}, types.UsageStats{}, err
	}
	bd, derr := decodeBreakdownResponse(raw)
	if derr != nil {
		return types.Breakdown{}, types.UsageStats{}, derr
	}
	return bd, usage, nil
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
	}
	return sb.String()
}

func usageFromGemini(u *genai.UsageMetadata) types.UsageStats {
	if u == nil {
		return types.UsageStats{}
	}
	return types.UsageStats{
		InputTokens:  int(u.PromptTokenCount),
		OutputTokens: int(u.CandidatesTokenCount),
	}
}
