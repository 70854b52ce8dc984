package translate

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hanlens/hanlens/internal/logging"
	"github.com/hanlens/hanlens/internal/types"
)

// AnthropicProvider targets the Anthropic Messages API through the
// official SDK, streaming tokens over SSE.
type AnthropicProvider struct {
	model string
	opts  []option.RequestOption
}

// NewAnthropicProvider creates the adapter. Extra request options are
// test hooks (base URL, retry policy); production callers pass none.
func NewAnthropicProvider(model string, opts ...option.RequestOption) *AnthropicProvider {
	return &AnthropicProvider{model: model, opts: opts}
}

// ID returns the provider identifier
func (p *AnthropicProvider) ID() string { return "anthropic" }

// client builds a per-call SDK client; the API key arrives per
// operation, not at construction.
func (p *AnthropicProvider) client(apiKey string) anthropic.Client {
	opts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, p.opts...)
	return anthropic.NewClient(opts...)
}

func (p *AnthropicProvider) newParams(system, user string, maxTokens int64) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
}

// TranslateQuickStreaming streams quick translations, parsing the
// growing buffer on every text delta and falling back to the
// non-streaming transport once if the stream breaks.
func (p *AnthropicProvider) TranslateQuickStreaming(ctx context.Context, tweets []types.Tweet, apiKey string, cb QuickCallbacks) {
	em := newQuickEmitter(ctx, cb)
	if err := checkBatchPreconditions(apiKey, tweets); err != nil {
		em.fail(err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	client := p.client(apiKey)
	params := p.newParams(quickSystemPrompt, buildQuickUserMessage(tweets), defaultQuickMaxTokens)

	logging.Debugf("[Anthropic] streaming quick translation: tweets=%d model=%s", len(tweets), p.model)

	stream := client.Messages.NewStreaming(ctx, params)
	var message anthropic.Message
	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			logging.Debugf("[Anthropic] accumulate failed: %v", err)
		}
		if event.Type == "content_block_delta" {
			delta := event.AsContentBlockDelta()
			if d, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok {
				if err := em.feed(d.Text); err != nil {
					return
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		if ctx.Err() != nil || isAbort(err) {
			return
		}
		logging.Debugf("[Anthropic] stream failed, retrying non-streaming: %v", err)
		p.quickFallback(ctx, client, params, em)
		return
	}

	if err := em.flush(); err != nil {
		return
	}
	em.complete(usageFromAnthropic(message.Usage))
}

// quickFallback retries the same prompt over the non-streaming
// transport. The emitter's seen set carries over, so ids already
// surfaced during the broken stream are not emitted again; the buffer
// restarts because the response does.
func (p *AnthropicProvider) quickFallback(ctx context.Context, client anthropic.Client, params anthropic.MessageNewParams, em *quickEmitter) {
	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil || isAbort(err) {
			return
		}
		em.fail(NewTransportError("Quick translation failed", err))
		return
	}
	text := anthropicText(resp.Content)
	if text == "" {
		em.fail(NewFormatError("No text response from API"))
		return
	}
	em.reset()
	if err := em.feed(text); err != nil {
		return
	}
	em.complete(usageFromAnthropic(resp.Usage))
}

// TranslateThreadStreaming waits for the completed response, decodes
// once, and emits translations in provider order.
func (p *AnthropicProvider) TranslateThreadStreaming(ctx context.Context, tweets []types.Tweet, apiKey string, cb ThreadCallbacks) {
	if err := checkBatchPreconditions(apiKey, tweets); err != nil {
		reportError(ctx, cb.OnError, err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	client := p.client(apiKey)
	params := p.newParams(threadSystemPrompt, buildThreadUserMessage(tweets), defaultThreadMaxTokens)

	logging.Debugf("[Anthropic] thread translation: tweets=%d model=%s", len(tweets), p.model)

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		reportError(ctx, cb.OnError, NewTransportError("Thread translation failed", err))
		return
	}
	text := anthropicText(resp.Content)
	if text == "" {
		reportError(ctx, cb.OnError, NewFormatError("No text response from API"))
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
	reportComplete(ctx, cb.OnComplete, usageFromAnthropic(resp.Usage))
}

// GetBreakdown analyzes a single text block in one request.
func (p *AnthropicProvider) GetBreakdown(ctx context.Context, text, apiKey string, tctx *types.ThreadContext) (types.Breakdown, types.UsageStats, error) {
	if apiKey == "" {
		return types.Breakdown{}, types.UsageStats{}, NewConfigError("API key is required")
	}
	if err := ctx.Err(); err != nil {
		return types.Breakdown{}, types.UsageStats{}, NewCancelledError(err)
	}

	client := p.client(apiKey)
	params := p.newParams(breakdownSystemPrompt, buildBreakdownUserMessage(text, tctx), defaultBreakdownMaxTokens)

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		if isAbort(err) {
			return types.Breakdown{}, types.UsageStats{}, NewCancelledError(err)
		}
		return types.Breakdown{}, types.UsageStats{}, NewTransportError("Breakdown request failed", err)
	}
	raw := anthropicText(resp.Content)
	if raw == "" {
		return types.Breakdown{}, types.UsageStats{}, NewFormatError("No text response from API")
	}
	bd, derr := decodeBreakdownResponse(raw)
	if derr != nil {
		return types.Breakdown{}, types.UsageStats{}, derr
	}
	return bd, usageFromAnthropic(resp.Usage), nil
}

func anthropicText(blocks []anthropic.ContentBlockUnion) string {
	var sb strings.Builder
	for _, block := range blocks {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	return sb.String()
}

func usageFromAnthropic(u anthropic.Usage) types.UsageStats {
	return types.UsageStats{
		InputTokens:  int(u.InputTokens),
		OutputTokens: int(u.OutputTokens),
	}
}
