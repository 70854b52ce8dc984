package translate

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/hanlens/hanlens/internal/logging"
	"github.com/hanlens/hanlens/internal/types"
)

// OpenAIProvider targets the Chat Completions API through the official
// SDK, streaming chunked completions over SSE.
type OpenAIProvider struct {
	model string
	opts  []option.RequestOption
}

// NewOpenAIProvider creates the adapter. Extra request options are test
// hooks (base URL, retry policy); production callers pass none.
func NewOpenAIProvider(model string, opts ...option.RequestOption) *OpenAIProvider {
	return &OpenAIProvider{model: model, opts: opts}
}

// ID returns the provider identifier
func (p *OpenAIProvider) ID() string { return "openai" }

func (p *OpenAIProvider) client(apiKey string) openai.Client {
	opts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, p.opts...)
	return openai.NewClient(opts...)
}

func (p *OpenAIProvider) newParams(system, user string, maxTokens int64) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxCompletionTokens: openai.Int(maxTokens),
	}
}

// TranslateQuickStreaming streams quick translations, parsing the
// growing buffer on every content delta and falling back to the
// non-streaming transport once if the stream breaks.
func (p *OpenAIProvider) TranslateQuickStreaming(ctx context.Context, tweets []types.Tweet, apiKey string, cb QuickCallbacks) {
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

	// Usage arrives in a final chunk only when asked for.
	streamParams := params
	streamParams.StreamOptions = openai.ChatCompletionStreamOptionsParam{
		IncludeUsage: openai.Bool(true),
	}

	logging.Debugf("[OpenAI] streaming quick translation: tweets=%d model=%s", len(tweets), p.model)

	stream := client.Chat.Completions.NewStreaming(ctx, streamParams)
	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			if err := em.feed(chunk.Choices[0].Delta.Content); err != nil {
				return
			}
		}
	}

	if err := stream.Err(); err != nil {
		if ctx.Err() != nil || isAbort(err) {
			return
		}
		logging.Debugf("[OpenAI] stream failed, retrying non-streaming: %v", err)
		p.quickFallback(ctx, client, params, em)
		return
	}

	if err := em.flush(); err != nil {
		return
	}
	em.complete(types.UsageStats{
		InputTokens:  int(acc.Usage.PromptTokens),
		OutputTokens: int(acc.Usage.CompletionTokens),
	})
}

func (p *OpenAIProvider) quickFallback(ctx context.Context, client openai.Client, params openai.ChatCompletionNewParams, em *quickEmitter) {
	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil || isAbort(err) {
			return
		}
		em.fail(NewTransportError("Quick translation failed", err))
		return
	}
	text := openaiText(resp)
	if text == "" {
		em.fail(NewFormatError("No text in response"))
		return
	}
	em.reset()
	if err := em.feed(text); err != nil {
		return
	}
	em.complete(usageFromOpenAI(resp.Usage))
}

// TranslateThreadStreaming waits for the completed response, decodes
// once, and emits translations in provider order.
func (p *OpenAIProvider) TranslateThreadStreaming(ctx context.Context, tweets []types.Tweet, apiKey string, cb ThreadCallbacks) {
	if err := checkBatchPreconditions(apiKey, tweets); err != nil {
		reportError(ctx, cb.OnError, err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	client := p.client(apiKey)
	params := p.newParams(threadSystemPrompt, buildThreadUserMessage(tweets), defaultThreadMaxTokens)

	logging.Debugf("[OpenAI] thread translation: tweets=%d model=%s", len(tweets), p.model)

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		reportError(ctx, cb.OnError, NewTransportError("Thread translation failed", err))
		return
	}
	text := openaiText(resp)
	if text == "" {
		reportError(ctx, cb.OnError, NewFormatError("No text in response"))
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
	reportComplete(ctx, cb.OnComplete, usageFromOpenAI(resp.Usage))
}

// GetBreakdown analyzes a single text block in one request.
func (p *OpenAIProvider) GetBreakdown(ctx context.Context, text, apiKey string, tctx *types.ThreadContext) (types.Breakdown, types.UsageStats, error) {
	if apiKey == "" {
		return types.Breakdown{}, types.UsageStats{}, NewConfigError("API key is required")
	}
	if err := ctx.Err(); err != nil {
		return types.Breakdown{}, types.UsageStats{}, NewCancelledError(err)
	}

	client := p.client(apiKey)
	params := p.newParams(breakdownSystemPrompt, buildBreakdownUserMessage(text, tctx), defaultBreakdownMaxTokens)

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		if isAbort(err) {
			return types.Breakdown{}, types.UsageStats{}, NewCancelledError(err)
		}
		return types.Breakdown{}, types.UsageStats{}, NewTransportError("Breakdown request failed", err)
	}
	raw := openaiText(resp)
	if raw == "" {
		return types.Breakdown{}, types.UsageStats{}, NewFormatError("No text in response")
	}
	bd, derr := decodeBreakdownResponse(raw)
	if derr != nil {
		return types.Breakdown{}, types.UsageStats{}, derr
	}
	return bd, usageFromOpenAI(resp.Usage), nil
}

func openaiText(resp *openai.ChatCompletion) string {
	if resp == nil || len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}

func usageFromOpenAI(u openai.CompletionUsage) types.UsageStats {
	return types.UsageStats{
		InputTokens:  int(u.PromptTokens),
		OutputTokens: int(u.CompletionTokens),
	}
}
