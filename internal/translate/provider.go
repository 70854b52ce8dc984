// Package translate is the multi-provider streaming translation engine.
// Three backend adapters implement one capability contract; the registry
// selects among them by name.
package translate

import (
	"context"

	"github.com/hanlens/hanlens/internal/types"
)

const (
	defaultQuickMaxTokens     = 2048
	defaultThreadMaxTokens    = 8192
	defaultBreakdownMaxTokens = 4096
)

// QuickCallbacks receives incremental quick-translation results.
// Fields may be nil; the engine guards every invocation.
type QuickCallbacks struct {
	OnTranslation func(types.QuickTranslation)
	OnComplete    func(types.UsageStats)
	OnError       func(error)
}

// ThreadCallbacks receives full learner translations for a thread batch.
type ThreadCallbacks struct {
	OnTranslation func(types.TranslatedTweet)
	OnComplete    func(types.UsageStats)
	OnError       func(error)
}

// Provider is the uniform capability set over one translation backend.
//
// All three operations check preconditions before touching the network
// and honor cooperative cancellation through ctx: once ctx is done, no
// callback of any kind fires. Streaming operations report exactly one
// terminal callback (OnComplete or OnError) per call.
type Provider interface {
	// ID returns the provider identifier (e.g., "anthropic", "openai").
	ID() string

	// TranslateQuickStreaming streams {id, naturalTranslation} records
	// for the batch, emitting each id at most once as soon as a complete
	// object is available in the growing response buffer. On stream
	// failure it retries once over the non-streaming transport.
	TranslateQuickStreaming(ctx context.Context, tweets []types.Tweet, apiKey string, cb QuickCallbacks)

	// TranslateThreadStreaming translates the batch with full segments
	// and notes. Despite the name it waits for the complete response,
	// decodes once, and emits in provider order; there is no fallback
	// transport for this operation.
	TranslateThreadStreaming(ctx context.Context, tweets []types.Tweet, apiKey string, cb ThreadCallbacks)

	// GetBreakdown analyzes a single text block, optionally with thread
	// context, and returns the breakdown plus provider-reported usage.
	GetBreakdown(ctx context.Context, text, apiKey string, tctx *types.ThreadContext) (types.Breakdown, types.UsageStats, error)
}

// checkBatchPreconditions validates the shared inputs of the two batch
// operations. Runs before any network call.
func checkBatchPreconditions(apiKey string, tweets []types.Tweet) *Error {
	if apiKey == "" {
		return NewConfigError("API key is required")
	}
	if len(tweets) == 0 {
		return NewConfigError("No tweets to translate")
	}
	return nil
}

// reportError surfaces err through onError unless the operation was
// cancelled or the error is abort-flavored; cancellation is silent.
func reportError(ctx context.Context, onError func(error), err error) {
	if err == nil {
		return
	}
	if ctx.Err() != nil || isAbort(err) {
		return
	}
	if onError != nil {
		onError(err)
	}
}

// reportComplete fires the terminal success callback unless cancelled.
func reportComplete(ctx context.Context, onComplete func(types.UsageStats), usage types.UsageStats) {
	if ctx.Err() != nil {
		return
	}
	if onComplete != nil {
		onComplete(usage)
	}
}
