package translate

import (
	"context"
	"strings"

	"github.com/hanlens/hanlens/internal/types"
)

// quickEmitter accumulates streamed text and surfaces quick translations
// as they become complete. Each chunk triggers a re-parse of the entire
// buffer, since a provider may only close a JSON object after several
// chunks. A per-batch seen set enforces at-most-once emission per id
// even when the stream repeats ids across growing-prefix snapshots.
type quickEmitter struct {
	ctx  context.Context
	cb   QuickCallbacks
	buf  strings.Builder
	seen map[string]bool
	done bool
}

func newQuickEmitter(ctx context.Context, cb QuickCallbacks) *quickEmitter {
	return &quickEmitter{
		ctx:  ctx,
		cb:   cb,
		seen: make(map[string]bool),
	}
}

// feed appends a chunk and emits any newly completed translations.
// Returns the context error once cancelled so callers can bail silently.
func (e *quickEmitter) feed(chunk string) error {
	e.buf.WriteString(chunk)
	return e.emitNew(parseQuickCandidates(e.buf.String()))
}

// flush re-parses the final buffer once the stream has ended.
func (e *quickEmitter) flush() error {
	return e.emitNew(parseQuickCandidates(e.buf.String()))
}

func (e *quickEmitter) emitNew(candidates []types.QuickTranslation) error {
	for _, qt := range candidates {
		if e.seen[qt.ID] {
			continue
		}
		if err := e.ctx.Err(); err != nil {
			return err
		}
		e.seen[qt.ID] = true
		if e.cb.OnTranslation != nil {
			e.cb.OnTranslation(qt)
		}
	}
	return nil
}

// reset clears the accumulated buffer; the seen set survives. Used when
// the fallback transport restarts the response from scratch.
func (e *quickEmitter) reset() {
	e.buf.Reset()
}

// complete fires the terminal success callback exactly once.
func (e *quickEmitter) complete(usage types.UsageStats) {
	if e.done {
		return
	}
	e.done = true
	reportComplete(e.ctx, e.cb.OnComplete, usage)
}

// fail reports the terminal error unless cancelled; mutually exclusive
// with complete.
func (e *quickEmitter) fail(err error) {
	if e.done {
		return
	}
	e.done = true
	reportError(e.ctx, e.cb.OnError, err)
}
