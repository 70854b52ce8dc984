package translate

import (
	"encoding/json"
	"fmt"

	"github.com/hanlens/hanlens/internal/extract"
	"github.com/hanlens/hanlens/internal/types"
)

// The normalizer maps provider-native text payloads into the uniform
// result records. Strict decoding runs first; the recovery layer is the
// fallback for fenced, truncated, or otherwise malformed output.

type quickEnvelope struct {
	Translations []types.QuickTranslation `json:"translations"`
}

type threadEnvelope struct {
	Translations []types.TranslatedTweet `json:"translations"`
}

// parseQuickCandidates returns every complete quick translation visible
// in text, which may be a partial streaming buffer. Never errors: a
// buffer with no complete objects yet simply yields nothing.
func parseQuickCandidates(text string) []types.QuickTranslation {
	clean := extract.ExtractJSON(text)
	var env quickEnvelope
	if err := json.Unmarshal([]byte(clean), &env); err == nil && env.Translations != nil {
		return env.Translations
	}
	return extract.RecoverQuickTranslations(text)
}

// decodeThreadResponse decodes a completed thread-translation payload.
// The payload must contain a translations array; segments that fail the
// non-empty invariant are dropped rather than surfaced partially.
func decodeThreadResponse(text string) ([]types.TranslatedTweet, error) {
	clean := extract.ExtractJSON(text)
	var env threadEnvelope
	if err := json.Unmarshal([]byte(clean), &env); err != nil {
		return nil, NewFormatError(fmt.Sprintf("Invalid thread translation response: %s", snippet(clean)))
	}
	if env.Translations == nil {
		return nil, NewFormatError("Response missing translations array")
	}
	for i := range env.Translations {
		env.Translations[i].Segments = validSegments(env.Translations[i].Segments)
	}
	return env.Translations, nil
}

// decodeBreakdownResponse decodes a breakdown payload, falling back to
// structural recovery when strict parsing fails. Zero recoverable
// segments means the response was not actionable.
func decodeBreakdownResponse(text string) (types.Breakdown, error) {
	clean := extract.ExtractJSON(text)
	var bd types.Breakdown
	if err := json.Unmarshal([]byte(clean), &bd); err == nil && bd.Segments != nil {
		bd.Segments = validSegments(bd.Segments)
		if bd.Notes == nil {
			bd.Notes = []string{}
		}
		return bd, nil
	}
	segments := extract.RecoverSegments(clean)
	if len(segments) == 0 {
		return types.Breakdown{}, NewFormatError(fmt.Sprintf("Could not parse breakdown response: %s", snippet(clean)))
	}
	return types.Breakdown{
		Segments: segments,
		Notes:    extract.RecoverNotes(clean),
	}, nil
}

func validSegments(segs []types.Segment) []types.Segment {
	out := segs[:0]
	for _, s := range segs {
		if s.Valid() {
			out = append(out, s)
		}
	}
	return out
}

// snippet truncates text for embedding in error messages.
func snippet(text string) string {
	const max = 200
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
