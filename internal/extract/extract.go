// Package extract recovers structured data from LLM output: it strips
// markdown code fences and salvages fully formed elements from JSON that
// arrives truncated by token limits or mid-stream.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/hanlens/hanlens/internal/types"
)

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ExtractJSON trims the text and, if a fenced code block is present,
// returns the fenced interior in place of the full text. Content is
// otherwise left untouched.
func ExtractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}
	return trimmed
}

// arrayOpenIndex locates the opening bracket of `"key": [` in text.
// Returns -1 when the key or its array is absent.
func arrayOpenIndex(text, key string) int {
	idx := strings.Index(text, `"`+key+`"`)
	if idx < 0 {
		return -1
	}
	for i := idx + len(key) + 2; i < len(text); i++ {
		switch text[i] {
		case ':', ' ', '\t', '\n', '\r':
			continue
		case '[':
			return i
		default:
			return -1
		}
	}
	return -1
}

// collectObjects walks the characters after an opening '[' and captures
// each top-level object exactly when its brace depth returns to zero.
// The walk is string-aware (in-string flag, active quote, escape flag)
// so braces inside quoted values are never counted. An object whose
// closing brace never arrives is dropped, not partially returned.
func collectObjects(text string, open int) []string {
	var objs []string
	depth := 0
	objStart := -1
	inString := false
	escaped := false
	var quote byte

	for i := open + 1; i < len(text); i++ {
		c := text[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case quote:
				inString = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inString = true
			quote = c
		case '{':
			if depth == 0 {
				objStart = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && objStart >= 0 {
				objs = append(objs, text[objStart:i+1])
				objStart = -1
			}
		case ']':
			if depth == 0 {
				return objs
			}
		}
	}
	return objs
}

// matchArrayEnd returns the index of the ']' matching the '[' at open,
// using the same string-aware walk. ok is false when the array is
// truncated.
func matchArrayEnd(text string, open int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	var quote byte

	for i := open; i < len(text); i++ {
		c := text[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case quote:
				inString = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inString = true
			quote = c
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// RecoverSegments salvages every complete segment object from the
// `"segments": [...]` array in text. Candidates missing any of the three
// required fields are dropped. Truncation yields the closed prefix,
// never an error.
func RecoverSegments(text string) []types.Segment {
	open := arrayOpenIndex(text, "segments")
	if open < 0 {
		return nil
	}
	var segs []types.Segment
	for _, raw := range collectObjects(text, open) {
		var seg types.Segment
		if err := json.Unmarshal([]byte(raw), &seg); err != nil {
			continue
		}
		if seg.Valid() {
			segs = append(segs, seg)
		}
	}
	return segs
}

// RecoverNotes salvages the `"notes": [...]` array when it is complete.
// A truncated array yields an empty result rather than a partial one.
func RecoverNotes(text string) []string {
	open := arrayOpenIndex(text, "notes")
	if open < 0 {
		return nil
	}
	end, ok := matchArrayEnd(text, open)
	if !ok {
		return nil
	}
	var notes []string
	if err := json.Unmarshal([]byte(text[open:end+1]), &notes); err != nil {
		return nil
	}
	return notes
}

// The quick-translation shape has no nested braces, so complete objects
// can be matched directly instead of bracket-scanned.
var quickObjRe = regexp.MustCompile(`\{\s*"id"\s*:\s*"(?:[^"\\]|\\.)*"\s*,\s*"naturalTranslation"\s*:\s*"(?:[^"\\]|\\.)*"\s*\}`)

// RecoverQuickTranslations extracts every complete
// {"id": ..., "naturalTranslation": ...} object from text, in order.
func RecoverQuickTranslations(text string) []types.QuickTranslation {
	var out []types.QuickTranslation
	for _, raw := range quickObjRe.FindAllString(text, -1) {
		var qt types.QuickTranslation
		if err := json.Unmarshal([]byte(raw), &qt); err != nil {
			continue
		}
		if qt.ID != "" {
			out = append(out, qt)
		}
	}
	return out
}
