package translate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hanlens/hanlens/internal/types"
)

// Prompts select one of three output shapes. Each demands raw JSON so
// the extraction layer rarely has to peel a code fence, but providers
// add one anyway often enough that the recovery path stays load-bearing.

const quickSystemPrompt = `You are a translator helping an English speaker read Chinese social media.
You will receive a JSON array of posts, each with an "id" and Chinese "text".
Translate each post into natural, idiomatic English.
Respond with JSON only, no prose and no code fences, in exactly this shape:
{"translations":[{"id":"<post id>","naturalTranslation":"<English translation>"}]}
Keep the posts in the order given and include every id exactly once.`

const threadSystemPrompt = `You are a Chinese teacher preparing a learner-oriented breakdown of a social media thread.
You will receive a JSON array of posts, each with an "id", the Chinese "text", and the "author".
For each post produce:
- "naturalTranslation": natural idiomatic English
- "segments": the text split into meaningful spans, each with "chinese", "pinyin" (tone-marked) and "gloss" (English meaning)
- "notes": short notes on grammar, slang, or cultural context worth teaching
Respond with JSON only, no prose and no code fences:
{"translations":[{"id":"...","naturalTranslation":"...","segments":[{"chinese":"...","pinyin":"...","gloss":"..."}],"notes":["..."]}]}
Keep the posts in the order given.`

const breakdownSystemPrompt = `You are a Chinese teacher. Analyze the given Chinese text for an English-speaking learner.
Split it into meaningful segments and add teaching notes.
Respond with JSON only, no prose and no code fences:
{"segments":[{"chinese":"...","pinyin":"...","gloss":"..."}],"notes":["..."]}
"pinyin" uses tone marks, "gloss" is the English meaning of the segment.`

type quickPromptRecord struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type threadPromptRecord struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
}

// buildQuickUserMessage serializes the batch as {id, text} records.
func buildQuickUserMessage(tweets []types.Tweet) string {
	records := make([]quickPromptRecord, len(tweets))
	for i, tw := range tweets {
		records[i] = quickPromptRecord{ID: tw.ID, Text: tw.Text}
	}
	data, _ := json.Marshal(records)
	return "Translate these posts:\n" + string(data)
}

// buildThreadUserMessage serializes the batch as {id, text, author}
// records so the model can attribute replies.
func buildThreadUserMessage(tweets []types.Tweet) string {
	records := make([]threadPromptRecord, len(tweets))
	for i, tw := range tweets {
		records[i] = threadPromptRecord{ID: tw.ID, Text: tw.Text, Author: tw.Author}
	}
	data, _ := json.Marshal(records)
	return "Translate and analyze this thread:\n" + string(data)
}

// buildBreakdownUserMessage embeds the text plus, when present, the
// original-post context block.
func buildBreakdownUserMessage(text string, tctx *types.ThreadContext) string {
	var sb strings.Builder
	sb.WriteString("Analyze this Chinese text:\n")
	sb.WriteString(text)
	if tctx != nil && (tctx.Text != "" || tctx.Author != "" || tctx.URL != "") {
		sb.WriteString("\n\nThread context (the post being replied to):\n")
		if tctx.Author != "" {
			fmt.Fprintf(&sb, "Author: %s\n", tctx.Author)
		}
		if tctx.Text != "" {
			fmt.Fprintf(&sb, "Text: %s\n", tctx.Text)
		}
		if tctx.URL != "" {
			fmt.Fprintf(&sb, "URL: %s\n", tctx.URL)
		}
	}
	return sb.String()
}
