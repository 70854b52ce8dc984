package extract

import (
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"trims whitespace", "  {\"a\":1}\n", `{"a":1}`},
		{"fenced with tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced without tag", "```\n[1,2]\n```", `[1,2]`},
		{
			"fence with surrounding prose",
			"Here is the result:\n```json\n{\"segments\":[]}\n```\nHope that helps!",
			`{"segments":[]}`,
		},
		{"no fence no trim needed", "[]", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.input)
			if got != tt.expected {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRecoverSegmentsComplete(t *testing.T) {
	text := `{"segments":[
		{"chinese":"今天","pinyin":"jīntiān","gloss":"today"},
		{"chinese":"天气","pinyin":"tiānqì","gloss":"weather"}
	],"notes":["casual register"]}`

	segs := RecoverSegments(text)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Chinese != "今天" || segs[0].Pinyin != "jīntiān" || segs[0].Gloss != "today" {
		t.Errorf("unexpected first segment: %+v", segs[0])
	}
}

func TestRecoverSegmentsTruncated(t *testing.T) {
	// Two complete objects followed by a truncated third: exactly the
	// two closed ones must come back.
	text := `{"segments":[
		{"chinese":"今天","pinyin":"jīntiān","gloss":"today"},
		{"chinese":"天气","pinyin":"tiānqì","gloss":"weather"},
		{"chinese":"真的","pinyin":"zhēn`

	segs := RecoverSegments(text)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments from truncated text, got %d", len(segs))
	}
	if segs[1].Chinese != "天气" {
		t.Errorf("unexpected second segment: %+v", segs[1])
	}
}

func TestRecoverSegmentsBracesInsideStrings(t *testing.T) {
	// Braces and brackets inside quoted values must not confuse the
	// depth tracking.
	text := `{"segments":[
		{"chinese":"他说{不}","pinyin":"tā shuō {bù}","gloss":"he said \"{no}\" [sic]"},
		{"chinese":"好","pinyin":"hǎo","gloss":"good"}
	]}`

	segs := RecoverSegments(text)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Gloss != `he said "{no}" [sic]` {
		t.Errorf("escaped content mangled: %q", segs[0].Gloss)
	}
}

func TestRecoverSegmentsDropsIncompleteFields(t *testing.T) {
	text := `{"segments":[
		{"chinese":"今天","pinyin":"jīntiān","gloss":"today"},
		{"chinese":"天气","pinyin":""},
		{"chinese":"","pinyin":"x","gloss":"y"}
	]}`

	segs := RecoverSegments(text)
	if len(segs) != 1 {
		t.Fatalf("expected 1 valid segment, got %d", len(segs))
	}
}

func TestRecoverSegmentsNoKey(t *testing.T) {
	if segs := RecoverSegments(`{"translations":[]}`); len(segs) != 0 {
		t.Errorf("expected no segments, got %d", len(segs))
	}
	if segs := RecoverSegments(""); len(segs) != 0 {
		t.Errorf("expected no segments from empty text, got %d", len(segs))
	}
}

func TestRecoverNotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			"complete array",
			`{"segments":[],"notes":["first note","second [with] brackets"]}`,
			[]string{"first note", "second [with] brackets"},
		},
		{
			"truncated array yields empty",
			`{"segments":[],"notes":["first note","seco`,
			nil,
		},
		{
			"missing key",
			`{"segments":[]}`,
			nil,
		},
		{
			"empty array",
			`{"notes":[]}`,
			[]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecoverNotes(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("RecoverNotes: got %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("note %d: got %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestRecoverQuickTranslations(t *testing.T) {
	// Growing streaming buffer: second object still open.
	text := `{"translations":[
		{"id":"1","naturalTranslation":"The weather is really nice today"},
		{"id":"2","naturalTranslation":"I wan`

	got := RecoverQuickTranslations(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 complete translation, got %d", len(got))
	}
	if got[0].ID != "1" {
		t.Errorf("unexpected id %q", got[0].ID)
	}
}

func TestRecoverQuickTranslationsEscapedQuotes(t *testing.T) {
	text := `[{"id":"7","naturalTranslation":"He said \"hello\" twice"}]`
	got := RecoverQuickTranslations(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 translation, got %d", len(got))
	}
	if got[0].NaturalTranslation != `He said "hello" twice` {
		t.Errorf("escapes mangled: %q", got[0].NaturalTranslation)
	}
}
