package usage

import (
	"math"
	"testing"
	"time"
)

func TestCostFor(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		input    int
		output   int
		expected float64
	}{
		{"anthropic", "anthropic", 1_000_000, 1_000_000, 18.00},
		{"openai fractional", "openai", 500_000, 0, 0.075},
		{"google", "google", 0, 2_000_000, 0.80},
		{"unknown provider costs nothing", "mystery", 1_000_000, 1_000_000, 0},
		{"zero tokens", "anthropic", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CostFor(tt.provider, tt.input, tt.output)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("CostFor(%s, %d, %d) = %v, want %v", tt.provider, tt.input, tt.output, got, tt.expected)
			}
		})
	}
}

// recordAt appends an entry with an explicit timestamp.
func recordAt(tr *Tracker, ts time.Time, in, out int, cost float64) {
	tr.now = func() time.Time { return ts }
	tr.RecordUsage(in, out, cost)
}

func TestWeekBoundary(t *testing.T) {
	// 2026-08-19 is a Wednesday; the week starts Monday 2026-08-17
	// 00:00:00.000 UTC.
	now := time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 8, 16, 23, 59, 59, 999_000_000, time.UTC)

	tr := NewTracker()
	recordAt(tr, monday, 10, 10, 1.00)
	recordAt(tr, sunday, 10, 10, 2.00)

	got := tr.ThisWeekTotalAt(now)
	if math.Abs(got-1.00) > 1e-9 {
		t.Errorf("ThisWeekTotalAt = %v, want 1.00 (Monday included, Sunday excluded)", got)
	}
}

func TestWeekStartOnSunday(t *testing.T) {
	// On a Sunday the week started six days earlier.
	now := time.Date(2026, 8, 23, 8, 0, 0, 0, time.UTC) // Sunday
	want := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	if got := weekStart(now); !got.Equal(want) {
		t.Errorf("weekStart(Sunday) = %v, want %v", got, want)
	}
}

func TestMonthTotal(t *testing.T) {
	now := time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC)

	tr := NewTracker()
	recordAt(tr, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), 1, 1, 3.00)
	recordAt(tr, time.Date(2026, 7, 31, 23, 59, 59, 0, time.UTC), 1, 1, 5.00)

	if got := tr.ThisMonthTotalAt(now); math.Abs(got-3.00) > 1e-9 {
		t.Errorf("ThisMonthTotalAt = %v, want 3.00", got)
	}
	if got := tr.AllTimeTotal(); math.Abs(got-8.00) > 1e-9 {
		t.Errorf("AllTimeTotal = %v, want 8.00", got)
	}
}

func TestTodayAggregate(t *testing.T) {
	now := time.Date(2026, 8, 19, 18, 0, 0, 0, time.UTC)

	tr := NewTracker()
	recordAt(tr, time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC), 100, 200, 0.50)
	recordAt(tr, time.Date(2026, 8, 19, 9, 30, 0, 0, time.UTC), 10, 20, 0.25)
	recordAt(tr, time.Date(2026, 8, 18, 23, 59, 0, 0, time.UTC), 999, 999, 9.99)

	got := tr.TodayAt(now)
	if got.Calls != 2 {
		t.Errorf("Calls = %d, want 2", got.Calls)
	}
	if got.InputTokens != 110 || got.OutputTokens != 220 {
		t.Errorf("tokens = %d/%d, want 110/220", got.InputTokens, got.OutputTokens)
	}
	if math.Abs(got.Cost-0.75) > 1e-9 {
		t.Errorf("Cost = %v, want 0.75", got.Cost)
	}
}

func TestRecordClampsNegatives(t *testing.T) {
	tr := NewTracker()
	tr.RecordUsage(-5, -10, -1.0)
	entries := tr.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.InputTokens != 0 || e.OutputTokens != 0 || e.Cost != 0 {
		t.Errorf("negative values not clamped: %+v", e)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC)

	tr := NewTracker()
	recordAt(tr, time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC), 10, 20, 0.30)
	recordAt(tr, time.Date(2026, 8, 19, 6, 0, 0, 0, time.UTC), 30, 40, 0.70)
	recordAt(tr, time.Date(2026, 7, 2, 6, 0, 0, 0, time.UTC), 1, 2, 4.00)

	data, err := tr.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	restored := Deserialize(data)

	if got, want := restored.AllTimeTotal(), tr.AllTimeTotal(); math.Abs(got-want) > 1e-9 {
		t.Errorf("all-time: got %v, want %v", got, want)
	}
	if got, want := restored.ThisWeekTotalAt(now), tr.ThisWeekTotalAt(now); math.Abs(got-want) > 1e-9 {
		t.Errorf("this week: got %v, want %v", got, want)
	}
	if got, want := restored.ThisMonthTotalAt(now), tr.ThisMonthTotalAt(now); math.Abs(got-want) > 1e-9 {
		t.Errorf("this month: got %v, want %v", got, want)
	}
	if got, want := restored.TodayAt(now), tr.TodayAt(now); got != want {
		t.Errorf("today: got %+v, want %+v", got, want)
	}
}

func TestDeserializeInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", "not json at all"},
		{"non-array", `{"inputTokens":1}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Deserialize([]byte(tt.data))
			if len(tr.Entries()) != 0 {
				t.Errorf("expected empty tracker, got %d entries", len(tr.Entries()))
			}
			if tr.AllTimeTotal() != 0 {
				t.Errorf("expected zero total")
			}
		})
	}
}

func TestSerializeEmpty(t *testing.T) {
	data, err := NewTracker().Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("empty tracker serialized as %q, want []", data)
	}
}
