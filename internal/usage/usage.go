// Package usage is the append-only usage/cost accumulator. Entries are
// recorded once per completed provider call and never mutated; every
// read query is a pure function of "now" plus the log.
package usage

import (
	"encoding/json"
	"sync"
	"time"
)

// Pricing is dollars per million tokens.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// Fixed per-provider pricing for the models the registry pins.
var pricingTable = map[string]Pricing{
	"anthropic": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"openai":    {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	"google":    {InputPerMillion: 0.10, OutputPerMillion: 0.40},
}

// CostFor derives the cost of one completed call. Unknown providers
// cost nothing rather than failing; the caller already validated the
// provider name before any network call happened.
func CostFor(provider string, inputTokens, outputTokens int) float64 {
	p, ok := pricingTable[provider]
	if !ok {
		return 0
	}
	return float64(inputTokens)/1e6*p.InputPerMillion +
		float64(outputTokens)/1e6*p.OutputPerMillion
}

// Entry is one recorded call. Timestamp is assigned at record time.
type Entry struct {
	InputTokens  int       `json:"inputTokens"`
	OutputTokens int       `json:"outputTokens"`
	Cost         float64   `json:"cost"`
	Timestamp    time.Time `json:"timestamp"`
}

// TodayStats aggregates the current UTC day.
type TodayStats struct {
	Calls        int     `json:"calls"`
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	Cost         float64 `json:"cost"`
}

// Tracker holds the append-only log. Append is the only mutation, so
// concurrent completions only affect log order, never correctness.
type Tracker struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// NewTracker returns an empty tracker on the real clock.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// FromEntries rebuilds a tracker from previously recorded entries.
func FromEntries(entries []Entry) *Tracker {
	t := NewTracker()
	t.entries = append(t.entries, entries...)
	return t
}

// RecordUsage appends one entry. Negative counts are clamped to zero.
func (t *Tracker) RecordUsage(inputTokens, outputTokens int, cost float64) {
	if inputTokens < 0 {
		inputTokens = 0
	}
	if outputTokens < 0 {
		outputTokens = 0
	}
	if cost < 0 {
		cost = 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Entry{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         cost,
		Timestamp:    t.now().UTC(),
	})
}

// Entries returns a copy of the log in record order.
func (t *Tracker) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// AllTimeTotal sums the cost of every entry.
func (t *Tracker) AllTimeTotal() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total float64
	for _, e := range t.entries {
		total += e.Cost
	}
	return total
}

// ThisWeekTotal sums cost since Monday 00:00 UTC of the current week.
func (t *Tracker) ThisWeekTotal() float64 {
	return t.ThisWeekTotalAt(t.now())
}

// ThisWeekTotalAt is ThisWeekTotal with an explicit clock, for testing.
func (t *Tracker) ThisWeekTotalAt(now time.Time) float64 {
	return t.costSince(weekStart(now))
}

// ThisMonthTotal sums cost since day 1, 00:00 UTC of the current month.
func (t *Tracker) ThisMonthTotal() float64 {
	return t.ThisMonthTotalAt(t.now())
}

// ThisMonthTotalAt is ThisMonthTotal with an explicit clock.
func (t *Tracker) ThisMonthTotalAt(now time.Time) float64 {
	return t.costSince(monthStart(now))
}

// Today aggregates calls, tokens, and cost for the current UTC day.
func (t *Tracker) Today() TodayStats {
	return t.TodayAt(t.now())
}

// TodayAt is Today with an explicit clock.
func (t *Tracker) TodayAt(now time.Time) TodayStats {
	cut := dayStart(now)
	t.mu.Lock()
	defer t.mu.Unlock()
	var stats TodayStats
	for _, e := range t.entries {
		if e.Timestamp.Before(cut) {
			continue
		}
		stats.Calls++
		stats.InputTokens += e.InputTokens
		stats.OutputTokens += e.OutputTokens
		stats.Cost += e.Cost
	}
	return stats
}

func (t *Tracker) costSince(cut time.Time) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total float64
	for _, e := range t.entries {
		if e.Timestamp.Before(cut) {
			continue
		}
		total += e.Cost
	}
	return total
}

// weekStart truncates now to Monday 00:00 UTC: Sunday shifts six days
// back, any other day shifts weekday-1 days back.
func weekStart(now time.Time) time.Time {
	now = now.UTC()
	back := int(now.Weekday()) - 1
	if now.Weekday() == time.Sunday {
		back = 6
	}
	d := now.AddDate(0, 0, -back)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func monthStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func dayStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Serialize writes the log as a JSON array, losslessly.
func (t *Tracker) Serialize() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.entries)
}

// Deserialize rebuilds a tracker from a serialized log. Invalid or
// non-array data yields an empty tracker rather than an error.
func Deserialize(data []byte) *Tracker {
	t := NewTracker()
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return t
	}
	t.entries = entries
	return t
}
