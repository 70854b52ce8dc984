package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hanlens/hanlens/internal/usage"
)

// UsageStore persists usage entries. Rows are append-only, mirroring
// the in-memory tracker's contract.
type UsageStore struct {
	db *sql.DB
}

func NewUsageStore(sqlDB *sql.DB) *UsageStore {
	return &UsageStore{db: sqlDB}
}

// Append records one completed provider call.
func (s *UsageStore) Append(ctx context.Context, provider string, e usage.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_entries (id, provider, input_tokens, output_tokens, cost, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), provider, e.InputTokens, e.OutputTokens, e.Cost,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to append usage entry: %w", err)
	}
	return nil
}

// LoadTracker rebuilds an in-memory tracker from the persisted log, in
// record order.
func (s *UsageStore) LoadTracker(ctx context.Context) (*usage.Tracker, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT input_tokens, output_tokens, cost, created_at FROM usage_entries ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage entries: %w", err)
	}
	defer rows.Close()

	var entries []usage.Entry
	for rows.Next() {
		var e usage.Entry
		var createdAt string
		if err := rows.Scan(&e.InputTokens, &e.OutputTokens, &e.Cost, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage entry: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			// A corrupt timestamp shouldn't sink the whole log.
			continue
		}
		e.Timestamp = ts
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return usage.FromEntries(entries), nil
}
