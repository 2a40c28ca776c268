package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"foodhive/internal/llm"
)

// Call records metadata for a single outbound API call.
type Call struct {
	Service          string
	Endpoint         string
	Status           int
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a call to the database.
func (s *Store) Record(ctx context.Context, c Call) error {
	ts := c.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_calls (service, endpoint, status, prompt_tokens, completion_tokens, latency_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Service, c.Endpoint, c.Status, c.PromptTokens, c.CompletionTokens, c.LatencyMS, ts.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record api call: %w", err)
	}
	return nil
}

// RecordUsage records an LLM generation.
func (s *Store) RecordUsage(ctx context.Context, service string, usage llm.TokenUsage, latency time.Duration) error {
	if usage.PromptTokens == 0 && usage.CompletionTokens == 0 {
		return nil
	}
	return s.Record(ctx, MapUsage(service, usage, latency))
}

// DailyUsage represents call totals for a single day and service.
type DailyUsage struct {
	Date             string
	Service          string
	TotalCalls       int
	TotalErrors      int
	TotalTokens      int
	AverageLatencyMS int64
}

// GetDailyUsage retrieves usage for the last N days, newest day first.
func (s *Store) GetDailyUsage(days int) ([]DailyUsage, error) {
	since := time.Now().AddDate(0, 0, -days).UnixMilli()
	rows, err := s.db.Query(`
		SELECT strftime('%Y-%m-%d', timestamp / 1000, 'unixepoch') AS day,
		       service,
		       COUNT(*),
		       SUM(CASE WHEN status = 0 OR status >= 400 THEN 1 ELSE 0 END),
		       SUM(prompt_tokens + completion_tokens),
		       CAST(AVG(latency_ms) AS INTEGER)
		FROM api_calls
		WHERE timestamp >= ?
		GROUP BY day, service
		ORDER BY day DESC, service`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.Service, &u.TotalCalls, &u.TotalErrors, &u.TotalTokens, &u.AverageLatencyMS); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(olderThanDays int) (int64, error) {
	threshold := time.Now().AddDate(0, 0, -olderThanDays).UnixMilli()
	res, err := s.db.Exec(`DELETE FROM api_calls WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up api calls: %w", err)
	}
	return res.RowsAffected()
}

// MapUsage helper to convert llm.TokenUsage to a Call.
func MapUsage(service string, usage llm.TokenUsage, latency time.Duration) Call {
	return Call{
		Service:          service,
		Endpoint:         usage.Model,
		Status:           200,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
}
