package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/soyeahso/finsight/internal/domain"
)

// History records completed queries and serves them back most recent first.
type History interface {
	// Record persists an aggregated result and its per-agent responses.
	Record(ctx context.Context, result *domain.AggregatedResult) error

	// Recent returns up to limit results, newest first.
	Recent(ctx context.Context, limit int) ([]domain.AggregatedResult, error)
}

// SQLiteHistory implements History backed by SQLite.
type SQLiteHistory struct {
	db *DB
}

// NewSQLiteHistory creates a history store using the given database.
func NewSQLiteHistory(db *DB) *SQLiteHistory {
	return &SQLiteHistory{db: db}
}

// Record persists the result and its responses in one transaction.
func (s *SQLiteHistory) Record(ctx context.Context, result *domain.AggregatedResult) error {
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}

	ts := result.Query.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO queries (id, text, mode, language, status, combined, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.Query.ID, result.Query.Text, string(result.Query.Mode), result.Query.Language,
		string(result.Status), result.Combined, result.Duration.Milliseconds(),
		ts.UTC().Format(time.DateTime),
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("recording query %s: %w", result.Query.ID, err)
	}

	for i, resp := range result.Responses {
		failed := 0
		if resp.Failed {
			failed = 1
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO agent_results (query_id, agent_id, kind, content, failed, error, duration_ms, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			result.Query.ID, resp.AgentID, string(resp.Kind), resp.Content,
			failed, resp.Error, resp.Duration.Milliseconds(), i,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("recording agent result %s/%s: %w", result.Query.ID, resp.AgentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history: %w", err)
	}
	return nil
}

// Recent returns up to limit results, newest first, with their agent
// responses in original fan-out order.
func (s *SQLiteHistory) Recent(ctx context.Context, limit int) ([]domain.AggregatedResult, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, text, mode, language, status, combined, duration_ms, created_at
		 FROM queries ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var results []domain.AggregatedResult
	for rows.Next() {
		var r domain.AggregatedResult
		var mode, status, createdAt string
		var durationMs int64
		if err := rows.Scan(&r.Query.ID, &r.Query.Text, &mode, &r.Query.Language,
			&status, &r.Combined, &durationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		r.Query.Mode = domain.Mode(mode)
		r.Status = domain.Status(status)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.Query.Timestamp, _ = time.Parse(time.DateTime, createdAt)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history rows: %w", err)
	}

	for i := range results {
		responses, err := s.loadResponses(ctx, results[i].Query.ID)
		if err != nil {
			return nil, err
		}
		results[i].Responses = responses
	}
	return results, nil
}

func (s *SQLiteHistory) loadResponses(ctx context.Context, queryID string) ([]domain.AgentResponse, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT agent_id, kind, content, failed, error, duration_ms
		 FROM agent_results WHERE query_id = ? ORDER BY position`, queryID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading agent results for %s: %w", queryID, err)
	}
	defer rows.Close()

	var responses []domain.AgentResponse
	for rows.Next() {
		var resp domain.AgentResponse
		var kind string
		var failed int
		var durationMs int64
		if err := rows.Scan(&resp.AgentID, &kind, &resp.Content, &failed, &resp.Error, &durationMs); err != nil {
			return nil, fmt.Errorf("scanning agent result: %w", err)
		}
		resp.Kind = domain.AgentKind(kind)
		resp.Failed = failed != 0
		resp.Duration = time.Duration(durationMs) * time.Millisecond
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// MemoryHistory is an in-memory History, used when persistence is
// disabled and in tests.
type MemoryHistory struct {
	mu      sync.RWMutex
	results []domain.AggregatedResult
}

// NewMemoryHistory creates an empty in-memory history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

func (m *MemoryHistory) Record(_ context.Context, result *domain.AggregatedResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, *result)
	return nil
}

func (m *MemoryHistory) Recent(_ context.Context, limit int) ([]domain.AggregatedResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}

	out := make([]domain.AggregatedResult, 0, limit)
	for i := len(m.results) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.results[i])
	}
	return out, nil
}
