package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/finsight/internal/domain"
	"github.com/soyeahso/finsight/internal/logging"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", logging.New(nil, "silent", ""))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleResult(id string, ts time.Time) *domain.AggregatedResult {
	return &domain.AggregatedResult{
		Query: domain.Query{
			ID:        id,
			Text:      "Tesla stock and latest news",
			Mode:      domain.ModeTeam,
			Language:  domain.LangEnglish,
			Timestamp: ts,
		},
		Responses: []domain.AgentResponse{
			{AgentID: "news", Kind: domain.KindNews, Content: "top headlines", Duration: 420 * time.Millisecond},
			{AgentID: "finance", Kind: domain.KindFinance, Failed: true, Error: "upstream 502", Duration: 90 * time.Millisecond},
		},
		Combined: "## News\n\ntop headlines",
		Status:   domain.StatusPartial,
		Duration: 510 * time.Millisecond,
	}
}

func TestSQLiteHistoryRoundTrip(t *testing.T) {
	db := testDB(t)
	h := NewSQLiteHistory(db)
	ctx := context.Background()

	ts := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	require.NoError(t, h.Record(ctx, sampleResult("q-1", ts)))

	results, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, "q-1", got.Query.ID)
	assert.Equal(t, domain.ModeTeam, got.Query.Mode)
	assert.Equal(t, domain.StatusPartial, got.Status)
	assert.Equal(t, "## News\n\ntop headlines", got.Combined)
	assert.Equal(t, 510*time.Millisecond, got.Duration)

	require.Len(t, got.Responses, 2)
	assert.Equal(t, "news", got.Responses[0].AgentID)
	assert.False(t, got.Responses[0].Failed)
	assert.Equal(t, "finance", got.Responses[1].AgentID)
	assert.True(t, got.Responses[1].Failed)
	assert.Equal(t, "upstream 502", got.Responses[1].Error)
}

func TestSQLiteHistoryNewestFirst(t *testing.T) {
	db := testDB(t)
	h := NewSQLiteHistory(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		r := sampleResult(fmt.Sprintf("q-%d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, h.Record(ctx, r))
	}

	results, err := h.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "q-4", results[0].Query.ID)
	assert.Equal(t, "q-3", results[1].Query.ID)
	assert.Equal(t, "q-2", results[2].Query.ID)
}

func TestSQLiteHistoryEmpty(t *testing.T) {
	db := testDB(t)
	h := NewSQLiteHistory(db)

	results, err := h.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMigrationsIdempotent(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.migrate())
}

func TestMemoryHistory(t *testing.T) {
	h := NewMemoryHistory()
	ctx := context.Background()

	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		require.NoError(t, h.Record(ctx, sampleResult(fmt.Sprintf("q-%d", i), base)))
	}

	results, err := h.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "q-3", results[0].Query.ID)
	assert.Equal(t, "q-2", results[1].Query.ID)
}
