package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_RecordAndFilter(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start
	repo := NewMemoryRepository(func() time.Time { return now })

	require.NoError(t, repo.RecordEvent(EventSessionStarted, EventMetadata{"players": 2}))
	now = now.Add(time.Minute)
	require.NoError(t, repo.RecordEvent(EventCardDrawn, EventMetadata{"type": "users"}))
	require.NoError(t, repo.RecordEvent(EventCardBought, EventMetadata{"amount": 60}))

	all, err := repo.GetEvents(time.Time{}, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Less(t, all[0].ID, all[1].ID)
	assert.Less(t, all[1].ID, all[2].ID)

	later, err := repo.GetEvents(start.Add(time.Second), nil)
	require.NoError(t, err)
	assert.Len(t, later, 2)

	bought, err := repo.GetEvents(time.Time{}, []EventType{EventCardBought})
	require.NoError(t, err)
	require.Len(t, bought, 1)
	assert.JSONEq(t, `{"amount":60}`, bought[0].Metadata)

	require.NoError(t, repo.Clear())
	all, err = repo.GetEvents(time.Time{}, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCalculateStats(t *testing.T) {
	repo := NewMemoryRepository(nil)
	record := func(et EventType, md EventMetadata) {
		require.NoError(t, repo.RecordEvent(et, md))
	}
	record(EventCardDrawn, EventMetadata{"type": "users"})
	record(EventCardDrawn, EventMetadata{"type": "users"})
	record(EventCardDrawn, EventMetadata{"type": "events"})
	record(EventDeckEmpty, EventMetadata{"type": "services"})
	record(EventCardBought, EventMetadata{"amount": 60})
	record(EventCardBought, EventMetadata{"amount": 90})
	record(EventCardSold, EventMetadata{"amount": 30})
	record(EventTransactionRejected, EventMetadata{"reason": "insufficient funds"})

	events, err := repo.GetEvents(time.Time{}, nil)
	require.NoError(t, err)

	stats, err := CalculateStats(events, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", stats.Period)
	assert.Equal(t, 3, stats.Draws)
	assert.Equal(t, 1, stats.EmptyDraws)
	assert.Equal(t, 2, stats.Purchases)
	assert.Equal(t, 1, stats.Sales)
	assert.Equal(t, 150, stats.PicoinsSpent)
	assert.Equal(t, 30, stats.PicoinsEarned)
	assert.Equal(t, map[string]int{"users": 2, "events": 1}, stats.DrawsByType)
	assert.Equal(t, map[string]int{"insufficient funds": 1}, stats.RejectedBy)
	assert.InDelta(t, 2.0/3.0, stats.BuyRate, 0.0001)
	assert.Equal(t, 3, stats.EventCounts[EventCardDrawn])
}
