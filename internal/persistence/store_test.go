package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/dicebot/internal/engine"
)

func TestStoreAppendLoad(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "history", "log.jsonl")

	store, err := NewStore(logPath)
	require.NoError(t, err)
	defer store.Close()

	at := time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)
	err = store.Append(&engine.DiceRolledEvent{
		ID:         "a",
		ActorName:  "Paulo",
		Expression: "2d6+str",
		Resolved:   "2d6+(3)",
		Total:      "10",
		Lines:      []string{"Rolling: `2d6+(3)`", "2d6: 3 + 4 = 7", "Paulo rolled 10"},
		RolledAt:   at,
	})
	require.NoError(t, err)

	err = store.Append(&engine.RollFailedEvent{
		ID:         "b",
		ActorName:  "Paulo",
		Expression: "(1+2",
		Reason:     "missing closing parenthesis in (1+2",
		RolledAt:   at,
	})
	require.NoError(t, err)

	// Read it back
	events, err := store.Load()
	require.NoError(t, err)
	require.Len(t, events, 2)

	e1, ok := events[0].(*engine.DiceRolledEvent)
	require.True(t, ok, "expected first event to be DiceRolledEvent")
	assert.Equal(t, "10", e1.Total)
	assert.True(t, at.Equal(e1.RolledAt))
	assert.Equal(t, "Rolling: `2d6+(3)`\n2d6: 3 + 4 = 7\nPaulo rolled 10", e1.Message())

	e2, ok := events[1].(*engine.RollFailedEvent)
	require.True(t, ok, "expected second event to be RollFailedEvent")
	assert.Equal(t, "(1+2", e2.Expression)
}

func TestStoreRecent(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "log.jsonl"))
	require.NoError(t, err)
	defer store.Close()

	for _, evt := range []*engine.DiceRolledEvent{
		{ID: "1", Server: "table-1", ActorName: "Paulo", Total: "1"},
		{ID: "2", Server: "table-1", ActorName: "Ana", Total: "2"},
		{ID: "3", Server: "table-1", ActorName: "Paulo", Total: "3"},
		{ID: "4", Server: "table-1", ActorName: "Paulo", Total: "4"},
	} {
		require.NoError(t, store.Append(evt))
	}

	events, err := store.Recent("table-1", "Paulo", 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "3", events[0].(*engine.DiceRolledEvent).ID)
	assert.Equal(t, "4", events[1].(*engine.DiceRolledEvent).ID)

	events, err = store.Recent("table-1", "", 10)
	require.NoError(t, err)
	assert.Len(t, events, 4)
}

func TestStoreRecentStaysOnServer(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "log.jsonl"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Append(&engine.DiceRolledEvent{ID: "1", Server: "table-1", User: "42", ActorName: "Paulo", Total: "1"}))
	require.NoError(t, store.Append(&engine.RollFailedEvent{ID: "2", Server: "table-2", User: "77", ActorName: "Paulo", Reason: "boom"}))
	require.NoError(t, store.Append(&engine.DiceRolledEvent{ID: "3", Server: "table-2", User: "77", Total: "3"}))

	events, err := store.Recent("table-1", "Paulo", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "1", events[0].(*engine.DiceRolledEvent).ID)

	events, err = store.Recent("table-2", "", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	failed := events[0].(*engine.RollFailedEvent)
	assert.Equal(t, "77", failed.User)
	assert.Equal(t, "table-2", failed.Server)

	events, err = store.Recent("table-3", "", 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
