package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"linkspace/internal/presence"
)

func TestIncrementForPushesStoreReturnValue(t *testing.T) {
	store := newFakeUnreadStore()
	// Pre-existing backlog: the pushed value must be the store's
	// post-increment result, never a locally computed snapshot+1.
	store.counts[counterKey("c1", "u2")] = 6

	registry := presence.NewRegistry()
	conn := newRecordingConn("cB")
	registry.Bind("u2", conn)

	coordinator := NewUnreadCoordinator(store, registry, time.Second)
	coordinator.IncrementFor(context.Background(), "c1", []string{"u2"})

	frames := conn.receivedOfType(t, EventUpdateUnreadCount)
	require.Len(t, frames, 1)

	var payload UnreadCountPayload
	require.NoError(t, json.Unmarshal(frames[0].Payload, &payload))
	require.Equal(t, "c1", payload.ConversationID)
	require.EqualValues(t, 7, payload.Count)
}

func TestIncrementForOfflineRecipientStillCounts(t *testing.T) {
	store := newFakeUnreadStore()
	registry := presence.NewRegistry()

	coordinator := NewUnreadCoordinator(store, registry, time.Second)
	coordinator.IncrementFor(context.Background(), "c1", []string{"u2"})

	require.EqualValues(t, 1, store.count("c1", "u2"))
}

func TestIncrementForFailureIsolatedPerRecipient(t *testing.T) {
	store := newFakeUnreadStore()
	store.failFor[counterKey("c1", "u2")] = errors.New("backend down")

	registry := presence.NewRegistry()
	coordinator := NewUnreadCoordinator(store, registry, time.Second)
	coordinator.IncrementFor(context.Background(), "c1", []string{"u2", "u3"})

	require.EqualValues(t, 0, store.count("c1", "u2"))
	require.EqualValues(t, 1, store.count("c1", "u3"))
}

func TestMarkReadResetsAndNotifies(t *testing.T) {
	store := newFakeUnreadStore()
	store.counts[counterKey("c1", "u2")] = 4

	registry := presence.NewRegistry()
	conn := newRecordingConn("cB")
	registry.Bind("u2", conn)

	coordinator := NewUnreadCoordinator(store, registry, time.Second)
	require.NoError(t, coordinator.MarkRead(context.Background(), "c1", "u2"))
	require.EqualValues(t, 0, store.count("c1", "u2"))

	frames := conn.receivedOfType(t, EventUpdateUnreadCount)
	require.Len(t, frames, 1)

	var payload UnreadCountPayload
	require.NoError(t, json.Unmarshal(frames[0].Payload, &payload))
	require.EqualValues(t, 0, payload.Count)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	store := newFakeUnreadStore()
	registry := presence.NewRegistry()
	coordinator := NewUnreadCoordinator(store, registry, time.Second)

	require.NoError(t, coordinator.MarkRead(context.Background(), "c1", "u2"))
	require.NoError(t, coordinator.MarkRead(context.Background(), "c1", "u2"))
	require.EqualValues(t, 0, store.count("c1", "u2"))
}

func TestMarkReadThenNextSendCountsToOne(t *testing.T) {
	store := newFakeUnreadStore()
	store.counts[counterKey("c1", "u2")] = 9

	registry := presence.NewRegistry()
	coordinator := NewUnreadCoordinator(store, registry, time.Second)

	require.NoError(t, coordinator.MarkRead(context.Background(), "c1", "u2"))
	coordinator.IncrementFor(context.Background(), "c1", []string{"u2"})

	require.EqualValues(t, 1, store.count("c1", "u2"))
}
