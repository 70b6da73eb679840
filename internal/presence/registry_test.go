package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id     string
	mu     sync.Mutex
	frames [][]byte
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: id} }

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, frame)
}

func TestBindMarksUserOnline(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn("c1")

	first := r.Bind("u1", conn)

	require.True(t, first)
	require.True(t, r.IsOnline("u1"))
	require.Len(t, r.ConnectionsFor("u1"), 1)
	require.Equal(t, []string{"u1"}, r.OnlineUsers())
}

func TestBindIsIdempotentPerConnection(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn("c1")

	require.True(t, r.Bind("u1", conn))
	require.False(t, r.Bind("u1", conn))
	require.Len(t, r.ConnectionsFor("u1"), 1)
}

func TestSecondConnectionIsNotFirst(t *testing.T) {
	r := NewRegistry()

	require.True(t, r.Bind("u1", newFakeConn("c1")))
	require.False(t, r.Bind("u1", newFakeConn("c2")))
	require.Len(t, r.ConnectionsFor("u1"), 2)
}

func TestUnbindKeepsUserOnlineWhileOtherConnectionsRemain(t *testing.T) {
	r := NewRegistry()
	r.Bind("u1", newFakeConn("c1"))
	r.Bind("u1", newFakeConn("c2"))

	userID, last := r.Unbind("c1")

	require.Equal(t, "u1", userID)
	require.False(t, last)
	require.True(t, r.IsOnline("u1"))

	userID, last = r.Unbind("c2")

	require.Equal(t, "u1", userID)
	require.True(t, last)
	require.False(t, r.IsOnline("u1"))
	require.Empty(t, r.OnlineUsers())
}

func TestUnbindUnknownConnectionIsNoOp(t *testing.T) {
	r := NewRegistry()

	userID, last := r.Unbind("never-bound")

	require.Empty(t, userID)
	require.False(t, last)
}

func TestLookupsForUnknownUserAreEmpty(t *testing.T) {
	r := NewRegistry()

	require.False(t, r.IsOnline("ghost"))
	require.Empty(t, r.ConnectionsFor("ghost"))
}

func TestRebindToDifferentUserMovesConnection(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn("c1")

	r.Bind("u1", conn)
	first := r.Bind("u2", conn)

	require.True(t, first)
	require.False(t, r.IsOnline("u1"))
	require.True(t, r.IsOnline("u2"))

	userID, ok := r.UserOf("c1")
	require.True(t, ok)
	require.Equal(t, "u2", userID)
}

func TestConnectionsSnapshotCoversAllBoundConnections(t *testing.T) {
	r := NewRegistry()
	r.Bind("u1", newFakeConn("c1"))
	r.Bind("u1", newFakeConn("c2"))
	r.Bind("u2", newFakeConn("c3"))

	require.Len(t, r.Connections(), 3)
}

func TestConcurrentBindUnbind(t *testing.T) {
	r := NewRegistry()
	const users = 8
	const connsPerUser = 16

	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		for c := 0; c < connsPerUser; c++ {
			wg.Add(1)
			go func(u, c int) {
				defer wg.Done()
				userID := fmt.Sprintf("u%d", u)
				connID := fmt.Sprintf("u%d-c%d", u, c)
				r.Bind(userID, newFakeConn(connID))
				if c%2 == 0 {
					r.Unbind(connID)
				}
			}(u, c)
		}
	}
	wg.Wait()

	require.Len(t, r.OnlineUsers(), users)
	for u := 0; u < users; u++ {
		require.Len(t, r.ConnectionsFor(fmt.Sprintf("u%d", u)), connsPerUser/2)
	}
}
