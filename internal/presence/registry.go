package presence

import "sync"

// Conn is one live client connection. Send must never block the caller;
// implementations drop the connection instead of stalling a broadcast.
type Conn interface {
	ID() string
	Send(frame []byte)
}

// Registry maps user identities to their live connections. One user may hold
// any number of connections at once (multiple tabs or devices). The state is
// process-local and rebuilt from scratch as clients reconnect after a restart.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]map[string]Conn
	owner  map[string]string // connection ID -> user ID, makes Unbind O(1)
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]map[string]Conn),
		owner:  make(map[string]string),
	}
}

// Bind registers conn under userID and reports whether the user just came
// online. Binding the same connection twice is a no-op.
func (r *Registry) Bind(userID string, conn Conn) (first bool) {
	if userID == "" || conn == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.owner[conn.ID()]; ok {
		if owner == userID {
			return false
		}
		r.removeLocked(conn.ID())
	}

	conns := r.byUser[userID]
	if conns == nil {
		conns = make(map[string]Conn)
		r.byUser[userID] = conns
	}
	first = len(conns) == 0
	conns[conn.ID()] = conn
	r.owner[conn.ID()] = userID
	return first
}

// Unbind removes the connection from whichever user holds it and reports
// whether that user just went offline. Unknown connections are a no-op.
func (r *Registry) Unbind(connID string) (userID string, last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(connID)
}

func (r *Registry) removeLocked(connID string) (userID string, last bool) {
	userID, ok := r.owner[connID]
	if !ok {
		return "", false
	}
	delete(r.owner, connID)

	conns := r.byUser[userID]
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.byUser, userID)
		return userID, true
	}
	return userID, false
}

func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// UserOf returns the identity a connection is bound to, if any.
func (r *Registry) UserOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.owner[connID]
	return userID, ok
}

// ConnectionsFor returns a snapshot of the user's live connections.
// Empty slice for offline or unknown users.
func (r *Registry) ConnectionsFor(userID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Conn, 0, len(r.byUser[userID]))
	for _, c := range r.byUser[userID] {
		conns = append(conns, c)
	}
	return conns
}

// OnlineUsers returns a snapshot of every user with at least one connection.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.byUser))
	for userID := range r.byUser {
		users = append(users, userID)
	}
	return users
}

// Connections returns a snapshot of every bound connection, used for
// presence broadcasts.
func (r *Registry) Connections() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Conn, 0, len(r.owner))
	for _, byConn := range r.byUser {
		for _, c := range byConn {
			conns = append(conns, c)
		}
	}
	return conns
}
