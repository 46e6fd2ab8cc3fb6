package ws

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Registry owns every live connection. Room membership is kept by the
// RoomManager; detach is how Unregister asks it to drop a connection.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]*Connection
	detach func(*Connection)
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]*Connection),
		detach: func(*Connection) {},
	}
}

// Register assigns an id to a freshly handshaken connection and moves it to Open.
func (r *Registry) Register(c *Connection) (string, error) {
	if c == nil {
		return "", fmt.Errorf("%w: nil connection", ErrHandshakeFailed)
	}
	if c.State() != StateConnecting {
		return "", fmt.Errorf("%w: connection is %s", ErrHandshakeFailed, c.State())
	}

	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	c.id = id
	if !c.open() {
		return "", fmt.Errorf("%w: connection is %s", ErrHandshakeFailed, c.State())
	}
	r.conns[id] = c

	return id, nil
}

// Unregister removes the connection from every room and then from the
// registry. Unknown or already removed ids are ignored.
func (r *Registry) Unregister(id string) {
	r.mu.RLock()
	c, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return
	}

	// Closing first so that a concurrent Join sees the connection as gone.
	c.beginClose()
	r.detach(c)

	r.mu.Lock()
	if current, ok := r.conns[id]; ok && current == c {
		delete(r.conns, id)
	}
	r.mu.Unlock()
}

func (r *Registry) Lookup(id string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[id]
	return c, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}

func (r *Registry) Snapshot() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Connection, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	return conns
}
