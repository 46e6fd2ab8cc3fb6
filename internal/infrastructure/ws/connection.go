package ws

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Identity is the authenticated user behind a connection. The realtime
// layer carries it around but never validates it.
type Identity struct {
	ID   string
	Role string
	Name string
}

// Connection is one live client. Its room set is owned by the RoomManager
// and only touched under the manager's lock.
type Connection struct {
	id       string
	conn     *connWrapper
	identity Identity
	send     chan *WSMessage
	rooms    map[string]struct{}

	state    atomic.Int32
	lastSeen atomic.Int64

	closing    chan struct{}
	closeOnce  sync.Once
	writerDone chan struct{}
}

func NewConnection(conn *websocket.Conn, identity Identity, bufferSize int) *Connection {
	if bufferSize <= 0 {
		bufferSize = 64
	}

	c := &Connection{
		identity:   identity,
		send:       make(chan *WSMessage, bufferSize),
		rooms:      make(map[string]struct{}),
		closing:    make(chan struct{}),
		writerDone: make(chan struct{}),
	}
	if conn != nil {
		c.conn = newConnWrapper(conn)
	}
	c.touch()

	return c
}

func (c *Connection) ID() string {
	return c.id
}

func (c *Connection) Identity() Identity {
	return c.identity
}

func (c *Connection) State() State {
	return State(c.state.Load())
}

func (c *Connection) LastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

func (c *Connection) touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

func (c *Connection) open() bool {
	return c.state.CompareAndSwap(int32(StateConnecting), int32(StateOpen))
}

// beginClose moves the connection to Closing and wakes the write pump.
// It reports whether this call performed the transition.
func (c *Connection) beginClose() bool {
	transitioned := false
	c.closeOnce.Do(func() {
		for {
			current := c.state.Load()
			if current >= int32(StateClosing) {
				break
			}
			if c.state.CompareAndSwap(current, int32(StateClosing)) {
				transitioned = true
				break
			}
		}
		close(c.closing)
	})
	return transitioned
}

func (c *Connection) markClosed() {
	c.state.Store(int32(StateClosed))
}

// deliver enqueues msg without blocking. A full buffer or a closing
// connection drops the message.
func (c *Connection) deliver(msg *WSMessage) bool {
	if c.State() != StateOpen {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}
