package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// connWrapper serializes writes; gorilla connections allow one concurrent writer.
type connWrapper struct {
	conn  *websocket.Conn
	mutex sync.Mutex
	once  sync.Once
}

func newConnWrapper(c *websocket.Conn) *connWrapper {
	return &connWrapper{conn: c}
}

func (w *connWrapper) WriteJSON(v any, wait time.Duration) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	_ = w.conn.SetWriteDeadline(time.Now().Add(wait))
	return w.conn.WriteJSON(v)
}

func (w *connWrapper) Ping(wait time.Duration) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wait))
}

func (w *connWrapper) WriteClose(wait time.Duration) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing connection")
	return w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wait))
}

func (w *connWrapper) Close() error {
	var err error
	w.once.Do(func() {
		err = w.conn.Close()
	})
	return err
}
