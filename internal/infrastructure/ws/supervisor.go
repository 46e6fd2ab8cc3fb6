package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsonhttp "github.com/hilthontt/dealerdesk/internal/infrastructure/json"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"go.uber.org/zap"
)

const (
	defaultHeartbeatInterval = 30 * time.Second
	defaultHeartbeatTimeout  = 60 * time.Second
	defaultWriteWait         = 10 * time.Second
	defaultMaxMessageSize    = 32 * 1024
	defaultSendBuffer        = 64
	controlTimeout           = 5 * time.Second
)

type SupervisorConfig struct {
	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration
	WriteWait         time.Duration
	MaxMessageSize    int64
	SendBuffer        int
	// AllowedOrigins lists accepted Origin headers; "*" accepts any. Empty
	// means same-origin only.
	AllowedOrigins []string
}

func (c *SupervisorConfig) applyDefaults() {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.HeartbeatTimeout <= c.HeartbeatInterval {
		c.HeartbeatTimeout = 2 * c.HeartbeatInterval
	}
	if c.WriteWait <= 0 {
		c.WriteWait = defaultWriteWait
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaultMaxMessageSize
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = defaultSendBuffer
	}
}

// IdentityFunc extracts the authenticated user from a handshake request.
type IdentityFunc func(ctx context.Context) (Identity, bool)

// JoinGuard decides whether an identity may enter a room.
type JoinGuard interface {
	CanJoin(ctx context.Context, identity Identity, room string) error
}

type JoinGuardFunc func(ctx context.Context, identity Identity, room string) error

func (f JoinGuardFunc) CanJoin(ctx context.Context, identity Identity, room string) error {
	return f(ctx, identity, room)
}

var allowAll = JoinGuardFunc(func(context.Context, Identity, string) error { return nil })

// Supervisor upgrades HTTP requests to websocket connections and runs each
// connection from handshake to teardown.
type Supervisor struct {
	cfg      SupervisorConfig
	registry *Registry
	rooms    *RoomManager
	identify IdentityFunc
	guard    JoinGuard
	observer Observer
	logger   *zap.SugaredLogger
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewSupervisor(cfg SupervisorConfig, rooms *RoomManager, identify IdentityFunc, guard JoinGuard) *Supervisor {
	cfg.applyDefaults()
	if guard == nil {
		guard = allowAll
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Supervisor{
		cfg:      cfg,
		registry: rooms.registry,
		rooms:    rooms,
		identify: identify,
		guard:    guard,
		observer: rooms.observer,
		logger:   rooms.logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(cfg.AllowedOrigins),
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

func (s *Supervisor) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

func (s *Supervisor) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Supervisor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.isClosed() {
		jsonhttp.WriteError(w, http.StatusServiceUnavailable, nil, "server is shutting down")
		return
	}

	identity, ok := s.identify(r.Context())
	if !ok {
		jsonhttp.WriteError(w, http.StatusUnauthorized, nil, "authentication required")
		return
	}

	if !s.acquire() {
		jsonhttp.WriteError(w, http.StatusServiceUnavailable, nil, "server is shutting down")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.wg.Done()
		s.logger.Errorw("websocket handshake failed",
			logging.KeyCategory, logging.Realtime,
			logging.KeySubCategory, logging.Handshake,
			"remote_addr", r.RemoteAddr,
			"error", fmt.Errorf("%w: %w", ErrHandshakeFailed, err),
		)
		return
	}

	c := NewConnection(conn, identity, s.cfg.SendBuffer)
	if _, err := s.registry.Register(c); err != nil {
		_ = conn.Close()
		s.wg.Done()
		s.logger.Errorw("websocket handshake failed",
			logging.KeyCategory, logging.Realtime,
			logging.KeySubCategory, logging.Handshake,
			"remote_addr", r.RemoteAddr,
			"error", err,
		)
		return
	}
	s.observer.ConnectionOpened()

	s.logger.Debugw("connection opened",
		logging.KeyCategory, logging.Realtime,
		logging.KeySubCategory, logging.Handshake,
		"conn_id", c.ID(),
		"user_id", identity.ID,
	)

	go s.writePump(c)
	go s.readPump(c)

	// Shutdown may have snapshotted the registry before this connection joined it.
	if s.isClosed() {
		c.beginClose()
	}
}

func (s *Supervisor) readPump(c *Connection) {
	defer s.finish(c)

	conn := c.conn.conn
	conn.SetReadLimit(s.cfg.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.HeartbeatTimeout))
	conn.SetPongHandler(func(string) error {
		c.touch()
		return conn.SetReadDeadline(time.Now().Add(s.cfg.HeartbeatTimeout))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Debugw("ws read error",
					logging.KeyCategory, logging.Realtime,
					logging.KeySubCategory, logging.Api,
					"conn_id", c.ID(),
					"error", err,
				)
			}
			return
		}

		c.touch()
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.HeartbeatTimeout))

		if len(raw) == 0 {
			continue
		}
		s.handleControl(c, raw)
	}
}

func (s *Supervisor) handleControl(c *Connection, raw []byte) {
	var ctrl ControlMessage
	if err := json.Unmarshal(raw, &ctrl); err != nil {
		c.deliver(NewError("", "bad_frame", "malformed control frame"))
		return
	}

	var (
		namespace string
		join      bool
	)
	switch ctrl.Type {
	case JoinClient:
		namespace, join = NamespaceClient, true
	case LeaveClient:
		namespace = NamespaceClient
	case JoinTeam:
		namespace, join = NamespaceTeam, true
	case LeaveTeam:
		namespace = NamespaceTeam
	default:
		c.deliver(NewError("", "unknown_type", fmt.Sprintf("unsupported frame type %q", ctrl.Type)))
		return
	}

	room := namespace + ":" + ctrl.ID
	if err := ValidateRoom(room); err != nil {
		c.deliver(NewError(room, "invalid_room", err.Error()))
		return
	}

	if !join {
		if err := s.rooms.Leave(c.ID(), room); err != nil {
			c.deliver(NewError(room, "leave_failed", err.Error()))
		}
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, controlTimeout)
	defer cancel()

	if err := s.guard.CanJoin(ctx, c.Identity(), room); err != nil {
		c.deliver(NewError(room, "forbidden", err.Error()))
		return
	}
	if err := s.rooms.Join(c.ID(), room); err != nil {
		c.deliver(NewError(room, "join_failed", err.Error()))
	}
}

// finish tears the connection down once its read side is gone. Rooms are
// left before the transport is closed.
func (s *Supervisor) finish(c *Connection) {
	c.beginClose()
	<-c.writerDone

	s.registry.Unregister(c.ID())
	_ = c.conn.Close()
	c.markClosed()
	s.observer.ConnectionClosed()

	s.logger.Debugw("connection closed",
		logging.KeyCategory, logging.Realtime,
		logging.KeySubCategory, logging.Shutdown,
		"conn_id", c.ID(),
		"user_id", c.Identity().ID,
	)

	s.wg.Done()
}

func (s *Supervisor) writePump(c *Connection) {
	defer close(c.writerDone)

	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg, s.cfg.WriteWait); err != nil {
				s.abort(c, err)
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(s.cfg.WriteWait); err != nil {
				s.abort(c, err)
				return
			}
		case <-c.closing:
			s.drain(c)
			_ = c.conn.WriteClose(s.cfg.WriteWait)
			// Give the peer one write window to answer the close frame.
			_ = c.conn.conn.SetReadDeadline(time.Now().Add(s.cfg.WriteWait))
			return
		}
	}
}

func (s *Supervisor) drain(c *Connection) {
	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg, s.cfg.WriteWait); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (s *Supervisor) abort(c *Connection, err error) {
	s.logger.Debugw("ws write error",
		logging.KeyCategory, logging.Realtime,
		logging.KeySubCategory, logging.Api,
		"conn_id", c.ID(),
		"error", err,
	)
	c.beginClose()
	_ = c.conn.Close()
}

// Shutdown stops accepting connections, asks every open connection to
// close and waits for them until ctx expires.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	conns := s.registry.Snapshot()
	for _, c := range conns {
		c.beginClose()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	defer s.cancel()

	select {
	case <-done:
		s.logger.Infow("realtime connections drained",
			logging.KeyCategory, logging.Realtime,
			logging.KeySubCategory, logging.Shutdown,
			"connections", len(conns),
		)
		return nil
	case <-ctx.Done():
		for _, c := range s.registry.Snapshot() {
			_ = c.conn.Close()
		}
		return fmt.Errorf("realtime shutdown: %w", errors.Join(ctx.Err(), errShutdownForced))
	}
}

var errShutdownForced = errors.New("connections force closed")
