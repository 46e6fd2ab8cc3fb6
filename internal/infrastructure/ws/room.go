package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"go.uber.org/zap"
)

const defaultPublishTimeout = 2 * time.Second

type RoomOption func(*RoomManager)

func WithDistributor(d Distributor) RoomOption {
	return func(rm *RoomManager) {
		rm.dist = d
	}
}

func WithObserver(o Observer) RoomOption {
	return func(rm *RoomManager) {
		if o != nil {
			rm.observer = o
		}
	}
}

// WithPublishTimeout bounds how long Publish waits on the distribution
// backend. Non-positive values keep the default.
func WithPublishTimeout(d time.Duration) RoomOption {
	return func(rm *RoomManager) {
		if d > 0 {
			rm.publishTimeout = d
		}
	}
}

func WithLogger(l *zap.SugaredLogger) RoomOption {
	return func(rm *RoomManager) {
		if l != nil {
			rm.logger = l
		}
	}
}

// RoomManager multiplexes connections into rooms. Both directions of the
// membership index (room to connections, connection to rooms) are guarded
// by mu and always mutated together.
type RoomManager struct {
	registry *Registry

	mu    sync.RWMutex
	rooms map[string]map[string]*Connection

	dist           Distributor
	publishTimeout time.Duration
	observer       Observer
	logger         *zap.SugaredLogger
}

func NewRoomManager(registry *Registry, opts ...RoomOption) *RoomManager {
	rm := &RoomManager{
		registry: registry,
		rooms:    make(map[string]map[string]*Connection),
		dist:           NewLocalDistributor(),
		publishTimeout: defaultPublishTimeout,
		observer:       nopObserver{},
		logger:         zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(rm)
	}

	registry.detach = rm.leaveAll
	rm.dist.OnExternalEvent(rm.deliverExternal)

	return rm
}

func (rm *RoomManager) Distributor() Distributor {
	return rm.dist
}

// Join adds the connection to room. Joining twice is a no-op.
func (rm *RoomManager) Join(connID, room string) error {
	if err := ValidateRoom(room); err != nil {
		return err
	}

	c, ok := rm.registry.Lookup(connID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrConnectionNotFound, connID)
	}

	return rm.join(c, room)
}

// Leave removes the connection from room. Leaving a room the connection
// is not in is a no-op.
func (rm *RoomManager) Leave(connID, room string) error {
	if err := ValidateRoom(room); err != nil {
		return err
	}

	c, ok := rm.registry.Lookup(connID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrConnectionNotFound, connID)
	}

	rm.leave(c, room)
	return nil
}

func (rm *RoomManager) join(c *Connection, room string) error {
	rm.mu.Lock()

	// Checked under the lock: Unregister sets Closing before it detaches.
	if c.State() != StateOpen {
		rm.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", ErrConnectionNotFound, c.ID(), c.State())
	}

	members, ok := rm.rooms[room]
	if !ok {
		members = make(map[string]*Connection)
		rm.rooms[room] = members
	}
	members[c.ID()] = c
	c.rooms[room] = struct{}{}
	n := len(rm.rooms)

	rm.mu.Unlock()

	rm.observer.RoomsActive(n)
	return nil
}

func (rm *RoomManager) leave(c *Connection, room string) {
	rm.mu.Lock()
	rm.removeLocked(c, room)
	n := len(rm.rooms)
	rm.mu.Unlock()

	rm.observer.RoomsActive(n)
}

func (rm *RoomManager) leaveAll(c *Connection) {
	rm.mu.Lock()
	for room := range c.rooms {
		rm.removeLocked(c, room)
	}
	n := len(rm.rooms)
	rm.mu.Unlock()

	rm.observer.RoomsActive(n)
}

func (rm *RoomManager) removeLocked(c *Connection, room string) {
	delete(c.rooms, room)

	members, ok := rm.rooms[room]
	if !ok {
		return
	}
	delete(members, c.ID())
	if len(members) == 0 {
		delete(rm.rooms, room)
	}
}

// Publish fans event out to every local member of room and hands it to the
// distribution backend. Delivery is best effort: only an invalid room is
// reported to the caller.
func (rm *RoomManager) Publish(ctx context.Context, room, event string, payload any) error {
	if err := ValidateRoom(room); err != nil {
		return err
	}

	msg := &WSMessage{
		Type:   event,
		RoomID: room,
		Data:   payload,
	}

	rm.deliverLocal(msg)
	rm.observer.Published(OriginLocal)

	ctx, cancel := context.WithTimeout(ctx, rm.publishTimeout)
	defer cancel()

	if err := rm.dist.PublishExternal(ctx, msg); err != nil {
		rm.logger.Warnw("failed to distribute event",
			logging.KeyCategory, logging.Realtime,
			logging.KeySubCategory, logging.Publish,
			"distributor", rm.dist.Name(),
			"room", room,
			"event", event,
			"error", err,
		)
	}

	return nil
}

// Evict removes every connection authenticated as identityID from room, on
// this node and through the distribution backend on the others. Each
// evicted connection receives a RoomEvicted notice.
func (rm *RoomManager) Evict(ctx context.Context, room, identityID string) error {
	if err := ValidateRoom(room); err != nil {
		return err
	}

	rm.evictLocal(room, identityID)

	ctx, cancel := context.WithTimeout(ctx, rm.publishTimeout)
	defer cancel()

	if err := rm.dist.PublishExternal(ctx, &WSMessage{
		Type:   RoomEvicted,
		RoomID: room,
		Data:   identityID,
	}); err != nil {
		rm.logger.Warnw("failed to distribute eviction",
			logging.KeyCategory, logging.Realtime,
			logging.KeySubCategory, logging.Publish,
			"distributor", rm.dist.Name(),
			"room", room,
			"error", err,
		)
	}

	return nil
}

func (rm *RoomManager) evictLocal(room, identityID string) {
	rm.mu.Lock()
	var evicted []*Connection
	for _, c := range rm.rooms[room] {
		if c.Identity().ID == identityID {
			evicted = append(evicted, c)
		}
	}
	for _, c := range evicted {
		rm.removeLocked(c, room)
	}
	n := len(rm.rooms)
	rm.mu.Unlock()

	if len(evicted) == 0 {
		return
	}
	rm.observer.RoomsActive(n)

	notice := &WSMessage{Type: RoomEvicted, RoomID: room}
	for _, c := range evicted {
		if !c.deliver(notice) {
			rm.observer.DeliveryDropped()
		}
	}
}

// deliverExternal handles events received from other instances. They are
// delivered locally and never re-emitted.
func (rm *RoomManager) deliverExternal(msg *WSMessage) {
	if err := ValidateRoom(msg.RoomID); err != nil {
		rm.logger.Warnw("discarding external event",
			logging.KeyCategory, logging.Realtime,
			logging.KeySubCategory, logging.Subscribe,
			"room", msg.RoomID,
			"error", err,
		)
		return
	}

	if msg.Type == RoomEvicted {
		var identityID string
		raw, _ := msg.Data.(json.RawMessage)
		if err := json.Unmarshal(raw, &identityID); err != nil || identityID == "" {
			rm.logger.Warnw("discarding malformed eviction",
				logging.KeyCategory, logging.Realtime,
				logging.KeySubCategory, logging.Subscribe,
				"room", msg.RoomID,
			)
			return
		}
		rm.evictLocal(msg.RoomID, identityID)
		return
	}

	rm.deliverLocal(msg)
	rm.observer.Published(OriginExternal)
}

func (rm *RoomManager) deliverLocal(msg *WSMessage) {
	rm.mu.RLock()
	members := rm.rooms[msg.RoomID]
	snapshot := make([]*Connection, 0, len(members))
	for _, c := range members {
		snapshot = append(snapshot, c)
	}
	rm.mu.RUnlock()

	for _, c := range snapshot {
		if !c.deliver(msg) {
			rm.observer.DeliveryDropped()
			rm.logger.Debugw("buffer full, dropping message",
				logging.KeyCategory, logging.Realtime,
				logging.KeySubCategory, logging.Publish,
				"conn_id", c.ID(),
				"room", msg.RoomID,
				"event", msg.Type,
			)
		}
	}
}

// Members returns the ids of the connections currently in room.
func (rm *RoomManager) Members(room string) []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	members := rm.rooms[room]
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}

func (rm *RoomManager) RoomsOf(connID string) []string {
	c, ok := rm.registry.Lookup(connID)
	if !ok {
		return nil
	}

	rm.mu.RLock()
	defer rm.mu.RUnlock()

	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	return len(rm.rooms)
}
