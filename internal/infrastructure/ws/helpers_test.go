package ws

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openConn(t *testing.T, reg *Registry, buffer int) *Connection {
	t.Helper()

	c := NewConnection(nil, Identity{ID: "u"}, buffer)
	_, err := reg.Register(c)
	require.NoError(t, err)
	return c
}

func receive(t *testing.T, c *Connection) *WSMessage {
	t.Helper()

	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatalf("connection %s received nothing", c.ID())
		return nil
	}
}

func assertSilent(t *testing.T, c *Connection) {
	t.Helper()

	select {
	case msg := <-c.send:
		t.Fatalf("connection %s unexpectedly received %+v", c.ID(), msg)
	default:
	}
}

type countingObserver struct {
	opened, closed, dropped atomic.Int64
	rooms                   atomic.Int64
	mu                      sync.Mutex
	published               map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{published: make(map[string]int)}
}

func (o *countingObserver) ConnectionOpened() { o.opened.Add(1) }
func (o *countingObserver) ConnectionClosed() { o.closed.Add(1) }
func (o *countingObserver) RoomsActive(n int) { o.rooms.Store(int64(n)) }
func (o *countingObserver) DeliveryDropped() { o.dropped.Add(1) }

func (o *countingObserver) Published(origin string) {
	o.mu.Lock()
	o.published[origin]++
	o.mu.Unlock()
}

func (o *countingObserver) publishedBy(origin string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.published[origin]
}

// memoryBus behaves like Redis pub/sub: every subscriber, the publisher
// included, receives every envelope.
type memoryBus struct {
	mu        sync.Mutex
	subs      []*busDistributor
	published int
}

func (b *memoryBus) attach(node string) *busDistributor {
	d := &busDistributor{inbound: inbound{node: node, logger: nopLogger()}, bus: b}

	b.mu.Lock()
	b.subs = append(b.subs, d)
	b.mu.Unlock()

	return d
}

func (b *memoryBus) publishCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.published
}

type busDistributor struct {
	inbound
	bus *memoryBus
}

func (*busDistributor) Name() string { return "memory" }

func (*busDistributor) Distributed() bool { return true }

func (d *busDistributor) PublishExternal(_ context.Context, msg *WSMessage) error {
	raw, err := encodeEnvelope(d.node, msg)
	if err != nil {
		return err
	}

	d.bus.mu.Lock()
	d.bus.published++
	subs := append([]*busDistributor(nil), d.bus.subs...)
	d.bus.mu.Unlock()

	for _, s := range subs {
		s.dispatch(raw)
	}
	return nil
}

func (*busDistributor) Close() error { return nil }
