package ws

// Observer receives realtime lifecycle signals, typically to feed metrics.
type Observer interface {
	ConnectionOpened()
	ConnectionClosed()
	RoomsActive(n int)
	Published(origin string)
	DeliveryDropped()
}

const (
	OriginLocal    = "local"
	OriginExternal = "external"
)

type nopObserver struct{}

func (nopObserver) ConnectionOpened() {}
func (nopObserver) ConnectionClosed() {}
func (nopObserver) RoomsActive(int) {}
func (nopObserver) Published(string) {}
func (nopObserver) DeliveryDropped() {}
