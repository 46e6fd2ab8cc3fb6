package ws

import "errors"

var (
	ErrInvalidRoom               = errors.New("invalid room")
	ErrConnectionNotFound        = errors.New("connection not found")
	ErrHandshakeFailed           = errors.New("websocket handshake failed")
	ErrExternalMediumUnavailable = errors.New("external distribution medium unavailable")
)
