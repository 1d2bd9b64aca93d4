package websocket

import (
	"context"
	"time"

	"eduboard/pkg/contracts/events"
)

// Connection is the subset of *websocket.Conn a Client needs, so pumps can
// run against a fake in tests.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// Broadcaster publishes dashboard events. Hub implements it.
type Broadcaster interface {
	Broadcast(ctx context.Context, msgType events.MessageType, data interface{})
}

var _ Broadcaster = (*Hub)(nil)
