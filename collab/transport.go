package collab

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrNotConnected reports a send attempted without an open connection.
var ErrNotConnected = errors.New("collab: not connected")

// ConnState is the channel's connection lifecycle state.
type ConnState string

const (
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateDisconnected ConnState = "disconnected"
)

func validState(s ConnState) bool {
	switch s {
	case StateConnecting, StateConnected, StateDisconnected:
		return true
	}
	return false
}

// Event is one transport occurrence: a received frame when Data is set,
// otherwise a connection state change.
type Event struct {
	State ConnState
	Data  []byte
}

// Transport moves raw wire frames to and from a room. Implementations must
// deliver frames on Events in the order received; the channel relies on
// delivery order to resolve same-cell races.
type Transport interface {
	// Connect opens the connection. It may be called again after a drop.
	Connect(ctx context.Context) error
	// Send writes one frame. It fails with ErrNotConnected when closed
	// or not yet connected.
	Send(data []byte) error
	// Events delivers inbound frames and state changes. The channel is
	// closed by Close.
	Events() <-chan Event
	// Close tears the connection down for good.
	Close() error
}

var _ Transport = (*WSTransport)(nil)

// WSTransport is the websocket Transport used against a live room server.
// Connect and Close must not be called concurrently with each other.
type WSTransport struct {
	url    string
	logger *zap.Logger

	events chan Event
	stop   chan struct{}

	mu       sync.Mutex
	conn     *websocket.Conn
	loopDone chan struct{}
	closed   bool
}

// WSOpt configures a WSTransport.
type WSOpt func(*WSTransport)

func WithWSLogger(logger *zap.Logger) WSOpt {
	return func(t *WSTransport) { t.logger = logger }
}

// NewWSTransport prepares a transport for url (ws:// or wss://). No
// connection is made until Connect.
func NewWSTransport(url string, opts ...WSOpt) *WSTransport {
	t := &WSTransport{
		url:    url,
		logger: zap.NewNop(),
		events: make(chan Event, 64),
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *WSTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrNotConnected
	}
	if t.conn != nil {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	t.emit(Event{State: StateConnecting})
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, t.url, nil)
	if err != nil {
		t.emit(Event{State: StateDisconnected})
		return fmt.Errorf("dialing %s: %w", t.url, err)
	}

	t.mu.Lock()
	t.conn = conn
	t.loopDone = make(chan struct{})
	done := t.loopDone
	t.mu.Unlock()

	t.emit(Event{State: StateConnected})
	go t.readLoop(conn, done)
	return nil
}

func (t *WSTransport) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			closed := t.closed
			if t.conn == conn {
				t.conn = nil
			}
			t.mu.Unlock()
			if !closed {
				t.logger.Warn("connection dropped", zap.Error(err))
				t.emit(Event{State: StateDisconnected})
			}
			return
		}
		t.emit(Event{Data: data})
	}
}

func (t *WSTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return ErrNotConnected
	}
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *WSTransport) Events() <-chan Event { return t.events }

func (t *WSTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn, done := t.conn, t.loopDone
	t.mu.Unlock()

	close(t.stop)
	var err error
	if conn != nil {
		err = conn.Close()
	}
	if done != nil {
		<-done
	}
	close(t.events)
	return err
}

// emit delivers an event unless the transport is shutting down. Close waits
// for the read loop before closing the event channel, so emit never sends
// on a closed channel.
func (t *WSTransport) emit(ev Event) {
	select {
	case t.events <- ev:
	case <-t.stop:
	}
}
