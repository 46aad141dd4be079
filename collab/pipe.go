package collab

import (
	"context"
	"sync"
)

var _ Transport = (*PipeTransport)(nil)

// PipeTransport is an in-memory Transport. Tests and examples drive the
// inbound side with Deliver and Drop and read outbound frames with Sent.
type PipeTransport struct {
	events chan Event

	mu        sync.Mutex
	connected bool
	closed    bool
	sent      [][]byte
}

func NewPipeTransport() *PipeTransport {
	return &PipeTransport{events: make(chan Event, 64)}
}

func (p *PipeTransport) Connect(context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrNotConnected
	}
	p.connected = true
	p.mu.Unlock()

	p.events <- Event{State: StateConnecting}
	p.events <- Event{State: StateConnected}
	return nil
}

func (p *PipeTransport) Send(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return ErrNotConnected
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	p.sent = append(p.sent, buf)
	return nil
}

func (p *PipeTransport) Events() <-chan Event { return p.events }

func (p *PipeTransport) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.connected = false
	close(p.events)
	return nil
}

// Deliver encodes msg and feeds it to the receiving side.
func (p *PipeTransport) Deliver(msg any) error {
	data, err := Encode(msg)
	if err != nil {
		return err
	}
	p.events <- Event{Data: data}
	return nil
}

// Drop simulates losing the connection.
func (p *PipeTransport) Drop() {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	p.events <- Event{State: StateDisconnected}
}

// Sent returns a copy of every frame written so far, in order.
func (p *PipeTransport) Sent() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.sent))
	copy(out, p.sent)
	return out
}

// Reset clears the record of sent frames.
func (p *PipeTransport) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = nil
}
