package gate

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Next after the gate is closed.
var ErrClosed = errors.New("approval gate closed")

// Incoming is a request awaiting a decision on the host side.
type Incoming struct {
	Request *Request
	resp    chan bool
	once    sync.Once
}

// Approve resolves the request as approved.
func (in *Incoming) Approve() { in.resolve(true) }

// Reject resolves the request as rejected.
func (in *Incoming) Reject() { in.resolve(false) }

func (in *Incoming) resolve(approved bool) {
	in.once.Do(func() {
		in.resp <- approved
		close(in.resp)
	})
}

// ChannelGate connects a pipeline task to a UI host over a single-shot
// request/response pair. At most one request is outstanding per Show call;
// Close resolves anything pending as rejected so no waiter ever leaks.
type ChannelGate struct {
	requests chan *Incoming

	closeOnce sync.Once
	done      chan struct{}
}

// NewChannelGate creates an unstarted gate. The UI host consumes Next.
func NewChannelGate() *ChannelGate {
	return &ChannelGate{
		requests: make(chan *Incoming),
		done:     make(chan struct{}),
	}
}

// Show presents a request and blocks until the host decides, the context is
// cancelled, or the gate is closed. A closed gate means rejection, not error:
// tearing down the UI is the user declining.
func (g *ChannelGate) Show(ctx context.Context, req *Request) (bool, error) {
	in := &Incoming{Request: req, resp: make(chan bool, 1)}

	select {
	case g.requests <- in:
	case <-g.done:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case approved := <-in.resp:
		return approved, nil
	case <-g.done:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Next blocks until a request arrives for the host to decide.
func (g *ChannelGate) Next(ctx context.Context) (*Incoming, error) {
	select {
	case in := <-g.requests:
		return in, nil
	case <-g.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close tears the gate down. Pending and future Show calls resolve as
// rejected.
func (g *ChannelGate) Close() {
	g.closeOnce.Do(func() { close(g.done) })
}
