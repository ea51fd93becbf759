package pipe

import (
	"context"
	"sync"

	"basket/transport"
)

type pipeRequest struct {
	conn     *pipe
	accepted chan struct{}
}

// PipeTransport connects dialers to listeners in memory.
// Listeners are identified by the string form of their address.
type PipeTransport struct {
	listeners map[string]*pipeListener

	mu sync.Mutex
}

func NewPipeTransport() *PipeTransport {
	return &PipeTransport{
		listeners: make(map[string]*pipeListener),
	}
}

var _ transport.ConnDialer = (*PipeTransport)(nil)

func (pt *PipeTransport) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	pt.mu.Lock()
	listener, ok := pt.listeners[addr.String()]
	pt.mu.Unlock()

	if !ok {
		return nil, transport.ErrConnRefused
	}

	p1, p2 := NewPair("dialer", addr.String())

	req := pipeRequest{
		conn:     p2,
		accepted: make(chan struct{}, 1),
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-listener.closed:
		return nil, transport.ErrConnRefused
	case listener.requests <- req:
	}

	select {
	case <-ctx.Done():
		// The listener may have handed p2 out already.
		p1.Close()
		return nil, ctx.Err()
	case _, accepted := <-req.accepted:
		if !accepted {
			return nil, transport.ErrConnRefused
		}
	}

	return p1, nil
}

func (pt *PipeTransport) Listen(addr Addr) (*pipeListener, error) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if _, ok := pt.listeners[addr.String()]; ok {
		return nil, transport.ErrAddrAlreadyInUse
	}

	pl := &pipeListener{
		addr:      addr,
		transport: pt,
		requests:  make(chan pipeRequest),
		closed:    make(chan struct{}),
	}
	pt.listeners[addr.String()] = pl

	return pl, nil
}

type pipeListener struct {
	addr Addr

	transport *PipeTransport

	requests chan pipeRequest
	closed   chan struct{}

	mu sync.Mutex
}

var _ transport.ConnListener = (*pipeListener)(nil)

func (pl *pipeListener) Addr() transport.Addr { return pl.addr }

func (pl *pipeListener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-pl.closed:
		return nil, transport.ErrConnListenerClosed
	case request := <-pl.requests:
		select {
		case <-ctx.Done():
			close(request.accepted)
			return nil, ctx.Err()
		case request.accepted <- struct{}{}:
		}

		return request.conn, nil
	}
}

func (pl *pipeListener) Close() error {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if isClosed(pl.closed) {
		return transport.ErrConnListenerClosed
	}

	close(pl.closed)

	// Refuse requests which were queued but never accepted.
	for range len(pl.requests) {
		req := <-pl.requests
		close(req.accepted)
	}

	pl.transport.mu.Lock()
	delete(pl.transport.listeners, pl.addr.String())
	pl.transport.mu.Unlock()

	return nil
}
