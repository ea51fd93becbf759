package transport

import (
	"context"
	"errors"
	"net"
)

var (
	ErrConnClosed         = errors.New("connection is closed")
	ErrConnListenerClosed = errors.New("conn listener is closed")
	ErrConnRefused        = errors.New("connection refused")
	ErrAddrAlreadyInUse   = errors.New("address already in use")
)

// Addr identifies an endpoint of a transport.
type Addr = net.Addr

// Conn is a reliable, ordered byte stream.
// Read returns io.EOF once the peer has closed and every byte it sent was read.
type Conn interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error

	LocalAddr() Addr
	RemoteAddr() Addr
}

type ConnListener interface {
	// Accept blocks until a connection arrives, ctx is done or the listener is closed.
	Accept(ctx context.Context) (Conn, error)
	Close() error
}

type ConnDialer interface {
	Dial(ctx context.Context, addr Addr) (Conn, error)
}
