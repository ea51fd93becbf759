// Package tcp adapts the operating system's TCP sockets to the transport interfaces.
package tcp

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"syscall"
	"time"

	"basket/transport"
)

// NewAddr returns the TCP address of ip and port.
func NewAddr(ip netip.Addr, port uint16) transport.Addr {
	return net.TCPAddrFromAddrPort(netip.AddrPortFrom(ip, port))
}

type conn struct {
	net.Conn
}

var _ transport.Conn = conn{}

func (c conn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	return n, convertErr(err)
}

func (c conn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	return n, convertErr(err)
}

func (c conn) Close() error { return convertErr(c.Conn.Close()) }

func convertErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, net.ErrClosed):
		return transport.ErrConnClosed
	case errors.Is(err, syscall.ECONNREFUSED):
		return errors.Join(transport.ErrConnRefused, err)
	case errors.Is(err, syscall.EADDRINUSE):
		return errors.Join(transport.ErrAddrAlreadyInUse, err)
	}
	return err
}

type Listener struct {
	l *net.TCPListener
}

var _ transport.ConnListener = (*Listener)(nil)

// Listen announces on address, in "host:port" form.
// Port 0 picks a free port, see [Listener.Addr].
func Listen(address string) (*Listener, error) {
	l, err := net.Listen("tcp", address)
	if err != nil {
		return nil, convertErr(err)
	}
	return &Listener{l: l.(*net.TCPListener)}, nil
}

func (l *Listener) Addr() transport.Addr { return l.l.Addr() }

// Accept waits for the next connection.
// When ctx is done, the pending accept is unblocked through the listener deadline.
func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	stop := context.AfterFunc(ctx, func() {
		l.l.SetDeadline(time.Unix(1, 0))
	})
	defer func() {
		if !stop() {
			// ctx fired, clear the deadline for following accepts.
			l.l.SetDeadline(time.Time{})
		}
	}()

	c, err := l.l.Accept()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if c != nil {
				c.Close()
			}
			return nil, ctxErr
		}
		if errors.Is(err, net.ErrClosed) {
			return nil, transport.ErrConnListenerClosed
		}
		return nil, err
	}

	return conn{Conn: c}, nil
}

func (l *Listener) Close() error {
	if err := l.l.Close(); err != nil {
		if errors.Is(err, net.ErrClosed) {
			return transport.ErrConnListenerClosed
		}
		return err
	}
	return nil
}

type Dialer struct {
	d net.Dialer
}

var _ transport.ConnDialer = (*Dialer)(nil)

// NewDialer returns a dialer giving up after timeout. Zero means no timeout.
func NewDialer(timeout time.Duration) *Dialer {
	return &Dialer{d: net.Dialer{Timeout: timeout}}
}

func (d *Dialer) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	c, err := d.d.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return nil, convertErr(err)
	}
	return conn{Conn: c}, nil
}
