package tcp

import (
	"context"
	"io"
	"net/netip"
	"testing"
	"time"

	"basket/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewAddr(t *testing.T) {
	testcases := []struct {
		desc     string
		ip       netip.Addr
		port     uint16
		expected string
	}{
		{desc: "ipv4", ip: netip.MustParseAddr("127.0.0.1"), port: 80, expected: "127.0.0.1:80"},
		{desc: "ipv6", ip: netip.MustParseAddr("::1"), port: 8080, expected: "[::1]:8080"},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			addr := NewAddr(tc.ip, tc.port)
			assert.Equal(t, "tcp", addr.Network())
			assert.Equal(t, tc.expected, addr.String())
		})
	}
}

func TestDialAccept(t *testing.T) {
	defer goleak.VerifyNone(t)

	l, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)

		c, err := l.Accept(context.Background())
		if !assert.NoError(t, err) {
			return
		}
		defer c.Close()

		b, err := io.ReadAll(c)
		assert.NoError(t, err)
		assert.Equal(t, "hello", string(b))
	}()

	c, err := NewDialer(time.Second).Dial(context.Background(), l.Addr())
	require.NoError(t, err)

	_, err = c.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.Write([]byte("again"))
	assert.ErrorIs(t, err, transport.ErrConnClosed)

	<-done
}

func TestAcceptCancels(t *testing.T) {
	defer goleak.VerifyNone(t)

	l, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c, err := l.Accept(ctx)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The listener is still usable afterwards.
	go func() {
		c, err := NewDialer(time.Second).Dial(context.Background(), l.Addr())
		if assert.NoError(t, err) {
			c.Close()
		}
	}()

	c, err = l.Accept(context.Background())
	require.NoError(t, err)
	c.Close()
}

func TestAcceptAfterClose(t *testing.T) {
	l, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, l.Close())

	c, err := l.Accept(context.Background())
	assert.Nil(t, c)
	assert.ErrorIs(t, err, transport.ErrConnListenerClosed)

	assert.ErrorIs(t, l.Close(), transport.ErrConnListenerClosed)
}

func TestListenAddrInUse(t *testing.T) {
	l, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	l2, err := Listen(l.Addr().String())
	assert.Nil(t, l2)
	assert.ErrorIs(t, err, transport.ErrAddrAlreadyInUse)
}
