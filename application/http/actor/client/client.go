// Package client sends requests, one connection per request.
package client

import (
	"bufio"
	"context"
	"log/slog"
	"net/netip"
	"strconv"

	"basket/application/http"
	"basket/application/util/domain"
	iolib "basket/lib/io"
	"basket/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

var ErrUnsupportedScheme = errors.New("unsupported scheme")

const (
	schemeHTTP  = "http"
	defaultPort = 80
)

type Client struct {
	opts Options

	logger *slog.Logger
	clock  clock.Clock

	lookuper   domain.Lookuper
	connDialer transport.ConnDialer
}

var _ http.Doer = (*Client)(nil)

func New(
	d transport.ConnDialer,
	lookuper domain.Lookuper,
	logger *slog.Logger,
	clock clock.Clock,
	opts Options,
) *Client {
	return &Client{
		connDialer: d,
		lookuper:   lookuper,
		logger:     logger,
		clock:      clock,
		opts:       opts.withDefaults(),
	}
}

// Do sends request over a new connection and reads exactly one response.
// The connection is closed before Do returns.
func (c *Client) Do(ctx context.Context, request *http.Request) (*http.Response, error) {
	start := c.clock.Now()

	u := request.URL()
	if u == nil {
		return nil, errors.Wrap(http.ErrInvalidURL, "request has no url")
	}

	if u.Scheme != schemeHTTP {
		return nil, errors.Wrapf(ErrUnsupportedScheme, "%q", u.Scheme)
	}

	host, port, err := hostPort(u.Hostname(), u.Port())
	if err != nil {
		return nil, err
	}

	ips, err := c.resolve(ctx, host)
	if err != nil {
		return nil, errors.Wrap(err, "resolving host")
	}

	con, err := c.dial(ctx, ips, port)
	if err != nil {
		return nil, errors.Wrap(err, "dialing")
	}
	defer con.Close()

	logger := c.logger.With("conn", con.RemoteAddr())

	w := bufio.NewWriter(con)
	if err := request.Write(w); err != nil {
		return nil, errors.Wrap(err, "writing request")
	}
	if err := w.Flush(); err != nil {
		return nil, errors.Wrap(http.IOError(err), "flushing request")
	}

	response, err := http.ReadResponse(iolib.NewUntilReaderSize(con, c.opts.ChunkSize))
	if err != nil {
		logger.Debug("reading response failed", "error", err.Error())
		return nil, errors.Wrap(err, "reading response")
	}

	logger.Debug(
		"request done",
		"method", request.Method(),
		"target", request.Target(),
		"status", response.Status(),
		"elapsed", c.clock.Since(start),
	)

	return response, nil
}

func hostPort(host, port string) (string, uint16, error) {
	if host == "" {
		return "", 0, errors.Wrap(http.ErrInvalidURL, "host not found")
	}

	if port == "" {
		return host, defaultPort, nil
	}

	n, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return "", 0, errors.Wrapf(http.ErrInvalidURL, "port %q", port)
	}

	return host, uint16(n), nil
}

func (c *Client) resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{addr}, nil
	}

	// Host is a domain name. Resolve it to the ip addresses.
	addrs, err := c.lookuper.LookupIP(ctx, host)
	if err != nil {
		return nil, http.IOError(errors.Wrapf(err, "lookup for host(%s) failed", host))
	}

	return addrs, nil
}

// dial tries every address in order, and returns the first connection established.
func (c *Client) dial(ctx context.Context, ips []netip.Addr, port uint16) (transport.Conn, error) {
	err := errors.New("no address to dial")
	for _, ip := range ips {
		addr := c.opts.CombineAddr(ip, port)

		var con transport.Conn
		con, err = c.connDialer.Dial(ctx, addr)
		if err == nil {
			return con, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.logger.Debug("dial failed", "addr", addr, "error", err.Error())
	}

	return nil, http.IOError(err)
}
