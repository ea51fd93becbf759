// Package server routes requests to handlers by path prefix.
//
// Connections are served one at a time: a single request is read,
// answered and the connection is closed before the next one is accepted.
package server

import (
	"bufio"
	"context"
	"log/slog"
	"strings"

	"basket/application/http"
	iolib "basket/lib/io"
	"basket/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// ServerName is sent in the server header of every response.
const ServerName = "basket"

// Handler answers request. It receives its own copy of the router state.
type Handler[S any] func(state S, request *http.Request) *http.Response

type route[S any] struct {
	prefix string
	handle Handler[S]
}

type Router[S any] struct {
	state  S
	routes []route[S]

	logger *slog.Logger
	clock  clock.Clock
}

func New[S any](state S, logger *slog.Logger, clock clock.Clock) *Router[S] {
	return &Router[S]{
		state:  state,
		logger: logger,
		clock:  clock,
	}
}

// Route registers handle for paths starting with prefix.
// Routes are tried in the order they were registered.
func (r *Router[S]) Route(prefix string, handle Handler[S]) *Router[S] {
	r.routes = append(r.routes, route[S]{prefix: prefix, handle: handle})
	return r
}

// Listen accepts and serves connections from l until something fails.
// It never returns nil. When ctx is done, ctx.Err() is returned.
func (r *Router[S]) Listen(ctx context.Context, l transport.ConnListener) error {
	for {
		con, err := l.Accept(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return errors.Wrap(err, "accepting connection")
		}

		if err := r.serve(con); err != nil {
			r.logger.Error("serving connection failed", "error", err.Error())
			return errors.Wrap(err, "serving connection")
		}
	}
}

func (r *Router[S]) serve(con transport.Conn) error {
	defer con.Close()

	start := r.clock.Now()
	logger := r.logger.With("conn", con.RemoteAddr())

	request, err := http.ReadRequest(iolib.NewUntilReader(con))
	if err != nil {
		return errors.Wrap(err, "reading request")
	}

	response, err := doHandle(r.dispatch(request.Path()), cloneState(r.state), request)
	if err != nil {
		return errors.Wrapf(err, "handling %s %s", request.Method(), request.Target())
	}

	response, err = http.ResponseBuilderFrom(response).Header(http.HeaderServer, ServerName).Build()
	if err != nil {
		return errors.Wrap(err, "adding server header")
	}

	w := bufio.NewWriter(con)
	if err := response.Write(w); err != nil {
		return errors.Wrap(err, "writing response")
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(http.IOError(err), "flushing response")
	}

	logger.Info(
		"request served",
		"method", request.Method(),
		"target", request.Target(),
		"status", response.Status(),
		"elapsed", r.clock.Since(start),
	)

	return nil
}

// dispatch finds the first route whose prefix starts the path.
func (r *Router[S]) dispatch(path string) Handler[S] {
	path = normalizePath(path)
	for _, route := range r.routes {
		if strings.HasPrefix(path, route.prefix) {
			return route.handle
		}
	}
	return notFound[S]
}

func notFound[S any](S, *http.Request) *http.Response { return http.Status(404) }

// normalizePath strips a single trailing slash, except for the root.
func normalizePath(path string) string {
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		return path[:len(path)-1]
	}
	return path
}

func doHandle[S any](handle Handler[S], state S, request *http.Request) (res *http.Response, err error) {
	defer func() {
		if e := recover(); e != nil {
			err = errors.Errorf("handler panicked: %v", e)
		}
	}()

	response := handle(state, request)
	if response == nil {
		return nil, errors.New("nil response is forbidden")
	}

	return response, nil
}

// cloneState gives a handler its own copy of state.
// States holding references should implement Clone.
func cloneState[S any](state S) S {
	if c, ok := any(state).(interface{ Clone() S }); ok {
		return c.Clone()
	}
	return state
}
