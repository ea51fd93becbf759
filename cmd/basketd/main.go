// Command basketd is a small demo server.
//
//	GET  /hello          "hello"
//	GET  /world          "world"
//	GET  /status/<code>  empty response with <code>
//	POST /text           echoes the text body
//	POST /json           echoes the json body
//	GET  /               "hello, world!"
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"basket/application/http"
	"basket/application/http/actor/server"
	"basket/transport/tcp"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

type app struct {
	greeting string
}

func routes(r *server.Router[app]) *server.Router[app] {
	return r.
		Route("/hello", func(app, *http.Request) *http.Response { return http.Text(200, "hello") }).
		Route("/world", func(app, *http.Request) *http.Response { return http.Text(200, "world") }).
		Route("/status/", statusCode).
		Route("/text", echoText).
		Route("/json", echoJSON).
		Route("/", func(a app, _ *http.Request) *http.Response { return http.Text(200, a.greeting) })
}

func statusCode(_ app, request *http.Request) *http.Response {
	raw := strings.TrimSuffix(strings.TrimPrefix(request.Path(), "/status/"), "/")
	code, err := strconv.ParseUint(raw, 10, 16)
	if err != nil || code < 100 || code > 999 {
		return http.Text(400, "invalid status code")
	}
	return http.Status(uint16(code))
}

func echoText(_ app, request *http.Request) *http.Response {
	text, err := request.Text()
	if err != nil {
		return http.Text(400, "invalid text")
	}
	return http.Text(200, text)
}

func echoJSON(_ app, request *http.Request) *http.Response {
	var v any
	if err := request.JSON(&v); err != nil {
		return http.Text(400, "invalid json")
	}

	response, err := http.NewResponseBuilder().JSON(v).Build()
	if err != nil {
		return http.Text(500, "encoding json")
	}
	return response
}

func main() {
	addr := flag.String("addr", ":3000", "address to listen on")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *addr, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, addr string, logger *slog.Logger) error {
	l, err := tcp.Listen(addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", addr)
	}
	defer l.Close()

	logger.Info("listening", "addr", l.Addr().String())

	router := routes(server.New(app{greeting: "hello, world!"}, logger, clock.New()))
	return router.Listen(ctx, l)
}
