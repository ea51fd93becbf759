// Command basket sends a single request and prints the response.
//
//	basket get http://example.com
//	basket post http://example.com -d "Hello, world!"
//	basket post http://example.com -j -d '{"message": "Hello, world!"}'
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"basket/application/http"
	"basket/application/http/actor/client"
	"basket/application/http/status"
	"basket/application/util/domain"
	"basket/transport/tcp"

	"github.com/benbjohnson/clock"
	json "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const usage = `usage: basket METHOD URL [-d data] [-j] [-H "name: value"]...

METHOD is one of delete, get, options, patch, post, put.
`

type headerFlags http.Headers

func (h *headerFlags) String() string { return fmt.Sprint(*h) }

func (h *headerFlags) Set(s string) error {
	name, value, ok := strings.Cut(s, ":")
	if !ok {
		return errors.Errorf("header %q has no colon", s)
	}
	*h = append(*h, http.Header{
		Name:  strings.TrimSpace(name),
		Value: strings.TrimLeft(value, " \t"),
	})
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "basket:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) < 2 {
		fmt.Fprint(stderr, usage)
		return errors.New("METHOD and URL are required")
	}

	method, err := http.ParseMethod([]byte(strings.ToUpper(args[0])))
	if err != nil {
		return errors.Wrap(err, "parsing METHOD")
	}
	rawURL := args[1]

	fs := flag.NewFlagSet("basket", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	var headers headerFlags
	data := fs.String("d", "", "request body")
	asJSON := fs.Bool("j", false, "send the body as json")
	verbose := fs.Bool("v", false, "log connection details")
	fs.Var(&headers, "H", "extra header as \"name: value\", repeatable")

	if err := fs.Parse(args[2:]); err != nil {
		return err
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	builder := http.NewRequestBuilder(method, rawURL)

	fs.Visit(func(f *flag.Flag) {
		if f.Name != "d" {
			return
		}
		if *asJSON {
			builder.JSON(json.RawMessage(*data))
		} else {
			builder.Body([]byte(*data))
		}
	})

	for _, h := range headers {
		builder.Header(h.Name, h.Value)
	}

	c := client.New(
		tcp.NewDialer(0),
		domain.NewNetLookuper(nil),
		logger,
		clock.New(),
		client.Options{},
	)

	response, err := builder.Send(context.Background(), c)
	if err != nil {
		return errors.Wrap(err, "sending request")
	}

	return printResponse(stdout, response)
}

func printResponse(w io.Writer, response *http.Response) error {
	fmt.Fprintf(w, "HTTP/1.1 %d %s\n", response.Status(), status.Text(response.Status()))
	for _, h := range response.Headers() {
		fmt.Fprintf(w, "%s: %s\n", h.Name, h.Value)
	}

	if !response.HasBody() {
		return nil
	}

	text, err := response.Text()
	if err != nil {
		return errors.Wrap(err, "reading body")
	}

	fmt.Fprintf(w, "\n%s\n", text)
	return nil
}
