package http

import (
	"bytes"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"basket/application/util/rule"
	iolib "basket/lib/io"

	"github.com/pkg/errors"
)

type Request struct {
	body

	method  Method
	target  string   // request-target as sent on the wire.
	url     *url.URL // Only set on requests built by [RequestBuilder].
	headers Headers
}

func (r *Request) Method() Method { return r.method }

// Target returns the request-target: path and optional query.
func (r *Request) Target() string { return r.target }

func (r *Request) Path() string {
	path, _, _ := strings.Cut(r.target, "?")
	return path
}

func (r *Request) Query() string {
	_, query, _ := strings.Cut(r.target, "?")
	return query
}

// URL returns the absolute url of a built request.
// Requests read off the wire only know their target, so nil is returned for them.
func (r *Request) URL() *url.URL {
	if r.url == nil {
		return nil
	}
	u := *r.url
	return &u
}

func (r *Request) Headers() Headers { return r.headers.Clone() }

func (r *Request) Header(name string) (string, bool) { return r.headers.Get(name) }

// ReadRequest reads exactly one request from r.
//
// Bytes past the end of the request may be buffered, so r should not be read
// afterwards unless it is an [iolib.UntilReader].
func ReadRequest(r io.Reader) (*Request, error) {
	ur := untilReader(r)

	token, err := readUntil(ur, []byte{rule.SP})
	if err != nil {
		return nil, errors.Wrap(err, "reading method")
	}

	method, err := ParseMethod(token)
	if err != nil {
		return nil, errors.Wrap(err, "parsing method")
	}

	target, err := readUntil(ur, []byte{rule.SP})
	if err != nil {
		return nil, errors.Wrap(err, "reading request target")
	}
	if len(target) == 0 || bytes.ContainsAny(target, "\r\n") {
		return nil, errors.Wrapf(ErrMalformedFormat, "request target %q", target)
	}
	if !utf8.Valid(target) {
		return nil, errors.Wrapf(ErrInvalidEncoding, "request target %q", target)
	}

	if err := expectVersion(ur); err != nil {
		return nil, errors.Wrap(err, "parsing request line")
	}

	if err := skip(ur, rule.CRLF); err != nil {
		return nil, errors.Wrap(err, "parsing request line")
	}

	headers, contentLength, err := ParseHeaders(ur)
	if err != nil {
		return nil, errors.Wrap(err, "parsing headers")
	}

	request := &Request{
		method:  method,
		target:  string(target),
		headers: headers,
	}

	if contentLength != nil {
		request.body, err = readBody(ur, *contentLength)
		if err != nil {
			return nil, err
		}
	}

	return request, nil
}

// Write writes the request in wire format.
// It does not add any header, content-length included.
func (r *Request) Write(w io.Writer) error {
	buf := bytes.NewBuffer(nil)

	buf.WriteString(string(r.method))
	buf.WriteByte(rule.SP)
	buf.WriteString(r.target)
	buf.WriteByte(rule.SP)
	buf.Write(httpVersion)
	buf.Write(rule.CRLF)

	r.headers.WriteTo(buf)
	buf.Write(rule.CRLF)

	if _, err := iolib.WriteFull(w, buf.Bytes()); err != nil {
		return errors.Wrap(IOError(err), "writing request line & headers")
	}

	return r.body.writeTo(w)
}

// requestTarget builds origin-form target of u.
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3.2.1
func requestTarget(u *url.URL) string {
	target := u.EscapedPath()
	if target == "" {
		target = "/"
	}
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return target
}
