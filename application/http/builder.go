package http

import (
	"bytes"
	"context"
	"net/url"
	"strconv"

	"basket/application/http/codec"
	"basket/application/http/status"

	"github.com/pkg/errors"
)

// Doer sends a request and receives its response.
type Doer interface {
	Do(ctx context.Context, request *Request) (*Response, error)
}

// RequestBuilder builds a [Request] step by step.
//
// A failing step stores its error instead of returning it, and turns every
// following step into a no-op. The error is returned by [RequestBuilder.Build]
// or [RequestBuilder.Send].
type RequestBuilder struct {
	request Request
	err     error
}

// NewRequestBuilder creates a builder with "connection: close" and,
// if rawURL has a host, "host" headers already set.
func NewRequestBuilder(method Method, rawURL string) *RequestBuilder {
	b := &RequestBuilder{
		request: Request{
			method:  method,
			headers: Headers{{Name: HeaderConnection, Value: "close"}},
		},
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		b.err = errors.Wrapf(ErrInvalidURL, "%s", err)
		return b
	}
	if u.Scheme == "" {
		b.err = errors.Wrapf(ErrInvalidURL, "scheme not found on %q", rawURL)
		return b
	}

	b.request.url = u
	if host := u.Hostname(); host != "" {
		b.request.headers.Add(HeaderHost, host)
	}

	return b
}

func Delete(rawURL string) *RequestBuilder  { return NewRequestBuilder(MethodDelete, rawURL) }
func Get(rawURL string) *RequestBuilder     { return NewRequestBuilder(MethodGet, rawURL) }
func Options(rawURL string) *RequestBuilder { return NewRequestBuilder(MethodOptions, rawURL) }
func Patch(rawURL string) *RequestBuilder   { return NewRequestBuilder(MethodPatch, rawURL) }
func Post(rawURL string) *RequestBuilder    { return NewRequestBuilder(MethodPost, rawURL) }
func Put(rawURL string) *RequestBuilder     { return NewRequestBuilder(MethodPut, rawURL) }

// Err returns the stored error, if any.
func (b *RequestBuilder) Err() error { return b.err }

// Header appends a header as it is.
func (b *RequestBuilder) Header(name, value string) *RequestBuilder {
	if b.err != nil {
		return b
	}

	b.request.headers.Add(name, value)
	return b
}

// Body sets a raw body with "content-type: text/plain".
func (b *RequestBuilder) Body(p []byte) *RequestBuilder {
	if b.err != nil {
		return b
	}

	b.request.set(bytes.Clone(p))
	b.request.headers.Add(HeaderContentType, MIMEPlain)
	return b
}

// Encode sets the body to v encoded with c, along with c's content-type.
func (b *RequestBuilder) Encode(c codec.Codec, v any) *RequestBuilder {
	if b.err != nil {
		return b
	}

	data, err := c.Marshal(v)
	if err != nil {
		b.err = err
		return b
	}

	b.request.set(data)
	b.request.headers.Add(HeaderContentType, c.ContentType())
	return b
}

func (b *RequestBuilder) JSON(v any) *RequestBuilder { return b.Encode(codec.JSON, v) }
func (b *RequestBuilder) XML(v any) *RequestBuilder  { return b.Encode(codec.XML, v) }

// Build freezes the request. If it has a body, content-length is appended.
func (b *RequestBuilder) Build() (*Request, error) {
	if b.err != nil {
		return nil, b.err
	}

	request := b.request
	request.headers = b.request.headers.Clone()

	if request.present {
		request.headers.Add(HeaderContentLength, strconv.Itoa(len(request.data)))
	}

	if request.url != nil {
		request.url = request.URL()
		request.target = requestTarget(request.url)
	} else {
		request.target = "/"
	}

	return &request, nil
}

// Send builds the request and sends it with d.
// Nothing is sent if a step has failed.
func (b *RequestBuilder) Send(ctx context.Context, d Doer) (*Response, error) {
	request, err := b.Build()
	if err != nil {
		return nil, err
	}

	return d.Do(ctx, request)
}

// ResponseBuilder builds a [Response]. It follows the error discipline of [RequestBuilder].
type ResponseBuilder struct {
	response Response
	err      error
}

// NewResponseBuilder creates a builder for "200 OK" without headers and body.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{response: Response{status: status.OK.Code}}
}

// ResponseBuilderFrom reopens a built response, e.g. for adding headers.
// res must not be used afterwards.
func ResponseBuilderFrom(res *Response) *ResponseBuilder {
	return &ResponseBuilder{response: *res}
}

func (b *ResponseBuilder) Err() error { return b.err }

func (b *ResponseBuilder) Status(code uint16) *ResponseBuilder {
	if b.err != nil {
		return b
	}

	b.response.status = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	if b.err != nil {
		return b
	}

	b.response.headers.Add(name, value)
	return b
}

// Body sets the body, and appends content-length sized to it.
func (b *ResponseBuilder) Body(p []byte) *ResponseBuilder {
	if b.err != nil {
		return b
	}

	b.response.set(bytes.Clone(p))
	b.response.headers.Add(HeaderContentLength, strconv.Itoa(len(p)))
	return b
}

func (b *ResponseBuilder) Encode(c codec.Codec, v any) *ResponseBuilder {
	if b.err != nil {
		return b
	}

	data, err := c.Marshal(v)
	if err != nil {
		b.err = err
		return b
	}

	return b.Body(data).Header(HeaderContentType, c.ContentType())
}

func (b *ResponseBuilder) JSON(v any) *ResponseBuilder { return b.Encode(codec.JSON, v) }
func (b *ResponseBuilder) XML(v any) *ResponseBuilder  { return b.Encode(codec.XML, v) }

// Build freezes the response, or returns the error stored by a failed step.
func (b *ResponseBuilder) Build() (*Response, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.freeze(), nil
}

func (b *ResponseBuilder) freeze() *Response {
	response := b.response
	response.headers = b.response.headers.Clone()
	return &response
}

// Status returns a response with code and no body.
func Status(code uint16) *Response {
	return NewResponseBuilder().Status(code).freeze()
}

// Text returns a response with code and s as its body.
func Text(code uint16, s string) *Response {
	return NewResponseBuilder().Status(code).Body([]byte(s)).freeze()
}

// Blob returns a response with code and p as its body.
func Blob(code uint16, p []byte) *Response {
	return NewResponseBuilder().Status(code).Body(p).freeze()
}
