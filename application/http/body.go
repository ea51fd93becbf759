package http

import (
	"bytes"
	"io"
	"math"
	"unicode/utf8"

	"basket/application/http/codec"
	iolib "basket/lib/io"

	"github.com/indigo-web/utils/uf"
	"github.com/pkg/errors"
)

// body is shared by [Request] and [Response].
// Every accessor consumes it, so a body can be taken only once.
type body struct {
	data    []byte
	present bool
}

func (b *body) HasBody() bool { return b.present }

func (b *body) set(data []byte) {
	b.data, b.present = data, true
}

func (b *body) take() ([]byte, error) {
	if !b.present {
		return nil, errors.Wrap(ErrMissingBody, "taking body")
	}

	data := b.data
	b.data, b.present = nil, false

	return data, nil
}

// Bytes returns the raw body.
func (b *body) Bytes() ([]byte, error) { return b.take() }

// Text returns the body as a string. The body must be valid UTF-8.
func (b *body) Text() (string, error) {
	data, err := b.take()
	if err != nil {
		return "", err
	}

	if !utf8.Valid(data) {
		return "", errors.Wrap(ErrInvalidEncoding, "body is not valid utf-8")
	}

	// data is owned by nobody else from now on.
	return uf.B2S(data), nil
}

// Decode unmarshals the body into v with c.
// Errors from c are returned as they are.
func (b *body) Decode(c codec.Codec, v any) error {
	data, err := b.take()
	if err != nil {
		return err
	}

	return c.Unmarshal(data, v)
}

func (b *body) JSON(v any) error { return b.Decode(codec.JSON, v) }
func (b *body) XML(v any) error  { return b.Decode(codec.XML, v) }

// maxPrealloc caps the buffer allocated up front for a declared content-length.
const maxPrealloc = 64 << 10

// readBody reads exactly n bytes, retrying short reads.
// A stream which ends before n bytes is malformed.
func readBody(r io.Reader, n uint64) (body, error) {
	if n > math.MaxInt {
		return body{}, errors.Wrapf(ErrInvalidInt, "content-length %d out of range", n)
	}

	buf := bytes.NewBuffer(make([]byte, 0, min(n, maxPrealloc)))
	lr := iolib.LimitReader(r, n)
	if _, err := buf.ReadFrom(lr); err != nil {
		return body{}, wrapRead(err, "reading body")
	}
	if lr.N > 0 {
		return body{}, errors.Wrapf(ErrMalformedFormat, "body ended %d bytes short", lr.N)
	}

	return body{data: buf.Bytes(), present: true}, nil
}

func (b *body) writeTo(w io.Writer) error {
	if !b.present {
		return nil
	}

	if _, err := w.Write(b.data); err != nil {
		return errors.Wrap(IOError(err), "writing body")
	}

	return nil
}
