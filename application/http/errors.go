package http

import (
	"io"

	"github.com/pkg/errors"
)

var (
	ErrIO                 = errors.New("io failure")
	ErrMalformedFormat    = errors.New("malformed wire format")
	ErrUnsupportedVersion = errors.New("only HTTP/1.1 is supported")
	ErrUnknownMethod      = errors.New("unknown method")
	ErrInvalidInt         = errors.New("invalid integer")
	ErrInvalidEncoding    = errors.New("invalid utf-8")
	ErrMissingBody        = errors.New("expected body")
	ErrInvalidURL         = errors.New("invalid url")
)

type ioError struct{ cause error }

func (e *ioError) Error() string        { return "io failure: " + e.cause.Error() }
func (e *ioError) Unwrap() error        { return e.cause }
func (e *ioError) Is(target error) bool { return target == ErrIO }

// IOError marks err as a transport failure.
// Both errors.Is(err, ErrIO) and errors.Is(err, cause) hold for the result.
func IOError(err error) error {
	if err == nil {
		return nil
	}
	return &ioError{cause: err}
}

// wrapRead converts an error returned while reading a message.
// A stream which ends in the middle of a message is malformed, anything else is an io failure.
func wrapRead(err error, msg string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.Wrapf(ErrMalformedFormat, "%s: unexpected end of stream", msg)
	}
	return errors.Wrap(IOError(err), msg)
}
