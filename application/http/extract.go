package http

import (
	"bytes"
	"io"

	"basket/application/util/rule"
	iolib "basket/lib/io"

	"github.com/pkg/errors"
)

var httpVersion = []byte("HTTP/1.1")

func untilReader(r io.Reader) *iolib.UntilReader {
	if ur, ok := r.(*iolib.UntilReader); ok {
		return ur
	}
	return iolib.NewUntilReader(r)
}

// skip reads exactly len(literal) bytes and checks they are literal.
func skip(r io.Reader, literal []byte) error {
	buf := make([]byte, len(literal))
	if _, err := io.ReadFull(r, buf); err != nil {
		return wrapRead(err, "reading literal")
	}

	if !bytes.Equal(buf, literal) {
		return errors.Wrapf(ErrMalformedFormat, "expected %q, got %q", literal, buf)
	}

	return nil
}

// readUntil returns the bytes preceding delim. The delim is consumed.
func readUntil(r *iolib.UntilReader, delim []byte) ([]byte, error) {
	b, err := r.ReadUntil(delim)
	if err != nil {
		return nil, wrapRead(err, "reading until "+string(delim))
	}
	return b, nil
}

func readLine(r *iolib.UntilReader) ([]byte, error) {
	return readUntil(r, rule.CRLF)
}

// expectVersion consumes the http version, which must be HTTP/1.1.
func expectVersion(r io.Reader) error {
	buf := make([]byte, len(httpVersion))
	if _, err := io.ReadFull(r, buf); err != nil {
		return wrapRead(err, "reading http version")
	}

	if !bytes.Equal(buf, httpVersion) {
		return errors.Wrapf(ErrUnsupportedVersion, "got %q", buf)
	}

	return nil
}
