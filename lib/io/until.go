package iolib

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// DefaultChunkSize is the size of a single read from the underlying reader.
const DefaultChunkSize = 1024

// UntilReader is a buffering reader which can read up to a delimiter.
// Bytes read past the delimiter are kept and served by following reads.
type UntilReader struct {
	r io.Reader

	buf   *bytes.Buffer
	chunk []byte
}

func NewUntilReader(r io.Reader) *UntilReader {
	return NewUntilReaderSize(r, DefaultChunkSize)
}

func NewUntilReaderSize(r io.Reader, size uint) *UntilReader {
	if size == 0 {
		size = DefaultChunkSize
	}
	return &UntilReader{
		r:     r,
		buf:   bytes.NewBuffer(nil),
		chunk: make([]byte, size),
	}
}

// Buffered returns the number of bytes read from the underlying reader but not consumed yet.
func (ur *UntilReader) Buffered() int { return ur.buf.Len() }

func (ur *UntilReader) Read(p []byte) (n int, err error) {
	if ur.buf.Len() > 0 {
		n, _ = ur.buf.Read(p)
		return n, nil
	}

	return ur.r.Read(p)
}

var ErrZeroLenDelim = errors.New("delim has zero length")

// ReadUntil reads until delim and returns the bytes preceding it.
// The delim itself is discarded.
//
// If the underlying reader returns an error before delim,
// bytes read so far are returned with the error.
func (ur *UntilReader) ReadUntil(delim []byte) ([]byte, error) {
	if len(delim) == 0 {
		return nil, ErrZeroLenDelim
	}

	var acc []byte
	for {
		var chunk []byte
		var err error
		if ur.buf.Len() > 0 {
			chunk = ur.buf.Next(ur.buf.Len())
		} else {
			var n int
			n, err = ur.r.Read(ur.chunk)
			chunk = ur.chunk[:n]
		}

		// Bytes before from were already scanned and cannot start delim.
		from := max(0, len(acc)-len(delim)+1)
		acc = append(acc, chunk...)

		if idx := bytes.Index(acc[from:], delim); idx >= 0 {
			end := from + idx
			ur.buf.Write(acc[end+len(delim):])
			return acc[:end:end], nil
		}

		if err != nil {
			return acc, err
		}
	}
}
