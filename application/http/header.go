package http

import (
	"bytes"
	"io"
	"strconv"
	"unicode/utf8"

	"basket/application/util/rule"
	iolib "basket/lib/io"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	"github.com/pkg/errors"
)

const (
	HeaderConnection    = "connection"
	HeaderHost          = "host"
	HeaderContentLength = "content-length"
	HeaderContentType   = "content-type"
	HeaderServer        = "server"
)

const (
	MIMEPlain = "text/plain"
	MIMEJSON  = "application/json"
	MIMEXML   = "application/xml"
)

type Header struct{ Name, Value string }

// Headers is an ordered list of header fields. Names are not deduplicated.
type Headers []Header

func (h *Headers) Add(name, value string) {
	*h = append(*h, Header{Name: name, Value: value})
}

// Get returns the value of the first field named name, compared case-insensitively.
func (h Headers) Get(name string) (value string, ok bool) {
	for _, field := range h {
		if strcomp.EqualFold(field.Name, name) {
			return field.Value, true
		}
	}
	return "", false
}

// Values returns values of every field named name, in order.
func (h Headers) Values(name string) (values []string) {
	for _, field := range h {
		if strcomp.EqualFold(field.Name, name) {
			values = append(values, field.Value)
		}
	}
	return values
}

func (h Headers) Clone() Headers {
	if len(h) == 0 {
		return nil
	}
	return append(Headers(nil), h...)
}

// WriteTo writes every field as "Name: Value\r\n" using the stored casing.
// The blank line closing the block is left to the message writer.
func (h Headers) WriteTo(w io.Writer) (int64, error) {
	buf := bytes.NewBuffer(nil)
	for _, field := range h {
		buf.WriteString(field.Name)
		buf.WriteByte(':')
		buf.WriteByte(rule.SP)
		buf.WriteString(field.Value)
		buf.Write(rule.CRLF)
	}

	n, err := iolib.WriteFull(w, buf.Bytes())
	return int64(n), err
}

// ParseHeaders reads field lines up to and including the empty line.
// If a content-length field is found, its value is returned as well.
func ParseHeaders(r *iolib.UntilReader) (_ Headers, contentLength *uint64, _ error) {
	var headers Headers
	for {
		line, err := readLine(r)
		if err != nil {
			return nil, nil, errors.Wrap(err, "reading field line")
		}

		if len(line) == 0 {
			// An empty line. This means that there are no more headers.
			break
		}

		field, err := parseField(line)
		if err != nil {
			return nil, nil, err
		}

		if field.Name == HeaderContentLength {
			n, err := strconv.ParseUint(field.Value, 10, 64)
			if err != nil {
				return nil, nil, errors.Wrapf(ErrInvalidInt, "content-length %q", field.Value)
			}
			contentLength = &n
		}

		headers = append(headers, field)
	}

	return headers, contentLength, nil
}

// parseField takes ownership of line. Name and value are views over it.
func parseField(line []byte) (Header, error) {
	colon := bytes.IndexByte(line, ':')
	if colon < 0 {
		return Header{}, errors.Wrapf(ErrMalformedFormat, "colon separator not found on header: %q", line)
	}

	// Exactly one SP between colon and value.
	rest := line[colon+1:]
	if len(rest) == 0 || rest[0] != rule.SP || (len(rest) > 1 && rule.IsOWS(rest[1])) {
		return Header{}, errors.Wrapf(ErrMalformedFormat, "header must have a single space after colon: %q", line)
	}

	name, value := line[:colon], rest[1:]
	if !utf8.Valid(name) || !utf8.Valid(value) {
		return Header{}, errors.Wrapf(ErrInvalidEncoding, "header %q", line)
	}

	rule.ToLowerASCII(name)

	return Header{Name: uf.B2S(name), Value: uf.B2S(value)}, nil
}
