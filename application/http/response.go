package http

import (
	"bytes"
	"io"
	"strconv"

	"basket/application/http/status"
	"basket/application/util/rule"
	iolib "basket/lib/io"

	"github.com/pkg/errors"
)

type Response struct {
	body

	status  uint16
	headers Headers
}

func (r *Response) Status() uint16 { return r.status }

func (r *Response) Headers() Headers { return r.headers.Clone() }

func (r *Response) Header(name string) (string, bool) { return r.headers.Get(name) }

// ReadResponse reads exactly one response from r.
// Same as [ReadRequest], bytes past the response may be buffered.
func ReadResponse(r io.Reader) (*Response, error) {
	ur := untilReader(r)

	if err := expectVersion(ur); err != nil {
		return nil, errors.Wrap(err, "parsing status line")
	}

	if err := skip(ur, []byte{rule.SP}); err != nil {
		return nil, errors.Wrap(err, "parsing status line")
	}

	line, err := readLine(ur)
	if err != nil {
		return nil, errors.Wrap(err, "reading status line")
	}

	// reason-phrase is optional, and is discarded anyway.
	code, _, _ := bytes.Cut(line, []byte{rule.SP})
	statusCode, err := strconv.ParseUint(string(code), 10, 16)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidInt, "status code %q", code)
	}

	headers, contentLength, err := ParseHeaders(ur)
	if err != nil {
		return nil, errors.Wrap(err, "parsing headers")
	}

	response := &Response{
		status:  uint16(statusCode),
		headers: headers,
	}

	if contentLength != nil {
		response.body, err = readBody(ur, *contentLength)
		if err != nil {
			return nil, err
		}
	}

	return response, nil
}

// Write writes the response in wire format.
// The reason phrase is taken from the registered status codes.
func (r *Response) Write(w io.Writer) error {
	buf := bytes.NewBuffer(nil)

	buf.Write(httpVersion)
	buf.WriteByte(rule.SP)
	buf.WriteString(strconv.FormatUint(uint64(r.status), 10))
	buf.WriteByte(rule.SP)
	buf.WriteString(status.Text(r.status))
	buf.Write(rule.CRLF)

	r.headers.WriteTo(buf)
	buf.Write(rule.CRLF)

	if _, err := iolib.WriteFull(w, buf.Bytes()); err != nil {
		return errors.Wrap(IOError(err), "writing status line & headers")
	}

	return r.body.writeTo(w)
}
