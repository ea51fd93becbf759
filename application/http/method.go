package http

import (
	"basket/application/util/rule"

	"github.com/pkg/errors"
)

type Method string

const (
	MethodDelete  Method = "DELETE"
	MethodGet     Method = "GET"
	MethodOptions Method = "OPTIONS"
	MethodPatch   Method = "PATCH"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
)

// ParseMethod maps a method token to a [Method].
// Bytes which are not a token at all are a malformed request line,
// a token outside of the supported methods is unknown.
func ParseMethod(b []byte) (Method, error) {
	if !rule.IsValidToken(b) {
		return "", errors.Wrapf(ErrMalformedFormat, "method is not a valid token: %q", b)
	}

	switch m := Method(b); m {
	case MethodDelete, MethodGet, MethodOptions, MethodPatch, MethodPost, MethodPut:
		return m, nil
	}

	return "", errors.Wrapf(ErrUnknownMethod, "%q", b)
}

func (m Method) String() string { return string(m) }
