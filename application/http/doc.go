// Package http implements a minimal Hypertext Transfer Protocol (HTTP/1.1)
// message model over raw byte streams.
//
// Only HTTP/1.1 messages with an optional fixed-length body are supported.
// Every connection carries exactly one request and one response.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9110
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http
