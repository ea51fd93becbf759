// Package codec encodes and decodes structured message bodies.
package codec

import (
	"encoding/xml"

	json "github.com/json-iterator/go"
)

type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// ContentType is the media type of encoded bodies.
	ContentType() string
}

var (
	JSON Codec = jsonCodec{}
	XML  Codec = xmlCodec{}
)

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) ContentType() string                { return "application/json" }

type xmlCodec struct{}

func (xmlCodec) Marshal(v any) ([]byte, error)      { return xml.Marshal(v) }
func (xmlCodec) Unmarshal(data []byte, v any) error { return xml.Unmarshal(data, v) }
func (xmlCodec) ContentType() string                { return "application/xml" }
