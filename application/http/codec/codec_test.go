package codec

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	XMLName xml.Name `json:"-" xml:"person"`
	Name    string   `json:"name" xml:"name"`
	Age     uint8    `json:"age" xml:"age"`
}

func TestCodecs(t *testing.T) {
	testcases := []struct {
		desc        string
		codec       Codec
		encoded     string
		contentType string
	}{
		{
			desc:        "json",
			codec:       JSON,
			encoded:     `{"name":"John Doe","age":42}`,
			contentType: "application/json",
		},
		{
			desc:        "xml",
			codec:       XML,
			encoded:     `<person><name>John Doe</name><age>42</age></person>`,
			contentType: "application/xml",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			in := person{Name: "John Doe", Age: 42}

			b, err := tc.codec.Marshal(in)
			require.NoError(t, err)
			assert.Equal(t, tc.encoded, string(b))
			assert.Equal(t, tc.contentType, tc.codec.ContentType())

			var out person
			require.NoError(t, tc.codec.Unmarshal(b, &out))
			assert.Equal(t, in.Name, out.Name)
			assert.Equal(t, in.Age, out.Age)
		})
	}
}

func TestCodecErrors(t *testing.T) {
	_, err := JSON.Marshal(make(chan int))
	assert.Error(t, err)

	_, err = XML.Marshal(make(chan int))
	assert.Error(t, err)

	var out person
	assert.Error(t, JSON.Unmarshal([]byte("{"), &out))
	assert.Error(t, XML.Unmarshal([]byte("<person>"), &out))
}
