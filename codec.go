package veil

import "encoding/json"

// Codec provides content-type aware marshaling. Codecs serve two seams: the
// Render output format and the default Copier's round-trip transport.
// Providers for JSON, YAML, and MessagePack live in the json, yaml, and
// msgpack subpackages.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// defaultCodec is the stdlib JSON codec used when no codec is configured.
type defaultCodec struct{}

func (defaultCodec) ContentType() string {
	return "application/json"
}

func (defaultCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (defaultCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
