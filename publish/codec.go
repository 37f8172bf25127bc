package publish

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Encoding names a payload encoding.
type Encoding string

// Supported encodings.
const (
	EncodingJSON Encoding = "json"
	EncodingCBOR Encoding = "cbor"
)

// Codec marshals payloads.
type Codec interface {
	Encoding() Encoding
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// NewCodec returns the codec for enc.
func NewCodec(enc Encoding) (Codec, error) {
	switch enc {
	case EncodingJSON, "":
		return jsonCodec{}, nil
	case EncodingCBOR:
		em, err := cbor.CoreDetEncOptions().EncMode()
		if err != nil {
			return nil, err
		}

		return cborCodec{em: em}, nil
	default:
		return nil, fmt.Errorf("publish: unsupported encoding %q", enc)
	}
}

type jsonCodec struct{}

func (jsonCodec) Encoding() Encoding                 { return EncodingJSON }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type cborCodec struct {
	em cbor.EncMode
}

func (c cborCodec) Encoding() Encoding                 { return EncodingCBOR }
func (c cborCodec) Marshal(v any) ([]byte, error)      { return c.em.Marshal(v) }
func (c cborCodec) Unmarshal(data []byte, v any) error { return cbor.Unmarshal(data, v) }
