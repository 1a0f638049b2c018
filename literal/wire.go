package literal

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode encodes canonically so equal registries produce equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("literal: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalBuffers serializes a buffer list to CBOR bytes.
func MarshalBuffers(bufs []*Buffer) ([]byte, error) {
	return cborEncMode.Marshal(bufs)
}

// UnmarshalBuffers deserializes a buffer list from CBOR bytes.
func UnmarshalBuffers(data []byte) ([]*Buffer, error) {
	var bufs []*Buffer
	if err := cbor.Unmarshal(data, &bufs); err != nil {
		return nil, fmt.Errorf("literal: unmarshal buffers: %w", err)
	}
	return bufs, nil
}

// MarshalRegistry serializes every buffer in r.
func MarshalRegistry(r *Registry) ([]byte, error) {
	return MarshalBuffers(r.Buffers())
}
