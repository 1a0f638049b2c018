package program

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("program: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a Program to canonical CBOR bytes.
func Marshal(p *Program) ([]byte, error) {
	return cborEncMode.Marshal(p)
}

// Unmarshal deserializes a Program from CBOR bytes.
func Unmarshal(data []byte) (*Program, error) {
	var p Program
	if err := cbor.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("program: unmarshal: %w", err)
	}
	if p.Version != Version {
		return nil, fmt.Errorf("program: unsupported version %d", p.Version)
	}
	return &p, nil
}

// Fingerprint is the SHA-256 of the canonical encoding with the unit ID
// left out, so two compilations of the same input share a fingerprint.
func Fingerprint(p *Program) ([32]byte, error) {
	anon := *p
	anon.UnitID = ""
	data, err := Marshal(&anon)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}

// FingerprintHex returns the fingerprint as a hex string.
func FingerprintHex(p *Program) (string, error) {
	sum, err := Fingerprint(p)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum[:]), nil
}

// Verify checks p against an expected fingerprint.
func Verify(p *Program, want [32]byte) error {
	got, err := Fingerprint(p)
	if err != nil {
		return err
	}
	if !bytes.Equal(got[:], want[:]) {
		return fmt.Errorf("program: fingerprint mismatch: got %x, want %x", got[:8], want[:8])
	}
	return nil
}
