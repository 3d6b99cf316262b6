package spec

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"

	"github.com/airgap/signer-appliance/internal/apperr"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	opts := cbor.CanonicalEncOptions()
	m, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("spec: building canonical cbor encoder: %v", err))
	}
	encMode = m

	dopts := cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
	}
	d, err := dopts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("spec: building cbor decoder: %v", err))
	}
	decMode = d
}

// Encode serializes a Descriptor to its canonical CBOR form. Encoding is
// total and deterministic: the same Descriptor always produces the same
// bytes.
func Encode(d Descriptor) ([]byte, error) {
	if err := validate(d); err != nil {
		return nil, err
	}
	b, err := encMode.Marshal(d)
	if err != nil {
		return nil, apperr.Wrap(apperr.DescriptorDecode, err, "encode descriptor")
	}
	return b, nil
}

// Decode parses CBOR bytes into a Descriptor, rejecting trailing bytes,
// unknown fields, and values that do not fit the declared ranges.
func Decode(b []byte) (Descriptor, error) {
	var d Descriptor
	dec := decMode.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&d); err != nil {
		return Descriptor{}, apperr.Wrap(apperr.DescriptorDecode, err, "decode descriptor")
	}
	if n := dec.NumBytesRead(); n != len(b) {
		return Descriptor{}, apperr.New(apperr.DescriptorDecode, "trailing bytes after descriptor")
	}
	if err := validate(d); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

func validate(d Descriptor) error {
	if len(d.Label) > MaxLabelBytes {
		return apperr.New(apperr.DescriptorDecode, "label exceeds 256 bytes")
	}
	switch d.Algorithm {
	case Ed25519, Secp256k1ECDSA, Secp256k1Schnorr:
	default:
		return apperr.New(apperr.DescriptorDecode, "unknown signing algorithm: "+string(d.Algorithm))
	}
	switch d.Output {
	case SignatureOnly, AppendToPayload, WasmAssemble:
	default:
		return apperr.New(apperr.DescriptorDecode, "unknown output spec: "+string(d.Output))
	}
	if err := validateSignable(d.Signable); err != nil {
		return err
	}
	return nil
}

func validateSignable(s Signable) error {
	switch s.Kind {
	case SignableWhole:
		return nil
	case SignableRange:
		return checkRange(s.Offset, s.Length)
	case SignableHashThenSign:
		switch s.Hash {
		case Blake2b256, Sha256, Sha3_256:
		default:
			return apperr.New(apperr.DescriptorDecode, "unknown hash algorithm: "+string(s.Hash))
		}
		switch s.Source.Kind {
		case SourceWhole:
			return nil
		case SourceRange:
			return checkRange(s.Source.Offset, s.Source.Length)
		default:
			return apperr.New(apperr.DescriptorDecode, "unknown signable source kind: "+s.Source.Kind)
		}
	default:
		return apperr.New(apperr.DescriptorDecode, "unknown signable kind: "+s.Kind)
	}
}

// checkRange rejects offset+length combinations that would overflow a
// 64-bit machine word; the payload-length bound itself is checked later, at
// extraction time, because the payload is not known at decode time.
func checkRange(offset, length uint64) error {
	if offset > math.MaxUint64-length {
		return apperr.New(apperr.RangeOutOfBounds, "offset+length overflows")
	}
	return nil
}
