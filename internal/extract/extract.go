// Package extract implements the pure payload-to-bytes-to-sign function
// driven by a spec.Signable: the one place that turns "what to sign" into
// "these exact bytes".
package extract

import (
	"github.com/airgap/signer-appliance/internal/apperr"
	"github.com/airgap/signer-appliance/internal/spec"
	"github.com/airgap/signer-appliance/internal/xcrypto"
)

// Extract returns the bytes to hand the secure element for signing,
// derived from payload according to signable. The result is at most
// max(len(payload), 32) bytes and never allocates beyond that.
func Extract(payload []byte, signable spec.Signable) ([]byte, error) {
	switch signable.Kind {
	case spec.SignableWhole:
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil

	case spec.SignableRange:
		return sliceRange(payload, signable.Offset, signable.Length)

	case spec.SignableHashThenSign:
		source, err := sourceBytes(payload, signable.Source)
		if err != nil {
			return nil, err
		}
		digest, err := xcrypto.Hash(signable.Hash, source)
		if err != nil {
			return nil, err
		}
		return digest[:], nil

	default:
		return nil, apperr.New(apperr.DescriptorDecode, "unknown signable kind: "+signable.Kind)
	}
}

func sourceBytes(payload []byte, source spec.SignableSource) ([]byte, error) {
	switch source.Kind {
	case spec.SourceWhole:
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	case spec.SourceRange:
		return sliceRange(payload, source.Offset, source.Length)
	default:
		return nil, apperr.New(apperr.DescriptorDecode, "unknown signable source kind: "+source.Kind)
	}
}

// sliceRange returns payload[offset:offset+length], failing closed on
// overflow or an out-of-bounds range. A zero-length range is legal and
// returns an empty, non-nil slice.
func sliceRange(payload []byte, offset, length uint64) ([]byte, error) {
	end := offset + length
	if end < offset { // overflow
		return nil, apperr.New(apperr.RangeOutOfBounds, "offset+length overflows")
	}
	if end > uint64(len(payload)) {
		return nil, apperr.New(apperr.RangeOutOfBounds, "range exceeds payload length")
	}
	out := make([]byte, length)
	copy(out, payload[offset:end])
	return out, nil
}
