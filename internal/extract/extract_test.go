package extract

import (
	"bytes"
	"testing"

	"github.com/airgap/signer-appliance/internal/apperr"
	"github.com/airgap/signer-appliance/internal/spec"
	"github.com/airgap/signer-appliance/internal/xcrypto"
)

func TestExtractWhole(t *testing.T) {
	payload := []byte("the entire payload")
	out, err := Extract(payload, spec.Signable{Kind: spec.SignableWhole})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("got %q, want %q", out, payload)
	}
}

func TestExtractRange(t *testing.T) {
	payload := []byte("0123456789")
	out, err := Extract(payload, spec.Signable{Kind: spec.SignableRange, Offset: 2, Length: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "2345" {
		t.Fatalf("got %q, want %q", out, "2345")
	}
}

func TestExtractRangeZeroLength(t *testing.T) {
	payload := []byte("0123456789")
	out, err := Extract(payload, spec.Signable{Kind: spec.SignableRange, Offset: 5, Length: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == nil {
		t.Fatalf("expected non-nil empty slice")
	}
	if len(out) != 0 {
		t.Fatalf("expected empty slice, got %d bytes", len(out))
	}
}

func TestExtractRangeOutOfBounds(t *testing.T) {
	payload := []byte("short")
	_, err := Extract(payload, spec.Signable{Kind: spec.SignableRange, Offset: 3, Length: 10})
	if !apperr.Is(err, apperr.RangeOutOfBounds) {
		t.Fatalf("expected RangeOutOfBounds, got %v", err)
	}
}

func TestExtractRangeOffsetOverflow(t *testing.T) {
	payload := []byte("short")
	_, err := Extract(payload, spec.Signable{Kind: spec.SignableRange, Offset: ^uint64(0), Length: 5})
	if !apperr.Is(err, apperr.RangeOutOfBounds) {
		t.Fatalf("expected RangeOutOfBounds for overflow, got %v", err)
	}
}

func TestExtractHashThenSignWhole(t *testing.T) {
	payload := []byte("hash the whole thing")
	out, err := Extract(payload, spec.Signable{
		Kind:   spec.SignableHashThenSign,
		Hash:   spec.Sha256,
		Source: spec.SignableSource{Kind: spec.SourceWhole},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := xcrypto.Hash(spec.Sha256, payload)
	if err != nil {
		t.Fatalf("hash fixture: %v", err)
	}
	if !bytes.Equal(out, want[:]) {
		t.Fatalf("digest mismatch")
	}
	if len(out) != xcrypto.DigestSize {
		t.Fatalf("expected %d-byte digest, got %d", xcrypto.DigestSize, len(out))
	}
}

func TestExtractHashThenSignRange(t *testing.T) {
	payload := []byte("0123456789abcdef")
	out, err := Extract(payload, spec.Signable{
		Kind: spec.SignableHashThenSign,
		Hash: spec.Blake2b256,
		Source: spec.SignableSource{
			Kind:   spec.SourceRange,
			Offset: 4,
			Length: 4,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := xcrypto.Hash(spec.Blake2b256, payload[4:8])
	if err != nil {
		t.Fatalf("hash fixture: %v", err)
	}
	if !bytes.Equal(out, want[:]) {
		t.Fatalf("digest mismatch")
	}
}

func TestExtractHashThenSignRangeOutOfBounds(t *testing.T) {
	payload := []byte("short")
	_, err := Extract(payload, spec.Signable{
		Kind: spec.SignableHashThenSign,
		Hash: spec.Sha3_256,
		Source: spec.SignableSource{
			Kind:   spec.SourceRange,
			Offset: 0,
			Length: 100,
		},
	})
	if !apperr.Is(err, apperr.RangeOutOfBounds) {
		t.Fatalf("expected RangeOutOfBounds, got %v", err)
	}
}

func TestExtractUnknownKind(t *testing.T) {
	_, err := Extract([]byte("x"), spec.Signable{Kind: "bogus"})
	if !apperr.Is(err, apperr.DescriptorDecode) {
		t.Fatalf("expected DescriptorDecode, got %v", err)
	}
}
