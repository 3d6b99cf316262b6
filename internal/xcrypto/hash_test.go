package xcrypto

import (
	"testing"

	"github.com/airgap/signer-appliance/internal/apperr"
	"github.com/airgap/signer-appliance/internal/spec"
)

func TestHashDeterministicAndSized(t *testing.T) {
	algos := []spec.HashAlg{spec.Blake2b256, spec.Sha256, spec.Sha3_256}
	data := []byte("hash me deterministically")

	for _, algo := range algos {
		a, err := Hash(algo, data)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", algo, err)
		}
		b, err := Hash(algo, data)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", algo, err)
		}
		if a != b {
			t.Fatalf("%s: hash not deterministic", algo)
		}
		if len(a) != DigestSize {
			t.Fatalf("%s: expected %d-byte digest, got %d", algo, DigestSize, len(a))
		}
	}
}

func TestHashDistinctAlgorithmsDiffer(t *testing.T) {
	data := []byte("same input, different algorithm")
	a, err := Hash(spec.Sha256, data)
	if err != nil {
		t.Fatalf("sha256: %v", err)
	}
	b, err := Hash(spec.Blake2b256, data)
	if err != nil {
		t.Fatalf("blake2b-256: %v", err)
	}
	if a == b {
		t.Fatalf("expected sha-256 and blake2b-256 digests to differ")
	}
}

func TestHashUnsupportedAlgorithm(t *testing.T) {
	if _, err := Hash("md5", []byte("x")); !apperr.Is(err, apperr.UnsupportedAlgo) {
		t.Fatalf("expected UnsupportedAlgo, got %v", err)
	}
}

func TestHashEmptyInput(t *testing.T) {
	if _, err := Hash(spec.Sha3_256, nil); err != nil {
		t.Fatalf("unexpected error hashing empty input: %v", err)
	}
}
