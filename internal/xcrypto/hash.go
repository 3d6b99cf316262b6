// Package xcrypto adapts the appliance's three hash algorithms and three
// signing algorithms to a uniform, fail-closed interface. It never holds
// onto private key material itself — that lives in internal/se.
package xcrypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/airgap/signer-appliance/internal/apperr"
	"github.com/airgap/signer-appliance/internal/spec"
)

// DigestSize is the fixed output width of every supported hash algorithm.
const DigestSize = 32

// Hash computes the 32-byte digest of data under the named algorithm.
func Hash(algo spec.HashAlg, data []byte) ([DigestSize]byte, error) {
	switch algo {
	case spec.Blake2b256:
		return blake2b.Sum256(data), nil
	case spec.Sha256:
		return sha256.Sum256(data), nil
	case spec.Sha3_256:
		return sha3.Sum256(data), nil
	default:
		return [DigestSize]byte{}, apperr.New(apperr.UnsupportedAlgo, "unsupported hash algorithm: "+string(algo))
	}
}
