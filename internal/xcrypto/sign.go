package xcrypto

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"

	"github.com/airgap/signer-appliance/internal/apperr"
	"github.com/airgap/signer-appliance/internal/spec"
)

// Ed25519SeedSize is the canonical secret form for spec.Ed25519.
const Ed25519SeedSize = ed25519.SeedSize

// Sign produces a signature over message using the canonical secret form of
// algo. secp256k1 variants sign a 32-byte digest; a longer or shorter
// message is first reduced to one with SHA-256, matching how every
// secp256k1 signer in the wild is actually invoked.
func Sign(algo spec.SignAlg, secret, message []byte) ([]byte, error) {
	switch algo {
	case spec.Ed25519:
		if len(secret) != Ed25519SeedSize {
			return nil, apperr.New(apperr.UnsupportedAlgo, "ed25519 secret must be a 32-byte seed")
		}
		priv := ed25519.NewKeyFromSeed(secret)
		return ed25519.Sign(priv, message), nil

	case spec.Secp256k1ECDSA:
		priv := secp256k1.PrivKeyFromBytes(secret)
		sig := ecdsa.Sign(priv, digest32(message))
		return sig.Serialize(), nil

	case spec.Secp256k1Schnorr:
		priv := secp256k1.PrivKeyFromBytes(secret)
		sig, err := schnorr.Sign(priv, digest32(message))
		if err != nil {
			return nil, apperr.Wrap(apperr.SandboxInternal, err, "schnorr sign")
		}
		return sig.Serialize(), nil

	default:
		return nil, apperr.New(apperr.UnsupportedAlgo, "unsupported signing algorithm: "+string(algo))
	}
}

// PublicKey derives the public half of secret under algo.
func PublicKey(algo spec.SignAlg, secret []byte) ([]byte, error) {
	switch algo {
	case spec.Ed25519:
		if len(secret) != Ed25519SeedSize {
			return nil, apperr.New(apperr.UnsupportedAlgo, "ed25519 secret must be a 32-byte seed")
		}
		priv := ed25519.NewKeyFromSeed(secret)
		pub, _ := priv.Public().(ed25519.PublicKey)
		return []byte(pub), nil

	case spec.Secp256k1ECDSA, spec.Secp256k1Schnorr:
		priv := secp256k1.PrivKeyFromBytes(secret)
		return priv.PubKey().SerializeCompressed(), nil

	default:
		return nil, apperr.New(apperr.UnsupportedAlgo, "unsupported signing algorithm: "+string(algo))
	}
}

// Verify reports whether sig is a valid signature over message under pubkey
// and algo. Used by tests.
func Verify(algo spec.SignAlg, pubkey, message, sig []byte) bool {
	switch algo {
	case spec.Ed25519:
		if len(pubkey) != ed25519.PublicKeySize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(pubkey), message, sig)

	case spec.Secp256k1ECDSA:
		pk, err := secp256k1.ParsePubKey(pubkey)
		if err != nil {
			return false
		}
		parsed, err := ecdsa.ParseDERSignature(sig)
		if err != nil {
			return false
		}
		return parsed.Verify(digest32(message), pk)

	case spec.Secp256k1Schnorr:
		pk, err := secp256k1.ParsePubKey(pubkey)
		if err != nil {
			return false
		}
		parsed, err := schnorr.ParseSignature(sig)
		if err != nil {
			return false
		}
		return parsed.Verify(digest32(message), pk)

	default:
		return false
	}
}

func digest32(message []byte) []byte {
	if len(message) == 32 {
		return message
	}
	sum := sha256.Sum256(message)
	return sum[:]
}
