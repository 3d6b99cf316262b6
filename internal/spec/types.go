// Package spec defines the signing-descriptor schema shared between the host
// packaging tool and the appliance: what to sign, which algorithm to use,
// which key slot to use, and how to shape the output.
package spec

// HashAlg identifies a hash function usable inside a HashThenSign signable.
// All three produce a 32-byte digest.
type HashAlg string

const (
	Blake2b256 HashAlg = "blake2b-256"
	Sha256     HashAlg = "sha-256"
	Sha3_256   HashAlg = "sha3-256"
)

// SignAlg identifies the signature scheme the secure element is asked to use.
type SignAlg string

const (
	Ed25519          SignAlg = "ed25519"
	Secp256k1ECDSA   SignAlg = "secp256k1-ecdsa"
	Secp256k1Schnorr SignAlg = "secp256k1-schnorr"
)

// SignableSource selects the byte range a HashThenSign signable hashes.
type SignableSource struct {
	// Kind is either "whole" or "range"; Offset/Length apply only to "range".
	Kind   string `cbor:"kind"`
	Offset uint64 `cbor:"offset,omitempty"`
	Length uint64 `cbor:"length,omitempty"`
}

const (
	SourceWhole = "whole"
	SourceRange = "range"
)

// Signable selects what portion of the payload the appliance signs.
//
// Kind is one of "whole", "range", or "hash_then_sign". For "range", Offset
// and Length apply. For "hash_then_sign", Hash and Source apply.
type Signable struct {
	Kind   string         `cbor:"kind"`
	Offset uint64         `cbor:"offset,omitempty"`
	Length uint64         `cbor:"length,omitempty"`
	Hash   HashAlg        `cbor:"hash,omitempty"`
	Source SignableSource `cbor:"source,omitempty"`
}

const (
	SignableWhole        = "whole"
	SignableRange        = "range"
	SignableHashThenSign = "hash_then_sign"
)

// OutputSpec selects how the signed result is shaped before it is written
// back to the USB medium.
type OutputSpec string

const (
	SignatureOnly   OutputSpec = "signature_only"
	AppendToPayload OutputSpec = "append_to_payload"
	WasmAssemble    OutputSpec = "wasm_assemble"
)

// Descriptor is the complete signing specification read from sign.cbor.
type Descriptor struct {
	Label     string     `cbor:"label"`
	Signable  Signable   `cbor:"signable"`
	Algorithm SignAlg    `cbor:"algorithm"`
	KeySlot   uint8      `cbor:"key_slot"`
	Output    OutputSpec `cbor:"output"`
}

// MaxLabelBytes bounds Descriptor.Label per the data-model invariant.
const MaxLabelBytes = 256
