// Package se defines the abstract secure-element contract: the one
// component allowed to hold private key material. FLOW never sees a seed
// directly except the single value export_seed hands back during
// provisioning.
package se

import (
	"github.com/airgap/signer-appliance/internal/apperr"
	"github.com/airgap/signer-appliance/internal/spec"
)

// SecureElement is the narrow surface FLOW drives during provisioning and
// signing. Implementations MUST fail closed: any operation gated on a
// verified session or a populated slot returns an error rather than a
// zero value when the precondition does not hold.
type SecureElement interface {
	// IsProvisioned reports whether a PIN has been set.
	IsProvisioned() bool

	// SetPin persists a non-reversible derivative of pin. Allowed only
	// while unprovisioned.
	SetPin(pin []byte) error

	// VerifyPin compares pin against the stored derivative. Success sets
	// a session-scoped verified flag; failure clears it and counts
	// toward the lockout threshold.
	VerifyPin(pin []byte) error

	// GenerateKey creates a fresh secret in slot and returns its public
	// half. Requires a verified session.
	GenerateKey(algo spec.SignAlg, slot uint8) ([]byte, error)

	// Sign produces a signature over message using the key in slot.
	// Requires a verified session and a populated slot.
	Sign(algo spec.SignAlg, slot uint8, message []byte) ([]byte, error)

	// PublicKey returns the public half of the key in slot. Does not
	// require a verified session.
	PublicKey(algo spec.SignAlg, slot uint8) ([]byte, error)

	// ImportKey installs an existing seed into slot. Requires a verified
	// session.
	ImportKey(slot uint8, seed []byte) error

	// ExportSeed returns the raw seed in slot, for one-time delivery to
	// the provisioning medium. Requires a verified session.
	ExportSeed(slot uint8) ([]byte, error)
}

// LockoutError reports a wrong-PIN failure. Locked is set once the
// element has decided no further PIN attempts will be accepted, the one
// condition that terminates the running session per spec.
type LockoutError struct {
	Err    *apperr.Error
	Locked bool
}

func (e *LockoutError) Error() string { return e.Err.Error() }
func (e *LockoutError) Unwrap() error { return e.Err }
