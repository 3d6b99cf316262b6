// Package simfile implements internal/se.SecureElement as a JSON document
// on disk, standing in for real secure-element hardware during development
// and demos. The wire format extends spec's minimal
// {pin_hash, keys} document with the wrong-PIN-streak/lockout bookkeeping
// internal/se's contract requires to survive a restart.
package simfile

import (
	crand "crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/airgap/signer-appliance/internal/apperr"
	"github.com/airgap/signer-appliance/internal/se"
	"github.com/airgap/signer-appliance/internal/spec"
	"github.com/airgap/signer-appliance/internal/xcrypto"
)

// MaxWrongPinStreak is the number of consecutive wrong-PIN attempts this
// simulator tolerates before refusing any further attempt, resolving
// spec's open question on retry/lockout policy.
const MaxWrongPinStreak = 10

const pinSaltSize = 16

// document is the on-disk shape of the SE state.
type document struct {
	PinHash        string            `json:"pin_hash,omitempty"`
	PinSalt        string            `json:"pin_salt,omitempty"`
	Keys           map[string]string `json:"keys"`
	WrongPinStreak int               `json:"wrong_pin_streak"`
	Locked         bool              `json:"locked"`
}

// Store is a file-backed SecureElement. Verified is session-scoped and
// never persisted: a restart always starts PIN-unverified, matching
// spec's "pin_verified is session-scoped and cleared on teardown".
type Store struct {
	path string

	mu       sync.Mutex
	doc      document
	verified bool
}

var _ se.SecureElement = (*Store)(nil)

// Open loads path if it exists, or starts an empty unprovisioned document
// if it does not — the first run of a fresh appliance.
func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: document{Keys: map[string]string{}}}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.UsbIo, err, "read se state")
	}
	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, apperr.Wrap(apperr.UsbIo, err, "parse se state")
	}
	if s.doc.Keys == nil {
		s.doc.Keys = map[string]string{}
	}
	return s, nil
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return apperr.Wrap(apperr.UsbIo, err, "encode se state")
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return apperr.Wrap(apperr.UsbIo, err, "write se state")
	}
	return nil
}

// IsProvisioned reports whether a PIN has been set.
func (s *Store) IsProvisioned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.PinHash != ""
}

func hashPin(pin, salt []byte) string {
	h := sha256.New()
	h.Write(salt)
	h.Write(pin)
	return hex.EncodeToString(h.Sum(nil))
}

// SetPin persists a salted hash of pin. Allowed only while unprovisioned;
// called again on an already-provisioned element reports SeUnprovisioned,
// the closest of the eighteen kinds to "wrong provisioning state for this
// call" — re-provisioning is not itself a named failure mode in spec, and
// FLOW never exercises this path since SETUP only runs once per element.
func (s *Store) SetPin(pin []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.PinHash != "" {
		return apperr.New(apperr.SeUnprovisioned, "secure element is already provisioned")
	}

	salt := make([]byte, pinSaltSize)
	if _, err := crand.Read(salt); err != nil {
		return apperr.Wrap(apperr.SandboxInternal, err, "generate pin salt")
	}

	s.doc.PinSalt = hex.EncodeToString(salt)
	s.doc.PinHash = hashPin(pin, salt)
	s.doc.WrongPinStreak = 0
	s.doc.Locked = false
	return s.save()
}

// VerifyPin compares pin against the stored derivative in constant time.
// Success sets the in-memory verified flag and clears the streak; failure
// increments it and, once it reaches MaxWrongPinStreak, locks the element
// for good.
func (s *Store) VerifyPin(pin []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.PinHash == "" {
		return apperr.New(apperr.SeUnprovisioned, "secure element has no pin set")
	}
	if s.doc.Locked {
		return &se.LockoutError{
			Err:    apperr.New(apperr.SeWrongPin, "secure element is locked"),
			Locked: true,
		}
	}

	salt, err := hex.DecodeString(s.doc.PinSalt)
	if err != nil {
		return apperr.Wrap(apperr.SandboxInternal, err, "decode stored pin salt")
	}
	candidate := hashPin(pin, salt)

	if subtle.ConstantTimeCompare([]byte(candidate), []byte(s.doc.PinHash)) == 1 {
		s.verified = true
		s.doc.WrongPinStreak = 0
		if err := s.save(); err != nil {
			return err
		}
		return nil
	}

	s.verified = false
	s.doc.WrongPinStreak++
	locked := s.doc.WrongPinStreak >= MaxWrongPinStreak
	s.doc.Locked = locked
	if err := s.save(); err != nil {
		return err
	}
	return &se.LockoutError{
		Err:    apperr.New(apperr.SeWrongPin, "incorrect pin"),
		Locked: locked,
	}
}

func (s *Store) requireVerified() error {
	if !s.verified {
		return apperr.New(apperr.SeNotVerified, "operation requires a verified pin session")
	}
	return nil
}

func slotKey(slot uint8) string { return strconv.Itoa(int(slot)) }

func (s *Store) seedForSlot(slot uint8) ([]byte, error) {
	hexSeed, ok := s.doc.Keys[slotKey(slot)]
	if !ok {
		return nil, apperr.New(apperr.SeSlotEmpty, fmt.Sprintf("no key in slot %d", slot))
	}
	seed, err := hex.DecodeString(hexSeed)
	if err != nil {
		return nil, apperr.Wrap(apperr.SandboxInternal, err, "decode stored seed")
	}
	return seed, nil
}

// GenerateKey creates a fresh 32-byte secret in slot and returns its
// public half under algo. Requires a verified session.
func (s *Store) GenerateKey(algo spec.SignAlg, slot uint8) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireVerified(); err != nil {
		return nil, err
	}

	seed := make([]byte, xcrypto.Ed25519SeedSize)
	if _, err := crand.Read(seed); err != nil {
		return nil, apperr.Wrap(apperr.SandboxInternal, err, "generate key material")
	}

	pub, err := xcrypto.PublicKey(algo, seed)
	if err != nil {
		return nil, err
	}

	s.doc.Keys[slotKey(slot)] = hex.EncodeToString(seed)
	if err := s.save(); err != nil {
		return nil, err
	}
	return pub, nil
}

// Sign produces a signature over message using the key in slot. Requires
// a verified session and a populated slot.
func (s *Store) Sign(algo spec.SignAlg, slot uint8, message []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireVerified(); err != nil {
		return nil, err
	}
	seed, err := s.seedForSlot(slot)
	if err != nil {
		return nil, err
	}
	return xcrypto.Sign(algo, seed, message)
}

// PublicKey returns the public half of the key in slot. Does not require
// a verified session.
func (s *Store) PublicKey(algo spec.SignAlg, slot uint8) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seed, err := s.seedForSlot(slot)
	if err != nil {
		return nil, err
	}
	return xcrypto.PublicKey(algo, seed)
}

// ImportKey installs seed into slot, the provisioning-time recovery path.
// Requires a verified session.
func (s *Store) ImportKey(slot uint8, seed []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireVerified(); err != nil {
		return err
	}
	if len(seed) != xcrypto.Ed25519SeedSize {
		return apperr.New(apperr.UnsupportedAlgo, "imported seed must be 32 bytes")
	}
	s.doc.Keys[slotKey(slot)] = hex.EncodeToString(seed)
	return s.save()
}

// ExportSeed returns the raw seed in slot for one-time delivery to the
// provisioning medium. Requires a verified session. The caller is
// responsible for writing it straight to the medium and dropping its copy
// immediately — the element itself retains no memory of having exported it.
func (s *Store) ExportSeed(slot uint8) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireVerified(); err != nil {
		return nil, err
	}
	return s.seedForSlot(slot)
}
