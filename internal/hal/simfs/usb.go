// Package simfs implements hal.UsbMount as a plain directory: it polls
// for payload.bin/interpreter.wasm/sign.cbor and writes signed.bin,
// standing in for an actual USB mass-storage device.
package simfs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/airgap/signer-appliance/internal/apperr"
	"github.com/airgap/signer-appliance/internal/hal"
)

// PollInterval is how often WaitInsert checks for the three required files.
const PollInterval = 500 * time.Millisecond

const (
	payloadName     = "payload.bin"
	interpreterName = "interpreter.wasm"
	specName        = "sign.cbor"
	outputName      = "signed.bin"
)

// Usb is a directory-backed hal.UsbMount.
type Usb struct {
	dir string
}

var _ hal.UsbMount = (*Usb)(nil)

// New watches dir for the three well-known input files.
func New(dir string) *Usb {
	return &Usb{dir: dir}
}

func (u *Usb) path(name string) string { return filepath.Join(u.dir, name) }

func (u *Usb) filesPresent() bool {
	for _, name := range []string{payloadName, interpreterName, specName} {
		if _, err := os.Stat(u.path(name)); err != nil {
			return false
		}
	}
	return true
}

// WaitInsert blocks until all three input files are present.
func (u *Usb) WaitInsert() error {
	for !u.filesPresent() {
		time.Sleep(PollInterval)
	}
	return nil
}

// MountReadonly is a no-op: a directory has no mount step of its own.
func (u *Usb) MountReadonly() error { return nil }

// ReadContents reads the three input files.
func (u *Usb) ReadContents() (hal.UsbContents, error) {
	payload, err := os.ReadFile(u.path(payloadName))
	if err != nil {
		return hal.UsbContents{}, apperr.Wrap(apperr.UsbIo, err, "read payload")
	}
	wasm, err := os.ReadFile(u.path(interpreterName))
	if err != nil {
		return hal.UsbContents{}, apperr.Wrap(apperr.UsbIo, err, "read interpreter")
	}
	cbor, err := os.ReadFile(u.path(specName))
	if err != nil {
		return hal.UsbContents{}, apperr.Wrap(apperr.UsbIo, err, "read signing spec")
	}
	return hal.UsbContents{Payload: payload, InterpreterWasm: wasm, SigningSpecCbor: cbor}, nil
}

// WriteOutput writes signed.bin.
func (u *Usb) WriteOutput(data []byte) error {
	if err := os.WriteFile(u.path(outputName), data, 0o644); err != nil {
		return apperr.Wrap(apperr.UsbIo, err, "write output")
	}
	return nil
}

// ReadFile reads an arbitrary named file off the medium, used during
// provisioning for seed.bin/pubkey.bin. A missing file is not an error.
func (u *Usb) ReadFile(name string) ([]byte, bool, error) {
	data, err := os.ReadFile(u.path(name))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperr.Wrap(apperr.UsbIo, err, "read "+name)
	}
	return data, true, nil
}

// WriteFile writes an arbitrary named file to the medium.
func (u *Usb) WriteFile(name string, data []byte) error {
	if err := os.WriteFile(u.path(name), data, 0o644); err != nil {
		return apperr.Wrap(apperr.UsbIo, err, "write "+name)
	}
	return nil
}

// Unmount is a no-op: a directory has no unmount step of its own.
func (u *Usb) Unmount() error { return nil }
