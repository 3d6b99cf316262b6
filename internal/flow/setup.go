package flow

import (
	"bytes"

	"github.com/airgap/signer-appliance/internal/apperr"
	"github.com/airgap/signer-appliance/internal/spec"
)

const seedFileName = "seed.bin"
const pubkeyFileName = "pubkey.bin"

// runSetup drives first-boot provisioning: set and confirm a PIN, then
// either recover an existing seed from the private USB medium's seed.bin
// or generate a fresh key and export it there, then write the public key
// to a second, public medium.
func (f *Flow) runSetup() error {
	f.show("SETUP")
	f.Buttons.WaitEvent() //nolint:errcheck

	for {
		pin, ok, err := enterPin(f.Display, f.Buttons, "SET PIN")
		if err != nil {
			return err
		}
		if !ok {
			f.show("SETUP CANCELLED")
			f.Buttons.WaitEvent() //nolint:errcheck
			return apperr.New(apperr.UserCancelled, "setup cancelled at pin entry")
		}

		confirm, ok, err := enterPin(f.Display, f.Buttons, "CONFIRM PIN")
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		if !bytes.Equal(pin, confirm) {
			f.show("PIN MISMATCH")
			f.Buttons.WaitEvent() //nolint:errcheck
			continue
		}

		if err := f.SE.SetPin(pin); err != nil {
			return err
		}
		if err := f.SE.VerifyPin(pin); err != nil {
			return err
		}

		if err := f.provisionKey(); err != nil {
			return err
		}
		f.show("REMOVE USB - SETUP COMPLETE")
		f.Buttons.WaitEvent() //nolint:errcheck
		return nil
	}
}

func (f *Flow) provisionKey() error {
	f.show("INSERT PRIVATE USB")
	f.Buttons.WaitEvent() //nolint:errcheck

	seed, found, err := f.Usb.ReadFile(seedFileName)
	if err != nil {
		return err
	}

	var pubkey []byte
	if found {
		f.show("RECOVERING FROM SEED...")
		if err := f.SE.ImportKey(keySlot0, seed); err != nil {
			return err
		}
		pubkey, err = f.SE.PublicKey(spec.Ed25519, keySlot0)
		if err != nil {
			return err
		}
	} else {
		f.show("GENERATING NEW KEY...")
		pubkey, err = f.SE.GenerateKey(spec.Ed25519, keySlot0)
		if err != nil {
			return err
		}
		exported, err := f.SE.ExportSeed(keySlot0)
		if err != nil {
			return err
		}
		if err := f.Usb.WriteFile(seedFileName, exported); err != nil {
			return err
		}
		f.show("SEED SAVED TO USB")
		f.Buttons.WaitEvent() //nolint:errcheck
	}

	f.show("REMOVE PRIVATE USB")
	f.Buttons.WaitEvent() //nolint:errcheck

	f.show("INSERT PUBLIC USB")
	f.Buttons.WaitEvent() //nolint:errcheck

	if err := f.Usb.WriteFile(pubkeyFileName, pubkey); err != nil {
		return err
	}
	f.show("PUBKEY SAVED TO USB")
	f.Buttons.WaitEvent() //nolint:errcheck
	return nil
}
