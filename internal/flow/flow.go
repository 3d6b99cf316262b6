// Package flow implements the appliance's state machine: boot,
// provisioning, PIN verification, and the per-cycle mount -> interpret ->
// review -> sign -> emit -> unmount loop. It is the one package that
// drives hal.Display/hal.Buttons/hal.UsbMount and internal/se.SecureElement
// together.
package flow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/airgap/signer-appliance/internal/apperr"
	"github.com/airgap/signer-appliance/internal/extract"
	"github.com/airgap/signer-appliance/internal/hal"
	"github.com/airgap/signer-appliance/internal/render"
	"github.com/airgap/signer-appliance/internal/sandbox"
	"github.com/airgap/signer-appliance/internal/se"
	"github.com/airgap/signer-appliance/internal/spec"
)

// keySlot0 is the single key slot this appliance provisions during setup.
// Nothing in spec requires more than one slot to exist for the appliance
// to be useful; sign.cbor addresses additional slots directly if an
// operator provisions them out of band.
const keySlot0 = 0

// Flow owns the long-lived sandbox compiler engine and logger shared
// across every cycle.
type Flow struct {
	Display hal.Display
	Buttons hal.Buttons
	Usb     hal.UsbMount
	SE      se.SecureElement

	sandbox *sandbox.Sandbox
	log     *logrus.Logger
}

// New builds a Flow. A nil logger gets a default logrus.Logger, matching
// the teacher's own "package-level logger with an override hook" idiom.
func New(disp hal.Display, buttons hal.Buttons, usb hal.UsbMount, element se.SecureElement, log *logrus.Logger) *Flow {
	if log == nil {
		log = logrus.New()
	}
	return &Flow{
		Display: disp,
		Buttons: buttons,
		Usb:     usb,
		SE:      element,
		sandbox: sandbox.New(),
		log:     log,
	}
}

// Run is the appliance's entry point: provision on first boot, otherwise
// prompt for PIN, then enter the signing loop. It returns when the user
// cancels PIN entry at boot ("GOODBYE") or a terminal lockout is signaled.
func (f *Flow) Run() error {
	if !f.SE.IsProvisioned() {
		if err := f.runSetup(); err != nil {
			return err
		}
	} else {
		for {
			pin, ok, err := enterPin(f.Display, f.Buttons, "ENTER PIN")
			if err != nil {
				return err
			}
			if !ok {
				f.show("GOODBYE")
				f.Buttons.WaitEvent() //nolint:errcheck
				return nil
			}
			err = f.SE.VerifyPin(pin)
			if err == nil {
				break
			}
			var lockout *se.LockoutError
			if asLockoutError(err, &lockout) && lockout.Locked {
				f.log.Warn("secure element locked after repeated wrong pin")
				f.show("LOCKED")
				f.Buttons.WaitEvent() //nolint:errcheck
				return lockout
			}
			f.log.WithError(err).Warn("wrong pin")
			f.show("WRONG PIN")
			f.Buttons.WaitEvent() //nolint:errcheck
		}
	}

	return f.RunLoop()
}

func asLockoutError(err error, out **se.LockoutError) bool {
	l, ok := err.(*se.LockoutError)
	if ok {
		*out = l
	}
	return ok
}

func (f *Flow) show(msg string) {
	if err := f.Display.ShowMessage(msg); err != nil {
		f.log.WithError(err).Warn("show message failed")
	}
}

// RunLoop is the outer idle loop: wait for USB insertion, run one cycle,
// report the result, and wait for an acknowledgment button press before
// returning to idle. A single cycle's error never aborts the loop; a failure
// of WaitInsert or of the acknowledgment button read does.
func (f *Flow) RunLoop() error {
	for {
		f.show("INSERT USB")
		if err := f.Usb.WaitInsert(); err != nil {
			return err
		}

		if _, err := f.RunOnce(); err != nil {
			f.log.WithError(err).Error("signing cycle failed")
			f.show(fmt.Sprintf("ERROR: %v", err))
			if uerr := f.Usb.Unmount(); uerr != nil {
				f.log.WithError(uerr).Warn("unmount after error failed")
			}
		}

		// Keep the result on screen until the user acknowledges it.
		if _, err := f.Buttons.WaitEvent(); err != nil {
			return err
		}
	}
}

// RunOnce runs exactly one mount -> interpret -> review -> sign -> emit ->
// unmount cycle. It returns (true, nil) on a successful signature and
// (false, nil) on user rejection; any other error aborts the cycle
// without unmounting a second time.
func (f *Flow) RunOnce() (bool, error) {
	if err := f.Usb.MountReadonly(); err != nil {
		return false, err
	}
	contents, err := f.Usb.ReadContents()
	if err != nil {
		return false, err
	}

	descriptor, err := spec.Decode(contents.SigningSpecCbor)
	if err != nil {
		return false, err
	}
	f.show(descriptor.Label)

	module, err := f.sandbox.Load(contents.InterpreterWasm)
	if err != nil {
		return false, err
	}
	needAssemble := descriptor.Output == spec.WasmAssemble
	if err := module.RequireExports(needAssemble); err != nil {
		return false, err
	}

	jsonStr, err := module.Interpret(contents.Payload)
	if err != nil {
		return false, err
	}
	var decoded any
	dec := json.NewDecoder(strings.NewReader(jsonStr))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return false, apperr.Wrap(apperr.InvalidUtf8, err, "interpret output is not valid json")
	}
	lines := render.FromJSON(decoded)

	confirmed, err := f.review(lines)
	if err != nil {
		return false, err
	}
	if !confirmed {
		f.show("REJECTED")
		if err := f.Usb.Unmount(); err != nil {
			return false, err
		}
		return false, nil
	}

	message, err := extract.Extract(contents.Payload, descriptor.Signable)
	if err != nil {
		return false, err
	}
	sig, err := f.SE.Sign(descriptor.Algorithm, descriptor.KeySlot, message)
	if err != nil {
		return false, err
	}

	output, err := buildOutput(descriptor.Output, contents.Payload, sig, module)
	if err != nil {
		return false, err
	}

	if err := f.Usb.WriteOutput(output); err != nil {
		return false, err
	}
	if err := f.Usb.Unmount(); err != nil {
		return false, err
	}
	f.show("DONE — REMOVE USB")
	return true, nil
}

// review shows lines and drives the scroll/confirm/reject loop.
func (f *Flow) review(lines []render.Line) (bool, error) {
	reviewer := render.NewReviewer(lines)
	if err := f.Display.ShowLines(reviewer.Lines, reviewer.Cursor()); err != nil {
		return false, err
	}
	for {
		event, err := f.Buttons.WaitEvent()
		if err != nil {
			return false, err
		}
		switch event {
		case hal.Up:
			reviewer.Up()
			if err := f.Display.ShowLines(reviewer.Lines, reviewer.Cursor()); err != nil {
				return false, err
			}
		case hal.Down:
			reviewer.Down()
			if err := f.Display.ShowLines(reviewer.Lines, reviewer.Cursor()); err != nil {
				return false, err
			}
		case hal.Confirm:
			return true, nil
		case hal.Reject:
			return false, nil
		}
	}
}

func buildOutput(output spec.OutputSpec, payload, sig []byte, module *sandbox.Module) ([]byte, error) {
	switch output {
	case spec.SignatureOnly:
		return sig, nil
	case spec.AppendToPayload:
		out := make([]byte, 0, len(payload)+len(sig))
		out = append(out, payload...)
		out = append(out, sig...)
		return out, nil
	case spec.WasmAssemble:
		return module.Assemble(payload, sig)
	default:
		return nil, apperr.New(apperr.DescriptorDecode, "unknown output spec: "+string(output))
	}
}
