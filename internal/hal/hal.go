// Package hal defines the narrow hardware-abstraction surface FLOW drives:
// a display, a button source, and a USB medium. Real hardware and the
// simulators under simfs/simterm both satisfy these same three
// interfaces, so FLOW never branches on which one it's driving.
package hal

import "github.com/airgap/signer-appliance/internal/render"

// ButtonEvent is one physical button action.
type ButtonEvent int

const (
	Confirm ButtonEvent = iota
	Reject
	Up
	Down
)

func (e ButtonEvent) String() string {
	switch e {
	case Confirm:
		return "confirm"
	case Reject:
		return "reject"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// UsbContents is the three-file payload read off a mounted USB medium.
type UsbContents struct {
	Payload         []byte
	InterpreterWasm []byte
	SigningSpecCbor []byte
}

// Display renders text and scrollable line sets to the appliance screen.
type Display interface {
	Clear() error
	ShowMessage(text string) error
	ShowLines(lines []render.Line, scrollOffset int) error
}

// Buttons is the physical input source. WaitEvent blocks until the user
// acts; per spec this is one of the appliance's four suspension points.
type Buttons interface {
	WaitEvent() (ButtonEvent, error)
}

// UsbMount is the removable medium FLOW mounts once per signing cycle,
// plus the named-file read/write pair provisioning uses for seed.bin and
// pubkey.bin.
type UsbMount interface {
	WaitInsert() error
	MountReadonly() error
	ReadContents() (UsbContents, error)
	WriteOutput(data []byte) error
	ReadFile(name string) ([]byte, bool, error)
	WriteFile(name string, data []byte) error
	Unmount() error
}
