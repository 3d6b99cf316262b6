// Package simterm implements hal.Display and hal.Buttons over a plain
// terminal: messages and review lines print to stdout, each button event
// comes from one line read from stdin. It replaces the reference
// prototype's minifb framebuffer window, which is out of scope per
// spec's non-goals around physical display/input drivers — a terminal is
// the idiomatic stand-in for demoing FLOW without real hardware.
package simterm

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/airgap/signer-appliance/internal/apperr"
	"github.com/airgap/signer-appliance/internal/hal"
	"github.com/airgap/signer-appliance/internal/render"
)

// Terminal is a line-oriented Display+Buttons pair. Key bindings:
// w/up=Up, s/down=Down, Enter/c=Confirm, q/r=Reject.
type Terminal struct {
	out io.Writer
	in  *bufio.Reader
}

var (
	_ hal.Display = (*Terminal)(nil)
	_ hal.Buttons = (*Terminal)(nil)
)

// New wraps out/in as the appliance's display and button source.
func New(out io.Writer, in io.Reader) *Terminal {
	return &Terminal{out: out, in: bufio.NewReader(in)}
}

// Clear prints a form-feed-style separator; a real terminal has no
// addressable clear without an escape-sequence library, which this
// simulator deliberately avoids pulling in for a cosmetic effect.
func (t *Terminal) Clear() error {
	fmt.Fprintln(t.out, strings.Repeat("-", 40))
	return nil
}

// ShowMessage prints a single line.
func (t *Terminal) ShowMessage(text string) error {
	fmt.Fprintln(t.out, text)
	return nil
}

// ShowLines prints every line, with a cursor marker on the row at
// scrollOffset.
func (t *Terminal) ShowLines(lines []render.Line, scrollOffset int) error {
	for i, l := range lines {
		marker := "  "
		if i == scrollOffset {
			marker = "> "
		}
		fmt.Fprint(t.out, marker, strings.Repeat("  ", int(l.Indent)))
		switch {
		case l.Key != nil && l.Value == "":
			fmt.Fprintf(t.out, "%s:\n", *l.Key)
		case l.Key != nil:
			fmt.Fprintf(t.out, "%s: %s\n", *l.Key, l.Value)
		default:
			fmt.Fprintln(t.out, l.Value)
		}
	}
	return nil
}

// WaitEvent blocks on one line of stdin and maps it to a ButtonEvent.
func (t *Terminal) WaitEvent() (hal.ButtonEvent, error) {
	for {
		line, err := t.in.ReadString('\n')
		if err != nil && line == "" {
			return 0, apperr.Wrap(apperr.UsbIo, err, "read button input")
		}
		switch strings.TrimSpace(strings.ToLower(line)) {
		case "w", "up", "k":
			return hal.Up, nil
		case "s", "down", "j":
			return hal.Down, nil
		case "", "c", "enter", "confirm":
			return hal.Confirm, nil
		case "q", "r", "reject", "esc":
			return hal.Reject, nil
		}
		// Unrecognized input: re-prompt rather than guessing.
	}
}
