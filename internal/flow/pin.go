package flow

import (
	"strings"

	"github.com/airgap/signer-appliance/internal/hal"
	"github.com/airgap/signer-appliance/internal/render"
)

// PinLength is the fixed PIN length the digit-by-digit entry UI supports.
const PinLength = 4

// enterPin drives the digit-by-digit PIN entry screen: Up/Down cycles the
// current digit 0-9, Confirm advances to the next position (returning the
// completed PIN once all positions are filled), Reject steps back or, at
// the first position, cancels entry entirely (ok=false).
func enterPin(disp hal.Display, buttons hal.Buttons, prompt string) (pin []byte, ok bool, err error) {
	var digits [PinLength]byte
	pos := 0

	for {
		if err := disp.ShowLines(pinLines(prompt, digits, pos), 0); err != nil {
			return nil, false, err
		}

		event, err := buttons.WaitEvent()
		if err != nil {
			return nil, false, err
		}

		switch event {
		case hal.Up:
			digits[pos] = (digits[pos] + 1) % 10
		case hal.Down:
			digits[pos] = (digits[pos] + 9) % 10
		case hal.Confirm:
			pos++
			if pos >= PinLength {
				out := make([]byte, PinLength)
				for i, d := range digits {
					out[i] = '0' + d
				}
				return out, true, nil
			}
		case hal.Reject:
			if pos == 0 {
				return nil, false, nil
			}
			pos--
		}
	}
}

func pinLines(prompt string, digits [PinLength]byte, pos int) []render.Line {
	var display strings.Builder
	for i, d := range digits {
		if i > 0 {
			display.WriteByte(' ')
		}
		switch {
		case i < pos:
			display.WriteByte('*')
		case i == pos:
			display.WriteByte('0' + d)
		default:
			display.WriteByte('_')
		}
	}

	return []render.Line{
		textLine(prompt),
		textLine(""),
		textLine("  [ " + display.String() + " ]"),
		textLine(""),
		textLine("Up/Down=digit  Confirm=next  Reject=back"),
	}
}

func textLine(value string) render.Line {
	return render.Line{Value: value}
}
