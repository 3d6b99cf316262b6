package simterm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/airgap/signer-appliance/internal/hal"
	"github.com/airgap/signer-appliance/internal/render"
)

func TestWaitEventMapsKeys(t *testing.T) {
	cases := map[string]hal.ButtonEvent{
		"w\n":       hal.Up,
		"up\n":      hal.Up,
		"s\n":       hal.Down,
		"down\n":    hal.Down,
		"\n":        hal.Confirm,
		"confirm\n": hal.Confirm,
		"q\n":       hal.Reject,
		"reject\n":  hal.Reject,
	}
	for input, want := range cases {
		term := New(&bytes.Buffer{}, strings.NewReader(input))
		got, err := term.WaitEvent()
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", input, err)
		}
		if got != want {
			t.Fatalf("input %q: got %v, want %v", input, got, want)
		}
	}
}

func TestWaitEventSkipsUnrecognizedInput(t *testing.T) {
	term := New(&bytes.Buffer{}, strings.NewReader("garbage\nup\n"))
	got, err := term.WaitEvent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != hal.Up {
		t.Fatalf("expected Up after skipping garbage, got %v", got)
	}
}

func TestShowMessage(t *testing.T) {
	var out bytes.Buffer
	term := New(&out, strings.NewReader(""))
	if err := term.ShowMessage("HELLO"); err != nil {
		t.Fatalf("show message: %v", err)
	}
	if out.String() != "HELLO\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestShowLinesMarksCursor(t *testing.T) {
	var out bytes.Buffer
	term := New(&out, strings.NewReader(""))
	key := "k"
	lines := []render.Line{
		{Indent: 0, Value: "first"},
		{Indent: 1, Key: &key, Value: "second"},
	}
	if err := term.ShowLines(lines, 1); err != nil {
		t.Fatalf("show lines: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "  first") || !strings.Contains(got, "> ") {
		t.Fatalf("unexpected rendering: %q", got)
	}
	if !strings.Contains(got, "k: second") {
		t.Fatalf("expected key:value rendering, got %q", got)
	}
}

func TestButtonEventString(t *testing.T) {
	if hal.Confirm.String() != "confirm" || hal.Reject.String() != "reject" {
		t.Fatalf("unexpected ButtonEvent stringer output")
	}
}
