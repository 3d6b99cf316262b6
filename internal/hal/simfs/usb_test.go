package simfs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadContentsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	must(os.WriteFile(filepath.Join(dir, payloadName), []byte("payload"), 0o644))
	must(os.WriteFile(filepath.Join(dir, interpreterName), []byte("wasm"), 0o644))
	must(os.WriteFile(filepath.Join(dir, specName), []byte("cbor"), 0o644))

	u := New(dir)
	if !u.filesPresent() {
		t.Fatalf("expected all three files to be present")
	}

	contents, err := u.ReadContents()
	if err != nil {
		t.Fatalf("read contents: %v", err)
	}
	if string(contents.Payload) != "payload" || string(contents.InterpreterWasm) != "wasm" || string(contents.SigningSpecCbor) != "cbor" {
		t.Fatalf("unexpected contents: %+v", contents)
	}
}

func TestFilesPresentRequiresAllThree(t *testing.T) {
	dir := t.TempDir()
	u := New(dir)
	if u.filesPresent() {
		t.Fatalf("expected no files present in empty dir")
	}
	if err := os.WriteFile(filepath.Join(dir, payloadName), []byte("p"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if u.filesPresent() {
		t.Fatalf("expected filesPresent false with only one of three files")
	}
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	u := New(dir)
	if err := u.WriteOutput([]byte("signed bytes")); err != nil {
		t.Fatalf("write output: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, outputName))
	if err != nil {
		t.Fatalf("read back output: %v", err)
	}
	if string(data) != "signed bytes" {
		t.Fatalf("unexpected output contents: %q", data)
	}
}

func TestReadFileMissingIsNotError(t *testing.T) {
	dir := t.TempDir()
	u := New(dir)
	data, ok, err := u.ReadFile("seed.bin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || data != nil {
		t.Fatalf("expected missing file to report ok=false, got ok=%v data=%v", ok, data)
	}
}

func TestWriteFileThenReadFile(t *testing.T) {
	dir := t.TempDir()
	u := New(dir)
	if err := u.WriteFile("pubkey.bin", []byte("pub")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	data, ok, err := u.ReadFile("pubkey.bin")
	if err != nil || !ok {
		t.Fatalf("read file: ok=%v err=%v", ok, err)
	}
	if string(data) != "pub" {
		t.Fatalf("unexpected data: %q", data)
	}
}

func TestMountReadonlyAndUnmountAreNoOps(t *testing.T) {
	u := New(t.TempDir())
	if err := u.MountReadonly(); err != nil {
		t.Fatalf("mount readonly: %v", err)
	}
	if err := u.Unmount(); err != nil {
		t.Fatalf("unmount: %v", err)
	}
}
