package sandbox

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/airgap/signer-appliance/internal/apperr"
)

// readOutputBlock validates and copies a length-prefixed output block out of
// guest memory. ptr is treated as a mere offset — never dereferenced without
// first validating the offset range — so a malicious or buggy guest cannot
// induce a host out-of-bounds read.
func readOutputBlock(mem []byte, ptr int32) ([]byte, error) {
	if ptr == 0 {
		return nil, apperr.New(apperr.NullPointer, "guest returned null result pointer")
	}
	offset := int(uint32(ptr))
	if offset+4 > len(mem) {
		return nil, apperr.New(apperr.OutputOverflow, "result offset leaves no room for length prefix")
	}
	n := int(binary.LittleEndian.Uint32(mem[offset : offset+4]))
	if offset+4+n > len(mem) {
		return nil, apperr.New(apperr.OutputOverflow, "declared output length exceeds guest memory")
	}
	out := make([]byte, n)
	copy(out, mem[offset+4:offset+4+n])
	return out, nil
}

// decodeUTF8 rejects guest output that is not valid UTF-8 — required for
// interpret's JSON result, since the host will hand it to a JSON decoder.
func decodeUTF8(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", apperr.New(apperr.InvalidUtf8, "guest output is not valid UTF-8")
	}
	return string(b), nil
}
