package sandbox

import "time"

// FuelLimit is the abstract operation budget of a single guest invocation,
// per spec. wasmer-go's C-API bindings expose no per-instruction fuel
// counter the way wasmtime's embedder API does (the reference prototype
// this was ported from targets wasmtime and calls store.set_fuel directly),
// so fuel is approximated on this stack as a wall-clock deadline. See
// DESIGN.md for the tradeoff.
const FuelLimit = 10_000_000

// FuelDeadline is the wall-clock proxy for FuelLimit: generous enough for a
// well-behaved interpreter, short enough to bound a runaway guest.
const FuelDeadline = 2 * time.Second

// MaxMemoryBytes is the linear-memory ceiling enforced before any
// host-driven allocation is allowed to succeed, and re-checked against the
// guest's actual memory size once a call returns. wasmer-go exposes no
// store-level memory limiter to stop a guest's own memory.grow mid-call the
// way wasmtime's StoreLimitsBuilder does, so a guest that grows past this
// cap and then loops is bounded only by FuelDeadline until it next returns.
const MaxMemoryBytes = 16 * 1024 * 1024

// MaxStackBytes documents the call-stack ceiling from spec; wasmer-go does
// not expose a knob to configure the compiled guest's stack size, so this
// constant is carried for documentation and future-engine-swap purposes
// only and is not independently enforced on this stack.
const MaxStackBytes = 512 * 1024
