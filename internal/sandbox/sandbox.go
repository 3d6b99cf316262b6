// Package sandbox runs the untrusted interpreter module across the trust
// boundary described in spec §4.5: zero host imports, a fuel-like execution
// budget, a linear-memory ceiling, and a fresh store per call so no guest
// state survives between invocations.
package sandbox

import (
	"context"
	"fmt"

	"github.com/wasmerio/wasmer-go/wasmer"

	"github.com/airgap/signer-appliance/internal/apperr"
)

// Sandbox owns one compiler engine shared by every loaded module.
type Sandbox struct {
	engine *wasmer.Engine
}

// New builds a Sandbox with a fresh compiler engine.
func New() *Sandbox {
	return &Sandbox{engine: wasmer.NewEngine()}
}

// Module is a compiled interpreter ready to be invoked. Compilation happens
// once; every Interpret/Assemble call gets its own store and instance.
type Module struct {
	engine *wasmer.Engine
	module *wasmer.Module
}

// Load compiles wasmBytes against the sandbox's engine.
func (s *Sandbox) Load(wasmBytes []byte) (*Module, error) {
	store := wasmer.NewStore(s.engine)
	mod, err := wasmer.NewModule(store, wasmBytes)
	if err != nil {
		return nil, apperr.Wrap(apperr.GuestTrap, err, "compile interpreter module")
	}
	return &Module{engine: s.engine, module: mod}, nil
}

// instantiation is the state of one fresh, zero-import guest instance.
type instantiation struct {
	store    *wasmer.Store
	instance *wasmer.Instance
	memory   *wasmer.Memory
}

// instantiate creates a brand new store and instance with zero host
// imports, so the guest has no call path back into the host.
func (m *Module) instantiate() (*instantiation, error) {
	store := wasmer.NewStore(m.engine)
	// A wasmer module is bound to the store it was compiled in, so the
	// compiled artifact is re-bound to this call's store before instantiation.
	compiled, err := m.module.Serialize()
	if err != nil {
		return nil, apperr.Wrap(apperr.SandboxInternal, err, "serialize compiled module")
	}
	mod, err := wasmer.DeserializeModule(store, compiled)
	if err != nil {
		return nil, apperr.Wrap(apperr.SandboxInternal, err, "bind module to fresh store")
	}
	imports := wasmer.NewImportObject()

	instance, err := wasmer.NewInstance(mod, imports)
	if err != nil {
		return nil, apperr.Wrap(apperr.GuestTrap, err, "instantiate interpreter module")
	}

	memory, err := instance.Exports.GetMemory("memory")
	if err != nil {
		return nil, apperr.Wrap(apperr.MissingExport, err, "module does not export memory")
	}

	return &instantiation{store: store, instance: instance, memory: memory}, nil
}

// allocAndCopy calls the guest's alloc(size) and copies data into the
// returned region, rejecting growth past MaxMemoryBytes before the copy.
func (in *instantiation) allocAndCopy(data []byte) (int32, error) {
	allocFn, err := in.instance.Exports.GetFunction("alloc")
	if err != nil {
		return 0, apperr.Wrap(apperr.MissingExport, err, "module does not export alloc")
	}

	res, err := allocFn(int32(len(data)))
	if err != nil {
		return 0, apperr.Wrap(apperr.GuestTrap, err, "guest trapped in alloc")
	}
	ptr, ok := res.(int32)
	if !ok {
		return 0, apperr.New(apperr.SandboxInternal, "alloc did not return an i32")
	}
	if ptr == 0 {
		return 0, apperr.New(apperr.NullPointer, "alloc returned null")
	}

	mem := in.memory.Data()
	if int(uint32(ptr))+len(data) > MaxMemoryBytes {
		return 0, apperr.New(apperr.MemoryLimit, "allocation would exceed memory cap")
	}
	if int(uint32(ptr))+len(data) > len(mem) {
		return 0, apperr.New(apperr.SandboxInternal, "alloc returned a pointer outside guest memory")
	}
	copy(mem[ptr:], data)
	return ptr, nil
}

// checkMemoryBound rejects a guest whose linear memory has grown past
// MaxMemoryBytes since instantiation, e.g. via an internal memory.grow the
// host never saw through allocAndCopy. wasmer-go's C-API bindings expose no
// store-level memory limiter the way wasmtime's StoreLimitsBuilder does, so
// this is a post-call check rather than a hard cap enforced during the
// call; a guest that grows memory and then loops without returning is
// still only bounded by FuelDeadline, not by this check. See DESIGN.md.
func checkMemoryBound(mem *wasmer.Memory) error {
	if len(mem.Data()) > MaxMemoryBytes {
		return apperr.New(apperr.MemoryLimit, "guest memory grew past the configured cap")
	}
	return nil
}

// withFuelBudget runs fn to completion or returns FuelExhausted once
// FuelDeadline elapses. See limits.go for why this is time-based rather
// than instruction-counted.
func withFuelBudget[T any](fn func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), FuelDeadline)
	defer cancel()

	select {
	case r := <-ch:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, apperr.New(apperr.FuelExhausted, "guest exceeded fuel budget")
	}
}

// Interpret calls interpret(ptr, len) -> ptr on the guest and returns its
// UTF-8 JSON output. A fresh store backs every call.
func (m *Module) Interpret(payload []byte) (string, error) {
	return withFuelBudget(func() (string, error) {
		in, err := m.instantiate()
		if err != nil {
			return "", err
		}

		ptr, err := in.allocAndCopy(payload)
		if err != nil {
			return "", err
		}

		interpretFn, err := in.instance.Exports.GetFunction("interpret")
		if err != nil {
			return "", apperr.Wrap(apperr.MissingExport, err, "module does not export interpret")
		}

		res, err := interpretFn(ptr, int32(len(payload)))
		if err != nil {
			return "", apperr.Wrap(apperr.GuestTrap, err, "guest trapped in interpret")
		}
		if err := checkMemoryBound(in.memory); err != nil {
			return "", err
		}
		resultPtr, ok := res.(int32)
		if !ok {
			return "", apperr.New(apperr.SandboxInternal, "interpret did not return an i32")
		}

		out, err := readOutputBlock(in.memory.Data(), resultPtr)
		if err != nil {
			return "", err
		}
		return decodeUTF8(out)
	})
}

// Assemble calls assemble(payload_ptr, payload_len, sig_ptr, sig_len) -> ptr
// on the guest and returns its raw output bytes. The payload must be
// re-copied into this fresh store; nothing from a prior Interpret call is
// visible here.
func (m *Module) Assemble(payload, signature []byte) ([]byte, error) {
	return withFuelBudget(func() ([]byte, error) {
		in, err := m.instantiate()
		if err != nil {
			return nil, err
		}

		payloadPtr, err := in.allocAndCopy(payload)
		if err != nil {
			return nil, err
		}
		sigPtr, err := in.allocAndCopy(signature)
		if err != nil {
			return nil, err
		}

		assembleFn, err := in.instance.Exports.GetFunction("assemble")
		if err != nil {
			return nil, apperr.Wrap(apperr.MissingExport, err, "module does not export assemble")
		}

		res, err := assembleFn(payloadPtr, int32(len(payload)), sigPtr, int32(len(signature)))
		if err != nil {
			return nil, apperr.Wrap(apperr.GuestTrap, err, "guest trapped in assemble")
		}
		if err := checkMemoryBound(in.memory); err != nil {
			return nil, err
		}
		resultPtr, ok := res.(int32)
		if !ok {
			return nil, apperr.New(apperr.SandboxInternal, "assemble did not return an i32")
		}

		return readOutputBlock(in.memory.Data(), resultPtr)
	})
}

// RequireExports checks that a module satisfies the guest export contract
// before the guest runs, per spec §4.5: a missing export is a hard failure
// surfaced up front rather than discovered mid-call.
func (m *Module) RequireExports(needAssemble bool) error {
	required := map[string]bool{"memory": true, "alloc": true, "interpret": true}
	if needAssemble {
		required["assemble"] = true
	}
	for _, export := range m.module.Exports() {
		delete(required, export.Name())
	}
	if len(required) > 0 {
		missing := make([]string, 0, len(required))
		for name := range required {
			missing = append(missing, name)
		}
		return apperr.New(apperr.MissingExport, fmt.Sprintf("module missing exports: %v", missing))
	}
	return nil
}
