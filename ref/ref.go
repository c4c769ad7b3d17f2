// Package ref provides the owning handle used for every reference-counted
// foreign object.
//
// A Ptr holds exactly one reference. Adopting a raw pointer (FromRaw)
// takes over a reference the runtime already counted for us; releasing
// the handle gives it back. Clone acquires an additional reference, Take
// transfers the held one out for APIs that consume their arguments.
//
// Handles are not safe for concurrent use. Like the objects they wrap,
// they are expected to live on one thread at a time; moving a handle
// between goroutines is fine as long as the hand-off is ordered.
package ref

import (
	"github.com/medialink/cef-bridge/capi"
	"github.com/medialink/cef-bridge/errors"
)

// Counted is satisfied by pointers to capi structs that lead with the
// reference-count header.
type Counted interface {
	comparable
	RefBase() *capi.BaseRefCounted
}

// Ptr owns one reference to a foreign object. The zero value and the nil
// pointer are both valid disarmed handles.
type Ptr[T Counted] struct {
	raw T
}

// FromRaw adopts a reference the caller already owns. A nil raw pointer
// is an error and produces no handle.
func FromRaw[T Counted](raw T) (*Ptr[T], error) {
	var zero T
	if raw == zero {
		return nil, errors.NullHandle("from_raw")
	}
	return &Ptr[T]{raw: raw}, nil
}

// Raw borrows the underlying pointer without touching the reference
// count. Returns the zero value once the handle was taken or released.
func (p *Ptr[T]) Raw() T {
	if p == nil {
		var zero T
		return zero
	}
	return p.raw
}

// Take transfers the owned reference out of the handle, for calls that
// consume their arguments. The handle is disarmed afterwards: Raw returns
// the zero value and Release is a no-op.
func (p *Ptr[T]) Take() T {
	if p == nil {
		var zero T
		return zero
	}
	raw := p.raw
	var zero T
	p.raw = zero
	return raw
}

// Clone acquires an additional reference and returns a new owning handle.
// Cloning a disarmed handle returns nil.
func (p *Ptr[T]) Clone() *Ptr[T] {
	if !p.Valid() {
		return nil
	}
	if base := p.raw.RefBase(); base.AddRef != nil {
		base.AddRef(base)
	}
	return &Ptr[T]{raw: p.raw}
}

// Release gives the owned reference back to the runtime. Calling it on a
// disarmed handle, or a second time, does nothing.
func (p *Ptr[T]) Release() {
	if !p.Valid() {
		return
	}
	raw := p.raw
	var zero T
	p.raw = zero
	if base := raw.RefBase(); base.Release != nil {
		base.Release(base)
	}
}

// Valid reports whether the handle still owns a reference.
func (p *Ptr[T]) Valid() bool {
	if p == nil {
		return false
	}
	var zero T
	return p.raw != zero
}
