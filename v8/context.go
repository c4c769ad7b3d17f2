package v8

import (
	"github.com/medialink/cef-bridge/capi"
	"github.com/medialink/cef-bridge/errors"
	"github.com/medialink/cef-bridge/ref"
)

// Context is an owning handle to a V8 context.
type Context struct {
	h *ref.Ptr[*capi.V8Context]
}

// ContextFromRaw adopts an owned raw context pointer.
func ContextFromRaw(raw *capi.V8Context) (Context, error) {
	h, err := ref.FromRaw(raw)
	if err != nil {
		return Context{}, err
	}
	return Context{h: h}, nil
}

// CurrentContext returns the context that is current on the calling
// thread. There is one only while script is executing or a context is
// entered.
func CurrentContext() (Context, error) {
	raw := capi.V8ContextGetCurrent()
	if raw == nil {
		return Context{}, errors.NoContext("current_context")
	}
	return ContextFromRaw(raw)
}

// Raw borrows the underlying pointer.
func (c Context) Raw() *capi.V8Context { return c.h.Raw() }

// Take transfers the owned reference out, disarming the handle.
func (c Context) Take() *capi.V8Context { return c.h.Take() }

// Clone acquires an additional reference.
func (c Context) Clone() Context { return Context{h: c.h.Clone()} }

// Release gives the owned reference back. Idempotent.
func (c Context) Release() { c.h.Release() }

// IsValid reports whether the underlying context can still be used.
// False for disarmed handles.
func (c Context) IsValid() bool {
	raw := c.h.Raw()
	return raw != nil && raw.IsValid != nil && raw.IsValid(raw) != 0
}

// IsSame reports whether both handles refer to the same context.
func (c Context) IsSame(other Context) bool {
	raw, otherRaw := c.h.Raw(), other.h.Raw()
	if raw == nil || otherRaw == nil {
		return false
	}
	if raw == otherRaw {
		return true
	}
	return raw.IsSame != nil && raw.IsSame(raw, otherRaw) != 0
}

// Enter makes the context current on the calling thread. Must be
// balanced by Exit when it returns true.
func (c Context) Enter() bool {
	raw := c.h.Raw()
	if raw == nil || raw.Enter == nil {
		return false
	}
	return raw.Enter(raw) != 0
}

// Exit leaves the context.
func (c Context) Exit() bool {
	raw := c.h.Raw()
	if raw == nil || raw.Exit == nil {
		return false
	}
	return raw.Exit(raw) != 0
}

// Eval executes a string of script source in the context. The script URL
// and start line show up in exception locations. A thrown exception is
// returned as *errors.ScriptError.
func (c Context) Eval(code, scriptURL string, startLine int) (Value, error) {
	raw := c.h.Raw()
	if raw == nil {
		return Value{}, errors.NullHandle("eval")
	}
	if raw.Eval == nil {
		return Value{}, errors.Execution("eval", "context does not support evaluation")
	}

	codeStr, err := newString(code)
	if err != nil {
		return Value{}, err
	}
	defer codeStr.Free()
	urlStr, err := newString(scriptURL)
	if err != nil {
		return Value{}, err
	}
	defer urlStr.Free()

	var retval *capi.V8Value
	var exc *capi.V8Exception
	ok := raw.Eval(raw, codeStr, urlStr, int32(startLine), &retval, &exc)
	if ok == 0 || retval == nil {
		if exc != nil {
			return Value{}, takeException(exc)
		}
		return Value{}, errors.Execution("eval", "evaluation produced no value")
	}
	return ValueFromRaw(retval)
}
