package v8

import (
	"github.com/medialink/cef-bridge/capi"
	"github.com/medialink/cef-bridge/errors"
	"github.com/medialink/cef-bridge/ref"
)

// Value is an owning handle to a V8 value.
type Value struct {
	h *ref.Ptr[*capi.V8Value]
}

// ValueFromRaw adopts an owned raw value pointer.
func ValueFromRaw(raw *capi.V8Value) (Value, error) {
	h, err := ref.FromRaw(raw)
	if err != nil {
		return Value{}, err
	}
	return Value{h: h}, nil
}

// NewString creates a string value from a Go string. The conversion goes
// through UTF-16 code units; anything Go can hold round-trips, including
// surrogate pairs.
func NewString(s string) (Value, error) {
	cs, err := newString(s)
	if err != nil {
		return Value{}, err
	}
	defer cs.Free()

	raw := capi.V8ValueCreateString(cs)
	if raw == nil {
		return Value{}, errors.ValueCreation("new_string", "string")
	}
	return ValueFromRaw(raw)
}

// Raw borrows the underlying pointer.
func (v Value) Raw() *capi.V8Value { return v.h.Raw() }

// Take transfers the owned reference out, disarming the handle.
func (v Value) Take() *capi.V8Value { return v.h.Take() }

// Clone acquires an additional reference.
func (v Value) Clone() Value { return Value{h: v.h.Clone()} }

// Release gives the owned reference back. Idempotent.
func (v Value) Release() { v.h.Release() }

// IsFunction reports whether the value is callable.
func (v Value) IsFunction() bool {
	raw := v.h.Raw()
	return raw != nil && raw.IsFunction != nil && raw.IsFunction(raw) != 0
}

// IsString reports whether the value holds string data.
func (v Value) IsString() bool {
	raw := v.h.Raw()
	return raw != nil && raw.IsString != nil && raw.IsString(raw) != 0
}

// StringValue reads the value's string representation.
func (v Value) StringValue() (string, error) {
	raw := v.h.Raw()
	if raw == nil {
		return "", errors.NullHandle("string_value")
	}
	if raw.GetStringValue == nil {
		return "", nil
	}
	return StringFromUserFree(raw.GetStringValue(raw)), nil
}

// ExecuteFunction calls the value as a function on the renderer thread.
//
// The this argument is borrowed; nil selects the script-global receiver.
// The args handles are consumed no matter what: on the success path the
// callee releases them, and every failure path releases them here. The
// caller must not use them afterwards.
//
// A null return with an exception pending surfaces as *errors.ScriptError
// and clears the pending state. A null return without one reports
// KindExecution.
func (v Value) ExecuteFunction(this *Value, args []Value) (Value, error) {
	self := v.h.Raw()
	if self == nil {
		releaseAll(args)
		return Value{}, errors.NullHandle("execute_function")
	}
	if self.ExecuteFunction == nil {
		releaseAll(args)
		return Value{}, errors.Execution("execute_function", "value is not callable")
	}

	var thisRaw *capi.V8Value
	if this != nil {
		thisRaw = this.Raw()
	}

	rawArgs := make([]*capi.V8Value, len(args))
	for i := range args {
		rawArgs[i] = args[i].Take()
	}

	ret := self.ExecuteFunction(self, thisRaw, rawArgs)
	if ret == nil {
		if self.HasException != nil && self.HasException(self) != 0 {
			var exc *capi.V8Exception
			if self.GetException != nil {
				exc = self.GetException(self)
			}
			err := takeException(exc)
			if self.ClearException != nil {
				self.ClearException(self)
			}
			return Value{}, err
		}
		return Value{}, errors.Execution("execute_function", "function returned no value")
	}
	return ValueFromRaw(ret)
}

func releaseAll(args []Value) {
	for i := range args {
		args[i].Release()
	}
}
