package simcef

import (
	"sync"
	"unicode/utf16"

	lua "github.com/yuin/gopher-lua"

	"github.com/medialink/cef-bridge/capi"
)

type valueKind int

const (
	kindUndefined valueKind = iota
	kindString
	kindFunction
)

// value is one simulated script value: undefined, a UTF-16 string, or a
// callable Lua function bound to its owning context.
type value struct {
	rt   *Runtime
	obj  object
	raw  *capi.V8Value
	kind valueKind

	units []uint16       // kindString
	fn    *lua.LFunction // kindFunction
	ctx   *Context       // kindFunction; holds one context reference

	mu      sync.Mutex
	pending *capi.V8Exception // owned until cleared
}

func (rt *Runtime) newValue(kind valueKind) *value {
	v := &value{rt: rt, kind: kind}
	v.obj.destroy = v.reclaim
	v.raw = &capi.V8Value{Base: rt.newBase(&v.obj)}
	v.raw.IsValid = func(*capi.V8Value) int32 {
		if v.obj.refs.Load() > 0 {
			return 1
		}
		return 0
	}
	v.raw.IsString = func(*capi.V8Value) int32 {
		if v.kind == kindString {
			return 1
		}
		return 0
	}
	v.raw.IsFunction = func(*capi.V8Value) int32 {
		if v.kind == kindFunction {
			return 1
		}
		return 0
	}
	v.raw.GetStringValue = func(*capi.V8Value) *capi.String {
		return rt.newUserFreeUnits(v.units)
	}
	v.raw.ExecuteFunction = v.executeFunction
	v.raw.HasException = func(*capi.V8Value) int32 {
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.pending != nil {
			return 1
		}
		return 0
	}
	v.raw.GetException = func(*capi.V8Value) *capi.V8Exception {
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.pending == nil {
			return nil
		}
		v.pending.Base.AddRef(&v.pending.Base)
		return v.pending
	}
	v.raw.ClearException = func(*capi.V8Value) int32 {
		v.clearPending()
		return 1
	}
	rt.registerValue(v)
	return v
}

func (v *value) reclaim() {
	v.rt.forgetValue(v)
	v.clearPending()
	if v.ctx != nil {
		v.ctx.raw.Base.Release(&v.ctx.raw.Base)
		v.ctx = nil
	}
}

func (v *value) clearPending() {
	v.mu.Lock()
	pending := v.pending
	v.pending = nil
	v.mu.Unlock()
	if pending != nil {
		pending.Base.Release(&pending.Base)
	}
}

func (v *value) setPending(err error, script string) {
	exc := v.rt.newException(err, script).raw
	v.mu.Lock()
	previous := v.pending
	v.pending = exc
	v.mu.Unlock()
	if previous != nil {
		previous.Base.Release(&previous.Base)
	}
}

// newStringValue creates an owned string value over a copy of units.
func (rt *Runtime) newStringValue(units []uint16) *value {
	v := rt.newValue(kindString)
	v.units = make([]uint16, len(units))
	copy(v.units, units)
	return v
}

// newFunctionValue creates an owned function value. The value keeps its
// context alive for as long as it lives.
func (rt *Runtime) newFunctionValue(ctx *Context, fn *lua.LFunction) *value {
	v := rt.newValue(kindFunction)
	v.fn = fn
	v.ctx = ctx
	ctx.raw.Base.AddRef(&ctx.raw.Base)
	return v
}

// createStringValue implements the entry point. The input string is
// borrowed; the value copies it.
func (rt *Runtime) createStringValue(s *capi.String) *capi.V8Value {
	if s == nil {
		return nil
	}
	return rt.newStringValue(s.Data).raw
}

// wrapLua turns a Lua result into an owned simulated value. Strings,
// numbers and booleans become string values; functions stay callable;
// nil becomes undefined, as does anything else the bridge has no shape
// for.
func (rt *Runtime) wrapLua(ctx *Context, lv lua.LValue) *value {
	switch x := lv.(type) {
	case *lua.LNilType:
		return rt.newValue(kindUndefined)
	case lua.LString:
		return rt.newStringValue(utf16.Encode([]rune(string(x))))
	case lua.LNumber, lua.LBool:
		return rt.newStringValue(utf16.Encode([]rune(lv.String())))
	case *lua.LFunction:
		return rt.newFunctionValue(ctx, x)
	default:
		return rt.newValue(kindUndefined)
	}
}

// luaArg converts one call argument to a Lua value. Unknown raw pointers
// (test doubles not created by this runtime) fall back to their string
// data.
func (rt *Runtime) luaArg(raw *capi.V8Value) lua.LValue {
	if raw == nil {
		return lua.LNil
	}
	if v := rt.lookupValue(raw); v != nil {
		switch v.kind {
		case kindString:
			return lua.LString(string(utf16.Decode(v.units)))
		case kindFunction:
			return v.fn
		default:
			return lua.LNil
		}
	}
	if raw.GetStringValue != nil {
		s := raw.GetStringValue(raw)
		defer s.Free()
		return lua.LString(decodeString(s))
	}
	return lua.LNil
}

// executeFunction implements the entry point: run the Lua function with
// the given arguments. Ownership of every argument transfers here, so
// each is released after conversion. A Lua error becomes the value's
// pending exception and a nil return.
func (v *value) executeFunction(_ *capi.V8Value, this *capi.V8Value, args []*capi.V8Value) *capi.V8Value {
	largs := make([]lua.LValue, 0, len(args))
	for _, arg := range args {
		largs = append(largs, v.rt.luaArg(arg))
		if arg != nil {
			arg.Base.Release(&arg.Base)
		}
	}
	_ = this // Lua has no receiver; borrowed, nothing to release

	if v.kind != kindFunction {
		v.setPending(&notCallableError{}, "")
		return nil
	}

	ls := v.ctx.ls
	if err := ls.CallByParam(lua.P{Fn: v.fn, NRet: 1, Protect: true}, largs...); err != nil {
		v.setPending(err, v.ctx.name)
		return nil
	}
	ret := ls.Get(-1)
	ls.Pop(1)
	return v.rt.wrapLua(v.ctx, ret).raw
}

type notCallableError struct{}

func (*notCallableError) Error() string { return "value is not a function" }
