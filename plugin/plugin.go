// Package plugin models the native API surface the bridge registers with
// its plugin host: a table of named entry points script can call, each
// wrapped in a panic guard so no failure crosses the host boundary.
package plugin

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/medialink/cef-bridge/capi"
	"github.com/medialink/cef-bridge/logging"
	"github.com/medialink/cef-bridge/v8"
)

// ProcessType identifies which host process is loading the plugin. The
// values mirror the host's own enum; only the renderer process carries a
// V8 runtime, so APIs register there and nowhere else.
type ProcessType int32

const (
	ProcessUndetected ProcessType = 0x0
	ProcessMain       ProcessType = 0x0001
	ProcessRenderer   ProcessType = 0x10
	ProcessGPU        ProcessType = 0x100
	ProcessUtility    ProcessType = 0x1000
)

// ArgType declares how the host marshals one argument of a native API.
type ArgType int32

const (
	ArgInt ArgType = iota
	ArgBool
	ArgDouble
	ArgString
	ArgV8Value
)

// Arg is one marshaled argument. Type selects the populated field; a
// V8Value arg carries a raw pointer with one reference the API function
// owns.
type Arg struct {
	Type   ArgType
	Int    int64
	Bool   bool
	Double float64
	Str    string
	Value  *capi.V8Value
}

// Func is the body of a native API. The returned string is handed back
// to script; the empty string models a null result.
type Func func(args []Arg) string

// API is one entry in the registration table.
type API struct {
	Name string
	Args []ArgType
	Fn   Func
}

// SafeCall runs fn behind a panic guard. A recovered panic is logged and
// yields the zero result; nothing unwinds into the host.
func SafeCall(name string, fn func() string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logger().Error("native API call panicked",
				zap.String("api", name),
				zap.Any("panic", r),
				zap.Stack("stack"))
			result = ""
		}
	}()
	return fn()
}

// Invoke adapts raw script values to the API's declared argument types
// and calls the body behind SafeCall. Every raw value carries one
// reference: V8Value args pass it on to the body, all other types are
// read and released here. Missing arguments fail the call; extra ones
// are released and dropped.
func (a API) Invoke(raws []*capi.V8Value) string {
	return SafeCall(a.Name, func() string {
		if len(raws) < len(a.Args) {
			releaseRaws(raws)
			logging.Logger().Error("native API called with too few arguments",
				zap.String("api", a.Name),
				zap.Int("want", len(a.Args)),
				zap.Int("got", len(raws)))
			return ""
		}

		args := make([]Arg, len(a.Args))
		for i, at := range a.Args {
			args[i] = convertArg(at, raws[i])
		}
		releaseRaws(raws[len(a.Args):])

		return a.Fn(args)
	})
}

// convertArg consumes one raw value reference, except for V8Value args,
// whose reference travels on inside the Arg.
func convertArg(at ArgType, raw *capi.V8Value) Arg {
	if at == ArgV8Value {
		return Arg{Type: at, Value: raw}
	}

	var s string
	if raw != nil {
		if val, err := v8.ValueFromRaw(raw); err == nil {
			s, _ = val.StringValue()
			val.Release()
		}
	}

	arg := Arg{Type: at, Str: s}
	switch at {
	case ArgInt:
		arg.Int, _ = strconv.ParseInt(s, 10, 64)
	case ArgBool:
		arg.Bool, _ = strconv.ParseBool(s)
	case ArgDouble:
		arg.Double, _ = strconv.ParseFloat(s, 64)
	}
	return arg
}

func releaseRaws(raws []*capi.V8Value) {
	for _, raw := range raws {
		if raw != nil && raw.Base.Release != nil {
			raw.Base.Release(&raw.Base)
		}
	}
}
