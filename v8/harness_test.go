package v8

import (
	"sync/atomic"
	"testing"
	"unicode/utf16"

	"github.com/medialink/cef-bridge/capi"
)

// counts tracks the reference traffic of one fake object that starts, as
// the runtime hands objects over, with a single live reference.
type counts struct {
	refs     atomic.Int64
	adds     atomic.Int64
	releases atomic.Int64
	destroys atomic.Int64
}

func (c *counts) base() capi.BaseRefCounted {
	c.refs.Store(1)
	return capi.BaseRefCounted{
		AddRef: func(*capi.BaseRefCounted) {
			c.adds.Add(1)
			c.refs.Add(1)
		},
		Release: func(*capi.BaseRefCounted) int32 {
			c.releases.Add(1)
			if c.refs.Add(-1) == 0 {
				c.destroys.Add(1)
				return 1
			}
			return 0
		},
		HasOneRef: func(*capi.BaseRefCounted) int32 {
			if c.refs.Load() == 1 {
				return 1
			}
			return 0
		},
		HasAtLeastOneRef: func(*capi.BaseRefCounted) int32 {
			if c.refs.Load() > 0 {
				return 1
			}
			return 0
		},
	}
}

func newCountedValue() (*capi.V8Value, *counts) {
	c := &counts{}
	v := &capi.V8Value{Base: c.base()}
	return v, c
}

func newCountedContext() (*capi.V8Context, *counts) {
	c := &counts{}
	ctx := &capi.V8Context{Base: c.base()}
	return ctx, c
}

func newCountedException(msg, script string, line, col int32) (*capi.V8Exception, *counts) {
	c := &counts{}
	e := &capi.V8Exception{Base: c.base()}
	e.GetMessage = func(*capi.V8Exception) *capi.String {
		return userFreeString(msg)
	}
	e.GetScriptResourceName = func(*capi.V8Exception) *capi.String {
		return userFreeString(script)
	}
	e.GetSourceLine = func(*capi.V8Exception) *capi.String {
		return userFreeString("")
	}
	e.GetLineNumber = func(*capi.V8Exception) int32 { return line }
	e.GetStartColumn = func(*capi.V8Exception) int32 { return col }
	return e, c
}

func userFreeString(s string) *capi.String {
	return &capi.String{Data: utf16.Encode([]rune(s))}
}

// stringEnv is a minimal entry point table good enough for string value
// creation and extraction. It counts string storage lifecycles so tests
// can assert nothing leaks.
type stringEnv struct {
	localFrees    atomic.Int64
	userFrees     atomic.Int64
	valueDestroys atomic.Int64
	failSet       bool
	failCreate    bool
}

func installStringEnv(t *testing.T) *stringEnv {
	t.Helper()
	env := &stringEnv{}
	capi.Install(capi.Library{
		StringUTF16Set: func(src []uint16, dst *capi.String, copyMode int32) int32 {
			if env.failSet {
				return 0
			}
			data := make([]uint16, len(src))
			copy(data, src)
			dst.Data = data
			dst.Dtor = func(s *capi.String) {
				env.localFrees.Add(1)
			}
			return 1
		},
		V8ValueCreateString: func(s *capi.String) *capi.V8Value {
			if env.failCreate {
				return nil
			}
			data := make([]uint16, len(s.Data))
			copy(data, s.Data)
			c := &counts{}
			v := &capi.V8Value{Base: c.base()}
			v.IsString = func(*capi.V8Value) int32 { return 1 }
			v.GetStringValue = func(*capi.V8Value) *capi.String {
				out := make([]uint16, len(data))
				copy(out, data)
				return &capi.String{Data: out}
			}
			origRelease := v.Base.Release
			v.Base.Release = func(b *capi.BaseRefCounted) int32 {
				if origRelease(b) != 0 {
					env.valueDestroys.Add(1)
					return 1
				}
				return 0
			}
			return v
		},
		StringUserFreeFree: func(s *capi.String) {
			env.userFrees.Add(1)
			s.Free()
		},
	})
	t.Cleanup(capi.Reset)
	return env
}
