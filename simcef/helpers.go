package simcef

import (
	"fmt"
	"strings"
	"unicode/utf16"

	lua "github.com/yuin/gopher-lua"

	"github.com/medialink/cef-bridge/capi"
	"github.com/medialink/cef-bridge/errors"
)

// Bind exposes a native function to script under name; dotted names
// land in nested tables, so "medialink.dispatch" becomes callable Lua.
// Script arguments arrive as owned raw values, one reference each, which
// the function must release or pass on. A non-empty result is returned
// to script as a string.
//
// Bind touches the Lua state directly; call it before script runs, or
// from the renderer thread via RunInContext.
func (c *Context) Bind(name string, fn func(args []*capi.V8Value) string) {
	wrapper := c.ls.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		raws := make([]*capi.V8Value, 0, n)
		for i := 1; i <= n; i++ {
			raws = append(raws, c.rt.wrapLua(c, L.Get(i)).raw)
		}
		result := fn(raws)
		if result == "" {
			return 0
		}
		L.Push(lua.LString(result))
		return 1
	})

	parts := strings.Split(name, ".")
	if len(parts) == 1 {
		c.ls.SetGlobal(name, wrapper)
		return
	}

	container := c.ls.GetGlobal(parts[0])
	tbl, ok := container.(*lua.LTable)
	if !ok {
		tbl = c.ls.NewTable()
		c.ls.SetGlobal(parts[0], tbl)
	}
	for _, part := range parts[1 : len(parts)-1] {
		next, ok := c.ls.GetField(tbl, part).(*lua.LTable)
		if !ok {
			next = c.ls.NewTable()
			c.ls.SetField(tbl, part, next)
		}
		tbl = next
	}
	c.ls.SetField(tbl, parts[len(parts)-1], wrapper)
}

// RunInContext posts a task that runs fn on the renderer thread with the
// context entered, and waits for it to finish.
func (rt *Runtime) RunInContext(c *Context, fn func()) error {
	done := make(chan struct{})

	var o object
	t := &capi.Task{Base: rt.newBase(&o)}
	t.Execute = func(*capi.Task) {
		defer close(done)
		entered := c.raw.Enter(c.raw) != 0
		defer func() {
			if entered {
				c.raw.Exit(c.raw)
			}
		}()
		fn()
	}

	if rt.renderer.runner.PostTask(rt.renderer.runner, t) == 0 {
		t.Base.Release(&t.Base)
		return errors.PostFailed("run_in_context", "renderer thread is stopped")
	}
	<-done
	return nil
}

// Eval runs source in the context on the renderer thread and returns the
// result's string form. Script errors come back as *errors.ScriptError.
func (rt *Runtime) Eval(c *Context, source string) (string, error) {
	var out string
	var evalErr error

	err := rt.RunInContext(c, func() {
		code := &capi.String{Data: utf16.Encode([]rune(source))}
		var retval *capi.V8Value
		var exc *capi.V8Exception

		if c.raw.Eval(c.raw, code, nil, 0, &retval, &exc) == 0 {
			if exc != nil {
				evalErr = &errors.ScriptError{
					Message:            decodeAndFree(rt, exc.GetMessage(exc)),
					ScriptResourceName: decodeAndFree(rt, exc.GetScriptResourceName(exc)),
					Line:               exc.GetLineNumber(exc),
					StartColumn:        exc.GetStartColumn(exc),
				}
				exc.Base.Release(&exc.Base)
				return
			}
			evalErr = errors.Execution("eval", "evaluation produced no value")
			return
		}
		out = decodeAndFree(rt, retval.GetStringValue(retval))
		retval.Base.Release(&retval.Base)
	})
	if err != nil {
		return "", err
	}
	return out, evalErr
}

// MustEval is Eval for tests and demos: any failure panics.
func (rt *Runtime) MustEval(c *Context, source string) string {
	out, err := rt.Eval(c, source)
	if err != nil {
		panic(fmt.Sprintf("simcef eval: %v", err))
	}
	return out
}

func decodeAndFree(rt *Runtime, s *capi.String) string {
	out := decodeString(s)
	rt.freeUserFree(s)
	return out
}

// Barrier returns once every task posted before the call has executed.
// Useful after fire-and-forget dispatches.
func (rt *Runtime) Barrier() {
	done := make(chan struct{})
	var o object
	t := &capi.Task{Base: rt.newBase(&o)}
	t.Execute = func(*capi.Task) {
		close(done)
	}
	if rt.renderer.runner.PostTask(rt.renderer.runner, t) == 0 {
		t.Base.Release(&t.Base)
		return
	}
	<-done
}
