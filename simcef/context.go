package simcef

import (
	"regexp"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/medialink/cef-bridge/capi"
)

// Context is one simulated scripting context backed by its own Lua
// state. The creator owns one reference; Release gives it back. The Lua
// state may only run on the renderer thread.
type Context struct {
	rt   *Runtime
	obj  object
	raw  *capi.V8Context
	name string
	ls   *lua.LState
}

// NewContext creates a context. The name shows up as the script resource
// of exceptions with no better origin.
func (rt *Runtime) NewContext(name string) *Context {
	c := &Context{rt: rt, name: name, ls: lua.NewState()}
	c.obj.destroy = func() {
		c.ls.Close()
	}

	c.raw = &capi.V8Context{Base: rt.newBase(&c.obj)}
	c.raw.IsValid = func(*capi.V8Context) int32 {
		if c.obj.refs.Load() > 0 {
			return 1
		}
		return 0
	}
	c.raw.IsSame = func(_, that *capi.V8Context) int32 {
		if that == c.raw {
			return 1
		}
		return 0
	}
	c.raw.Enter = func(*capi.V8Context) int32 {
		rt.pushContext(c)
		return 1
	}
	c.raw.Exit = func(*capi.V8Context) int32 {
		if rt.popContext(c) {
			return 1
		}
		return 0
	}
	c.raw.Eval = c.eval

	c.ls.SetGlobal("print", c.ls.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.Get(i).String())
		}
		rt.writeOutput(strings.Join(parts, "\t"))
		return 0
	}))

	return c
}

// Raw borrows the context's capi shape, for handing to bridge code that
// adopts its own reference via Retain.
func (c *Context) Raw() *capi.V8Context { return c.raw }

// Retain acquires a new reference and returns the raw pointer, matching
// what a real runtime accessor hands out.
func (c *Context) Retain() *capi.V8Context {
	c.raw.Base.AddRef(&c.raw.Base)
	return c.raw
}

// Release drops the creator's reference.
func (c *Context) Release() {
	c.raw.Base.Release(&c.raw.Base)
}

// eval implements the Eval entry: compile and run Lua source, handing
// back either an owned value or an owned exception. The start line is
// accepted for shape compatibility; Lua reports its own line numbers.
func (c *Context) eval(_ *capi.V8Context, code, scriptURL *capi.String, startLine int32, retval **capi.V8Value, exception **capi.V8Exception) int32 {
	source := decodeString(code)
	origin := decodeString(scriptURL)
	if origin == "" {
		origin = c.name
	}

	fn, err := c.ls.Load(strings.NewReader(source), origin)
	if err != nil {
		*exception = c.rt.newException(err, origin).raw
		return 0
	}
	c.ls.Push(fn)
	if err := c.ls.PCall(0, 1, nil); err != nil {
		*exception = c.rt.newException(err, origin).raw
		return 0
	}
	ret := c.ls.Get(-1)
	c.ls.Pop(1)
	*retval = c.rt.wrapLua(c, ret).raw
	return 1
}

// exception carries what the bridge extracts from a thrown script error.
type exception struct {
	rt  *Runtime
	obj object
	raw *capi.V8Exception

	message string
	script  string
	source  string
	line    int32
	column  int32
}

func (rt *Runtime) newException(err error, fallbackScript string) *exception {
	msg, script, line := parseLuaError(err, fallbackScript)
	e := &exception{rt: rt, message: msg, script: script, line: line}
	e.raw = &capi.V8Exception{Base: rt.newBase(&e.obj)}
	e.raw.GetMessage = func(*capi.V8Exception) *capi.String {
		return rt.newUserFree(e.message)
	}
	e.raw.GetScriptResourceName = func(*capi.V8Exception) *capi.String {
		return rt.newUserFree(e.script)
	}
	e.raw.GetSourceLine = func(*capi.V8Exception) *capi.String {
		return rt.newUserFree(e.source)
	}
	e.raw.GetLineNumber = func(*capi.V8Exception) int32 { return e.line }
	e.raw.GetStartColumn = func(*capi.V8Exception) int32 { return e.column }
	return e
}

// luaErrorPattern matches gopher-lua's "<chunk>:<line>: <message>" error
// prefix.
var luaErrorPattern = regexp.MustCompile(`(?s)^(.*?):(\d+):\s*(.*)$`)

func parseLuaError(err error, fallbackScript string) (msg, script string, line int32) {
	raw := err.Error()
	if apiErr, ok := err.(*lua.ApiError); ok {
		raw = apiErr.Object.String()
	}
	// Only the first line carries the location; the rest is traceback.
	if i := strings.IndexByte(raw, '\n'); i >= 0 {
		raw = raw[:i]
	}

	m := luaErrorPattern.FindStringSubmatch(raw)
	if m == nil {
		return raw, fallbackScript, 0
	}
	n, convErr := strconv.Atoi(m[2])
	if convErr != nil {
		return raw, fallbackScript, 0
	}
	return m[3], m[1], int32(n)
}
