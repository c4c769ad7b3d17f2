package simcef

import (
	"strings"
	"sync"
	"testing"
	"unicode/utf16"

	"github.com/medialink/cef-bridge/capi"
	"github.com/medialink/cef-bridge/errors"
)

func newRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt := New()
	t.Cleanup(rt.Shutdown)
	return rt
}

func TestTasksRunInPostOrder(t *testing.T) {
	rt := newRuntime(t)
	runner := rt.Library().TaskRunnerGetForThread(capi.TIDRenderer)

	var mu sync.Mutex
	var order []int
	for i := 0; i < 10; i++ {
		i := i
		var o object
		task := &capi.Task{Base: rt.newBase(&o)}
		task.Execute = func(*capi.Task) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}
		if runner.PostTask(runner, task) == 0 {
			t.Fatalf("post %d rejected", i)
		}
	}
	rt.Barrier()

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 10 {
		t.Fatalf("expected 10 executions, got %d", len(order))
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("task %d ran at position %d; not FIFO: %v", got, i, order)
		}
	}
}

func TestShutdownReleasesQueuedTasksUnexecuted(t *testing.T) {
	rt := New()
	runner := rt.Library().TaskRunnerGetForThread(capi.TIDRenderer)

	// Hold the worker inside a task so the follow-up stays queued while
	// the thread flips to closed.
	gate := make(chan struct{})
	var blocker object
	blocking := &capi.Task{Base: rt.newBase(&blocker)}
	blocking.Execute = func(*capi.Task) { <-gate }
	if runner.PostTask(runner, blocking) == 0 {
		t.Fatal("post rejected")
	}

	executed := false
	var o object
	queued := &capi.Task{Base: rt.newBase(&o)}
	queued.Execute = func(*capi.Task) { executed = true }
	if runner.PostTask(runner, queued) == 0 {
		t.Fatal("post rejected")
	}

	rt.renderer.mu.Lock()
	rt.renderer.closed = true
	rt.renderer.cond.Broadcast()
	rt.renderer.mu.Unlock()
	close(gate)
	rt.Shutdown()

	if executed {
		t.Fatal("queued task ran after the thread was closed")
	}
	if o.refs.Load() != 0 {
		t.Fatal("queued task must be released at shutdown")
	}
	if blocker.refs.Load() != 0 {
		t.Fatal("executed task not released")
	}
	if runner.PostTask(runner, queued) != 0 {
		t.Fatal("posting after shutdown must be rejected")
	}
	if rt.LiveObjects() != 0 {
		t.Fatalf("%d objects leaked", rt.LiveObjects())
	}
}

func TestEvalReturnsValues(t *testing.T) {
	rt := newRuntime(t)
	ctx := rt.NewContext("main")
	defer ctx.Release()

	out, err := rt.Eval(ctx, `return "hello " .. "world"`)
	if err != nil {
		t.Fatal(err)
	}
	if out != "hello world" {
		t.Fatalf("got %q", out)
	}
}

func TestEvalReportsScriptErrors(t *testing.T) {
	rt := newRuntime(t)
	ctx := rt.NewContext("main")
	defer ctx.Release()

	_, err := rt.Eval(ctx, `error("deliberate failure")`)
	scriptErr, ok := err.(*errors.ScriptError)
	if !ok {
		t.Fatalf("expected *errors.ScriptError, got %T: %v", err, err)
	}
	if !strings.Contains(scriptErr.Message, "deliberate failure") {
		t.Fatalf("message %q", scriptErr.Message)
	}
	if scriptErr.Line != 1 {
		t.Fatalf("line = %d", scriptErr.Line)
	}
	if scriptErr.ScriptResourceName != "main" {
		t.Fatalf("script = %q", scriptErr.ScriptResourceName)
	}
}

func TestEvalReportsParseErrors(t *testing.T) {
	rt := newRuntime(t)
	ctx := rt.NewContext("main")
	defer ctx.Release()

	_, err := rt.Eval(ctx, `return return return`)
	if _, ok := err.(*errors.ScriptError); !ok {
		t.Fatalf("expected *errors.ScriptError, got %T: %v", err, err)
	}
}

func TestExecuteFunctionRunsLua(t *testing.T) {
	rt := newRuntime(t)
	ctx := rt.NewContext("main")
	defer ctx.Release()

	rt.MustEval(ctx, `greet = function(name) return "hi " .. name end`)

	var got string
	err := rt.RunInContext(ctx, func() {
		fnRaw := evalRaw(t, ctx, `return greet`)
		if fnRaw == nil {
			return
		}
		defer fnRaw.Base.Release(&fnRaw.Base)
		if fnRaw.IsFunction(fnRaw) == 0 {
			t.Error("greet is not a function value")
			return
		}

		arg := rt.newStringValue(utf16.Encode([]rune("ada"))).raw
		ret := fnRaw.ExecuteFunction(fnRaw, nil, []*capi.V8Value{arg})
		if ret == nil {
			t.Error("call returned nil")
			return
		}
		got = decodeAndFree(rt, ret.GetStringValue(ret))
		ret.Base.Release(&ret.Base)
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "hi ada" {
		t.Fatalf("got %q", got)
	}
}

func TestExecuteFunctionError(t *testing.T) {
	rt := newRuntime(t)
	ctx := rt.NewContext("main")
	defer ctx.Release()

	rt.MustEval(ctx, `blow = function() error("kaboom") end`)

	err := rt.RunInContext(ctx, func() {
		fnRaw := evalRaw(t, ctx, `return blow`)
		if fnRaw == nil {
			return
		}
		defer fnRaw.Base.Release(&fnRaw.Base)

		ret := fnRaw.ExecuteFunction(fnRaw, nil, nil)
		if ret != nil {
			t.Error("throwing call must return nil")
			return
		}
		if fnRaw.HasException(fnRaw) == 0 {
			t.Error("no pending exception")
			return
		}
		exc := fnRaw.GetException(fnRaw)
		msg := decodeAndFree(rt, exc.GetMessage(exc))
		if !strings.Contains(msg, "kaboom") {
			t.Errorf("exception message %q", msg)
		}
		exc.Base.Release(&exc.Base)

		fnRaw.ClearException(fnRaw)
		if fnRaw.HasException(fnRaw) != 0 {
			t.Error("exception still pending after clear")
		}
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	rt := newRuntime(t)

	inputs := []string{"", "ascii", "héllo wörld", "日本語", "emoji 🎵🎶 pair"}
	for _, in := range inputs {
		units := utf16.Encode([]rune(in))
		var cs capi.String
		if rt.stringUTF16Set(units, &cs, 1) == 0 {
			t.Fatalf("set failed for %q", in)
		}
		raw := rt.createStringValue(&cs)
		cs.Free()

		out := decodeAndFree(rt, raw.GetStringValue(raw))
		raw.Base.Release(&raw.Base)
		if out != in {
			t.Fatalf("round trip %q -> %q", in, out)
		}
	}
	if rt.LiveStrings() != 0 {
		t.Fatalf("%d strings leaked", rt.LiveStrings())
	}
	if rt.LiveObjects() != 0 {
		t.Fatalf("%d objects leaked", rt.LiveObjects())
	}
}

func TestCurrentContextFollowsEnterExit(t *testing.T) {
	rt := newRuntime(t)
	ctx := rt.NewContext("main")
	defer ctx.Release()

	if rt.currentContext() != nil {
		t.Fatal("no context should be current before enter")
	}

	err := rt.RunInContext(ctx, func() {
		cur := rt.currentContext()
		if cur != ctx.raw {
			t.Error("current context is not the entered one")
		}
		if cur != nil {
			cur.Base.Release(&cur.Base)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	if rt.currentContext() != nil {
		t.Fatal("context still current after exit")
	}
}

func TestBindExposesNativeFunctions(t *testing.T) {
	rt := newRuntime(t)
	ctx := rt.NewContext("main")
	defer ctx.Release()

	var received []string
	ctx.Bind("medialink.echo", func(args []*capi.V8Value) string {
		for _, raw := range args {
			received = append(received, decodeAndFree(rt, raw.GetStringValue(raw)))
			raw.Base.Release(&raw.Base)
		}
		return "echoed"
	})

	out := rt.MustEval(ctx, `return medialink.echo("one", "two")`)
	if out != "echoed" {
		t.Fatalf("result %q", out)
	}
	if len(received) != 2 || received[0] != "one" || received[1] != "two" {
		t.Fatalf("received %q", received)
	}
}

func TestPrintGoesToOutput(t *testing.T) {
	rt := newRuntime(t)
	var buf strings.Builder
	rt.SetOutput(&buf)

	ctx := rt.NewContext("main")
	defer ctx.Release()
	rt.MustEval(ctx, `print("line", 1)`)

	if got := buf.String(); got != "line\t1\n" {
		t.Fatalf("output %q", got)
	}
}

func TestNoLeaksAfterFullCycle(t *testing.T) {
	rt := New()
	ctx := rt.NewContext("main")

	rt.MustEval(ctx, `handler = function(x) return x end`)
	err := rt.RunInContext(ctx, func() {
		fnRaw := evalRaw(t, ctx, `return handler`)
		if fnRaw == nil {
			return
		}
		arg := rt.newStringValue(utf16.Encode([]rune("payload"))).raw
		if ret := fnRaw.ExecuteFunction(fnRaw, nil, []*capi.V8Value{arg}); ret != nil {
			ret.Base.Release(&ret.Base)
		}
		fnRaw.Base.Release(&fnRaw.Base)
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx.Release()
	rt.Shutdown()

	if rt.LiveObjects() != 0 {
		t.Fatalf("%d objects leaked", rt.LiveObjects())
	}
	if rt.LiveStrings() != 0 {
		t.Fatalf("%d strings leaked", rt.LiveStrings())
	}
}

// evalRaw evaluates source and returns the raw owned result, or nil on
// failure. Must run on the renderer thread.
func evalRaw(t *testing.T, ctx *Context, source string) *capi.V8Value {
	t.Helper()
	code := &capi.String{Data: utf16.Encode([]rune(source))}
	var retval *capi.V8Value
	var exc *capi.V8Exception
	if ctx.raw.Eval(ctx.raw, code, nil, 0, &retval, &exc) == 0 {
		if exc != nil {
			exc.Base.Release(&exc.Base)
		}
		t.Errorf("eval of %q failed", source)
		return nil
	}
	return retval
}
