// Package task posts Go closures to the renderer thread as
// reference-counted task objects.
//
// A posted task owns its callback and a context handle. The scheduler
// executes it once inside the entered context, then drops its reference;
// the final release reclaims both. Tasks that never execute, because the
// queue is torn down or the post is rejected, reclaim the same way.
package task

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/medialink/cef-bridge/capi"
	"github.com/medialink/cef-bridge/errors"
	"github.com/medialink/cef-bridge/logging"
	"github.com/medialink/cef-bridge/v8"
)

// Thread is where posted tasks run. Everything V8 lives on the renderer
// thread.
const Thread = capi.TIDRenderer

// closureTask adapts a Go closure to the runtime's task shape. The
// vtable functions are per-task closures, so the runtime calling back
// through the header lands on this instance without any pointer casts.
type closureTask struct {
	raw  capi.Task
	mu   sync.Mutex
	fn   func()
	ctx  v8.Context
	refs atomic.Int64
}

func newClosureTask(ctx v8.Context, fn func()) *closureTask {
	t := &closureTask{fn: fn, ctx: ctx}
	t.refs.Store(1)
	t.raw = capi.Task{
		Base: capi.BaseRefCounted{
			AddRef: func(*capi.BaseRefCounted) {
				t.refs.Add(1)
			},
			Release: func(*capi.BaseRefCounted) int32 {
				return t.release()
			},
			HasOneRef: func(*capi.BaseRefCounted) int32 {
				if t.refs.Load() == 1 {
					return 1
				}
				return 0
			},
			HasAtLeastOneRef: func(*capi.BaseRefCounted) int32 {
				if t.refs.Load() > 0 {
					return 1
				}
				return 0
			},
		},
		Execute: func(*capi.Task) {
			t.execute()
		},
	}
	return t
}

// release drops one reference. The final release reclaims the callback
// and the context handle; the task memory itself is garbage collected.
func (t *closureTask) release() int32 {
	if t.refs.Add(-1) != 0 {
		return 0
	}
	t.mu.Lock()
	t.fn = nil
	t.mu.Unlock()
	t.ctx.Release()
	return 1
}

// execute runs the callback inside the stored context. The callback slot
// is emptied before the call, so a second execute finds nothing to run.
// The context is exited if and only if it was entered, even when the
// callback panics.
func (t *closureTask) execute() {
	entered := t.ctx.Enter()

	t.mu.Lock()
	fn := t.fn
	t.fn = nil
	t.mu.Unlock()

	if fn != nil {
		t.invoke(fn)
	}

	if entered {
		t.ctx.Exit()
	}
}

func (t *closureTask) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logger().Error("posted task panicked",
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	fn()
}

// Post wraps fn in a task object and posts it to the renderer thread,
// where it runs with ctx entered. Ownership of ctx transfers to the
// task: the context handle is released after execution, and on every
// failure path.
func Post(ctx v8.Context, fn func()) error {
	runner := capi.TaskRunnerGetForThread(Thread)
	if runner == nil {
		ctx.Release()
		return errors.PostFailed("post_task", "no task runner for renderer thread")
	}
	if runner.PostTask == nil {
		ctx.Release()
		return errors.PostFailed("post_task", "task runner cannot accept tasks")
	}

	t := newClosureTask(ctx, fn)
	if runner.PostTask(runner, &t.raw) == 0 {
		t.release()
		return errors.PostFailed("post_task", "scheduler rejected task")
	}

	// The task's single reference now belongs to the scheduler.
	return nil
}
