package simcef

import (
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/medialink/cef-bridge/capi"
	"github.com/medialink/cef-bridge/logging"
)

// Runtime is one simulated renderer process: a renderer thread, a
// current-context stack, and leak accounting for objects and strings.
type Runtime struct {
	log      *zap.Logger
	renderer *thread

	liveObjects atomic.Int64
	liveStrings atomic.Int64

	mu      sync.Mutex
	current []*Context
	values  map[*capi.V8Value]*value
	out     io.Writer
}

// New creates a runtime and starts its renderer thread.
func New() *Runtime {
	rt := &Runtime{
		log:    logging.Logger().Named("simcef"),
		values: make(map[*capi.V8Value]*value),
		out:    io.Discard,
	}
	rt.renderer = newThread(rt, "renderer")
	return rt
}

// Library returns the entry point table backed by this runtime.
func (rt *Runtime) Library() capi.Library {
	return capi.Library{
		V8ContextGetCurrent: rt.currentContext,
		V8ValueCreateString: rt.createStringValue,
		StringUTF16Set:      rt.stringUTF16Set,
		StringUserFreeFree:  rt.freeUserFree,
		TaskRunnerGetForThread: func(id capi.ThreadID) *capi.TaskRunner {
			if id != capi.TIDRenderer {
				return nil
			}
			return rt.renderer.runner
		},
	}
}

// Install makes this runtime the process-wide entry point table.
func (rt *Runtime) Install() {
	capi.Install(rt.Library())
}

// Shutdown stops the renderer thread. Tasks still queued are released
// without execution. Posting afterwards is rejected.
func (rt *Runtime) Shutdown() {
	rt.renderer.stop()
}

// SetOutput directs script print output. The default discards it.
func (rt *Runtime) SetOutput(w io.Writer) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if w == nil {
		w = io.Discard
	}
	rt.out = w
}

func (rt *Runtime) writeOutput(line string) {
	rt.mu.Lock()
	w := rt.out
	rt.mu.Unlock()
	io.WriteString(w, line+"\n")
}

// LiveObjects reports how many simulated objects hold a nonzero
// reference count.
func (rt *Runtime) LiveObjects() int64 {
	return rt.liveObjects.Load()
}

// LiveStrings reports how many allocated strings have not been freed.
func (rt *Runtime) LiveStrings() int64 {
	return rt.liveStrings.Load()
}

// object is the shared refcount state behind every simulated object.
type object struct {
	rt      *Runtime
	refs    atomic.Int64
	destroy func()
}

// newBase starts the object at one reference and counts it live. The
// destroy hook runs exactly once, when the count hits zero.
func (rt *Runtime) newBase(o *object) capi.BaseRefCounted {
	o.rt = rt
	o.refs.Store(1)
	rt.liveObjects.Add(1)
	return capi.BaseRefCounted{
		AddRef: func(*capi.BaseRefCounted) {
			o.refs.Add(1)
		},
		Release: func(*capi.BaseRefCounted) int32 {
			if o.refs.Add(-1) != 0 {
				return 0
			}
			rt.liveObjects.Add(-1)
			if o.destroy != nil {
				o.destroy()
			}
			return 1
		},
		HasOneRef: func(*capi.BaseRefCounted) int32 {
			if o.refs.Load() == 1 {
				return 1
			}
			return 0
		},
		HasAtLeastOneRef: func(*capi.BaseRefCounted) int32 {
			if o.refs.Load() > 0 {
				return 1
			}
			return 0
		},
	}
}

// currentContext returns an owned handle to the top of the context
// stack, or nil when nothing is entered.
func (rt *Runtime) currentContext() *capi.V8Context {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if len(rt.current) == 0 {
		return nil
	}
	c := rt.current[len(rt.current)-1]
	c.raw.Base.AddRef(&c.raw.Base)
	return c.raw
}

func (rt *Runtime) pushContext(c *Context) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.current = append(rt.current, c)
}

func (rt *Runtime) popContext(c *Context) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if len(rt.current) == 0 || rt.current[len(rt.current)-1] != c {
		return false
	}
	rt.current = rt.current[:len(rt.current)-1]
	return true
}

func (rt *Runtime) registerValue(v *value) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.values[v.raw] = v
}

func (rt *Runtime) forgetValue(v *value) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	delete(rt.values, v.raw)
}

func (rt *Runtime) lookupValue(raw *capi.V8Value) *value {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.values[raw]
}
