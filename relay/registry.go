// Package relay owns the registration slots through which script
// callbacks receive payloads from native code.
//
// A Registry pairs one script function with the context it was
// registered in. Native code dispatches Go payloads from any goroutine;
// the registry serializes them to JSON and posts a task that invokes the
// callback on the renderer thread.
package relay

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medialink/cef-bridge/capi"
	"github.com/medialink/cef-bridge/errors"
	"github.com/medialink/cef-bridge/logging"
	"github.com/medialink/cef-bridge/task"
	"github.com/medialink/cef-bridge/v8"
)

// Registry holds at most one (context, function) registration. Register
// and Clear must run on the renderer thread; Dispatch may run anywhere.
type Registry struct {
	name string
	log  *zap.Logger

	mu  sync.Mutex
	ctx v8.Context
	fn  v8.Value
	set bool
}

// NewRegistry creates an empty registry. The logger reports failures on
// the posted side of Dispatch and must not route back through this
// registry, or every failed delivery would queue another one. Nil falls
// back to the package logger in logging.
func NewRegistry(name string, log *zap.Logger) *Registry {
	if log == nil {
		log = logging.Logger()
	}
	return &Registry{
		name: name,
		log:  log.With(zap.String("registry", name)),
	}
}

// Register adopts a raw function pointer and captures the thread's
// current context. Any previous registration is cleared first; on
// failure the slot stays empty and the error is returned.
func (r *Registry) Register(raw *capi.V8Value) error {
	r.Clear()

	fn, err := v8.ValueFromRaw(raw)
	if err != nil {
		return err
	}
	ctx, err := v8.CurrentContext()
	if err != nil {
		fn.Release()
		return err
	}

	r.mu.Lock()
	r.ctx, r.fn, r.set = ctx, fn, true
	r.mu.Unlock()

	r.log.Debug("callback registered")
	return nil
}

// Clear drops the registration, releasing both handles. Idempotent.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.set {
		return
	}
	r.fn.Release()
	r.ctx.Release()
	r.fn, r.ctx, r.set = v8.Value{}, v8.Context{}, false
	r.log.Debug("callback cleared")
}

// Registered reports whether a callback is currently held.
func (r *Registry) Registered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.set
}

// Dispatch serializes payload to JSON and posts a task that invokes the
// registered callback with the document as its single argument.
// Dispatching with nothing registered is a silent no-op.
//
// The returned error covers the synchronous phase only, serialization
// and posting. Failures inside the posted task are logged, never handed
// back to the poster.
func (r *Registry) Dispatch(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Encode("dispatch", err)
	}

	r.mu.Lock()
	if !r.set {
		r.mu.Unlock()
		r.log.Debug("dispatch dropped, no callback registered")
		return nil
	}
	ctx := r.ctx.Clone()
	r.mu.Unlock()

	id := uuid.NewString()
	r.log.Debug("dispatching payload",
		zap.String("dispatch_id", id),
		zap.Int("bytes", len(data)))

	return task.Post(ctx, func() {
		r.invoke(id, string(data))
	})
}

// invoke runs on the renderer thread. The registration can disappear
// between posting and delivery; that is a quiet drop, not an error.
func (r *Registry) invoke(id, payload string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.set {
		r.log.Debug("callback cleared before delivery", zap.String("dispatch_id", id))
		return
	}

	arg, err := v8.NewString(payload)
	if err != nil {
		r.log.Error("could not build argument value",
			zap.String("dispatch_id", id), zap.Error(err))
		return
	}

	ret, err := r.fn.ExecuteFunction(nil, []v8.Value{arg})
	if err != nil {
		r.log.Error("callback invocation failed",
			zap.String("dispatch_id", id), zap.Error(err))
		return
	}
	ret.Release()

	r.log.Debug("payload delivered", zap.String("dispatch_id", id))
}
