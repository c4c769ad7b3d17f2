package capi

import "sync/atomic"

// Library is the set of exported entry points the bridge calls. A
// production binding populates it from the real renderer process; tests
// and simcef install an in-process implementation.
type Library struct {
	// V8ContextGetCurrent returns an owned handle to the context that
	// is current on the calling thread, or nil when there is none.
	V8ContextGetCurrent func() *V8Context

	// V8ValueCreateString creates a string value from s. The callee
	// copies the data; the caller keeps ownership of s. Returns nil on
	// failure.
	V8ValueCreateString func(s *String) *V8Value

	// StringUTF16Set fills dst with src. A nonzero copy flag makes dst
	// own a copy (freed through its dtor); zero shares the storage.
	// Returns nonzero on success.
	StringUTF16Set func(src []uint16, dst *String, copy int32) int32

	// StringUserFreeFree releases a string the runtime allocated.
	StringUserFreeFree func(s *String)

	// TaskRunnerGetForThread returns the task runner for a thread, or
	// nil when the thread does not exist. The handle is borrowed; the
	// runtime keeps runners alive for the process lifetime.
	TaskRunnerGetForThread func(id ThreadID) *TaskRunner
}

var library atomic.Pointer[Library]

// Install makes lib the process-wide entry point table. Installing a new
// table replaces the previous one; callers coordinate so this happens
// before bridge traffic starts.
func Install(lib Library) {
	library.Store(&lib)
}

// Reset removes the installed table. Accessors return zero values again.
func Reset() {
	library.Store(nil)
}

// Installed reports whether an entry point table is present.
func Installed() bool {
	return library.Load() != nil
}

// V8ContextGetCurrent calls through the installed table. Returns nil when
// no table is installed.
func V8ContextGetCurrent() *V8Context {
	if lib := library.Load(); lib != nil && lib.V8ContextGetCurrent != nil {
		return lib.V8ContextGetCurrent()
	}
	return nil
}

// V8ValueCreateString calls through the installed table. Returns nil when
// no table is installed.
func V8ValueCreateString(s *String) *V8Value {
	if lib := library.Load(); lib != nil && lib.V8ValueCreateString != nil {
		return lib.V8ValueCreateString(s)
	}
	return nil
}

// StringUTF16Set calls through the installed table. Returns zero when no
// table is installed.
func StringUTF16Set(src []uint16, dst *String, copy int32) int32 {
	if lib := library.Load(); lib != nil && lib.StringUTF16Set != nil {
		return lib.StringUTF16Set(src, dst, copy)
	}
	return 0
}

// StringUserFreeFree calls through the installed table. Strings carrying
// their own dtor are freed even without a table.
func StringUserFreeFree(s *String) {
	if lib := library.Load(); lib != nil && lib.StringUserFreeFree != nil {
		lib.StringUserFreeFree(s)
		return
	}
	s.Free()
}

// TaskRunnerGetForThread calls through the installed table. Returns nil
// when no table is installed.
func TaskRunnerGetForThread(id ThreadID) *TaskRunner {
	if lib := library.Load(); lib != nil && lib.TaskRunnerGetForThread != nil {
		return lib.TaskRunnerGetForThread(id)
	}
	return nil
}
