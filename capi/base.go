// Package capi models the C API surface of the CEF renderer process that
// the bridge consumes: reference-counted structs of function pointers and
// the small set of exported entry points the bridge calls.
//
// The structs mirror their cef_*_t counterparts closely enough that a
// production binding can populate them from the real library, while tests
// and the simcef package populate them with Go closures. Nothing in this
// package manages lifetimes; that is the ref package's job.
package capi

// BaseRefCounted is the reference-count header shared by every foreign
// object, mirroring cef_base_ref_counted_t. It must be the first field of
// any struct handed to ref.Ptr so the header pointer and the object
// pointer coincide, as they do in the C layout.
type BaseRefCounted struct {
	// AddRef increments the reference count.
	AddRef func(self *BaseRefCounted)

	// Release decrements the reference count and returns nonzero when
	// the object was destroyed as a result.
	Release func(self *BaseRefCounted) int32

	// HasOneRef returns nonzero when the count is exactly one.
	HasOneRef func(self *BaseRefCounted) int32

	// HasAtLeastOneRef returns nonzero when the count is positive.
	HasAtLeastOneRef func(self *BaseRefCounted) int32
}

// ThreadID identifies one of the renderer process threads, mirroring
// cef_thread_id_t.
type ThreadID int32

const (
	TIDUI ThreadID = iota
	TIDFileBackground
	TIDFileUserVisible
	TIDFileUserBlocking
	TIDProcessLauncher
	TIDIO
	TIDRenderer
)

// String returns the conventional name of the thread.
func (t ThreadID) String() string {
	switch t {
	case TIDUI:
		return "ui"
	case TIDFileBackground:
		return "file-background"
	case TIDFileUserVisible:
		return "file-user-visible"
	case TIDFileUserBlocking:
		return "file-user-blocking"
	case TIDProcessLauncher:
		return "process-launcher"
	case TIDIO:
		return "io"
	case TIDRenderer:
		return "renderer"
	default:
		return "unknown"
	}
}
