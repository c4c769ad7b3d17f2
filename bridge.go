package cefbridge

// Dispatcher delivers a payload to a registered script callback. The
// payload is JSON-serialized and handed to the callback as a single
// string argument on the renderer thread.
type Dispatcher interface {
	Dispatch(payload any) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(payload any) error

// Dispatch calls f(payload).
func (f DispatcherFunc) Dispatch(payload any) error { return f(payload) }
