// Package simcef is an in-process stand-in for the CEF renderer runtime,
// used by tests and the demo harness.
//
// It implements the capi entry point table with real semantics: a
// renderer thread goroutine draining a FIFO task queue, contexts backed
// by Lua states, values with atomic reference counts, pending exceptions
// on function values, and user-free string accounting. Tests can assert
// that a scenario leaks neither objects nor strings.
//
// Scripts are Lua rather than JavaScript. The bridge never looks at
// source text, only at values and exceptions, so the substitution is
// invisible to everything above capi.
package simcef
