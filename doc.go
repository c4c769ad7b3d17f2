// Package cefbridge provides a safe Go bridge into the V8 side of a CEF
// (Chromium Embedded Framework) renderer process.
//
// Native code embedded in a CEF application can call JavaScript functions
// and be called back from script, but only through manually reference
// counted C objects that are tied to specific threads. This library wraps
// that surface so the rest of the program deals with Go values, explicit
// errors, and goroutine-friendly dispatch.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	cefbridge/           Root package with the Dispatcher seam
//	├── capi/            C-shaped object model and installable entry points
//	├── ref/             Generic owning handle over refcounted objects
//	├── v8/              Contexts, values, exceptions, UTF-16 strings
//	├── task/            Closure tasks posted to the renderer thread
//	├── relay/           Script-callback registry and JSON dispatch
//	├── errors/          Structured error types for bridge failures
//	├── logging/         zap setup plus the script log relay core
//	├── mediasession/    Media session state, commands, and events
//	├── plugin/          Native API table exposed to the plugin host
//	└── simcef/          In-process simulated runtime for tests and demos
//
// # Quick Start
//
// Register a script function and dispatch a payload to it:
//
//	reg := relay.NewRegistry("events", logging.Logger())
//
//	// On the renderer thread, with a context entered, adopt the raw
//	// function pointer handed over by script:
//	if err := reg.Register(rawFunc); err != nil {
//	    log.Fatal(err)
//	}
//
//	// From any goroutine:
//	err := reg.Dispatch(map[string]string{"type": "Play"})
//
// The payload is serialized to JSON, a task is posted to the renderer
// thread, and the registered function is invoked inside its captured
// context with the JSON string as its single argument.
//
// # Ownership
//
// Every foreign object is held through an owning handle (ref.Ptr) that
// releases exactly one reference. Raw pointers cross package boundaries
// only at adoption (FromRaw) and transfer (Take) points; the v8 package
// documents which operations borrow and which consume their arguments.
//
// # Threads
//
// Contexts and values may only be used on the renderer thread. task.Post
// moves work there; relay.Registry dispatches payloads from any goroutine
// without touching V8 until the posted task runs.
package cefbridge
