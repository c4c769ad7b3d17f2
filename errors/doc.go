// Package errors provides structured error types for the cef-bridge library.
//
// Errors are categorized by Kind and carry the name of the failing
// operation plus an optional cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.KindPostFailed).
//		Op("dispatch").
//		Detail("renderer thread unavailable").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NullHandle("from_raw")
//	err := errors.NoContext("current_context")
//
// Exceptions thrown by script surface as *ScriptError with the message,
// script resource name, line and column extracted from the runtime.
//
// All errors implement the standard error interface and support
// errors.Is/As.
package errors
