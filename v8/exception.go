package v8

import (
	"github.com/medialink/cef-bridge/capi"
	"github.com/medialink/cef-bridge/errors"
	"github.com/medialink/cef-bridge/ref"
)

// Exception is an owning handle to a script exception.
type Exception struct {
	h *ref.Ptr[*capi.V8Exception]
}

// ExceptionFromRaw adopts an owned raw exception pointer.
func ExceptionFromRaw(raw *capi.V8Exception) (Exception, error) {
	h, err := ref.FromRaw(raw)
	if err != nil {
		return Exception{}, err
	}
	return Exception{h: h}, nil
}

// Release gives the owned reference back. Idempotent.
func (e Exception) Release() { e.h.Release() }

// Message returns the exception message.
func (e Exception) Message() string {
	raw := e.h.Raw()
	if raw == nil || raw.GetMessage == nil {
		return ""
	}
	return StringFromUserFree(raw.GetMessage(raw))
}

// ScriptResourceName returns the name of the script that threw.
func (e Exception) ScriptResourceName() string {
	raw := e.h.Raw()
	if raw == nil || raw.GetScriptResourceName == nil {
		return ""
	}
	return StringFromUserFree(raw.GetScriptResourceName(raw))
}

// SourceLine returns the text of the offending source line, when the
// runtime kept it.
func (e Exception) SourceLine() string {
	raw := e.h.Raw()
	if raw == nil || raw.GetSourceLine == nil {
		return ""
	}
	return StringFromUserFree(raw.GetSourceLine(raw))
}

// LineNumber returns the 1-based line of the throw site.
func (e Exception) LineNumber() int32 {
	raw := e.h.Raw()
	if raw == nil || raw.GetLineNumber == nil {
		return 0
	}
	return raw.GetLineNumber(raw)
}

// StartColumn returns the 0-based column of the throw site.
func (e Exception) StartColumn() int32 {
	raw := e.h.Raw()
	if raw == nil || raw.GetStartColumn == nil {
		return 0
	}
	return raw.GetStartColumn(raw)
}

// Err converts the exception into a ScriptError.
func (e Exception) Err() *errors.ScriptError {
	return &errors.ScriptError{
		Message:            e.Message(),
		ScriptResourceName: e.ScriptResourceName(),
		Line:               e.LineNumber(),
		StartColumn:        e.StartColumn(),
	}
}

// takeException consumes an owned raw exception and turns it into an
// error. A nil pointer means the runtime claimed an exception it could
// not produce.
func takeException(raw *capi.V8Exception) error {
	exc, err := ExceptionFromRaw(raw)
	if err != nil {
		return errors.Execution("execute_function", "exception pending but unavailable")
	}
	defer exc.Release()
	return exc.Err()
}
