package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Kind:   KindPostFailed,
				Op:     "post_task",
				Detail: "scheduler rejected task",
			},
			contains: []string{"[post_task]", "post_failed", "scheduler rejected task"},
		},
		{
			name: "minimal error",
			err: &Error{
				Kind: KindNullHandle,
			},
			contains: []string{"null_handle"},
		},
		{
			name: "error with cause",
			err: &Error{
				Kind:   KindEncode,
				Op:     "dispatch",
				Detail: "payload serialization failed",
				Cause:  errors.New("unsupported type"),
			},
			contains: []string{"[dispatch]", "encode", "caused by", "unsupported type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Kind:  KindEncode,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Kind: KindNoContext,
		Op:   "current_context",
	}

	// Same kind, different op
	if !err.Is(&Error{Kind: KindNoContext, Op: "register"}) {
		t.Error("Is should match same kind regardless of op")
	}

	// Different kind
	if err.Is(&Error{Kind: KindNullHandle}) {
		t.Error("Is should not match different kind")
	}

	// Through errors.Is
	if !errors.Is(err, &Error{Kind: KindNoContext}) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(KindPostFailed).
		Op("dispatch").
		Cause(cause).
		Detail("queue closed after %d tasks", 3).
		Build()

	if err.Kind != KindPostFailed {
		t.Errorf("Kind = %v, want %v", err.Kind, KindPostFailed)
	}
	if err.Op != "dispatch" {
		t.Errorf("Op = %v, want 'dispatch'", err.Op)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "queue closed after 3 tasks" {
		t.Errorf("Detail = %v, want 'queue closed after 3 tasks'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("NullHandle", func(t *testing.T) {
		err := NullHandle("from_raw")
		if err.Kind != KindNullHandle {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNullHandle)
		}
		if err.Op != "from_raw" {
			t.Errorf("Op = %v, want 'from_raw'", err.Op)
		}
	})

	t.Run("NoContext", func(t *testing.T) {
		err := NoContext("register")
		if err.Kind != KindNoContext {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNoContext)
		}
	})

	t.Run("PostFailed", func(t *testing.T) {
		err := PostFailed("post_task", "no runner for renderer thread")
		if err.Kind != KindPostFailed {
			t.Errorf("Kind = %v, want %v", err.Kind, KindPostFailed)
		}
		if !strings.Contains(err.Detail, "renderer") {
			t.Errorf("Detail = %v, should name the thread", err.Detail)
		}
	})

	t.Run("ValueCreation", func(t *testing.T) {
		err := ValueCreation("new_string", "string")
		if err.Kind != KindValueCreation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindValueCreation)
		}
		if !strings.Contains(err.Detail, "string") {
			t.Errorf("Detail = %v, should name the value type", err.Detail)
		}
	})

	t.Run("StringConversion", func(t *testing.T) {
		err := StringConversion("new_string")
		if err.Kind != KindStringConversion {
			t.Errorf("Kind = %v, want %v", err.Kind, KindStringConversion)
		}
	})

	t.Run("Execution", func(t *testing.T) {
		err := Execution("execute_function", "call returned no value")
		if err.Kind != KindExecution {
			t.Errorf("Kind = %v, want %v", err.Kind, KindExecution)
		}
	})

	t.Run("Encode", func(t *testing.T) {
		cause := errors.New("cycle")
		err := Encode("dispatch", cause)
		if err.Kind != KindEncode {
			t.Errorf("Kind = %v, want %v", err.Kind, KindEncode)
		}
		if !errors.Is(err, cause) {
			t.Error("Encode should wrap its cause")
		}
	})
}

func TestIsKind(t *testing.T) {
	err := NullHandle("from_raw")

	if !IsKind(err, KindNullHandle) {
		t.Error("IsKind should match the error's kind")
	}
	if IsKind(err, KindPostFailed) {
		t.Error("IsKind should not match a different kind")
	}

	// Wrapped in fmt-style chains
	wrapped := Wrap(KindExecution, "invoke", err, "callback failed")
	if !IsKind(wrapped, KindExecution) {
		t.Error("IsKind should match the outermost bridge error")
	}

	if IsKind(errors.New("plain"), KindNullHandle) {
		t.Error("IsKind should not match non-bridge errors")
	}
	if IsKind(nil, KindNullHandle) {
		t.Error("IsKind(nil) should be false")
	}
}

func TestScriptError(t *testing.T) {
	err := &ScriptError{
		Message:            "x is not a function",
		ScriptResourceName: "app.js",
		Line:               42,
		StartColumn:        7,
	}

	msg := err.Error()
	for _, s := range []string{"script exception", "app.js:42:7", "x is not a function"} {
		if !strings.Contains(msg, s) {
			t.Errorf("error message %q does not contain %q", msg, s)
		}
	}

	// Matches any other ScriptError through errors.Is
	if !errors.Is(err, &ScriptError{}) {
		t.Error("errors.Is should match ScriptError by type")
	}

	// Without a script name the location falls back to the line
	bare := &ScriptError{Message: "boom", Line: 3, StartColumn: 1}
	if !strings.Contains(bare.Error(), "line 3") {
		t.Errorf("error message %q should mention the line", bare.Error())
	}
}
