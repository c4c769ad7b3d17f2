package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cefbridge "github.com/medialink/cef-bridge"
)

type captureDispatcher struct {
	entries []Entry
}

func (c *captureDispatcher) Dispatch(payload any) error {
	c.entries = append(c.entries, payload.(Entry))
	return nil
}

func TestRelayCoreForwardsEntries(t *testing.T) {
	capture := &captureDispatcher{}
	core := NewRelayCore(capture, zapcore.InfoLevel)
	logger := zap.New(core).Named("smtc")

	logger.Info("command handled", zap.String("type", "Metadata"), zap.Int("args", 1))
	logger.Debug("should be filtered")

	if len(capture.entries) != 1 {
		t.Fatalf("captured %d entries, want 1", len(capture.entries))
	}
	e := capture.entries[0]
	if e.Level != "info" {
		t.Errorf("Level = %q, want info", e.Level)
	}
	if e.Target != "smtc" {
		t.Errorf("Target = %q, want smtc", e.Target)
	}
	if e.Message != "command handled args=1 type=Metadata" {
		t.Errorf("Message = %q", e.Message)
	}
}

func TestRelayCoreDefaultTarget(t *testing.T) {
	capture := &captureDispatcher{}
	logger := zap.New(NewRelayCore(capture, zapcore.DebugLevel))

	logger.Warn("unnamed")

	if len(capture.entries) != 1 {
		t.Fatalf("captured %d entries, want 1", len(capture.entries))
	}
	if capture.entries[0].Target != "cefbridge" {
		t.Errorf("Target = %q, want cefbridge", capture.entries[0].Target)
	}
}

func TestRelayCoreWithFields(t *testing.T) {
	capture := &captureDispatcher{}
	core := NewRelayCore(capture, zapcore.InfoLevel)
	logger := zap.New(core).With(zap.String("session", "abc"))

	logger.Info("dispatched")

	if len(capture.entries) != 1 {
		t.Fatalf("captured %d entries, want 1", len(capture.entries))
	}
	if capture.entries[0].Message != "dispatched session=abc" {
		t.Errorf("Message = %q", capture.entries[0].Message)
	}
}

func TestSetScriptLevel(t *testing.T) {
	capture := &captureDispatcher{}
	core := NewRelayCore(capture, zapcore.ErrorLevel)
	logger := zap.New(core)

	logger.Info("dropped")
	if len(capture.entries) != 0 {
		t.Fatal("info entry should be below the error threshold")
	}

	if err := core.SetScriptLevel("debug"); err != nil {
		t.Fatal(err)
	}
	logger.Info("delivered")
	if len(capture.entries) != 1 {
		t.Fatal("info entry should pass after lowering the threshold")
	}

	if err := core.SetScriptLevel("chatty"); err == nil {
		t.Fatal("unknown level name should be rejected")
	}
}

func TestRelayCoreIsADispatcherClient(t *testing.T) {
	// The core only needs the seam, not a concrete registry.
	var d cefbridge.Dispatcher = &captureDispatcher{}
	core := NewRelayCore(d, zapcore.InfoLevel)
	if core.Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should be below the info threshold")
	}
}
