package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestFromEnvDefaults(t *testing.T) {
	os.Unsetenv("BRIDGE_LOG_LEVEL")
	os.Unsetenv("BRIDGE_LOG_FILE")
	os.Unsetenv("BRIDGE_SCRIPT_LOG_LEVEL")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Level)
	}
	if cfg.File != "" {
		t.Errorf("File = %q, want empty", cfg.File)
	}
	if cfg.ScriptLevel != "warn" {
		t.Errorf("ScriptLevel = %q, want warn", cfg.ScriptLevel)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("BRIDGE_LOG_LEVEL", "debug")
	t.Setenv("BRIDGE_LOG_FILE", "/tmp/bridge.log")
	t.Setenv("BRIDGE_SCRIPT_LOG_LEVEL", "error")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Level != "debug" || cfg.File != "/tmp/bridge.log" || cfg.ScriptLevel != "error" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestInitRejectsBadLevel(t *testing.T) {
	_, err := Init(Config{Level: "loud"}, nil)
	if err == nil {
		t.Fatal("Init should reject an unknown level")
	}
}

func TestInitWritesFile(t *testing.T) {
	defer SetLogger(nil)

	path := filepath.Join(t.TempDir(), "bridge.log")
	logger, err := Init(Config{Level: "info", File: path}, nil)
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("file core works")
	if err := logger.Sync(); err != nil {
		// Syncing stderr fails on some platforms; the file core is
		// what matters here.
		t.Logf("sync: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "file core works") {
		t.Errorf("log file does not contain the entry: %q", data)
	}

	if Logger() != logger {
		t.Error("Init should install the logger it builds")
	}
}

func TestInitConfiguresRelayLevel(t *testing.T) {
	defer SetLogger(nil)

	capture := &captureDispatcher{}
	core := NewRelayCore(capture, zapcore.WarnLevel)

	logger, err := Init(Config{Level: "info", ScriptLevel: "debug"}, core)
	if err != nil {
		t.Fatal(err)
	}

	// Each core in the tee gates on its own threshold: debug entries
	// skip the console but still reach the relay.
	logger.Debug("relayed below console threshold")
	if len(capture.entries) != 1 {
		t.Fatalf("captured %d entries, want 1", len(capture.entries))
	}
	if capture.entries[0].Level != "debug" {
		t.Errorf("Level = %q, want debug", capture.entries[0].Level)
	}
}
