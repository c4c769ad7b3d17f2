package logging

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cefbridge "github.com/medialink/cef-bridge"
)

// Entry is the document shape delivered to the script callback.
type Entry struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Target  string `json:"target"`
}

// RelayCore is a zapcore.Core that forwards enabled entries to a script
// callback through a Dispatcher, typically a relay.Registry.
//
// The dispatcher must not log through a logger that contains this core;
// the relay path reports its own failures through a separate plain
// logger to keep the loop open.
type RelayCore struct {
	dispatcher cefbridge.Dispatcher
	level      zap.AtomicLevel
	fields     []zapcore.Field
}

// NewRelayCore creates a relay core with the given threshold.
func NewRelayCore(d cefbridge.Dispatcher, level zapcore.Level) *RelayCore {
	return &RelayCore{
		dispatcher: d,
		level:      zap.NewAtomicLevelAt(level),
	}
}

// SetScriptLevel adjusts the relay threshold at runtime. Level names
// follow zap: debug, info, warn, error.
func (c *RelayCore) SetScriptLevel(level string) error {
	l, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return err
	}
	c.level.SetLevel(l)
	return nil
}

// Enabled implements zapcore.Core.
func (c *RelayCore) Enabled(l zapcore.Level) bool {
	return c.level.Enabled(l)
}

// With implements zapcore.Core.
func (c *RelayCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &RelayCore{
		dispatcher: c.dispatcher,
		level:      c.level,
		fields:     make([]zapcore.Field, 0, len(c.fields)+len(fields)),
	}
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return clone
}

// Check implements zapcore.Core.
func (c *RelayCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write implements zapcore.Core. Fields are rendered into the message as
// sorted key=value pairs; script gets one flat string per entry.
func (c *RelayCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	msg := ent.Message

	all := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	all = append(all, c.fields...)
	all = append(all, fields...)
	if len(all) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range all {
			f.AddTo(enc)
		}
		keys := make([]string, 0, len(enc.Fields))
		for k := range enc.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(msg)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, enc.Fields[k])
		}
		msg = b.String()
	}

	target := ent.LoggerName
	if target == "" {
		target = "cefbridge"
	}

	return c.dispatcher.Dispatch(Entry{
		Level:   ent.Level.String(),
		Message: msg,
		Target:  target,
	})
}

// Sync implements zapcore.Core.
func (c *RelayCore) Sync() error { return nil }
