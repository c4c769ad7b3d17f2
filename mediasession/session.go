package mediasession

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/medialink/cef-bridge/capi"
	"github.com/medialink/cef-bridge/logging"
	"github.com/medialink/cef-bridge/relay"
)

// Session is the media-session state machine. Script pushes state into
// it through HandleCommand; transport events flow back to script through
// the event registry.
type Session struct {
	log    *zap.Logger
	events *relay.Registry

	mu       sync.Mutex
	enabled  bool
	metadata Metadata
	status   PlaybackStatus
	timeline Timeline
	playMode PlayMode
}

// NewSession creates a disabled session with default state. The logger
// reports command and event handling; nil falls back to the package
// logger in logging.
func NewSession(log *zap.Logger) *Session {
	if log == nil {
		log = logging.Logger()
	}
	log = log.Named("mediasession")
	return &Session{
		log:      log,
		events:   relay.NewRegistry("events", log),
		status:   StatusPaused,
		playMode: PlayMode{RepeatMode: RepeatNone},
	}
}

// RegisterEventCallback adopts a raw script function and captures the
// current context; transport events are delivered to it as JSON. Must
// run on the renderer thread.
func (s *Session) RegisterEventCallback(raw *capi.V8Value) error {
	return s.events.Register(raw)
}

// ClearEventCallback drops the event callback. Idempotent.
func (s *Session) ClearEventCallback() {
	s.events.Clear()
}

// HandleCommand routes one command envelope and returns a result
// document. It never panics and always returns valid JSON; malformed
// input comes back as an Error result.
func (s *Session) HandleCommand(doc string) string {
	if err := s.handle(doc); err != nil {
		s.log.Warn("command failed", zap.Error(err))
		return errorResult(err)
	}
	return successResult()
}

func (s *Session) handle(doc string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command handler panicked: %v", r)
		}
	}()

	if !gjson.Valid(doc) {
		return fmt.Errorf("command is not valid JSON")
	}
	typ := gjson.Get(doc, "type")
	if !typ.Exists() {
		return fmt.Errorf("command has no type")
	}
	payload := gjson.Get(doc, "payload").Raw

	switch typ.String() {
	case CmdMetadata:
		var m Metadata
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return fmt.Errorf("bad Metadata payload: %w", err)
		}
		s.setMetadata(m)
	case CmdPlayState:
		var p playStatePayload
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return fmt.Errorf("bad PlayState payload: %w", err)
		}
		if !p.Status.valid() {
			return fmt.Errorf("unknown playback status %q", p.Status)
		}
		s.setStatus(p.Status)
	case CmdTimeline:
		var t Timeline
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			return fmt.Errorf("bad Timeline payload: %w", err)
		}
		s.setTimeline(t)
	case CmdPlayMode:
		var p PlayMode
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return fmt.Errorf("bad PlayMode payload: %w", err)
		}
		if !p.RepeatMode.valid() {
			return fmt.Errorf("unknown repeat mode %q", p.RepeatMode)
		}
		s.setPlayMode(p)
	case CmdEnable:
		s.setEnabled(true)
	case CmdDisable:
		s.setEnabled(false)
	default:
		return fmt.Errorf("unknown command type %q", typ.String())
	}
	return nil
}

func (s *Session) setMetadata(m Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata = m
	s.log.Debug("metadata updated", zap.String("title", m.Title), zap.String("artist", m.Artist))
}

func (s *Session) setStatus(st PlaybackStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
	s.log.Debug("play state updated", zap.String("status", string(st)))
}

func (s *Session) setTimeline(t Timeline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline = t
}

func (s *Session) setPlayMode(p PlayMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playMode = p
	s.log.Debug("play mode updated",
		zap.Bool("shuffle", p.IsShuffling),
		zap.String("repeat", string(p.RepeatMode)))
}

func (s *Session) setEnabled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = on
	s.log.Info("session toggled", zap.Bool("enabled", on))
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Enabled:  s.enabled,
		Metadata: s.metadata,
		Status:   s.status,
		Timeline: s.timeline,
		PlayMode: s.playMode,
	}
}

// Reset restores default state and drops the event callback.
func (s *Session) Reset() {
	s.events.Clear()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
	s.metadata = Metadata{}
	s.status = StatusPaused
	s.timeline = Timeline{}
	s.playMode = PlayMode{RepeatMode: RepeatNone}
}

// Play emits a Play event.
func (s *Session) Play() error { return s.emit(EventPlay) }

// Pause emits a Pause event.
func (s *Session) Pause() error { return s.emit(EventPause) }

// Stop emits a Stop event.
func (s *Session) Stop() error { return s.emit(EventStop) }

// NextTrack emits a NextTrack event.
func (s *Session) NextTrack() error { return s.emit(EventNextTrack) }

// PreviousTrack emits a PreviousTrack event.
func (s *Session) PreviousTrack() error { return s.emit(EventPreviousTrack) }

// ToggleShuffle emits a ToggleShuffle event.
func (s *Session) ToggleShuffle() error { return s.emit(EventToggleShuffle) }

// ToggleRepeat emits a ToggleRepeat event.
func (s *Session) ToggleRepeat() error { return s.emit(EventToggleRepeat) }

// Seek emits a Seek event with the requested position in milliseconds.
func (s *Session) Seek(positionMs float64) error {
	return s.emit(EventSeek, "position_ms", positionMs)
}

// emit builds the event envelope and dispatches it through the registry.
// Events from a disabled session are dropped; the transport integration
// is off, so script asked not to hear from it.
func (s *Session) emit(event string, kv ...any) error {
	s.mu.Lock()
	enabled := s.enabled
	s.mu.Unlock()
	if !enabled {
		s.log.Debug("event dropped, session disabled", zap.String("event", event))
		return nil
	}

	doc, err := sjson.Set("", "type", event)
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return fmt.Errorf("event field key %v is not a string", kv[i])
		}
		if doc, err = sjson.Set(doc, key, kv[i+1]); err != nil {
			return err
		}
	}

	s.log.Debug("emitting event", zap.String("event", event))
	return s.events.Dispatch(json.RawMessage(doc))
}

func successResult() string {
	doc, _ := sjson.Set("", "status", "Success")
	return doc
}

func errorResult(err error) string {
	doc, _ := sjson.Set("", "status", "Error")
	doc, _ = sjson.Set(doc, "message", err.Error())
	return doc
}
